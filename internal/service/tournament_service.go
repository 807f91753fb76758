package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/AdamBeresnev/tournament-bracket/internal/bracket"
	"github.com/AdamBeresnev/tournament-bracket/internal/store"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"
)

type TournamentService struct {
	db    *sqlx.DB
	store *store.TournamentStore
}

func NewTournamentService(db *sqlx.DB, store *store.TournamentStore) *TournamentService {
	return &TournamentService{db: db, store: store}
}

type TournamentInput struct {
	ID         *uuid.UUID
	Name       string
	Sport      string
	Location   string
	EventDate  time.Time
	PriceCents int64
	TeamsMax   int
}

type TournamentData struct {
	Tournament *bracket.Tournament
	Teams      []bracket.Team
	Matches    []bracket.Match
	Standings  []bracket.StandingEntry
}

func (in TournamentInput) validate() error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return fmt.Errorf("%w: name is required", ErrValidation)
	case strings.TrimSpace(in.Sport) == "":
		return fmt.Errorf("%w: sport is required", ErrValidation)
	case in.TeamsMax < 2 || in.TeamsMax%2 != 0:
		return fmt.Errorf("%w: teams_max must be an even number of at least 2", ErrValidation)
	case in.PriceCents < 0:
		return fmt.Errorf("%w: price must not be negative", ErrValidation)
	case in.EventDate.IsZero():
		return fmt.Errorf("%w: date is required", ErrValidation)
	}
	return nil
}

func (s *TournamentService) CreateTournament(ctx context.Context, input TournamentInput) (*bracket.Tournament, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	tournament := &bracket.Tournament{
		ID:         uuid.New(),
		Name:       strings.TrimSpace(input.Name),
		Slug:       slug.Make(input.Name),
		Sport:      strings.TrimSpace(input.Sport),
		Location:   strings.TrimSpace(input.Location),
		EventDate:  input.EventDate.UTC(),
		PriceCents: input.PriceCents,
		TeamsMax:   input.TeamsMax,
		Status:     bracket.TournamentOpen,
		Stage:      bracket.StageRegistration,
		CreatedAt:  time.Now().UTC(),
	}
	if input.ID != nil {
		tournament.ID = *input.ID
	}

	if err := s.store.CreateTournament(ctx, tx, tournament); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, fmt.Errorf("%w: tournament %s already exists", ErrValidation, tournament.ID)
		}
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}

	return tournament, tx.Commit()
}

func (s *TournamentService) ListTournaments(ctx context.Context) ([]bracket.Tournament, error) {
	return s.store.ListTournaments(ctx)
}

func (s *TournamentService) GetTournament(ctx context.Context, id uuid.UUID) (*bracket.Tournament, error) {
	tournament, err := s.store.GetTournament(ctx, id.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return tournament, nil
}

// GetTournamentData loads everything the bracket page needs. The reads are
// independent, so they run together.
func (s *TournamentService) GetTournamentData(ctx context.Context, id uuid.UUID) (*TournamentData, error) {
	tournament, err := s.GetTournament(ctx, id)
	if err != nil {
		return nil, err
	}

	data := &TournamentData{Tournament: tournament}
	tid := id.String()

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		teams, err := s.store.GetTeams(gCtx, tid)
		if err != nil {
			return fmt.Errorf("failed to get teams: %w", err)
		}
		data.Teams = teams
		return nil
	})
	g.Go(func() error {
		matches, err := s.store.GetMatches(gCtx, tid)
		if err != nil {
			return fmt.Errorf("failed to get matches: %w", err)
		}
		data.Matches = matches
		return nil
	})
	g.Go(func() error {
		standings, err := s.store.GetStandings(gCtx, tid)
		if err != nil {
			return fmt.Errorf("failed to get standings: %w", err)
		}
		data.Standings = standings
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return data, nil
}
