package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/AdamBeresnev/tournament-bracket/internal/bracket"
	"github.com/AdamBeresnev/tournament-bracket/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const maxTeamNameLength = 50

type TeamService struct {
	db    *sqlx.DB
	store *store.TournamentStore
}

func NewTeamService(db *sqlx.DB, store *store.TournamentStore) *TeamService {
	return &TeamService{db: db, store: store}
}

type TeamInput struct {
	// Optional client supplied id. Resending a registration with the same id
	// returns the stored team instead of taking another slot.
	ID   *uuid.UUID
	Name string
}

// RegisterTeam reserves a slot and stores the team in one transaction.
func (s *TeamService) RegisterTeam(ctx context.Context, tournamentID uuid.UUID, input TeamInput) (team *bracket.Team, created bool, err error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, false, fmt.Errorf("%w: team name is required", ErrValidation)
	}
	if utf8.RuneCountInString(name) > maxTeamNameLength {
		return nil, false, fmt.Errorf("%w: team name exceeds %d characters", ErrValidation, maxTeamNameLength)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback()

	id := tournamentID.String()
	if input.ID != nil {
		existing, err := s.store.GetTeamTx(ctx, tx, input.ID.String())
		if err == nil {
			if existing.TournamentID != tournamentID {
				return nil, false, fmt.Errorf("%w: team belongs to another tournament", ErrValidation)
			}
			return existing, false, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, false, fmt.Errorf("failed to get team: %w", err)
		}
	}

	reserved, err := s.store.IncrementTeamsTx(ctx, tx, id)
	if err != nil {
		return nil, false, fmt.Errorf("failed to reserve slot: %w", err)
	}

	tournament, err := s.store.GetTournamentTx(ctx, tx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, ErrTournamentNotFound
		}
		return nil, false, fmt.Errorf("failed to get tournament: %w", err)
	}
	if !reserved {
		return nil, false, ErrTournamentFull
	}

	team = &bracket.Team{
		ID:           uuid.New(),
		TournamentID: tournamentID,
		Name:         name,
		Seed:         tournament.TeamsCurrent,
		RegisteredAt: time.Now().UTC(),
	}
	if input.ID != nil {
		team.ID = *input.ID
	}

	if err := s.store.CreateTeam(ctx, tx, team); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, false, ErrTeamNameTaken
		}
		return nil, false, fmt.Errorf("failed to create team: %w", err)
	}

	return team, true, tx.Commit()
}

func (s *TeamService) GetTeams(ctx context.Context, tournamentID uuid.UUID) ([]bracket.Team, error) {
	return s.store.GetTeams(ctx, tournamentID.String())
}
