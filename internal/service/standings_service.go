package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/AdamBeresnev/tournament-bracket/internal/bracket"
	"github.com/AdamBeresnev/tournament-bracket/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type StandingsService struct {
	db    *sqlx.DB
	store *store.TournamentStore
}

func NewStandingsService(db *sqlx.DB, store *store.TournamentStore) *StandingsService {
	return &StandingsService{db: db, store: store}
}

// Recompute rebuilds the table from every match of the tournament and
// replaces the stored snapshot.
func (s *StandingsService) Recompute(ctx context.Context, tournamentID uuid.UUID) ([]bracket.StandingEntry, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	id := tournamentID.String()
	if _, err := s.store.GetTournamentTx(ctx, tx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament: %w", err)
	}

	teams, err := s.store.GetTeamsTx(ctx, tx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get teams: %w", err)
	}
	matches, err := s.store.GetMatchesTx(ctx, tx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get matches: %w", err)
	}

	standings := bracket.ComputeStandings(tournamentID, bracket.TeamIDs(teams), matches)
	now := time.Now().UTC()
	for i := range standings {
		standings[i].UpdatedAt = now
	}

	if err := s.store.ReplaceStandingsTx(ctx, tx, id, standings); err != nil {
		return nil, fmt.Errorf("failed to store standings: %w", err)
	}
	return standings, tx.Commit()
}

func (s *StandingsService) GetStandings(ctx context.Context, tournamentID uuid.UUID) ([]bracket.StandingEntry, error) {
	return s.store.GetStandings(ctx, tournamentID.String())
}
