package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/AdamBeresnev/tournament-bracket/internal/bracket"
	"github.com/AdamBeresnev/tournament-bracket/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// StatusManager keeps tournaments.status equal to what the counts and
// matches say it should be.
type StatusManager struct {
	db    *sqlx.DB
	store *store.TournamentStore
	now   func() time.Time
}

func NewStatusManager(db *sqlx.DB, store *store.TournamentStore) *StatusManager {
	return &StatusManager{db: db, store: store, now: time.Now}
}

// SetClock replaces the time source used to decide whether a scheduled match has started.
func (s *StatusManager) SetClock(now func() time.Time) {
	s.now = now
}

// Sync derives the status and stores it if it changed.
func (s *StatusManager) Sync(ctx context.Context, tournamentID uuid.UUID) (bracket.TournamentStatus, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	id := tournamentID.String()
	tournament, err := s.store.GetTournamentTx(ctx, tx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrTournamentNotFound
		}
		return "", fmt.Errorf("failed to get tournament: %w", err)
	}

	matches, err := s.store.GetMatchesTx(ctx, tx, id)
	if err != nil {
		return "", fmt.Errorf("failed to get matches: %w", err)
	}

	status := bracket.DeriveStatus(tournament.TeamsCurrent, tournament.TeamsMax, bracket.ProgressOf(matches, s.now()))
	if status == tournament.Status {
		return status, nil
	}

	updated, err := s.store.UpdateStatusTx(ctx, tx, id, tournament.Status, status)
	if err != nil {
		return "", fmt.Errorf("failed to update tournament status: %w", err)
	}
	if !updated {
		return "", fmt.Errorf("tournament %s status changed concurrently", id)
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}

	slog.Info("tournament status changed", "tournament_id", id, "from", tournament.Status, "to", status)
	return status, nil
}
