package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/AdamBeresnev/tournament-bracket/internal/bracket"
	"github.com/AdamBeresnev/tournament-bracket/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const DefaultFinalsAdvance = 2

type FinalsGenerator struct {
	db      *sqlx.DB
	store   *store.TournamentStore
	advance int
}

func NewFinalsGenerator(db *sqlx.DB, store *store.TournamentStore, advance int) *FinalsGenerator {
	if advance == 0 {
		advance = DefaultFinalsAdvance
	}
	return &FinalsGenerator{db: db, store: store, advance: advance}
}

// Generate writes the final round once every qualifying match has a result.
// It returns nil matches when the finals already exist.
func (s *FinalsGenerator) Generate(ctx context.Context, tournamentID uuid.UUID) ([]bracket.Match, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	id := tournamentID.String()
	tournament, err := s.store.GetTournamentTx(ctx, tx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament: %w", err)
	}

	switch tournament.Stage {
	case bracket.StageFinals:
		slog.Debug("finals already generated", "tournament_id", id)
		return nil, nil
	case bracket.StageRegistration:
		return nil, fmt.Errorf("%w: bracket not generated yet", ErrFinalsNotReady)
	}

	matches, err := s.store.GetMatchesTx(ctx, tx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get matches: %w", err)
	}
	if !bracket.QualifiersTerminal(matches) {
		return nil, ErrFinalsNotReady
	}

	teams, err := s.store.GetTeamsTx(ctx, tx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get teams: %w", err)
	}

	standings := bracket.ComputeStandings(tournamentID, bracket.TeamIDs(teams), matches)
	finals, err := bracket.PlanFinals(tournamentID, standings, s.advance, bracket.LastRound(matches)+1, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	claimed, err := s.store.ClaimStageTx(ctx, tx, id, bracket.StageQualifying, bracket.StageFinals)
	if err != nil {
		return nil, fmt.Errorf("failed to claim finals generation: %w", err)
	}
	if !claimed {
		return nil, nil
	}

	if err := s.store.CreateMatches(ctx, tx, finals); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to create finals: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	slog.Info("finals generated", "tournament_id", id, "matches", len(finals), "advance", s.advance)
	return finals, nil
}
