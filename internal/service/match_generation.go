package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/AdamBeresnev/tournament-bracket/internal/bracket"
	"github.com/AdamBeresnev/tournament-bracket/internal/store"
	"github.com/AdamBeresnev/tournament-bracket/internal/utils"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type MatchGenerator struct {
	db      *sqlx.DB
	store   *store.TournamentStore
	seeding bracket.SeedingRule
}

func NewMatchGenerator(db *sqlx.DB, store *store.TournamentStore, seeding bracket.SeedingRule) *MatchGenerator {
	if seeding == "" {
		seeding = bracket.SequentialSeeding
	}
	return &MatchGenerator{db: db, store: store, seeding: seeding}
}

// Generate writes the first round of a full tournament. It returns the new
// matches, or nil when the bracket already exists.
func (s *MatchGenerator) Generate(ctx context.Context, tournamentID uuid.UUID) ([]bracket.Match, error) {
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

	if tournament.Stage != bracket.StageRegistration {
		slog.Debug("bracket already generated", "tournament_id", id, "stage", tournament.Stage)
		return nil, nil
	}

	teams, err := s.store.GetTeamsTx(ctx, tx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get teams: %w", err)
	}
	if len(teams) == 0 {
		return nil, fmt.Errorf("%w: tournament has no teams", ErrValidation)
	}
	if len(teams) != tournament.TeamsMax {
		return nil, fmt.Errorf("%w: %d of %d registered", ErrTeamCountMismatch, len(teams), tournament.TeamsMax)
	}

	matches, err := bracket.FirstRound(tournamentID, bracket.TeamIDs(teams), s.seeding, utils.Ptr(tournament.EventDate))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	claimed, err := s.store.ClaimStageTx(ctx, tx, id, bracket.StageRegistration, bracket.StageQualifying)
	if err != nil {
		return nil, fmt.Errorf("failed to claim bracket generation: %w", err)
	}
	if !claimed {
		return nil, nil
	}

	if err := s.store.CreateMatches(ctx, tx, matches); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to create matches: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	slog.Info("bracket generated", "tournament_id", id, "matches", len(matches), "seeding", s.seeding)
	return matches, nil
}
