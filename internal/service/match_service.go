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

type MatchService struct {
	db    *sqlx.DB
	store *store.TournamentStore
}

func NewMatchService(db *sqlx.DB, store *store.TournamentStore) *MatchService {
	return &MatchService{db: db, store: store}
}

func (s *MatchService) GetMatch(ctx context.Context, matchID uuid.UUID) (*bracket.Match, error) {
	match, err := s.store.GetMatch(ctx, matchID.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return match, nil
}

// RecordResult attaches a score line to a match. Recording the same result
// again is a no-op and reports changed=false.
func (s *MatchService) RecordResult(ctx context.Context, matchID uuid.UUID, score1, score2 int) (match *bracket.Match, changed bool, err error) {
	if score1 < 0 || score2 < 0 {
		return nil, false, fmt.Errorf("%w: scores must not be negative", ErrValidation)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback()

	match, err = s.store.GetMatchTx(ctx, tx, matchID.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, ErrMatchNotFound
		}
		return nil, false, fmt.Errorf("failed to get match: %w", err)
	}

	if !match.IsSeeded() {
		return nil, false, ErrMatchNotSeeded
	}
	if match.IsCompleted() {
		if match.SameResult(score1, score2) {
			return match, false, nil
		}
		return nil, false, ErrResultConflict
	}
	if match.Stage == bracket.FinalsStage && score1 == score2 {
		return nil, false, ErrDrawInFinals
	}

	match.ApplyResult(score1, score2, time.Now().UTC())

	recorded, err := s.store.RecordResultTx(ctx, tx, match)
	if err != nil {
		return nil, false, fmt.Errorf("failed to record result: %w", err)
	}
	if !recorded {
		return nil, false, ErrResultConflict
	}

	return match, true, tx.Commit()
}
