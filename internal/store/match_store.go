package store

import (
	"context"

	"github.com/AdamBeresnev/tournament-bracket/internal/bracket"
	"github.com/jmoiron/sqlx"
)

const (
	createMatchesQuery = `
		INSERT INTO matches (id, tournament_id, stage, round_number, match_order, team_1_id, team_2_id, scheduled_at)
		VALUES (:id, :tournament_id, :stage, :round_number, :match_order, :team_1_id, :team_2_id, :scheduled_at)
	`
	// Only an unplayed match takes a result; a second writer affects no rows.
	recordResultQuery = `
		UPDATE matches SET score_1 = :score_1, score_2 = :score_2, winner_id = :winner_id, completed_at = :completed_at
		WHERE id = :id AND score_1 IS NULL AND score_2 IS NULL
	`
	matchOrdering = " ORDER BY CASE stage WHEN 'qualifying' THEN 0 ELSE 1 END, round_number ASC, match_order ASC"
)

// CreateMatches writes the whole batch or, on any error, leaves the
// transaction for the caller to roll back.
func (s *TournamentStore) CreateMatches(ctx context.Context, tx *sqlx.Tx, matches []bracket.Match) error {
	if len(matches) == 0 {
		return nil
	}
	_, err := tx.NamedExecContext(ctx, createMatchesQuery, matches)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (s *TournamentStore) GetMatch(ctx context.Context, id string) (*bracket.Match, error) {
	return getMatch(ctx, s.db, id)
}

func (s *TournamentStore) GetMatchTx(ctx context.Context, tx *sqlx.Tx, id string) (*bracket.Match, error) {
	return getMatch(ctx, tx, id)
}

func getMatch(ctx context.Context, q sqlx.QueryerContext, id string) (*bracket.Match, error) {
	var match bracket.Match
	err := sqlx.GetContext(ctx, q, &match, "SELECT * FROM matches WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	return &match, nil
}

func (s *TournamentStore) GetMatches(ctx context.Context, tournamentID string) ([]bracket.Match, error) {
	return getMatches(ctx, s.db, tournamentID)
}

func (s *TournamentStore) GetMatchesTx(ctx context.Context, tx *sqlx.Tx, tournamentID string) ([]bracket.Match, error) {
	return getMatches(ctx, tx, tournamentID)
}

func getMatches(ctx context.Context, q sqlx.QueryerContext, tournamentID string) ([]bracket.Match, error) {
	var matches []bracket.Match
	err := sqlx.SelectContext(ctx, q, &matches, "SELECT * FROM matches WHERE tournament_id = ?"+matchOrdering, tournamentID)
	return matches, err
}

// RecordResultTx returns false when the match already has a result.
func (s *TournamentStore) RecordResultTx(ctx context.Context, tx *sqlx.Tx, match *bracket.Match) (bool, error) {
	res, err := tx.NamedExecContext(ctx, recordResultQuery, match)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
