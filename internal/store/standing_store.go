package store

import (
	"context"

	"github.com/AdamBeresnev/tournament-bracket/internal/bracket"
	"github.com/jmoiron/sqlx"
)

const createStandingsQuery = `
	INSERT INTO standings (tournament_id, team_id, rank, played, wins, draws, losses, points, score_for, score_against, updated_at)
	VALUES (:tournament_id, :team_id, :rank, :played, :wins, :draws, :losses, :points, :score_for, :score_against, :updated_at)
`

// ReplaceStandingsTx swaps the stored table for a freshly computed one.
func (s *TournamentStore) ReplaceStandingsTx(ctx context.Context, tx *sqlx.Tx, tournamentID string, standings []bracket.StandingEntry) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM standings WHERE tournament_id = ?", tournamentID); err != nil {
		return err
	}
	if len(standings) == 0 {
		return nil
	}
	_, err := tx.NamedExecContext(ctx, createStandingsQuery, standings)
	return err
}

func (s *TournamentStore) GetStandings(ctx context.Context, tournamentID string) ([]bracket.StandingEntry, error) {
	var standings []bracket.StandingEntry
	err := s.db.SelectContext(ctx, &standings, "SELECT * FROM standings WHERE tournament_id = ? ORDER BY rank ASC", tournamentID)
	return standings, err
}
