package store

import (
	"context"
	"errors"

	"github.com/AdamBeresnev/tournament-bracket/internal/bracket"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
)

var ErrDuplicate = errors.New("duplicate record")

type TournamentStore struct {
	db *sqlx.DB
}

func NewTournamentStore(db *sqlx.DB) *TournamentStore {
	return &TournamentStore{db: db}
}

const (
	tournamentColumns = `id, name, slug, sport, location, event_date, price_cents, teams_current, teams_max, status, stage, created_at`

	createTournamentQuery = `
		INSERT INTO tournaments (id, name, slug, sport, location, event_date, price_cents, teams_current, teams_max, status, stage)
		VALUES (:id, :name, :slug, :sport, :location, :event_date, :price_cents, :teams_current, :teams_max, :status, :stage)
	`
	// The capacity check and the increment are one statement, so concurrent
	// registrations can never push teams_current past teams_max.
	incrementTeamsQuery = `
		UPDATE tournaments SET teams_current = teams_current + 1
		WHERE id = ? AND teams_current < teams_max
	`
	claimStageQuery   = `UPDATE tournaments SET stage = ? WHERE id = ? AND stage = ?`
	updateStatusQuery = `UPDATE tournaments SET status = ? WHERE id = ? AND status = ?`

	createTeamQuery = `
		INSERT INTO teams (id, tournament_id, name, seed, registered_at)
		VALUES (:id, :tournament_id, :name, :seed, :registered_at)
	`
)

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

func (s *TournamentStore) CreateTournament(ctx context.Context, tx *sqlx.Tx, tournament *bracket.Tournament) error {
	_, err := tx.NamedExecContext(ctx, createTournamentQuery, tournament)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (s *TournamentStore) GetTournament(ctx context.Context, id string) (*bracket.Tournament, error) {
	return getTournament(ctx, s.db, id)
}

func (s *TournamentStore) GetTournamentTx(ctx context.Context, tx *sqlx.Tx, id string) (*bracket.Tournament, error) {
	return getTournament(ctx, tx, id)
}

func getTournament(ctx context.Context, q sqlx.QueryerContext, id string) (*bracket.Tournament, error) {
	var tournament bracket.Tournament
	err := sqlx.GetContext(ctx, q, &tournament, "SELECT "+tournamentColumns+" FROM tournaments WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	return &tournament, nil
}

func (s *TournamentStore) ListTournaments(ctx context.Context) ([]bracket.Tournament, error) {
	var tournaments []bracket.Tournament
	err := s.db.SelectContext(ctx, &tournaments, "SELECT "+tournamentColumns+" FROM tournaments ORDER BY event_date ASC, name ASC")
	return tournaments, err
}

// ListUnfinishedTournamentIDs returns every tournament that can still change status.
func (s *TournamentStore) ListUnfinishedTournamentIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := s.db.SelectContext(ctx, &ids, "SELECT id FROM tournaments WHERE status != ? ORDER BY event_date ASC", bracket.TournamentCompleted)
	return ids, err
}

func (s *TournamentStore) CountTournaments(ctx context.Context) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM tournaments")
	return count, err
}

// IncrementTeamsTx reserves a registration slot. It returns false when the
// tournament is already at capacity or does not exist.
func (s *TournamentStore) IncrementTeamsTx(ctx context.Context, tx *sqlx.Tx, tournamentID string) (bool, error) {
	return execAffectsRow(ctx, tx, incrementTeamsQuery, tournamentID)
}

// ClaimStageTx moves the tournament from one stage to the next. Only the
// caller that gets true may write the matches of the new stage.
func (s *TournamentStore) ClaimStageTx(ctx context.Context, tx *sqlx.Tx, tournamentID string, from, to bracket.Stage) (bool, error) {
	return execAffectsRow(ctx, tx, claimStageQuery, to, tournamentID, from)
}

// UpdateStatusTx is a compare-and-set on the status column.
func (s *TournamentStore) UpdateStatusTx(ctx context.Context, tx *sqlx.Tx, tournamentID string, from, to bracket.TournamentStatus) (bool, error) {
	return execAffectsRow(ctx, tx, updateStatusQuery, to, tournamentID, from)
}

func execAffectsRow(ctx context.Context, tx *sqlx.Tx, query string, args ...interface{}) (bool, error) {
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (s *TournamentStore) CreateTeam(ctx context.Context, tx *sqlx.Tx, team *bracket.Team) error {
	_, err := tx.NamedExecContext(ctx, createTeamQuery, team)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (s *TournamentStore) GetTeamTx(ctx context.Context, tx *sqlx.Tx, id string) (*bracket.Team, error) {
	var team bracket.Team
	err := tx.GetContext(ctx, &team, "SELECT * FROM teams WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	return &team, nil
}

func (s *TournamentStore) GetTeams(ctx context.Context, tournamentID string) ([]bracket.Team, error) {
	return getTeams(ctx, s.db, tournamentID)
}

func (s *TournamentStore) GetTeamsTx(ctx context.Context, tx *sqlx.Tx, tournamentID string) ([]bracket.Team, error) {
	return getTeams(ctx, tx, tournamentID)
}

func getTeams(ctx context.Context, q sqlx.QueryerContext, tournamentID string) ([]bracket.Team, error) {
	var teams []bracket.Team
	err := sqlx.SelectContext(ctx, q, &teams, "SELECT * FROM teams WHERE tournament_id = ? ORDER BY seed ASC", tournamentID)
	return teams, err
}
