package seed

import (
	"context"
	"testing"

	"github.com/AdamBeresnev/tournament-bracket/internal/bracket"
	"github.com/AdamBeresnev/tournament-bracket/internal/service"
	"github.com/AdamBeresnev/tournament-bracket/internal/store"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := sqlx.Connect("sqlite3", "file::memory:?_foreign_keys=on&_txlock=immediate")
	require.NoError(t, err, "Failed to connect to in-memory DB")
	database.SetMaxOpenConns(1)

	driver, err := sqlite3.WithInstance(database.DB, &sqlite3.Config{})
	require.NoError(t, err, "Failed to create migrate driver instance")

	m, err := migrate.NewWithDatabaseInstance("file://../../migrations", "sqlite3", driver)
	require.NoError(t, err, "Failed to create migrate instance")

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		require.NoError(t, err, "Failed to apply migrations")
	}
	return database
}

func TestListingIsValid(t *testing.T) {
	ts, err := parse()
	require.NoError(t, err)
	require.NotEmpty(t, ts)

	for _, tr := range ts {
		assert.NotEmpty(t, tr.Name)
		assert.Zero(t, tr.TeamsMax%2, "%s needs an even capacity", tr.Name)
		assert.LessOrEqual(t, len(tr.Teams), tr.TeamsMax, tr.Name)
	}
}

func TestLoad(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	tournamentStore := store.NewTournamentStore(db)
	tournaments := service.NewTournamentService(db, tournamentStore)
	teams := service.NewTeamService(db, tournamentStore)
	matches := service.NewMatchService(db, tournamentStore)
	pipeline := service.NewPipeline(
		tournamentStore,
		service.NewMatchGenerator(db, tournamentStore, bracket.SequentialSeeding),
		service.NewFinalsGenerator(db, tournamentStore, service.DefaultFinalsAdvance),
		service.NewStandingsService(db, tournamentStore),
		service.NewStatusManager(db, tournamentStore),
		nil,
	)

	loaded, err := Load(ctx, tournaments, teams, pipeline)
	require.NoError(t, err)
	assert.Equal(t, 4, loaded)

	listed, err := tournaments.ListTournaments(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 4)

	byName := make(map[string]bracket.Tournament)
	for _, tr := range listed {
		byName[tr.Name] = tr
	}
	volleyball := byName["Beach Volleyball Open"]
	assert.Equal(t, 4, volleyball.TeamsCurrent)
	assert.True(t, volleyball.IsFull())
	assert.Equal(t, 0, byName["Midweek Padel Doubles"].TeamsCurrent)

	tests := []struct {
		name    string
		stage   bracket.Stage
		open    bool
		matches int
	}{
		{name: "Beach Volleyball Open", stage: bracket.StageQualifying, open: false, matches: 2},
		{name: "Midweek Padel Doubles", stage: bracket.StageRegistration, open: true, matches: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := byName[tt.name]
			assert.Equal(t, tt.stage, tr.Stage)
			assert.Equal(t, tt.open, tr.Status == bracket.TournamentOpen, "status %s", tr.Status)

			data, err := tournaments.GetTournamentData(ctx, tr.ID)
			require.NoError(t, err)
			assert.Len(t, data.Matches, tt.matches)
			for _, m := range data.Matches {
				got, err := matches.GetMatch(ctx, m.ID)
				require.NoError(t, err)
				assert.Equal(t, tr.ID, got.TournamentID)
			}
		})
	}

	again, err := Load(ctx, tournaments, teams, pipeline)
	require.NoError(t, err)
	assert.Zero(t, again)
}
