package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/AdamBeresnev/tournament-bracket/internal/bracket"
	"github.com/AdamBeresnev/tournament-bracket/internal/utils"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates an in-memory SQLite database and applies migrations
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := sqlx.Connect("sqlite3", "file::memory:?_foreign_keys=on&_txlock=immediate")
	require.NoError(t, err, "Failed to connect to in-memory DB")

	// Every new connection would get its own empty in-memory database
	database.SetMaxOpenConns(1)

	driver, err := sqlite3.WithInstance(database.DB, &sqlite3.Config{})
	require.NoError(t, err, "Failed to create migrate driver instance")

	m, err := migrate.NewWithDatabaseInstance(
		"file://../../migrations",
		"sqlite3",
		driver,
	)
	require.NoError(t, err, "Failed to create migrate instance")

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		require.NoError(t, err, "Failed to apply migrations")
	}

	return database
}

func newTournament(teamsMax int) *bracket.Tournament {
	return &bracket.Tournament{
		ID:         uuid.New(),
		Name:       "Summer Cup",
		Sport:      "football",
		Location:   "Riga",
		EventDate:  time.Date(2026, 7, 4, 10, 0, 0, 0, time.UTC),
		PriceCents: 2500,
		TeamsMax:   teamsMax,
		Status:     bracket.TournamentOpen,
		Stage:      bracket.StageRegistration,
	}
}

func insertTournament(t *testing.T, db *sqlx.DB, store *TournamentStore, tournament *bracket.Tournament) {
	t.Helper()
	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	require.NoError(t, store.CreateTournament(context.Background(), tx, tournament))
	require.NoError(t, tx.Commit())
}

func insertTeams(t *testing.T, db *sqlx.DB, store *TournamentStore, tournamentID uuid.UUID, n int) []bracket.Team {
	t.Helper()
	ctx := context.Background()
	var teams []bracket.Team

	tx, err := db.BeginTxx(ctx, nil)
	require.NoError(t, err)
	for i := 1; i <= n; i++ {
		ok, err := store.IncrementTeamsTx(ctx, tx, tournamentID.String())
		require.NoError(t, err)
		require.True(t, ok)

		team := bracket.Team{
			ID:           uuid.New(),
			TournamentID: tournamentID,
			Name:         "Team " + string(rune('A'+i-1)),
			Seed:         i,
			RegisteredAt: time.Now().UTC(),
		}
		require.NoError(t, store.CreateTeam(ctx, tx, &team))
		teams = append(teams, team)
	}
	require.NoError(t, tx.Commit())
	return teams
}

func TestCreateTournament(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	store := NewTournamentStore(db)
	tournament := newTournament(4)
	insertTournament(t, db, store, tournament)

	fetched, err := store.GetTournament(context.Background(), tournament.ID.String())
	require.NoError(t, err)

	assert.Equal(t, tournament.ID, fetched.ID)
	assert.Equal(t, tournament.Name, fetched.Name)
	assert.Equal(t, tournament.Sport, fetched.Sport)
	assert.Equal(t, tournament.Location, fetched.Location)
	assert.True(t, tournament.EventDate.Equal(fetched.EventDate))
	assert.Equal(t, tournament.PriceCents, fetched.PriceCents)
	assert.Equal(t, 0, fetched.TeamsCurrent)
	assert.Equal(t, 4, fetched.TeamsMax)
	assert.Equal(t, bracket.TournamentOpen, fetched.Status)
	assert.Equal(t, bracket.StageRegistration, fetched.Stage)
	assert.WithinDuration(t, time.Now().UTC(), fetched.CreatedAt, time.Minute)
}

func TestListTournamentsOrderedByDate(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	store := NewTournamentStore(db)
	later := newTournament(4)
	later.EventDate = later.EventDate.AddDate(0, 1, 0)
	sooner := newTournament(8)

	insertTournament(t, db, store, later)
	insertTournament(t, db, store, sooner)

	tournaments, err := store.ListTournaments(context.Background())
	require.NoError(t, err)
	require.Len(t, tournaments, 2)
	assert.Equal(t, sooner.ID, tournaments[0].ID)
	assert.Equal(t, later.ID, tournaments[1].ID)

	count, err := store.CountTournaments(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestIncrementTeamsStopsAtCapacity(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	store := NewTournamentStore(db)
	tournament := newTournament(2)
	insertTournament(t, db, store, tournament)
	insertTeams(t, db, store, tournament.ID, 2)

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	defer tx.Rollback()

	ok, err := store.IncrementTeamsTx(context.Background(), tx, tournament.ID.String())
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = store.IncrementTeamsTx(context.Background(), tx, uuid.NewString())
	require.NoError(t, err)
	assert.False(t, ok, "unknown tournament reserves nothing")
}

func TestIncrementTeamsConcurrent(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	store := NewTournamentStore(db)
	tournament := newTournament(4)
	insertTournament(t, db, store, tournament)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		granted int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tx, err := db.BeginTxx(context.Background(), nil)
			if !assert.NoError(t, err) {
				return
			}
			defer tx.Rollback()

			ok, err := store.IncrementTeamsTx(context.Background(), tx, tournament.ID.String())
			if !assert.NoError(t, err) {
				return
			}
			if assert.NoError(t, tx.Commit()) && ok {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 4, granted)
	fetched, err := store.GetTournament(context.Background(), tournament.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 4, fetched.TeamsCurrent)
}

func TestCreateTeamDuplicateName(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	store := NewTournamentStore(db)
	tournament := newTournament(4)
	insertTournament(t, db, store, tournament)
	teams := insertTeams(t, db, store, tournament.ID, 1)

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	defer tx.Rollback()

	dup := bracket.Team{ID: uuid.New(), TournamentID: tournament.ID, Name: teams[0].Name, Seed: 2, RegisteredAt: time.Now().UTC()}
	err = store.CreateTeam(context.Background(), tx, &dup)
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestClaimStage(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	store := NewTournamentStore(db)
	tournament := newTournament(2)
	insertTournament(t, db, store, tournament)

	ctx := context.Background()
	tx, err := db.BeginTxx(ctx, nil)
	require.NoError(t, err)

	ok, err := store.ClaimStageTx(ctx, tx, tournament.ID.String(), bracket.StageRegistration, bracket.StageQualifying)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.ClaimStageTx(ctx, tx, tournament.ID.String(), bracket.StageRegistration, bracket.StageQualifying)
	require.NoError(t, err)
	assert.False(t, ok, "second claim must lose")
	require.NoError(t, tx.Commit())

	fetched, err := store.GetTournament(ctx, tournament.ID.String())
	require.NoError(t, err)
	assert.Equal(t, bracket.StageQualifying, fetched.Stage)
}

func TestUpdateStatusCompareAndSet(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	store := NewTournamentStore(db)
	tournament := newTournament(2)
	insertTournament(t, db, store, tournament)

	ctx := context.Background()
	tx, err := db.BeginTxx(ctx, nil)
	require.NoError(t, err)
	defer tx.Rollback()

	ok, err := store.UpdateStatusTx(ctx, tx, tournament.ID.String(), bracket.TournamentFull, bracket.TournamentLive)
	require.NoError(t, err)
	assert.False(t, ok, "stale previous status")

	ok, err = store.UpdateStatusTx(ctx, tx, tournament.ID.String(), bracket.TournamentOpen, bracket.TournamentFull)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCreateMatches(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	store := NewTournamentStore(db)
	tournament := newTournament(4)
	insertTournament(t, db, store, tournament)
	teams := insertTeams(t, db, store, tournament.ID, 4)

	matches, err := bracket.FirstRound(tournament.ID, bracket.TeamIDs(teams), bracket.SequentialSeeding, utils.Ptr(tournament.EventDate))
	require.NoError(t, err)

	ctx := context.Background()
	tx, err := db.BeginTxx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, store.CreateMatches(ctx, tx, matches))
	require.NoError(t, tx.Commit())

	fetched, err := store.GetMatches(ctx, tournament.ID.String())
	require.NoError(t, err)
	require.Len(t, fetched, 2)

	for i := range matches {
		assert.Equal(t, matches[i].ID, fetched[i].ID)
		assert.Equal(t, matches[i].Stage, fetched[i].Stage)
		assert.Equal(t, matches[i].RoundNumber, fetched[i].RoundNumber)
		assert.Equal(t, matches[i].MatchOrder, fetched[i].MatchOrder)
		assert.Equal(t, *matches[i].Team1ID, *fetched[i].Team1ID)
		assert.Equal(t, *matches[i].Team2ID, *fetched[i].Team2ID)
		assert.Nil(t, fetched[i].Score1)
		assert.Nil(t, fetched[i].Score2)
		assert.Nil(t, fetched[i].WinnerID)
		assert.Nil(t, fetched[i].CompletedAt)
		require.NotNil(t, fetched[i].ScheduledAt)
		assert.True(t, tournament.EventDate.Equal(*fetched[i].ScheduledAt))
	}

	tx, err = db.BeginTxx(ctx, nil)
	require.NoError(t, err)
	defer tx.Rollback()
	assert.ErrorIs(t, store.CreateMatches(ctx, tx, matches), ErrDuplicate)
}

func TestRecordResultOnlyOnce(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	store := NewTournamentStore(db)
	tournament := newTournament(2)
	insertTournament(t, db, store, tournament)
	teams := insertTeams(t, db, store, tournament.ID, 2)

	matches, err := bracket.FirstRound(tournament.ID, bracket.TeamIDs(teams), bracket.SequentialSeeding, nil)
	require.NoError(t, err)

	ctx := context.Background()
	tx, err := db.BeginTxx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, store.CreateMatches(ctx, tx, matches))

	match := matches[0]
	match.ApplyResult(2, 0, time.Now().UTC())
	ok, err := store.RecordResultTx(ctx, tx, &match)
	require.NoError(t, err)
	assert.True(t, ok)

	match.ApplyResult(0, 2, time.Now().UTC())
	ok, err = store.RecordResultTx(ctx, tx, &match)
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, tx.Commit())

	fetched, err := store.GetMatch(ctx, match.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 2, *fetched.Score1)
	assert.Equal(t, 0, *fetched.Score2)
	assert.Equal(t, teams[0].ID, *fetched.WinnerID)
	assert.NotNil(t, fetched.CompletedAt)
}

func TestReplaceStandings(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	store := NewTournamentStore(db)
	tournament := newTournament(2)
	insertTournament(t, db, store, tournament)
	teams := insertTeams(t, db, store, tournament.ID, 2)

	ctx := context.Background()
	write := func(standings []bracket.StandingEntry) {
		tx, err := db.BeginTxx(ctx, nil)
		require.NoError(t, err)
		require.NoError(t, store.ReplaceStandingsTx(ctx, tx, tournament.ID.String(), standings))
		require.NoError(t, tx.Commit())
	}

	now := time.Now().UTC()
	write(bracket.ComputeStandings(tournament.ID, bracket.TeamIDs(teams), nil))
	write([]bracket.StandingEntry{
		{TournamentID: tournament.ID, TeamID: teams[1].ID, Rank: 1, Played: 1, Wins: 1, Points: 3, ScoreFor: 2, UpdatedAt: now},
		{TournamentID: tournament.ID, TeamID: teams[0].ID, Rank: 2, Played: 1, Losses: 1, ScoreAgainst: 2, UpdatedAt: now},
	})

	standings, err := store.GetStandings(ctx, tournament.ID.String())
	require.NoError(t, err)
	require.Len(t, standings, 2)
	assert.Equal(t, teams[1].ID, standings[0].TeamID)
	assert.Equal(t, 3, standings[0].Points)
	assert.Equal(t, teams[0].ID, standings[1].TeamID)
	assert.Equal(t, 1, standings[1].Losses)
}
