package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/AdamBeresnev/tournament-bracket/internal/bracket"
	"github.com/AdamBeresnev/tournament-bracket/internal/store"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := sqlx.Connect("sqlite3", "file::memory:?_foreign_keys=on&_txlock=immediate")
	require.NoError(t, err, "Failed to connect to in-memory DB")
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

// services wires every service against one database, the way cmd/web does.
type services struct {
	store       *store.TournamentStore
	tournaments *TournamentService
	teams       *TeamService
	matches     *MatchService
	generator   *MatchGenerator
	finals      *FinalsGenerator
	standings   *StandingsService
	status      *StatusManager
	pipeline    *Pipeline
	notifier    *recordingNotifier
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *recordingNotifier) NotifyTournament(tournamentID uuid.UUID, event string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func newServices(t *testing.T) *services {
	t.Helper()
	db := setupTestDB(t)
	t.Cleanup(func() { db.Close() })

	s := &services{store: store.NewTournamentStore(db), notifier: &recordingNotifier{}}
	s.tournaments = NewTournamentService(db, s.store)
	s.teams = NewTeamService(db, s.store)
	s.matches = NewMatchService(db, s.store)
	s.generator = NewMatchGenerator(db, s.store, bracket.SequentialSeeding)
	s.finals = NewFinalsGenerator(db, s.store, DefaultFinalsAdvance)
	s.standings = NewStandingsService(db, s.store)
	s.status = NewStatusManager(db, s.store)
	s.pipeline = NewPipeline(s.store, s.generator, s.finals, s.standings, s.status, s.notifier)
	return s
}

// Event date far enough ahead that scheduled matches never count as started.
var futureDate = time.Date(2099, 6, 1, 18, 0, 0, 0, time.UTC)

func (s *services) createTournament(t *testing.T, teamsMax int) *bracket.Tournament {
	t.Helper()
	tournament, err := s.tournaments.CreateTournament(context.Background(), TournamentInput{
		Name:      "Summer Cup",
		Sport:     "football",
		Location:  "Riga",
		EventDate: futureDate,
		TeamsMax:  teamsMax,
	})
	require.NoError(t, err)
	return tournament
}

func (s *services) registerTeams(t *testing.T, tournamentID uuid.UUID, count int) []bracket.Team {
	t.Helper()
	teams := make([]bracket.Team, 0, count)
	for i := 1; i <= count; i++ {
		team, created, err := s.teams.RegisterTeam(context.Background(), tournamentID, TeamInput{Name: fmt.Sprintf("Team %d", i)})
		require.NoError(t, err)
		require.True(t, created)
		teams = append(teams, *team)
	}
	return teams
}

func matchesIn(matches []bracket.Match, stage bracket.MatchStage) []bracket.Match {
	var out []bracket.Match
	for _, m := range matches {
		if m.Stage == stage {
			out = append(out, m)
		}
	}
	return out
}

var missingTournamentID = uuid.MustParse("00000000-0000-0000-0000-0000000000ff")

// playRound records score lines for the given matches in order.
func (s *services) playRound(t *testing.T, matches []bracket.Match, scores ...[2]int) {
	t.Helper()
	require.Len(t, scores, len(matches))
	for i, m := range matches {
		_, _, err := s.matches.RecordResult(context.Background(), m.ID, scores[i][0], scores[i][1])
		require.NoError(t, err)
	}
}
