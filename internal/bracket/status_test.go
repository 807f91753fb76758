package bracket

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestDeriveStatus(t *testing.T) {
	testCases := []struct {
		name     string
		current  int
		max      int
		progress MatchProgress
		expected TournamentStatus
	}{
		{"empty", 0, 4, MatchProgress{}, TournamentOpen},
		{"partly filled", 3, 4, MatchProgress{}, TournamentOpen},
		{"full", 4, 4, MatchProgress{}, TournamentFull},
		{"live", 4, 4, MatchProgress{Started: true}, TournamentLive},
		{"completed", 4, 4, MatchProgress{Started: true, FinalsComplete: true}, TournamentCompleted},
		{"below capacity ignores progress", 2, 4, MatchProgress{Started: true, FinalsComplete: true}, TournamentOpen},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, DeriveStatus(tc.current, tc.max, tc.progress))
		})
	}
}

func TestDeriveStatusOpenIffBelowCapacity(t *testing.T) {
	progresses := []MatchProgress{{}, {Started: true}, {Started: true, FinalsComplete: true}}
	for max := 2; max <= 16; max += 2 {
		for current := 0; current <= max; current++ {
			for _, p := range progresses {
				status := DeriveStatus(current, max, p)
				assert.Equal(t, current < max, status == TournamentOpen, "current=%d max=%d progress=%+v", current, max, p)
			}
		}
	}
}

func TestProgressOf(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	later := now.Add(time.Hour)
	earlier := now.Add(-time.Hour)
	score := 1

	pending := Match{ID: uuid.New(), Stage: QualifyingStage, ScheduledAt: &later}
	assert.Equal(t, MatchProgress{}, ProgressOf([]Match{pending}, now))

	kickedOff := Match{ID: uuid.New(), Stage: QualifyingStage, ScheduledAt: &earlier}
	assert.Equal(t, MatchProgress{Started: true}, ProgressOf([]Match{pending, kickedOff}, now))

	played := Match{ID: uuid.New(), Stage: QualifyingStage, Score1: &score, Score2: &score}
	assert.True(t, ProgressOf([]Match{played}, now).Started)

	final := Match{ID: uuid.New(), Stage: FinalsStage}
	assert.False(t, ProgressOf([]Match{played, final}, now).FinalsComplete)

	final.Score1, final.Score2 = &score, &score
	assert.True(t, ProgressOf([]Match{played, final}, now).FinalsComplete)
}
