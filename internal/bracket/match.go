package bracket

import (
	"time"

	"github.com/google/uuid"
)

type MatchStage string

const (
	QualifyingStage MatchStage = "qualifying"
	FinalsStage     MatchStage = "finals"
)

type Match struct {
	ID           uuid.UUID `db:"id" json:"id"`
	TournamentID uuid.UUID `db:"tournament_id" json:"tournament_id"`

	// Position in the tournament for reconstructing the view
	Stage       MatchStage `db:"stage" json:"stage"`
	RoundNumber int        `db:"round_number" json:"round"`
	MatchOrder  int        `db:"match_order" json:"order"`

	Team1ID *uuid.UUID `db:"team_1_id" json:"team_1_id"`
	Team2ID *uuid.UUID `db:"team_2_id" json:"team_2_id"`

	Score1   *int       `db:"score_1" json:"score_1"`
	Score2   *int       `db:"score_2" json:"score_2"`
	WinnerID *uuid.UUID `db:"winner_id" json:"winner_id"`

	ScheduledAt *time.Time `db:"scheduled_at" json:"scheduled_at"`
	CompletedAt *time.Time `db:"completed_at" json:"completed_at"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

// IsCompleted reports whether a result has been recorded.
func (m *Match) IsCompleted() bool {
	return m.Score1 != nil && m.Score2 != nil
}

func (m *Match) IsDraw() bool {
	return m.IsCompleted() && m.WinnerID == nil
}

func (m *Match) IsSeeded() bool {
	return m.Team1ID != nil && m.Team2ID != nil
}

// HasStarted is true once a result exists or the scheduled kick-off has passed.
func (m *Match) HasStarted(now time.Time) bool {
	if m.IsCompleted() {
		return true
	}
	return m.ScheduledAt != nil && !m.ScheduledAt.After(now)
}

// SameResult compares a recorded result with a candidate score line.
func (m *Match) SameResult(score1, score2 int) bool {
	return m.IsCompleted() && *m.Score1 == score1 && *m.Score2 == score2
}

// ApplyResult stores the score line and derives the winner. A level score
// leaves WinnerID nil.
func (m *Match) ApplyResult(score1, score2 int, at time.Time) {
	m.Score1 = &score1
	m.Score2 = &score2
	m.CompletedAt = &at
	m.WinnerID = nil
	switch {
	case score1 > score2:
		winner := *m.Team1ID
		m.WinnerID = &winner
	case score2 > score1:
		winner := *m.Team2ID
		m.WinnerID = &winner
	}
}
