package bracket

import (
	"time"

	"github.com/google/uuid"
)

const (
	PointsForWin  = 3
	PointsForDraw = 1
	PointsForLoss = 0
)

type StandingEntry struct {
	TournamentID uuid.UUID `db:"tournament_id" json:"tournament_id"`
	TeamID       uuid.UUID `db:"team_id" json:"team_id"`
	Rank         int       `db:"rank" json:"rank"`
	Played       int       `db:"played" json:"played"`
	Wins         int       `db:"wins" json:"wins"`
	Draws        int       `db:"draws" json:"draws"`
	Losses       int       `db:"losses" json:"losses"`
	Points       int       `db:"points" json:"points"`
	ScoreFor     int       `db:"score_for" json:"score_for"`
	ScoreAgainst int       `db:"score_against" json:"score_against"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

func (s StandingEntry) ScoreDifference() int {
	return s.ScoreFor - s.ScoreAgainst
}
