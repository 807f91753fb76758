package bracket

import (
	"time"

	"github.com/google/uuid"
)

type TournamentStatus string

const (
	TournamentOpen      TournamentStatus = "open"
	TournamentFull      TournamentStatus = "full"
	TournamentLive      TournamentStatus = "live"
	TournamentCompleted TournamentStatus = "completed"
)

// Stage records which rounds have been generated. Moving from one stage to
// the next is the claim that lets exactly one caller write that round.
type Stage string

const (
	StageRegistration Stage = "registration"
	StageQualifying   Stage = "qualifying"
	StageFinals       Stage = "finals"
)

type Tournament struct {
	ID           uuid.UUID        `db:"id" json:"id"`
	Name         string           `db:"name" json:"name"`
	Slug         string           `db:"slug" json:"slug"`
	Sport        string           `db:"sport" json:"sport"`
	Location     string           `db:"location" json:"location"`
	EventDate    time.Time        `db:"event_date" json:"date"`
	PriceCents   int64            `db:"price_cents" json:"price_cents"`
	TeamsCurrent int              `db:"teams_current" json:"teams_current"`
	TeamsMax     int              `db:"teams_max" json:"teams_max"`
	Status       TournamentStatus `db:"status" json:"status"`
	Stage        Stage            `db:"stage" json:"stage"`
	CreatedAt    time.Time        `db:"created_at" json:"created_at"`
}

func (t *Tournament) IsFull() bool {
	return t.TeamsCurrent >= t.TeamsMax
}
