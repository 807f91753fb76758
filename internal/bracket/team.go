package bracket

import (
	"time"

	"github.com/google/uuid"
)

type Team struct {
	ID           uuid.UUID `db:"id" json:"id"`
	TournamentID uuid.UUID `db:"tournament_id" json:"tournament_id"`
	Name         string    `db:"name" json:"name"`
	// Registration position, 1 based. Pairing follows this order.
	Seed         int       `db:"seed" json:"seed"`
	RegisteredAt time.Time `db:"registered_at" json:"registered_at"`
}

// TeamIDs keeps the order of the input slice.
func TeamIDs(teams []Team) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(teams))
	for _, t := range teams {
		ids = append(ids, t.ID)
	}
	return ids
}
