package seed

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/AdamBeresnev/tournament-bracket/internal/service"
	"github.com/google/uuid"
)

//go:embed tournaments.json
var listing []byte

type tournament struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Sport      string    `json:"sport"`
	Location   string    `json:"location"`
	Date       time.Time `json:"date"`
	PriceCents int64     `json:"price_cents"`
	TeamsMax   int       `json:"teams_max"`
	Teams      []string  `json:"teams"`
}

func parse() ([]tournament, error) {
	var ts []tournament
	if err := json.Unmarshal(listing, &ts); err != nil {
		return nil, fmt.Errorf("failed to parse seed listing: %w", err)
	}
	return ts, nil
}

type reconciler interface {
	Reconcile(ctx context.Context) error
}

// Load inserts the bundled listing through the services, so seeded teams go
// through the same registration path as real ones, then converges everything
// it inserted. It does nothing when the store already has tournaments.
func Load(ctx context.Context, tournaments *service.TournamentService, teams *service.TeamService, pipeline reconciler) (int, error) {
	existing, err := tournaments.ListTournaments(ctx)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		slog.Info("store already has tournaments, skipping seed", "count", len(existing))
		return 0, nil
	}

	entries, err := parse()
	if err != nil {
		return 0, err
	}

	for _, t := range entries {
		id := t.ID
		if _, err := tournaments.CreateTournament(ctx, service.TournamentInput{
			ID:         &id,
			Name:       t.Name,
			Sport:      t.Sport,
			Location:   t.Location,
			EventDate:  t.Date,
			PriceCents: t.PriceCents,
			TeamsMax:   t.TeamsMax,
		}); err != nil {
			return 0, fmt.Errorf("failed to seed %q: %w", t.Name, err)
		}

		for _, name := range t.Teams {
			if _, _, err := teams.RegisterTeam(ctx, id, service.TeamInput{Name: name}); err != nil {
				return 0, fmt.Errorf("failed to seed team %q for %q: %w", name, t.Name, err)
			}
		}
	}

	// Registration alone never generates a bracket, so a seeded tournament
	// that filled up needs the pipeline to catch up
	if err := pipeline.Reconcile(ctx); err != nil {
		return len(entries), fmt.Errorf("failed to reconcile seeded tournaments: %w", err)
	}

	slog.Info("seeded tournaments", "count", len(entries))
	return len(entries), nil
}
