package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/AdamBeresnev/tournament-bracket/internal/bracket"
	"github.com/AdamBeresnev/tournament-bracket/internal/store"
	"github.com/google/uuid"
)

// Event names sent to a Notifier.
const (
	EventTeamCreated  = "team_created"
	EventMatchUpdated = "match_updated"
	EventReconciled   = "reconciled"
)

type Notifier interface {
	NotifyTournament(tournamentID uuid.UUID, event string)
}

type TeamCreatedEvent struct {
	TournamentID uuid.UUID `json:"tournament_id"`
	TeamID       uuid.UUID `json:"team_id"`
}

type MatchUpdatedEvent struct {
	TournamentID uuid.UUID `json:"tournament_id"`
	MatchID      uuid.UUID `json:"match_id"`
}

// Pipeline reacts to document events. Each step is idempotent, so delivering
// the same event twice, or two events at once, ends in the same state.
type Pipeline struct {
	store     *store.TournamentStore
	generator *MatchGenerator
	finals    *FinalsGenerator
	standings *StandingsService
	status    *StatusManager
	notifier  Notifier
}

func NewPipeline(
	store *store.TournamentStore,
	generator *MatchGenerator,
	finals *FinalsGenerator,
	standings *StandingsService,
	status *StatusManager,
	notifier Notifier,
) *Pipeline {
	return &Pipeline{
		store:     store,
		generator: generator,
		finals:    finals,
		standings: standings,
		status:    status,
		notifier:  notifier,
	}
}

func (p *Pipeline) OnTeamCreated(ctx context.Context, event TeamCreatedEvent) error {
	teams, err := p.store.GetTeams(ctx, event.TournamentID.String())
	if err != nil {
		return fmt.Errorf("failed to get teams: %w", err)
	}
	found := false
	for _, t := range teams {
		if t.ID == event.TeamID {
			found = true
			break
		}
	}
	if !found {
		return ErrTeamNotFound
	}

	if err := p.converge(ctx, event.TournamentID); err != nil {
		return err
	}
	p.notify(event.TournamentID, EventTeamCreated)
	return nil
}

func (p *Pipeline) OnMatchUpdated(ctx context.Context, event MatchUpdatedEvent) error {
	match, err := p.store.GetMatch(ctx, event.MatchID.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrMatchNotFound
		}
		return fmt.Errorf("failed to get match: %w", err)
	}
	if match.TournamentID != event.TournamentID {
		return fmt.Errorf("%w: match %s is not part of tournament %s", ErrValidation, event.MatchID, event.TournamentID)
	}

	if err := p.converge(ctx, event.TournamentID); err != nil {
		return err
	}
	p.notify(event.TournamentID, EventMatchUpdated)
	return nil
}

// Reconcile converges every tournament that has not completed. It picks up
// scheduled kick-offs and events that were never delivered.
func (p *Pipeline) Reconcile(ctx context.Context) error {
	ids, err := p.store.ListUnfinishedTournamentIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list tournaments: %w", err)
	}

	var errs []error
	for _, raw := range ids {
		id, err := uuid.Parse(raw)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := p.converge(ctx, id); err != nil {
			slog.Error("reconcile failed", "tournament_id", raw, "error", err)
			errs = append(errs, err)
			continue
		}
		p.notify(id, EventReconciled)
	}
	return errors.Join(errs...)
}

func (p *Pipeline) converge(ctx context.Context, tournamentID uuid.UUID) error {
	status, err := p.status.Sync(ctx, tournamentID)
	if err != nil {
		return err
	}
	if status == bracket.TournamentOpen {
		return nil
	}

	if _, err := p.generator.Generate(ctx, tournamentID); err != nil {
		return err
	}

	if _, err := p.finals.Generate(ctx, tournamentID); err != nil && !errors.Is(err, ErrFinalsNotReady) {
		return err
	}

	if _, err := p.standings.Recompute(ctx, tournamentID); err != nil {
		return err
	}

	_, err = p.status.Sync(ctx, tournamentID)
	return err
}

func (p *Pipeline) notify(tournamentID uuid.UUID, event string) {
	if p.notifier != nil {
		p.notifier.NotifyTournament(tournamentID, event)
	}
}
