package bracket

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// QualifiersTerminal reports whether qualifying play exists and every
// qualifying match has a result.
func QualifiersTerminal(matches []Match) bool {
	qualifying := 0
	for i := range matches {
		if matches[i].Stage != QualifyingStage {
			continue
		}
		qualifying++
		if !matches[i].IsCompleted() {
			return false
		}
	}
	return qualifying > 0
}

// LastRound is the highest round number among the given matches.
func LastRound(matches []Match) int {
	last := 0
	for _, m := range matches {
		if m.RoundNumber > last {
			last = m.RoundNumber
		}
	}
	return last
}

// PlanFinals pairs the top advance teams of the standings into a single round.
// When fewer teams are ranked than requested, the largest even count is used.
func PlanFinals(tournamentID uuid.UUID, standings []StandingEntry, advance, round int, scheduledAt *time.Time) ([]Match, error) {
	if advance < 2 || advance%2 != 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidAdvance, advance)
	}
	if advance > len(standings) {
		advance = len(standings) - len(standings)%2
	}
	if advance < 2 {
		return nil, fmt.Errorf("%w: %d ranked", ErrNotEnoughTeams, len(standings))
	}

	ranked := make([]StandingEntry, len(standings))
	copy(ranked, standings)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Rank < ranked[j].Rank
	})

	teamIDs := make([]uuid.UUID, 0, advance)
	for _, s := range ranked[:advance] {
		teamIDs = append(teamIDs, s.TeamID)
	}

	pairs, err := Pairings(StandardSeeding, advance)
	if err != nil {
		return nil, err
	}
	return buildRound(tournamentID, FinalsStage, round, teamIDs, pairs, scheduledAt), nil
}
