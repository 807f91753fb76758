package bracket

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNoTeams        = errors.New("no teams to pair")
	ErrOddTeamCount   = errors.New("team count must be even")
	ErrUnknownSeeding = errors.New("unknown seeding rule")
	ErrInvalidAdvance = errors.New("finals advance count must be even and at least 2")
	ErrNotEnoughTeams = errors.New("not enough teams for a finals round")
)

type SeedingRule string

const (
	// SequentialSeeding pairs neighbours in registration order: 1v2, 3v4, ...
	SequentialSeeding SeedingRule = "sequential"
	// StandardSeeding pairs top against bottom in bracket order: 1vN, N/2v(N/2+1), ...
	StandardSeeding SeedingRule = "standard"
)

func ParseSeedingRule(s string) (SeedingRule, error) {
	switch SeedingRule(s) {
	case SequentialSeeding, StandardSeeding:
		return SeedingRule(s), nil
	case "":
		return SequentialSeeding, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSeeding, s)
}

// Pairings returns index pairs into a team list of the given size.
func Pairings(rule SeedingRule, count int) ([][2]int, error) {
	if count <= 0 {
		return nil, ErrNoTeams
	}
	if count%2 != 0 {
		return nil, fmt.Errorf("%w: got %d", ErrOddTeamCount, count)
	}

	switch rule {
	case SequentialSeeding:
		pairs := make([][2]int, 0, count/2)
		for i := 0; i < count; i += 2 {
			pairs = append(pairs, [2]int{i, i + 1})
		}
		return pairs, nil
	case StandardSeeding:
		if isPowerOfTwo(count) {
			return bracketOrderPairs(count), nil
		}
		// No bracket order without byes, so fold the list instead
		pairs := make([][2]int, 0, count/2)
		for i := 0; i < count/2; i++ {
			pairs = append(pairs, [2]int{i, count - 1 - i})
		}
		return pairs, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownSeeding, rule)
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// bracketOrderPairs expands seed 0 into the classic bracket order, so with
// size 8 the pairs come out as 1v8, 4v5, 2v7, 3v6 (zero based).
func bracketOrderPairs(size int) [][2]int {
	order := []int{0}
	for len(order) < size {
		var next []int
		currentCount := len(order) * 2

		for _, seed := range order {
			next = append(next, seed)
			next = append(next, (currentCount-1)-seed)
		}
		order = next
	}

	pairs := make([][2]int, 0, size/2)
	for i := 0; i < len(order); i += 2 {
		pairs = append(pairs, [2]int{order[i], order[i+1]})
	}
	return pairs
}

// MatchID derives a stable id from the match position, so regenerating the
// same round always yields the same records.
func MatchID(tournamentID uuid.UUID, stage MatchStage, round, order int) uuid.UUID {
	return uuid.NewSHA1(tournamentID, []byte(fmt.Sprintf("%s/%d/%d", stage, round, order)))
}

func buildRound(tournamentID uuid.UUID, stage MatchStage, round int, teamIDs []uuid.UUID, pairs [][2]int, scheduledAt *time.Time) []Match {
	matches := make([]Match, 0, len(pairs))
	for i, pair := range pairs {
		order := i + 1
		team1 := teamIDs[pair[0]]
		team2 := teamIDs[pair[1]]
		matches = append(matches, Match{
			ID:           MatchID(tournamentID, stage, round, order),
			TournamentID: tournamentID,
			Stage:        stage,
			RoundNumber:  round,
			MatchOrder:   order,
			Team1ID:      &team1,
			Team2ID:      &team2,
			ScheduledAt:  scheduledAt,
		})
	}
	return matches
}

// FirstRound pairs the given teams into round 1 of the qualifying stage.
func FirstRound(tournamentID uuid.UUID, teamIDs []uuid.UUID, rule SeedingRule, scheduledAt *time.Time) ([]Match, error) {
	pairs, err := Pairings(rule, len(teamIDs))
	if err != nil {
		return nil, err
	}
	return buildRound(tournamentID, QualifyingStage, 1, teamIDs, pairs, scheduledAt), nil
}
