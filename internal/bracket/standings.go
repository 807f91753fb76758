package bracket

import (
	"sort"

	"github.com/google/uuid"
)

// ComputeStandings rebuilds the table for the given teams from every completed
// match. Nothing is carried over from a previous table.
//
// Ranking order: points, head-to-head points among the teams level on points,
// score difference, score for, then team id ascending.
func ComputeStandings(tournamentID uuid.UUID, teamIDs []uuid.UUID, matches []Match) []StandingEntry {
	index := make(map[uuid.UUID]*StandingEntry, len(teamIDs))
	for _, id := range teamIDs {
		index[id] = &StandingEntry{TournamentID: tournamentID, TeamID: id}
	}

	counted := make([]*Match, 0, len(matches))
	for i := range matches {
		m := &matches[i]
		if !m.IsCompleted() || !m.IsSeeded() {
			continue
		}
		entry1 := index[*m.Team1ID]
		entry2 := index[*m.Team2ID]
		if entry1 == nil || entry2 == nil {
			continue
		}
		tally(entry1, *m.Score1, *m.Score2)
		tally(entry2, *m.Score2, *m.Score1)
		counted = append(counted, m)
	}

	h2h := headToHead(index, counted)

	standings := make([]StandingEntry, 0, len(index))
	for _, id := range teamIDs {
		standings = append(standings, *index[id])
	}

	sort.Slice(standings, func(i, j int) bool {
		a, b := standings[i], standings[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if h2h[a.TeamID] != h2h[b.TeamID] {
			return h2h[a.TeamID] > h2h[b.TeamID]
		}
		if a.ScoreDifference() != b.ScoreDifference() {
			return a.ScoreDifference() > b.ScoreDifference()
		}
		if a.ScoreFor != b.ScoreFor {
			return a.ScoreFor > b.ScoreFor
		}
		return a.TeamID.String() < b.TeamID.String()
	})

	for i := range standings {
		standings[i].Rank = i + 1
	}
	return standings
}

func tally(e *StandingEntry, scored, conceded int) {
	e.Played++
	e.ScoreFor += scored
	e.ScoreAgainst += conceded
	switch {
	case scored > conceded:
		e.Wins++
		e.Points += PointsForWin
	case scored == conceded:
		e.Draws++
		e.Points += PointsForDraw
	default:
		e.Losses++
		e.Points += PointsForLoss
	}
}

// headToHead returns, per team, the points earned only in matches against
// teams on the same overall points.
func headToHead(index map[uuid.UUID]*StandingEntry, matches []*Match) map[uuid.UUID]int {
	h2h := make(map[uuid.UUID]int)
	for _, m := range matches {
		t1, t2 := *m.Team1ID, *m.Team2ID
		if index[t1].Points != index[t2].Points {
			continue
		}
		switch {
		case *m.Score1 > *m.Score2:
			h2h[t1] += PointsForWin
		case *m.Score1 < *m.Score2:
			h2h[t2] += PointsForWin
		default:
			h2h[t1] += PointsForDraw
			h2h[t2] += PointsForDraw
		}
	}
	return h2h
}
