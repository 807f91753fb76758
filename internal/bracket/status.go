package bracket

import "time"

// MatchProgress is the part of the match history that status depends on.
type MatchProgress struct {
	Started        bool
	FinalsComplete bool
}

func ProgressOf(matches []Match, now time.Time) MatchProgress {
	var p MatchProgress
	finals, finalsDone := 0, 0
	for i := range matches {
		m := &matches[i]
		if m.HasStarted(now) {
			p.Started = true
		}
		if m.Stage == FinalsStage {
			finals++
			if m.IsCompleted() {
				finalsDone++
			}
		}
	}
	p.FinalsComplete = finals > 0 && finals == finalsDone
	return p
}

// DeriveStatus is the only place a tournament status comes from. Registration
// counts win over match progress so that a tournament below capacity is always open.
func DeriveStatus(teamsCurrent, teamsMax int, p MatchProgress) TournamentStatus {
	switch {
	case teamsCurrent < teamsMax:
		return TournamentOpen
	case p.FinalsComplete:
		return TournamentCompleted
	case p.Started:
		return TournamentLive
	default:
		return TournamentFull
	}
}
