package views

import (
	"sort"
	"time"

	"github.com/AdamBeresnev/tournament-bracket/internal/bracket"
	"github.com/google/uuid"
)

type BracketData struct {
	QualifyingRounds    map[int][]bracket.Match
	QualifyingRoundNums []int
	FinalRounds         map[int][]bracket.Match
	FinalRoundNums      []int
	TeamMap             map[uuid.UUID]bracket.Team
	Standings           []bracket.StandingEntry
}

func PrepareBracketData(teams []bracket.Team, matches []bracket.Match, standings []bracket.StandingEntry) BracketData {
	teamMap := make(map[uuid.UUID]bracket.Team)
	for _, t := range teams {
		teamMap[t.ID] = t
	}

	qualifyingRounds := make(map[int][]bracket.Match)
	finalRounds := make(map[int][]bracket.Match)

	var qualifyingRoundNums []int
	var finalRoundNums []int

	for _, m := range matches {
		switch m.Stage {
		case bracket.QualifyingStage:
			if _, exists := qualifyingRounds[m.RoundNumber]; !exists {
				qualifyingRoundNums = append(qualifyingRoundNums, m.RoundNumber)
			}
			qualifyingRounds[m.RoundNumber] = append(qualifyingRounds[m.RoundNumber], m)
		case bracket.FinalsStage:
			if _, exists := finalRounds[m.RoundNumber]; !exists {
				finalRoundNums = append(finalRoundNums, m.RoundNumber)
			}
			finalRounds[m.RoundNumber] = append(finalRounds[m.RoundNumber], m)
		}
	}

	sort.Ints(qualifyingRoundNums)
	sort.Ints(finalRoundNums)

	sortRounds(qualifyingRounds, qualifyingRoundNums)
	sortRounds(finalRounds, finalRoundNums)

	ranked := make([]bracket.StandingEntry, len(standings))
	copy(ranked, standings)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Rank < ranked[j].Rank
	})

	return BracketData{
		QualifyingRounds:    qualifyingRounds,
		QualifyingRoundNums: qualifyingRoundNums,
		FinalRounds:         finalRounds,
		FinalRoundNums:      finalRoundNums,
		TeamMap:             teamMap,
		Standings:           ranked,
	}
}

func sortRounds(rounds map[int][]bracket.Match, roundNums []int) {
	for _, r := range roundNums {
		sort.Slice(rounds[r], func(i, j int) bool {
			return rounds[r][i].MatchOrder < rounds[r][j].MatchOrder
		})
	}
}

// Round is one column of the bracket, qualifying rounds first.
type Round struct {
	Stage   bracket.MatchStage
	Number  int
	Matches []bracket.Match
}

func (d BracketData) Rounds() []Round {
	rounds := make([]Round, 0, len(d.QualifyingRoundNums)+len(d.FinalRoundNums))
	for _, n := range d.QualifyingRoundNums {
		rounds = append(rounds, Round{Stage: bracket.QualifyingStage, Number: n, Matches: d.QualifyingRounds[n]})
	}
	for _, n := range d.FinalRoundNums {
		rounds = append(rounds, Round{Stage: bracket.FinalsStage, Number: n, Matches: d.FinalRounds[n]})
	}
	return rounds
}

func (d BracketData) TeamName(id *uuid.UUID) string {
	if id == nil {
		return "TBD"
	}
	if t, ok := d.TeamMap[*id]; ok {
		return t.Name
	}
	return "Unknown"
}

type TeamRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type MatchPayload struct {
	ID          uuid.UUID  `json:"id"`
	Order       int        `json:"order"`
	Team1       *TeamRef   `json:"team_1"`
	Team2       *TeamRef   `json:"team_2"`
	Score1      *int       `json:"score_1"`
	Score2      *int       `json:"score_2"`
	WinnerID    *uuid.UUID `json:"winner_id"`
	ScheduledAt *time.Time `json:"scheduled_at"`
	CompletedAt *time.Time `json:"completed_at"`
}

type RoundPayload struct {
	Stage   bracket.MatchStage `json:"stage"`
	Number  int                `json:"round"`
	Matches []MatchPayload     `json:"matches"`
}

type StandingPayload struct {
	bracket.StandingEntry
	TeamName string `json:"team_name"`
}

// BracketPayload is the JSON the listing front end renders from.
type BracketPayload struct {
	Tournament *bracket.Tournament `json:"tournament"`
	Rounds     []RoundPayload      `json:"rounds"`
	Standings  []StandingPayload   `json:"standings"`
}

func (d BracketData) Payload(tournament *bracket.Tournament) BracketPayload {
	p := BracketPayload{
		Tournament: tournament,
		Rounds:     []RoundPayload{},
		Standings:  make([]StandingPayload, 0, len(d.Standings)),
	}

	for _, r := range d.Rounds() {
		rp := RoundPayload{Stage: r.Stage, Number: r.Number, Matches: make([]MatchPayload, 0, len(r.Matches))}
		for _, m := range r.Matches {
			rp.Matches = append(rp.Matches, MatchPayload{
				ID:          m.ID,
				Order:       m.MatchOrder,
				Team1:       d.teamRef(m.Team1ID),
				Team2:       d.teamRef(m.Team2ID),
				Score1:      m.Score1,
				Score2:      m.Score2,
				WinnerID:    m.WinnerID,
				ScheduledAt: m.ScheduledAt,
				CompletedAt: m.CompletedAt,
			})
		}
		p.Rounds = append(p.Rounds, rp)
	}

	for _, s := range d.Standings {
		p.Standings = append(p.Standings, StandingPayload{StandingEntry: s, TeamName: d.TeamName(&s.TeamID)})
	}
	return p
}

func (d BracketData) teamRef(id *uuid.UUID) *TeamRef {
	if id == nil {
		return nil
	}
	return &TeamRef{ID: *id, Name: d.TeamName(id)}
}
