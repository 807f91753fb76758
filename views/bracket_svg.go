package views

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/AdamBeresnev/tournament-bracket/internal/bracket"
	"github.com/a-h/templ"
	"github.com/google/uuid"
)

const (
	svgPadding   = 16
	svgHeader    = 28
	columnWidth  = 200
	columnGap    = 48
	matchHeight  = 52
	matchGap     = 20
	rowHeight    = matchHeight / 2
	scoreColumnX = columnWidth - 28
)

const svgStyle = `<style>
.match rect{fill:#fff;stroke:#9ca3af}
.match text{font:13px sans-serif;fill:#374151}
.match .winner{font-weight:bold;fill:#047857}
.round-title{font:bold 13px sans-serif;fill:#111827}
.link{stroke:#d1d5db;fill:none}
</style>`

// BracketSVG draws one column per round with a box per match.
func BracketSVG(data BracketData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, buildBracketSVG(data))
		return err
	})
}

func buildBracketSVG(data BracketData) string {
	rounds := data.Rounds()

	tallest := 1
	for _, r := range rounds {
		if len(r.Matches) > tallest {
			tallest = len(r.Matches)
		}
	}
	columns := len(rounds)
	if columns == 0 {
		columns = 1
	}

	width := 2*svgPadding + columns*columnWidth + (columns-1)*columnGap
	height := 2*svgPadding + svgHeader + tallest*matchHeight + (tallest-1)*matchGap

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`, width, height, width, height)
	b.WriteString(svgStyle)

	if len(rounds) == 0 {
		fmt.Fprintf(&b, `<text class="round-title" x="%d" y="%d">Bracket not drawn yet</text>`, svgPadding, svgPadding+svgHeader/2)
		b.WriteString(`</svg>`)
		return b.String()
	}

	for col, r := range rounds {
		x := svgPadding + col*(columnWidth+columnGap)
		fmt.Fprintf(&b, `<text class="round-title" x="%d" y="%d">%s</text>`, x, svgPadding+svgHeader/2, roundTitle(r))

		// Shorter columns sit in the middle of the tallest one
		offset := (tallest - len(r.Matches)) * (matchHeight + matchGap) / 2
		for i, m := range r.Matches {
			y := svgPadding + svgHeader + offset + i*(matchHeight+matchGap)
			writeMatch(&b, data, m, x, y)
			if col > 0 {
				fmt.Fprintf(&b, `<path class="link" d="M%d %d H%d"/>`, x-columnGap/2, y+rowHeight, x)
			}
			if col < len(rounds)-1 {
				fmt.Fprintf(&b, `<path class="link" d="M%d %d H%d"/>`, x+columnWidth, y+rowHeight, x+columnWidth+columnGap/2)
			}
		}
	}

	b.WriteString(`</svg>`)
	return b.String()
}

func roundTitle(r Round) string {
	if r.Stage == bracket.FinalsStage {
		return "Final"
	}
	return "Round " + strconv.Itoa(r.Number)
}

func writeMatch(b *strings.Builder, data BracketData, m bracket.Match, x, y int) {
	fmt.Fprintf(b, `<g class="match" data-match-id="%s">`, m.ID)
	fmt.Fprintf(b, `<rect x="%d" y="%d" width="%d" height="%d" rx="4"/>`, x, y, columnWidth, matchHeight)
	fmt.Fprintf(b, `<path class="link" d="M%d %d H%d"/>`, x, y+rowHeight, x+columnWidth)

	slots := [2]struct {
		teamID *uuid.UUID
		score  *int
	}{{m.Team1ID, m.Score1}, {m.Team2ID, m.Score2}}
	for i, slot := range slots {
		class := ""
		if slot.teamID != nil && m.WinnerID != nil && *m.WinnerID == *slot.teamID {
			class = ` class="winner"`
		}
		baseline := y + i*rowHeight + rowHeight/2 + 5
		fmt.Fprintf(b, `<text%s x="%d" y="%d">%s</text>`, class, x+8, baseline, templ.EscapeString(data.TeamName(slot.teamID)))
		if slot.score != nil {
			fmt.Fprintf(b, `<text%s x="%d" y="%d">%d</text>`, class, x+scoreColumnX, baseline, *slot.score)
		}
	}
	b.WriteString(`</g>`)
}
