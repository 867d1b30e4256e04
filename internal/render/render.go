// Package render formats boards and scores as plain text for terminals and
// MCP tool responses.
package render

import (
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/wricardo/game2048/game/engine"
)

const minCellWidth = 4

// Renderer formats game values for one locale.
type Renderer struct {
	p *message.Printer
}

// New returns a renderer for tag.
func New(tag language.Tag) *Renderer {
	return &Renderer{p: message.NewPrinter(tag)}
}

// Default renders with English number grouping.
func Default() *Renderer {
	return New(language.English)
}

// Score formats n with locale digit grouping, e.g. 20,480.
func (r *Renderer) Score(n int) string {
	return r.p.Sprintf("%d", n)
}

// Grid draws g as a boxed table. Empty cells are shown as dots.
func (r *Renderer) Grid(g engine.Grid) string {
	width := len(strconv.Itoa(engine.MaxTile(g)))
	if width < minCellWidth {
		width = minCellWidth
	}

	border := "+" + strings.Repeat(strings.Repeat("-", width+2)+"+", engine.Size) + "\n"

	var b strings.Builder
	b.WriteString(border)
	for _, row := range g {
		b.WriteString("|")
		for _, v := range row {
			cell := "."
			if v != 0 {
				cell = strconv.Itoa(v)
			}
			b.WriteString(" ")
			b.WriteString(strings.Repeat(" ", width-len(cell)))
			b.WriteString(cell)
			b.WriteString(" |")
		}
		b.WriteString("\n")
		b.WriteString(border)
	}
	return b.String()
}

// Board draws the grid followed by the score line and, once the game has
// ended, the outcome.
func (r *Renderer) Board(state engine.GameState) string {
	var b strings.Builder
	b.WriteString(r.Grid(state.Grid))
	b.WriteString(r.p.Sprintf("Score: %s  Moves: %d", r.Score(state.Score), state.Moves))
	b.WriteString("\n")
	if outcome, ok := state.TerminalSignal(); ok {
		b.WriteString(r.Outcome(outcome))
		b.WriteString("\n")
	}
	return b.String()
}

// Outcome describes how a game ended.
func (r *Renderer) Outcome(o engine.TerminalOutcome) string {
	if o.Kind == engine.OutcomeWon {
		return r.p.Sprintf("You win! Final score: %s", r.Score(o.FinalScore))
	}
	return r.p.Sprintf("Game over. Final score: %s", r.Score(o.FinalScore))
}
