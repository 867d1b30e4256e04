package engine

import (
	"fmt"
	"strings"
)

// quarterTurns maps a direction to the clockwise turns that make its slide
// a slide toward column 0.
var quarterTurns = map[Direction]int{
	Left:  0,
	Down:  1,
	Right: 2,
	Up:    3,
}

// ParseDirection converts user input into a Direction.
func ParseDirection(s string) (Direction, error) {
	d := Direction(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := quarterTurns[d]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidDirection, s)
	}
	return d, nil
}

// Valid reports whether d is one of the four directions.
func (d Direction) Valid() bool {
	_, ok := quarterTurns[d]
	return ok
}

// QuarterTurns returns the clockwise rotation that normalizes d to a left slide.
func (d Direction) QuarterTurns() int {
	return quarterTurns[d]
}

// FromRows builds a Grid from a dynamic matrix, enforcing shape and tile values.
func FromRows(rows [][]int) (Grid, error) {
	var g Grid
	if len(rows) != Size {
		return g, &InvariantError{Reason: fmt.Sprintf("grid must have %d rows, got %d", Size, len(rows))}
	}
	for r, row := range rows {
		if len(row) != Size {
			return g, &InvariantError{Reason: fmt.Sprintf("row %d must have %d cells, got %d", r, Size, len(row))}
		}
		copy(g[r][:], row)
	}
	if err := g.Validate(); err != nil {
		return Grid{}, err
	}
	return g, nil
}

// Validate checks that every cell is empty or a positive power of two.
func (g Grid) Validate() error {
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			v := g[r][c]
			if v == 0 {
				continue
			}
			if v < 2 || v&(v-1) != 0 {
				return &InvariantError{Reason: fmt.Sprintf("cell (%d,%d) holds %d, not a power of two", r, c, v)}
			}
		}
	}
	return nil
}

// Rows returns a freshly allocated copy of the grid as nested slices.
func (g Grid) Rows() [][]int {
	rows := make([][]int, Size)
	for r := range rows {
		rows[r] = append([]int(nil), g[r][:]...)
	}
	return rows
}

// EmptyCells returns the coordinates of every empty cell in row-major order.
func (g Grid) EmptyCells() [][2]int {
	cells := make([][2]int, 0, Size*Size)
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if g[r][c] == 0 {
				cells = append(cells, [2]int{r, c})
			}
		}
	}
	return cells
}

// Rotate turns the grid clockwise by quarterTurns × 90°. Any integer is
// accepted and reduced modulo 4.
func Rotate(g Grid, quarterTurns int) Grid {
	turns := ((quarterTurns % 4) + 4) % 4
	out := g
	for t := 0; t < turns; t++ {
		var rotated Grid
		for r := 0; r < Size; r++ {
			for c := 0; c < Size; c++ {
				rotated[c][Size-1-r] = out[r][c]
			}
		}
		out = rotated
	}
	return out
}

// CollapseLine slides a line toward index 0 and merges equal neighbours.
// A merged tile is consumed: it never merges again within the same call.
func CollapseLine(line Line) (Line, int) {
	var tiles []int
	for _, v := range line {
		if v != 0 {
			tiles = append(tiles, v)
		}
	}

	var out Line
	score := 0
	pos := 0
	for i := 0; i < len(tiles); i++ {
		if i+1 < len(tiles) && tiles[i] == tiles[i+1] {
			merged := tiles[i] * 2
			out[pos] = merged
			score += merged
			i++
		} else {
			out[pos] = tiles[i]
		}
		pos++
	}
	return out, score
}

// ApplyMove slides every row of the grid in the given direction. The input
// grid is left untouched.
func ApplyMove(g Grid, dir Direction) MoveResult {
	turns := dir.QuarterTurns()
	rotated := Rotate(g, turns)

	var collapsed Grid
	total := 0
	for r := 0; r < Size; r++ {
		line, score := CollapseLine(Line(rotated[r]))
		collapsed[r] = line
		total += score
	}

	result := Rotate(collapsed, (4-turns)%4)
	return MoveResult{
		Grid:  result,
		Moved: result != g,
		Score: total,
	}
}

// SpawnRandomTile places a 2 (90%) or 4 (10%) on a uniformly chosen empty
// cell. A full grid is returned unchanged.
func SpawnRandomTile(g Grid, src TileSource) Grid {
	next, _ := spawnTile(g, src)
	return next
}

// spawnTile is SpawnRandomTile that also reports the placed tile.
func spawnTile(g Grid, src TileSource) (Grid, *Tile) {
	empty := g.EmptyCells()
	if len(empty) == 0 {
		return g, nil
	}

	pos := empty[src.Intn(len(empty))]
	value := SpawnLowValue
	if src.Float64() < SpawnHighChance {
		value = SpawnHighValue
	}

	g[pos[0]][pos[1]] = value
	return g, &Tile{Row: pos[0], Col: pos[1], Value: value}
}

// IsTerminal reports whether the grid ends the game and how. The win check
// runs first so a 2048 tile on an otherwise locked grid counts as a win.
func IsTerminal(g Grid) (Outcome, bool) {
	if HasTile(g, WinTile) {
		return OutcomeWon, true
	}

	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			v := g[r][c]
			if v == 0 {
				return OutcomeNone, false
			}
			if c+1 < Size && g[r][c+1] == v {
				return OutcomeNone, false
			}
			if r+1 < Size && g[r+1][c] == v {
				return OutcomeNone, false
			}
		}
	}
	return OutcomeLost, true
}

// String renders the grid one row per line, mainly for test failures.
func (g Grid) String() string {
	var b strings.Builder
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if c > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "%d", g[r][c])
		}
		b.WriteByte('\n')
	}
	return b.String()
}
