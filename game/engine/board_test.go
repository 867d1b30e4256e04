package engine

import (
	"errors"
	"math/rand"
	"testing"
)

func sequentialGrid() Grid {
	return Grid{
		{1, 2, 3, 4},
		{5, 6, 7, 8},
		{9, 10, 11, 12},
		{13, 14, 15, 16},
	}
}

// randomGrid builds a grid of empty cells and powers of two up to 1024.
func randomGrid(rng *rand.Rand) Grid {
	var g Grid
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if rng.Intn(3) == 0 {
				continue
			}
			g[r][c] = 1 << (1 + rng.Intn(10))
		}
	}
	return g
}

func TestRotate_Clockwise(t *testing.T) {
	got := Rotate(sequentialGrid(), 1)
	expected := Grid{
		{13, 9, 5, 1},
		{14, 10, 6, 2},
		{15, 11, 7, 3},
		{16, 12, 8, 4},
	}
	if got != expected {
		t.Errorf("Rotate(1) mismatch:\n got:\n%s expected:\n%s", got, expected)
	}
}

func TestRotate_NormalizesTurnCount(t *testing.T) {
	g := sequentialGrid()

	tests := []struct {
		name  string
		turns int
		same  int
	}{
		{"zero", 0, 0},
		{"four", 4, 0},
		{"five", 5, 1},
		{"negative one", -1, 3},
		{"negative four", -4, 0},
		{"large", 4002, 2},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got, want := Rotate(g, test.turns), Rotate(g, test.same); got != want {
				t.Errorf("Rotate(%d) != Rotate(%d)", test.turns, test.same)
			}
		})
	}
}

func TestRotate_FourTurnsIsIdentity(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		g := randomGrid(rng)
		out := g
		for turn := 0; turn < 4; turn++ {
			out = Rotate(out, 1)
		}
		if out != g {
			t.Fatalf("four quarter-turns changed the grid:\n%s->\n%s", g, out)
		}
	}
}

func TestRotate_DoesNotMutateInput(t *testing.T) {
	g := sequentialGrid()
	before := g
	_ = Rotate(g, 1)
	if g != before {
		t.Error("Rotate mutated its input")
	}
}

func TestCollapseLine(t *testing.T) {
	tests := []struct {
		name     string
		line     Line
		expected Line
		score    int
	}{
		{"empty", Line{0, 0, 0, 0}, Line{0, 0, 0, 0}, 0},
		{"single tile slides", Line{0, 0, 0, 2}, Line{2, 0, 0, 0}, 0},
		{"pair merges", Line{2, 2, 0, 0}, Line{4, 0, 0, 0}, 4},
		{"gap before pair", Line{2, 0, 2, 0}, Line{4, 0, 0, 0}, 4},
		{"no chained merge", Line{2, 2, 2, 0}, Line{4, 2, 0, 0}, 4},
		{"two pairs", Line{2, 2, 2, 2}, Line{4, 4, 0, 0}, 8},
		{"merged tile not reused", Line{4, 4, 8, 0}, Line{8, 8, 0, 0}, 8},
		{"distinct tiles", Line{2, 4, 8, 16}, Line{2, 4, 8, 16}, 0},
		{"leftmost pair wins", Line{4, 2, 2, 2}, Line{4, 4, 2, 0}, 4},
		{"different pairs", Line{8, 8, 16, 16}, Line{16, 32, 0, 0}, 48},
		{"zeros between", Line{0, 4, 0, 4}, Line{8, 0, 0, 0}, 8},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, score := CollapseLine(test.line)
			if got != test.expected {
				t.Errorf("CollapseLine(%v) = %v, expected %v", test.line, got, test.expected)
			}
			if score != test.score {
				t.Errorf("CollapseLine(%v) score = %d, expected %d", test.line, score, test.score)
			}
		})
	}
}

func TestCollapseLine_ReapplyIsStableWithoutAdjacentPairs(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 500; i++ {
		g := randomGrid(rng)
		once, _ := CollapseLine(Line(g[0]))

		// zeros are always packed to the right after one pass
		seenZero := false
		for _, v := range once {
			if v == 0 {
				seenZero = true
			} else if seenZero {
				t.Fatalf("non-zero after zero in %v", once)
			}
		}

		hasPair := false
		for j := 0; j+1 < Size; j++ {
			if once[j] != 0 && once[j] == once[j+1] {
				hasPair = true
			}
		}
		if hasPair {
			continue
		}

		twice, score := CollapseLine(once)
		if twice != once || score != 0 {
			t.Fatalf("collapse not stable: %v -> %v (score %d)", once, twice, score)
		}
	}
}

func TestApplyMove_SingleTileDirections(t *testing.T) {
	var g Grid
	g[1][1] = 2

	tests := []struct {
		dir      Direction
		row, col int
	}{
		{Up, 0, 1},
		{Down, 3, 1},
		{Left, 1, 0},
		{Right, 1, 3},
	}

	for _, test := range tests {
		t.Run(string(test.dir), func(t *testing.T) {
			res := ApplyMove(g, test.dir)
			if !res.Moved {
				t.Fatal("expected move to change the grid")
			}
			if res.Grid[test.row][test.col] != 2 {
				t.Errorf("expected tile at (%d,%d), grid:\n%s", test.row, test.col, res.Grid)
			}
			if CountEmpty(res.Grid) != Size*Size-1 {
				t.Errorf("expected exactly one tile, grid:\n%s", res.Grid)
			}
		})
	}
}

func TestApplyMove_LeftAndRight(t *testing.T) {
	g := Grid{{2, 2, 0, 0}}

	left := ApplyMove(g, Left)
	if left.Grid[0] != [Size]int{4, 0, 0, 0} {
		t.Errorf("left: expected [4 0 0 0], got %v", left.Grid[0])
	}
	if left.Score != 4 || !left.Moved {
		t.Errorf("left: expected score 4 and moved, got %d/%v", left.Score, left.Moved)
	}

	right := ApplyMove(g, Right)
	if right.Grid[0] != [Size]int{0, 0, 0, 4} {
		t.Errorf("right: expected [0 0 0 4], got %v", right.Grid[0])
	}
	if right.Score != 4 || !right.Moved {
		t.Errorf("right: expected score 4 and moved, got %d/%v", right.Score, right.Moved)
	}
}

func TestApplyMove_ColumnMerges(t *testing.T) {
	var g Grid
	g[0][0], g[1][0], g[2][0] = 2, 2, 2

	up := ApplyMove(g, Up)
	if col := [Size]int{up.Grid[0][0], up.Grid[1][0], up.Grid[2][0], up.Grid[3][0]}; col != [Size]int{4, 2, 0, 0} {
		t.Errorf("up: expected column [4 2 0 0], got %v", col)
	}

	down := ApplyMove(g, Down)
	if col := [Size]int{down.Grid[0][0], down.Grid[1][0], down.Grid[2][0], down.Grid[3][0]}; col != [Size]int{0, 0, 2, 4} {
		t.Errorf("down: expected column [0 0 2 4], got %v", col)
	}
	if up.Score != 4 || down.Score != 4 {
		t.Errorf("expected score 4 both ways, got up=%d down=%d", up.Score, down.Score)
	}
}

func TestApplyMove_FullRowMerge(t *testing.T) {
	g := Grid{{2, 2, 2, 2}}
	res := ApplyMove(g, Left)
	if res.Grid[0] != [Size]int{4, 4, 0, 0} {
		t.Errorf("expected [4 4 0 0], got %v", res.Grid[0])
	}
	if res.Score != 8 {
		t.Errorf("expected score 8, got %d", res.Score)
	}
}

func TestApplyMove_NoChangeIsNotMoved(t *testing.T) {
	g := Grid{
		{2, 4, 0, 0},
		{8, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	}
	res := ApplyMove(g, Left)
	if res.Moved {
		t.Error("expected no movement")
	}
	if res.Grid != g || res.Score != 0 {
		t.Errorf("expected identical grid and zero score, got score %d", res.Score)
	}
}

func TestApplyMove_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(2048))
	for i := 0; i < 500; i++ {
		g := randomGrid(rng)
		before := g
		for _, dir := range Directions {
			res := ApplyMove(g, dir)
			if g != before {
				t.Fatal("ApplyMove mutated its input")
			}

			if !res.Moved && (res.Grid != g || res.Score != 0) {
				t.Fatalf("%s: moved=false but grid or score changed", dir)
			}

			if SumTiles(res.Grid) != SumTiles(g) {
				t.Fatalf("%s: tile sum changed from %d to %d", dir, SumTiles(g), SumTiles(res.Grid))
			}

			present := map[int]bool{}
			for _, row := range g {
				for _, v := range row {
					present[v] = true
				}
			}
			for _, row := range res.Grid {
				for _, v := range row {
					if v != 0 && !present[v] && !present[v/2] {
						t.Fatalf("%s: created unexpected tile %d from\n%s", dir, v, g)
					}
				}
			}

			if err := res.Grid.Validate(); err != nil {
				t.Fatalf("%s: %v", dir, err)
			}
		}
	}
}

func TestSpawnRandomTile(t *testing.T) {
	var g Grid
	g[0][0] = 2

	src := &ScriptedSource{Cells: []int{2}, Samples: []float64{0.5}}
	out := SpawnRandomTile(g, src)

	// empty cells in row-major order start at (0,1); index 2 is (0,3)
	if out[0][3] != 2 {
		t.Errorf("expected a 2 at (0,3), grid:\n%s", out)
	}
	if g[0][3] != 0 {
		t.Error("SpawnRandomTile mutated its input")
	}
	if CountEmpty(out) != CountEmpty(g)-1 {
		t.Errorf("expected exactly one new tile")
	}
}

func TestSpawnRandomTile_Four(t *testing.T) {
	src := &ScriptedSource{Cells: []int{0}, Samples: []float64{0.05}}
	out := SpawnRandomTile(Grid{}, src)
	if out[0][0] != 4 {
		t.Errorf("expected a 4 at (0,0), grid:\n%s", out)
	}
}

func TestSpawnRandomTile_FullGridUnchanged(t *testing.T) {
	g := Grid{
		{2, 4, 2, 4},
		{4, 2, 4, 2},
		{2, 4, 2, 4},
		{4, 2, 4, 2},
	}
	src := &ScriptedSource{Cells: []int{1}, Samples: []float64{0.05}}
	if out := SpawnRandomTile(g, src); out != g {
		t.Error("expected full grid to be returned unchanged")
	}
	if len(src.Cells) != 1 {
		t.Error("full grid should not consume randomness")
	}
}

func TestSpawnRandomTile_Distribution(t *testing.T) {
	src := NewRandomSource(99)
	fours := 0
	const runs = 10000
	for i := 0; i < runs; i++ {
		out := SpawnRandomTile(Grid{}, src)
		if MaxTile(out) == 4 {
			fours++
		}
	}
	ratio := float64(fours) / runs
	if ratio < 0.08 || ratio > 0.12 {
		t.Errorf("expected roughly 10%% fours, got %.3f", ratio)
	}
}

func TestIsTerminal(t *testing.T) {
	checkerboard := Grid{
		{2, 4, 2, 4},
		{4, 2, 4, 2},
		{2, 4, 2, 4},
		{4, 2, 4, 2},
	}

	var win Grid
	win[2][1] = 2048

	withGap := checkerboard
	withGap[3][3] = 0

	withPair := checkerboard
	withPair[3][3] = 4

	verticalPair := checkerboard
	verticalPair[1][0] = 2

	lockedWin := checkerboard
	lockedWin[0][0] = 2048

	tests := []struct {
		name     string
		grid     Grid
		terminal bool
		outcome  Outcome
	}{
		{"empty grid", Grid{}, false, OutcomeNone},
		{"win tile", win, true, OutcomeWon},
		{"checkerboard loss", checkerboard, true, OutcomeLost},
		{"single gap", withGap, false, OutcomeNone},
		{"horizontal pair", withPair, false, OutcomeNone},
		{"vertical pair", verticalPair, false, OutcomeNone},
		{"win beats loss", lockedWin, true, OutcomeWon},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			outcome, terminal := IsTerminal(test.grid)
			if terminal != test.terminal || outcome != test.outcome {
				t.Errorf("IsTerminal = (%s, %v), expected (%s, %v)", outcome, terminal, test.outcome, test.terminal)
			}
		})
	}
}

func TestFromRows(t *testing.T) {
	g, err := FromRows([][]int{
		{2, 0, 0, 0},
		{0, 4, 0, 0},
		{0, 0, 8, 0},
		{0, 0, 0, 2048},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g[3][3] != 2048 || g[1][1] != 4 {
		t.Errorf("unexpected grid:\n%s", g)
	}

	rows := g.Rows()
	rows[0][0] = 64
	if g[0][0] != 2 {
		t.Error("Rows should return a copy")
	}
}

func TestFromRows_Invalid(t *testing.T) {
	tests := []struct {
		name string
		rows [][]int
	}{
		{"too few rows", [][]int{{0, 0, 0, 0}}},
		{"short row", [][]int{{0, 0, 0, 0}, {0, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}}},
		{"not a power of two", [][]int{{3, 0, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}}},
		{"one is not a tile", [][]int{{1, 0, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}}},
		{"negative", [][]int{{-2, 0, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := FromRows(test.rows)
			var invErr *InvariantError
			if !errors.As(err, &invErr) {
				t.Fatalf("expected InvariantError, got %v", err)
			}
		})
	}
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		input    string
		expected Direction
		wantErr  bool
	}{
		{"up", Up, false},
		{"DOWN", Down, false},
		{" left ", Left, false},
		{"Right", Right, false},
		{"north", "", true},
		{"", "", true},
	}

	for _, test := range tests {
		got, err := ParseDirection(test.input)
		if test.wantErr {
			if !errors.Is(err, ErrInvalidDirection) {
				t.Errorf("ParseDirection(%q): expected ErrInvalidDirection, got %v", test.input, err)
			}
			continue
		}
		if err != nil || got != test.expected {
			t.Errorf("ParseDirection(%q) = %q, %v; expected %q", test.input, got, err, test.expected)
		}
	}
}

func TestQuarterTurns(t *testing.T) {
	tests := []struct {
		dir   Direction
		turns int
	}{
		{Left, 0},
		{Down, 1},
		{Right, 2},
		{Up, 3},
	}
	for _, test := range tests {
		if got := test.dir.QuarterTurns(); got != test.turns {
			t.Errorf("%s: expected %d turns, got %d", test.dir, test.turns, got)
		}
	}
}
