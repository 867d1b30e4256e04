package engine

// Transition describes what a single ApplyDirection call did.
type Transition struct {
	State       GameState
	Moved       bool
	ScoreGained int
	Spawned     *Tile
	// Ended is set only on the move that made the game terminal.
	Ended bool
}

// NewGame returns a fresh state: an empty grid seeded with two tiles.
func NewGame(src TileSource) GameState {
	var g Grid
	for i := 0; i < InitialTileCount; i++ {
		g = SpawnRandomTile(g, src)
	}
	return GameState{Grid: g, Outcome: OutcomeNone}
}

// NewGameFromGrid starts a game on an explicit grid, e.g. for replays or
// tests. The grid must satisfy the tile invariants.
func NewGameFromGrid(g Grid, score int) (GameState, error) {
	if err := g.Validate(); err != nil {
		return GameState{}, err
	}
	if score < 0 {
		return GameState{}, &InvariantError{Reason: "score must not be negative"}
	}
	state := GameState{Grid: g, Score: score, Outcome: OutcomeNone}
	if outcome, done := IsTerminal(g); done {
		state.Terminal = true
		state.Outcome = outcome
	}
	return state, nil
}

// ApplyDirection is the pure state transition. Terminal states, unknown
// directions and moves that change nothing return state unchanged.
func ApplyDirection(state GameState, dir Direction, src TileSource) GameState {
	return Step(state, dir, src).State
}

// Step applies dir to state and reports the details of the transition.
func Step(state GameState, dir Direction, src TileSource) Transition {
	if state.Terminal || !dir.Valid() {
		return Transition{State: state}
	}

	res := ApplyMove(state.Grid, dir)
	if !res.Moved {
		return Transition{State: state}
	}

	grid, spawned := spawnTile(res.Grid, src)
	next := GameState{
		Grid:    grid,
		Score:   state.Score + res.Score,
		Outcome: OutcomeNone,
		Moves:   state.Moves + 1,
	}

	t := Transition{Moved: true, ScoreGained: res.Score, Spawned: spawned}
	if outcome, done := IsTerminal(grid); done {
		next.Terminal = true
		next.Outcome = outcome
		t.Ended = true
	}
	t.State = next
	return t
}

// TerminalSignal returns the end-of-game outcome once the state is terminal.
func (s GameState) TerminalSignal() (TerminalOutcome, bool) {
	if !s.Terminal {
		return TerminalOutcome{}, false
	}
	return TerminalOutcome{Kind: s.Outcome, FinalScore: s.Score}, true
}

// CanMove reports whether sliding in dir would change the grid.
func (s GameState) CanMove(dir Direction) bool {
	if s.Terminal || !dir.Valid() {
		return false
	}
	return ApplyMove(s.Grid, dir).Moved
}
