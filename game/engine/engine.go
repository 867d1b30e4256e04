package engine

import (
	"fmt"
	"time"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Game state management
	GetState() GameState
	SetState(state GameState) error
	Reset() GameState
	IsGameOver() bool
	IsVictory() bool
	GetScore() int
	GetGrid() Grid
	Outcome() (TerminalOutcome, bool)

	// Movement operations
	Move(direction Direction) bool
	CanMove(direction Direction) bool
	GetPossibleMoves() []Direction

	// History
	GetMoveHistory() []MoveHistoryEntry
	GetLastMove() *MoveHistoryEntry
}

// TerminalHook is invoked once when a game reaches a terminal state.
type TerminalHook func(TerminalOutcome)

// GameEngine implements the Engine interface
type GameEngine struct {
	state      GameState
	src        TileSource
	history    []MoveHistoryEntry
	totalMoves int
	onTerminal TerminalHook
	now        func() time.Time
}

// NewEngine creates a new game engine drawing tiles from src
func NewEngine(src TileSource) (*GameEngine, error) {
	if src == nil {
		return nil, fmt.Errorf("tile source cannot be nil")
	}

	return &GameEngine{
		state:   NewGame(src),
		src:     src,
		history: []MoveHistoryEntry{},
		now:     time.Now,
	}, nil
}

// NewEngineWithDefaults creates a new game engine seeded from crypto/rand
func NewEngineWithDefaults() *GameEngine {
	seed, err := NewSeed()
	if err != nil {
		seed = time.Now().UnixNano()
	}
	e, _ := NewEngine(NewRandomSource(seed))
	return e
}

// OnTerminal registers the hook fired when the game ends
func (e *GameEngine) OnTerminal(hook TerminalHook) {
	e.onTerminal = hook
}

// GetState returns the current game state
func (e *GameEngine) GetState() GameState {
	return e.state
}

// SetState replaces the game state after validating its grid
func (e *GameEngine) SetState(state GameState) error {
	if err := state.Grid.Validate(); err != nil {
		return err
	}
	if state.Score < 0 {
		return &InvariantError{Reason: "score must not be negative"}
	}
	e.state = state
	return nil
}

// Reset starts a new game. Cumulative history is kept.
func (e *GameEngine) Reset() GameState {
	e.state = NewGame(e.src)
	return e.state
}

// IsGameOver returns whether the game is over
func (e *GameEngine) IsGameOver() bool {
	return e.state.Terminal
}

// IsVictory returns whether the player has won
func (e *GameEngine) IsVictory() bool {
	return e.state.Terminal && e.state.Outcome == OutcomeWon
}

// GetScore returns the current score
func (e *GameEngine) GetScore() int {
	return e.state.Score
}

// GetGrid returns the current grid
func (e *GameEngine) GetGrid() Grid {
	return e.state.Grid
}

// Outcome returns the terminal outcome, if any
func (e *GameEngine) Outcome() (TerminalOutcome, bool) {
	return e.state.TerminalSignal()
}

// Move slides the grid in the given direction and reports whether anything changed
func (e *GameEngine) Move(direction Direction) bool {
	return e.Step(direction).Moved
}

// Step is Move that also returns the transition details
func (e *GameEngine) Step(direction Direction) Transition {
	if e.state.Terminal {
		return Transition{State: e.state}
	}

	t := Step(e.state, direction, e.src)
	e.state = t.State
	e.addMoveToHistory(direction, t)

	if t.Ended && e.onTerminal != nil {
		outcome, _ := e.state.TerminalSignal()
		e.onTerminal(outcome)
	}
	return t
}

// CanMove checks if sliding in the specified direction would change the grid
func (e *GameEngine) CanMove(direction Direction) bool {
	return e.state.CanMove(direction)
}

// GetPossibleMoves returns all directions that would change the grid
func (e *GameEngine) GetPossibleMoves() []Direction {
	var possible []Direction
	for _, dir := range Directions {
		if e.CanMove(dir) {
			possible = append(possible, dir)
		}
	}
	return possible
}

// GetMoveHistory returns the complete move history
func (e *GameEngine) GetMoveHistory() []MoveHistoryEntry {
	return e.history
}

// GetLastMove returns the last move made, or nil if no moves
func (e *GameEngine) GetLastMove() *MoveHistoryEntry {
	if len(e.history) == 0 {
		return nil
	}
	return &e.history[len(e.history)-1]
}

// BulkMove executes multiple moves in sequence, returning the moved flag for each
func (e *GameEngine) BulkMove(moves []Direction) []bool {
	results := make([]bool, 0, len(moves))

	for _, direction := range moves {
		// Stop if game is over
		if e.IsGameOver() {
			break
		}

		results = append(results, e.Move(direction))
	}

	return results
}

// addMoveToHistory adds a move attempt to the game's move history
func (e *GameEngine) addMoveToHistory(direction Direction, t Transition) {
	e.totalMoves++
	e.history = append(e.history, MoveHistoryEntry{
		Action:      direction,
		Moved:       t.Moved,
		ScoreGained: t.ScoreGained,
		ScoreAfter:  t.State.Score,
		Spawned:     t.Spawned,
		Timestamp:   e.now().Unix(),
		MoveNumber:  e.totalMoves,
	})
}
