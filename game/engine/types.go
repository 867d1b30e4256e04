package engine

import (
	"errors"
	"fmt"
)

const (
	// Size is the edge length of the square grid.
	Size = 4

	// WinTile is the tile value that ends the game in victory.
	WinTile = 2048

	// Validation constants
	MaxBulkMoves        = 50
	WebSocketBufferSize = 256

	// Spawn distribution: a new tile is 2 with probability 0.9, otherwise 4.
	SpawnLowValue    = 2
	SpawnHighValue   = 4
	SpawnHighChance  = 0.1
	InitialTileCount = 2
)

// ErrInvalidDirection is returned when a direction string cannot be parsed.
var ErrInvalidDirection = errors.New("invalid direction")

// Direction is one of the four slide directions.
type Direction string

const (
	Up    Direction = "up"
	Down  Direction = "down"
	Left  Direction = "left"
	Right Direction = "right"
)

// Directions lists every direction in a stable order.
var Directions = []Direction{Up, Down, Left, Right}

// Outcome classifies a grid as still playable, won or lost.
type Outcome string

const (
	OutcomeNone Outcome = "none"
	OutcomeWon  Outcome = "won"
	OutcomeLost Outcome = "lost"
)

// Grid is a square matrix of tile values in row-major order. Zero is empty.
type Grid [Size][Size]int

// Line is a single row of the grid oriented so the slide goes toward index 0.
type Line [Size]int

// MoveResult bundles the outcome of sliding a grid in one direction.
type MoveResult struct {
	Grid  Grid `json:"grid"`
	Moved bool `json:"moved"`
	Score int  `json:"score"`
}

// TerminalOutcome is the end-of-game signal handed to the presentation layer.
type TerminalOutcome struct {
	Kind       Outcome `json:"kind"`
	FinalScore int     `json:"final_score"`
}

// GameState is the complete value of a game. It is comparable, so a no-op
// transition can be detected with ==.
type GameState struct {
	Grid     Grid    `json:"grid"`
	Score    int     `json:"score"`
	Terminal bool    `json:"terminal"`
	Outcome  Outcome `json:"outcome"`
	Moves    int     `json:"moves"`
}

// MoveHistoryEntry represents a single move attempt in the game history
type MoveHistoryEntry struct {
	Action      Direction `json:"action"`
	Moved       bool      `json:"moved"`
	ScoreGained int       `json:"score_gained"`
	ScoreAfter  int       `json:"score_after"`
	Spawned     *Tile     `json:"spawned,omitempty"`
	Timestamp   int64     `json:"timestamp"`
	MoveNumber  int       `json:"move_number"`
}

// Tile is a positioned tile value.
type Tile struct {
	Row   int `json:"row"`
	Col   int `json:"col"`
	Value int `json:"value"`
}

// InvariantError reports a violated construction invariant. It signals a
// programming error in the caller rather than bad user input.
type InvariantError struct {
	Reason string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("engine invariant violated: %s", e.Reason)
}
