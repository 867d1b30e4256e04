package service

import (
	"time"

	"github.com/wricardo/game2048/game/engine"
)

// Stop reason codes reported by BulkMove.
const (
	StopNoChange         = "no_change"
	StopGameOver         = "game_over"
	StopVictory          = "victory"
	StopInvalidDirection = "invalid_direction"
)

// Event types attached to move results.
const (
	EventReset    = "reset"
	EventMove     = "move"
	EventNoChange = "no_change"
	EventMerge    = "merge"
	EventSpawn    = "spawn"
	EventVictory  = "victory"
	EventGameOver = "game_over"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	Seed           int64              `json:"seed"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GameState      *engine.GameState  `json:"game_state"`
	MaxTile        int                `json:"max_tile"`
	PossibleMoves  []engine.Direction `json:"possible_moves"`
}

// MoveResult contains the result of a move operation
type MoveResult struct {
	Success     bool              `json:"success"`
	Direction   engine.Direction  `json:"direction"`
	GameState   *engine.GameState `json:"game_state"`
	Message     string            `json:"message"`
	ScoreGained int               `json:"score_gained"`
	Spawned     *engine.Tile      `json:"spawned,omitempty"`
	Events      []GameEvent       `json:"events,omitempty"`
	// Terminal is set only on the call that ended the game.
	Terminal *engine.TerminalOutcome `json:"terminal,omitempty"`
}

// BulkMoveResult contains the result of multiple moves
type BulkMoveResult struct {
	// Summary
	MovesExecuted  int               `json:"moves_executed"`
	RequestedMoves int               `json:"requested_moves"`
	Success        bool              `json:"success"`
	GameState      *engine.GameState `json:"game_state"`
	Events         []GameEvent       `json:"events"`
	StoppedReason  string            `json:"stopped_reason,omitempty"`
	StopReasonCode string            `json:"stop_reason_code,omitempty"` // no_change|game_over|victory|invalid_direction
	StoppedOnMove  int               `json:"stopped_on_move,omitempty"`  // 1-based index of the move that caused stop
	Truncated      bool              `json:"truncated,omitempty"`
	Limit          int               `json:"limit,omitempty"`

	// Start/end snapshot
	StartScore int `json:"start_score"`
	EndScore   int `json:"end_score"`
	ScoreDelta int `json:"score_delta"`

	// Per-step compact trace (only for this call)
	Steps []StepInfo `json:"steps,omitempty"`

	// Final status aids
	GameOver      bool                    `json:"game_over"`
	Outcome       engine.Outcome          `json:"outcome"`
	Message       string                  `json:"message,omitempty"`
	PossibleMoves []engine.Direction      `json:"possible_moves,omitempty"`
	Terminal      *engine.TerminalOutcome `json:"terminal,omitempty"`
}

// StepInfo is a compact record for each executed move in the bulk call
type StepInfo struct {
	Idx         int          `json:"idx"`
	Dir         string       `json:"dir"`
	ScoreGained int          `json:"score_gained"`
	ScoreAfter  int          `json:"score_after"`
	MaxTile     int          `json:"max_tile"`
	Spawned     *engine.Tile `json:"spawned,omitempty"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string       `json:"type"` // "reset", "move", "no_change", "merge", "spawn", "victory", "game_over"
	Message   string       `json:"message"`
	Timestamp time.Time    `json:"timestamp"`
	Tile      *engine.Tile `json:"tile,omitempty"`
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated move history
type HistoryResponse struct {
	Moves       []engine.MoveHistoryEntry `json:"moves"`
	TotalMoves  int                       `json:"total_moves"`
	Page        int                       `json:"page"`
	PageSize    int                       `json:"page_size"`
	TotalPages  int                       `json:"total_pages"`
	HasNext     bool                      `json:"has_next"`
	HasPrevious bool                      `json:"has_previous"`
}
