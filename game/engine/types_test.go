package engine

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestConstants(t *testing.T) {
	tests := []struct {
		name     string
		actual   int
		expected int
	}{
		{"Size", Size, 4},
		{"WinTile", WinTile, 2048},
		{"MaxBulkMoves", MaxBulkMoves, 50},
		{"WebSocketBufferSize", WebSocketBufferSize, 256},
		{"InitialTileCount", InitialTileCount, 2},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if test.actual != test.expected {
				t.Errorf("Expected %s to be %d, got %d", test.name, test.expected, test.actual)
			}
		})
	}
}

func TestDirectionConstants(t *testing.T) {
	tests := []struct {
		direction Direction
		expected  string
	}{
		{Up, "up"},
		{Down, "down"},
		{Left, "left"},
		{Right, "right"},
	}

	for _, test := range tests {
		if string(test.direction) != test.expected {
			t.Errorf("Expected %s, got %s", test.expected, string(test.direction))
		}
	}
	if len(Directions) != 4 {
		t.Errorf("Expected 4 directions, got %d", len(Directions))
	}
}

func TestGameStateJSON(t *testing.T) {
	state := GameState{
		Grid:     Grid{{2, 4, 0, 0}},
		Score:    12,
		Terminal: true,
		Outcome:  OutcomeLost,
		Moves:    3,
	}

	data, err := json.Marshal(state)
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}

	for _, key := range []string{`"grid":[[2,4,0,0]`, `"score":12`, `"terminal":true`, `"outcome":"lost"`, `"moves":3`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("Expected %s in %s", key, data)
		}
	}
}

func TestTerminalOutcomeJSON(t *testing.T) {
	data, err := json.Marshal(TerminalOutcome{Kind: OutcomeWon, FinalScore: 20480})
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}
	if string(data) != `{"kind":"won","final_score":20480}` {
		t.Errorf("Unexpected JSON: %s", data)
	}
}

func TestMoveHistoryEntryOmitsEmptySpawn(t *testing.T) {
	data, err := json.Marshal(MoveHistoryEntry{Action: Left})
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}
	if strings.Contains(string(data), "spawned") {
		t.Errorf("Expected spawned to be omitted: %s", data)
	}
}

func TestInvariantError(t *testing.T) {
	var err error = &InvariantError{Reason: "tile 3 is not a power of two"}
	if !strings.Contains(err.Error(), "tile 3 is not a power of two") {
		t.Errorf("Unexpected message: %s", err)
	}

	var inv *InvariantError
	if !errors.As(err, &inv) {
		t.Error("errors.As should match InvariantError")
	}
}
