// Package engine provides the core rules of the 2048 sliding-tile game.
//
// The engine package implements:
//   - Grid rotation and the single slide-left merge algorithm
//   - Directional moves built from rotate, collapse, rotate back
//   - Random tile spawning through an injectable TileSource
//   - Win (2048 tile) and loss (locked grid) detection
//   - A GameEngine state holder with move history
//
// Core Types:
//
// Grid is a 4x4 value type, so every transform returns a new grid and never
// aliases its input. GameState bundles the grid, the cumulative score and the
// terminal flag; ApplyDirection is the pure (state, direction) -> state
// transition. GameEngine wraps a state together with its TileSource for
// long-lived sessions.
//
// Usage:
//
//	src := engine.NewRandomSource(42)
//	state := engine.NewGame(src)
//	state = engine.ApplyDirection(state, engine.Left, src)
//	if outcome, ok := state.TerminalSignal(); ok {
//		fmt.Println(outcome.Kind, outcome.FinalScore)
//	}
//
// Game Rules:
//
// Every move slides all tiles as far as possible in one direction. Two equal
// tiles that meet merge into one tile of double value, at most once per move,
// and the merged value is added to the score. A move that changes nothing is
// ignored; any other move spawns a 2 (90%) or a 4 (10%) on a random empty
// cell. The game is won when a 2048 tile appears and lost when the grid is
// full with no equal neighbours.
package engine
