// Package mcp exposes the 2048 game to AI agents over the Model Context
// Protocol.
//
// The Client is a thin proxy: every tool call becomes a request against the
// REST API, and the JSON response is turned into a text report with the
// board drawn by the render package.
//
// MCP Tools:
//   - create_session: Create a new game session
//   - list_sessions: List all active sessions
//   - get_session: Get specific session details
//   - game_state: Current board, score and outcome
//   - move: Slide the board once
//   - bulk_move: Slide the board several times
//   - reset_game: Start a new game in the session
//   - move_history: Retrieve move history with pagination
//   - game_instructions: Rules and playing tips
//
// Transport Modes:
//   - Stdio: server.ServeStdio(client.GetMCPServer())
//   - HTTP: the serve command forwards POST /mcp bodies to HandleMessage
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	if err := server.ServeStdio(client.GetMCPServer()); err != nil {
//		log.Fatal(err)
//	}
package mcp
