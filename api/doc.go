// Package api provides the HTTP REST API for the 2048 game server.
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create a new session with a freshly seeded game
//   - GET /api/sessions - List sessions (sort=created|accessed|score, order, limit)
//   - GET /api/sessions/{id} - Get a specific session
//   - DELETE /api/sessions/{id} - Delete a session
//
// Game Operations:
//   - GET /api/sessions/{id}/state - Current game state
//   - POST /api/sessions/{id}/move - Slide the board once
//   - POST /api/sessions/{id}/bulk-move - Slide the board several times
//   - POST /api/sessions/{id}/reset - Start a new game in the same session
//   - GET /api/sessions/{id}/history - Paginated move history
//
// Other:
//   - GET /api/health - Liveness probe
//   - GET /ws?session={id} - WebSocket stream of state updates
//
// Request bodies:
//
//	POST /move       {"direction": "left", "reset": false}
//	POST /bulk-move  {"moves": ["left", "up", "left"], "reset": false}
//
// Move responses carry a "terminal" object only on the request that ended
// the game. That same request triggers a game_over WebSocket event for
// every client watching the session.
//
// Errors are returned as JSON:
//
//	{"error": "session not found"}
//
// Unknown sessions map to 404, unparseable directions and bodies to 400,
// everything else to 500.
package api
