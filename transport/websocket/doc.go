// Package websocket provides WebSocket transport for the 2048 game server.
//
// The websocket package implements:
//   - Session-aware WebSocket connections
//   - State broadcasting after every accepted request
//   - A one-off game_over notification when a game ends
//   - Connection lifecycle management
//
// Architecture:
//
// The package uses a hub-and-spoke model where a central Hub manages all
// WebSocket connections. Registration, removal and broadcasts are serialised
// through the hub's event loop; each client has its own read and write
// goroutines.
//
// Message Protocol:
//
// Outgoing messages are JSON objects:
//
//	{"session_id": "...", "event": "state_update", "game_state": {...}}
//	{"session_id": "...", "event": "game_over", "game_state": {...}, "data": {"kind": "won", "final_score": 20480}}
//
// Incoming messages are read and discarded to keep the connection alive.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//	defer hub.Stop()
//
//	router.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
package websocket
