// Package session provides in-memory session management for the 2048 game server.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - UUID session ID generation
//   - Per-session tile sources, optionally from a fixed seed
//   - Session cleanup and expiration
//
// Core Types:
//
// Manager is the main session manager that handles all session operations.
// Sessions are service.Session values, each owning its own engine.
//
// Session Identifiers:
//
// Generated IDs are random UUIDs. Callers may also pick their own ID; lookups
// are case-insensitive and the ID is stored as given.
//
// Concurrency:
//
// The session manager is thread-safe. Multiple goroutines can create, look up
// and delete sessions at the same time; serialising moves within one session
// is the job of the service layer.
//
// Usage:
//
//	manager := session.NewManager(session.WithSeed(42))
//
//	sess, err := manager.Create("")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	removed := manager.CleanupExpiredSessions(30 * time.Minute)
//
// Sessions live only in memory and are lost when the process exits.
package session
