// Package service provides the business logic layer for the 2048 game server.
//
// The service package implements:
//   - Multi-session game management
//   - Move processing and validation
//   - Bulk moves with stop reason codes
//   - Move history tracking and pagination
//   - Tracing of every operation through OpenTelemetry
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the game engine, providing session isolation and orchestration. Each session
// owns its own engine and tile source, so games never share randomness.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	gameService := service.NewGameService(sessionMgr)
//
//	sessionInfo, err := gameService.CreateSession(ctx)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.Move(ctx, sessionInfo.ID, "left", false)
//	if result.Terminal != nil {
//		fmt.Println("game over:", result.Terminal.Kind)
//	}
//
// Errors:
//
// Lookups that miss return an error wrapping ErrSessionNotFound, and unknown
// directions wrap engine.ErrInvalidDirection, so transports can map them with
// errors.Is.
package service
