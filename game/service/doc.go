// Package service provides the business logic layer for knight-paths.
//
// The service package implements:
//   - Multi-session board management
//   - Background path searches on a bounded worker pool
//   - Stale result rejection through board generations
//   - Search history pagination
//   - One-shot searches with rendered output
//
// Core Interfaces:
//
// PathService is the main service interface providing high-level board operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages board configuration loading and validation.
// Notifier receives board snapshots for push transports such as WebSocket.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the engine. Selecting the destination cell hands a generation-tagged ticket
// to an errgroup worker; when the search finishes the worker applies the
// result only if the board is still on that generation, then persists the
// session and notifies listeners. Clearing or resizing the board while a
// search runs bumps the generation so the late result is dropped.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	pathService := service.NewPathService(sessionMgr, configMgr, service.WithNotifier(hub))
//
//	info, err := pathService.CreateSession(ctx, "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	pathService.Select(ctx, info.ID, engine.Coordinate{X: 0, Y: 0}, false)
//	result, err := pathService.Select(ctx, info.ID, engine.Coordinate{X: 2, Y: 1}, true)
package service
