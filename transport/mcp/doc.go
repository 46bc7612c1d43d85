// Package mcp exposes knight path boards to AI agents over the Model Context
// Protocol.
//
// The Client is a thin proxy: every tool call becomes a request against the
// REST API (package api), so agents and browsers share the same sessions and
// WebSocket viewers see agent selections live.
//
// Tools:
//   - create_session, list_sessions, get_session
//   - board_state: text rendering of the board, phase and found paths
//   - select_cell: start square first, then end square; waits for the search by default
//   - clear_board, resize_board
//   - search_paths: one-shot search on an empty board
//   - search_history: paginated past searches
//   - list_configs, path_instructions
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
//
// The HTTP server also mounts the same tool set at /mcp.
package mcp
