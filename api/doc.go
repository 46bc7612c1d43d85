// Package api provides the HTTP REST API for knight path boards.
//
// Endpoints:
//
// Sessions:
//   - POST   /api/sessions             create a session ({"config_id": "classic"})
//   - GET    /api/sessions             list sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET    /api/sessions/{id}        session details with board state and config
//   - DELETE /api/sessions/{id}        delete a session
//
// Board:
//   - GET  /api/sessions/{id}/state    board state plus a text rendering
//   - POST /api/sessions/{id}/select   pick a cell ({"x": 0, "y": 0, "wait": true})
//   - POST /api/sessions/{id}/clear    clear the selection and results
//   - POST /api/sessions/{id}/resize   change the board size ({"size": 10})
//   - GET  /api/sessions/{id}/history  paginated search history (?page=1&limit=20&order=desc)
//
// Search:
//   - POST /api/search                 one-shot search, no session needed
//
// Configuration:
//   - GET  /api/configs                list board configurations
//   - POST /api/configs                save a configuration (JSON, or YAML when config_id ends in .yaml)
//   - GET  /api/configs/{name}         load one configuration
//
// Other:
//   - GET /health                      liveness and connected WebSocket clients
//   - GET /ws?session={id}             live board updates, see package websocket
//
// Selecting the second cell starts a search in the background. Without wait
// the response reports phase "searching" and the result arrives over the
// WebSocket; with wait the response carries the finished board.
//
// Errors are JSON objects with an error message and the status code:
//
//	{"error": "session not found", "code": 404}
//
// Invalid requests map to 400, unknown sessions or configs to 404 and resize
// requests outside the configured range to 422, with the breached bound in
// a "size" field.
package api
