// Package websocket pushes live board updates to browser clients.
//
// A central Hub owns every connection. Registration, removal, client counts
// and fan-out all happen on the hub's event loop, so callers only ever talk
// to it through channels:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//	defer hub.Stop()
//
//	svc := service.NewPathService(sessions, configs, service.WithNotifier(hub))
//
// Clients connect with a session ID and receive a JSON Message each time the
// session's board changes:
//
//	{"session_id": "ab12", "event": "search_finished",
//	 "board_state": {...}, "board": ["S : . : ...", ...]}
//
// Event is state_update for selections, search_started when a search is
// dispatched and search_finished once a result or failure has been applied.
// BroadcastToSession never blocks the caller; if the queue is full the update
// is dropped and the next one carries the full state anyway.
package websocket
