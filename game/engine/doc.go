// Package engine provides the core logic for the Knight Paths server.
//
// The engine package implements:
//   - Board geometry: the eight knight offsets, bounds tests and successors
//   - Path search: level-by-level enumeration of every knight-move sequence
//     of a fixed length, filtered by destination
//   - Board state management for one session (start/end selection, resize,
//     stale result rejection)
//   - Configuration validation and text rendering helpers
//
// Core Types:
//
// Search is a pure, synchronous function from SearchRequest to SearchResult.
// It holds no state and is safe to call from any goroutine. BoardEngine wraps
// a BoardState and implements the select/search/clear cycle; it hands out a
// Ticket for every search and only accepts results whose ticket generation is
// still current.
//
// Usage:
//
//	board, err := engine.NewBoard(8)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := engine.Search(engine.SearchRequest{
//		Board:         board,
//		Start:         engine.Coordinate{X: 0, Y: 0},
//		End:           engine.Coordinate{X: 2, Y: 1},
//		RequiredMoves: 3,
//	})
//	if err != nil {
//		log.Fatal(err) // precondition violation
//	}
//	if !result.Matched() {
//		fmt.Println("no path found")
//	}
//
// Errors:
//
// InvalidRequestError (matching ErrInvalidRequest) reports a broken caller
// contract: non-positive board size, negative move count or coordinates off
// the board. A search with no matching path is not an error. SizeError
// reports a resize outside the configured range.
package engine
