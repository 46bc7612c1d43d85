package engine

// CountDestinations counts, for every cell, how many paths of the given
// length from start end there. Cells that cannot be reached are absent.
func CountDestinations(board Board, start Coordinate, requiredMoves int) (map[Coordinate]int, error) {
	req := SearchRequest{Board: board, Start: start, End: start, RequiredMoves: requiredMoves}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	counts := map[Coordinate]int{start: 1}
	for level := 0; level < requiredMoves; level++ {
		next := make(map[Coordinate]int, len(counts)*2)
		for c, n := range counts {
			for _, s := range Successors(c, board.Size) {
				next[s] += n
			}
		}
		counts = next
	}
	return counts, nil
}
