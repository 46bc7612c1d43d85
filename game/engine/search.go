package engine

// Validate checks the search preconditions without doing any work
func (r SearchRequest) Validate() error {
	if r.Board.Size <= 0 {
		return &InvalidRequestError{Field: "board_size", Value: r.Board.Size, Reason: "must be greater than 0"}
	}
	if r.RequiredMoves < 0 {
		return &InvalidRequestError{Field: "required_moves", Value: r.RequiredMoves, Reason: "must not be negative"}
	}
	if !r.Board.Contains(r.Start) {
		return &InvalidRequestError{Field: "start", Coordinate: &r.Start, Reason: "is outside the board"}
	}
	if !r.Board.Contains(r.End) {
		return &InvalidRequestError{Field: "end", Coordinate: &r.End, Reason: "is outside the board"}
	}
	return nil
}

// Search enumerates every sequence of exactly RequiredMoves knight moves from
// Start that stays on the board, and returns those ending at End.
//
// The frontier is expanded one level at a time, so the cost depends only on
// the board size and move count. Revisiting a cell is allowed.
func Search(req SearchRequest) (SearchResult, error) {
	if err := req.Validate(); err != nil {
		return SearchResult{}, err
	}

	frontier := []Path{{req.Start}}
	for level := 0; level < req.RequiredMoves; level++ {
		next := make([]Path, 0, len(frontier)*len(knightOffsets))
		for _, path := range frontier {
			for _, c := range Successors(path.Last(), req.Board.Size) {
				extended := make(Path, len(path)+1)
				copy(extended, path)
				extended[len(path)] = c
				next = append(next, extended)
			}
		}
		frontier = next
		if len(frontier) == 0 {
			break
		}
	}

	result := SearchResult{Outcome: OutcomeNotFound, Explored: len(frontier)}
	for _, path := range frontier {
		if path.Last() == req.End {
			result.Paths = append(result.Paths, path)
		}
	}
	if len(result.Paths) > 0 {
		result.Outcome = OutcomeMatched
	}
	return result, nil
}
