package engine

// knightOffsets lists the eight knight deltas in a fixed order so successor
// lists and test fixtures are reproducible.
var knightOffsets = [8]Offset{
	{DX: 2, DY: 1},
	{DX: 1, DY: 2},
	{DX: -1, DY: 2},
	{DX: -2, DY: 1},
	{DX: -2, DY: -1},
	{DX: -1, DY: -2},
	{DX: 1, DY: -2},
	{DX: 2, DY: -1},
}

// Offsets returns a copy of the knight move deltas
func Offsets() []Offset {
	out := make([]Offset, len(knightOffsets))
	copy(out, knightOffsets[:])
	return out
}

// InBounds checks whether both components lie in [0, size)
func InBounds(c Coordinate, size int) bool {
	return c.X >= 0 && c.X < size && c.Y >= 0 && c.Y < size
}

// Successors returns every in-bounds cell one knight move away from c
func Successors(c Coordinate, size int) []Coordinate {
	next := make([]Coordinate, 0, len(knightOffsets))
	for _, o := range knightOffsets {
		if n := c.Add(o); InBounds(n, size) {
			next = append(next, n)
		}
	}
	return next
}

// IsKnightMove reports whether b is exactly one knight move from a
func IsKnightMove(a, b Coordinate) bool {
	for _, o := range knightOffsets {
		if a.Add(o) == b {
			return true
		}
	}
	return false
}
