package engine

import (
	"strconv"
	"strings"
)

// ColourRule decides whether a row starts with a light or a dark tile
type ColourRule string

const (
	LightFirst ColourRule = "light_first"
	DarkFirst  ColourRule = "dark_first"
)

// TileColour is the colour of a single tile
type TileColour string

const (
	Light TileColour = "light"
	Dark  TileColour = "dark"
)

// TileColour returns the colour of the tile at c
func (r ColourRule) TileColour(c Coordinate) TileColour {
	even := (c.X+c.Y)%2 == 0
	if r == DarkFirst {
		even = !even
	}
	if even {
		return Light
	}
	return Dark
}

// Segment is a straight line between two tile centres
type Segment struct {
	From Coordinate `json:"from"`
	To   Coordinate `json:"to"`
}

// Segments splits each knight move of the path into the two straight legs of
// its L shape (long leg first), for drawing the path over the board.
func Segments(p Path) []Segment {
	if len(p) < 2 {
		return nil
	}
	segs := make([]Segment, 0, 2*(len(p)-1))
	for i := 1; i < len(p); i++ {
		from, to := p[i-1], p[i]
		corner := Coordinate{X: from.X, Y: to.Y}
		if abs(to.X-from.X) > abs(to.Y-from.Y) {
			corner = Coordinate{X: to.X, Y: from.Y}
		}
		segs = append(segs, Segment{From: from, To: corner}, Segment{From: corner, To: to})
	}
	return segs
}

// RenderBoard draws the board as text rows. Light tiles are '.', dark tiles
// are ':', the start is 'S', the end is 'E' and intermediate steps of path
// are their move number.
func RenderBoard(size int, rule ColourRule, start, end *Coordinate, path Path) []string {
	if size <= 0 {
		return nil
	}

	grid := make([][]string, size)
	for y := 0; y < size; y++ {
		grid[y] = make([]string, size)
		for x := 0; x < size; x++ {
			if rule.TileColour(Coordinate{X: x, Y: y}) == Light {
				grid[y][x] = "."
			} else {
				grid[y][x] = ":"
			}
		}
	}

	for i := 1; i < len(path)-1; i++ {
		c := path[i]
		if InBounds(c, size) {
			grid[c.Y][c.X] = strconv.Itoa(i % 10)
		}
	}
	if start != nil && InBounds(*start, size) {
		grid[start.Y][start.X] = "S"
	}
	if end != nil && InBounds(*end, size) {
		grid[end.Y][end.X] = "E"
	}

	rows := make([]string, size)
	for y := range grid {
		rows[y] = strings.Join(grid[y], " ")
	}
	return rows
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
