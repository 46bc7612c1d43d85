package engine

import (
	"fmt"
	"strings"
	"time"
)

// Phase describes where a board is in the select/search cycle
type Phase string

const (
	PhaseAwaitingStart Phase = "awaiting_start"
	PhaseAwaitingEnd   Phase = "awaiting_end"
	PhaseSearching     Phase = "searching"
	PhaseMatched       Phase = "matched"
	PhaseNotFound      Phase = "not_found"
	PhaseFailed        Phase = "failed"
)

// Outcome is the result kind of a single search
type Outcome string

const (
	OutcomeMatched  Outcome = "matched"
	OutcomeNotFound Outcome = "not_found"
)

const (
	// Board defaults
	DefaultBoardSize     = 8
	DefaultRequiredMoves = 3
	DefaultBottomRule    = 6
	DefaultUpperRule     = 16

	// Validation constants for board configurations
	MinBoardSize     = 1
	MaxBoardSize     = 64
	MaxRequiredMoves = 6
	MaxHistoryLimit  = 100
)

// Coordinate identifies a cell on the board
type Coordinate struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// Add applies a move offset
func (c Coordinate) Add(o Offset) Coordinate {
	return Coordinate{X: c.X + o.DX, Y: c.Y + o.DY}
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Offset is a relative knight move
type Offset struct {
	DX int `json:"dx"`
	DY int `json:"dy"`
}

// Board is an immutable square board descriptor
type Board struct {
	Size int `json:"size"`
}

// NewBoard returns a board of the given side length
func NewBoard(size int) (Board, error) {
	if size <= 0 {
		return Board{}, &InvalidRequestError{Field: "board_size", Value: size, Reason: "must be greater than 0"}
	}
	return Board{Size: size}, nil
}

// Contains reports whether c lies on the board
func (b Board) Contains(c Coordinate) bool {
	return InBounds(c, b.Size)
}

// Path is an ordered sequence of coordinates joined by knight moves
type Path []Coordinate

// Last returns the final coordinate of the path
func (p Path) Last() Coordinate {
	return p[len(p)-1]
}

// Moves returns the number of knight moves in the path
func (p Path) Moves() int {
	if len(p) == 0 {
		return 0
	}
	return len(p) - 1
}

func (p Path) String() string {
	parts := make([]string, len(p))
	for i, c := range p {
		parts[i] = c.String()
	}
	return "[" + strings.Join(parts, " -> ") + "]"
}

// SearchRequest is the input to Search
type SearchRequest struct {
	Board         Board      `json:"board"`
	Start         Coordinate `json:"start"`
	End           Coordinate `json:"end"`
	RequiredMoves int        `json:"required_moves"`
}

// SearchResult is either a non-empty set of matching paths or not found
type SearchResult struct {
	Outcome  Outcome `json:"outcome"`
	Paths    []Path  `json:"paths,omitempty"`
	Explored int     `json:"explored"` // complete sequences that survived edge pruning
}

// Matched reports whether at least one path reached the destination
func (r SearchResult) Matched() bool {
	return r.Outcome == OutcomeMatched
}

// Ticket tags an in-flight search with the board generation that issued it
type Ticket struct {
	Generation uint64        `json:"generation"`
	Request    SearchRequest `json:"request"`
}

// SelectOutcome reports what a selection did
type SelectOutcome string

const (
	SelectStart   SelectOutcome = "start_selected"
	SelectEnd     SelectOutcome = "end_selected"
	SelectIgnored SelectOutcome = "ignored"
)

// BoardState represents the complete state of one board session
type BoardState struct {
	BoardSize     int         `json:"board_size"`
	RequiredMoves int         `json:"required_moves"`
	ColourRule    ColourRule  `json:"colour_rule"`
	Start         *Coordinate `json:"start,omitempty"`
	End           *Coordinate `json:"end,omitempty"`
	Phase         Phase       `json:"phase"`
	Generation    uint64      `json:"generation"`
	Paths         []Path      `json:"paths,omitempty"`
	Message       string      `json:"message"`
	ConfigName    string      `json:"config_name"`

	SearchHistory []SearchHistoryEntry `json:"search_history"`
	TotalSearches int                  `json:"total_searches"`
}

// Clone returns a deep copy safe to hand to another goroutine
func (s *BoardState) Clone() *BoardState {
	if s == nil {
		return nil
	}
	cp := *s
	if s.Start != nil {
		start := *s.Start
		cp.Start = &start
	}
	if s.End != nil {
		end := *s.End
		cp.End = &end
	}
	if s.Paths != nil {
		cp.Paths = make([]Path, len(s.Paths))
		for i, p := range s.Paths {
			cp.Paths[i] = append(Path(nil), p...)
		}
	}
	cp.SearchHistory = append([]SearchHistoryEntry(nil), s.SearchHistory...)
	return &cp
}

// SearchHistoryEntry records one delivered search
type SearchHistoryEntry struct {
	ID            string     `json:"id"`
	Generation    uint64     `json:"generation"`
	BoardSize     int        `json:"board_size"`
	Start         Coordinate `json:"start"`
	End           Coordinate `json:"end"`
	RequiredMoves int        `json:"required_moves"`
	Outcome       Outcome    `json:"outcome"`
	PathCount     int        `json:"path_count"`
	Explored      int        `json:"explored"`
	Timestamp     time.Time  `json:"timestamp"`
	SearchNumber  int        `json:"search_number"`
}
