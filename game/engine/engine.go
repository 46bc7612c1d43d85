package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Engine provides the main interface for board operations
type Engine interface {
	// Board state management
	GetState() *BoardState
	SetState(state *BoardState) error
	Generation() uint64
	Phase() Phase

	// Selection
	Select(c Coordinate) (SelectOutcome, *Ticket, error)
	Clear() *BoardState
	Resize(size int) error

	// Search delivery
	Deliver(ticket Ticket, result SearchResult) bool
	Abort(ticket Ticket, err error) bool

	// Configuration
	GetConfig() *BoardConfig
	SetConfig(config *BoardConfig) error

	// History
	GetSearchHistory() []SearchHistoryEntry
	GetLastSearch() *SearchHistoryEntry
}

// BoardEngine implements the Engine interface. It is not safe for concurrent
// use; callers serialize access.
type BoardEngine struct {
	state  *BoardState
	config *BoardConfig
}

// NewEngine creates a new board engine with the provided configuration
func NewEngine(config *BoardConfig) (*BoardEngine, error) {
	if err := ValidateBoardConfig(config); err != nil {
		return nil, err
	}

	return &BoardEngine{
		config: config,
		state:  InitBoardStateFromConfig(config),
	}, nil
}

// NewEngineWithDefaults creates a new board engine with the default configuration
func NewEngineWithDefaults() *BoardEngine {
	config := DefaultBoardConfig()
	return &BoardEngine{
		config: config,
		state:  InitBoardStateFromConfig(config),
	}
}

// GetState returns the current board state
func (e *BoardEngine) GetState() *BoardState {
	return e.state
}

// SetState sets the board state (used for persistence loading). A search that
// was in flight when the state was saved cannot be resumed, so the board goes
// back to waiting for a destination.
func (e *BoardEngine) SetState(state *BoardState) error {
	if state == nil {
		return fmt.Errorf("state cannot be nil")
	}
	if state.BoardSize <= 0 {
		return fmt.Errorf("state board size must be positive, got %d", state.BoardSize)
	}
	if state.Phase == PhaseSearching {
		state.End = nil
		state.Phase = PhaseAwaitingEnd
		state.Message = e.config.Messages.StartSelected
	}
	if state.SearchHistory == nil {
		state.SearchHistory = []SearchHistoryEntry{}
	}
	e.state = state
	return nil
}

// Generation returns the current search generation
func (e *BoardEngine) Generation() uint64 {
	return e.state.Generation
}

// Phase returns the current phase
func (e *BoardEngine) Phase() Phase {
	return e.state.Phase
}

// Board returns the board descriptor for the current size
func (e *BoardEngine) Board() Board {
	return Board{Size: e.state.BoardSize}
}

// Select records a start or end coordinate. Choosing the end issues a ticket
// for the search the caller must run; once both are chosen further selections
// are ignored until Clear.
func (e *BoardEngine) Select(c Coordinate) (SelectOutcome, *Ticket, error) {
	if !InBounds(c, e.state.BoardSize) {
		return SelectIgnored, nil, &InvalidRequestError{Field: "selection", Coordinate: &c, Reason: "is outside the board"}
	}

	switch e.state.Phase {
	case PhaseAwaitingStart:
		e.state.Start = &c
		e.state.Phase = PhaseAwaitingEnd
		e.state.Message = e.config.Messages.StartSelected
		return SelectStart, nil, nil

	case PhaseAwaitingEnd:
		e.state.End = &c
		e.state.Phase = PhaseSearching
		e.state.Generation++
		e.state.Paths = nil
		e.state.Message = formatMessage(e.config.Messages.EndSelected, e.state.RequiredMoves)

		ticket := &Ticket{
			Generation: e.state.Generation,
			Request: SearchRequest{
				Board:         e.Board(),
				Start:         *e.state.Start,
				End:           c,
				RequiredMoves: e.state.RequiredMoves,
			},
		}
		return SelectEnd, ticket, nil

	default:
		if e.config.Messages.SelectionLocked != "" {
			e.state.Message = e.config.Messages.SelectionLocked
		}
		return SelectIgnored, nil, nil
	}
}

// Clear removes the selection and any results. In-flight searches become stale.
func (e *BoardEngine) Clear() *BoardState {
	e.reset()
	e.state.Message = e.config.Messages.Cleared
	if e.state.Message == "" {
		e.state.Message = e.config.Messages.Welcome
	}
	return e.state
}

// Resize rebuilds the board with a new side length, validated against the
// configuration's size rules
func (e *BoardEngine) Resize(size int) error {
	if err := e.config.SizeRules().Check(size); err != nil {
		return err
	}

	e.state.BoardSize = size
	e.reset()
	e.state.Message = e.config.Messages.Welcome
	if e.config.Messages.Resized != "" {
		e.state.Message = formatMessage(e.config.Messages.Resized, size, size)
	}
	return nil
}

// Deliver applies a finished search if its ticket is still current. Stale
// results are dropped and false is returned.
func (e *BoardEngine) Deliver(ticket Ticket, result SearchResult) bool {
	if !e.isCurrent(ticket) {
		return false
	}

	if result.Matched() {
		e.state.Phase = PhaseMatched
		e.state.Paths = result.Paths
		e.state.Message = formatMessage(e.config.Messages.Matched, len(result.Paths))
	} else {
		e.state.Phase = PhaseNotFound
		e.state.Paths = nil
		e.state.Message = e.config.Messages.NotFound
	}

	e.addSearchToHistory(ticket, result)
	return true
}

// Abort marks the current search as failed
func (e *BoardEngine) Abort(ticket Ticket, err error) bool {
	if !e.isCurrent(ticket) {
		return false
	}
	e.state.Phase = PhaseFailed
	e.state.Paths = nil
	e.state.Message = fmt.Sprintf("Search failed: %v", err)
	return true
}

// GetConfig returns the current board configuration
func (e *BoardEngine) GetConfig() *BoardConfig {
	return e.config
}

// SetConfig sets a new configuration and resets the board
func (e *BoardEngine) SetConfig(config *BoardConfig) error {
	if err := ValidateBoardConfig(config); err != nil {
		return err
	}

	generation := e.state.Generation
	e.config = config
	e.state = InitBoardStateFromConfig(config)
	e.state.Generation = generation + 1
	return nil
}

// GetSearchHistory returns the complete search history
func (e *BoardEngine) GetSearchHistory() []SearchHistoryEntry {
	return e.state.SearchHistory
}

// GetLastSearch returns the last delivered search, or nil if none
func (e *BoardEngine) GetLastSearch() *SearchHistoryEntry {
	if len(e.state.SearchHistory) == 0 {
		return nil
	}
	return &e.state.SearchHistory[len(e.state.SearchHistory)-1]
}

func (e *BoardEngine) isCurrent(ticket Ticket) bool {
	return e.state.Phase == PhaseSearching && ticket.Generation == e.state.Generation
}

// reset clears the selection and bumps the generation
func (e *BoardEngine) reset() {
	e.state.Start = nil
	e.state.End = nil
	e.state.Paths = nil
	e.state.Phase = PhaseAwaitingStart
	e.state.Generation++
}

func (e *BoardEngine) addSearchToHistory(ticket Ticket, result SearchResult) {
	entry := SearchHistoryEntry{
		ID:            uuid.NewString(),
		Generation:    ticket.Generation,
		BoardSize:     ticket.Request.Board.Size,
		Start:         ticket.Request.Start,
		End:           ticket.Request.End,
		RequiredMoves: ticket.Request.RequiredMoves,
		Outcome:       result.Outcome,
		PathCount:     len(result.Paths),
		Explored:      result.Explored,
		Timestamp:     time.Now(),
		SearchNumber:  e.state.TotalSearches + 1,
	}
	e.state.SearchHistory = append(e.state.SearchHistory, entry)
	e.state.TotalSearches++
}

// formatMessage fills in a message template, tolerating templates without verbs
func formatMessage(template string, args ...any) string {
	if template == "" {
		return ""
	}
	n := 0
	for i := 0; i+1 < len(template); i++ {
		if template[i] == '%' {
			if template[i+1] == '%' {
				i++
				continue
			}
			n++
		}
	}
	if n == 0 {
		return template
	}
	if n < len(args) {
		args = args[:n]
	}
	return fmt.Sprintf(template, args...)
}
