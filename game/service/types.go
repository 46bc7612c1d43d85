package service

import (
	"time"

	"github.com/wricardo/knight-paths/game/engine"
)

// SessionInfo provides information about a board session
type SessionInfo struct {
	ID             string              `json:"id"`
	ConfigName     string              `json:"config_name"`
	CreatedAt      time.Time           `json:"created_at"`
	LastAccessedAt time.Time           `json:"last_accessed_at"`
	BoardState     *engine.BoardState  `json:"board_state"`
	BoardConfig    *engine.BoardConfig `json:"board_config"`
}

// SelectResult contains the result of a cell selection
type SelectResult struct {
	Outcome    engine.SelectOutcome `json:"outcome"`
	Searching  bool                 `json:"searching"` // a search was dispatched by this selection
	Generation uint64               `json:"generation"`
	BoardState *engine.BoardState   `json:"board_state"`
	Message    string               `json:"message"`
	Board      []string             `json:"board,omitempty"`
}

// SearchQuery is a one-shot search independent of any session
type SearchQuery struct {
	BoardSize     int               `json:"board_size"`
	Start         engine.Coordinate `json:"start"`
	End           engine.Coordinate `json:"end"`
	RequiredMoves int               `json:"required_moves"`
	ColourRule    engine.ColourRule `json:"colour_rule,omitempty"`
	Render        bool              `json:"render,omitempty"`
}

// SearchResponse contains the result of a one-shot search
type SearchResponse struct {
	RequestID string               `json:"request_id"`
	Request   engine.SearchRequest `json:"request"`
	Outcome   engine.Outcome       `json:"outcome"`
	PathCount int                  `json:"path_count"`
	Explored  int                  `json:"explored"`
	Paths     []engine.Path        `json:"paths,omitempty"`
	Board     []string             `json:"board,omitempty"`    // rendered with the first path
	Segments  [][]engine.Segment   `json:"segments,omitempty"` // per path, L-shaped legs
	Duration  time.Duration        `json:"duration_ns"`
}

// HistoryOptions configures search history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated search history
type HistoryResponse struct {
	Searches      []engine.SearchHistoryEntry `json:"searches"`
	TotalSearches int                         `json:"total_searches"`
	Page          int                         `json:"page"`
	PageSize      int                         `json:"page_size"`
	TotalPages    int                         `json:"total_pages"`
	HasNext       bool                        `json:"has_next"`
	HasPrevious   bool                        `json:"has_previous"`
}

// ConfigInfo provides information about a board configuration
type ConfigInfo struct {
	Filename      string `json:"filename"`
	ConfigID      string `json:"config_id"` // The identifier to use for session creation
	Name          string `json:"name"`      // Display name
	Description   string `json:"description"`
	BoardSize     int    `json:"board_size"`
	RequiredMoves int    `json:"required_moves"`
	BottomRule    int    `json:"bottom_rule"`
	UpperRule     int    `json:"upper_rule"`
}
