package engine

import (
	"fmt"
	"strings"
)

// BoardMessages holds the user-facing text for board events
type BoardMessages struct {
	Welcome         string `json:"welcome" yaml:"welcome"`
	StartSelected   string `json:"start_selected" yaml:"start_selected"`
	EndSelected     string `json:"end_selected" yaml:"end_selected"`
	Matched         string `json:"matched" yaml:"matched"`
	NotFound        string `json:"not_found" yaml:"not_found"`
	SelectionLocked string `json:"selection_locked" yaml:"selection_locked"`
	Cleared         string `json:"cleared" yaml:"cleared"`
	Resized         string `json:"resized" yaml:"resized"`
}

// BoardConfig represents a board configuration loaded from JSON or YAML
type BoardConfig struct {
	Name          string        `json:"name" yaml:"name"`
	Description   string        `json:"description" yaml:"description"`
	BoardSize     int           `json:"board_size" yaml:"board_size"`
	RequiredMoves int           `json:"required_moves" yaml:"required_moves"`
	BottomRule    int           `json:"bottom_rule" yaml:"bottom_rule"`
	UpperRule     int           `json:"upper_rule" yaml:"upper_rule"`
	ColourRule    ColourRule    `json:"colour_rule" yaml:"colour_rule"`
	Messages      BoardMessages `json:"messages" yaml:"messages"`
}

// SizeRules returns the resize range of the configuration
func (c *BoardConfig) SizeRules() SizeRules {
	return SizeRules{Bottom: c.BottomRule, Upper: c.UpperRule}
}

// ValidateBoardConfig validates a board configuration for correctness
func ValidateBoardConfig(config *BoardConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}

	// Validate required fields
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}

	// Validate size rules
	if config.BottomRule < MinBoardSize || config.UpperRule > MaxBoardSize {
		return fmt.Errorf("config validation: size rules must lie between %d and %d, got [%d, %d]",
			MinBoardSize, MaxBoardSize, config.BottomRule, config.UpperRule)
	}
	if config.BottomRule > config.UpperRule {
		return fmt.Errorf("config validation: bottom_rule (%d) must not exceed upper_rule (%d)", config.BottomRule, config.UpperRule)
	}
	if err := config.SizeRules().Check(config.BoardSize); err != nil {
		return fmt.Errorf("config validation: board_size: %w", err)
	}

	if config.RequiredMoves < 0 || config.RequiredMoves > MaxRequiredMoves {
		return fmt.Errorf("config validation: required_moves must be between 0 and %d, got %d", MaxRequiredMoves, config.RequiredMoves)
	}

	switch config.ColourRule {
	case LightFirst, DarkFirst:
	default:
		return fmt.Errorf("config validation: colour_rule must be '%s' or '%s', got '%s'", LightFirst, DarkFirst, config.ColourRule)
	}

	// Validate messages
	if config.Messages.Welcome == "" {
		return fmt.Errorf("config validation: messages.welcome is required")
	}
	if config.Messages.NotFound == "" {
		return fmt.Errorf("config validation: messages.not_found is required")
	}
	if !strings.Contains(config.Messages.Matched, "%d") {
		return fmt.Errorf("config validation: messages.matched must contain %%d for path count")
	}

	return nil
}

// DefaultBoardConfig returns the built-in 8x8, three-move configuration
func DefaultBoardConfig() *BoardConfig {
	return &BoardConfig{
		Name:          "default",
		Description:   "Standard 8x8 chessboard, three knight moves",
		BoardSize:     DefaultBoardSize,
		RequiredMoves: DefaultRequiredMoves,
		BottomRule:    DefaultBottomRule,
		UpperRule:     DefaultUpperRule,
		ColourRule:    LightFirst,
		Messages: BoardMessages{
			Welcome:         "Pick a starting square for the knight.",
			StartSelected:   "Start set. Now pick a destination square.",
			EndSelected:     "Searching for %d-move paths...",
			Matched:         "Found %d paths to the destination!",
			NotFound:        "No path reaches the destination with the required number of moves.",
			SelectionLocked: "Clear the board before picking new squares.",
			Cleared:         "Board cleared. Pick a starting square.",
			Resized:         "Board resized to %dx%d.",
		},
	}
}

// InitBoardStateFromConfig creates a fresh board state from the configuration
func InitBoardStateFromConfig(config *BoardConfig) *BoardState {
	if config == nil {
		config = DefaultBoardConfig()
	}

	return &BoardState{
		BoardSize:     config.BoardSize,
		RequiredMoves: config.RequiredMoves,
		ColourRule:    config.ColourRule,
		Phase:         PhaseAwaitingStart,
		Message:       config.Messages.Welcome,
		ConfigName:    config.Name,
		SearchHistory: []SearchHistoryEntry{},
	}
}
