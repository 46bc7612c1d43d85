package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/wricardo/knight-paths/game/engine"
	"github.com/wricardo/knight-paths/game/service"
)

// SessionPersistence defines the interface for persisting sessions
type SessionPersistence interface {
	// Save persists a session to storage
	Save(session *service.Session) error

	// Load retrieves a session from storage by ID
	Load(id string) (*service.Session, error)

	// Delete removes a session from storage
	Delete(id string) error

	// ListAll returns all persisted session IDs
	ListAll() ([]string, error)

	// Exists checks if a session exists in storage
	Exists(id string) bool
}

// PersistedSessionData represents the JSON structure for persisted sessions
type PersistedSessionData struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	BoardState     *engine.BoardState `json:"board_state"`
}

// encodeSession snapshots a session into its persisted JSON form
func encodeSession(session *service.Session, configs service.ConfigManager) (*PersistedSessionData, []byte, error) {
	if session == nil {
		return nil, nil, fmt.Errorf("session cannot be nil")
	}

	configID, err := configIDFromName(configs, session.Config.Name)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get config ID: %w", err)
	}

	data := &PersistedSessionData{
		ID:             session.ID,
		ConfigName:     configID, // Store config ID, not display name
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
		BoardState:     session.Engine.GetState(),
	}

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal session data: %w", err)
	}
	return data, jsonData, nil
}

// decodeSession rebuilds a live session from its persisted JSON form
func decodeSession(jsonData []byte, configs service.ConfigManager) (*service.Session, error) {
	var data PersistedSessionData
	if err := json.Unmarshal(jsonData, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session data: %w", err)
	}
	if data.BoardState == nil {
		return nil, fmt.Errorf("persisted session %s has no board state", data.ID)
	}

	boardConfig, err := configs.LoadConfig(data.ConfigName)
	if err != nil {
		// Sessions created from the built-in board have no file behind them
		def := configs.GetDefault()
		if def == nil || def.Name != data.ConfigName {
			return nil, fmt.Errorf("failed to load config '%s': %w", data.ConfigName, err)
		}
		boardConfig = def
	}

	boardEngine, err := engine.NewEngine(boardConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create board engine: %w", err)
	}

	if err := boardEngine.SetState(data.BoardState); err != nil {
		return nil, fmt.Errorf("failed to set board state: %w", err)
	}

	return &service.Session{
		ID:             data.ID,
		Engine:         boardEngine,
		Config:         boardConfig,
		CreatedAt:      data.CreatedAt,
		LastAccessedAt: data.LastAccessedAt,
	}, nil
}

// configIDFromName returns the config ID (filename without extension) from display name
func configIDFromName(configs service.ConfigManager, displayName string) (string, error) {
	list, err := configs.ListConfigs()
	if err != nil {
		return "", fmt.Errorf("failed to list configs: %w", err)
	}

	for _, config := range list {
		if config.Name == displayName {
			return config.ConfigID, nil
		}
	}

	// If not found, assume the displayName is already the config ID
	return displayName, nil
}

// isNotFound reports whether err means a session is missing from storage
func isNotFound(err error) bool {
	return errors.Is(err, ErrSessionNotFound)
}
