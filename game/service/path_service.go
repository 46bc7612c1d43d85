package service

import (
	"context"
	"errors"
	"time"

	"github.com/wricardo/knight-paths/game/engine"
)

// ErrSessionNotFound is returned when a session ID matches no live or
// persisted session
var ErrSessionNotFound = errors.New("session not found")

// PathService defines all board and search operations
type PathService interface {
	// Session Management
	CreateSession(ctx context.Context, configName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Board Operations
	Select(ctx context.Context, sessionID string, cell engine.Coordinate, wait bool) (*SelectResult, error)
	Clear(ctx context.Context, sessionID string) (*engine.BoardState, error)
	Resize(ctx context.Context, sessionID string, size int) (*engine.BoardState, error)

	// Board State
	GetBoardState(ctx context.Context, sessionID string) (*engine.BoardState, error)
	GetSearchHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Stateless search
	Search(ctx context.Context, query SearchQuery) (*SearchResponse, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.BoardConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.BoardConfig) error

	// Wait blocks until every dispatched search has finished
	Wait() error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, config *engine.BoardConfig) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id string, config *engine.BoardConfig) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// ConfigManager handles board configuration loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.BoardConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.BoardConfig
	SaveConfig(name string, config *engine.BoardConfig) error
}

// Notifier receives a board snapshot whenever a session's board changes
type Notifier interface {
	BroadcastToSession(sessionID string, state *engine.BoardState)
}

// Session represents an active board session
type Session struct {
	ID             string
	Engine         *engine.BoardEngine
	Config         *engine.BoardConfig
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
