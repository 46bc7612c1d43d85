package session

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/wricardo/knight-paths/game/service"
)

// SQLitePersistence implements SessionPersistence on a single SQLite table
type SQLitePersistence struct {
	db            *sql.DB
	configManager service.ConfigManager
}

// NewSQLitePersistence opens or creates the session database at dbPath
func NewSQLitePersistence(dbPath string, configManager service.ConfigManager) (*SQLitePersistence, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open session database: %w", err)
	}

	sp := &SQLitePersistence{db: db, configManager: configManager}
	if err := sp.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create session schema: %w", err)
	}
	return sp, nil
}

// Close releases the database connection
func (sp *SQLitePersistence) Close() error {
	return sp.db.Close()
}

func (sp *SQLitePersistence) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			config_name TEXT NOT NULL,
			phase TEXT NOT NULL,
			board_size INTEGER NOT NULL,
			total_searches INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL,
			last_accessed_at TIMESTAMP NOT NULL,
			data TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_last_accessed ON sessions(last_accessed_at)`,
	}

	for _, stmt := range statements {
		if _, err := sp.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Save upserts a session row
func (sp *SQLitePersistence) Save(session *service.Session) error {
	data, jsonData, err := encodeSession(session, sp.configManager)
	if err != nil {
		return err
	}

	_, err = sp.db.Exec(`
		INSERT INTO sessions (id, config_name, phase, board_size, total_searches, created_at, last_accessed_at, data)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			config_name = excluded.config_name,
			phase = excluded.phase,
			board_size = excluded.board_size,
			total_searches = excluded.total_searches,
			last_accessed_at = excluded.last_accessed_at,
			data = excluded.data`,
		data.ID, data.ConfigName, string(data.BoardState.Phase), data.BoardState.BoardSize,
		data.BoardState.TotalSearches, data.CreatedAt, data.LastAccessedAt, string(jsonData))
	if err != nil {
		return fmt.Errorf("failed to save session %s: %w", data.ID, err)
	}
	return nil
}

// Load retrieves a session by ID
func (sp *SQLitePersistence) Load(id string) (*service.Session, error) {
	var jsonData string
	err := sp.db.QueryRow(`SELECT data FROM sessions WHERE id = ?`, id).Scan(&jsonData)
	if err == sql.ErrNoRows {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", id, err)
	}

	return decodeSession([]byte(jsonData), sp.configManager)
}

// Delete removes a session row
func (sp *SQLitePersistence) Delete(id string) error {
	res, err := sp.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete session %s: %w", id, err)
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// ListAll returns all persisted session IDs, most recently used first
func (sp *SQLitePersistence) ListAll() ([]string, error) {
	rows, err := sp.db.Query(`SELECT id FROM sessions ORDER BY last_accessed_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan session id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Exists checks if a session row exists
func (sp *SQLitePersistence) Exists(id string) bool {
	var one int
	err := sp.db.QueryRow(`SELECT 1 FROM sessions WHERE id = ?`, id).Scan(&one)
	return err == nil
}
