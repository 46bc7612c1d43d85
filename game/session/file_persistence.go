package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofrs/flock"

	"github.com/wricardo/knight-paths/game/service"
)

const lockFileName = ".sessions.lock"

// FilePersistence implements SessionPersistence using one JSON file per
// session. An advisory lock on the directory keeps separate processes
// sharing the directory from reading half-written files.
type FilePersistence struct {
	sessionsDir   string
	configManager service.ConfigManager
	lock          *flock.Flock

	// mu guards lock, whose state is per process
	mu sync.Mutex
}

// NewFilePersistence creates a new file-based session persistence layer
func NewFilePersistence(sessionsDir string, configManager service.ConfigManager) (*FilePersistence, error) {
	// Create sessions directory if it doesn't exist
	if err := os.MkdirAll(sessionsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create sessions directory: %w", err)
	}

	return &FilePersistence{
		sessionsDir:   sessionsDir,
		configManager: configManager,
		lock:          flock.New(filepath.Join(sessionsDir, lockFileName)),
	}, nil
}

// Save persists a session to a JSON file
func (fp *FilePersistence) Save(session *service.Session) error {
	_, jsonData, err := encodeSession(session, fp.configManager)
	if err != nil {
		return err
	}

	unlock, err := fp.acquire(fp.lock.Lock)
	if err != nil {
		return err
	}
	defer unlock()

	// Write to a temp file and rename so readers never see partial JSON
	filePath := fp.getFilePath(session.ID)
	tmpPath := filePath + ".tmp"
	if err := os.WriteFile(tmpPath, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := os.Rename(tmpPath, filePath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write session file: %w", err)
	}

	return nil
}

// Load retrieves a session from a JSON file
func (fp *FilePersistence) Load(id string) (*service.Session, error) {
	filePath := fp.getFilePath(id)

	unlock, err := fp.acquire(fp.lock.RLock)
	if err != nil {
		return nil, err
	}
	jsonData, err := os.ReadFile(filePath)
	unlock()
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	return decodeSession(jsonData, fp.configManager)
}

// Delete removes a session file
func (fp *FilePersistence) Delete(id string) error {
	if !fp.Exists(id) {
		return ErrSessionNotFound
	}

	unlock, err := fp.acquire(fp.lock.Lock)
	if err != nil {
		return err
	}
	defer unlock()

	if err := os.Remove(fp.getFilePath(id)); err != nil {
		return fmt.Errorf("failed to remove session file: %w", err)
	}

	return nil
}

// ListAll returns all persisted session IDs
func (fp *FilePersistence) ListAll() ([]string, error) {
	entries, err := os.ReadDir(fp.sessionsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read sessions directory: %w", err)
	}

	var sessionIDs []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if strings.HasSuffix(name, ".json") {
			sessionIDs = append(sessionIDs, strings.TrimSuffix(name, ".json"))
		}
	}

	return sessionIDs, nil
}

// Exists checks if a session file exists
func (fp *FilePersistence) Exists(id string) bool {
	_, err := os.Stat(fp.getFilePath(id))
	return err == nil
}

// acquire takes the process mutex and then the directory lock
func (fp *FilePersistence) acquire(lockFn func() error) (func(), error) {
	fp.mu.Lock()
	if err := lockFn(); err != nil {
		fp.mu.Unlock()
		return nil, fmt.Errorf("failed to lock sessions directory: %w", err)
	}
	return func() {
		fp.lock.Unlock()
		fp.mu.Unlock()
	}, nil
}

// getFilePath returns the full file path for a session ID
func (fp *FilePersistence) getFilePath(id string) string {
	return filepath.Join(fp.sessionsDir, fmt.Sprintf("%s.json", filepath.Base(id)))
}
