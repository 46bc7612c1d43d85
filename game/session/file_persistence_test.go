package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/wricardo/knight-paths/game/config"
	"github.com/wricardo/knight-paths/game/engine"
	"github.com/wricardo/knight-paths/game/service"
)

func newTestSession(t *testing.T, id string, boardConfig *engine.BoardConfig) *service.Session {
	t.Helper()
	eng, err := engine.NewEngine(boardConfig)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	return &service.Session{
		ID:             id,
		Engine:         eng,
		Config:         boardConfig,
		CreatedAt:      time.Now(),
		LastAccessedAt: time.Now(),
	}
}

// runSearch selects start and end and delivers the search result
func runSearch(t *testing.T, eng *engine.BoardEngine, start, end engine.Coordinate) {
	t.Helper()
	eng.Select(start)
	_, ticket, err := eng.Select(end)
	if err != nil || ticket == nil {
		t.Fatalf("Expected a ticket, err=%v", err)
	}
	result, err := engine.Search(ticket.Request)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if !eng.Deliver(*ticket, result) {
		t.Fatal("Expected result to be delivered")
	}
}

func TestFilePersistence(t *testing.T) {
	tempDir := t.TempDir()

	configManager, err := config.NewManager("../../configs")
	if err != nil {
		t.Fatalf("Failed to create config manager: %v", err)
	}

	persistence, err := NewFilePersistence(tempDir, configManager)
	if err != nil {
		t.Fatalf("Failed to create file persistence: %v", err)
	}

	boardConfig := configManager.GetDefault()
	session := newTestSession(t, "test1", boardConfig)

	t.Run("Save and Load Session", func(t *testing.T) {
		if err := persistence.Save(session); err != nil {
			t.Fatalf("Failed to save session: %v", err)
		}

		if !persistence.Exists("test1") {
			t.Error("Session file should exist after save")
		}

		loadedSession, err := persistence.Load("test1")
		if err != nil {
			t.Fatalf("Failed to load session: %v", err)
		}

		if loadedSession.ID != session.ID {
			t.Errorf("Expected ID %s, got %s", session.ID, loadedSession.ID)
		}
		if loadedSession.Config.Name != session.Config.Name {
			t.Errorf("Expected config name %s, got %s", session.Config.Name, loadedSession.Config.Name)
		}
		if loadedSession.Engine.GetState().BoardSize != session.Engine.GetState().BoardSize {
			t.Errorf("Expected board size %d, got %d", session.Engine.GetState().BoardSize, loadedSession.Engine.GetState().BoardSize)
		}
	})

	t.Run("Save State Changes", func(t *testing.T) {
		// Three moves from a corner to a square of the other colour
		runSearch(t, session.Engine, engine.Coordinate{X: 0, Y: 0}, engine.Coordinate{X: 1, Y: 2})

		if err := persistence.Save(session); err != nil {
			t.Fatalf("Failed to save updated session: %v", err)
		}

		loadedSession, err := persistence.Load("test1")
		if err != nil {
			t.Fatalf("Failed to load updated session: %v", err)
		}

		state := loadedSession.Engine.GetState()
		if state.Phase != session.Engine.Phase() {
			t.Errorf("Expected phase %s, got %s", session.Engine.Phase(), state.Phase)
		}
		if len(state.Paths) != len(session.Engine.GetState().Paths) {
			t.Errorf("Paths not persisted correctly")
		}
		if len(loadedSession.Engine.GetSearchHistory()) != 1 {
			t.Errorf("Search history not persisted correctly")
		}
	})

	t.Run("Interrupted Search Restores Awaiting End", func(t *testing.T) {
		interrupted := newTestSession(t, "interrupted", boardConfig)
		interrupted.Engine.Select(engine.Coordinate{X: 0, Y: 0})
		interrupted.Engine.Select(engine.Coordinate{X: 2, Y: 1})

		if err := persistence.Save(interrupted); err != nil {
			t.Fatalf("Failed to save session: %v", err)
		}

		loaded, err := persistence.Load("interrupted")
		if err != nil {
			t.Fatalf("Failed to load session: %v", err)
		}
		if loaded.Engine.Phase() != engine.PhaseAwaitingEnd {
			t.Errorf("Expected phase %s, got %s", engine.PhaseAwaitingEnd, loaded.Engine.Phase())
		}
		if loaded.Engine.GetState().Start == nil {
			t.Error("Expected start selection to survive")
		}
	})

	t.Run("List All Sessions", func(t *testing.T) {
		session2 := newTestSession(t, "test2", boardConfig)
		if err := persistence.Save(session2); err != nil {
			t.Fatalf("Failed to save second session: %v", err)
		}

		sessionIDs, err := persistence.ListAll()
		if err != nil {
			t.Fatalf("Failed to list sessions: %v", err)
		}

		found := make(map[string]bool)
		for _, id := range sessionIDs {
			found[id] = true
		}
		if !found["test1"] || !found["test2"] {
			t.Error("Expected sessions not found in list")
		}
		if found[strings.TrimSuffix(lockFileName, filepath.Ext(lockFileName))] {
			t.Error("Lock file should not be listed as a session")
		}
	})

	t.Run("Delete Session", func(t *testing.T) {
		if err := persistence.Delete("test2"); err != nil {
			t.Fatalf("Failed to delete session: %v", err)
		}

		if persistence.Exists("test2") {
			t.Error("Session should not exist after delete")
		}

		if _, err := persistence.Load("test2"); err != ErrSessionNotFound {
			t.Errorf("Expected ErrSessionNotFound, got %v", err)
		}
	})

	t.Run("Error Cases", func(t *testing.T) {
		if _, err := persistence.Load("nonexistent"); err == nil {
			t.Error("Should get error when loading non-existent session")
		}

		if err := persistence.Delete("nonexistent"); err == nil {
			t.Error("Should get error when deleting non-existent session")
		}

		if err := persistence.Save(nil); err == nil {
			t.Error("Should get error when saving nil session")
		}
	})
}

func TestFilePersistenceFileStructure(t *testing.T) {
	tempDir := t.TempDir()

	configManager, err := config.NewManager("../../configs")
	if err != nil {
		t.Fatalf("Failed to create config manager: %v", err)
	}

	persistence, err := NewFilePersistence(tempDir, configManager)
	if err != nil {
		t.Fatalf("Failed to create file persistence: %v", err)
	}

	session := newTestSession(t, "file_test", configManager.GetDefault())
	if err := persistence.Save(session); err != nil {
		t.Fatalf("Failed to save session: %v", err)
	}

	expectedFile := filepath.Join(tempDir, "file_test.json")
	data, err := os.ReadFile(expectedFile)
	if err != nil {
		t.Fatalf("Failed to read session file: %v", err)
	}

	var persisted PersistedSessionData
	if err := json.Unmarshal(data, &persisted); err != nil {
		t.Fatalf("Session file is not valid JSON: %v", err)
	}
	if persisted.ConfigName != "classic" {
		t.Errorf("Expected config id 'classic', got %q", persisted.ConfigName)
	}

	content := string(data)
	for _, field := range []string{`"id"`, `"config_name"`, `"created_at"`, `"board_state"`} {
		if !strings.Contains(content, field) {
			t.Errorf("Session file should contain field %s", field)
		}
	}

	if _, err := os.Stat(expectedFile + ".tmp"); !os.IsNotExist(err) {
		t.Error("Temporary file should be renamed away")
	}
}

func TestFilePersistence_BuiltinDefaultConfig(t *testing.T) {
	configManager, err := config.NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create config manager: %v", err)
	}

	persistence, err := NewFilePersistence(t.TempDir(), configManager)
	if err != nil {
		t.Fatalf("Failed to create file persistence: %v", err)
	}

	session := newTestSession(t, "builtin", configManager.GetDefault())
	if err := persistence.Save(session); err != nil {
		t.Fatalf("Failed to save session: %v", err)
	}

	loaded, err := persistence.Load("builtin")
	if err != nil {
		t.Fatalf("Expected built-in config to be restored, got %v", err)
	}
	if loaded.Config.Name != "default" {
		t.Errorf("Expected built-in config, got %q", loaded.Config.Name)
	}
}
