package session

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/knight-paths/game/config"
	"github.com/wricardo/knight-paths/game/engine"
)

func newSQLiteTestPersistence(t *testing.T) (*SQLitePersistence, *config.Manager) {
	t.Helper()
	configManager, err := config.NewManager("../../configs")
	require.NoError(t, err)

	persistence, err := NewSQLitePersistence(filepath.Join(t.TempDir(), "db", "sessions.db"), configManager)
	require.NoError(t, err)
	t.Cleanup(func() { persistence.Close() })
	return persistence, configManager
}

func TestSQLitePersistence_SaveLoad(t *testing.T) {
	persistence, configManager := newSQLiteTestPersistence(t)

	compact, err := configManager.LoadConfig("compact")
	require.NoError(t, err)

	session := newTestSession(t, "sql1", compact)
	require.NoError(t, persistence.Save(session))
	assert.True(t, persistence.Exists("sql1"))

	runSearch(t, session.Engine, engine.Coordinate{X: 0, Y: 0}, engine.Coordinate{X: 0, Y: 0})
	require.NoError(t, persistence.Save(session), "upsert of an existing row")

	loaded, err := persistence.Load("sql1")
	require.NoError(t, err)

	assert.Equal(t, "sql1", loaded.ID)
	assert.Equal(t, "Compact", loaded.Config.Name)

	state := loaded.Engine.GetState()
	assert.Equal(t, engine.PhaseMatched, state.Phase)
	assert.Equal(t, 6, state.BoardSize)
	assert.Equal(t, engine.DarkFirst, state.ColourRule)
	assert.Len(t, state.Paths, 2)
	assert.Len(t, state.SearchHistory, 1)
	assert.WithinDuration(t, session.CreatedAt, loaded.CreatedAt, time.Second)
}

func TestSQLitePersistence_ListAndDelete(t *testing.T) {
	persistence, configManager := newSQLiteTestPersistence(t)

	older := newTestSession(t, "older", configManager.GetDefault())
	older.LastAccessedAt = time.Now().Add(-time.Hour)
	newer := newTestSession(t, "newer", configManager.GetDefault())

	require.NoError(t, persistence.Save(older))
	require.NoError(t, persistence.Save(newer))

	ids, err := persistence.ListAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"newer", "older"}, ids)

	require.NoError(t, persistence.Delete("older"))
	assert.False(t, persistence.Exists("older"))
	assert.ErrorIs(t, persistence.Delete("older"), ErrSessionNotFound)

	_, err = persistence.Load("older")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	assert.Error(t, persistence.Save(nil))
}

func TestSQLitePersistence_ReopenKeepsSessions(t *testing.T) {
	configManager, err := config.NewManager("../../configs")
	require.NoError(t, err)

	dbPath := filepath.Join(t.TempDir(), "sessions.db")
	first, err := NewSQLitePersistence(dbPath, configManager)
	require.NoError(t, err)
	require.NoError(t, first.Save(newTestSession(t, "kept", configManager.GetDefault())))
	require.NoError(t, first.Close())

	second, err := NewSQLitePersistence(dbPath, configManager)
	require.NoError(t, err)
	defer second.Close()

	loaded, err := second.Load("kept")
	require.NoError(t, err)
	assert.Equal(t, "Classic", loaded.Config.Name)
}
