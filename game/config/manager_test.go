package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/wricardo/knight-paths/game/engine"
)

func createValidConfig() *engine.BoardConfig {
	config := engine.DefaultBoardConfig()
	config.Name = "Test Config"
	config.Description = "Test configuration"
	return config
}

func writeConfigFile(t *testing.T, dir, name string, config *engine.BoardConfig) {
	t.Helper()

	filename := name
	if filepath.Ext(filename) == "" {
		filename = name + ".json"
	}

	var (
		data []byte
		err  error
	)
	switch filepath.Ext(filename) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(config)
	default:
		data, err = json.MarshalIndent(config, "", "  ")
	}
	if err != nil {
		t.Fatalf("Failed to marshal config: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, filename), data, 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
}

func TestNewManager(t *testing.T) {
	t.Run("valid directory", func(t *testing.T) {
		dir := t.TempDir()

		classic := createValidConfig()
		classic.Name = "Classic"
		writeConfigFile(t, dir, "classic", classic)

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if manager.GetDefault().Name != "Classic" {
			t.Errorf("Expected classic as default, got %q", manager.GetDefault().Name)
		}
	})

	t.Run("non-existent directory", func(t *testing.T) {
		_, err := NewManager("/non/existent/path")
		if err == nil {
			t.Error("Expected error for non-existent directory")
		}
	})

	t.Run("empty directory falls back to built-in board", func(t *testing.T) {
		manager, err := NewManager(t.TempDir())
		if err != nil {
			t.Fatalf("NewManager should succeed without config files, got error: %v", err)
		}

		defaultConfig := manager.GetDefault()
		if defaultConfig == nil {
			t.Fatal("Expected default config to be available")
		}
		if defaultConfig.BoardSize != engine.DefaultBoardSize {
			t.Errorf("Expected built-in board size %d, got %d", engine.DefaultBoardSize, defaultConfig.BoardSize)
		}
	})

	t.Run("first valid config when classic is missing", func(t *testing.T) {
		dir := t.TempDir()

		other := createValidConfig()
		other.Name = "Alpha"
		writeConfigFile(t, dir, "alpha.yaml", other)

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if manager.GetDefault().Name != "Alpha" {
			t.Errorf("Expected Alpha as default, got %q", manager.GetDefault().Name)
		}
	})
}

func TestManager_LoadConfig(t *testing.T) {
	dir := t.TempDir()

	writeConfigFile(t, dir, "classic", createValidConfig())

	big := createValidConfig()
	big.Name = "Big"
	big.BoardSize = 12
	writeConfigFile(t, dir, "big", big)

	dark := createValidConfig()
	dark.Name = "Dark"
	dark.ColourRule = engine.DarkFirst
	dark.RequiredMoves = 4
	writeConfigFile(t, dir, "dark.yaml", dark)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	t.Run("load existing config", func(t *testing.T) {
		config, err := manager.LoadConfig("big")
		if err != nil {
			t.Fatalf("Failed to load config: %v", err)
		}
		if config.Name != "Big" || config.BoardSize != 12 {
			t.Errorf("Unexpected config %+v", config)
		}
	})

	t.Run("load with .json extension", func(t *testing.T) {
		config, err := manager.LoadConfig("big.json")
		if err != nil {
			t.Fatalf("Failed to load config with extension: %v", err)
		}
		if config.Name != "Big" {
			t.Errorf("Expected config name 'Big', got '%s'", config.Name)
		}
	})

	t.Run("load yaml config", func(t *testing.T) {
		config, err := manager.LoadConfig("dark")
		if err != nil {
			t.Fatalf("Failed to load yaml config: %v", err)
		}
		if config.ColourRule != engine.DarkFirst || config.RequiredMoves != 4 {
			t.Errorf("Unexpected yaml config %+v", config)
		}
	})

	t.Run("load from cache", func(t *testing.T) {
		config1, _ := manager.LoadConfig("big")
		config2, err := manager.LoadConfig("big.json")
		if err != nil {
			t.Fatalf("Failed to load config from cache: %v", err)
		}
		if config1 != config2 {
			t.Error("Expected config to be loaded from cache")
		}
	})

	t.Run("load non-existent config", func(t *testing.T) {
		_, err := manager.LoadConfig("non-existent")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("Expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("load invalid config", func(t *testing.T) {
		invalidData := []byte(`{"name": ""}`)
		if err := os.WriteFile(filepath.Join(dir, "invalid.json"), invalidData, 0644); err != nil {
			t.Fatalf("Failed to write invalid config: %v", err)
		}

		_, err := manager.LoadConfig("invalid")
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("load malformed JSON", func(t *testing.T) {
		malformedData := []byte(`{"name": "Malformed", invalid json}`)
		if err := os.WriteFile(filepath.Join(dir, "malformed.json"), malformedData, 0644); err != nil {
			t.Fatalf("Failed to write malformed config: %v", err)
		}

		if _, err := manager.LoadConfig("malformed"); err == nil {
			t.Error("Expected error for malformed JSON")
		}
	})
}

func TestParseFile_DefaultsColourRule(t *testing.T) {
	dir := t.TempDir()
	data := []byte(`
name: Plain
description: No colour rule given
board_size: 8
required_moves: 2
bottom_rule: 6
upper_rule: 16
messages:
  welcome: Hi
  matched: "Found %d"
  not_found: Nothing
`)
	path := filepath.Join(dir, "plain.yml")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	config, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile failed: %v", err)
	}
	if config.ColourRule != engine.LightFirst {
		t.Errorf("Expected %s, got %s", engine.LightFirst, config.ColourRule)
	}
}

func TestManager_ListConfigs(t *testing.T) {
	dir := t.TempDir()

	configs := []struct {
		filename string
		name     string
	}{
		{"classic", "Classic"},
		{"easy", "Easy"},
		{"medium.yaml", "Medium"},
		{"hard.yml", "Hard"},
	}

	for _, cfg := range configs {
		config := createValidConfig()
		config.Name = cfg.name
		writeConfigFile(t, dir, cfg.filename, config)
	}

	// Files that should be ignored
	os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("readme"), 0644)
	os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0644)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	configList, err := manager.ListConfigs()
	if err != nil {
		t.Fatalf("Failed to list configs: %v", err)
	}
	if len(configList) != 4 {
		t.Fatalf("Expected 4 configs, got %d", len(configList))
	}

	wantIDs := []string{"classic", "easy", "hard", "medium"}
	for i, info := range configList {
		if info.ConfigID != wantIDs[i] {
			t.Errorf("Expected config %d to be %q, got %q", i, wantIDs[i], info.ConfigID)
		}
		if info.BoardSize != engine.DefaultBoardSize || info.RequiredMoves != engine.DefaultRequiredMoves {
			t.Errorf("Unexpected summary %+v", info)
		}
	}
}

func TestManager_SaveConfig(t *testing.T) {
	dir := t.TempDir()
	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	config := createValidConfig()
	config.Name = "Saved"
	config.BoardSize = 10

	t.Run("json", func(t *testing.T) {
		if err := manager.SaveConfig("saved", config); err != nil {
			t.Fatalf("SaveConfig failed: %v", err)
		}
		loaded, err := ParseFile(filepath.Join(dir, "saved.json"))
		if err != nil {
			t.Fatalf("Failed to parse saved file: %v", err)
		}
		if loaded.BoardSize != 10 {
			t.Errorf("Expected board size 10, got %d", loaded.BoardSize)
		}
	})

	t.Run("yaml", func(t *testing.T) {
		if err := manager.SaveConfig("saved-yaml.yaml", config); err != nil {
			t.Fatalf("SaveConfig failed: %v", err)
		}
		loaded, err := ParseFile(filepath.Join(dir, "saved-yaml.yaml"))
		if err != nil {
			t.Fatalf("Failed to parse saved file: %v", err)
		}
		if loaded.Name != "Saved" {
			t.Errorf("Expected name Saved, got %q", loaded.Name)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		bad := createValidConfig()
		bad.RequiredMoves = -1
		if err := manager.SaveConfig("bad", bad); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("path traversal", func(t *testing.T) {
		if err := manager.SaveConfig("../escape", config); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Expected ErrInvalidConfig, got %v", err)
		}
	})
}

func TestManager_RefreshCache(t *testing.T) {
	dir := t.TempDir()

	config := createValidConfig()
	config.Name = "Changeable"
	writeConfigFile(t, dir, "classic", config)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	config.BoardSize = 14
	writeConfigFile(t, dir, "classic", config)

	if err := manager.RefreshCache(); err != nil {
		t.Fatalf("RefreshCache failed: %v", err)
	}
	if manager.GetDefault().BoardSize != 14 {
		t.Errorf("Expected reloaded board size 14, got %d", manager.GetDefault().BoardSize)
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	dir := t.TempDir()

	writeConfigFile(t, dir, "classic", createValidConfig())
	for i := 1; i <= 5; i++ {
		config := createValidConfig()
		config.Name = "Config" + strconv.Itoa(i)
		writeConfigFile(t, dir, "config"+strconv.Itoa(i), config)
	}

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 50)

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			if _, err := manager.LoadConfig("config" + strconv.Itoa(id%5+1)); err != nil {
				errs <- err
			}
		}(i)
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Unexpected error during concurrent access: %v", err)
	}

	if manager.Count() != 6 {
		t.Errorf("Expected 6 configs in cache, got %d", manager.Count())
	}
}
