package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validJSON = `{
	"name": "Test Config",
	"description": "Test configuration",
	"board_size": 8,
	"required_moves": 3,
	"bottom_rule": 6,
	"upper_rule": 16,
	"colour_rule": "light_first",
	"messages": {
		"welcome": "Welcome!",
		"start_selected": "Start set.",
		"end_selected": "Searching %d moves...",
		"matched": "Found %d paths!",
		"not_found": "No paths.",
		"selection_locked": "Locked.",
		"cleared": "Cleared.",
		"resized": "Resized to %dx%d."
	}
}`

const validYAML = `name: Small
description: Small board
board_size: 6
required_moves: 2
bottom_rule: 6
upper_rule: 10
messages:
  welcome: Hi
  matched: "%d paths"
  not_found: None
`

func writeTempConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func hasMessage(messages []string, substr string) bool {
	for _, m := range messages {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}

func TestValidateConfig_ValidJSON(t *testing.T) {
	result := validateConfig(writeTempConfig(t, "test.json", validJSON))
	if !result.Valid {
		t.Fatalf("Expected valid config, but got errors: %v", result.Errors)
	}
	if result.File != "test.json" {
		t.Errorf("Expected file name 'test.json', got '%s'", result.File)
	}
	if !hasMessage(result.Errors, "Board: 8x8, 3 moves required") {
		t.Errorf("Expected board info line, got %v", result.Errors)
	}
	if !hasMessage(result.Errors, "Reachability") {
		t.Errorf("Expected reachability info line, got %v", result.Errors)
	}
}

func TestValidateConfig_ValidYAML(t *testing.T) {
	result := validateConfig(writeTempConfig(t, "small.yaml", validYAML))
	if !result.Valid {
		t.Fatalf("Expected valid config, but got errors: %v", result.Errors)
	}
	// Missing colour rule defaults to light_first
	if !hasMessage(result.Errors, "Colour rule: light_first") {
		t.Errorf("Expected default colour rule, got %v", result.Errors)
	}
}

func TestValidateConfig_InvalidJSON(t *testing.T) {
	result := validateConfig(writeTempConfig(t, "broken.json", `{ invalid json }`))
	if result.Valid {
		t.Error("Expected invalid config for malformed JSON")
	}
	if !hasMessage(result.Errors, "Failed to load config") {
		t.Errorf("Expected load error, got %v", result.Errors)
	}
}

func TestValidateConfig_InvalidYAML(t *testing.T) {
	result := validateConfig(writeTempConfig(t, "broken.yml", "name: [unterminated\n"))
	if result.Valid {
		t.Error("Expected invalid config for malformed YAML")
	}
}

func TestValidateConfig_MissingFile(t *testing.T) {
	result := validateConfig(filepath.Join(t.TempDir(), "missing.json"))
	if result.Valid {
		t.Error("Expected invalid result for missing file")
	}
}

func TestValidateConfig_SizeOutOfRules(t *testing.T) {
	content := strings.Replace(validJSON, `"board_size": 8`, `"board_size": 20`, 1)
	result := validateConfig(writeTempConfig(t, "big.json", content))
	if result.Valid {
		t.Error("Expected invalid config for board size outside the size rules")
	}
}

func TestValidateConfig_BadColourRule(t *testing.T) {
	content := strings.Replace(validJSON, `"light_first"`, `"striped"`, 1)
	result := validateConfig(writeTempConfig(t, "colour.json", content))
	if result.Valid {
		t.Error("Expected invalid config for unknown colour rule")
	}
	if !hasMessage(result.Errors, "colour_rule") {
		t.Errorf("Expected colour_rule error, got %v", result.Errors)
	}
}

func TestValidateConfig_MessageTemplates(t *testing.T) {
	tests := []struct {
		name     string
		from, to string
		want     string
	}{
		{"end_selected without placeholder", `"Searching %d moves..."`, `"Searching..."`, "end_selected"},
		{"resized with one placeholder", `"Resized to %dx%d."`, `"Resized to %d."`, "resized"},
		{"matched with two placeholders", `"Found %d paths!"`, `"Found %d of %d paths!"`, "matched"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := strings.Replace(validJSON, tt.from, tt.to, 1)
			result := validateConfig(writeTempConfig(t, "messages.json", content))
			if result.Valid {
				t.Fatal("Expected invalid config")
			}
			if !hasMessage(result.Errors, tt.want) {
				t.Errorf("Expected error mentioning %s, got %v", tt.want, result.Errors)
			}
		})
	}
}

func TestValidateConfig_Unreachable(t *testing.T) {
	// No knight move fits on a 2x2 board
	content := strings.NewReplacer(
		`"board_size": 8`, `"board_size": 2`,
		`"required_moves": 3`, `"required_moves": 1`,
		`"bottom_rule": 6`, `"bottom_rule": 1`,
	).Replace(validJSON)

	result := validateConfig(writeTempConfig(t, "tiny.json", content))
	if result.Valid {
		t.Fatal("Expected invalid config for unreachable board")
	}
	if !hasMessage(result.Errors, "No cell is reachable") {
		t.Errorf("Expected reachability error, got %v", result.Errors)
	}
}

func TestValidateConfig_ZeroMoves(t *testing.T) {
	content := strings.Replace(validJSON, `"required_moves": 3`, `"required_moves": 0`, 1)
	result := validateConfig(writeTempConfig(t, "zero.json", content))
	if !result.Valid {
		t.Fatalf("Expected valid config, got %v", result.Errors)
	}
	if !hasMessage(result.Errors, "1 cells, 1 paths") {
		t.Errorf("Expected only the start cell to be reachable, got %v", result.Errors)
	}
}

func TestValidateReachability_Counts(t *testing.T) {
	path := writeTempConfig(t, "small.yaml", validYAML)
	result := validateConfig(path)
	if !result.Valid {
		t.Fatalf("Expected valid config, got %v", result.Errors)
	}
	// From (0,0) on 6x6 the knight has 2 first moves; (1,2) has 6 and (2,1)
	// has 6 successors, for 12 two-move paths.
	if !hasMessage(result.Errors, "12 paths from (0,0) in 2 moves") {
		t.Errorf("Unexpected reachability summary: %v", result.Errors)
	}
}

func TestConfigFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.json", "a.yaml", "c.yml", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	files, err := configFiles(dir)
	if err != nil {
		t.Fatalf("configFiles failed: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("Expected 3 config files, got %d: %v", len(files), files)
	}
	if filepath.Base(files[0]) != "a.yaml" || filepath.Base(files[2]) != "c.yml" {
		t.Errorf("Expected sorted files, got %v", files)
	}
}

func TestValidateRepositoryConfigs(t *testing.T) {
	files, err := configFiles("../configs")
	if err != nil {
		t.Fatalf("configFiles failed: %v", err)
	}
	if len(files) == 0 {
		t.Skip("no configs in repository")
	}
	for _, f := range files {
		if result := validateConfig(f); !result.Valid {
			t.Errorf("%s: %v", result.File, result.Errors)
		}
	}
}
