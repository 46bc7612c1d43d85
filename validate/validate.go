// Command validate provides a small CLI that validates board configuration
// files (.json, .yaml, .yml) in the ../configs directory. It checks:
//   - decoding and the required fields enforced by the config loader
//   - size rules and board size against the supported range
//   - message templates carrying the placeholders the engine fills in
//   - reachability: the knight can end somewhere after the required moves
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wricardo/knight-paths/game/config"
	"github.com/wricardo/knight-paths/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	cfg, err := config.ParseFile(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to load config: %v", err))
		return result
	}

	result.Errors = append(result.Errors, validateMessages(cfg)...)
	if len(result.Errors) > 0 {
		result.Valid = false
		return result
	}

	reach, ok := validateReachability(cfg)
	if !ok {
		result.Valid = false
		result.Errors = append(result.Errors, reach)
		return result
	}

	result.Errors = append(result.Errors,
		fmt.Sprintf("✓ Name: %s", cfg.Name),
		fmt.Sprintf("✓ Board: %dx%d, %d moves required", cfg.BoardSize, cfg.BoardSize, cfg.RequiredMoves),
		fmt.Sprintf("✓ Size rules: %d..%d", cfg.BottomRule, cfg.UpperRule),
		fmt.Sprintf("✓ Colour rule: %s", cfg.ColourRule),
		reach,
	)
	return result
}

// validateMessages checks optional templates that the engine formats with
// arguments. The loader already enforces the required ones.
func validateMessages(cfg *engine.BoardConfig) []string {
	var errs []string
	if m := cfg.Messages.EndSelected; m != "" && strings.Count(m, "%d") != 1 {
		errs = append(errs, "messages.end_selected must contain exactly one %d for the move count")
	}
	if m := cfg.Messages.Resized; m != "" && strings.Count(m, "%d") != 2 {
		errs = append(errs, "messages.resized must contain two %d placeholders for the board size")
	}
	if strings.Count(cfg.Messages.Matched, "%d") != 1 {
		errs = append(errs, "messages.matched must contain exactly one %d for the path count")
	}
	return errs
}

// validateReachability counts the cells a knight starting in the corner can
// finish on after the required number of moves. A board where no cell is
// reachable can never produce a match from that corner.
func validateReachability(cfg *engine.BoardConfig) (string, bool) {
	board, err := engine.NewBoard(cfg.BoardSize)
	if err != nil {
		return fmt.Sprintf("Invalid board: %v", err), false
	}

	counts, err := engine.CountDestinations(board, engine.Coordinate{}, cfg.RequiredMoves)
	if err != nil {
		return fmt.Sprintf("Reachability check failed: %v", err), false
	}
	if len(counts) == 0 {
		return fmt.Sprintf("No cell is reachable from (0,0) in %d moves on a %dx%d board",
			cfg.RequiredMoves, cfg.BoardSize, cfg.BoardSize), false
	}

	paths := 0
	for _, n := range counts {
		paths += n
	}
	return fmt.Sprintf("✓ Reachability: %d cells, %d paths from (0,0) in %d moves",
		len(counts), paths, cfg.RequiredMoves), true
}

// configFiles lists every file in dir with a supported config extension
func configFiles(dir string) ([]string, error) {
	var files []string
	for _, ext := range config.Extensions {
		matches, err := filepath.Glob(filepath.Join(dir, "*"+ext))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	sort.Strings(files)
	return files, nil
}

func main() {
	configDir := "../configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}

	files, err := configFiles(configDir)
	if err != nil {
		fmt.Printf("Error finding config files: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Printf("No config files found in %s\n", configDir)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateConfig(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All configurations are valid!")
	} else {
		fmt.Println("❌ Some configurations have errors")
		os.Exit(1)
	}
}
