// Command analyze prints quick, human-readable heuristics about configuration
// files in the project's configs directory. For each board it counts, from
// every corner and the centre, how many cells the knight can finish on after
// the required moves and which destination collects the most paths.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/wricardo/knight-paths/game/config"
	"github.com/wricardo/knight-paths/game/engine"
)

// StartAnalysis summarizes the destinations reachable from one start cell
type StartAnalysis struct {
	Start       engine.Coordinate
	Reachable   int
	TotalPaths  int
	Busiest     engine.Coordinate
	BusiestHits int
	Colour      engine.TileColour
}

// ConfigAnalysis is the full report for a single configuration
type ConfigAnalysis struct {
	ConfigID string
	Config   *engine.BoardConfig
	Starts   []StartAnalysis
}

func main() {
	configDir := "configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}

	if err := run(context.Background(), configDir, os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, configDir string, w io.Writer) error {
	manager, err := config.NewManager(configDir)
	if err != nil {
		return err
	}

	infos, err := manager.ListConfigs()
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		return fmt.Errorf("no valid configs in %s", configDir)
	}

	reports := make([]*ConfigAnalysis, len(infos))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, info := range infos {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			cfg, err := manager.LoadConfig(info.ConfigID)
			if err != nil {
				return fmt.Errorf("%s: %w", info.Filename, err)
			}
			report, err := analyzeConfig(info.ConfigID, cfg)
			if err != nil {
				return fmt.Errorf("%s: %w", info.Filename, err)
			}
			reports[i] = report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, report := range reports {
		fmt.Fprintf(w, "\n=== Analyzing %s ===\n", report.ConfigID)
		printAnalysis(w, report)
	}
	return nil
}

// startCells returns the four corners and the centre, without duplicates
func startCells(size int) []engine.Coordinate {
	last := size - 1
	candidates := []engine.Coordinate{
		{X: 0, Y: 0},
		{X: last, Y: 0},
		{X: 0, Y: last},
		{X: last, Y: last},
		{X: size / 2, Y: size / 2},
	}

	seen := make(map[engine.Coordinate]bool, len(candidates))
	cells := make([]engine.Coordinate, 0, len(candidates))
	for _, c := range candidates {
		if !seen[c] {
			seen[c] = true
			cells = append(cells, c)
		}
	}
	return cells
}

func analyzeConfig(id string, cfg *engine.BoardConfig) (*ConfigAnalysis, error) {
	board, err := engine.NewBoard(cfg.BoardSize)
	if err != nil {
		return nil, err
	}

	report := &ConfigAnalysis{ConfigID: id, Config: cfg}
	for _, start := range startCells(cfg.BoardSize) {
		counts, err := engine.CountDestinations(board, start, cfg.RequiredMoves)
		if err != nil {
			return nil, err
		}
		report.Starts = append(report.Starts, summarize(start, counts, cfg.ColourRule))
	}
	return report, nil
}

func summarize(start engine.Coordinate, counts map[engine.Coordinate]int, rule engine.ColourRule) StartAnalysis {
	sa := StartAnalysis{Start: start, Reachable: len(counts)}

	// Sort for a stable busiest cell when counts tie
	cells := make([]engine.Coordinate, 0, len(counts))
	for c := range counts {
		cells = append(cells, c)
	}
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Y != cells[j].Y {
			return cells[i].Y < cells[j].Y
		}
		return cells[i].X < cells[j].X
	})

	for _, c := range cells {
		n := counts[c]
		sa.TotalPaths += n
		if n > sa.BusiestHits {
			sa.Busiest = c
			sa.BusiestHits = n
		}
	}
	if len(cells) > 0 {
		// Every knight move flips the tile colour
		sa.Colour = rule.TileColour(cells[0])
	}
	return sa
}

func printAnalysis(w io.Writer, report *ConfigAnalysis) {
	cfg := report.Config
	fmt.Fprintf(w, "Name: %s\n", cfg.Name)
	fmt.Fprintf(w, "Board: %d x %d\n", cfg.BoardSize, cfg.BoardSize)
	fmt.Fprintf(w, "Required Moves: %d\n", cfg.RequiredMoves)
	fmt.Fprintf(w, "Size Rules: %d..%d\n", cfg.BottomRule, cfg.UpperRule)

	for _, sa := range report.Starts {
		if sa.Reachable == 0 {
			fmt.Fprintf(w, "⚠️  From %s: no cell is reachable in %d moves\n", sa.Start, cfg.RequiredMoves)
			continue
		}
		fmt.Fprintf(w, "From %s: %d cells, %d paths, all on %s tiles; busiest %s with %d paths\n",
			sa.Start, sa.Reachable, sa.TotalPaths, sa.Colour, sa.Busiest, sa.BusiestHits)
	}
}
