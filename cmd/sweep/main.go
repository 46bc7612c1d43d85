// Command sweep drives a running server through the select/search cycle for
// every destination on a session's board and checks each reported path count
// against a local destination count.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/knight-paths/game/engine"
	"github.com/wricardo/knight-paths/game/service"
)

type Client struct {
	baseURL   string
	sessionID string
	client    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// do sends a JSON request and decodes a successful response into out
func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s failed: %s - %s", method, path, resp.Status, strings.TrimSpace(string(data)))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s response: %w", path, err)
	}
	return nil
}

func (c *Client) CreateSession(ctx context.Context, configID string) (*service.SessionInfo, error) {
	var req map[string]string
	if configID != "" {
		req = map[string]string{"config_id": configID}
	}

	var info service.SessionInfo
	if err := c.do(ctx, http.MethodPost, "/api/sessions", req, &info); err != nil {
		return nil, err
	}
	c.sessionID = info.ID
	return &info, nil
}

func (c *Client) GetSession(ctx context.Context) (*service.SessionInfo, error) {
	var info service.SessionInfo
	if err := c.do(ctx, http.MethodGet, "/api/sessions/"+c.sessionID, nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) Select(ctx context.Context, cell engine.Coordinate, wait bool) (*service.SelectResult, error) {
	req := map[string]interface{}{"x": cell.X, "y": cell.Y, "wait": wait}
	var result service.SelectResult
	if err := c.do(ctx, http.MethodPost, "/api/sessions/"+c.sessionID+"/select", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

type ClearResponse struct {
	Message string             `json:"message"`
	State   *engine.BoardState `json:"state"`
}

func (c *Client) Clear(ctx context.Context) (*engine.BoardState, error) {
	var resp ClearResponse
	if err := c.do(ctx, http.MethodPost, "/api/sessions/"+c.sessionID+"/clear", nil, &resp); err != nil {
		return nil, err
	}
	return resp.State, nil
}

// Mismatch is a destination where the server disagreed with the local count
type Mismatch struct {
	End      engine.Coordinate
	Expected int
	Got      int
	Phase    engine.Phase
}

// Report summarizes one sweep
type Report struct {
	SessionID  string
	BoardSize  int
	Moves      int
	Checked    int
	Matched    int
	TotalPaths int
	Mismatches []Mismatch
}

// Sweep selects start and then every cell as the end, clearing in between
func Sweep(ctx context.Context, c *Client, start engine.Coordinate, verbose bool) (*Report, error) {
	info, err := c.GetSession(ctx)
	if err != nil {
		return nil, err
	}
	state := info.BoardState
	if state == nil {
		return nil, fmt.Errorf("session %s has no board state", c.sessionID)
	}

	board, err := engine.NewBoard(state.BoardSize)
	if err != nil {
		return nil, err
	}
	expected, err := engine.CountDestinations(board, start, state.RequiredMoves)
	if err != nil {
		return nil, err
	}

	report := &Report{SessionID: c.sessionID, BoardSize: state.BoardSize, Moves: state.RequiredMoves}
	if _, err := c.Clear(ctx); err != nil {
		return nil, err
	}

	for y := 0; y < board.Size; y++ {
		for x := 0; x < board.Size; x++ {
			end := engine.Coordinate{X: x, Y: y}
			if _, err := c.Select(ctx, start, false); err != nil {
				return nil, err
			}
			result, err := c.Select(ctx, end, true)
			if err != nil {
				return nil, err
			}

			got := len(result.BoardState.Paths)
			report.Checked++
			report.TotalPaths += got
			if result.BoardState.Phase == engine.PhaseMatched {
				report.Matched++
			}
			if want := expected[end]; got != want || !settled(result.BoardState.Phase, want) {
				report.Mismatches = append(report.Mismatches, Mismatch{End: end, Expected: want, Got: got, Phase: result.BoardState.Phase})
			}
			if verbose {
				log.Printf("%s -> %s: %s, %d paths", start, end, result.BoardState.Phase, got)
			}

			if _, err := c.Clear(ctx); err != nil {
				return nil, err
			}
		}
	}
	return report, nil
}

// settled checks that the phase agrees with the expected count
func settled(phase engine.Phase, expected int) bool {
	if expected > 0 {
		return phase == engine.PhaseMatched
	}
	return phase == engine.PhaseNotFound
}

func parseCell(s string) (engine.Coordinate, error) {
	var c engine.Coordinate
	if _, err := fmt.Sscanf(s, "%d,%d", &c.X, &c.Y); err != nil {
		return c, fmt.Errorf("invalid cell %q, expected x,y", s)
	}
	return c, nil
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "sweep",
		Usage: "Check every destination of a session board against a running server",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "http://localhost:8080", Usage: "Server URL"},
			&cli.StringFlag{Name: "config", Usage: "Config ID for a new session"},
			&cli.StringFlag{Name: "session", Usage: "Sweep an existing session by ID"},
			&cli.StringFlag{Name: "from", Value: "0,0", Usage: "Start cell as x,y"},
			&cli.BoolFlag{Name: "v", Usage: "Verbose output"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			start, err := parseCell(cmd.String("from"))
			if err != nil {
				return err
			}

			client := NewClient(cmd.String("url"))
			if id := cmd.String("session"); id != "" {
				client.sessionID = id
				log.Printf("Resuming session: %s", id)
			} else {
				info, err := client.CreateSession(ctx, cmd.String("config"))
				if err != nil {
					return err
				}
				log.Printf("Session created: %s (%s)", info.ID, info.ConfigName)
			}

			report, err := Sweep(ctx, client, start, cmd.Bool("v"))
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.Root().Writer, "Session %s: %dx%d, %d moves from %s\n",
				report.SessionID, report.BoardSize, report.BoardSize, report.Moves, start)
			fmt.Fprintf(cmd.Root().Writer, "Checked %d destinations, %d matched, %d paths\n",
				report.Checked, report.Matched, report.TotalPaths)
			for _, m := range report.Mismatches {
				fmt.Fprintf(cmd.Root().Writer, "❌ %s: expected %d paths, got %d (%s)\n", m.End, m.Expected, m.Got, m.Phase)
			}
			if len(report.Mismatches) > 0 {
				return fmt.Errorf("%d mismatches", len(report.Mismatches))
			}
			return nil
		},
	}
}

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
