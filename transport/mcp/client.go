package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/knight-paths/game/engine"
	"github.com/wricardo/knight-paths/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Knight Paths",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Knight Paths - MCP Interface

This is a thin client that proxies all requests to the REST API server.

OBJECTIVE:
Find every way a chess knight can travel from a start square to an end square
in exactly the required number of moves.

AVAILABLE TOOLS:
- create_session: Create a board session from a configuration
- list_sessions: List all active sessions
- get_session: Get session details
- board_state: Show the board, the selection and any paths found
- select_cell: Pick the start square, then the end square (starts the search)
- clear_board: Clear the selection to start over
- resize_board: Change the board size within the configured range
- search_paths: One-shot search without a session
- search_history: View past searches of a session
- list_configs: List available board configurations
- path_instructions: Rules, coordinates and board legend`),
	)

	c.registerTools()
}

func sessionIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new board session with optional config selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "ID of the config to use, see list_configs (optional)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active board sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Board operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "board_state",
		Description: "Get the current board with selection, phase and found paths",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleBoardState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "select_cell",
		Description: "Select a square. The first selection sets the start, the second sets the end and runs the search. Further selections are ignored until clear_board.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"x": map[string]interface{}{
					"type":        "integer",
					"description": "Column, 0-based from the left",
				},
				"y": map[string]interface{}{
					"type":        "integer",
					"description": "Row, 0-based from the top",
				},
				"wait": map[string]interface{}{
					"type":        "boolean",
					"description": "Wait for the search to finish (default true)",
				},
			},
			Required: []string{"session_id", "x", "y"},
		},
	}, c.handleSelectCell)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "clear_board",
		Description: "Clear the selection and results. A running search is discarded.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleClearBoard)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "resize_board",
		Description: "Change the board side length. Must lie within the config's bottom and upper rule.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"size": map[string]interface{}{
					"type":        "integer",
					"description": "New side length",
				},
			},
			Required: []string{"session_id", "size"},
		},
	}, c.handleResizeBoard)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "search_paths",
		Description: "Enumerate knight paths on an empty board without creating a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"board_size":     map[string]interface{}{"type": "integer", "description": "Side length of the board"},
				"start_x":        map[string]interface{}{"type": "integer", "description": "Start column"},
				"start_y":        map[string]interface{}{"type": "integer", "description": "Start row"},
				"end_x":          map[string]interface{}{"type": "integer", "description": "End column"},
				"end_y":          map[string]interface{}{"type": "integer", "description": "End row"},
				"required_moves": map[string]interface{}{"type": "integer", "description": "Exact number of knight moves"},
				"max_paths": map[string]interface{}{
					"type":        "integer",
					"description": "How many paths to list in the answer (default 10)",
				},
			},
			Required: []string{"board_size", "start_x", "start_y", "end_x", "end_y", "required_moves"},
		},
	}, c.handleSearchPaths)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "search_history",
		Description: "Get the search history for a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Items per page",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleSearchHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available board configurations",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "path_instructions",
		Description: "Get the rules, coordinate system and board legend",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handlePathInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]interface{}
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"].(string); ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		args = map[string]interface{}{}
	}
	return args
}

// intArg reads an integer argument; JSON numbers arrive as float64
func intArg(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case json.Number:
		n, err := v.Int64()
		return int(n), err == nil
	}
	return 0, false
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	configID, _ := args["config_id"].(string)

	body := map[string]string{}
	if configID != "" {
		body["config_id"] = configID
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\n", session.ID, session.ConfigName)
	if session.BoardState != nil {
		result += "\n" + formatBoardState(session.BoardState)
	}
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		phase := "unknown"
		if s.BoardState != nil {
			phase = string(s.BoardState.Phase)
		}
		result += fmt.Sprintf("- %s (Config: %s, Phase: %s, Created: %s)\n",
			s.ID, s.ConfigName, phase, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleBoardState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var response struct {
		BoardState *engine.BoardState `json:"board_state"`
	}
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBoardState(response.BoardState)), nil
}

func (c *Client) handleSelectCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	x, okX := intArg(args, "x")
	y, okY := intArg(args, "y")
	if !okX || !okY {
		return mcp.NewToolResultError("x and y must be integers"), nil
	}
	wait := true
	if w, ok := args["wait"].(bool); ok {
		wait = w
	}

	body := map[string]interface{}{"x": x, "y": y, "wait": wait}

	var result service.SelectResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/select"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSelectResult(&result)), nil
}

func (c *Client) handleClearBoard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var response struct {
		Message string             `json:"message"`
		State   *engine.BoardState `json:"state"`
	}
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/clear"), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBoardState(response.State)), nil
}

func (c *Client) handleResizeBoard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	size, ok := intArg(args, "size")
	if !ok {
		return mcp.NewToolResultError("size must be an integer"), nil
	}

	var response struct {
		Message string             `json:"message"`
		State   *engine.BoardState `json:"state"`
	}
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/resize"), map[string]int{"size": size}, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBoardState(response.State)), nil
}

func (c *Client) handleSearchPaths(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	var query service.SearchQuery
	fields := []struct {
		key string
		dst *int
	}{
		{"board_size", &query.BoardSize},
		{"start_x", &query.Start.X},
		{"start_y", &query.Start.Y},
		{"end_x", &query.End.X},
		{"end_y", &query.End.Y},
		{"required_moves", &query.RequiredMoves},
	}
	for _, f := range fields {
		v, ok := intArg(args, f.key)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("%s must be an integer", f.key)), nil
		}
		*f.dst = v
	}
	query.Render = true

	maxPaths := 10
	if n, ok := intArg(args, "max_paths"); ok && n >= 0 {
		maxPaths = n
	}

	var resp service.SearchResponse
	if err := c.apiCall(ctx, "POST", "/api/search", query, &resp); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSearchResponse(&resp, maxPaths)), nil
}

func (c *Client) handleSearchHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)

	params := url.Values{}
	if page, ok := intArg(args, "page"); ok {
		params.Set("page", fmt.Sprint(page))
	}
	if limit, ok := intArg(args, "limit"); ok {
		params.Set("limit", fmt.Sprint(limit))
	}

	path := sessionPath(sessionID, "/history")
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := "Available Configurations:\n\n"
	for _, cfg := range configs {
		result += fmt.Sprintf("• %s (config_id: %s)\n  %s\n  Board: %dx%d, Moves: %d, Size range: %d-%d\n\n",
			cfg.Name, cfg.ConfigID, cfg.Description, cfg.BoardSize, cfg.BoardSize,
			cfg.RequiredMoves, cfg.BottomRule, cfg.UpperRule)
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handlePathInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `Knight Paths - Instructions

OBJECTIVE:
List every sequence of knight moves that goes from the start square to the end
square in exactly the required number of moves. Squares may be revisited and a
path may pass through the end square before its final move.

COORDINATES:
• x is the column, counted from 0 on the left
• y is the row, counted from 0 at the top
• A knight moves two squares one way and one square the other: (±1,±2) or (±2,±1)

WORKFLOW:
1. create_session (optionally with a config_id from list_configs)
2. select_cell once for the start square
3. select_cell again for the end square; the search runs immediately
4. Read the paths from the answer or from board_state
5. clear_board before choosing new squares; resize_board to change the size

BOARD LEGEND:
• .  light square
• :  dark square
• S  start square
• E  end square
• 1-9  intermediate squares of the first path, by move number

PHASES:
• awaiting_start  pick the start square
• awaiting_end    pick the end square
• searching       the search is running
• matched         at least one path was found
• not_found       no path has exactly the required number of moves
• failed          the search could not run

TIPS:
• A knight always changes square colour, so an even number of moves can only
  end on the start colour and an odd number only on the other colour
• search_paths answers one-off questions without touching any session
• Results from a search that was cleared or superseded are discarded`

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	result := fmt.Sprintf("Session: %s\nConfig: %s\nCreated: %s\nLast accessed: %s\n",
		session.ID, session.ConfigName,
		session.CreatedAt.Format(time.RFC3339), session.LastAccessedAt.Format(time.RFC3339))
	if session.BoardConfig != nil {
		result += fmt.Sprintf("Size range: %d-%d\n", session.BoardConfig.BottomRule, session.BoardConfig.UpperRule)
	}
	if session.BoardState != nil {
		result += "\n" + formatBoardState(session.BoardState)
	}
	return result
}

func formatBoardState(state *engine.BoardState) string {
	if state == nil {
		return "Board: unavailable"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Board: %dx%d  Moves required: %d  Phase: %s  Generation: %d\n",
		state.BoardSize, state.BoardSize, state.RequiredMoves, state.Phase, state.Generation)
	if state.Start != nil {
		fmt.Fprintf(&b, "Start: %s\n", state.Start)
	}
	if state.End != nil {
		fmt.Fprintf(&b, "End: %s\n", state.End)
	}
	if state.Message != "" {
		fmt.Fprintf(&b, "Message: %s\n", state.Message)
	}

	var first engine.Path
	if len(state.Paths) > 0 {
		first = state.Paths[0]
	}
	b.WriteString("\n")
	for _, row := range engine.RenderBoard(state.BoardSize, state.ColourRule, state.Start, state.End, first) {
		b.WriteString(row)
		b.WriteString("\n")
	}

	if len(state.Paths) > 0 {
		fmt.Fprintf(&b, "\nPaths (%d):\n", len(state.Paths))
		b.WriteString(formatPaths(state.Paths, 10))
	}
	return b.String()
}

func formatSelectResult(result *service.SelectResult) string {
	var b strings.Builder
	switch result.Outcome {
	case engine.SelectStart:
		b.WriteString("✓ Start selected\n")
	case engine.SelectEnd:
		b.WriteString("✓ End selected, search dispatched\n")
	default:
		b.WriteString("✗ Selection ignored, clear the board first\n")
	}
	b.WriteString(formatBoardState(result.BoardState))
	return b.String()
}

func formatSearchResponse(resp *service.SearchResponse, maxPaths int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Search %s: %s -> %s in %d moves on %dx%d\n",
		resp.RequestID, resp.Request.Start, resp.Request.End, resp.Request.RequiredMoves,
		resp.Request.Board.Size, resp.Request.Board.Size)
	fmt.Fprintf(&b, "Outcome: %s  Paths: %d  Explored: %d\n", resp.Outcome, resp.PathCount, resp.Explored)

	if len(resp.Board) > 0 {
		b.WriteString("\n")
		for _, row := range resp.Board {
			b.WriteString(row)
			b.WriteString("\n")
		}
	}
	if len(resp.Paths) > 0 {
		b.WriteString("\n")
		b.WriteString(formatPaths(resp.Paths, maxPaths))
	}
	return b.String()
}

func formatPaths(paths []engine.Path, limit int) string {
	var b strings.Builder
	for i, p := range paths {
		if i >= limit {
			fmt.Fprintf(&b, "... and %d more\n", len(paths)-limit)
			break
		}
		fmt.Fprintf(&b, "%d. %s\n", i+1, p)
	}
	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	result := fmt.Sprintf("Search History (Page %d/%d), Total: %d\n\n",
		history.Page, history.TotalPages, history.TotalSearches)

	for _, entry := range history.Searches {
		status := "✓"
		if entry.Outcome != engine.OutcomeMatched {
			status = "✗"
		}
		result += fmt.Sprintf("%d. %s %s -> %s in %d moves on %dx%d: %d paths [%s]\n",
			entry.SearchNumber, status, entry.Start, entry.End, entry.RequiredMoves,
			entry.BoardSize, entry.BoardSize, entry.PathCount, entry.Timestamp.Format("15:04:05"))
	}
	if len(history.Searches) == 0 {
		result += "(no searches yet)\n"
	}

	return result
}
