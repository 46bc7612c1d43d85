package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/wricardo/knight-paths/game/engine"
	"github.com/wricardo/knight-paths/game/service"
)

func toolRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil {
		t.Fatal("Expected result, got nil")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatal("Expected text content in result")
	}
	return text.Text
}

func matchedState() *engine.BoardState {
	start := engine.Coordinate{X: 0, Y: 0}
	mid := engine.Coordinate{X: 1, Y: 2}
	end := engine.Coordinate{X: 2, Y: 4}
	return &engine.BoardState{
		BoardSize:     6,
		RequiredMoves: 2,
		ColourRule:    engine.LightFirst,
		Start:         &start,
		End:           &end,
		Phase:         engine.PhaseMatched,
		Generation:    1,
		Paths:         []engine.Path{{start, mid, end}},
		Message:       "Found 1 paths to the destination!",
	}
}

func TestNewClient(t *testing.T) {
	client := NewClient("http://localhost:8080/")

	if client == nil {
		t.Fatal("Expected client to be created")
	}
	if client.baseURL != "http://localhost:8080" {
		t.Errorf("Expected trailing slash trimmed, got %s", client.baseURL)
	}
	if client.httpClient == nil {
		t.Error("Expected HTTP client to be initialized")
	}
	if client.GetMCPServer() == nil {
		t.Error("Expected MCP server to be initialized")
	}
}

func TestClient_apiCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"id": "ab12"})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	var response map[string]interface{}
	if err := client.apiCall(context.Background(), "GET", "/api/sessions/ab12", nil, &response); err != nil {
		t.Fatalf("apiCall failed: %v", err)
	}
	if response["id"] != "ab12" {
		t.Errorf("Expected id ab12, got %v", response["id"])
	}
}

func TestClient_apiCall_Error(t *testing.T) {
	client := NewClient("http://invalid-url-that-does-not-exist:9999")

	if err := client.apiCall(context.Background(), "GET", "/api", nil, nil); err == nil {
		t.Error("Expected error for invalid URL")
	}
}

func TestClient_apiCall_HTTPError(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected string
	}{
		{"Plain text body", "Internal Server Error", "API error: 500"},
		{"JSON error body", `{"error": "session not found", "code": 404}`, "session not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				status := http.StatusInternalServerError
				if strings.HasPrefix(tt.body, "{") {
					status = http.StatusNotFound
				}
				w.WriteHeader(status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			err := NewClient(server.URL).apiCall(context.Background(), "GET", "/api", nil, nil)
			if err == nil || err.Error() != tt.expected {
				t.Errorf("Expected error %q, got %v", tt.expected, err)
			}
		})
	}
}

func TestClient_createSession(t *testing.T) {
	var gotBody map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/api/sessions" {
			t.Errorf("Expected POST /api/sessions, got %s %s", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&gotBody)

		resp := service.SessionInfo{
			ID:         "ab12",
			ConfigName: "compact",
			CreatedAt:  time.Now(),
			BoardState: &engine.BoardState{BoardSize: 6, RequiredMoves: 2, ColourRule: engine.DarkFirst, Phase: engine.PhaseAwaitingStart},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleCreateSession(context.Background(), toolRequest("create_session", map[string]interface{}{"config_id": "compact"}))
	if err != nil {
		t.Fatalf("createSession failed: %v", err)
	}

	text := resultText(t, result)
	if !strings.Contains(text, "ab12") || !strings.Contains(text, "Phase: awaiting_start") {
		t.Errorf("Unexpected result: %s", text)
	}
	if gotBody["config_id"] != "compact" {
		t.Errorf("Expected config_id to be forwarded, got %v", gotBody)
	}
}

func TestClient_selectCell(t *testing.T) {
	var gotPath string
	var gotBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(service.SelectResult{
			Outcome:    engine.SelectEnd,
			Searching:  true,
			Generation: 1,
			BoardState: matchedState(),
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleSelectCell(context.Background(), toolRequest("select_cell", map[string]interface{}{
		"session_id": "ab12",
		"x":          float64(2),
		"y":          float64(4),
	}))
	if err != nil {
		t.Fatalf("selectCell failed: %v", err)
	}

	if gotPath != "/api/sessions/ab12/select" {
		t.Errorf("Unexpected path %s", gotPath)
	}
	if gotBody["x"] != float64(2) || gotBody["y"] != float64(4) || gotBody["wait"] != true {
		t.Errorf("Unexpected body %v", gotBody)
	}

	text := resultText(t, result)
	for _, want := range []string{"End selected", "Phase: matched", "Paths (1):", "[(0,0) -> (1,2) -> (2,4)]"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in result, got: %s", want, text)
		}
	}
}

func TestClient_selectCell_InvalidArguments(t *testing.T) {
	client := NewClient("http://localhost:0")

	result, err := client.handleSelectCell(context.Background(), toolRequest("select_cell", map[string]interface{}{
		"session_id": "ab12",
		"x":          "two",
	}))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !result.IsError {
		t.Error("Expected a tool error for non-integer coordinates")
	}
}

func TestClient_searchPaths(t *testing.T) {
	var got service.SearchQuery
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		paths := []engine.Path{
			{{X: 0, Y: 0}, {X: 2, Y: 1}, {X: 0, Y: 0}},
			{{X: 0, Y: 0}, {X: 1, Y: 2}, {X: 0, Y: 0}},
		}
		json.NewEncoder(w).Encode(service.SearchResponse{
			RequestID: "req-1",
			Request: engine.SearchRequest{
				Board: engine.Board{Size: got.BoardSize}, Start: got.Start, End: got.End, RequiredMoves: got.RequiredMoves,
			},
			Outcome:   engine.OutcomeMatched,
			PathCount: len(paths),
			Paths:     paths,
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleSearchPaths(context.Background(), toolRequest("search_paths", map[string]interface{}{
		"board_size":     float64(8),
		"start_x":        float64(0),
		"start_y":        float64(0),
		"end_x":          float64(0),
		"end_y":          float64(0),
		"required_moves": float64(2),
		"max_paths":      float64(1),
	}))
	if err != nil {
		t.Fatalf("searchPaths failed: %v", err)
	}

	if got.BoardSize != 8 || got.RequiredMoves != 2 || !got.Render {
		t.Errorf("Unexpected query %+v", got)
	}

	text := resultText(t, result)
	if !strings.Contains(text, "Outcome: matched  Paths: 2") {
		t.Errorf("Expected outcome line, got: %s", text)
	}
	if !strings.Contains(text, "... and 1 more") {
		t.Errorf("Expected path list to be truncated, got: %s", text)
	}
}

func TestClient_searchHistory(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		json.NewEncoder(w).Encode(service.HistoryResponse{
			Searches: []engine.SearchHistoryEntry{
				{SearchNumber: 2, BoardSize: 8, Start: engine.Coordinate{X: 0, Y: 0}, End: engine.Coordinate{X: 7, Y: 7},
					RequiredMoves: 2, Outcome: engine.OutcomeNotFound},
				{SearchNumber: 1, BoardSize: 8, Start: engine.Coordinate{X: 0, Y: 0}, End: engine.Coordinate{X: 2, Y: 1},
					RequiredMoves: 1, Outcome: engine.OutcomeMatched, PathCount: 1},
			},
			TotalSearches: 2,
			Page:          1,
			PageSize:      5,
			TotalPages:    1,
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleSearchHistory(context.Background(), toolRequest("search_history", map[string]interface{}{
		"session_id": "ab12",
		"limit":      float64(5),
	}))
	if err != nil {
		t.Fatalf("searchHistory failed: %v", err)
	}

	if gotQuery != "limit=5" {
		t.Errorf("Expected limit=5 query, got %q", gotQuery)
	}

	text := resultText(t, result)
	if !strings.Contains(text, "Total: 2") {
		t.Errorf("Expected total in result, got: %s", text)
	}
	if !strings.Contains(text, "2. ✗ (0,0) -> (7,7)") || !strings.Contains(text, "1. ✓ (0,0) -> (2,1)") {
		t.Errorf("Unexpected history lines: %s", text)
	}
}

func TestFormatBoardState(t *testing.T) {
	text := formatBoardState(matchedState())

	for _, want := range []string{
		"Board: 6x6  Moves required: 2  Phase: matched",
		"Start: (0,0)",
		"End: (2,4)",
		"S : . : . :",
		". : E : . :",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in board, got:\n%s", want, text)
		}
	}

	if formatBoardState(nil) != "Board: unavailable" {
		t.Error("Expected placeholder for nil state")
	}
}

func TestFormatSelectResult_Ignored(t *testing.T) {
	text := formatSelectResult(&service.SelectResult{Outcome: engine.SelectIgnored, BoardState: matchedState()})
	if !strings.Contains(text, "✗ Selection ignored") {
		t.Errorf("Expected ignored marker, got: %s", text)
	}
}

func TestClient_handlePathInstructions(t *testing.T) {
	client := NewClient("http://localhost:8080")

	result, err := client.handlePathInstructions(context.Background(), toolRequest("path_instructions", map[string]interface{}{}))
	if err != nil {
		t.Fatalf("handlePathInstructions failed: %v", err)
	}

	text := resultText(t, result)
	for _, content := range []string{
		"Knight Paths - Instructions",
		"OBJECTIVE:",
		"COORDINATES:",
		"WORKFLOW:",
		"BOARD LEGEND:",
		"PHASES:",
	} {
		if !strings.Contains(text, content) {
			t.Errorf("Expected '%s' in instructions", content)
		}
	}
}
