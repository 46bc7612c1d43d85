// Command knight-paths starts the knight path server.
//
// It supports three commands:
//  1. "server" (default) runs the HTTP server exposing the REST API, WebSocket updates and an /mcp endpoint
//  2. "stdio-mcp" runs an MCP stdio server and spins up an internal HTTP API if none is available
//  3. "search" runs a single search in the terminal and prints the paths
//
// Flags control host/port, the config directory, session storage (files or
// SQLite), the search worker pool, debug logging and optional ngrok tunneling
// for external access during development. Every flag can also be set from the
// environment or a .env file.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/knight-paths/api"
	"github.com/wricardo/knight-paths/game/config"
	"github.com/wricardo/knight-paths/game/engine"
	"github.com/wricardo/knight-paths/game/service"
	"github.com/wricardo/knight-paths/game/session"
	"github.com/wricardo/knight-paths/transport/mcp"
	"github.com/wricardo/knight-paths/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Knight Paths Server"
)

// Session storage backends
const (
	StorageFile   = "file"
	StorageSQLite = "sqlite"
)

// main loads .env, then runs the command line application.
func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	} else {
		log.Println("Loaded environment variables from .env file")
	}

	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

// newApp builds the command tree. Flags on the root are inherited by every
// subcommand.
func newApp() *cli.Command {
	return &cli.Command{
		Name:    "knight-paths",
		Usage:   "enumerate knight move paths over HTTP, WebSocket and MCP",
		Version: Version,
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "port", Value: 8080, Usage: "HTTP server port", Sources: cli.EnvVars("PORT")},
			&cli.StringFlag{Name: "host", Value: "localhost", Usage: "HTTP server host", Sources: cli.EnvVars("HOST")},
			&cli.StringFlag{Name: "config-dir", Value: "configs", Usage: "Directory containing board configurations", Sources: cli.EnvVars("CONFIG_DIR")},
			&cli.StringFlag{Name: "storage", Value: StorageFile, Usage: "Session storage backend: file or sqlite", Sources: cli.EnvVars("STORAGE")},
			&cli.StringFlag{Name: "sessions-dir", Value: "sessions", Usage: "Directory for file session storage", Sources: cli.EnvVars("SESSIONS_DIR")},
			&cli.StringFlag{Name: "sqlite-path", Value: "sessions.db", Usage: "Database file for sqlite session storage", Sources: cli.EnvVars("SQLITE_PATH")},
			&cli.IntFlag{Name: "workers", Value: service.DefaultWorkerLimit, Usage: "Maximum concurrent searches", Sources: cli.EnvVars("SEARCH_WORKERS")},
			&cli.DurationFlag{Name: "session-ttl", Value: 24 * time.Hour, Usage: "Drop sessions idle for longer than this", Sources: cli.EnvVars("SESSION_TTL")},
			&cli.BoolFlag{Name: "debug", Usage: "Enable debug logging", Sources: cli.EnvVars("DEBUG")},
			&cli.BoolFlag{Name: "ngrok", Usage: "Enable ngrok tunnel", Sources: cli.EnvVars("NGROK_ENABLED")},
			&cli.StringFlag{Name: "ngrok-auth", Usage: "Ngrok auth token", Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN")},
			&cli.StringFlag{Name: "ngrok-domain", Usage: "Custom ngrok domain (optional)", Sources: cli.EnvVars("NGROK_DOMAIN")},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.Bool("debug") {
				log.SetFlags(log.LstdFlags | log.Lshortfile)
			} else {
				log.SetFlags(log.LstdFlags)
			}
			return ctx, nil
		},
		Action: runHTTPServer,
		Commands: []*cli.Command{
			{
				Name:    "server",
				Aliases: []string{"http"},
				Usage:   "Run HTTP server with API, WebSocket, and MCP endpoint (default)",
				Action:  runHTTPServer,
			},
			{
				Name:    "stdio-mcp",
				Aliases: []string{"mcp-stdio", "mcp"},
				Usage:   "Run MCP stdio server with internal HTTP server",
				Action:  runStdioMCPWithInternalServer,
			},
			{
				Name:  "search",
				Usage: "Run one search and print the paths",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "size", Value: engine.DefaultBoardSize, Usage: "Board side length"},
					&cli.StringFlag{Name: "from", Value: "0,0", Usage: "Start square as x,y"},
					&cli.StringFlag{Name: "to", Required: true, Usage: "End square as x,y"},
					&cli.IntFlag{Name: "moves", Value: engine.DefaultRequiredMoves, Usage: "Exact number of knight moves"},
					&cli.StringFlag{Name: "colour", Value: string(engine.LightFirst), Usage: "light_first or dark_first"},
					&cli.IntFlag{Name: "limit", Value: 20, Usage: "Paths to print, 0 for all"},
					&cli.BoolFlag{Name: "json", Usage: "Print the full result as JSON"},
				},
				Action: runSearch,
			},
		},
	}
}

// serviceOptions selects how initializeServices wires storage and the worker pool
type serviceOptions struct {
	ConfigDir   string
	Storage     string
	SessionsDir string
	SQLitePath  string
	Workers     int
	Notifier    service.Notifier
}

func serviceOptionsFrom(cmd *cli.Command) serviceOptions {
	return serviceOptions{
		ConfigDir:   cmd.String("config-dir"),
		Storage:     cmd.String("storage"),
		SessionsDir: cmd.String("sessions-dir"),
		SQLitePath:  cmd.String("sqlite-path"),
		Workers:     cmd.Int("workers"),
	}
}

// services bundles everything the transports need
type services struct {
	Paths       service.PathService
	Sessions    *session.Manager
	Persistence session.SessionPersistence
	closers     []io.Closer
}

// Close flushes sessions once running searches have settled, then releases storage
func (s *services) Close() error {
	if err := s.Paths.Wait(); err != nil {
		log.Printf("Warning: search worker error: %v", err)
	}
	if err := s.Sessions.SaveAllSessions(); err != nil {
		log.Printf("Warning: %v", err)
	}
	var errs []error
	for _, c := range s.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// initializeServices wires config and session managers and the path service.
func initializeServices(opts serviceOptions) (*services, error) {
	// Create config manager first (needed for persistence)
	configManager, err := config.NewManager(opts.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	svc := &services{}

	switch opts.Storage {
	case StorageFile, "":
		persistence, err := session.NewFilePersistence(opts.SessionsDir, configManager)
		if err != nil {
			return nil, fmt.Errorf("failed to create session persistence: %w", err)
		}
		svc.Persistence = persistence
	case StorageSQLite:
		persistence, err := session.NewSQLitePersistence(opts.SQLitePath, configManager)
		if err != nil {
			return nil, fmt.Errorf("failed to open session database: %w", err)
		}
		svc.Persistence = persistence
		svc.closers = append(svc.closers, persistence)
	default:
		return nil, fmt.Errorf("unknown storage %q, use %s or %s", opts.Storage, StorageFile, StorageSQLite)
	}

	svc.Sessions = session.NewManagerWithPersistence(svc.Persistence)

	// Load persisted sessions on startup
	if err := svc.Sessions.LoadPersistedSessions(); err != nil {
		log.Printf("Warning: Failed to load persisted sessions: %v", err)
	}

	serviceOpts := []service.Option{service.WithWorkerLimit(opts.Workers)}
	if opts.Notifier != nil {
		serviceOpts = append(serviceOpts, service.WithNotifier(opts.Notifier))
	}
	svc.Paths = service.NewPathService(svc.Sessions, configManager, serviceOpts...)

	return svc, nil
}

// runHTTPServer starts the HTTP server with REST API, WebSocket hub, and an /mcp proxy endpoint.
// If ngrok is enabled it also provisions a public tunnel.
func runHTTPServer(ctx context.Context, cmd *cli.Command) error {
	log.Printf("Starting %s v%s (mode: server)", AppName, Version)

	hub := websocket.NewHub()
	go hub.Run()
	defer hub.Stop()

	opts := serviceOptionsFrom(cmd)
	opts.Notifier = hub
	svc, err := initializeServices(opts)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer svc.Close()

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go sessionCleanupRoutine(ctx, svc.Sessions, cmd.Duration("session-ttl"))
	go storageSyncRoutine(ctx, svc.Sessions, svc.Persistence)

	apiServer := api.NewServer(svc.Paths, hub)

	addr := fmt.Sprintf("%s:%d", cmd.String("host"), cmd.Int("port"))
	mcpClient := mcp.NewClient(fmt.Sprintf("http://%s", addr))

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.Handle("/mcp", mcpHandler(mcpClient))

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup
	serverErr := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Printf("HTTP server listening on %s", addr)
		log.Printf("REST API: http://%s/api", addr)
		log.Printf("WebSocket: ws://%s/ws?session=<session_id>", addr)
		log.Printf("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	if cmd.Bool("ngrok") {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(ctx, cmd, mainRouter)
		}()
	}

	select {
	case <-ctx.Done():
		log.Println("Shutdown signal received. Shutting down...")
	case err := <-serverErr:
		cancel()
		wg.Wait()
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	wg.Wait()
	log.Println("Server stopped")
	return nil
}

// mcpHandler serves MCP JSON-RPC messages over plain HTTP POST
func mcpHandler(mcpClient *mcp.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	}
}

// runNgrokTunnel serves handler through an ngrok endpoint until ctx is done
func runNgrokTunnel(ctx context.Context, cmd *cli.Command, handler http.Handler) {
	authToken := cmd.String("ngrok-auth")
	if authToken == "" {
		log.Println("WARNING: Ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN env var)")
		return
	}

	log.Println("Starting ngrok tunnel...")

	var tunnel ngrokConfig.Tunnel
	if domain := cmd.String("ngrok-domain"); domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		log.Printf("Using custom ngrok domain: %s", domain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		log.Printf("Failed to start ngrok tunnel: %v", err)
		return
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.Printf("Failed to close ngrok tunnel: %v", err)
		}
	}()

	ngrokURL := tun.URL()
	log.Printf("Ngrok tunnel established: %s", ngrokURL)
	log.Printf("  REST API (ngrok): %s/api", ngrokURL)
	log.Printf("  WebSocket (ngrok): %s/ws?session=<session_id>", ngrokURL)
	log.Printf("  MCP endpoint (ngrok): %s/mcp", ngrokURL)

	if err := http.Serve(tun, handler); err != nil && err != http.ErrServerClosed && ctx.Err() == nil {
		log.Printf("Ngrok server error: %v", err)
	}
	log.Println("Ngrok tunnel closed")
}

// sessionCleanupRoutine periodically removes sessions that have not been accessed
// within the retention window.
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, ttl time.Duration) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(ttl); removed > 0 {
				log.Printf("Cleaned up %d expired sessions", removed)
			}
		}
	}
}

// storageSyncRoutine drops sessions from memory once their stored copy has
// been removed outside the server.
func storageSyncRoutine(ctx context.Context, manager *session.Manager, persistence session.SessionPersistence) {
	if persistence == nil {
		return
	}

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		pruned := 0
		for _, sess := range manager.List() {
			if !persistence.Exists(sess.ID) {
				if err := manager.DeleteFromMemory(sess.ID); err == nil {
					pruned++
					log.Printf("Pruned session %s from memory (storage entry deleted)", sess.ID)
				}
			}
		}

		if pruned > 0 {
			log.Printf("Storage sync: pruned %d orphaned sessions from memory", pruned)
		}
	}
}

// runStdioMCPWithInternalServer runs an MCP stdio server.
// It tries to reuse an external API at the configured host and port; if
// unavailable, it starts an internal HTTP API on a random loopback port.
func runStdioMCPWithInternalServer(ctx context.Context, cmd *cli.Command) error {
	log.Printf("Starting %s v%s (mode: stdio-mcp)", AppName, Version)

	externalURL := fmt.Sprintf("http://%s:%d", cmd.String("host"), cmd.Int("port"))
	log.Printf("Checking for external API server at %s...", externalURL)

	baseURL := externalURL
	testClient := &http.Client{Timeout: 2 * time.Second}
	resp, err := testClient.Get(externalURL + "/health")
	if err == nil && resp.StatusCode < 500 {
		resp.Body.Close()
		log.Printf("External API server found at %s, using it for MCP", externalURL)
	} else {
		log.Printf("No external API server found, starting internal HTTP server")

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}
		internalAddr := listener.Addr().String()

		hub := websocket.NewHub()
		go hub.Run()
		defer hub.Stop()

		opts := serviceOptionsFrom(cmd)
		opts.Notifier = hub
		svc, err := initializeServices(opts)
		if err != nil {
			listener.Close()
			return fmt.Errorf("failed to initialize services: %w", err)
		}
		defer svc.Close()

		httpServer := &http.Server{Handler: api.NewServer(svc.Paths, hub)}
		go func() {
			if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
				log.Printf("Internal HTTP server error: %v", err)
			}
		}()
		defer httpServer.Close()

		log.Printf("Internal HTTP server on %s for MCP stdio", internalAddr)
		baseURL = "http://" + internalAddr
	}

	mcpClient := mcp.NewClient(baseURL)
	log.Printf("MCP stdio server ready (API at %s)", baseURL)

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}

// runSearch enumerates paths for one request and prints them
func runSearch(ctx context.Context, cmd *cli.Command) error {
	start, err := parseCoordinate(cmd.String("from"))
	if err != nil {
		return fmt.Errorf("--from: %w", err)
	}
	end, err := parseCoordinate(cmd.String("to"))
	if err != nil {
		return fmt.Errorf("--to: %w", err)
	}

	rule := engine.ColourRule(cmd.String("colour"))
	if rule != engine.LightFirst && rule != engine.DarkFirst {
		return fmt.Errorf("--colour must be %s or %s", engine.LightFirst, engine.DarkFirst)
	}

	req := engine.SearchRequest{
		Board:         engine.Board{Size: cmd.Int("size")},
		Start:         start,
		End:           end,
		RequiredMoves: cmd.Int("moves"),
	}

	started := time.Now()
	result, err := engine.Search(req)
	if err != nil {
		return err
	}
	took := time.Since(started)

	out := cmd.Root().Writer
	if out == nil {
		out = os.Stdout
	}

	if cmd.Bool("json") {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Request  engine.SearchRequest `json:"request"`
			Result   engine.SearchResult  `json:"result"`
			Duration string               `json:"duration"`
		}{req, result, took.String()})
	}

	var first engine.Path
	if len(result.Paths) > 0 {
		first = result.Paths[0]
	}
	for _, row := range engine.RenderBoard(req.Board.Size, rule, &start, &end, first) {
		fmt.Fprintln(out, row)
	}
	fmt.Fprintf(out, "\n%s -> %s in %d moves: %s, %d paths (%d explored, %s)\n",
		start, end, req.RequiredMoves, result.Outcome, len(result.Paths), result.Explored, took)

	limit := cmd.Int("limit")
	for i, p := range result.Paths {
		if limit > 0 && i >= limit {
			fmt.Fprintf(out, "... and %d more\n", len(result.Paths)-limit)
			break
		}
		fmt.Fprintf(out, "%3d. %s\n", i+1, p)
	}
	return nil
}

// parseCoordinate reads "x,y"
func parseCoordinate(s string) (engine.Coordinate, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return engine.Coordinate{}, fmt.Errorf("expected x,y, got %q", s)
	}
	x, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return engine.Coordinate{}, fmt.Errorf("invalid x in %q", s)
	}
	y, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return engine.Coordinate{}, fmt.Errorf("invalid y in %q", s)
	}
	return engine.Coordinate{X: x, Y: y}, nil
}
