package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/wricardo/knight-paths/game/engine"
)

// DefaultWorkerLimit bounds the number of searches running at once
const DefaultWorkerLimit = 8

// pathServiceImpl implements the PathService interface
type pathServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	notifier Notifier
	workers  *errgroup.Group

	// pending counts searches waiting for a worker slot
	pending sync.WaitGroup

	// mu serializes access to every session engine
	mu sync.Mutex
}

// Option customizes a PathService
type Option func(*pathServiceImpl)

// WithNotifier registers a receiver for board updates
func WithNotifier(n Notifier) Option {
	return func(s *pathServiceImpl) {
		s.notifier = n
	}
}

// WithWorkerLimit sets how many searches may run concurrently
func WithWorkerLimit(limit int) Option {
	return func(s *pathServiceImpl) {
		if limit > 0 {
			s.workers.SetLimit(limit)
		}
	}
}

// NewPathService creates a new path service instance
func NewPathService(sessions SessionManager, configs ConfigManager, opts ...Option) PathService {
	s := &pathServiceImpl{
		sessions: sessions,
		configs:  configs,
		workers:  new(errgroup.Group),
	}
	s.workers.SetLimit(DefaultWorkerLimit)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *pathServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "default"
	}
	return configName
}

func (s *pathServiceImpl) sessionInfo(sess *Session, configID string) *SessionInfo {
	if configID == "" {
		configID = s.getConfigID(sess.Config.Name)
	}
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     configID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		BoardState:     sess.Engine.GetState().Clone(),
		BoardConfig:    sess.Config,
	}
}

// getSession looks up a session; callers hold s.mu
func (s *pathServiceImpl) getSession(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrSessionNotFound, err)
	}
	return sess, nil
}

// CreateSession creates a new board session
func (s *pathServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	var config *engine.BoardConfig
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			// Provide helpful error message with available options
			if strings.Contains(err.Error(), "configuration not found") {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("config '%s' not found. Available configs: %v: %w", configName, configIDs, err)
				}
				return nil, fmt.Errorf("config '%s' not found. Use /api/configs to list available configurations: %w", configName, err)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Let session manager generate a proper 4-character ID
	sess, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return s.sessionInfo(sess, configName), nil
}

// GetSession retrieves session information
func (s *pathServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	s.sessions.UpdateLastAccessed(sessionID)

	return s.sessionInfo(sess, ""), nil
}

// ListSessions returns all active sessions
func (s *pathServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess, ""))
	}
	return result, nil
}

// DeleteSession removes a session. A search still running for it finishes
// and its result is dropped.
func (s *pathServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, _ := s.sessions.Get(sessionID)
	if err := s.sessions.Delete(sessionID); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if sess != nil {
		// Outstanding tickets no longer match the generation
		sess.Engine.Clear()
	}
	return nil
}

// Select records a start or end cell. Choosing the end dispatches the search
// to the worker pool; with wait set the call returns once that search has
// been applied, discarded or ctx is done.
func (s *pathServiceImpl) Select(ctx context.Context, sessionID string, cell engine.Coordinate, wait bool) (*SelectResult, error) {
	s.mu.Lock()
	sess, err := s.getSession(sessionID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}

	outcome, ticket, err := sess.Engine.Select(cell)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.sessions.UpdateLastAccessed(sessionID)
	state := sess.Engine.GetState().Clone()
	s.mu.Unlock()

	log.Printf("[SELECT] session=%s cell=%s outcome=%s phase=%s", sess.ID, cell, outcome, state.Phase)
	s.notify(sess.ID, state)

	if ticket != nil {
		done := s.dispatch(sess, *ticket)
		if wait {
			select {
			case <-done:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			s.mu.Lock()
			state = sess.Engine.GetState().Clone()
			s.mu.Unlock()
		}
	}

	var generation uint64
	if ticket != nil {
		generation = ticket.Generation
	}

	return &SelectResult{
		Outcome:    outcome,
		Searching:  ticket != nil,
		Generation: generation,
		BoardState: state,
		Message:    state.Message,
		Board:      renderState(state),
	}, nil
}

// dispatch runs the ticket's search in the worker pool and applies the result
// if the board has not moved on. The returned channel closes when the worker
// is done. It never blocks: when every worker is busy the search is queued.
func (s *pathServiceImpl) dispatch(sess *Session, ticket engine.Ticket) <-chan struct{} {
	done := make(chan struct{})
	run := func() error {
		defer close(done)

		started := time.Now()
		result, searchErr := engine.Search(ticket.Request)

		s.mu.Lock()
		var applied bool
		if searchErr != nil {
			applied = sess.Engine.Abort(ticket, searchErr)
		} else {
			applied = sess.Engine.Deliver(ticket, result)
		}
		var state *engine.BoardState
		if applied {
			state = sess.Engine.GetState().Clone()
			if err := s.sessions.Save(sess.ID); err != nil {
				log.Printf("Warning: Failed to persist session %s after search: %v", sess.ID, err)
			}
		}
		s.mu.Unlock()

		if !applied {
			log.Printf("[SEARCH] session=%s generation=%d discarded (stale)", sess.ID, ticket.Generation)
			return nil
		}
		if searchErr != nil {
			log.Printf("[SEARCH] session=%s generation=%d failed: %v", sess.ID, ticket.Generation, searchErr)
		} else {
			log.Printf("[SEARCH] session=%s generation=%d %s->%s moves=%d outcome=%s paths=%d explored=%d took=%s",
				sess.ID, ticket.Generation, ticket.Request.Start, ticket.Request.End, ticket.Request.RequiredMoves,
				result.Outcome, len(result.Paths), result.Explored, time.Since(started))
		}
		s.notify(sess.ID, state)
		return nil
	}

	if !s.workers.TryGo(run) {
		s.pending.Add(1)
		go func() {
			defer s.pending.Done()
			s.workers.Go(run)
		}()
	}
	return done
}

// Clear removes the selection and any results
func (s *pathServiceImpl) Clear(ctx context.Context, sessionID string) (*engine.BoardState, error) {
	s.mu.Lock()
	sess, err := s.getSession(sessionID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}

	sess.Engine.Clear()
	s.sessions.UpdateLastAccessed(sessionID)
	state := sess.Engine.GetState().Clone()
	s.mu.Unlock()

	s.notify(sess.ID, state)
	return state, nil
}

// Resize changes the board size within the configuration's size rules
func (s *pathServiceImpl) Resize(ctx context.Context, sessionID string, size int) (*engine.BoardState, error) {
	s.mu.Lock()
	sess, err := s.getSession(sessionID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}

	if err := sess.Engine.Resize(size); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.sessions.UpdateLastAccessed(sessionID)
	state := sess.Engine.GetState().Clone()
	s.mu.Unlock()

	s.notify(sess.ID, state)
	return state, nil
}

// GetBoardState returns a snapshot of the session's board
func (s *pathServiceImpl) GetBoardState(ctx context.Context, sessionID string) (*engine.BoardState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	s.sessions.UpdateLastAccessed(sessionID)

	return sess.Engine.GetState().Clone(), nil
}

// GetSearchHistory returns paginated search history
func (s *pathServiceImpl) GetSearchHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.Lock()
	sess, err := s.getSession(sessionID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	history := append([]engine.SearchHistoryEntry(nil), sess.Engine.GetSearchHistory()...)
	s.mu.Unlock()

	return paginateHistory(history, opts), nil
}

func paginateHistory(history []engine.SearchHistoryEntry, opts HistoryOptions) *HistoryResponse {
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > engine.MaxHistoryLimit {
		opts.Limit = engine.MaxHistoryLimit
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	searches := []engine.SearchHistoryEntry{}
	if start < total {
		if opts.Order == "desc" {
			// Most recent first
			for i := total - 1 - start; i >= total-end; i-- {
				searches = append(searches, history[i])
			}
		} else {
			searches = append(searches, history[start:end]...)
		}
	}

	return &HistoryResponse{
		Searches:      searches,
		TotalSearches: total,
		Page:          opts.Page,
		PageSize:      opts.Limit,
		TotalPages:    totalPages,
		HasNext:       opts.Page < totalPages,
		HasPrevious:   opts.Page > 1,
	}
}

// Search runs a one-shot search outside any session
func (s *pathServiceImpl) Search(ctx context.Context, query SearchQuery) (*SearchResponse, error) {
	if query.BoardSize > engine.MaxBoardSize {
		return nil, &engine.InvalidRequestError{Field: "board_size", Value: query.BoardSize,
			Reason: fmt.Sprintf("exceeds the server limit of %d", engine.MaxBoardSize)}
	}
	if query.RequiredMoves > engine.MaxRequiredMoves {
		return nil, &engine.InvalidRequestError{Field: "required_moves", Value: query.RequiredMoves,
			Reason: fmt.Sprintf("exceeds the server limit of %d", engine.MaxRequiredMoves)}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req := engine.SearchRequest{
		Board:         engine.Board{Size: query.BoardSize},
		Start:         query.Start,
		End:           query.End,
		RequiredMoves: query.RequiredMoves,
	}

	started := time.Now()
	result, err := engine.Search(req)
	if err != nil {
		return nil, err
	}

	resp := &SearchResponse{
		RequestID: uuid.NewString(),
		Request:   req,
		Outcome:   result.Outcome,
		PathCount: len(result.Paths),
		Explored:  result.Explored,
		Paths:     result.Paths,
		Duration:  time.Since(started),
	}

	if query.Render {
		rule := query.ColourRule
		if rule == "" {
			rule = engine.LightFirst
		}
		var first engine.Path
		if len(result.Paths) > 0 {
			first = result.Paths[0]
		}
		resp.Board = engine.RenderBoard(query.BoardSize, rule, &req.Start, &req.End, first)
		resp.Segments = make([][]engine.Segment, len(result.Paths))
		for i, p := range result.Paths {
			resp.Segments[i] = engine.Segments(p)
		}
	}

	log.Printf("[SEARCH] request=%s size=%d %s->%s moves=%d outcome=%s paths=%d explored=%d took=%s",
		resp.RequestID, query.BoardSize, req.Start, req.End, req.RequiredMoves,
		result.Outcome, resp.PathCount, result.Explored, resp.Duration)

	return resp, nil
}

// ListConfigs returns available board configurations
func (s *pathServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific configuration
func (s *pathServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.BoardConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a configuration
func (s *pathServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.BoardConfig) error {
	return s.configs.SaveConfig(configName, config)
}

// Wait blocks until all dispatched searches have finished
func (s *pathServiceImpl) Wait() error {
	s.pending.Wait()
	return s.workers.Wait()
}

func (s *pathServiceImpl) notify(sessionID string, state *engine.BoardState) {
	if s.notifier != nil && state != nil {
		s.notifier.BroadcastToSession(sessionID, state)
	}
}

// renderState draws the board with the first matching path, if any
func renderState(state *engine.BoardState) []string {
	var first engine.Path
	if len(state.Paths) > 0 {
		first = state.Paths[0]
	}
	return engine.RenderBoard(state.BoardSize, state.ColourRule, state.Start, state.End, first)
}
