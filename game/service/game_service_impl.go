package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wricardo/game2048/game/engine"
)

const tracerName = "github.com/wricardo/game2048/game/service"

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	tracer   trace.Tracer
	now      func() time.Time

	// mu guards session engines and access times. Any path that calls
	// UpdateLastAccessed must hold it for writing.
	mu sync.RWMutex
}

// Option configures a GameService
type Option func(*gameServiceImpl)

// WithTracerProvider traces service calls with tp instead of the global provider
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *gameServiceImpl) {
		s.tracer = tp.Tracer(tracerName)
	}
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, opts ...Option) GameService {
	s := &gameServiceImpl{
		sessions: sessions,
		tracer:   otel.Tracer(tracerName),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context) (info *SessionInfo, err error) {
	_, span := s.startSpan(ctx, "CreateSession", "")
	defer func() { endSpan(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Let session manager generate the ID
	session, err := s.sessions.Create("")
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	span.SetAttributes(attribute.String("game2048.session_id", session.ID))

	return sessionInfo(session), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (info *SessionInfo, err error) {
	_, span := s.startSpan(ctx, "GetSession", sessionID)
	defer func() { endSpan(span, err) }()

	// Touching the session writes LastAccessedAt
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", sessionID, err)
	}

	s.sessions.UpdateLastAccessed(sessionID)

	return sessionInfo(session), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) (result []*SessionInfo, err error) {
	_, span := s.startSpan(ctx, "ListSessions", "")
	defer func() { endSpan(span, err) }()

	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result = make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, sessionInfo(sess))
	}
	span.SetAttributes(attribute.Int("game2048.session_count", len(result)))

	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) (err error) {
	_, span := s.startSpan(ctx, "DeleteSession", sessionID)
	defer func() { endSpan(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("delete session %s: %w", sessionID, err)
	}
	return nil
}

// Move executes a single move for a session
func (s *gameServiceImpl) Move(ctx context.Context, sessionID, direction string, reset bool) (result *MoveResult, err error) {
	_, span := s.startSpan(ctx, "Move", sessionID)
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.String("game2048.direction", direction))

	dir, err := engine.ParseDirection(direction)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("move in session %s: %w", sessionID, err)
	}

	// Update last accessed time
	s.sessions.UpdateLastAccessed(sessionID)

	events := []GameEvent{}

	// Handle reset if requested
	if reset {
		sess.Engine.Reset()
		events = append(events, s.event(EventReset, "Game reset to a new board", nil))
	}

	t := sess.Engine.Step(dir)
	state := t.State

	result = &MoveResult{
		Success:     t.Moved,
		Direction:   dir,
		GameState:   &state,
		Message:     describeState(state),
		ScoreGained: t.ScoreGained,
		Spawned:     t.Spawned,
		Events:      append(events, s.stepEvents(dir, t)...),
	}
	if t.Ended {
		outcome, _ := state.TerminalSignal()
		result.Terminal = &outcome
	}

	span.SetAttributes(
		attribute.Bool("game2048.moved", t.Moved),
		attribute.Int("game2048.score", state.Score),
	)
	return result, nil
}

// BulkMove executes multiple moves in sequence
func (s *gameServiceImpl) BulkMove(ctx context.Context, sessionID string, moves []string, reset bool) (result *BulkMoveResult, err error) {
	_, span := s.startSpan(ctx, "BulkMove", sessionID)
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.Int("game2048.requested_moves", len(moves)))

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("bulk move in session %s: %w", sessionID, err)
	}

	// Update last accessed
	s.sessions.UpdateLastAccessed(sessionID)

	result = &BulkMoveResult{
		RequestedMoves: len(moves),
		Events:         make([]GameEvent, 0),
		Success:        true,
	}

	// Handle reset
	if reset {
		sess.Engine.Reset()
		result.Events = append(result.Events, s.event(EventReset, "Game reset to a new board", nil))
	}
	result.StartScore = sess.Engine.GetScore()

	// Limit moves to prevent abuse
	if len(moves) > engine.MaxBulkMoves {
		result.Truncated = true
		result.Limit = engine.MaxBulkMoves
		moves = moves[:engine.MaxBulkMoves]
	}

	// Execute moves
	for i, move := range moves {
		if sess.Engine.IsGameOver() {
			result.Success = false
			result.StoppedReason = "game is already over"
			result.StopReasonCode = terminalCode(sess.Engine.GetState())
			result.StoppedOnMove = i + 1
			break
		}

		dir, perr := engine.ParseDirection(move)
		if perr != nil {
			result.Success = false
			result.StoppedReason = fmt.Sprintf("move %d: %v", i+1, perr)
			result.StopReasonCode = StopInvalidDirection
			result.StoppedOnMove = i + 1
			break
		}

		t := sess.Engine.Step(dir)
		result.Events = append(result.Events, s.stepEvents(dir, t)...)

		if !t.Moved {
			result.Success = false
			result.StoppedReason = fmt.Sprintf("move %d (%s) changed nothing", i+1, dir)
			result.StopReasonCode = StopNoChange
			result.StoppedOnMove = i + 1
			break
		}

		result.MovesExecuted++
		result.Steps = append(result.Steps, StepInfo{
			Idx:         i + 1,
			Dir:         string(dir),
			ScoreGained: t.ScoreGained,
			ScoreAfter:  t.State.Score,
			MaxTile:     engine.MaxTile(t.State.Grid),
			Spawned:     t.Spawned,
		})

		if t.Ended {
			outcome, _ := t.State.TerminalSignal()
			result.Terminal = &outcome
			result.StopReasonCode = terminalCode(t.State)
			result.StoppedReason = describeState(t.State)
			if i+1 < len(moves) {
				result.StoppedOnMove = i + 1
			}
			break
		}
	}

	endState := sess.Engine.GetState()
	result.GameState = &endState
	result.EndScore = endState.Score
	result.ScoreDelta = endState.Score - result.StartScore
	result.GameOver = endState.Terminal
	result.Outcome = endState.Outcome
	result.Message = describeState(endState)
	result.PossibleMoves = sess.Engine.GetPossibleMoves()

	span.SetAttributes(
		attribute.Int("game2048.moves_executed", result.MovesExecuted),
		attribute.String("game2048.stop_reason", result.StopReasonCode),
	)
	return result, nil
}

// Reset starts a new board for a session
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (state *engine.GameState, err error) {
	_, span := s.startSpan(ctx, "Reset", sessionID)
	defer func() { endSpan(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("reset session %s: %w", sessionID, err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	fresh := sess.Engine.Reset()
	return &fresh, nil
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (state *engine.GameState, err error) {
	_, span := s.startSpan(ctx, "GetGameState", sessionID)
	defer func() { endSpan(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("get state of session %s: %w", sessionID, err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	current := sess.Engine.GetState()
	return &current, nil
}

// GetMoveHistory returns paginated move history
func (s *gameServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (resp *HistoryResponse, err error) {
	_, span := s.startSpan(ctx, "GetMoveHistory", sessionID)
	defer func() { endSpan(span, err) }()

	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("get history of session %s: %w", sessionID, err)
	}

	history := sess.Engine.GetMoveHistory()
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	// Calculate pagination
	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	moves := []engine.MoveHistoryEntry{}
	if opts.Order == "desc" {
		// Most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			moves = append(moves, history[i])
		}
	} else if start < total {
		moves = append(moves, history[start:end]...)
	}

	return &HistoryResponse{
		Moves:       moves,
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

func (s *gameServiceImpl) startSpan(ctx context.Context, name, sessionID string) (context.Context, trace.Span) {
	ctx, span := s.tracer.Start(ctx, "GameService."+name)
	if sessionID != "" {
		span.SetAttributes(attribute.String("game2048.session_id", sessionID))
	}
	return ctx, span
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (s *gameServiceImpl) event(kind, message string, tile *engine.Tile) GameEvent {
	return GameEvent{
		Type:      kind,
		Message:   message,
		Timestamp: s.now(),
		Tile:      tile,
	}
}

// stepEvents generates events from a single transition
func (s *gameServiceImpl) stepEvents(dir engine.Direction, t engine.Transition) []GameEvent {
	if !t.Moved {
		if t.State.Terminal {
			return []GameEvent{s.event(EventNoChange, "Game is over; start a new one with reset", nil)}
		}
		return []GameEvent{s.event(EventNoChange, fmt.Sprintf("Sliding %s changes nothing", dir), nil)}
	}

	events := []GameEvent{s.event(EventMove, fmt.Sprintf("Slid %s", dir), nil)}
	if t.ScoreGained > 0 {
		events = append(events, s.event(EventMerge, fmt.Sprintf("Merged tiles for %d points", t.ScoreGained), nil))
	}
	if t.Spawned != nil {
		events = append(events, s.event(EventSpawn,
			fmt.Sprintf("New %d at (%d,%d)", t.Spawned.Value, t.Spawned.Row, t.Spawned.Col), t.Spawned))
	}
	if t.Ended {
		if t.State.Outcome == engine.OutcomeWon {
			events = append(events, s.event(EventVictory, describeState(t.State), nil))
		} else {
			events = append(events, s.event(EventGameOver, describeState(t.State), nil))
		}
	}
	return events
}

func sessionInfo(sess *Session) *SessionInfo {
	state := sess.Engine.GetState()
	return &SessionInfo{
		ID:             sess.ID,
		Seed:           sess.Seed,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      &state,
		MaxTile:        engine.MaxTile(state.Grid),
		PossibleMoves:  sess.Engine.GetPossibleMoves(),
	}
}

func terminalCode(state engine.GameState) string {
	if state.Outcome == engine.OutcomeWon {
		return StopVictory
	}
	return StopGameOver
}

func describeState(state engine.GameState) string {
	switch {
	case state.Terminal && state.Outcome == engine.OutcomeWon:
		return fmt.Sprintf("You reached %d! Final score: %d", engine.WinTile, state.Score)
	case state.Terminal:
		return fmt.Sprintf("No moves left. Final score: %d", state.Score)
	default:
		return fmt.Sprintf("Score: %d", state.Score)
	}
}
