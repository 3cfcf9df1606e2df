package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"mahjong-realm/game"
	"mahjong-realm/messages"
	"mahjong-realm/metrics"
	"mahjong-realm/models"
	"mahjong-realm/persistence"
	"mahjong-realm/templates"
)

// ErrSessionNotFound is returned for an unknown session id.
var ErrSessionNotFound = errors.New("session not found")

// Notifier receives messages produced outside a request, i.e. by the ticker.
type Notifier func(sessionID string, msgs []messages.BaseMessage)

// GameServiceConfig wires a GameService.
type GameServiceConfig struct {
	Registry        *templates.Registry
	Players         *PlayerService
	Storage         persistence.Storage
	Metrics         *metrics.GameMetrics
	Board           game.Options
	DefaultTemplate string
	TickInterval    time.Duration
	Logger          *slog.Logger
}

// GameService owns the live sessions and drives their clocks
type GameService struct {
	registry        *templates.Registry
	players         *PlayerService
	db              persistence.Storage
	metrics         *metrics.GameMetrics
	boardOpts       game.Options
	defaultTemplate string
	tickInterval    time.Duration
	logger          *slog.Logger
	now             func() time.Time

	notifyMu sync.RWMutex
	notify   Notifier

	sessions     map[string]*Session
	sessionMutex sync.RWMutex
}

// NewGameService creates a new game service
func NewGameService(cfg GameServiceConfig) *GameService {
	if cfg.Registry == nil {
		cfg.Registry = templates.NewRegistry()
	}
	if cfg.Storage == nil {
		cfg.Storage = persistence.NewMemoryStore()
	}
	if cfg.Players == nil {
		cfg.Players = NewPlayerService(cfg.Storage)
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second / 30
	}
	if cfg.DefaultTemplate == "" {
		cfg.DefaultTemplate = "wizard_hat"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Board.TileSize == (models.TileSize{}) {
		cfg.Board.TileSize = models.DefaultTileSize
	}
	cfg.Board.Logger = cfg.Logger
	return &GameService{
		registry:        cfg.Registry,
		players:         cfg.Players,
		db:              cfg.Storage,
		metrics:         cfg.Metrics,
		boardOpts:       cfg.Board,
		defaultTemplate: cfg.DefaultTemplate,
		tickInterval:    cfg.TickInterval,
		logger:          cfg.Logger,
		now:             time.Now,
		sessions:        make(map[string]*Session),
	}
}

// SetNotifier installs the sink for tick-driven messages
func (gs *GameService) SetNotifier(n Notifier) {
	gs.notifyMu.Lock()
	defer gs.notifyMu.Unlock()
	gs.notify = n
}

// NewGameRequest asks for a fresh board. An empty SessionID starts a new
// session; an existing one is reset and reused. A non-empty PlayerID takes
// over the session.
type NewGameRequest struct {
	SessionID string
	PlayerID  string
	Template  string
	Seed      int64
	Viewport  models.Vec2
	// Deliver, when set, receives the board messages while the session is
	// still locked, so no tick output for the new board can overtake them.
	Deliver Notifier
}

// NewGame generates a board and returns the session id with the board and
// camera messages for the client.
func (gs *GameService) NewGame(req NewGameRequest) (string, []messages.BaseMessage, error) {
	name := req.Template
	if name == "" {
		name = gs.defaultTemplate
	}
	tmpl, err := gs.registry.Get(name)
	if err != nil {
		return "", nil, err
	}
	seed := req.Seed
	for seed == 0 {
		seed = rand.Int63()
	}

	sess, created, err := gs.session(req)
	if err != nil {
		return "", nil, err
	}

	sess.mu.Lock()
	gs.abandon(sess)
	if req.PlayerID != "" {
		sess.PlayerID = req.PlayerID
	}
	if req.Viewport.X > 0 && req.Viewport.Y > 0 {
		sess.presenter.viewport = req.Viewport
	}
	count := sess.board.NewGame(tmpl, seed)
	sess.record = models.GameRecord{
		ID:        uuid.NewString(),
		PlayerID:  sess.PlayerID,
		Template:  tmpl.Name,
		Seed:      seed,
		TileCount: count,
		StartedAt: gs.now(),
	}
	sess.recorded = false
	record := sess.record
	out := []messages.BaseMessage{boardMessage(sess.ID, sess.board, seed, gs.boardOpts.TileSize)}
	buffered, _, _, _ := sess.presenter.drain()
	out = append(out, buffered...)
	if req.Deliver != nil {
		req.Deliver(sess.ID, out)
	}
	sess.mu.Unlock()

	if err := gs.db.SaveGame(&record); err != nil {
		gs.logger.Error("save game record", "session", sess.ID, "error", err)
	}
	if record.PlayerID != "" {
		if err := gs.players.RecordGameStarted(record.PlayerID); err != nil {
			gs.logger.Warn("record game start", "player", record.PlayerID, "error", err)
		}
	}
	gs.metrics.GameStarted()
	if created {
		gs.metrics.SetActiveSessions(gs.ActiveSessions())
	}
	gs.logger.Info("new game", "session", sess.ID, "template", tmpl.Name, "seed", seed, "tiles", count)
	return sess.ID, out, nil
}

// session finds or creates the session for req.
func (gs *GameService) session(req NewGameRequest) (*Session, bool, error) {
	if req.SessionID != "" {
		sess, err := gs.get(req.SessionID)
		return sess, false, err
	}

	presenter := newSessionPresenter(req.Viewport)
	board := game.NewBoard(presenter, gs.boardOpts)
	presenter.board = board
	sess := &Session{
		ID:        uuid.NewString(),
		PlayerID:  req.PlayerID,
		board:     board,
		presenter: presenter,
	}

	gs.sessionMutex.Lock()
	gs.sessions[sess.ID] = sess
	gs.sessionMutex.Unlock()
	return sess, true, nil
}

// abandon persists the progress of an unfinished board before it is
// replaced. Callers hold sess.mu.
func (gs *GameService) abandon(sess *Session) {
	if sess.record.ID == "" || sess.record.Solved {
		return
	}
	sess.record.MatchedPairs = sess.board.MatchedPairs()
	record := sess.record
	if err := gs.db.SaveGame(&record); err != nil {
		gs.logger.Error("save abandoned game", "session", sess.ID, "error", err)
	}
}

func (gs *GameService) get(sessionID string) (*Session, error) {
	gs.sessionMutex.RLock()
	defer gs.sessionMutex.RUnlock()
	sess, ok := gs.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	return sess, nil
}

// TapDown forwards a tap to the session's board
func (gs *GameService) TapDown(sessionID string, id models.TileID) ([]messages.BaseMessage, error) {
	sess, err := gs.get(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	sess.board.TapDown(id)
	out, matched, mismatched, _ := sess.presenter.drain()
	if matched > 0 {
		sess.record.MatchedPairs = sess.board.MatchedPairs()
	}
	sess.mu.Unlock()

	for i := 0; i < matched; i++ {
		gs.metrics.Matched()
	}
	for i := 0; i < mismatched; i++ {
		gs.metrics.Mismatched()
	}
	return out, nil
}

// TapUp is accepted and ignored by the board
func (gs *GameService) TapUp(sessionID string, id models.TileID) error {
	sess, err := gs.get(sessionID)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	sess.board.TapUp(id)
	sess.mu.Unlock()
	return nil
}

// SetViewport records the client's size and retargets the camera if the
// snapped zoom changes.
func (gs *GameService) SetViewport(sessionID string, viewport models.Vec2) ([]messages.BaseMessage, error) {
	if viewport.X <= 0 || viewport.Y <= 0 {
		return nil, fmt.Errorf("viewport %vx%v must be positive", viewport.X, viewport.Y)
	}
	sess, err := gs.get(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.presenter.viewport = viewport
	sess.board.UpdateTarget()
	out, _, _, _ := sess.presenter.drain()
	return out, nil
}

// Snapshot returns a read-only view of a session
func (gs *GameService) Snapshot(sessionID string) (SessionSnapshot, error) {
	sess, err := gs.get(sessionID)
	if err != nil {
		return SessionSnapshot{}, err
	}
	return sess.snapshot(), nil
}

// EndSession saves the session's game and forgets it
func (gs *GameService) EndSession(sessionID string) error {
	gs.sessionMutex.Lock()
	sess, ok := gs.sessions[sessionID]
	delete(gs.sessions, sessionID)
	active := len(gs.sessions)
	gs.sessionMutex.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}

	sess.mu.Lock()
	gs.abandon(sess)
	sess.mu.Unlock()

	gs.metrics.SetActiveSessions(active)
	gs.logger.Info("session ended", "session", sessionID)
	return nil
}

// ActiveSessions is the number of live sessions
func (gs *GameService) ActiveSessions() int {
	gs.sessionMutex.RLock()
	defer gs.sessionMutex.RUnlock()
	return len(gs.sessions)
}

// Tick advances every session by dt and delivers what it produced to the
// notifier.
func (gs *GameService) Tick(dt time.Duration) {
	gs.sessionMutex.RLock()
	live := make([]*Session, 0, len(gs.sessions))
	for _, sess := range gs.sessions {
		live = append(live, sess)
	}
	gs.sessionMutex.RUnlock()

	gs.notifyMu.RLock()
	notify := gs.notify
	gs.notifyMu.RUnlock()

	for _, sess := range live {
		gs.tickSession(sess, dt, notify)
	}
}

// tickSession advances one board. Output is handed to notify before the
// session is unlocked so it stays ordered with NewGame deliveries.
func (gs *GameService) tickSession(sess *Session, dt time.Duration, notify Notifier) {
	sess.mu.Lock()
	moved := sess.board.Tick(dt)
	out, _, _, solved := sess.presenter.drain()
	if moved {
		state := sess.board.Camera().State()
		out = append(out, messages.New(messages.MessageTypeCameraState, messages.CameraStateMessage{
			Center: state.Center,
			Zoom:   state.Zoom,
		}))
	}

	var record *models.GameRecord
	if solved && !sess.recorded {
		sess.recorded = true
		sess.record.Solved = true
		sess.record.MatchedPairs = sess.board.MatchedPairs()
		sess.record.FinishedAt = gs.now()
		r := sess.record
		record = &r
		out = append(out, solvedMessage(sess.ID, r.Duration()))
	}
	if len(out) > 0 && notify != nil {
		notify(sess.ID, out)
	}
	sess.mu.Unlock()

	if record != nil {
		gs.finish(sess.ID, record)
	}
}

func (gs *GameService) finish(sessionID string, record *models.GameRecord) {
	if err := gs.db.SaveGame(record); err != nil {
		gs.logger.Error("save solved game", "session", sessionID, "error", err)
	}
	if record.PlayerID != "" {
		if err := gs.players.RecordSolve(record.PlayerID, record.Duration()); err != nil {
			gs.logger.Warn("record solve", "player", record.PlayerID, "error", err)
		}
	}
	gs.metrics.Solved(record.Template)
	gs.logger.Info("board solved", "session", sessionID, "template", record.Template, "duration", record.Duration())
}

// Run ticks every session until ctx is cancelled
func (gs *GameService) Run(ctx context.Context) {
	ticker := time.NewTicker(gs.tickInterval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			gs.Tick(now.Sub(last))
			last = now
		}
	}
}
