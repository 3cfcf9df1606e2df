package services

import (
	"sync"
	"time"

	"mahjong-realm/game"
	"mahjong-realm/messages"
	"mahjong-realm/models"
)

// DefaultViewport is assumed until the client reports its size.
var DefaultViewport = models.Vec2{X: 1080, Y: 1920}

// Session is one player's board. Every board call happens under mu.
type Session struct {
	ID       string
	PlayerID string

	mu        sync.Mutex
	board     *game.Board
	presenter *sessionPresenter
	record    models.GameRecord
	recorded  bool // solve already persisted
}

// SessionSnapshot is a read-only view of a session.
type SessionSnapshot struct {
	SessionID string            `json:"session_id"`
	PlayerID  string            `json:"player_id,omitempty"`
	Game      models.GameRecord `json:"game"`
	Remaining int               `json:"remaining"`
	Phase     string            `json:"phase"`
	Camera    game.CameraState  `json:"camera"`
}

func (s *Session) snapshot() SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SessionSnapshot{
		SessionID: s.ID,
		PlayerID:  s.PlayerID,
		Game:      s.record,
		Remaining: s.board.Remaining(),
		Phase:     s.board.Phase().String(),
		Camera:    s.board.Camera().State(),
	}
}

// sessionPresenter turns board callbacks into outgoing messages. The
// buffer is drained by the service after each board call.
type sessionPresenter struct {
	viewport models.Vec2
	board    *game.Board
	out      []messages.BaseMessage

	matched    int
	mismatched int
	solved     bool
}

func newSessionPresenter(viewport models.Vec2) *sessionPresenter {
	if viewport.X <= 0 || viewport.Y <= 0 {
		viewport = DefaultViewport
	}
	return &sessionPresenter{viewport: viewport}
}

// Tiles are announced in one board message instead.
func (p *sessionPresenter) SpawnTile(models.Tile, models.Vec2) {}

func (p *sessionPresenter) PlaySelect(id models.TileID) {
	p.out = append(p.out, messages.New(messages.MessageTypeSelect, messages.TileMessage{ID: id}))
}

func (p *sessionPresenter) PlayDeselect(id models.TileID) {
	p.out = append(p.out, messages.New(messages.MessageTypeDeselect, messages.TileMessage{ID: id}))
}

func (p *sessionPresenter) PlayCue(cue game.Cue, pair [2]models.TileID) {
	switch cue {
	case game.CueMatch:
		p.matched++
		remaining := 0
		if p.board != nil {
			remaining = p.board.Remaining()
		}
		p.out = append(p.out, messages.New(messages.MessageTypeMatch, messages.MatchMessage{IDs: pair, Remaining: remaining}))
		return
	case game.CueMismatch:
		p.mismatched++
	}
	p.out = append(p.out, messages.New(messages.MessageTypeCue, messages.CueMessage{Name: string(cue), IDs: pair}))
}

func (p *sessionPresenter) CameraRetarget(t game.CameraTarget) {
	p.out = append(p.out, messages.New(messages.MessageTypeCamera, messages.CameraMessage{
		Bounds: t.Bounds,
		Zoom:   t.Zoom,
		Center: t.Center,
	}))
}

func (p *sessionPresenter) Solved() { p.solved = true }

func (p *sessionPresenter) Viewport() models.Vec2 { return p.viewport }

// drain returns the buffered messages and the counters since the last drain.
func (p *sessionPresenter) drain() (out []messages.BaseMessage, matched, mismatched int, solved bool) {
	out, matched, mismatched, solved = p.out, p.matched, p.mismatched, p.solved
	p.out, p.matched, p.mismatched, p.solved = nil, 0, 0, false
	return out, matched, mismatched, solved
}

func boardMessage(sessionID string, b *game.Board, seed int64, size models.TileSize) messages.BaseMessage {
	tiles := b.Tiles()
	placed := make([]messages.PlacedTile, len(tiles))
	for i, t := range tiles {
		placed[i] = messages.PlacedTile{Tile: t, Position: models.TargetScreenPosition(t.Coord, size)}
	}
	return messages.New(messages.MessageTypeBoard, messages.BoardMessage{
		SessionID: sessionID,
		Template:  b.Template(),
		Seed:      seed,
		Tiles:     placed,
	})
}

func solvedMessage(sessionID string, d time.Duration) messages.BaseMessage {
	return messages.New(messages.MessageTypeSolved, messages.SolvedMessage{
		SessionID:  sessionID,
		DurationMs: d.Milliseconds(),
	})
}
