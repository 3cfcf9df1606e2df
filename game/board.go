package game

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"mahjong-realm/models"
	"mahjong-realm/templates"
)

// MatchRule decides whether two selected tiles form a match.
type MatchRule string

const (
	// MatchAny accepts every pair.
	MatchAny MatchRule = "any"
	// MatchFace accepts pairs with the same graphic key.
	MatchFace MatchRule = "face"
)

func ParseMatchRule(s string) (MatchRule, error) {
	switch MatchRule(s) {
	case "", MatchAny:
		return MatchAny, nil
	case MatchFace:
		return MatchFace, nil
	}
	return "", fmt.Errorf("unknown match rule %q", s)
}

// Match timeline offsets, relative to the moment a pair is wasted.
const (
	SparkAt    = 300 * time.Millisecond
	VibrateAt  = 600 * time.Millisecond
	GlowFadeAt = 1000 * time.Millisecond
	RetargetAt = 1200 * time.Millisecond
	SettleAt   = 1300 * time.Millisecond
)

// Phase is the selection state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseOneSelected
	PhaseResolving
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseOneSelected:
		return "one_selected"
	case PhaseResolving:
		return "resolving"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

type Options struct {
	TileSize    models.TileSize
	Breakpoints []float64
	Lerp        float64
	MatchRule   MatchRule
	// DisableInputDuringMatch ignores taps until the match timeline settles.
	DisableInputDuringMatch bool
	Palette                 []string
	Logger                  *slog.Logger
}

func DefaultOptions() Options {
	return Options{
		TileSize:                models.DefaultTileSize,
		Breakpoints:             DefaultBreakpoints,
		Lerp:                    DefaultLerp,
		MatchRule:               MatchAny,
		DisableInputDuringMatch: true,
		Palette:                 templates.GraphicKeys(),
	}
}

// Board is one game: the tile set, selection, waste, camera and match
// timeline. It is not safe for concurrent use.
type Board struct {
	opts      Options
	presenter Presenter
	logger    *slog.Logger

	tiles     *TileSet
	selection Selection
	waste     *Waste
	camera    *Camera
	timeline  Timeline
	rng       *rand.Rand

	template     string
	inputEnabled bool
	settling     int
	solved       bool
}

func NewBoard(p Presenter, opts Options) *Board {
	if p == nil {
		p = NopPresenter{}
	}
	if opts.TileSize == (models.TileSize{}) {
		opts.TileSize = models.DefaultTileSize
	}
	if opts.MatchRule == "" {
		opts.MatchRule = MatchAny
	}
	if len(opts.Palette) == 0 {
		opts.Palette = templates.GraphicKeys()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Board{
		opts:         opts,
		presenter:    p,
		logger:       logger,
		tiles:        NewTileSet(),
		waste:        NewWaste(),
		camera:       NewCamera(opts.Breakpoints, opts.Lerp),
		rng:          rand.New(rand.NewSource(1)),
		inputEnabled: true,
	}
}

// Reset empties the board and drops any pending timeline actions.
func (b *Board) Reset() {
	b.tiles.Clear()
	b.selection.Clear()
	b.waste.Clear()
	b.timeline.Clear()
	b.camera.Invalidate()
	b.template = ""
	b.inputEnabled = true
	b.settling = 0
	b.solved = false
}

// Seed reseeds the graphic key source.
func (b *Board) Seed(seed int64) {
	b.rng = rand.New(rand.NewSource(seed))
}

// Generate places one tile per occupied cell of t and retargets the camera.
// The board is expected to be empty; call Reset first.
func (b *Board) Generate(t models.BoardTemplate) int {
	if b.tiles.Len() > 0 {
		b.logger.Warn("generating onto a non-empty board", "template", t.Name, "tiles", b.tiles.Len())
	}
	b.template = t.Name
	coords := t.Occupied()
	keys := dealKeys(b.rng, b.opts.Palette, len(coords), b.opts.MatchRule)
	created := 0
	for _, tile := range layoutTiles(t, keys) {
		if !b.tiles.Add(tile) {
			continue
		}
		created++
		b.presenter.SpawnTile(tile, models.TargetScreenPosition(tile.Coord, b.opts.TileSize))
	}
	b.UpdateTarget()
	return created
}

// NewGame resets the board and generates t with the given seed.
func (b *Board) NewGame(t models.BoardTemplate, seed int64) int {
	b.Reset()
	b.Seed(seed)
	return b.Generate(t)
}

// TapDown applies a tap on id and reports whether it changed anything.
// Taps on unknown or wasted tiles, taps while input is disabled, and a
// third distinct tap are ignored.
func (b *Board) TapDown(id models.TileID) bool {
	if !b.inputEnabled || b.waste.Contains(id) {
		return false
	}
	tile, ok := b.tiles.Get(id)
	if !ok {
		return false
	}
	selected, changed := b.selection.Toggle(id)
	if !changed {
		return false
	}
	tile.Selected = selected
	if selected {
		b.presenter.PlaySelect(id)
	} else {
		b.presenter.PlayDeselect(id)
	}
	if b.selection.Full() {
		b.resolve()
	}
	return true
}

// TapUp is accepted for symmetry with TapDown and does nothing.
func (b *Board) TapUp(models.TileID) {}

func (b *Board) resolve() {
	ids := b.selection.Clear()
	pair := [2]models.TileID{ids[0], ids[1]}
	for _, id := range pair {
		if t, ok := b.tiles.Get(id); ok {
			t.Selected = false
		}
		b.presenter.PlayDeselect(id)
	}
	if !b.matches(pair) {
		b.presenter.PlayCue(CueMismatch, pair)
		return
	}
	b.waste.Append(pair)
	b.presenter.PlayCue(CueMatch, pair)
	if b.opts.DisableInputDuringMatch {
		b.inputEnabled = false
	}
	b.settling++
	b.scheduleMatch(pair)
}

func (b *Board) matches(pair [2]models.TileID) bool {
	if b.opts.MatchRule != MatchFace {
		return true
	}
	a, _ := b.tiles.Get(pair[0])
	c, _ := b.tiles.Get(pair[1])
	return a.GraphicKey == c.GraphicKey
}

func (b *Board) scheduleMatch(pair [2]models.TileID) {
	cue := func(c Cue) func() {
		return func() { b.presenter.PlayCue(c, pair) }
	}
	b.timeline.Schedule(SparkAt, cue(CueSpark))
	b.timeline.Schedule(VibrateAt, cue(CueVibrate))
	b.timeline.Schedule(GlowFadeAt, cue(CueGlowFade))
	b.timeline.Schedule(RetargetAt, func() { b.UpdateTarget() })
	b.timeline.Schedule(SettleAt, b.settle)
}

func (b *Board) settle() {
	b.settling--
	if b.settling <= 0 {
		b.settling = 0
		b.inputEnabled = true
	}
	b.checkSolved()
}

func (b *Board) checkSolved() {
	if b.solved || b.tiles.Len() == 0 || b.waste.TileCount() != b.tiles.Len() {
		return
	}
	b.solved = true
	b.presenter.Solved()
}

// UpdateTarget recomputes the bounds of the remaining tiles and retargets
// the camera if the snapped zoom changed.
func (b *Board) UpdateTarget() bool {
	bounds := ComputeBounds(b.tiles.All(), b.waste, b.opts.TileSize)
	if !b.camera.UpdateTarget(bounds, b.presenter.Viewport()) {
		return false
	}
	target, _ := b.camera.Target()
	b.presenter.CameraRetarget(target)
	return true
}

// Tick advances the match timeline by dt, running due actions, then moves
// the camera. It reports whether the camera moved.
func (b *Board) Tick(dt time.Duration) bool {
	b.timeline.Advance(dt)
	return b.camera.Tick()
}

func (b *Board) Template() string { return b.template }

func (b *Board) Tiles() []models.Tile { return b.tiles.All() }

func (b *Board) Tile(id models.TileID) (models.Tile, bool) {
	t, ok := b.tiles.Get(id)
	if !ok {
		return models.Tile{}, false
	}
	return *t, true
}

func (b *Board) TileCount() int { return b.tiles.Len() }

// Remaining is the number of tiles not yet wasted.
func (b *Board) Remaining() int { return b.tiles.Len() - b.waste.TileCount() }

func (b *Board) Selection() []models.TileID { return b.selection.IDs() }

func (b *Board) Waste() [][2]models.TileID { return b.waste.Pairs() }

func (b *Board) MatchedPairs() int { return b.waste.TileCount() / 2 }

func (b *Board) Solved() bool { return b.solved }

func (b *Board) InputEnabled() bool { return b.inputEnabled }

func (b *Board) Camera() *Camera { return b.camera }

// PendingActions is the number of timeline actions not yet run.
func (b *Board) PendingActions() int { return b.timeline.Pending() }

// Phase reports one_selected ahead of resolving: with input gating off a new
// tile can be picked while an earlier match is still settling.
func (b *Board) Phase() Phase {
	switch {
	case b.selection.Len() == 1:
		return PhaseOneSelected
	case b.settling > 0:
		return PhaseResolving
	}
	return PhaseIdle
}
