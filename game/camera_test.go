package game_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mahjong-realm/game"
	"mahjong-realm/models"
)

func TestSnapToBreakpoint(t *testing.T) {
	tests := []struct {
		zoom float64
		want float64
	}{
		{1.35, 1.1},
		{0.5, 0.8},
		{0.8, 0.8},
		{1.1, 1.1},
		{1.59, 1.1},
		{2.4, 1.6},
		{math.Inf(1), 1.6},
	}
	for _, tt := range tests {
		got := game.SnapToBreakpoint(game.DefaultBreakpoints, tt.zoom)
		assert.Equal(t, tt.want, got, "zoom %v", tt.zoom)
	}
}

func TestDeriveZoom(t *testing.T) {
	vp := models.Vec2{X: 100, Y: 200}
	assert.InDelta(t, 1.8, game.DeriveZoom(vp, models.Rect{W: 50, H: 50}), 1e-9)
	assert.InDelta(t, 0.45, game.DeriveZoom(vp, models.Rect{W: 100, H: 400}), 1e-9)
	assert.True(t, math.IsInf(game.DeriveZoom(vp, models.Rect{}), 1))
}

func TestComputeBounds(t *testing.T) {
	size := models.TileSize{W: 100, H: 200, Stack: 10}
	assert.Equal(t, models.Rect{}, game.ComputeBounds(nil, game.NewWaste(), size))

	a := models.Tile{ID: models.CoordinateToID(models.BoardCoord{}), Coord: models.BoardCoord{}}
	c := models.BoardCoord{Col: 2, Row: 2}
	b := models.Tile{ID: models.CoordinateToID(c), Coord: c}

	// a centres on (50,100), b on (150,280).
	got := game.ComputeBounds([]models.Tile{a, b}, nil, size)
	assert.Equal(t, models.Rect{X: 0, Y: 0, W: 200, H: 380}, got)

	w := game.NewWaste()
	w.Append([2]models.TileID{a.ID, b.ID})
	assert.Equal(t, models.Rect{}, game.ComputeBounds([]models.Tile{a, b}, w, size))
}

func TestUpdateTargetIdempotent(t *testing.T) {
	cam := game.NewCamera(nil, 0)
	vp := models.Vec2{X: 1080, Y: 1920}
	bounds := models.Rect{X: 10, Y: 20, W: 800, H: 900}

	require.True(t, cam.UpdateTarget(bounds, vp))
	assert.False(t, cam.UpdateTarget(bounds, vp))

	target, ok := cam.Target()
	require.True(t, ok)
	assert.Equal(t, 1.1, target.Zoom)
	assert.Equal(t, models.Vec2{X: 410, Y: 470}, target.Center)

	// Smaller bounds that still snap to 1.1 keep the old target.
	assert.False(t, cam.UpdateTarget(models.Rect{W: 700, H: 900}, vp))
	target, _ = cam.Target()
	assert.Equal(t, bounds, target.Bounds)

	// Crossing a breakpoint replaces it.
	assert.True(t, cam.UpdateTarget(models.Rect{W: 300, H: 300}, vp))
	target, _ = cam.Target()
	assert.Equal(t, 1.6, target.Zoom)
}

func TestUpdateTargetEmptyBoundsIsNoop(t *testing.T) {
	cam := game.NewCamera(game.DefaultBreakpoints, game.DefaultLerp)
	assert.False(t, cam.UpdateTarget(models.Rect{}, models.Vec2{X: 1080, Y: 1920}))
	_, ok := cam.Target()
	assert.False(t, ok)

	cam.UpdateTarget(models.Rect{W: 300, H: 300}, models.Vec2{X: 1080, Y: 1920})
	before, _ := cam.Target()
	assert.False(t, cam.UpdateTarget(models.Rect{}, models.Vec2{X: 1080, Y: 1920}))
	after, _ := cam.Target()
	assert.Equal(t, before, after)
}

func TestInvalidateForcesRetarget(t *testing.T) {
	cam := game.NewCamera(nil, 0)
	vp := models.Vec2{X: 1080, Y: 1920}
	bounds := models.Rect{W: 800, H: 900}
	cam.UpdateTarget(bounds, vp)
	cam.Invalidate()
	assert.True(t, cam.UpdateTarget(bounds, vp))
}

func TestCameraTickConverges(t *testing.T) {
	cam := game.NewCamera(nil, 0.1)
	assert.False(t, cam.Tick(), "no target yet")

	vp := models.Vec2{X: 1080, Y: 1920}
	cam.UpdateTarget(models.Rect{X: 0, Y: 0, W: 300, H: 300}, vp)
	target, _ := cam.Target()

	require.True(t, cam.Tick())
	first := cam.State()
	assert.InDelta(t, 15, first.Center.X, 1e-9)
	assert.InDelta(t, 1.06, first.Zoom, 1e-9)
	assert.NotEqual(t, target.Center, first.Center)

	ticks := 1
	for cam.Tick() {
		ticks++
		require.Less(t, ticks, 1000, "camera never settled")
	}
	assert.Equal(t, game.CameraState{Center: target.Center, Zoom: target.Zoom}, cam.State())
	assert.False(t, cam.Tick())
	assert.Equal(t, game.CameraState{Center: target.Center, Zoom: target.Zoom}, cam.State())
}

func TestTimelineOrder(t *testing.T) {
	var tl game.Timeline
	var got []string
	add := func(name string) func() { return func() { got = append(got, name) } }

	tl.Schedule(1000*time.Millisecond, add("c"))
	tl.Schedule(300*time.Millisecond, add("a"))
	tl.Schedule(600*time.Millisecond, add("b1"))
	tl.Schedule(600*time.Millisecond, add("b2"))
	require.Equal(t, 4, tl.Pending())

	assert.Equal(t, 0, tl.Advance(299*time.Millisecond))
	assert.Equal(t, 3, tl.Advance(400*time.Millisecond))
	assert.Equal(t, []string{"a", "b1", "b2"}, got)

	tl.Schedule(100*time.Millisecond, add("d"))
	tl.Advance(time.Second)
	assert.Equal(t, []string{"a", "b1", "b2", "d", "c"}, got)

	assert.Equal(t, 0, tl.Advance(time.Hour))
	assert.Len(t, got, 5)
	assert.Zero(t, tl.Pending())
}

func TestTimelineClear(t *testing.T) {
	var tl game.Timeline
	fired := false
	tl.Schedule(time.Millisecond, func() { fired = true })
	tl.Advance(time.Microsecond)
	tl.Clear()
	tl.Advance(time.Second)
	assert.False(t, fired)
	assert.Zero(t, tl.Now())
}

func TestSelectionCapacity(t *testing.T) {
	var s game.Selection
	ids := []models.TileID{{Col: 1}, {Col: 2}, {Col: 3}}

	sel, changed := s.Toggle(ids[0])
	assert.True(t, sel && changed)
	s.Toggle(ids[1])
	sel, changed = s.Toggle(ids[2])
	assert.False(t, sel || changed, "third tile must be ignored")
	assert.Equal(t, ids[:2], s.IDs())

	sel, changed = s.Toggle(ids[0])
	assert.False(t, sel)
	assert.True(t, changed)
	assert.Equal(t, ids[1:2], s.IDs())
}

func TestWaste(t *testing.T) {
	w := game.NewWaste()
	p := [2]models.TileID{{Col: 1}, {Col: 2}}
	w.Append(p)
	assert.True(t, w.Contains(p[1]))
	assert.False(t, w.Contains(models.TileID{Col: 3}))
	assert.Equal(t, []models.TileID{p[0], p[1]}, w.Flatten())
	assert.Equal(t, 2, w.TileCount())
	w.Clear()
	assert.Zero(t, w.TileCount())
	assert.False(t, w.Contains(p[0]))
}
