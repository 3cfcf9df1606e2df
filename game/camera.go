package game

import (
	"math"

	"mahjong-realm/models"
)

// DefaultBreakpoints are the zoom levels the camera snaps to.
var DefaultBreakpoints = []float64{0.8, 1.1, 1.6}

// DefaultLerp is the fraction of the remaining distance covered per tick.
const DefaultLerp = 0.1

const fitMargin = 0.9

// convergeEpsilon is the distance below which the live camera snaps onto
// the target so Tick stops reporting movement.
const convergeEpsilon = 1e-3

// CameraTarget is where the camera is heading. It is always replaced
// wholesale, never mutated field by field.
type CameraTarget struct {
	Bounds models.Rect `json:"bounds"`
	Zoom   float64     `json:"zoom"`
	Center models.Vec2 `json:"center"`
}

// CameraState is the live, interpolated camera.
type CameraState struct {
	Center models.Vec2 `json:"center"`
	Zoom   float64     `json:"zoom"`
}

// ComputeBounds is the bounding box of the target positions of every tile
// not in waste. It returns the zero rectangle when no tile remains.
func ComputeBounds(tiles []models.Tile, waste *Waste, size models.TileSize) models.Rect {
	var u models.RectUnion
	for _, t := range tiles {
		if waste != nil && waste.Contains(t.ID) {
			continue
		}
		u.Add(models.TileBounds(t.Coord, size))
	}
	return u.Rect()
}

// DeriveZoom is the zoom that fits bounds into viewport with a 10% margin.
// Degenerate bounds give +Inf.
func DeriveZoom(viewport models.Vec2, bounds models.Rect) float64 {
	if bounds.W <= 0 || bounds.H <= 0 {
		return math.Inf(1)
	}
	return math.Min(viewport.X/bounds.W, viewport.Y/bounds.H) * fitMargin
}

// SnapToBreakpoint returns the largest breakpoint not above zoom, or the
// smallest breakpoint when zoom is below all of them. breakpoints must be
// ascending and non-empty.
func SnapToBreakpoint(breakpoints []float64, zoom float64) float64 {
	snapped := breakpoints[0]
	for _, b := range breakpoints {
		if b <= zoom {
			snapped = b
		}
	}
	return snapped
}

// Camera plans and interpolates the view over the board.
type Camera struct {
	breakpoints []float64
	lerp        float64

	target    CameraTarget
	hasTarget bool
	live      CameraState
}

func NewCamera(breakpoints []float64, lerp float64) *Camera {
	if len(breakpoints) == 0 {
		breakpoints = DefaultBreakpoints
	}
	if lerp <= 0 || lerp > 1 {
		lerp = DefaultLerp
	}
	return &Camera{
		breakpoints: append([]float64(nil), breakpoints...),
		lerp:        lerp,
		live:        CameraState{Zoom: 1},
	}
}

// UpdateTarget recomputes the target from bounds. The target is replaced
// only when the snapped zoom changes or there is no target yet, so calling
// it twice without a state change returns false the second time. Empty
// bounds leave the camera untouched.
func (c *Camera) UpdateTarget(bounds models.Rect, viewport models.Vec2) bool {
	if bounds.Empty() {
		return false
	}
	zoom := SnapToBreakpoint(c.breakpoints, DeriveZoom(viewport, bounds))
	if c.hasTarget && zoom == c.target.Zoom {
		return false
	}
	c.target = CameraTarget{Bounds: bounds, Zoom: zoom, Center: bounds.Center()}
	c.hasTarget = true
	return true
}

// Tick moves the live camera a fixed fraction toward the target and
// reports whether it moved.
func (c *Camera) Tick() bool {
	if !c.hasTarget {
		return false
	}
	next := CameraState{
		Center: models.Vec2{
			X: lerp(c.live.Center.X, c.target.Center.X, c.lerp),
			Y: lerp(c.live.Center.Y, c.target.Center.Y, c.lerp),
		},
		Zoom: lerp(c.live.Zoom, c.target.Zoom, c.lerp),
	}
	if math.Abs(next.Center.X-c.target.Center.X) < convergeEpsilon &&
		math.Abs(next.Center.Y-c.target.Center.Y) < convergeEpsilon &&
		math.Abs(next.Zoom-c.target.Zoom) < convergeEpsilon {
		next = CameraState{Center: c.target.Center, Zoom: c.target.Zoom}
	}
	moved := next != c.live
	c.live = next
	return moved
}

// Target returns the current target and whether one has been set.
func (c *Camera) Target() (CameraTarget, bool) {
	return c.target, c.hasTarget
}

func (c *Camera) State() CameraState { return c.live }

// Invalidate drops the target so the next UpdateTarget always retargets.
// The live camera keeps its position and glides to the new target.
func (c *Camera) Invalidate() {
	c.target = CameraTarget{}
	c.hasTarget = false
}

func lerp(from, to, t float64) float64 {
	return from + (to-from)*t
}
