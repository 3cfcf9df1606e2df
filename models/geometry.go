package models

import "math"

// Vec2 is a point or size in layout space.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned rectangle with its top-left corner at (X, Y).
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"width"`
	H float64 `json:"height"`
}

func (r Rect) Left() float64   { return r.X }
func (r Rect) Right() float64  { return r.X + r.W }
func (r Rect) Top() float64    { return r.Y }
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Center returns the centre point of the rectangle.
func (r Rect) Center() Vec2 {
	return Vec2{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// RectFromCenter builds a w×h rectangle centred on c.
func RectFromCenter(c Vec2, w, h float64) Rect {
	return Rect{X: c.X - w/2, Y: c.Y - h/2, W: w, H: h}
}

// RectUnion grows an AABB from min/max edges.
// The zero value of RectUnion yields an empty rect at the origin.
type RectUnion struct {
	minX, minY, maxX, maxY float64
	n                      int
}

func (u *RectUnion) Add(r Rect) {
	if u.n == 0 {
		u.minX, u.minY, u.maxX, u.maxY = r.Left(), r.Top(), r.Right(), r.Bottom()
	} else {
		u.minX = math.Min(u.minX, r.Left())
		u.minY = math.Min(u.minY, r.Top())
		u.maxX = math.Max(u.maxX, r.Right())
		u.maxY = math.Max(u.maxY, r.Bottom())
	}
	u.n++
}

func (u *RectUnion) Rect() Rect {
	if u.n == 0 {
		return Rect{}
	}
	return Rect{X: u.minX, Y: u.minY, W: u.maxX - u.minX, H: u.maxY - u.minY}
}

// TileSize is the footprint of one tile: face width and height plus the
// vertical offset applied per stacked level.
type TileSize struct {
	W     float64 `json:"width" yaml:"width"`
	H     float64 `json:"height" yaml:"height"`
	Stack float64 `json:"stack" yaml:"stack"`
}

// DefaultTileSize matches the tile art shipped with the client.
var DefaultTileSize = TileSize{W: 145, H: 206, Stack: 20}

// TargetScreenPosition maps a board cell to the centre of its tile in
// layout space. Cells sit on a half-tile grid; each level is lifted by
// Stack and each row is shifted up by Stack again to fake depth.
func TargetScreenPosition(c BoardCoord, size TileSize) Vec2 {
	x := float64(c.Col)*size.W/2 + size.W/2
	y := float64(c.Row)*size.H/2 - float64(c.Level)*size.Stack + size.H/2
	zOffset := float64(c.Row) * size.Stack
	return Vec2{X: x, Y: y - zOffset}
}

// TileBounds is the rectangle covered by the tile at c.
func TileBounds(c BoardCoord, size TileSize) Rect {
	return RectFromCenter(TargetScreenPosition(c, size), size.W, size.H)
}
