// Package game is the board model: tile identities, the selection state
// machine, waste tracking, camera planning and the match timeline.
//
// Everything here is synchronous and single-threaded. Callers serialise
// access to a Board; the package starts no goroutines.
package game

import "mahjong-realm/models"

// Cue names a presentation effect played during match resolution.
type Cue string

const (
	CueMatch    Cue = "match"
	CueMismatch Cue = "mismatch"
	CueSpark    Cue = "spark"
	CueVibrate  Cue = "vibrate"
	CueGlowFade Cue = "glow_fade"
)

// Presenter is the render/input collaborator. The board calls it to create
// visual tiles and play feedback; it never reaches into presenter state.
type Presenter interface {
	SpawnTile(t models.Tile, pos models.Vec2)
	PlaySelect(id models.TileID)
	PlayDeselect(id models.TileID)
	PlayCue(cue Cue, pair [2]models.TileID)
	CameraRetarget(target CameraTarget)
	Solved()
	// Viewport is the current visible area in screen pixels.
	Viewport() models.Vec2
}

// NopPresenter ignores every call and reports a fixed viewport.
type NopPresenter struct {
	Size models.Vec2
}

func (NopPresenter) SpawnTile(models.Tile, models.Vec2) {}
func (NopPresenter) PlaySelect(models.TileID)           {}
func (NopPresenter) PlayDeselect(models.TileID)         {}
func (NopPresenter) PlayCue(Cue, [2]models.TileID)      {}
func (NopPresenter) CameraRetarget(CameraTarget)        {}
func (NopPresenter) Solved()                            {}
func (p NopPresenter) Viewport() models.Vec2            { return p.Size }
