package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"mahjong-realm/models"
)

func TestTargetScreenPosition(t *testing.T) {
	size := models.TileSize{W: 100, H: 200, Stack: 10}
	cases := []struct {
		name string
		c    models.BoardCoord
		want models.Vec2
	}{
		{"origin", models.BoardCoord{}, models.Vec2{X: 50, Y: 100}},
		{"half step right", models.BoardCoord{Col: 1}, models.Vec2{X: 100, Y: 100}},
		{"row down", models.BoardCoord{Row: 2}, models.Vec2{X: 50, Y: 200 + 100 - 20}},
		{"one level up", models.BoardCoord{Level: 1}, models.Vec2{X: 50, Y: 90}},
		{"mixed", models.BoardCoord{Col: 3, Row: 1, Level: 2}, models.Vec2{X: 200, Y: 100 - 20 + 100 - 10}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := models.TargetScreenPosition(tc.c, size)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, got, models.TargetScreenPosition(tc.c, size), "must be deterministic")
		})
	}
}

func TestTileBoundsCentred(t *testing.T) {
	size := models.DefaultTileSize
	c := models.BoardCoord{Col: 4, Row: 2, Level: 1}
	r := models.TileBounds(c, size)
	assert.Equal(t, models.TargetScreenPosition(c, size), r.Center())
	assert.Equal(t, size.W, r.W)
	assert.Equal(t, size.H, r.H)
}

func TestRectUnion(t *testing.T) {
	var u models.RectUnion
	assert.Equal(t, models.Rect{}, u.Rect())
	assert.True(t, u.Rect().Empty())

	u.Add(models.Rect{X: 0, Y: 0, W: 10, H: 10})
	u.Add(models.Rect{X: -5, Y: 20, W: 10, H: 5})
	got := u.Rect()
	assert.Equal(t, models.Rect{X: -5, Y: 0, W: 15, H: 25}, got)
	assert.Equal(t, models.Vec2{X: 2.5, Y: 12.5}, got.Center())
}
