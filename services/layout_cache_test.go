package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mahjong-realm/models"
	"mahjong-realm/templates"
)

func TestLayoutCache(t *testing.T) {
	lc := NewLayoutCache(templates.NewRegistry(), models.DefaultTileSize)

	info, err := lc.Get("pair")
	require.NoError(t, err)
	assert.Equal(t, 2, info.TileCount)
	assert.Equal(t, 1, info.Levels)
	assert.Equal(t, models.Rect{W: 217.5, H: 206}, info.Bounds)

	_, err = lc.Get("castle")
	assert.ErrorIs(t, err, templates.ErrUnknownTemplate)

	list := lc.List()
	assert.Len(t, list, len(templates.Builtin()))
	for _, info := range list {
		assert.Zero(t, info.TileCount%2, "%s has an odd tile count", info.Name)
	}
}
