package game

import (
	"math/rand"

	"mahjong-realm/models"
)

// dealKeys assigns a graphic key to each of n tiles.
func dealKeys(rng *rand.Rand, palette []string, n int, rule MatchRule) []string {
	keys := make([]string, n)
	if len(palette) == 0 {
		return keys
	}
	if rule != MatchFace {
		for i := range keys {
			keys[i] = palette[rng.Intn(len(palette))]
		}
		return keys
	}
	for i := 0; i < n; i += 2 {
		k := palette[rng.Intn(len(palette))]
		keys[i] = k
		if i+1 < n {
			keys[i+1] = k
		}
	}
	rng.Shuffle(n, func(i, j int) { keys[i], keys[j] = keys[j], keys[i] })
	return keys
}

// layoutTiles builds the tiles for a template in generation order.
func layoutTiles(t models.BoardTemplate, keys []string) []models.Tile {
	coords := t.Occupied()
	tiles := make([]models.Tile, len(coords))
	for i, c := range coords {
		tiles[i] = models.Tile{ID: models.CoordinateToID(c), Coord: c, GraphicKey: keys[i]}
	}
	return tiles
}
