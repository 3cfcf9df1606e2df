package game

import "mahjong-realm/models"

// TileSet owns the tiles of the current board.
type TileSet struct {
	tiles map[models.TileID]*models.Tile
	order []models.TileID
}

func NewTileSet() *TileSet {
	return &TileSet{tiles: make(map[models.TileID]*models.Tile)}
}

// Add stores t. It reports false, leaving the set unchanged, if the id is taken.
func (s *TileSet) Add(t models.Tile) bool {
	if _, ok := s.tiles[t.ID]; ok {
		return false
	}
	s.tiles[t.ID] = &t
	s.order = append(s.order, t.ID)
	return true
}

func (s *TileSet) Get(id models.TileID) (*models.Tile, bool) {
	t, ok := s.tiles[id]
	return t, ok
}

func (s *TileSet) Len() int { return len(s.order) }

// All returns copies of the tiles in generation order.
func (s *TileSet) All() []models.Tile {
	out := make([]models.Tile, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.tiles[id])
	}
	return out
}

func (s *TileSet) Clear() {
	clear(s.tiles)
	s.order = s.order[:0]
}
