package game

import "mahjong-realm/models"

// Waste records matched pairs. It only grows until the board is reset.
type Waste struct {
	pairs [][2]models.TileID
	index map[models.TileID]struct{}
}

func NewWaste() *Waste {
	return &Waste{index: make(map[models.TileID]struct{})}
}

func (w *Waste) Append(pair [2]models.TileID) {
	w.pairs = append(w.pairs, pair)
	w.index[pair[0]] = struct{}{}
	w.index[pair[1]] = struct{}{}
}

func (w *Waste) Contains(id models.TileID) bool {
	_, ok := w.index[id]
	return ok
}

// Pairs returns a copy of the recorded pairs in match order.
func (w *Waste) Pairs() [][2]models.TileID {
	return append([][2]models.TileID(nil), w.pairs...)
}

// Flatten lists every wasted tile id.
func (w *Waste) Flatten() []models.TileID {
	out := make([]models.TileID, 0, 2*len(w.pairs))
	for _, p := range w.pairs {
		out = append(out, p[0], p[1])
	}
	return out
}

// TileCount is len(Flatten()).
func (w *Waste) TileCount() int { return 2 * len(w.pairs) }

func (w *Waste) Clear() {
	w.pairs = nil
	clear(w.index)
}
