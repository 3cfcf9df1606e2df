package game

import (
	"slices"

	"mahjong-realm/models"
)

// MaxSelected is the selection size that triggers match resolution.
const MaxSelected = 2

// Selection holds up to MaxSelected distinct tile ids in tap order.
type Selection struct {
	ids []models.TileID
}

func (s *Selection) Contains(id models.TileID) bool {
	return slices.Contains(s.ids, id)
}

func (s *Selection) Len() int { return len(s.ids) }

// Full reports whether another tile can no longer be added.
func (s *Selection) Full() bool { return len(s.ids) >= MaxSelected }

// Toggle applies a tap: a selected id is removed, an unselected id is added
// while there is room. It reports whether the id is selected afterwards and
// whether anything changed.
func (s *Selection) Toggle(id models.TileID) (selected, changed bool) {
	if i := slices.Index(s.ids, id); i >= 0 {
		s.ids = slices.Delete(s.ids, i, i+1)
		return false, true
	}
	if s.Full() {
		return false, false
	}
	s.ids = append(s.ids, id)
	return true, true
}

// IDs returns a copy of the selected ids in tap order.
func (s *Selection) IDs() []models.TileID {
	return slices.Clone(s.ids)
}

// Clear empties the selection and returns what was selected.
func (s *Selection) Clear() []models.TileID {
	out := s.ids
	s.ids = nil
	return out
}
