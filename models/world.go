package models

import (
	"errors"
	"fmt"
)

// BoardTemplate describes a board shape: Levels[level][row][col] is 1 where
// a tile is placed and 0 elsewhere.
type BoardTemplate struct {
	Name   string      `json:"name" yaml:"name"`
	Levels [][][]uint8 `json:"levels" yaml:"levels"`
}

var ErrEmptyTemplate = errors.New("template has no tiles")

// Clone returns a copy that shares no backing arrays with t.
func (t BoardTemplate) Clone() BoardTemplate {
	out := BoardTemplate{Name: t.Name, Levels: make([][][]uint8, len(t.Levels))}
	for l, rows := range t.Levels {
		out.Levels[l] = make([][]uint8, len(rows))
		for r, cols := range rows {
			out.Levels[l][r] = append([]uint8(nil), cols...)
		}
	}
	return out
}

// Validate checks cell values and that every coordinate fits a TileID.
func (t BoardTemplate) Validate() error {
	if t.Name == "" {
		return errors.New("template name is empty")
	}
	if len(t.Levels) > MaxCoord {
		return fmt.Errorf("template %s: %d levels exceeds %d", t.Name, len(t.Levels), MaxCoord)
	}
	count := 0
	for level, rows := range t.Levels {
		if len(rows) > MaxCoord {
			return fmt.Errorf("template %s level %d: %d rows exceeds %d", t.Name, level, len(rows), MaxCoord)
		}
		for row, cols := range rows {
			if len(cols) > MaxCoord {
				return fmt.Errorf("template %s level %d row %d: %d cols exceeds %d", t.Name, level, row, len(cols), MaxCoord)
			}
			for col, v := range cols {
				switch v {
				case 0:
				case 1:
					count++
				default:
					return fmt.Errorf("template %s cell %s: value %d is not 0 or 1",
						t.Name, BoardCoord{Col: col, Row: row, Level: level}, v)
				}
			}
		}
	}
	if count == 0 {
		return fmt.Errorf("template %s: %w", t.Name, ErrEmptyTemplate)
	}
	return nil
}

// Occupied lists occupied cells in level, row, col order.
func (t BoardTemplate) Occupied() []BoardCoord {
	var out []BoardCoord
	for level, rows := range t.Levels {
		for row, cols := range rows {
			for col, v := range cols {
				if v == 1 {
					out = append(out, BoardCoord{Col: col, Row: row, Level: level})
				}
			}
		}
	}
	return out
}

// TileCount is the number of occupied cells.
func (t BoardTemplate) TileCount() int {
	n := 0
	for _, rows := range t.Levels {
		for _, cols := range rows {
			for _, v := range cols {
				if v == 1 {
					n++
				}
			}
		}
	}
	return n
}
