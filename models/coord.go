package models

import (
	"encoding/json"
	"fmt"
)

// MaxCoord is the exclusive upper bound of every BoardCoord component.
const MaxCoord = 256

// BoardCoord is a cell position inside a board template.
type BoardCoord struct {
	Col   int `json:"col"`
	Row   int `json:"row"`
	Level int `json:"level"`
}

// Valid reports whether every component fits the identity range [0, MaxCoord).
func (c BoardCoord) Valid() bool {
	return c.Col >= 0 && c.Col < MaxCoord &&
		c.Row >= 0 && c.Row < MaxCoord &&
		c.Level >= 0 && c.Level < MaxCoord
}

func (c BoardCoord) String() string {
	return fmt.Sprintf("(%d,%d,%d)", c.Col, c.Row, c.Level)
}

// TileID identifies a tile by the cell it was generated on.
// It is comparable and safe to use as a map key.
type TileID struct {
	Col   uint8
	Row   uint8
	Level uint8
}

// CoordinateToID derives the id of the tile placed at c.
// c must be Valid; out-of-range components are truncated and may collide.
func CoordinateToID(c BoardCoord) TileID {
	return TileID{Col: uint8(c.Col), Row: uint8(c.Row), Level: uint8(c.Level)}
}

// Coord returns the board cell the id was derived from.
func (id TileID) Coord() BoardCoord {
	return BoardCoord{Col: int(id.Col), Row: int(id.Row), Level: int(id.Level)}
}

// Packed returns the single-integer form used by the browser client:
// col in bits 16-23, row in bits 8-15, level in bits 0-7.
func (id TileID) Packed() int {
	return int(id.Col)<<16 | int(id.Row)<<8 | int(id.Level)
}

// TileIDFromPacked is the inverse of Packed.
func TileIDFromPacked(p int) (TileID, bool) {
	if p < 0 || p >= 1<<24 {
		return TileID{}, false
	}
	return TileID{Col: uint8(p >> 16), Row: uint8(p >> 8), Level: uint8(p)}, true
}

func (id TileID) String() string {
	return fmt.Sprintf("tile#%d%s", id.Packed(), id.Coord())
}

func (id TileID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.Packed())
}

func (id *TileID) UnmarshalJSON(data []byte) error {
	var p int
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("tile id: %w", err)
	}
	v, ok := TileIDFromPacked(p)
	if !ok {
		return fmt.Errorf("tile id %d out of range", p)
	}
	*id = v
	return nil
}

// Tile is a placed tile. Presentation objects only ever hold its ID.
type Tile struct {
	ID         TileID     `json:"id"`
	Coord      BoardCoord `json:"coord"`
	GraphicKey string     `json:"graphic"`
	Selected   bool       `json:"selected"`
}
