package services

import (
	"sync"

	"mahjong-realm/game"
	"mahjong-realm/models"
	"mahjong-realm/templates"
)

// TemplateInfo summarises a board template for listings.
type TemplateInfo struct {
	Name      string      `json:"name"`
	TileCount int         `json:"tile_count"`
	Levels    int         `json:"levels"`
	Bounds    models.Rect `json:"bounds"`
}

// LayoutCache computes template summaries lazily and keeps them.
type LayoutCache struct {
	registry *templates.Registry
	size     models.TileSize
	infos    map[string]TemplateInfo
	mutex    sync.RWMutex
}

// NewLayoutCache creates a cache over registry
func NewLayoutCache(registry *templates.Registry, size models.TileSize) *LayoutCache {
	return &LayoutCache{
		registry: registry,
		size:     size,
		infos:    make(map[string]TemplateInfo),
	}
}

// Get returns the summary for a template, computing it on first use
func (lc *LayoutCache) Get(name string) (TemplateInfo, error) {
	lc.mutex.RLock()
	info, ok := lc.infos[name]
	lc.mutex.RUnlock()
	if ok {
		return info, nil
	}

	t, err := lc.registry.Get(name)
	if err != nil {
		return TemplateInfo{}, err
	}

	lc.mutex.Lock()
	defer lc.mutex.Unlock()

	// Check again in case another goroutine filled it
	if info, ok := lc.infos[name]; ok {
		return info, nil
	}
	info = summarize(t, lc.size)
	lc.infos[name] = info
	return info, nil
}

// List returns summaries for every registered template in menu order
func (lc *LayoutCache) List() []TemplateInfo {
	names := lc.registry.Names()
	out := make([]TemplateInfo, 0, len(names))
	for _, name := range names {
		if info, err := lc.Get(name); err == nil {
			out = append(out, info)
		}
	}
	return out
}

func summarize(t models.BoardTemplate, size models.TileSize) TemplateInfo {
	coords := t.Occupied()
	tiles := make([]models.Tile, len(coords))
	for i, c := range coords {
		tiles[i] = models.Tile{ID: models.CoordinateToID(c), Coord: c}
	}
	return TemplateInfo{
		Name:      t.Name,
		TileCount: len(coords),
		Levels:    len(t.Levels),
		Bounds:    game.ComputeBounds(tiles, nil, size),
	}
}
