package persistence

import (
	"fmt"
	"sort"
	"sync"

	"mahjong-realm/models"
)

// MemoryStore keeps everything in process memory. Data is lost on restart.
type MemoryStore struct {
	mutex sync.RWMutex
	data  storeData
}

type storeData struct {
	Players map[string]*models.Player     `json:"players"`
	Games   map[string]*models.GameRecord `json:"games"`
}

func newStoreData() storeData {
	return storeData{
		Players: make(map[string]*models.Player),
		Games:   make(map[string]*models.GameRecord),
	}
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: newStoreData()}
}

func (d *storeData) savePlayer(player *models.Player) {
	p := *player
	d.Players[p.ID] = &p
}

func (d *storeData) loadPlayer(playerID string) (*models.Player, error) {
	player, ok := d.Players[playerID]
	if !ok {
		return nil, fmt.Errorf("player %s: %w", playerID, ErrNotFound)
	}
	p := *player
	return &p, nil
}

func (d *storeData) loadPlayerByUsername(username string) (*models.Player, error) {
	for _, player := range d.Players {
		if player.Username == username {
			p := *player
			return &p, nil
		}
	}
	return nil, fmt.Errorf("player %q: %w", username, ErrNotFound)
}

func (d *storeData) saveGame(game *models.GameRecord) {
	g := *game
	d.Games[g.ID] = &g
}

func (d *storeData) loadGame(gameID string) (*models.GameRecord, error) {
	game, ok := d.Games[gameID]
	if !ok {
		return nil, fmt.Errorf("game %s: %w", gameID, ErrNotFound)
	}
	g := *game
	return &g, nil
}

func (d *storeData) listGames(playerID string) []*models.GameRecord {
	var out []*models.GameRecord
	for _, game := range d.Games {
		if game.PlayerID == playerID {
			g := *game
			out = append(out, &g)
		}
	}
	sortGames(out)
	return out
}

func sortGames(games []*models.GameRecord) {
	sort.Slice(games, func(i, j int) bool {
		if games[i].StartedAt.Equal(games[j].StartedAt) {
			return games[i].ID < games[j].ID
		}
		return games[i].StartedAt.Before(games[j].StartedAt)
	})
}

// SavePlayer saves a copy of player
func (m *MemoryStore) SavePlayer(player *models.Player) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.data.savePlayer(player)
	return nil
}

// LoadPlayer loads a player by ID
func (m *MemoryStore) LoadPlayer(playerID string) (*models.Player, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.data.loadPlayer(playerID)
}

// LoadPlayerByUsername loads a player by username
func (m *MemoryStore) LoadPlayerByUsername(username string) (*models.Player, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.data.loadPlayerByUsername(username)
}

// SaveGame saves a copy of game
func (m *MemoryStore) SaveGame(game *models.GameRecord) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.data.saveGame(game)
	return nil
}

// LoadGame loads a game record by ID
func (m *MemoryStore) LoadGame(gameID string) (*models.GameRecord, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.data.loadGame(gameID)
}

// ListGames lists a player's games
func (m *MemoryStore) ListGames(playerID string) ([]*models.GameRecord, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.data.listGames(playerID), nil
}

// Close is a no-op
func (m *MemoryStore) Close() error {
	return nil
}
