package persistence

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"mahjong-realm/models"
)

// JSONStore handles data persistence using a local JSON file. The whole
// file is rewritten after every change.
type JSONStore struct {
	filePath string
	mutex    sync.RWMutex
	data     storeData
}

// NewJSONStore opens filePath, creating it if it does not exist
func NewJSONStore(filePath string) (*JSONStore, error) {
	store := &JSONStore{
		filePath: filePath,
		data:     newStoreData(),
	}

	raw, err := os.ReadFile(filePath)
	switch {
	case err == nil:
		if err := json.Unmarshal(raw, &store.data); err != nil {
			return nil, fmt.Errorf("failed to load JSON store: %w", err)
		}
		if store.data.Players == nil {
			store.data.Players = make(map[string]*models.Player)
		}
		if store.data.Games == nil {
			store.data.Games = make(map[string]*models.GameRecord)
		}
	case errors.Is(err, os.ErrNotExist):
		if err := store.saveToFile(); err != nil {
			return nil, fmt.Errorf("failed to create JSON store file: %w", err)
		}
	default:
		return nil, fmt.Errorf("failed to read JSON store: %w", err)
	}

	return store, nil
}

// saveToFile writes the data to a temp file and renames it into place.
// Callers hold the mutex.
func (js *JSONStore) saveToFile() error {
	data, err := json.MarshalIndent(js.data, "", "  ")
	if err != nil {
		return err
	}
	tmp := js.filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, js.filePath)
}

// SavePlayer saves a player to the store
func (js *JSONStore) SavePlayer(player *models.Player) error {
	js.mutex.Lock()
	defer js.mutex.Unlock()
	js.data.savePlayer(player)
	return js.saveToFile()
}

// LoadPlayer loads a player by ID
func (js *JSONStore) LoadPlayer(playerID string) (*models.Player, error) {
	js.mutex.RLock()
	defer js.mutex.RUnlock()
	return js.data.loadPlayer(playerID)
}

// LoadPlayerByUsername loads a player by username
func (js *JSONStore) LoadPlayerByUsername(username string) (*models.Player, error) {
	js.mutex.RLock()
	defer js.mutex.RUnlock()
	return js.data.loadPlayerByUsername(username)
}

// SaveGame saves a game record to the store
func (js *JSONStore) SaveGame(game *models.GameRecord) error {
	js.mutex.Lock()
	defer js.mutex.Unlock()
	js.data.saveGame(game)
	return js.saveToFile()
}

// LoadGame loads a game record by ID
func (js *JSONStore) LoadGame(gameID string) (*models.GameRecord, error) {
	js.mutex.RLock()
	defer js.mutex.RUnlock()
	return js.data.loadGame(gameID)
}

// ListGames lists a player's games
func (js *JSONStore) ListGames(playerID string) ([]*models.GameRecord, error) {
	js.mutex.RLock()
	defer js.mutex.RUnlock()
	return js.data.listGames(playerID), nil
}

// Close closes the store (no-op for JSON store)
func (js *JSONStore) Close() error {
	return nil
}
