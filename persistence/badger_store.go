package persistence

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v3"

	"mahjong-realm/models"
)

const (
	playerPrefix   = "player:"
	usernamePrefix = "username:"
	gamePrefix     = "game:"
	playerGamesFmt = "player_game:%s:%020d:%s"
)

// BadgerStore persists players and games in an embedded BadgerDB.
//
// Keys:
//
//	player:<id>                          -> Player JSON
//	username:<name>                      -> player id
//	game:<id>                            -> GameRecord JSON
//	player_game:<pid>:<unix nanos>:<gid> -> empty, index for ListGames
type BadgerStore struct {
	db      *badger.DB
	mutex   sync.RWMutex
	isReady bool
}

// NewBadgerStore opens (or creates) a database in dir
func NewBadgerStore(dir string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open BadgerDB: %w", err)
	}
	return &BadgerStore{db: db, isReady: true}, nil
}

var errStoreClosed = errors.New("store is closed")

func (bs *BadgerStore) update(fn func(txn *badger.Txn) error) error {
	bs.mutex.RLock()
	defer bs.mutex.RUnlock()
	if !bs.isReady {
		return errStoreClosed
	}
	return bs.db.Update(fn)
}

func (bs *BadgerStore) view(fn func(txn *badger.Txn) error) error {
	bs.mutex.RLock()
	defer bs.mutex.RUnlock()
	if !bs.isReady {
		return errStoreClosed
	}
	return bs.db.View(fn)
}

func getJSON(txn *badger.Txn, key string, v interface{}) error {
	item, err := txn.Get([]byte(key))
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, v)
	})
}

// SavePlayer saves a player and its username index
func (bs *BadgerStore) SavePlayer(player *models.Player) error {
	data, err := json.Marshal(player)
	if err != nil {
		return fmt.Errorf("failed to marshal player: %w", err)
	}
	err = bs.update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(playerPrefix+player.ID), data); err != nil {
			return err
		}
		return txn.Set([]byte(usernamePrefix+player.Username), []byte(player.ID))
	})
	if err != nil {
		return fmt.Errorf("failed to save player: %w", err)
	}
	return nil
}

// LoadPlayer loads a player by ID
func (bs *BadgerStore) LoadPlayer(playerID string) (*models.Player, error) {
	var player models.Player
	err := bs.view(func(txn *badger.Txn) error {
		return getJSON(txn, playerPrefix+playerID, &player)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("player %s: %w", playerID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load player: %w", err)
	}
	return &player, nil
}

// LoadPlayerByUsername resolves the username index, then loads the player
func (bs *BadgerStore) LoadPlayerByUsername(username string) (*models.Player, error) {
	var player models.Player
	err := bs.view(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(usernamePrefix + username))
		if err != nil {
			return err
		}
		id, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		return getJSON(txn, playerPrefix+string(id), &player)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("player %q: %w", username, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load player: %w", err)
	}
	return &player, nil
}

// SaveGame saves a game record and indexes it under its player
func (bs *BadgerStore) SaveGame(game *models.GameRecord) error {
	data, err := json.Marshal(game)
	if err != nil {
		return fmt.Errorf("failed to marshal game: %w", err)
	}
	err = bs.update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(gamePrefix+game.ID), data); err != nil {
			return err
		}
		if game.PlayerID == "" {
			return nil
		}
		idx := fmt.Sprintf(playerGamesFmt, game.PlayerID, game.StartedAt.UnixNano(), game.ID)
		return txn.Set([]byte(idx), []byte{})
	})
	if err != nil {
		return fmt.Errorf("failed to save game: %w", err)
	}
	return nil
}

// LoadGame loads a game record by ID
func (bs *BadgerStore) LoadGame(gameID string) (*models.GameRecord, error) {
	var game models.GameRecord
	err := bs.view(func(txn *badger.Txn) error {
		return getJSON(txn, gamePrefix+gameID, &game)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("game %s: %w", gameID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load game: %w", err)
	}
	return &game, nil
}

// ListGames walks the player's index keys in start order
func (bs *BadgerStore) ListGames(playerID string) ([]*models.GameRecord, error) {
	var games []*models.GameRecord
	err := bs.view(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		prefix := []byte("player_game:" + playerID + ":")
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := string(it.Item().Key())
			gameID := key[len(prefix)+21:]
			var game models.GameRecord
			if err := getJSON(txn, gamePrefix+gameID, &game); err != nil {
				return fmt.Errorf("game %s: %w", gameID, err)
			}
			games = append(games, &game)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	return games, nil
}

// Close closes the database
func (bs *BadgerStore) Close() error {
	bs.mutex.Lock()
	defer bs.mutex.Unlock()

	if !bs.isReady {
		return nil
	}
	bs.isReady = false
	return bs.db.Close()
}
