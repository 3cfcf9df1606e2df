package persistence

import (
	"errors"

	"mahjong-realm/models"
)

// ErrNotFound is returned when a player or game record does not exist.
var ErrNotFound = errors.New("not found")

// Storage defines the interface for data persistence
type Storage interface {
	SavePlayer(player *models.Player) error
	LoadPlayer(playerID string) (*models.Player, error)
	LoadPlayerByUsername(username string) (*models.Player, error)
	SaveGame(game *models.GameRecord) error
	LoadGame(gameID string) (*models.GameRecord, error)
	// ListGames returns a player's games, oldest first.
	ListGames(playerID string) ([]*models.GameRecord, error)
	Close() error
}
