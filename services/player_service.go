package services

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"mahjong-realm/models"
	"mahjong-realm/persistence"
)

// MaxUsernameLength bounds the username accepted on join.
const MaxUsernameLength = 32

// ErrInvalidUsername is returned for empty or oversized usernames.
var ErrInvalidUsername = errors.New("invalid username")

// PlayerService manages player profiles
type PlayerService struct {
	players map[string]*models.Player // by ID
	db      persistence.Storage
	now     func() time.Time
	mutex   sync.RWMutex
}

// NewPlayerService creates a new player service
func NewPlayerService(db persistence.Storage) *PlayerService {
	return &PlayerService{
		players: make(map[string]*models.Player),
		db:      db,
		now:     time.Now,
	}
}

// GetOrCreatePlayer gets an existing player or creates a new one
func (ps *PlayerService) GetOrCreatePlayer(username string) (*models.Player, error) {
	username = strings.TrimSpace(username)
	if username == "" || len(username) > MaxUsernameLength {
		return nil, fmt.Errorf("%w: %q", ErrInvalidUsername, username)
	}

	ps.mutex.Lock()
	defer ps.mutex.Unlock()

	for _, player := range ps.players {
		if player.Username == username {
			p := *player
			return &p, nil
		}
	}

	player, err := ps.db.LoadPlayerByUsername(username)
	switch {
	case err == nil:
	case errors.Is(err, persistence.ErrNotFound):
		now := ps.now()
		player = &models.Player{
			ID:        uuid.NewString(),
			Username:  username,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := ps.db.SavePlayer(player); err != nil {
			return nil, fmt.Errorf("failed to save new player: %w", err)
		}
	default:
		return nil, fmt.Errorf("failed to load player %q: %w", username, err)
	}

	ps.players[player.ID] = player
	p := *player
	return &p, nil
}

// GetPlayerByUsername returns a player from memory or storage
func (ps *PlayerService) GetPlayerByUsername(username string) (*models.Player, error) {
	ps.mutex.RLock()
	for _, player := range ps.players {
		if player.Username == username {
			p := *player
			ps.mutex.RUnlock()
			return &p, nil
		}
	}
	ps.mutex.RUnlock()

	return ps.db.LoadPlayerByUsername(username)
}

// RecordGameStarted bumps the player's started counter
func (ps *PlayerService) RecordGameStarted(playerID string) error {
	return ps.update(playerID, func(p *models.Player) {
		p.GamesStarted++
	})
}

// RecordSolve bumps the solved counter and keeps the best time
func (ps *PlayerService) RecordSolve(playerID string, d time.Duration) error {
	ms := d.Milliseconds()
	return ps.update(playerID, func(p *models.Player) {
		p.GamesSolved++
		if p.BestSolveMs == 0 || ms < p.BestSolveMs {
			p.BestSolveMs = ms
		}
	})
}

func (ps *PlayerService) update(playerID string, fn func(*models.Player)) error {
	ps.mutex.Lock()
	defer ps.mutex.Unlock()

	player, ok := ps.players[playerID]
	if !ok {
		loaded, err := ps.db.LoadPlayer(playerID)
		if err != nil {
			return err
		}
		player = loaded
		ps.players[playerID] = player
	}

	fn(player)
	player.UpdatedAt = ps.now()
	if err := ps.db.SavePlayer(player); err != nil {
		return fmt.Errorf("failed to save player: %w", err)
	}
	return nil
}
