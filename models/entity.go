package models

import "time"

// Player is a persisted player profile.
type Player struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	GamesStarted int       `json:"games_started"`
	GamesSolved  int       `json:"games_solved"`
	BestSolveMs  int64     `json:"best_solve_ms"` // 0 until the first solved board
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// GameRecord summarises one generated board.
type GameRecord struct {
	ID           string    `json:"id"`
	PlayerID     string    `json:"player_id"`
	Template     string    `json:"template"`
	Seed         int64     `json:"seed"`
	TileCount    int       `json:"tile_count"`
	MatchedPairs int       `json:"matched_pairs"`
	Solved       bool      `json:"solved"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at,omitempty"`
}

// Duration is the solve time, or zero while the board is unsolved.
func (g *GameRecord) Duration() time.Duration {
	if !g.Solved || g.FinishedAt.IsZero() {
		return 0
	}
	return g.FinishedAt.Sub(g.StartedAt)
}
