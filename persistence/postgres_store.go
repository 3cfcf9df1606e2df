package persistence

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"mahjong-realm/models"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// PostgresStore handles database operations using PostgreSQL
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL storage manager
func NewPostgresStore(connectionString string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &PostgresStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

func (dm *PostgresStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS players (
		id TEXT PRIMARY KEY,
		username TEXT UNIQUE NOT NULL,
		games_started INTEGER NOT NULL DEFAULT 0,
		games_solved INTEGER NOT NULL DEFAULT 0,
		best_solve_ms BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS games (
		id TEXT PRIMARY KEY,
		player_id TEXT REFERENCES players(id),
		template TEXT NOT NULL,
		seed BIGINT NOT NULL,
		tile_count INTEGER NOT NULL,
		matched_pairs INTEGER NOT NULL DEFAULT 0,
		solved BOOLEAN NOT NULL DEFAULT FALSE,
		started_at TIMESTAMP WITH TIME ZONE NOT NULL,
		finished_at TIMESTAMP WITH TIME ZONE
	);

	CREATE INDEX IF NOT EXISTS games_player_idx ON games (player_id, started_at);
	`

	_, err := dm.db.Exec(schema)
	return err
}

// SavePlayer upserts a player
func (dm *PostgresStore) SavePlayer(player *models.Player) error {
	query := `
	INSERT INTO players (id, username, games_started, games_solved, best_solve_ms, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (id)
	DO UPDATE SET
		games_started = $3, games_solved = $4, best_solve_ms = $5,
		updated_at = $7
	`

	_, err := dm.db.Exec(query,
		player.ID, player.Username, player.GamesStarted, player.GamesSolved,
		player.BestSolveMs, player.CreatedAt, player.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save player: %w", err)
	}
	return nil
}

const playerColumns = `id, username, games_started, games_solved, best_solve_ms, created_at, updated_at`

func scanPlayer(row *sql.Row, key string) (*models.Player, error) {
	var player models.Player
	err := row.Scan(
		&player.ID, &player.Username, &player.GamesStarted, &player.GamesSolved,
		&player.BestSolveMs, &player.CreatedAt, &player.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("player %s: %w", key, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load player: %w", err)
	}
	return &player, nil
}

// LoadPlayer loads a player from the database by ID
func (dm *PostgresStore) LoadPlayer(playerID string) (*models.Player, error) {
	row := dm.db.QueryRow(`SELECT `+playerColumns+` FROM players WHERE id = $1`, playerID)
	return scanPlayer(row, playerID)
}

// LoadPlayerByUsername loads a player from the database by username
func (dm *PostgresStore) LoadPlayerByUsername(username string) (*models.Player, error) {
	row := dm.db.QueryRow(`SELECT `+playerColumns+` FROM players WHERE username = $1`, username)
	return scanPlayer(row, username)
}

// SaveGame upserts a game record
func (dm *PostgresStore) SaveGame(game *models.GameRecord) error {
	query := `
	INSERT INTO games (id, player_id, template, seed, tile_count, matched_pairs, solved, started_at, finished_at)
	VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (id)
	DO UPDATE SET
		matched_pairs = $6, solved = $7, finished_at = $9
	`

	var finished sql.NullTime
	if !game.FinishedAt.IsZero() {
		finished = sql.NullTime{Time: game.FinishedAt, Valid: true}
	}
	_, err := dm.db.Exec(query,
		game.ID, game.PlayerID, game.Template, game.Seed, game.TileCount,
		game.MatchedPairs, game.Solved, game.StartedAt, finished)
	if err != nil {
		return fmt.Errorf("failed to save game: %w", err)
	}
	return nil
}

const gameColumns = `id, COALESCE(player_id, ''), template, seed, tile_count, matched_pairs, solved, started_at, finished_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGame(row rowScanner) (*models.GameRecord, error) {
	var game models.GameRecord
	var finished sql.NullTime
	if err := row.Scan(
		&game.ID, &game.PlayerID, &game.Template, &game.Seed, &game.TileCount,
		&game.MatchedPairs, &game.Solved, &game.StartedAt, &finished,
	); err != nil {
		return nil, err
	}
	if finished.Valid {
		game.FinishedAt = finished.Time
	}
	return &game, nil
}

// LoadGame loads a game record by ID
func (dm *PostgresStore) LoadGame(gameID string) (*models.GameRecord, error) {
	game, err := scanGame(dm.db.QueryRow(`SELECT `+gameColumns+` FROM games WHERE id = $1`, gameID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("game %s: %w", gameID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load game: %w", err)
	}
	return game, nil
}

// ListGames lists a player's games, oldest first
func (dm *PostgresStore) ListGames(playerID string) ([]*models.GameRecord, error) {
	rows, err := dm.db.Query(`SELECT `+gameColumns+` FROM games WHERE player_id = $1 ORDER BY started_at, id`, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	defer rows.Close()

	var games []*models.GameRecord
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		games = append(games, game)
	}
	return games, rows.Err()
}

// Close closes the database connection
func (dm *PostgresStore) Close() error {
	slog.Info("closing database connection")
	return dm.db.Close()
}
