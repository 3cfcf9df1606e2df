package persistence_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mahjong-realm/models"
	"mahjong-realm/persistence"
)

func testStorage(t *testing.T, store persistence.Storage) {
	t.Helper()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	_, err := store.LoadPlayer("missing")
	assert.ErrorIs(t, err, persistence.ErrNotFound)
	_, err = store.LoadPlayerByUsername("nobody")
	assert.ErrorIs(t, err, persistence.ErrNotFound)
	_, err = store.LoadGame("missing")
	assert.ErrorIs(t, err, persistence.ErrNotFound)

	player := &models.Player{ID: "p1", Username: "mei", GamesStarted: 2, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, store.SavePlayer(player))

	got, err := store.LoadPlayer("p1")
	require.NoError(t, err)
	if diff := cmp.Diff(player, got); diff != "" {
		t.Errorf("LoadPlayer mismatch (-want +got):\n%s", diff)
	}
	got, err = store.LoadPlayerByUsername("mei")
	require.NoError(t, err)
	assert.Equal(t, "p1", got.ID)

	player.GamesSolved = 1
	player.BestSolveMs = 4200
	require.NoError(t, store.SavePlayer(player))
	got, err = store.LoadPlayer("p1")
	require.NoError(t, err)
	assert.Equal(t, int64(4200), got.BestSolveMs)

	second := &models.GameRecord{ID: "g2", PlayerID: "p1", Template: "turtle", Seed: 9, TileCount: 136, StartedAt: now.Add(time.Minute)}
	first := &models.GameRecord{ID: "g1", PlayerID: "p1", Template: "pair", Seed: 1, TileCount: 2, StartedAt: now}
	other := &models.GameRecord{ID: "g3", PlayerID: "p2", Template: "pair", TileCount: 2, StartedAt: now}
	require.NoError(t, store.SavePlayer(&models.Player{ID: "p2", Username: "ana", CreatedAt: now, UpdatedAt: now}))
	for _, g := range []*models.GameRecord{second, first, other} {
		require.NoError(t, store.SaveGame(g))
	}

	first.MatchedPairs = 1
	first.Solved = true
	first.FinishedAt = now.Add(3 * time.Second)
	require.NoError(t, store.SaveGame(first))

	loaded, err := store.LoadGame("g1")
	require.NoError(t, err)
	assert.True(t, loaded.Solved)
	assert.Equal(t, 3*time.Second, loaded.Duration())

	games, err := store.ListGames("p1")
	require.NoError(t, err)
	var ids []string
	for _, g := range games {
		ids = append(ids, g.ID)
	}
	assert.Equal(t, []string{"g1", "g2"}, ids)

	games, err = store.ListGames("nobody")
	require.NoError(t, err)
	assert.Empty(t, games)
}

func TestMemoryStore(t *testing.T) {
	store := persistence.NewMemoryStore()
	defer store.Close()
	testStorage(t, store)
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	store := persistence.NewMemoryStore()
	p := &models.Player{ID: "p1", Username: "mei"}
	require.NoError(t, store.SavePlayer(p))
	p.GamesStarted = 10

	got, err := store.LoadPlayer("p1")
	require.NoError(t, err)
	assert.Zero(t, got.GamesStarted)
}

func TestJSONStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	store, err := persistence.NewJSONStore(path)
	require.NoError(t, err)
	testStorage(t, store)
	require.NoError(t, store.Close())

	reopened, err := persistence.NewJSONStore(path)
	require.NoError(t, err)
	got, err := reopened.LoadPlayerByUsername("mei")
	require.NoError(t, err)
	assert.Equal(t, 1, got.GamesSolved)
	games, err := reopened.ListGames("p1")
	require.NoError(t, err)
	assert.Len(t, games, 2)
}

func TestBadgerStore(t *testing.T) {
	dir := t.TempDir()
	store, err := persistence.NewBadgerStore(dir)
	require.NoError(t, err)
	testStorage(t, store)
	require.NoError(t, store.Close())
	require.NoError(t, store.Close())

	_, err = store.LoadPlayer("p1")
	assert.Error(t, err)

	reopened, err := persistence.NewBadgerStore(dir)
	require.NoError(t, err)
	defer reopened.Close()
	got, err := reopened.LoadGame("g1")
	require.NoError(t, err)
	assert.True(t, got.Solved)
}
