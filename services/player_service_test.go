package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mahjong-realm/persistence"
)

func TestGetOrCreatePlayer(t *testing.T) {
	store := persistence.NewMemoryStore()
	ps := NewPlayerService(store)

	a, err := ps.GetOrCreatePlayer("  mei ")
	require.NoError(t, err)
	assert.Equal(t, "mei", a.Username)

	b, err := ps.GetOrCreatePlayer("mei")
	require.NoError(t, err)
	assert.Equal(t, a.ID, b.ID)

	// A fresh service finds the stored player.
	c, err := NewPlayerService(store).GetOrCreatePlayer("mei")
	require.NoError(t, err)
	assert.Equal(t, a.ID, c.ID)

	for _, bad := range []string{"", "   ", "abcdefghijklmnopqrstuvwxyz0123456789"} {
		_, err := ps.GetOrCreatePlayer(bad)
		assert.ErrorIs(t, err, ErrInvalidUsername, "username %q", bad)
	}
}

func TestRecordSolveKeepsBest(t *testing.T) {
	store := persistence.NewMemoryStore()
	ps := NewPlayerService(store)
	p, err := ps.GetOrCreatePlayer("mei")
	require.NoError(t, err)

	require.NoError(t, ps.RecordGameStarted(p.ID))
	require.NoError(t, ps.RecordSolve(p.ID, 9*time.Second))
	require.NoError(t, ps.RecordSolve(p.ID, 5*time.Second))
	require.NoError(t, ps.RecordSolve(p.ID, 7*time.Second))

	got, err := ps.GetPlayerByUsername("mei")
	require.NoError(t, err)
	assert.Equal(t, 1, got.GamesStarted)
	assert.Equal(t, 3, got.GamesSolved)
	assert.Equal(t, int64(5000), got.BestSolveMs)

	assert.ErrorIs(t, ps.RecordSolve("ghost", time.Second), persistence.ErrNotFound)
}
