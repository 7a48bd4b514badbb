package pool_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hruan122/lootbox-backend/internal/card"
	"github.com/hruan122/lootbox-backend/internal/pool"
)

func TestPoolRebuildOnRemove(t *testing.T) {
	a := mustCard(t, 4, "a", card.WithRatio(1))
	b := mustCard(t, 4, "b", card.WithRatio(1))

	p, err := pool.New(pool.MassTable{4: 0.5}, a, b)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, a.RealProbability(), pool.Tolerance)

	require.NoError(t, p.Remove(a))

	// b inherits the whole rarity mass; a is gone from the index
	assert.Equal(t, 0.0, a.RealProbability())
	assert.InDelta(t, 0.5, b.RealProbability(), pool.Tolerance)

	idx := p.Index()
	for _, x := range []float64{0, 0.1, 0.25, 0.49, 0.5, 0.75, 0.999} {
		got := idx.Search(x)
		assert.False(t, got.Equal(a), "removed card must never be returned, x=%v", x)
	}
}

func TestPoolAddReresolves(t *testing.T) {
	a := mustCard(t, 4, "a", card.WithRatio(1))
	p, err := pool.New(pool.MassTable{4: 0.4}, a)
	require.NoError(t, err)
	assert.InDelta(t, 0.4, a.RealProbability(), pool.Tolerance)

	b := mustCard(t, 4, "b", card.WithRatio(3))
	require.NoError(t, p.Add(b))

	assert.InDelta(t, 0.1, a.RealProbability(), pool.Tolerance)
	assert.InDelta(t, 0.3, b.RealProbability(), pool.Tolerance)
	assert.InDelta(t, 0.6, p.NothingProbability(), pool.Tolerance)
}

func TestPoolAddRollsBackOnError(t *testing.T) {
	a := mustCard(t, 3, "a", card.WithPreset(0.5))
	p, err := pool.New(pool.MassTable{}, a)
	require.NoError(t, err)

	bad := mustCard(t, 4, "bad", card.WithPreset(0.9))
	err = p.Add(bad)
	require.ErrorIs(t, err, pool.ErrOvercommitted)

	// the rejected card is gone and the prior resolution still serves
	entries, nothing := p.Probabilities()
	require.Len(t, entries, 1)
	assert.Equal(t, "a", entries[0].Name)
	assert.InDelta(t, 0.5, entries[0].Probability, pool.Tolerance)
	assert.InDelta(t, 0.5, nothing, pool.Tolerance)
	assert.InDelta(t, 1.0, entries[0].Probability+nothing, pool.Tolerance)

	// the pool is not poisoned: a valid add still works
	ok := mustCard(t, 4, "ok", card.WithPreset(0.2))
	require.NoError(t, p.Add(ok))
	entries, nothing = p.Probabilities()
	require.Len(t, entries, 2)
	assert.InDelta(t, 0.3, nothing, pool.Tolerance)
}

func TestPoolSetMassesRestoresProbabilities(t *testing.T) {
	preset := mustCard(t, 3, "preset", card.WithPreset(0.6))
	ratio := mustCard(t, 4, "ratio")
	p, err := pool.New(pool.MassTable{4: 0.3}, preset, ratio)
	require.NoError(t, err)

	// valid table, but overcommitted once resolved: Resolve has
	// already rewritten probabilities by the time it fails
	err = p.SetMasses(pool.MassTable{4: 0.5})
	require.ErrorIs(t, err, pool.ErrOvercommitted)

	assert.InDelta(t, 0.6, preset.RealProbability(), pool.Tolerance)
	assert.InDelta(t, 0.3, ratio.RealProbability(), pool.Tolerance)
	assert.InDelta(t, 0.1, p.NothingProbability(), pool.Tolerance)
}

func TestPoolSetMassesRollsBackOnError(t *testing.T) {
	a := mustCard(t, 4, "a")
	p, err := pool.New(pool.MassTable{4: 0.4}, a)
	require.NoError(t, err)

	err = p.SetMasses(pool.MassTable{4: 2.0})
	require.ErrorIs(t, err, pool.ErrMassTable)

	// previous resolution still serves
	assert.InDelta(t, 0.6, p.NothingProbability(), pool.Tolerance)
	require.NotNil(t, p.Index())
}

func TestPoolProbabilitiesSnapshot(t *testing.T) {
	a := mustCard(t, 5, "a", card.WithRatio(1), card.WithStock(10))
	b := mustCard(t, 3, "b", card.WithPreset(0.2))

	p, err := pool.New(pool.MassTable{5: 0.1, 3: 0}, a, b)
	require.NoError(t, err)

	entries, nothing := p.Probabilities()
	require.Len(t, entries, 2)
	assert.InDelta(t, 0.7, nothing, pool.Tolerance)

	byName := map[string]pool.Entry{}
	for _, e := range entries {
		byName[e.Name] = e
	}
	assert.True(t, byName["a"].Limited)
	assert.Equal(t, int64(10), byName["a"].Remain)
	assert.InDelta(t, 0.1, byName["a"].Probability, pool.Tolerance)
	assert.InDelta(t, 0.2, byName["b"].Probability, pool.Tolerance)
}
