package pool_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hruan122/lootbox-backend/internal/card"
	"github.com/hruan122/lootbox-backend/internal/pool"
)

func mustCard(t *testing.T, r card.Rarity, name string, opts ...card.Option) *card.Card {
	t.Helper()
	c, err := card.NewValue(r, name, opts...)
	require.NoError(t, err)
	return c
}

func TestResolveRatioSharing(t *testing.T) {
	// one rarity, ratios 1:3, mass 0.4 -> 0.1 and 0.3, nothing 0.6
	a := mustCard(t, 4, "a", card.WithRatio(1))
	b := mustCard(t, 4, "b", card.WithRatio(3))

	nothing, err := pool.Resolve([]*card.Card{a, b}, pool.MassTable{4: 0.4})
	require.NoError(t, err)

	assert.InDelta(t, 0.1, a.RealProbability(), pool.Tolerance)
	assert.InDelta(t, 0.3, b.RealProbability(), pool.Tolerance)
	assert.InDelta(t, 0.6, nothing, pool.Tolerance)
}

func TestResolveDefaultWeightIsOne(t *testing.T) {
	a := mustCard(t, 3, "a") // no ratio set: weighs 1
	b := mustCard(t, 3, "b", card.WithRatio(1))

	nothing, err := pool.Resolve([]*card.Card{a, b}, pool.MassTable{3: 0.5})
	require.NoError(t, err)

	assert.InDelta(t, 0.25, a.RealProbability(), pool.Tolerance)
	assert.InDelta(t, 0.25, b.RealProbability(), pool.Tolerance)
	assert.InDelta(t, 0.5, nothing, pool.Tolerance)
}

func TestResolvePresetBypassesMass(t *testing.T) {
	// presets are pool-relative and do not consume the rarity's mass
	preset := mustCard(t, 5, "preset", card.WithPreset(0.05))
	ratio := mustCard(t, 5, "ratio", card.WithRatio(1))

	nothing, err := pool.Resolve([]*card.Card{preset, ratio}, pool.MassTable{5: 0.2})
	require.NoError(t, err)

	assert.InDelta(t, 0.05, preset.RealProbability(), pool.Tolerance)
	assert.InDelta(t, 0.2, ratio.RealProbability(), pool.Tolerance)
	assert.InDelta(t, 0.75, nothing, pool.Tolerance)
}

func TestResolveSumsToOne(t *testing.T) {
	cards := []*card.Card{
		mustCard(t, 3, "c1", card.WithRatio(1)),
		mustCard(t, 3, "c2", card.WithRatio(2)),
		mustCard(t, 3, "c3", card.WithRatio(4)),
		mustCard(t, 4, "c4"),
		mustCard(t, 4, "c5", card.WithPreset(0.07)),
		mustCard(t, 5, "c6", card.WithRatio(0.5)),
	}
	removed := mustCard(t, 5, "gone", card.WithRatio(9))
	removed.Remove()
	cards = append(cards, removed)

	masses := pool.MassTable{3: 0.6, 4: 0.2, 5: 0.05}
	nothing, err := pool.Resolve(cards, masses)
	require.NoError(t, err)

	var sum float64
	for _, c := range cards {
		sum += c.RealProbability()
	}
	assert.InDelta(t, 1.0, sum+nothing, pool.Tolerance)
	assert.Equal(t, 0.0, removed.RealProbability(), "removed cards resolve to exactly 0")
}

func TestResolveEmptyPool(t *testing.T) {
	nothing, err := pool.Resolve(nil, pool.MassTable{})
	require.NoError(t, err)
	assert.Equal(t, 1.0, nothing)
}

func TestResolvePresetsSumToOne(t *testing.T) {
	a := mustCard(t, 3, "a", card.WithPreset(0.4))
	b := mustCard(t, 4, "b", card.WithPreset(0.6))

	nothing, err := pool.Resolve([]*card.Card{a, b}, pool.MassTable{})
	require.NoError(t, err)
	assert.InDelta(t, 0.0, nothing, pool.Tolerance)
	assert.GreaterOrEqual(t, nothing, 0.0, "nothing never goes negative")
}

func TestResolveOvercommitted(t *testing.T) {
	a := mustCard(t, 3, "a", card.WithPreset(0.7))
	b := mustCard(t, 4, "b", card.WithPreset(0.7))

	_, err := pool.Resolve([]*card.Card{a, b}, pool.MassTable{})
	require.ErrorIs(t, err, pool.ErrOvercommitted)
}

func TestResolveRejectsBadMassTable(t *testing.T) {
	a := mustCard(t, 3, "a")
	_, err := pool.Resolve([]*card.Card{a}, pool.MassTable{3: 1.5})
	require.ErrorIs(t, err, pool.ErrMassTable)

	_, err = pool.Resolve([]*card.Card{a}, pool.MassTable{3: math.NaN()})
	require.ErrorIs(t, err, pool.ErrMassTable)
}

func TestResolveMissingMassGivesZero(t *testing.T) {
	a := mustCard(t, 7, "exotic")
	nothing, err := pool.Resolve([]*card.Card{a}, pool.MassTable{3: 0.5})
	require.NoError(t, err)
	assert.Equal(t, 0.0, a.RealProbability())
	assert.InDelta(t, 1.0, nothing, pool.Tolerance)
}
