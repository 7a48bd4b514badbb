package pool

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/hruan122/lootbox-backend/internal/card"
)

var (
	// ErrOvercommitted reports a pool whose assigned probabilities sum
	// past 1. This is a configuration error; it is never silently
	// renormalized.
	ErrOvercommitted = errors.New("pool probability overcommitted")
	// ErrMassTable reports an invalid rarity mass entry.
	ErrMassTable = errors.New("invalid rarity mass table")
)

// Tolerance bounds floating-point drift on the sum-to-one property.
const Tolerance = 1e-9

// MassTable maps each rarity to the probability mass its non-preset
// cards share. Masses need not sum to 1; the shortfall becomes the
// nothing-probability.
type MassTable map[card.Rarity]float64

// Validate checks each mass is a finite probability.
func (m MassTable) Validate() error {
	for r, mass := range m {
		if math.IsNaN(mass) || math.IsInf(mass, 0) || mass < 0 || mass > 1 {
			return fmt.Errorf("%w: rarity %v has mass %v", ErrMassTable, r, mass)
		}
	}
	return nil
}

// Resolve assigns every card its final pool-relative probability and
// returns the residual nothing-probability.
//
// Preset cards take their preset as-is. Within each rarity, the cards
// without a preset share the rarity's mass proportionally to their
// ratios (default 1). Removed cards resolve to exactly 0. The result
// satisfies sum(real) + nothing == 1 within Tolerance; a negative
// residual beyond tolerance fails with ErrOvercommitted.
func Resolve(cards []*card.Card, masses MassTable) (float64, error) {
	if err := masses.Validate(); err != nil {
		return 0, err
	}

	type group struct {
		weightSum float64
		members   []*card.Card
	}
	groups := make(map[card.Rarity]*group)

	var total float64
	for _, c := range cards {
		if c.IsRemoved() {
			c.SetRealProbability(0)
			continue
		}
		if p, ok := c.Preset(); ok {
			// pool-relative and already final
			c.SetRealProbability(p)
			total += p
			continue
		}
		g := groups[c.Rarity()]
		if g == nil {
			g = &group{}
			groups[c.Rarity()] = g
		}
		g.weightSum += c.RatioWeight()
		g.members = append(g.members, c)
	}

	// iterate rarities in a fixed order so float accumulation is
	// deterministic run to run
	rarities := make([]card.Rarity, 0, len(groups))
	for r := range groups {
		rarities = append(rarities, r)
	}
	sort.Slice(rarities, func(i, j int) bool { return rarities[i] < rarities[j] })

	for _, r := range rarities {
		g := groups[r]
		mass := masses[r] // absent rarity => mass 0 => cards resolve to 0
		for _, c := range g.members {
			p := mass * (c.RatioWeight() / g.weightSum)
			c.SetRealProbability(p)
			total += p
		}
	}

	nothing := 1 - total
	if nothing < -Tolerance {
		return 0, fmt.Errorf("%w: assigned total %.12f", ErrOvercommitted, total)
	}
	if nothing < 0 {
		nothing = 0
	}
	return nothing, nil
}
