package draw

import (
	"errors"
	"fmt"

	"github.com/hruan122/lootbox-backend/internal/card"
	"github.com/hruan122/lootbox-backend/internal/pool"
)

// ErrNoRarity reports a two-stage draw against a rarity with no
// drawable cards in the current index.
var ErrNoRarity = errors.New("rarity has no drawable cards")

// Engine resolves uniform random values into cards against a pool's
// current sampling index and settles stock for limited cards.
//
// Engines are safe for concurrent use: each draw takes an immutable
// index snapshot, and stock claims are lock-free.
type Engine struct {
	pool *pool.Pool
	rng  RandomSource
}

// NewEngine wires an engine to a pool. A nil rng selects the
// crypto-backed default.
func NewEngine(p *pool.Pool, rng RandomSource) *Engine {
	if rng == nil {
		rng = DefaultSource()
	}
	return &Engine{pool: p, rng: rng}
}

// Draw performs one independent draw. A nothing candidate is returned
// directly. Otherwise the candidate's stock is claimed; if a racing
// draw just exhausted it, the draw falls back to the nothing outcome
// rather than re-searching, keeping latency bounded and avoiding
// renormalization mid-draw.
func (e *Engine) Draw() *card.Card {
	idx := e.pool.Index()
	c := idx.Search(e.rng.Float64())
	if c.IsNothing() {
		return c
	}
	if c.Claim() {
		return c
	}
	return idx.Nothing()
}

// DrawWithin draws only among cards of one rarity, using the
// constrained sub-range search over the rarity's contiguous span.
// Stock handling matches Draw.
func (e *Engine) DrawWithin(r card.Rarity) (*card.Card, error) {
	idx := e.pool.Index()
	start, end, ok := idx.Span(r)
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrNoRarity, r)
	}
	c, err := idx.SearchRange(e.rng.Float64(), start, end)
	if err != nil {
		return nil, err
	}
	if c.IsNothing() {
		return c, nil
	}
	if c.Claim() {
		return c, nil
	}
	return idx.Nothing(), nil
}
