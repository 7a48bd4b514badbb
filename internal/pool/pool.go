package pool

import (
	"sync"

	"github.com/hruan122/lootbox-backend/internal/card"
	"github.com/hruan122/lootbox-backend/internal/sampling"
)

// Pool owns a card set and its rarity mass table. It is the only
// writer of resolved probabilities and removed flags; every change to
// the pool's composition re-resolves and rebuilds the sampling index
// under the write lock, while draws read the current index under the
// read lock. Per-card stock claims stay lock-free.
type Pool struct {
	mu      sync.RWMutex
	cards   []*card.Card
	masses  MassTable
	idx     *sampling.Index
	nothing float64
}

// New resolves the given cards against the mass table and builds the
// initial index.
func New(masses MassTable, cards ...*card.Card) (*Pool, error) {
	p := &Pool{
		cards:  append([]*card.Card(nil), cards...),
		masses: masses,
	}
	if err := p.rebuild(); err != nil {
		return nil, err
	}
	return p, nil
}

// rebuild re-runs resolution and index construction. Caller holds the
// write lock (or the pool is not yet shared).
func (p *Pool) rebuild() error {
	nothing, err := Resolve(p.cards, p.masses)
	if err != nil {
		return err
	}
	idx, err := sampling.Build(p.cards, nothing)
	if err != nil {
		return err
	}
	p.nothing = nothing
	p.idx = idx
	return nil
}

// restore re-resolves after a failed rebuild, once the caller has put
// the prior composition back. A failed Resolve has already overwritten
// card probabilities, so this rewrites them to match the still-serving
// index; the prior inputs resolved once before, so this cannot fail.
func (p *Pool) restore() {
	if nothing, err := Resolve(p.cards, p.masses); err == nil {
		p.nothing = nothing
	}
}

// Add inserts cards and re-resolves the whole pool. A failed
// resolution rejects the cards: the prior set and its probabilities
// are restored and the previous index keeps serving.
func (p *Pool) Add(cards ...*card.Card) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	prev := p.cards
	p.cards = append(append([]*card.Card(nil), prev...), cards...)
	if err := p.rebuild(); err != nil {
		p.cards = prev
		p.restore()
		return err
	}
	return nil
}

// Remove marks a card removed, zeroing its probability, and
// re-resolves. The card stays in the set so its identity remains
// observable; it is never returned by a search again. On a failed
// rebuild the removal is reversed.
func (p *Pool) Remove(c *card.Card) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	c.Remove()
	if err := p.rebuild(); err != nil {
		c.Reset()
		p.restore()
		return err
	}
	return nil
}

// SetMasses swaps the rarity mass table and re-resolves, restoring the
// prior table and probabilities on failure.
func (p *Pool) SetMasses(masses MassTable) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	prev := p.masses
	p.masses = masses
	if err := p.rebuild(); err != nil {
		p.masses = prev
		p.restore()
		return err
	}
	return nil
}

// Index returns the current sampling index snapshot. The index is
// immutable; callers may search it freely while the pool rebuilds a
// new one.
func (p *Pool) Index() *sampling.Index {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.idx
}

// NothingProbability returns the residual probability from the latest
// resolution.
func (p *Pool) NothingProbability() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.nothing
}

// Entry is one row of a pool probability snapshot.
type Entry struct {
	Name        string      `json:"name"`
	Rarity      card.Rarity `json:"rarity"`
	Probability float64     `json:"probability"`
	Removed     bool        `json:"removed,omitempty"`
	Limited     bool        `json:"limited,omitempty"`
	Remain      int64       `json:"remain,omitempty"`
}

// Probabilities reports every card's resolved state plus the nothing
// residual, for display and auditing.
func (p *Pool) Probabilities() ([]Entry, float64) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]Entry, 0, len(p.cards))
	for _, c := range p.cards {
		out = append(out, Entry{
			Name:        c.Name(),
			Rarity:      c.Rarity(),
			Probability: c.RealProbability(),
			Removed:     c.IsRemoved(),
			Limited:     c.IsLimited(),
			Remain:      c.RemainCount(),
		})
	}
	return out, p.nothing
}
