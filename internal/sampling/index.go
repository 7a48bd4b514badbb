package sampling

import (
	"errors"
	"fmt"
	"sort"

	"github.com/hruan122/lootbox-backend/internal/card"
)

var (
	// ErrRange reports invalid sub-range search bounds.
	ErrRange = errors.New("search range out of bounds")
	// ErrEmptyIndex reports a build over zero drawable entries.
	ErrEmptyIndex = errors.New("cannot build an empty sampling index")
)

// entry records the cumulative probability accumulated before its card
// begins; the card owns [start, nextStart).
type entry struct {
	start float64
	card  *card.Card
}

// Index maps a uniform draw value in [0,1) to a card via cumulative
// probabilities. The first card's interval starts at 0 and is kept out
// of the breakpoint list as leftmost, so probes below the first
// recorded breakpoint still resolve.
//
// An Index is immutable once built; rebuild after any change to the
// pool's resolved probabilities.
type Index struct {
	leftmost *card.Card
	entries  []entry
	nothing  *card.Card // fallback outcome; in the table only when residual > 0
	total    float64    // cumulative sum over all positions, ~1
	spans    map[card.Rarity][2]int
}

// Build constructs an index from resolved cards and the residual
// nothing-probability. Removed and zero-probability cards are skipped.
// Cards are ordered by ascending rarity (stable within a rarity) so
// every rarity occupies a contiguous position span; the nothing entry,
// when present, sits at the end.
func Build(cards []*card.Card, nothingProb float64) (*Index, error) {
	drawable := make([]*card.Card, 0, len(cards))
	for _, c := range cards {
		if c.IsRemoved() || c.RealProbability() <= 0 {
			continue
		}
		drawable = append(drawable, c)
	}
	sort.SliceStable(drawable, func(i, j int) bool {
		return drawable[i].Rarity() < drawable[j].Rarity()
	})

	nothing := card.Nothing()
	if nothingProb > 0 {
		nothing.SetRealProbability(nothingProb)
		drawable = append(drawable, nothing)
	}
	if len(drawable) == 0 {
		return nil, ErrEmptyIndex
	}

	ix := &Index{
		leftmost: drawable[0],
		nothing:  nothing,
		spans:    make(map[card.Rarity][2]int),
	}
	var cum float64
	for pos, c := range drawable {
		if pos > 0 {
			ix.entries = append(ix.entries, entry{start: cum, card: c})
		}
		cum += c.RealProbability()

		if !c.IsNothing() {
			span, ok := ix.spans[c.Rarity()]
			if !ok {
				span = [2]int{pos, pos}
			}
			span[1] = pos + 1
			ix.spans[c.Rarity()] = span
		}
	}
	ix.total = cum
	return ix, nil
}

// Len is the number of addressable positions: leftmost plus every
// breakpoint entry.
func (ix *Index) Len() int { return 1 + len(ix.entries) }

// Nothing returns the index's nothing outcome, used as the fallback
// when a claim on a limited card fails.
func (ix *Index) Nothing() *card.Card { return ix.nothing }

// startAt returns the interval-start key of a position; position Len()
// addresses the end of the whole span.
func (ix *Index) startAt(pos int) float64 {
	if pos == 0 {
		return 0
	}
	if pos > len(ix.entries) {
		return ix.total
	}
	return ix.entries[pos-1].start
}

// Search returns the card whose interval [start, nextStart) contains x.
// Intervals are inclusive on the left and exclusive on the right;
// Search(0) is always the leftmost card.
//
// The binary search runs over breakpoint entries; when the range
// collapses to one element the probe may still sit below that entry's
// own start, in which case the owner is the predecessor, or leftmost at
// position 0. Starts are recorded at each card's beginning, so this
// left-check is what keeps boundary probes from landing one card high.
func (ix *Index) Search(x float64) *card.Card {
	if len(ix.entries) == 0 {
		return ix.leftmost
	}
	lo, hi := 0, len(ix.entries)-1
	for lo < hi {
		mid := (lo + hi) / 2
		if ix.entries[mid].start <= x {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if x >= ix.entries[lo].start {
		return ix.entries[lo].card
	}
	if lo == 0 {
		return ix.leftmost
	}
	return ix.entries[lo-1].card
}

// SearchRange constrains the search to positions [start, end) and
// remaps x linearly onto that sub-range's probability span:
// x' = x*(max-min)+min with min/max the interval-start keys at the two
// positions. end may equal Len(), addressing the end of the whole
// index. Enables two-stage draws (rarity span first, card within it)
// without rebuilding.
func (ix *Index) SearchRange(x float64, start, end int) (*card.Card, error) {
	if start < 0 || end > ix.Len() || start > end {
		return nil, fmt.Errorf("%w: [%d, %d) of %d", ErrRange, start, end, ix.Len())
	}
	min := ix.startAt(start)
	max := ix.startAt(end)
	return ix.Search(x*(max-min) + min), nil
}

// Span returns the contiguous position range [start, end) occupied by a
// rarity, suitable for SearchRange. ok is false when no drawable card
// of that rarity is indexed.
func (ix *Index) Span(r card.Rarity) (start, end int, ok bool) {
	span, ok := ix.spans[r]
	return span[0], span[1], ok
}
