package card

import (
	"errors"
	"fmt"

	"go.uber.org/atomic"
)

// ErrCardConfig reports an invalid or conflicting card configuration,
// e.g. setting both a preset probability and a same-rarity ratio.
var ErrCardConfig = errors.New("invalid card config")

// Rarity groups cards for probability allocation: the pool assigns a
// probability mass per rarity, then cards of that rarity share it.
type Rarity int

func (r Rarity) String() string { return fmt.Sprintf("%d-star", int(r)) }

// Attr is a bitmask of card attributes.
type Attr uint8

const (
	// AttrRemoved marks a card out of the pool; its probability is 0.
	AttrRemoved Attr = 1 << iota
	// AttrLimited marks a card with finite stock.
	AttrLimited
)

// weightKind tags how a card's draw probability is derived.
// Preset and ratio are mutually exclusive by construction, so the
// illegal dual-set state cannot be represented.
type weightKind uint8

const (
	weightDefault weightKind = iota // shares rarity mass with ratio 1
	weightPreset                    // pool-relative probability, final
	weightRatio                     // weight relative to same-rarity cards
)

// Card is one weighted entry in a draw pool: either the "nothing"
// sentinel that absorbs residual probability, or a value card carrying
// a comparable payload.
//
// The owning pool is the only writer of the resolved probability and
// the removed flag; once a resolution completes those are treated as
// immutable by concurrent readers. Only the remaining-stock counter is
// mutated under concurrency, via Claim.
type Card struct {
	rarity  Rarity
	name    string // display name; payload's string form
	key     any    // comparable payload; nil for the nothing sentinel
	nothing bool

	wkind  weightKind
	wvalue float64

	attrs Attr
	real  float64 // resolved pool-relative probability; resolver-owned

	total  int64        // stock for limited cards; 0 when unlimited
	remain atomic.Int64 // only ever decreases, clamped at -1
}

// Option configures a card at construction time.
type Option func(*Card) error

// WithPreset fixes the card's pool-relative probability, bypassing
// rarity-mass weighting. Conflicts with WithRatio.
func WithPreset(p float64) Option {
	return func(c *Card) error {
		if err := validateProb(p); err != nil {
			return fmt.Errorf("%w: preset %v", ErrCardConfig, p)
		}
		if c.wkind != weightDefault {
			return fmt.Errorf("%w: preset and ratio are mutually exclusive", ErrCardConfig)
		}
		c.wkind = weightPreset
		c.wvalue = p
		return nil
	}
}

// WithRatio weights the card relative to other cards of the same
// rarity that lack a preset. Conflicts with WithPreset.
func WithRatio(w float64) Option {
	return func(c *Card) error {
		if !(w > 0) {
			return fmt.Errorf("%w: ratio %v must be > 0", ErrCardConfig, w)
		}
		if c.wkind != weightDefault {
			return fmt.Errorf("%w: preset and ratio are mutually exclusive", ErrCardConfig)
		}
		c.wkind = weightRatio
		c.wvalue = w
		return nil
	}
}

// WithStock gives the card a finite total count, marking it Limited
// and initializing its remaining stock.
func WithStock(total int64) Option {
	return func(c *Card) error {
		if total <= 0 {
			return fmt.Errorf("%w: stock %d must be > 0", ErrCardConfig, total)
		}
		c.attrs |= AttrLimited
		c.total = total
		c.remain.Store(total)
		return nil
	}
}

// NewValue builds a value card around a comparable payload. The display
// name is the payload's string form; equality delegates to the payload.
func NewValue[T comparable](rarity Rarity, payload T, opts ...Option) (*Card, error) {
	c := &Card{
		rarity: rarity,
		name:   fmt.Sprint(payload),
		key:    payload,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Nothing builds the sentinel card for the "no reward" outcome. All
// nothing cards compare equal regardless of which pool built them.
func Nothing() *Card {
	return &Card{name: "nothing", nothing: true}
}

func (c *Card) Rarity() Rarity  { return c.rarity }
func (c *Card) Name() string    { return c.name }
func (c *Card) String() string  { return c.name }
func (c *Card) IsNothing() bool { return c.nothing }

func (c *Card) IsRemoved() bool { return c.attrs&AttrRemoved != 0 }
func (c *Card) IsLimited() bool { return c.attrs&AttrLimited != 0 }

// Payload returns the value card's payload, or nil for the nothing
// sentinel. Use PayloadOf for a typed view.
func (c *Card) Payload() any { return c.key }

// PayloadOf extracts a typed payload from a card. The second return is
// false for nothing cards and payloads of a different type.
func PayloadOf[T comparable](c *Card) (T, bool) {
	v, ok := c.key.(T)
	return v, ok
}

// Equal reports card identity: nothing cards are all equal to each
// other, value cards compare by payload.
func (c *Card) Equal(o *Card) bool {
	if c == nil || o == nil {
		return c == o
	}
	if c.nothing || o.nothing {
		return c.nothing == o.nothing
	}
	return c.key == o.key
}

// Preset returns the explicit pool-relative probability, if set.
func (c *Card) Preset() (float64, bool) {
	if c.wkind == weightPreset {
		return c.wvalue, true
	}
	return 0, false
}

// RatioWeight returns the card's same-rarity weight; cards configured
// with neither preset nor ratio weigh 1.
func (c *Card) RatioWeight() float64 {
	if c.wkind == weightRatio {
		return c.wvalue
	}
	return 1
}

// RealProbability is the resolved pool-relative probability. It is
// meaningful only after the owning pool has run a resolution.
func (c *Card) RealProbability() float64 { return c.real }

// SetRealProbability is reserved for the owning pool's resolver; a
// removed card is pinned at 0 no matter what the resolver computed.
func (c *Card) SetRealProbability(p float64) {
	if c.IsRemoved() {
		c.real = 0
		return
	}
	c.real = p
}

// Remove takes the card out of the pool and zeroes its probability.
// This is one-way in the normal lifecycle.
func (c *Card) Remove() {
	c.attrs |= AttrRemoved
	c.real = 0
}

// Reset reverses Remove so the owning pool can roll back a removal
// whose rebuild failed. Not part of the normal lifecycle; the pool
// must re-resolve afterwards.
func (c *Card) Reset() {
	c.attrs &^= AttrRemoved
}

// TotalCount returns the configured stock, 0 for unlimited cards.
func (c *Card) TotalCount() int64 { return c.total }

// RemainCount returns the remaining stock, clamped at 0. Unlimited
// cards report 0; check IsLimited first.
func (c *Card) RemainCount() int64 {
	n := c.remain.Load()
	if n < 0 {
		return 0
	}
	return n
}

// Claim attempts to take one unit of stock. Non-limited cards always
// succeed. Limited cards decrement atomically and succeed iff the
// decremented value stayed non-negative; exactly TotalCount claims
// succeed across any number of concurrent callers. A failed claim is
// never retried or incremented back; the counter is clamped so it does
// not drift below -1.
func (c *Card) Claim() bool {
	if !c.IsLimited() {
		return true
	}
	if c.remain.Dec() >= 0 {
		return true
	}
	c.remain.Store(-1)
	return false
}
