package draw

import "github.com/hruan122/lootbox-backend/internal/card"

// Pity guarantees a card of at least MinRarity once Threshold draws
// pass without one. The guaranteed draw is a two-stage draw forced
// into the rarity's span; ordinary draws that happen to hit the tier
// also reset the counter. A guaranteed draw that settles as nothing
// (the tier's stock just ran out) does not consume the pity: the
// counter holds and the guarantee fires again on the next draw.
//
// Pity state is per caller (e.g. per player per pool) and is not
// synchronized; callers sharing one Pity must serialize access.
type Pity struct {
	Threshold int         // draws since last hit before the guarantee fires
	MinRarity card.Rarity // tier the guarantee draws from
	Count     int         // draws since last qualifying hit
}

// DrawWithPity performs one draw under pity rules. With an invalid
// threshold it degrades to a plain draw.
func (e *Engine) DrawWithPity(ps *Pity) (*card.Card, error) {
	if ps == nil || ps.Threshold <= 0 {
		return e.Draw(), nil
	}

	// guarantee fires on the draw that reaches the threshold
	if ps.Count+1 >= ps.Threshold {
		c, err := e.DrawWithin(ps.MinRarity)
		if err != nil {
			return nil, err
		}
		if !c.IsNothing() {
			ps.Count = 0
		}
		return c, nil
	}

	c := e.Draw()
	if !c.IsNothing() && c.Rarity() >= ps.MinRarity {
		ps.Count = 0
	} else {
		ps.Count++
	}
	return c, nil
}
