package config

import (
	"fmt"

	"github.com/hruan122/lootbox-backend/internal/card"
	"github.com/hruan122/lootbox-backend/internal/draw"
	"github.com/hruan122/lootbox-backend/internal/pool"
)

// BuildPool materializes a validated config into a resolved pool.
func BuildPool(cfg RawConfig) (*pool.Pool, error) {
	masses := make(pool.MassTable, len(cfg.Rarities))
	for r, mass := range cfg.Rarities {
		masses[card.Rarity(r)] = mass
	}

	cards := make([]*card.Card, 0, len(cfg.Cards))
	for i, cc := range cfg.Cards {
		var opts []card.Option
		if cc.Preset != nil {
			opts = append(opts, card.WithPreset(*cc.Preset))
		}
		if cc.Ratio != nil {
			opts = append(opts, card.WithRatio(*cc.Ratio))
		}
		if cc.Stock != nil {
			opts = append(opts, card.WithStock(*cc.Stock))
		}
		c, err := card.NewValue(card.Rarity(cc.Rarity), cc.Name, opts...)
		if err != nil {
			return nil, fmt.Errorf("cards[%d] %q: %w", i, cc.Name, err)
		}
		cards = append(cards, c)
	}

	return pool.New(masses, cards...)
}

// BuildPity materializes the optional pity block; nil when absent.
func BuildPity(cfg RawConfig) *draw.Pity {
	if cfg.Pity == nil {
		return nil
	}
	return &draw.Pity{
		Threshold: cfg.Pity.Threshold,
		MinRarity: card.Rarity(cfg.Pity.Rarity),
	}
}
