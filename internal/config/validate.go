package config

import (
	"fmt"
	"strings"
)

// ValidateRaw checks semantic constraints of a merged pool config and
// reports every violation at once.
func ValidateRaw(cfg RawConfig) error {
	var errs []string

	for r, mass := range cfg.Rarities {
		if !(mass >= 0 && mass <= 1) {
			errs = append(errs, fmt.Sprintf("rarities[%d] must be in [0,1]", r))
		}
	}

	if len(cfg.Cards) == 0 {
		errs = append(errs, "cards must not be empty")
	}
	seen := make(map[string]bool, len(cfg.Cards))
	for i, c := range cfg.Cards {
		if c.Name == "" {
			errs = append(errs, fmt.Sprintf("cards[%d].name is required", i))
		} else if seen[c.Name] {
			errs = append(errs, fmt.Sprintf("cards[%d].name %q is duplicated", i, c.Name))
		} else {
			seen[c.Name] = true
		}

		if c.Preset != nil && c.Ratio != nil {
			errs = append(errs, fmt.Sprintf("cards[%d]: preset and ratio are mutually exclusive", i))
		}
		if c.Preset != nil && !(*c.Preset >= 0 && *c.Preset <= 1) {
			errs = append(errs, fmt.Sprintf("cards[%d].preset must be in [0,1]", i))
		}
		if c.Ratio != nil && !(*c.Ratio > 0) {
			errs = append(errs, fmt.Sprintf("cards[%d].ratio must be > 0", i))
		}
		if c.Stock != nil && *c.Stock <= 0 {
			errs = append(errs, fmt.Sprintf("cards[%d].stock must be >= 1", i))
		}
		if c.Preset == nil {
			if _, ok := cfg.Rarities[c.Rarity]; !ok {
				errs = append(errs, fmt.Sprintf("cards[%d]: rarity %d has no mass entry", i, c.Rarity))
			}
		}
	}

	if cfg.Pity != nil {
		if cfg.Pity.Threshold <= 0 {
			errs = append(errs, "pity.threshold must be >= 1")
		}
		if _, ok := cfg.Rarities[cfg.Pity.Rarity]; !ok {
			errs = append(errs, fmt.Sprintf("pity.rarity %d has no mass entry", cfg.Pity.Rarity))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
