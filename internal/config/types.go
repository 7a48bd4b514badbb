package config

// RawConfig is one pool definition loaded from YAML, before semantic
// validation. Per-pool files override the shared default file.
type RawConfig struct {
	Version  string          `yaml:"version"`
	Rarities map[int]float64 `yaml:"rarities"` // rarity -> probability mass
	Cards    []CardConfig    `yaml:"cards"`
	Pity     *PityConfig     `yaml:"pity,omitempty"`
	Notes    string          `yaml:"notes,omitempty"`
}

// CardConfig describes one card entry. Preset fixes the pool-relative
// probability directly; Ratio weights the card against same-rarity
// entries; at most one of the two may be set. Stock makes the card
// limited.
type CardConfig struct {
	Name   string   `yaml:"name"`
	Rarity int      `yaml:"rarity"`
	Preset *float64 `yaml:"preset,omitempty"`
	Ratio  *float64 `yaml:"ratio,omitempty"`
	Stock  *int64   `yaml:"stock,omitempty"`
}

// PityConfig enables a guaranteed tier hit after Threshold dry draws.
type PityConfig struct {
	Threshold int `yaml:"threshold"`
	Rarity    int `yaml:"rarity"`
}
