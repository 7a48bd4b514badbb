package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Paths resolves the on-disk layout: a shared default file plus one
// file per pool.
type Paths struct {
	BaseDir string // e.g. /opt/app/config
}

func (p Paths) DefaultPath() string {
	return filepath.Join(p.BaseDir, "pools", "default.yaml")
}

func (p Paths) PoolPath(pool string) string {
	return filepath.Join(p.BaseDir, "pools", pool+".yaml")
}

// Loader reads YAML pool definitions and merges default under pool.
// Merged results are cached until Invalidate.
type Loader struct {
	paths Paths

	mu    sync.RWMutex
	cache map[string]RawConfig // key: pool name
}

// NewLoader creates a loader rooted at baseDir.
func NewLoader(baseDir string) *Loader {
	return &Loader{
		paths: Paths{BaseDir: baseDir},
		cache: make(map[string]RawConfig),
	}
}

// WatchPaths lists the files whose changes should invalidate the
// cache for the given pools.
func (l *Loader) WatchPaths(pools ...string) []string {
	out := []string{l.paths.DefaultPath()}
	for _, p := range pools {
		out = append(out, l.paths.PoolPath(p))
	}
	return out
}

// Load returns the merged, validated config for a pool: the default
// file first, then the pool file layered on top. The pool file must
// exist; the default file is optional.
func (l *Loader) Load(pool string) (RawConfig, error) {
	l.mu.RLock()
	if cfg, ok := l.cache[pool]; ok {
		l.mu.RUnlock()
		return cfg, nil
	}
	l.mu.RUnlock()

	defCfg, err := readYAML(l.paths.DefaultPath())
	if err != nil {
		return RawConfig{}, fmt.Errorf("read default: %w", err)
	}
	poolCfg, err := readYAML(l.paths.PoolPath(pool))
	if err != nil {
		return RawConfig{}, fmt.Errorf("read pool %q: %w", pool, err)
	}
	if poolCfg.Version == "" && len(poolCfg.Cards) == 0 {
		return RawConfig{}, fmt.Errorf("pool %q: no config found", pool)
	}

	merged := mergeRaw(defCfg, poolCfg)
	if err := ValidateRaw(merged); err != nil {
		return RawConfig{}, fmt.Errorf("pool %q: %w", pool, err)
	}

	l.mu.Lock()
	l.cache[pool] = merged
	l.mu.Unlock()

	return merged, nil
}

// Invalidate clears the cache; the watcher calls this when any config
// file changes on disk.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache = make(map[string]RawConfig)
}

// readYAML loads one file. A missing file yields a zero config so the
// default layer stays optional.
func readYAML(path string) (RawConfig, error) {
	var cfg RawConfig
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return RawConfig{}, nil
		}
		return RawConfig{}, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return RawConfig{}, err
	}
	return cfg, nil
}

// mergeRaw layers b over a: scalars and the pity block override when
// set in b, the rarity table merges per entry, and a non-empty card
// list in b replaces a's list outright (partial card merges would be
// ambiguous).
func mergeRaw(a, b RawConfig) RawConfig {
	out := a

	if b.Version != "" {
		out.Version = b.Version
	}
	if b.Notes != "" {
		out.Notes = b.Notes
	}

	if len(b.Rarities) > 0 {
		merged := make(map[int]float64, len(a.Rarities)+len(b.Rarities))
		for r, m := range a.Rarities {
			merged[r] = m
		}
		for r, m := range b.Rarities {
			merged[r] = m
		}
		out.Rarities = merged
	}

	if len(b.Cards) > 0 {
		out.Cards = append([]CardConfig(nil), b.Cards...)
	}

	if b.Pity != nil {
		c := *b.Pity
		out.Pity = &c
	}

	return out
}
