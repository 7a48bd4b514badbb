package draw

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
)

// RandomSource supplies the uniform draw values consumed by the engine.
type RandomSource interface {
	Float64() float64 // [0, 1)
}

// cryptoSource is the default source: 53 bits from crypto/rand mapped
// onto [0, 1), falling back to math/rand/v2 if the kernel read fails.
type cryptoSource struct{}

func (cryptoSource) Float64() float64 {
	var buf [8]byte
	if _, err := cryptorand.Read(buf[:]); err != nil {
		return rand.Float64()
	}
	u := binary.BigEndian.Uint64(buf[:]) >> 11 // keep the top 53 bits
	return float64(u) / (1 << 53)
}

// DefaultSource returns the crypto-backed source.
func DefaultSource() RandomSource { return cryptoSource{} }

// seededSource is a deterministic PCG source for simulation and tests.
type seededSource struct{ r *rand.Rand }

// NewSeededSource returns a reproducible source for the given seed.
func NewSeededSource(seed uint64) RandomSource {
	return &seededSource{r: rand.New(rand.NewPCG(seed, 0))}
}

func (s *seededSource) Float64() float64 { return s.r.Float64() }
