package draw

import (
	"math"
	"sort"

	"github.com/hruan122/lootbox-backend/internal/card"
)

// Frequencies summarizes per-outcome hit counts over a fixed draw
// budget, used to audit a pool configuration against its resolved
// probabilities.
type Frequencies struct {
	Draws   int                `json:"draws"`
	Hits    map[string]int     `json:"hits"`    // card name -> count
	Nothing int                `json:"nothing"` // nothing outcomes
	Rates   map[string]float64 `json:"rates"`   // card name -> hits/draws
}

// SimulateFrequencies runs draws independent draws and tallies
// outcomes by card name. Stock claims apply, so limited cards stop
// appearing once exhausted.
func (e *Engine) SimulateFrequencies(draws int) Frequencies {
	out := Frequencies{
		Draws: draws,
		Hits:  make(map[string]int),
		Rates: make(map[string]float64),
	}
	for i := 0; i < draws; i++ {
		c := e.Draw()
		if c.IsNothing() {
			out.Nothing++
			continue
		}
		out.Hits[c.Name()]++
	}
	for name, n := range out.Hits {
		out.Rates[name] = float64(n) / float64(draws)
	}
	return out
}

// Stats summarizes integer samples from repeated trials.
type Stats struct {
	Mean   float64 `json:"mean"`
	Var    float64 `json:"var"`
	StdDev float64 `json:"stddev"`
	P50    float64 `json:"p50"`
	P90    float64 `json:"p90"`
	P99    float64 `json:"p99"`
}

// SimulateFirstHit measures, over trials runs, how many draws it takes
// until the first card of at least minRarity appears. Useful for
// sanity-checking rarity masses before shipping a pool.
func (e *Engine) SimulateFirstHit(minRarity card.Rarity, trials int) Stats {
	if trials <= 0 {
		return Stats{}
	}
	samples := make([]int, trials)
	for i := 0; i < trials; i++ {
		draws := 0
		for {
			draws++
			c := e.Draw()
			if !c.IsNothing() && c.Rarity() >= minRarity {
				break
			}
		}
		samples[i] = draws
	}
	return summarize(samples)
}

// summarize computes mean, population variance and interpolated
// percentiles over integer samples.
func summarize(xs []int) Stats {
	n := len(xs)
	if n == 0 {
		return Stats{}
	}

	var sum float64
	for _, v := range xs {
		sum += float64(v)
	}
	mean := sum / float64(n)

	var acc float64
	for _, v := range xs {
		d := float64(v) - mean
		acc += d * d
	}
	variance := acc / float64(n)

	sorted := append([]int(nil), xs...)
	sort.Ints(sorted)
	pct := func(p float64) float64 {
		if p <= 0 || n == 1 {
			return float64(sorted[0])
		}
		if p >= 1 {
			return float64(sorted[n-1])
		}
		pos := p * float64(n-1)
		i := int(math.Floor(pos))
		f := pos - float64(i)
		if i+1 >= n {
			return float64(sorted[i])
		}
		return float64(sorted[i])*(1-f) + float64(sorted[i+1])*f
	}

	return Stats{
		Mean:   mean,
		Var:    variance,
		StdDev: math.Sqrt(variance),
		P50:    pct(0.50),
		P90:    pct(0.90),
		P99:    pct(0.99),
	}
}
