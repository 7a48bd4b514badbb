package card

import "math"

// validateProb rejects probabilities outside [0,1] and non-finite values.
func validateProb(p float64) error {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return ErrCardConfig
	}
	if p < 0 || p > 1 {
		return ErrCardConfig
	}
	return nil
}
