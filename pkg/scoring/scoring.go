// Package scoring holds the pure arithmetic behind trend scores: percentage
// deltas, source diversity, and the weighted momentum score.
package scoring

// Momentum score weights. They are fixed and sum to 1.0; there is no
// further normalization.
const (
	VelocityWeight  = 0.45
	DiversityWeight = 0.35
	NegativeWeight  = 0.20
)

// SafeDelta returns the percentage change from previous to current.
// A zero or negative baseline is treated as a fixed-scale proxy for
// new/unbounded growth: the result is current * 100 rather than a division
// by zero or infinity.
func SafeDelta(current, previous int) float64 {
	if previous <= 0 {
		return float64(current) * 100.0
	}
	return (float64(current) - float64(previous)) / float64(previous) * 100.0
}

// SourceDiversity returns the share of configured sources observed, as a
// percentage. totalConfigured is floored at 1; the result is deliberately
// not clamped and can exceed 100 when more distinct sources were observed
// than are currently configured.
func SourceDiversity(observed, totalConfigured int) float64 {
	if totalConfigured < 1 {
		totalConfigured = 1
	}
	return float64(observed) / float64(totalConfigured) * 100.0
}

// MomentumScore combines complaint velocity, negative-sentiment momentum
// and source diversity into the composite trend score (cts_score).
func MomentumScore(velocity, negativeMomentum, diversity float64) float64 {
	return velocity*VelocityWeight + diversity*DiversityWeight + negativeMomentum*NegativeWeight
}
