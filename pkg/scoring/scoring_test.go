package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSafeDelta(t *testing.T) {
	tests := []struct {
		name     string
		current  int
		previous int
		want     float64
	}{
		{name: "zero baseline scales current", current: 5, previous: 0, want: 500.0},
		{name: "negative baseline scales current", current: 3, previous: -2, want: 300.0},
		{name: "zero over zero", current: 0, previous: 0, want: 0.0},
		{name: "growth", current: 15, previous: 10, want: 50.0},
		{name: "decline", current: 5, previous: 10, want: -50.0},
		{name: "unchanged", current: 10, previous: 10, want: 0.0},
		{name: "drop to zero", current: 0, previous: 4, want: -100.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, SafeDelta(tt.current, tt.previous), 1e-9)
		})
	}
}

func TestSourceDiversity(t *testing.T) {
	tests := []struct {
		name       string
		observed   int
		configured int
		want       float64
	}{
		{name: "none observed", observed: 0, configured: 9, want: 0.0},
		{name: "partial coverage", observed: 3, configured: 9, want: 100.0 / 3},
		{name: "full coverage", observed: 9, configured: 9, want: 100.0},
		{name: "more observed than configured is not clamped", observed: 4, configured: 2, want: 200.0},
		{name: "zero configured floors at one", observed: 2, configured: 0, want: 200.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, SourceDiversity(tt.observed, tt.configured), 1e-9)
		})
	}
}

func TestMomentumScore(t *testing.T) {
	// 50*0.45 + 20*0.35 + 10*0.20 = 31.5
	assert.InDelta(t, 31.5, MomentumScore(50, 10, 20), 1e-9)

	// A zero-activity company scores zero.
	assert.Zero(t, MomentumScore(0, 0, 0))
}

func TestWeightsSumToOne(t *testing.T) {
	assert.InDelta(t, 1.0, VelocityWeight+DiversityWeight+NegativeWeight, 1e-9)
}
