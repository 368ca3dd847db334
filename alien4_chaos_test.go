package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Over 10000 samples at rate 0.5, mean |chaos_out| lands in
// [0.1, 0.6] and the clip keeps max <= 1.
func Test_ChaosGenerator_OutputStatistics(t *testing.T) {
	c := NewChaosGenerator()

	var sumAbs, maxAbs float32
	const n = 10000
	for i := 0; i < n; i++ {
		out := c.Tick(0.5)
		sumAbs += absF32(out)
		maxAbs = maxF32(maxAbs, absF32(out))
	}

	mean := sumAbs / n
	assert.GreaterOrEqual(t, mean, float32(0.1))
	assert.LessOrEqual(t, mean, float32(0.6))
	assert.LessOrEqual(t, maxAbs, float32(1.0))
}

func Test_ChaosGenerator_NeverRepeatsExactly(t *testing.T) {
	c := NewChaosGenerator()
	seen := map[float32]int{}
	var worst int
	for i := 0; i < 5000; i++ {
		v := c.Tick(1.0)
		seen[v]++
		if seen[v] > worst {
			worst = seen[v]
		}
	}
	// Clipped extremes may repeat; the interior trajectory must not sit
	// still on any single value.
	assert.Greater(t, len(seen), 1000, "chaos output collapsed to too few distinct values")
}

// Stepped mode sample-and-holds the output at the configured period.
func Test_ChaosGenerator_SteppedModeHolds(t *testing.T) {
	c := NewChaosGenerator()
	c.Configure(true, 10, 48000) // 10ms -> 480-sample steps

	first := c.Tick(0.5)
	for i := 1; i < 480; i++ {
		assert.Equal(t, first, c.Tick(0.5), "held value changed inside a step window")
	}
	// The next window starts a fresh hold; with the attractor integrating
	// underneath the whole time, the held value virtually always moves.
	second := c.Tick(0.5)
	assert.NotEqual(t, first, second)
}

func Test_ChaosGenerator_LorenzConstantsMatchReference(t *testing.T) {
	assert.Equal(t, float32(7.5), float32(chaosSigma))
	assert.Equal(t, float32(30.9), float32(chaosRho))
	assert.Equal(t, float32(1.02), float32(chaosBeta))
}
