// alien4_chaos.go - Lorenz chaos generator

package main

const (
	chaosSigma = 7.5
	chaosRho   = 30.9
	chaosBeta  = 1.02

	// chaosBaseDt is the base integration step multiplied by the user
	// rate knob.
	chaosBaseDt = 0.003
)

// ChaosGenerator integrates the Lorenz attractor and exposes a bounded
// output in [-1, 1], with an optional stepped sample-and-hold mode.
type ChaosGenerator struct {
	state ChaosState

	stepped       bool
	stepPeriod    int // in samples
	samplesInStep int
	held          float32
}

func NewChaosGenerator() *ChaosGenerator {
	// Seed away from the unstable origin equilibrium so the attractor
	// starts producing motion immediately rather than sitting at (0,0,0).
	return &ChaosGenerator{state: ChaosState{X: 1, Y: 1, Z: 1}}
}

func (c *ChaosGenerator) Configure(stepped bool, stepPeriodMS, sampleRate float32) {
	c.stepped = stepped
	c.stepPeriod = int(stepPeriodMS * sampleRate / 1000)
	if c.stepPeriod < 1 {
		c.stepPeriod = 1
	}
}

// Tick integrates one step and returns the (possibly held) chaos output.
func (c *ChaosGenerator) Tick(rate float32) float32 {
	dt := chaosBaseDt * rate

	dx := chaosSigma * (c.state.Y - c.state.X)
	dy := c.state.X*(chaosRho-c.state.Z) - c.state.Y
	dz := c.state.X*c.state.Y - chaosBeta*c.state.Z

	c.state.X += dx * dt
	c.state.Y += dy * dt
	c.state.Z += dz * dt

	out := clampF32(c.state.X*0.1, -1, 1)

	if !c.stepped {
		return out
	}

	if c.samplesInStep == 0 {
		c.held = out
	}
	c.samplesInStep++
	if c.samplesInStep >= c.stepPeriod {
		c.samplesInStep = 0
	}
	return c.held
}
