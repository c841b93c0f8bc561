package core

import (
	"math/rand"
	"time"
)

// UniformSampler answers every request with an unbiased draw and records
// nothing. It is the model-free baseline: running a grammar through it is
// equivalent to pure random search, and it is what every handled operation
// degrades to before a model has learned anything.
type UniformSampler struct {
	rng *rand.Rand
}

// NewUniformSampler returns an unbiased sampler. A seed of 0 means
// time-based.
func NewUniformSampler(seed int64) *UniformSampler {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &UniformSampler{rng: rand.New(rand.NewSource(seed))}
}

func (u *UniformSampler) ChooseWeighted(options []string, _ Handle) string {
	return options[u.rng.Intn(len(options))]
}

func (u *UniformSampler) BoundedDiscrete(_ Handle, min, max int) int {
	return min + u.rng.Intn(max-min+1)
}

func (u *UniformSampler) BoundedContinuous(_ Handle, min, max float64) float64 {
	return min + u.rng.Float64()*(max-min)
}

func (u *UniformSampler) Boolean(_ Handle) bool {
	return u.rng.Float64() < 0.5
}

func (u *UniformSampler) Categorical(_ Handle, options []string) string {
	return options[u.rng.Intn(len(options))]
}

var _ Sampler = (*UniformSampler)(nil)
