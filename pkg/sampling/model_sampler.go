// Package sampling implements the adaptive sampler that drives candidate
// construction. One ModelSampler is created per population slot; all
// samplers of a generation share one model, and each keeps a private log of
// the outcomes it realized so the model updater can fold them back in.
package sampling

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/XiaoConstantine/pge-go/pkg/core"
)

// ModelSampler answers each primitive sampling request by consulting (and
// lazily extending) the shared model, then records the realized outcome in
// its own update log.
//
// Outcomes are logged as float64 regardless of the draw kind: a unit vote
// for un-handled weighted choices, the clamped value for bounded draws,
// 1/0 for booleans and the chosen index for categorical draws.
type ModelSampler struct {
	id      string
	rng     *rand.Rand
	model   *core.Model
	updates map[core.Handle][]float64
}

// Option configures a ModelSampler.
type Option func(*ModelSampler)

// WithSeed fixes the sampler's random stream. For a fixed model and a fixed
// seed the sequence of outcomes is reproducible.
func WithSeed(seed int64) Option {
	return func(s *ModelSampler) {
		s.rng = rand.New(rand.NewSource(seed))
	}
}

// WithRand supplies an existing random source directly.
func WithRand(rng *rand.Rand) Option {
	return func(s *ModelSampler) {
		s.rng = rng
	}
}

// New creates a sampler over the given shared model.
func New(model *core.Model, opts ...Option) *ModelSampler {
	s := &ModelSampler{
		id:      uuid.New().String(),
		model:   model,
		updates: make(map[core.Handle][]float64),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return s
}

// ID returns the sampler's unique identifier, used to correlate the sampler
// with its candidate and fitness in logs and snapshots.
func (s *ModelSampler) ID() string {
	return s.id
}

// Model returns the shared model this sampler draws from.
func (s *ModelSampler) Model() *core.Model {
	return s.model
}

// Updates exposes the sampler's log of realized outcomes. The model updater
// reads it after selection; it must not be mutated by callers.
func (s *ModelSampler) Updates() map[core.Handle][]float64 {
	return s.updates
}

func (s *ModelSampler) register(h core.Handle, outcome float64) float64 {
	s.updates[h] = append(s.updates[h], outcome)
	return outcome
}

// weightedIndex draws an index with probability proportional to weights.
func (s *ModelSampler) weightedIndex(weights []float64) int {
	var total float64
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return s.rng.Intn(len(weights))
	}

	threshold := s.rng.Float64() * total
	var cumulative float64
	for i, w := range weights {
		cumulative += w
		if cumulative >= threshold {
			return i
		}
	}
	return len(weights) - 1
}

func clamp(x, min, max float64) float64 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}

// ChooseWeighted picks one of options. With a handle the draw is a plain
// categorical over that handle; without one every option carries its own
// scalar weight keyed by the option value, and the chosen option receives a
// unit vote in the update log.
func (s *ModelSampler) ChooseWeighted(options []string, handle core.Handle) string {
	if handle != core.NoHandle {
		return s.Categorical(handle, options)
	}

	weights := make([]float64, len(options))
	for i, option := range options {
		weights[i] = s.weightParam(core.Handle(option)).W
	}

	option := options[s.weightedIndex(weights)]
	s.register(core.Handle(option), 1)
	return option
}

// BoundedDiscrete draws an integer from the handle's gaussian, rounded to
// the nearest integer and clamped into [min, max].
func (s *ModelSampler) BoundedDiscrete(handle core.Handle, min, max int) int {
	if handle == core.NoHandle {
		return min + s.rng.Intn(max-min+1)
	}

	p := s.gaussianParam(handle, float64(min), float64(max))
	value := clamp(math.Round(s.rng.NormFloat64()*p.Spread+p.Mean), float64(min), float64(max))
	s.register(handle, value)
	return int(value)
}

// BoundedContinuous draws a float from the handle's gaussian, clamped into
// [min, max].
func (s *ModelSampler) BoundedContinuous(handle core.Handle, min, max float64) float64 {
	if handle == core.NoHandle {
		return min + s.rng.Float64()*(max-min)
	}

	p := s.gaussianParam(handle, min, max)
	value := clamp(s.rng.NormFloat64()*p.Spread+p.Mean, min, max)
	return s.register(handle, value)
}

// Boolean draws true with the handle's bernoulli probability.
func (s *ModelSampler) Boolean(handle core.Handle) bool {
	if handle == core.NoHandle {
		return s.rng.Float64() < 0.5
	}

	p := s.bernoulliParam(handle)
	value := s.rng.Float64() < p.P
	if value {
		s.register(handle, 1)
	} else {
		s.register(handle, 0)
	}
	return value
}

// Categorical picks options[i] with probability proportional to the
// handle's i-th weight, logging the chosen index.
func (s *ModelSampler) Categorical(handle core.Handle, options []string) string {
	if handle == core.NoHandle {
		return options[s.rng.Intn(len(options))]
	}

	p := s.categoricalParam(handle, len(options))
	idx := s.weightedIndex(p.Ws)
	s.register(handle, float64(idx))
	return options[idx]
}

// The param accessors pin a handle to its parameter kind. A handle first
// touched by one operation kind and later used by another is a grammar bug,
// not a recoverable condition.

func (s *ModelSampler) weightParam(h core.Handle) core.Weight {
	p := s.model.GetOrInsert(h, func() core.Parameter { return core.DefaultWeight() })
	w, ok := p.(core.Weight)
	if !ok {
		panic(kindMismatch(h, "weight", p))
	}
	return w
}

func (s *ModelSampler) gaussianParam(h core.Handle, min, max float64) core.GaussianParams {
	p := s.model.GetOrInsert(h, func() core.Parameter { return core.DefaultGaussianParams(min, max) })
	g, ok := p.(core.GaussianParams)
	if !ok {
		panic(kindMismatch(h, "gaussian", p))
	}
	return g
}

func (s *ModelSampler) bernoulliParam(h core.Handle) core.BernoulliParam {
	p := s.model.GetOrInsert(h, func() core.Parameter { return core.DefaultBernoulliParam() })
	b, ok := p.(core.BernoulliParam)
	if !ok {
		panic(kindMismatch(h, "bernoulli", p))
	}
	return b
}

func (s *ModelSampler) categoricalParam(h core.Handle, n int) core.CategoricalWeights {
	p := s.model.GetOrInsert(h, func() core.Parameter { return core.DefaultCategoricalWeights(n) })
	cw, ok := p.(core.CategoricalWeights)
	if !ok {
		panic(kindMismatch(h, "categorical", p))
	}
	if len(cw.Ws) != n {
		panic(fmt.Sprintf("sampling: handle %q has %d categorical weights, grammar offered %d options", h, len(cw.Ws), n))
	}
	return cw
}

func kindMismatch(h core.Handle, want string, got core.Parameter) string {
	return fmt.Sprintf("sampling: handle %q is not a %s parameter (have %T)", h, want, got)
}

var _ core.Sampler = (*ModelSampler)(nil)
