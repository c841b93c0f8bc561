package core

import (
	"context"
	"math"
)

// Candidate is one fully-formed point of the search space. The engine never
// inspects it; grammars build it and evaluators score it.
type Candidate interface{}

// Sampler answers the primitive probabilistic requests a grammar makes while
// constructing one candidate. Passing NoHandle falls back to an unbiased
// draw that leaves no trace in the model.
//
// The operation that first touches a handle fixes that handle's parameter
// kind. Calling a different operation on the same handle afterwards is a
// contract violation and panics.
type Sampler interface {
	// ChooseWeighted picks one option. With a handle it behaves exactly
	// like Categorical; without one, each option carries its own weight
	// keyed by the option value itself.
	ChooseWeighted(options []string, handle Handle) string

	// BoundedDiscrete draws an integer in [min, max], rounding a gaussian
	// draw to the nearest integer before clamping.
	BoundedDiscrete(handle Handle, min, max int) int

	// BoundedContinuous draws a float in [min, max].
	BoundedContinuous(handle Handle, min, max float64) float64

	// Boolean draws true with the handle's bernoulli probability.
	Boolean(handle Handle) bool

	// Categorical picks options[i] with probability proportional to the
	// handle's i-th categorical weight.
	Categorical(handle Handle, options []string) string
}

// Grammar walks a search-space definition, calling into the sampler at each
// decision point, and produces one concrete candidate. Implementations must
// be deterministic given a fixed sequence of sampler responses.
type Grammar interface {
	Sample(s Sampler) (Candidate, error)
}

// Evaluator scores a candidate. The engine treats the score as an opaque
// ordered scalar; units are the evaluator's business. Evaluation may be
// long-running; the engine imposes no timeout of its own.
type Evaluator interface {
	Evaluate(ctx context.Context, c Candidate) (float64, error)
}

// GrammarFunc adapts a plain function to the Grammar interface.
type GrammarFunc func(s Sampler) (Candidate, error)

func (f GrammarFunc) Sample(s Sampler) (Candidate, error) { return f(s) }

// EvaluatorFunc adapts a plain function to the Evaluator interface.
type EvaluatorFunc func(ctx context.Context, c Candidate) (float64, error)

func (f EvaluatorFunc) Evaluate(ctx context.Context, c Candidate) (float64, error) {
	return f(ctx, c)
}

// Unscored is the fitness sentinel for candidates the evaluator could not
// score. Unscored entries are excluded from ranking instead of failing the
// generation.
func Unscored() float64 {
	return math.NaN()
}

// IsUnscored reports whether f is the unscored sentinel.
func IsUnscored(f float64) bool {
	return math.IsNaN(f)
}
