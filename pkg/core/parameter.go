package core

// Handle identifies one probabilistic decision point in a search-space
// grammar. Equal handles across samplers and generations refer to the same
// decision and accumulate statistics over time. The zero value means "no
// handle": sampling falls back to an unbiased draw and records nothing.
type Handle string

// NoHandle is the absent-handle sentinel.
const NoHandle Handle = ""

// Parameter is the statistical state attached to one handle. It is a closed
// union: exactly one of Weight, CategoricalWeights, GaussianParams or
// BernoulliParam. The sampling operation that first touches a handle fixes
// its parameter kind for the lifetime of the model lineage.
type Parameter interface {
	isParameter()
}

// Weight is a single unnormalized positive weight for one option of an
// un-handled weighted choice, keyed by the option value itself.
type Weight struct {
	W float64
}

// CategoricalWeights holds one unnormalized weight per category index.
type CategoricalWeights struct {
	Ws []float64
}

// GaussianParams governs bounded discrete and continuous draws.
type GaussianParams struct {
	Mean   float64
	Spread float64
}

// BernoulliParam is the probability of drawing true.
type BernoulliParam struct {
	P float64
}

func (Weight) isParameter()             {}
func (CategoricalWeights) isParameter() {}
func (GaussianParams) isParameter()     {}
func (BernoulliParam) isParameter()     {}

// DefaultWeight is the prior for an option never chosen before.
func DefaultWeight() Weight {
	return Weight{W: 1}
}

// DefaultCategoricalWeights returns a flat prior over n categories.
func DefaultCategoricalWeights(n int) CategoricalWeights {
	ws := make([]float64, n)
	for i := range ws {
		ws[i] = 1
	}
	return CategoricalWeights{Ws: ws}
}

// DefaultGaussianParams centers the distribution on the midpoint of the
// bounds. The spread defaults to the full bound width, not the half-width;
// this matches the reference behavior and is calibration-sensitive.
func DefaultGaussianParams(min, max float64) GaussianParams {
	return GaussianParams{
		Mean:   (min + max) / 2,
		Spread: max - min,
	}
}

// DefaultBernoulliParam is a fair coin.
func DefaultBernoulliParam() BernoulliParam {
	return BernoulliParam{P: 0.5}
}

// clone returns a parameter that shares no mutable state with p. Only
// CategoricalWeights carries a slice; the other kinds are plain values.
func clone(p Parameter) Parameter {
	if cw, ok := p.(CategoricalWeights); ok {
		ws := make([]float64, len(cw.Ws))
		copy(ws, cw.Ws)
		return CategoricalWeights{Ws: ws}
	}
	return p
}
