package search

import (
	"math"

	"github.com/XiaoConstantine/pge-go/pkg/core"
	"github.com/XiaoConstantine/pge-go/pkg/errors"
)

// UpdateModel folds one sampler's update log into base, blending old and new
// statistics with learning rate alpha, and returns the resulting model.
// Handles absent from the log copy through untouched; handles absent from
// the base never appear (models are only extended during sampling).
//
// An unrecognized parameter shape is a fatal configuration error: it means
// the sampler and updater disagree on the schema, and skipping it would
// silently corrupt the search.
func UpdateModel(base *core.Model, updates map[core.Handle][]float64, alpha float64) (*core.Model, error) {
	next := core.NewModel()

	for h, p := range base.Snapshot() {
		outcomes, touched := updates[h]
		if !touched {
			next.Set(h, p)
			continue
		}

		switch v := p.(type) {
		case core.Weight:
			var sum float64
			for _, o := range outcomes {
				sum += o
			}
			next.Set(h, core.Weight{W: v.W + alpha*sum})

		case core.CategoricalWeights:
			ws := make([]float64, len(v.Ws))
			copy(ws, v.Ws)
			for _, o := range outcomes {
				i := int(o)
				if i < 0 || i >= len(ws) {
					return nil, errors.WithFields(
						errors.New(errors.InvalidInput, "categorical outcome index out of range"),
						errors.Fields{"handle": h, "index": i, "categories": len(ws)},
					)
				}
				ws[i] += alpha
			}
			next.Set(h, core.CategoricalWeights{Ws: ws})

		case core.GaussianParams:
			m, s := meanStd(outcomes)
			next.Set(h, core.GaussianParams{
				Mean:   v.Mean*(1-alpha) + m*alpha,
				Spread: v.Spread*(1-alpha) + s*alpha,
			})

		case core.BernoulliParam:
			// The reference update blends against the raw true count, not
			// the frequency, so p can leave [0,1] when a handle records
			// several booleans in one candidate. Preserved as specified.
			var trueCount float64
			for _, o := range outcomes {
				if o != 0 {
					trueCount++
				}
			}
			next.Set(h, core.BernoulliParam{P: v.P*(1-alpha) + trueCount*alpha})

		default:
			return nil, errors.WithFields(
				errors.New(errors.UnknownParameterShape, "unrecognized parameter shape"),
				errors.Fields{"handle": h, "parameter": p},
			)
		}
	}

	return next, nil
}

// meanStd returns the sample mean and population standard deviation of xs.
func meanStd(xs []float64) (float64, float64) {
	if len(xs) == 0 {
		return 0, 0
	}

	var sum float64
	for _, x := range xs {
		sum += x
	}
	mean := sum / float64(len(xs))

	var sq float64
	for _, x := range xs {
		d := x - mean
		sq += d * d
	}
	return mean, math.Sqrt(sq / float64(len(xs)))
}
