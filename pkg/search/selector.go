package search

import (
	"sort"

	"github.com/XiaoConstantine/pge-go/pkg/core"
	"github.com/XiaoConstantine/pge-go/pkg/sampling"
)

// ranks assigns each fitness its rank among all fitnesses via a double
// argsort. Ties break by original population order, so selection is stable.
func ranks(fitnesses []float64) []int {
	order := make([]int, len(fitnesses))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return fitnesses[order[a]] < fitnesses[order[b]]
	})

	out := make([]int, len(fitnesses))
	for rank, idx := range order {
		out[idx] = rank
	}
	return out
}

// SelectElite ranks the population by fitness and returns the elite
// fraction, in original population order. Unscored entries are dropped
// before ranking. When the fraction rounds down to zero elites or below, the
// whole scored population is treated as elite.
func SelectElite(samplers []*sampling.ModelSampler, fitnesses []float64, fraction float64, maximize bool) []*sampling.ModelSampler {
	scored := make([]int, 0, len(fitnesses))
	for i, f := range fitnesses {
		if !core.IsUnscored(f) {
			scored = append(scored, i)
		}
	}
	if len(scored) == 0 {
		return nil
	}

	scoredFitnesses := make([]float64, len(scored))
	for i, idx := range scored {
		scoredFitnesses[i] = fitnesses[idx]
	}

	n := len(scored)
	k := int(fraction * float64(n))
	if k <= 0 {
		k = n
	}
	if k > n {
		k = n
	}

	r := ranks(scoredFitnesses)
	elite := make([]*sampling.ModelSampler, 0, k)
	for i, idx := range scored {
		if maximize {
			if r[i] >= n-k {
				elite = append(elite, samplers[idx])
			}
		} else {
			if r[i] < k {
				elite = append(elite, samplers[idx])
			}
		}
	}
	return elite
}
