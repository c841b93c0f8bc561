package search

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XiaoConstantine/pge-go/pkg/core"
	pgeerrors "github.com/XiaoConstantine/pge-go/pkg/errors"
)

func TestUpdateModelUntouchedHandlesCopyThrough(t *testing.T) {
	base := core.NewModel()
	base.Set("w", core.Weight{W: 2})
	base.Set("g", core.GaussianParams{Mean: 1, Spread: 3})

	next, err := UpdateModel(base, nil, 0.5)
	require.NoError(t, err)

	assert.Equal(t, base.Snapshot(), next.Snapshot())
	assert.NotSame(t, base, next)
}

func TestUpdateModelWeight(t *testing.T) {
	base := core.NewModel()
	base.Set("conv", core.Weight{W: 1})

	next, err := UpdateModel(base, map[core.Handle][]float64{"conv": {1, 1, 1}}, 0.1)
	require.NoError(t, err)

	p, _ := next.Lookup("conv")
	assert.InDelta(t, 1.3, p.(core.Weight).W, 1e-9)
}

func TestUpdateModelCategorical(t *testing.T) {
	base := core.NewModel()
	base.Set("act", core.CategoricalWeights{Ws: []float64{1, 1, 1}})

	next, err := UpdateModel(base, map[core.Handle][]float64{"act": {2, 0, 2}}, 0.5)
	require.NoError(t, err)

	p, _ := next.Lookup("act")
	assert.Equal(t, []float64{1.5, 1, 2}, p.(core.CategoricalWeights).Ws)

	// The base model's weights are untouched
	q, _ := base.Lookup("act")
	assert.Equal(t, []float64{1, 1, 1}, q.(core.CategoricalWeights).Ws)
}

func TestUpdateModelCategoricalIndexOutOfRange(t *testing.T) {
	base := core.NewModel()
	base.Set("act", core.CategoricalWeights{Ws: []float64{1, 1}})

	_, err := UpdateModel(base, map[core.Handle][]float64{"act": {5}}, 0.5)
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, pgeerrors.New(pgeerrors.InvalidInput, "")))
}

func TestUpdateModelGaussian(t *testing.T) {
	base := core.NewModel()
	base.Set("layers", core.GaussianParams{Mean: 5, Spread: 10})

	next, err := UpdateModel(base, map[core.Handle][]float64{"layers": {4, 6}}, 0.5)
	require.NoError(t, err)

	p, _ := next.Lookup("layers")
	g := p.(core.GaussianParams)
	// sample mean = 5, population std = 1
	assert.InDelta(t, 5.0, g.Mean, 1e-9)
	assert.InDelta(t, 5.5, g.Spread, 1e-9)
}

func TestUpdateModelBernoulliUsesRawCount(t *testing.T) {
	base := core.NewModel()
	base.Set("flag", core.BernoulliParam{P: 0.5})

	next, err := UpdateModel(base, map[core.Handle][]float64{"flag": {1, 0, 1}}, 0.1)
	require.NoError(t, err)

	p, _ := next.Lookup("flag")
	// 0.5*0.9 + 2*0.1: a raw count blend, not a frequency
	assert.InDelta(t, 0.65, p.(core.BernoulliParam).P, 1e-9)
}

func TestUpdateModelWeightsOnlyGrow(t *testing.T) {
	base := core.NewModel()
	base.Set("conv", core.Weight{W: 3})
	base.Set("act", core.CategoricalWeights{Ws: []float64{2, 4}})

	next, err := UpdateModel(base, map[core.Handle][]float64{
		"conv": {1, 1},
		"act":  {0, 1, 1},
	}, 0.25)
	require.NoError(t, err)

	w, _ := next.Lookup("conv")
	assert.GreaterOrEqual(t, w.(core.Weight).W, 3.0)

	cw, _ := next.Lookup("act")
	for i, v := range cw.(core.CategoricalWeights).Ws {
		assert.GreaterOrEqual(t, v, []float64{2, 4}[i])
	}
}

func TestMeanStd(t *testing.T) {
	m, s := meanStd([]float64{4, 6})
	assert.Equal(t, 5.0, m)
	assert.Equal(t, 1.0, s)

	m, s = meanStd([]float64{7})
	assert.Equal(t, 7.0, m)
	assert.Equal(t, 0.0, s)
}
