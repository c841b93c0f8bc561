package sampling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XiaoConstantine/pge-go/pkg/core"
)

func TestBoundedDrawsStayInBounds(t *testing.T) {
	model := core.NewModel()
	s := New(model, WithSeed(42))

	for i := 0; i < 500; i++ {
		d := s.BoundedDiscrete("layers", 1, 8)
		assert.GreaterOrEqual(t, d, 1)
		assert.LessOrEqual(t, d, 8)

		c := s.BoundedContinuous("dropout", 0.0, 0.5)
		assert.GreaterOrEqual(t, c, 0.0)
		assert.LessOrEqual(t, c, 0.5)
	}
}

func TestDefaultParametersInsertedOnFirstTouch(t *testing.T) {
	model := core.NewModel()
	s := New(model, WithSeed(1))

	s.BoundedDiscrete("layers", 2, 10)
	s.Boolean("use_bias")
	s.Categorical("activation", []string{"relu", "tanh", "sigmoid"})

	p, ok := model.Lookup("layers")
	require.True(t, ok)
	g := p.(core.GaussianParams)
	assert.Equal(t, 6.0, g.Mean)
	assert.Equal(t, 8.0, g.Spread)

	p, ok = model.Lookup("use_bias")
	require.True(t, ok)
	assert.Equal(t, core.BernoulliParam{P: 0.5}, p)

	p, ok = model.Lookup("activation")
	require.True(t, ok)
	assert.Equal(t, []float64{1, 1, 1}, p.(core.CategoricalWeights).Ws)

	// The cached default is reused, not rebuilt
	s.BoundedDiscrete("layers", 2, 10)
	assert.Equal(t, 3, model.Len())
}

func TestChooseWeightedWithoutHandle(t *testing.T) {
	model := core.NewModel()
	s := New(model, WithSeed(3))

	option := s.ChooseWeighted([]string{"conv", "dense"}, core.NoHandle)
	assert.Contains(t, []string{"conv", "dense"}, option)

	// Each option got a default scalar weight in the model
	for _, opt := range []string{"conv", "dense"} {
		p, ok := model.Lookup(core.Handle(opt))
		require.True(t, ok)
		assert.Equal(t, core.Weight{W: 1}, p)
	}

	// Only the chosen option received a unit vote
	updates := s.Updates()
	require.Len(t, updates, 1)
	assert.Equal(t, []float64{1}, updates[core.Handle(option)])
}

func TestChooseWeightedWithHandleIsCategorical(t *testing.T) {
	model := core.NewModel()
	s := New(model, WithSeed(4))

	option := s.ChooseWeighted([]string{"a", "b", "c"}, "block_kind")
	assert.Contains(t, []string{"a", "b", "c"}, option)

	p, ok := model.Lookup("block_kind")
	require.True(t, ok)
	assert.Len(t, p.(core.CategoricalWeights).Ws, 3)

	// The log records the chosen index under the handle, not the option
	updates := s.Updates()["block_kind"]
	require.Len(t, updates, 1)
	assert.Equal(t, option, []string{"a", "b", "c"}[int(updates[0])])
}

func TestBooleanLogsZeroOrOne(t *testing.T) {
	model := core.NewModel()
	s := New(model, WithSeed(5))

	for i := 0; i < 20; i++ {
		s.Boolean("flag")
	}

	updates := s.Updates()["flag"]
	require.Len(t, updates, 20)
	for _, v := range updates {
		assert.Contains(t, []float64{0, 1}, v)
	}
}

func TestNoHandleDrawsLeaveNoTrace(t *testing.T) {
	model := core.NewModel()
	s := New(model, WithSeed(6))

	s.BoundedDiscrete(core.NoHandle, 1, 5)
	s.BoundedContinuous(core.NoHandle, 0, 1)
	s.Boolean(core.NoHandle)
	s.Categorical(core.NoHandle, []string{"x", "y"})

	assert.Equal(t, 0, model.Len())
	assert.Empty(t, s.Updates())
}

func TestReproducibleGivenSeedAndModel(t *testing.T) {
	run := func() []interface{} {
		model := core.NewModel()
		s := New(model, WithSeed(1234))

		var out []interface{}
		for i := 0; i < 50; i++ {
			out = append(out, s.BoundedDiscrete("n", 0, 100))
			out = append(out, s.BoundedContinuous("lr", 0.0001, 0.1))
			out = append(out, s.Boolean("bias"))
			out = append(out, s.Categorical("act", []string{"relu", "tanh"}))
			out = append(out, s.ChooseWeighted([]string{"left", "right"}, core.NoHandle))
		}
		return out
	}

	assert.Equal(t, run(), run())
}

func TestKindMismatchPanics(t *testing.T) {
	model := core.NewModel()
	s := New(model, WithSeed(7))

	s.Boolean("shared")

	assert.Panics(t, func() {
		s.BoundedDiscrete("shared", 0, 10)
	})
	assert.Panics(t, func() {
		s.Categorical("shared", []string{"a", "b"})
	})
}

func TestCategoricalOptionCountMismatchPanics(t *testing.T) {
	model := core.NewModel()
	s := New(model, WithSeed(8))

	s.Categorical("act", []string{"relu", "tanh"})
	assert.Panics(t, func() {
		s.Categorical("act", []string{"relu", "tanh", "sigmoid"})
	})
}

func TestSamplerIDsAreUnique(t *testing.T) {
	model := core.NewModel()
	a := New(model)
	b := New(model)
	assert.NotEqual(t, a.ID(), b.ID())
}
