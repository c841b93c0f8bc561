package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUniformSamplerStaysInBounds(t *testing.T) {
	s := NewUniformSampler(42)

	for i := 0; i < 100; i++ {
		d := s.BoundedDiscrete("d", -3, 3)
		assert.GreaterOrEqual(t, d, -3)
		assert.LessOrEqual(t, d, 3)

		c := s.BoundedContinuous("c", 0.5, 1.5)
		assert.GreaterOrEqual(t, c, 0.5)
		assert.LessOrEqual(t, c, 1.5)

		assert.Contains(t, []string{"a", "b"}, s.Categorical("k", []string{"a", "b"}))
		assert.Contains(t, []string{"a", "b"}, s.ChooseWeighted([]string{"a", "b"}, NoHandle))
	}
}

func TestUniformSamplerDeterministicWithSeed(t *testing.T) {
	a := NewUniformSampler(7)
	b := NewUniformSampler(7)

	for i := 0; i < 20; i++ {
		assert.Equal(t, a.BoundedDiscrete("d", 0, 100), b.BoundedDiscrete("d", 0, 100))
		assert.Equal(t, a.Boolean("f"), b.Boolean("f"))
	}
}
