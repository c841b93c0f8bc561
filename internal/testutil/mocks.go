// Package testutil provides test doubles for the grammar and evaluator
// contracts.
package testutil

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/XiaoConstantine/pge-go/pkg/core"
)

// MockGrammar is a mock implementation of core.Grammar.
type MockGrammar struct {
	mock.Mock
}

func (m *MockGrammar) Sample(s core.Sampler) (core.Candidate, error) {
	args := m.Called(s)
	return args.Get(0), args.Error(1)
}

// MockEvaluator is a mock implementation of core.Evaluator.
type MockEvaluator struct {
	mock.Mock
}

func (m *MockEvaluator) Evaluate(ctx context.Context, c core.Candidate) (float64, error) {
	args := m.Called(ctx, c)
	return args.Get(0).(float64), args.Error(1)
}

// ScriptedSampler replays canned responses so grammar implementations can be
// tested without randomness. Each primitive consumes from its own queue and
// falls back to the first option / lower bound / false when the queue is
// exhausted.
type ScriptedSampler struct {
	mu sync.Mutex

	Choices     []int
	Discretes   []int
	Continuous  []float64
	Booleans    []bool
	Categories  []int
	SeenHandles []core.Handle
}

func (s *ScriptedSampler) note(h core.Handle) {
	s.SeenHandles = append(s.SeenHandles, h)
}

func (s *ScriptedSampler) ChooseWeighted(options []string, handle core.Handle) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.note(handle)

	idx := 0
	if len(s.Choices) > 0 {
		idx, s.Choices = s.Choices[0], s.Choices[1:]
	}
	return options[idx%len(options)]
}

func (s *ScriptedSampler) BoundedDiscrete(handle core.Handle, min, max int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.note(handle)

	v := min
	if len(s.Discretes) > 0 {
		v, s.Discretes = s.Discretes[0], s.Discretes[1:]
	}
	if v < min {
		v = min
	}
	if v > max {
		v = max
	}
	return v
}

func (s *ScriptedSampler) BoundedContinuous(handle core.Handle, min, max float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.note(handle)

	v := min
	if len(s.Continuous) > 0 {
		v, s.Continuous = s.Continuous[0], s.Continuous[1:]
	}
	if v < min {
		v = min
	}
	if v > max {
		v = max
	}
	return v
}

func (s *ScriptedSampler) Boolean(handle core.Handle) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.note(handle)

	v := false
	if len(s.Booleans) > 0 {
		v, s.Booleans = s.Booleans[0], s.Booleans[1:]
	}
	return v
}

func (s *ScriptedSampler) Categorical(handle core.Handle, options []string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.note(handle)

	idx := 0
	if len(s.Categories) > 0 {
		idx, s.Categories = s.Categories[0], s.Categories[1:]
	}
	return options[idx%len(options)]
}

var (
	_ core.Grammar   = (*MockGrammar)(nil)
	_ core.Evaluator = (*MockEvaluator)(nil)
	_ core.Sampler   = (*ScriptedSampler)(nil)
)
