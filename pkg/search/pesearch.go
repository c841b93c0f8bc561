// Package search implements a model-based population search engine. Each
// generation samples a population of candidates through an adaptive
// probabilistic model, scores them with an external evaluator, and folds the
// elite fraction's sampling statistics back into the model.
package search

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/XiaoConstantine/pge-go/pkg/core"
	"github.com/XiaoConstantine/pge-go/pkg/errors"
	"github.com/XiaoConstantine/pge-go/pkg/logging"
	"github.com/XiaoConstantine/pge-go/pkg/sampling"
)

// Config contains configuration options for the probabilistic evolutionary
// search.
type Config struct {
	PopulationSize    int     `json:"population_size"`    // Default: 100
	LearningFactor    float64 `json:"learning_factor"`    // Default: 0.05
	SelectionFraction float64 `json:"selection_fraction"` // Default: 0.2
	Maximize          bool    `json:"maximize"`           // Default: true
	RandomSeed        int64   `json:"random_seed"`        // Default: time-based
	MaxGoroutines     int     `json:"max_goroutines"`     // Default: 1
}

// GenerationStats captures one generation's fitness summary.
type GenerationStats struct {
	Generation int     `json:"generation"`
	Best       float64 `json:"best"`
	Mean       float64 `json:"mean"`
	Worst      float64 `json:"worst"`
	Evaluated  int     `json:"evaluated"`
}

// PESearch drives the generation loop. Within a generation it alternates
// between a sampling phase (one fresh sampler per population slot, all
// sharing the current model) and a selection phase (rank, cut the elite,
// fold their update logs sequentially into the next model). The fold is a
// full barrier: the next generation only samples from the folded model.
type PESearch struct {
	config Config

	mu         sync.Mutex
	model      *core.Model
	generation int
	history    []GenerationStats
	best       core.Candidate
	bestScore  float64
	hasBest    bool

	logger *logging.Logger
}

// Option defines functional options for PESearch configuration.
type Option func(*PESearch)

// WithPopulationSize sets the number of candidates per generation.
func WithPopulationSize(n int) Option {
	return func(p *PESearch) {
		p.config.PopulationSize = n
	}
}

// WithLearningFactor sets the blend rate alpha in (0, 1].
func WithLearningFactor(alpha float64) Option {
	return func(p *PESearch) {
		p.config.LearningFactor = alpha
	}
}

// WithSelectionFraction sets the elite fraction in (0, 1].
func WithSelectionFraction(fraction float64) Option {
	return func(p *PESearch) {
		p.config.SelectionFraction = fraction
	}
}

// WithMaximize sets the optimization direction.
func WithMaximize(maximize bool) Option {
	return func(p *PESearch) {
		p.config.Maximize = maximize
	}
}

// WithRandomSeed fixes the seed so runs are reproducible.
func WithRandomSeed(seed int64) Option {
	return func(p *PESearch) {
		p.config.RandomSeed = seed
	}
}

// WithMaxGoroutines bounds the parallelism of candidate construction and
// evaluation within a generation.
func WithMaxGoroutines(n int) Option {
	return func(p *PESearch) {
		p.config.MaxGoroutines = n
	}
}

// New creates a search engine starting from an empty model.
func New(opts ...Option) *PESearch {
	p := &PESearch{
		config: Config{
			PopulationSize:    100,
			LearningFactor:    0.05,
			SelectionFraction: 0.2,
			Maximize:          true,
			MaxGoroutines:     1,
		},
		model:  core.NewModel(),
		logger: logging.GetLogger(),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.config.RandomSeed == 0 {
		p.config.RandomSeed = time.Now().UnixNano()
	}
	if p.config.PopulationSize < 1 {
		p.config.PopulationSize = 1
	}
	if p.config.MaxGoroutines < 1 {
		p.config.MaxGoroutines = 1
	}
	return p
}

// NewFromConfig creates a search engine from an explicit configuration.
func NewFromConfig(cfg Config) *PESearch {
	return New(
		WithPopulationSize(cfg.PopulationSize),
		WithLearningFactor(cfg.LearningFactor),
		WithSelectionFraction(cfg.SelectionFraction),
		WithMaximize(cfg.Maximize),
		WithRandomSeed(cfg.RandomSeed),
		WithMaxGoroutines(cfg.MaxGoroutines),
	)
}

// Model returns the current model. Callers must treat it as read-only.
func (p *PESearch) Model() *core.Model {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.model
}

// SetModel replaces the current model, e.g. when resuming from a snapshot.
func (p *PESearch) SetModel(m *core.Model) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.model = m
}

// Generation returns the number of completed generations.
func (p *PESearch) Generation() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.generation
}

// History returns the per-generation fitness summaries recorded by Run.
func (p *PESearch) History() []GenerationStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]GenerationStats, len(p.history))
	copy(out, p.history)
	return out
}

// Best returns the best scored candidate seen so far.
func (p *PESearch) Best() (core.Candidate, float64, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.best, p.bestScore, p.hasBest
}

// RunGeneration produces one population: PopulationSize candidates, each
// built by a fresh sampler over the shared current model. Candidate i and
// sampler i correspond; fitnesses handed back to FoldElite must keep this
// order.
//
// Construction is parallelized up to MaxGoroutines. Each slot derives its
// own seed from the run seed, so a parallel run samples the same candidates
// as a sequential one.
func (p *PESearch) RunGeneration(ctx context.Context, grammar core.Grammar) ([]core.Candidate, []*sampling.ModelSampler, error) {
	if err := errors.CheckContext(ctx, "generation sampling"); err != nil {
		return nil, nil, err
	}

	p.mu.Lock()
	model := p.model
	generation := p.generation
	p.mu.Unlock()

	n := p.config.PopulationSize
	candidates := make([]core.Candidate, n)
	samplers := make([]*sampling.ModelSampler, n)
	sampleErrs := make([]error, n)

	workers := pool.New().WithMaxGoroutines(p.config.MaxGoroutines)
	for i := 0; i < n; i++ {
		i := i
		seed := p.slotSeed(generation, i)
		workers.Go(func() {
			s := sampling.New(model, sampling.WithSeed(seed))
			samplers[i] = s
			candidate, err := grammar.Sample(s)
			if err != nil {
				sampleErrs[i] = err
				return
			}
			candidates[i] = candidate
		})
	}
	workers.Wait()

	for i, err := range sampleErrs {
		if err != nil {
			return nil, nil, errors.WithFields(
				errors.Wrap(err, errors.InvalidInput, "grammar failed to produce a candidate"),
				errors.Fields{"generation": generation, "slot": i},
			)
		}
	}
	return candidates, samplers, nil
}

// slotSeed derives a deterministic per-slot seed from the run seed.
func (p *PESearch) slotSeed(generation, slot int) int64 {
	return rand.New(rand.NewSource(p.config.RandomSeed + int64(generation))).Int63() + int64(slot)
}

// FoldElite ranks the population, selects the elite fraction, and folds each
// elite sampler's update log sequentially into the next model, which becomes
// the current model. The folds compound: each elite's update is applied to
// the output of the previous fold, so elite order (original population
// order) affects the exact numbers.
func (p *PESearch) FoldElite(ctx context.Context, samplers []*sampling.ModelSampler, fitnesses []float64) (*core.Model, error) {
	if len(samplers) != len(fitnesses) {
		return nil, errors.WithFields(
			errors.New(errors.InvalidInput, "samplers and fitnesses must be parallel"),
			errors.Fields{"samplers": len(samplers), "fitnesses": len(fitnesses)},
		)
	}

	elite := SelectElite(samplers, fitnesses, p.config.SelectionFraction, p.config.Maximize)
	if len(elite) == 0 {
		p.logger.Warn(ctx, "no scored candidates in generation %d, model unchanged", p.Generation())
		p.mu.Lock()
		model := p.model
		p.generation++
		p.mu.Unlock()
		return model, nil
	}

	// The first elite's model is reference-identical to the shared
	// baseline; every fold feeds the next.
	model := elite[0].Model()
	for _, s := range elite {
		next, err := UpdateModel(model, s.Updates(), p.config.LearningFactor)
		if err != nil {
			return nil, errors.WithFields(err, errors.Fields{"sampler": s.ID()})
		}
		model = next
	}

	p.mu.Lock()
	p.model = model
	p.generation++
	p.mu.Unlock()

	p.logger.Debug(ctx, "folded %d elite samplers into model with %d handles", len(elite), model.Len())
	return model, nil
}

// Run drives the full loop for a fixed number of generations: sample,
// evaluate, select, fold. Evaluation failures score the candidate as
// unscored and exclude it from ranking rather than failing the generation.
// It returns the best scored candidate.
func (p *PESearch) Run(ctx context.Context, grammar core.Grammar, evaluator core.Evaluator, generations int) (core.Candidate, float64, error) {
	p.logger.Info(ctx, "starting search: population_size=%d, learning_factor=%.3f, selection_fraction=%.2f, maximize=%v",
		p.config.PopulationSize, p.config.LearningFactor, p.config.SelectionFraction, p.config.Maximize)

	for g := 0; g < generations; g++ {
		if err := errors.CheckContext(ctx, "search run"); err != nil {
			best, score, _ := p.Best()
			return best, score, err
		}

		candidates, samplers, err := p.RunGeneration(ctx, grammar)
		if err != nil {
			best, score, _ := p.Best()
			return best, score, err
		}

		fitnesses := p.evaluate(ctx, candidates, evaluator)
		stats := p.record(candidates, fitnesses)

		if _, err := p.FoldElite(ctx, samplers, fitnesses); err != nil {
			best, score, _ := p.Best()
			return best, score, err
		}

		p.logger.Info(ctx, "generation %d: best=%.4f mean=%.4f worst=%.4f evaluated=%d/%d",
			stats.Generation, stats.Best, stats.Mean, stats.Worst, stats.Evaluated, len(candidates))
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.hasBest {
		return nil, 0, errors.New(errors.EvaluationFailed, "no candidate was ever scored")
	}
	return p.best, p.bestScore, nil
}

// evaluate scores all candidates, in parallel up to MaxGoroutines. A failed
// evaluation maps to the unscored sentinel.
func (p *PESearch) evaluate(ctx context.Context, candidates []core.Candidate, evaluator core.Evaluator) []float64 {
	fitnesses := make([]float64, len(candidates))

	workers := pool.New().WithMaxGoroutines(p.config.MaxGoroutines)
	for i, candidate := range candidates {
		i, candidate := i, candidate
		workers.Go(func() {
			score, err := evaluator.Evaluate(ctx, candidate)
			if err != nil {
				p.logger.Warn(ctx, "candidate %d unscored: %v", i, err)
				fitnesses[i] = core.Unscored()
				return
			}
			fitnesses[i] = score
		})
	}
	workers.Wait()

	return fitnesses
}

// record updates best-so-far tracking and appends this generation's stats.
func (p *PESearch) record(candidates []core.Candidate, fitnesses []float64) GenerationStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	stats := GenerationStats{
		Generation: p.generation,
		Best:       math.Inf(-1),
		Worst:      math.Inf(1),
	}
	if !p.config.Maximize {
		stats.Best, stats.Worst = stats.Worst, stats.Best
	}

	var sum float64
	for i, f := range fitnesses {
		if core.IsUnscored(f) {
			continue
		}
		stats.Evaluated++
		sum += f

		if p.config.Maximize {
			if f > stats.Best {
				stats.Best = f
			}
			if f < stats.Worst {
				stats.Worst = f
			}
			if !p.hasBest || f > p.bestScore {
				p.best, p.bestScore, p.hasBest = candidates[i], f, true
			}
		} else {
			if f < stats.Best {
				stats.Best = f
			}
			if f > stats.Worst {
				stats.Worst = f
			}
			if !p.hasBest || f < p.bestScore {
				p.best, p.bestScore, p.hasBest = candidates[i], f, true
			}
		}
	}
	if stats.Evaluated > 0 {
		stats.Mean = sum / float64(stats.Evaluated)
	} else {
		stats.Best, stats.Worst = math.NaN(), math.NaN()
		stats.Mean = math.NaN()
	}

	p.history = append(p.history, stats)
	return stats
}
