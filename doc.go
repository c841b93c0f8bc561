// Package pge implements probabilistic evolutionary search over
// grammar-defined search spaces: an estimation-of-distribution optimizer
// that samples candidates through an adaptive per-parameter model,
// evaluates them externally, and shifts the model toward the elite fraction
// of each generation.
//
// Key Components:
//
//   - core: the Handle/Parameter/Model data types and the Sampler, Grammar
//     and Evaluator contracts at the engine boundary.
//
//   - sampling: the adaptive ModelSampler that answers every primitive
//     probabilistic request during candidate construction and logs each
//     realized outcome for the model update.
//
//   - search: the generation driver (PESearch), the rank-based elitist
//     selector and the learning-rate-weighted model updater.
//
//   - store: SQLite-backed model snapshots for resuming and inspecting
//     runs.
//
//   - export: Parquet export of per-generation fitness history.
//
// Simple Example:
//
//	import (
//	    "context"
//	    "log"
//
//	    "github.com/XiaoConstantine/pge-go/pkg/core"
//	    "github.com/XiaoConstantine/pge-go/pkg/search"
//	)
//
//	func main() {
//	    grammar := core.GrammarFunc(func(s core.Sampler) (core.Candidate, error) {
//	        return s.BoundedContinuous("x", -10, 10), nil
//	    })
//	    evaluator := core.EvaluatorFunc(func(_ context.Context, c core.Candidate) (float64, error) {
//	        x := c.(float64)
//	        return -(x - 3) * (x - 3), nil
//	    })
//
//	    engine := search.New(
//	        search.WithPopulationSize(50),
//	        search.WithLearningFactor(0.1),
//	        search.WithSelectionFraction(0.2),
//	    )
//	    best, score, err := engine.Run(context.Background(), grammar, evaluator, 25)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    log.Printf("best %v with score %f", best, score)
//	}
//
// The engine treats fitness as an opaque ordered scalar. Grammars may be
// arbitrarily structured; every probabilistic decision they make through
// the sampler is learned independently per handle.
package pge
