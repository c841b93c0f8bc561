// Command pge-search runs the probabilistic evolutionary search against a
// small built-in grammar: a feed-forward network sketch whose closed-form
// objective peaks at a known configuration. It demonstrates the full wiring
// of config, logging, snapshots and history export.
package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/google/uuid"

	"github.com/XiaoConstantine/pge-go/pkg/config"
	"github.com/XiaoConstantine/pge-go/pkg/core"
	"github.com/XiaoConstantine/pge-go/pkg/export"
	"github.com/XiaoConstantine/pge-go/pkg/logging"
	"github.com/XiaoConstantine/pge-go/pkg/search"
	"github.com/XiaoConstantine/pge-go/pkg/store"
)

// networkSketch is the candidate the demo grammar produces.
type networkSketch struct {
	Layers     int
	Units      int
	Dropout    float64
	Activation string
	Residual   bool
}

var sketchGrammar = core.GrammarFunc(func(s core.Sampler) (core.Candidate, error) {
	return networkSketch{
		Layers:     s.BoundedDiscrete("layers", 1, 12),
		Units:      s.BoundedDiscrete("units", 8, 256),
		Dropout:    s.BoundedContinuous("dropout", 0, 0.8),
		Activation: s.Categorical("activation", []string{"relu", "tanh", "gelu"}),
		Residual:   s.Boolean("residual"),
	}, nil
})

// sketchEvaluator peaks at 4 layers, 64 units, dropout 0.2, gelu, residual.
var sketchEvaluator = core.EvaluatorFunc(func(_ context.Context, c core.Candidate) (float64, error) {
	n := c.(networkSketch)

	score := -math.Pow(float64(n.Layers-4)/4, 2)
	score -= math.Pow(float64(n.Units-64)/64, 2)
	score -= math.Pow((n.Dropout-0.2)/0.2, 2)
	if n.Activation == "gelu" {
		score += 0.5
	}
	if n.Residual {
		score += 0.25
	}
	return score, nil
})

func main() {
	var (
		configPath  = flag.String("config", "", "path to a YAML search config")
		generations = flag.Int("generations", 20, "number of generations to run")
		dbPath      = flag.String("db", "", "SQLite file for model snapshots (optional)")
		historyPath = flag.String("history", "", "Parquet file for fitness history (optional)")
	)
	flag.Parse()

	if err := run(*configPath, *generations, *dbPath, *historyPath); err != nil {
		fmt.Fprintf(os.Stderr, "pge-search: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, generations int, dbPath, historyPath string) error {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	logging.SetLogger(logging.NewLogger(logging.Config{
		Severity: logging.ParseSeverity(cfg.LogLevel),
		Outputs:  []logging.Output{logging.NewConsoleOutput(true)},
	}))
	logger := logging.GetLogger()

	runID := uuid.New().String()
	ctx := logging.WithRunID(context.Background(), runID)

	var snapshots *store.SnapshotStore
	if dbPath != "" {
		var err error
		snapshots, err = store.NewSnapshotStore(dbPath)
		if err != nil {
			return err
		}
		defer snapshots.Close()
	}

	engine := search.NewFromConfig(search.Config{
		PopulationSize:    cfg.PopulationSize,
		LearningFactor:    cfg.LearningFactor,
		SelectionFraction: cfg.SelectionFraction,
		Maximize:          cfg.Maximize,
		RandomSeed:        cfg.RandomSeed,
		MaxGoroutines:     cfg.MaxGoroutines,
	})

	// One generation per Run call so the model can be snapshotted at every
	// barrier.
	for g := 0; g < generations; g++ {
		if _, _, err := engine.Run(ctx, sketchGrammar, sketchEvaluator, 1); err != nil {
			return err
		}
		if snapshots != nil {
			if err := snapshots.Save(ctx, runID, g, engine.Model()); err != nil {
				return err
			}
		}
	}

	best, score, ok := engine.Best()
	if !ok {
		return fmt.Errorf("no candidate was ever scored")
	}
	logger.Info(ctx, "finished %d generations: best=%.4f candidate=%+v", generations, score, best)

	if historyPath != "" {
		if err := export.WriteHistory(historyPath, engine.History()); err != nil {
			return err
		}
		logger.Info(ctx, "wrote history to %s", historyPath)
	}

	return nil
}
