// probemap-stats fills a table to a target load, optionally churns it with
// erase and re-insert cycles, and reports the clustering diagnostics after
// each phase. It exists to make probing behavior visible: how displacement
// grows with load, and how tombstones accumulate and get reused under churn.
package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/homier/probemap"
)

type config struct {
	entries    int
	load       float64
	churn      float64
	steps      int
	stringKeys bool
	json       bool
}

func main() {
	var cfg config

	flag.IntVar(&cfg.entries, "entries", 1<<16, "number of entries the table is pre-sized for")
	flag.Float64Var(&cfg.load, "load", 0.67, "fill the table to this fraction of its capacity, in (0, 1]")
	flag.Float64Var(&cfg.churn, "churn", 0.25, "fraction of live entries erased and re-added per step, in [0, 1]")
	flag.IntVar(&cfg.steps, "steps", 8, "number of churn steps to run")
	flag.BoolVar(&cfg.stringKeys, "string-keys", false, "use string keys instead of uint64 keys")
	flag.BoolVar(&cfg.json, "json", false, "log as JSON instead of console output")
	flag.Parse()

	logger := newLogger(cfg.json)
	defer func() { _ = logger.Sync() }()

	switch {
	case cfg.entries <= 0:
		logger.Fatal("entries must be positive", zap.Int("entries", cfg.entries))
	case cfg.load <= 0 || cfg.load > 1:
		logger.Fatal("load must be in (0, 1]", zap.Float64("load", cfg.load))
	case cfg.churn < 0 || cfg.churn > 1:
		logger.Fatal("churn must be in [0, 1]", zap.Float64("churn", cfg.churn))
	}

	if cfg.stringKeys {
		run(logger, cfg, probemap.StringPolicy(), func(n uint64) string {
			return fmt.Sprintf("key-%020d", n)
		})
		return
	}

	run(logger, cfg, probemap.IntegerPolicy[uint64](), func(n uint64) uint64 {
		return n
	})
}

func newLogger(json bool) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)

	if json {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "probemap-stats:", err)
		os.Exit(1)
	}

	return logger
}

// run fills the table to the configured load against a fixed capacity, then
// churns the oldest entries out and fresh ones in. Keys come from a counter,
// so the working set slides forward deterministically and every erase hits a
// live key.
func run[K any](logger *zap.Logger, cfg config, policy probemap.Policy[K], key func(uint64) K) {
	m := probemap.New(policy, probemap.WithCapacity[K, uint64](cfg.entries))

	target := int(cfg.load * float64(m.Capacity()))
	if target < 1 {
		target = 1
	}

	var next, oldest uint64
	for m.Size() < target {
		m.Insert(key(next), next)
		next++
	}

	report(logger, "filled", 0, m.Stats())

	for step := 1; step <= cfg.steps; step++ {
		n := int(cfg.churn * float64(m.Size()))

		for range n {
			m.Delete(key(oldest))
			oldest++
		}
		for range n {
			m.Insert(key(next), next)
			next++
		}

		report(logger, "churned", step, m.Stats())
	}
}

func report(logger *zap.Logger, phase string, step int, s probemap.Stats) {
	logger.Info(phase,
		zap.Int("step", step),
		zap.Int("size", s.Size),
		zap.Int("capacity", s.Capacity),
		zap.Int("tombstones", s.Tombstones),
		zap.Float64("load", s.Load),
		zap.Float64("displaced", s.Displaced),
		zap.Float64("displaced_twice", s.DisplacedTwice),
	)
}
