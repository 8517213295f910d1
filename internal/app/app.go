// Package app assembles the feed components from a Config.
package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rxtech-lab/argo-feed/internal/config"
	"github.com/rxtech-lab/argo-feed/internal/logger"
	"github.com/rxtech-lab/argo-feed/internal/marketdata/generator"
	"github.com/rxtech-lab/argo-feed/internal/metrics"
	"github.com/rxtech-lab/argo-feed/internal/orchestrator"
)

// Feed bundles the orchestrator with the collaborators built for it.
type Feed struct {
	Orchestrator *orchestrator.Orchestrator
	Generator    *generator.RandomWalkGenerator
	Metrics      *metrics.Metrics
}

// NewFeed builds the generator, profile book, rate table, pipeline and
// orchestrator described by cfg. Metrics are registered on reg when it is not nil.
func NewFeed(cfg *config.Config, log *logger.Logger, reg prometheus.Registerer) (*Feed, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	rates, err := cfg.RateTable()
	if err != nil {
		return nil, err
	}

	pipeline, err := cfg.Pipeline()
	if err != nil {
		return nil, err
	}

	gen := generator.NewRandomWalkGenerator(cfg.Seed, generator.WithStepInterval(cfg.StepIntervalMinutes))
	m := metrics.New(reg)

	orch, err := orchestrator.New(orchestrator.Config{
		Source:     gen,
		Profiles:   cfg.ProfileBook(log.Component("profiles")),
		Rates:      rates,
		Pipeline:   pipeline,
		FetchDelay: cfg.FetchDelay,
		Logger:     log.Component("orchestrator"),
		Metrics:    m,
	})
	if err != nil {
		return nil, err
	}

	return &Feed{
		Orchestrator: orch,
		Generator:    gen,
		Metrics:      m,
	}, nil
}
