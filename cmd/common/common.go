// Package common provides shared wiring used by every plancrawl
// subcommand: configuration loading, logger construction, and the
// assembly of the extraction pipeline.
package common

import (
	"fmt"

	"github.com/jonesrussell/plancrawl/internal/analyzer"
	"github.com/jonesrussell/plancrawl/internal/config"
	"github.com/jonesrussell/plancrawl/internal/enrichment"
	"github.com/jonesrussell/plancrawl/internal/extractor"
	"github.com/jonesrussell/plancrawl/internal/fetcher"
	"github.com/jonesrussell/plancrawl/internal/logger"
	"github.com/jonesrussell/plancrawl/internal/orchestrator"
)

// Setup bundles everything a subcommand needs to run a scrape.
type Setup struct {
	Config *config.Config
	Logger logger.Interface
}

// Init loads configuration and builds the logger. When debug is set the
// log level is forced to debug regardless of configuration.
func Init(cfgFile string, debug bool) (*Setup, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	level := cfg.Log.Level
	if debug {
		level = "debug"
	}

	log, err := logger.New(&logger.Config{
		Level:       logger.Level(level),
		Development: cfg.Log.Development,
		Encoding:    cfg.Log.Encoding,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return &Setup{Config: cfg, Logger: log}, nil
}

// Pipeline assembles the orchestrator from configuration. The enricher is
// only constructed when enrichment is enabled.
func (s *Setup) Pipeline(opts orchestrator.Options) *orchestrator.Orchestrator {
	fetch := fetcher.New(fetcher.Config{
		MaxRetries:     s.Config.Fetcher.MaxRetries,
		Timeout:        s.Config.Fetcher.Timeout,
		ConnectTimeout: s.Config.Fetcher.ConnectTimeout,
		BackoffBase:    s.Config.Fetcher.BackoffBase,
		UserAgent:      s.Config.Fetcher.UserAgent,
	}, s.Logger)

	var enricher orchestrator.Enricher
	if opts.EnrichmentEnabled {
		enricher = enrichment.New(enrichment.Config{
			BaseURL: s.Config.Enrichment.BaseURL,
			Timeout: s.Config.Enrichment.Timeout,
		}, s.Logger)
	}

	return orchestrator.New(
		fetch,
		analyzer.New(s.Logger),
		extractor.New(s.Logger),
		enricher,
		s.Logger,
		opts,
	)
}
