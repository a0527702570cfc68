// Package orchestrator runs the per-target extraction pipeline across many
// targets concurrently, isolating per-target failures and merging all
// results into a single run result.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonesrussell/plancrawl/internal/domain"
	"github.com/jonesrussell/plancrawl/internal/enrichment"
	"github.com/jonesrussell/plancrawl/internal/fetcher"
	"github.com/jonesrussell/plancrawl/internal/logger"
)

// ErrNoTargetsConfigured is the only fatal, run-level error: a run invoked
// with an empty target list.
var ErrNoTargetsConfigured = errors.New("no targets configured for run")

// DefaultMaxConcurrency caps concurrent in-flight target pipelines.
const DefaultMaxConcurrency = 10

// promoteThreshold is the confidence above which the analyzer's best
// container candidate replaces the target's fallback container selectors.
const promoteThreshold = 0.5

// defaultSelectors fill in any selector role the target's fallback set
// leaves empty.
var defaultSelectors = domain.SelectorSet{
	Containers: []string{".plan-card", ".product-card", ".subscription-card", `[class*="plan"]`},
	Name:       []string{"h3", ".plan-name", ".product-title", ".title"},
	Price:      []string{".price", ".monthly-price", ".cost", `[class*="price"]`},
	Data:       []string{".data-amount", ".gb-amount", ".data-limit", `[class*="data"]`},
}

// Fetcher retrieves a page with its response metadata, reporting failure
// without an error.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (fetcher.Page, bool)
}

// Analyzer produces the structural record for fetched markup.
type Analyzer interface {
	Analyze(targetKey, pageURL, markup string) (*domain.StructuralAnalysis, error)
}

// Extractor pulls plan records out of markup through a selector set.
type Extractor interface {
	Extract(markup string, selectors domain.SelectorSet, operator, sourceURL string) ([]domain.Plan, error)
}

// Enricher looks up reputation fields for a plan name.
type Enricher interface {
	Enrich(ctx context.Context, name string) enrichment.Result
}

// Options configure a run.
type Options struct {
	// AnalyzeOnly stops each pipeline after structural analysis.
	AnalyzeOnly bool
	// EnrichmentEnabled turns on the reputation lookup for every plan with
	// a non-sentinel name.
	EnrichmentEnabled bool
	// MaxConcurrency caps concurrent target pipelines; 0 means the default.
	MaxConcurrency int
}

// Orchestrator coordinates the fetch, analyze, extract, and enrich stages
// per target and aggregates the run result.
type Orchestrator struct {
	fetcher   Fetcher
	analyzer  Analyzer
	extractor Extractor
	enricher  Enricher
	log       logger.Interface
	opts      Options
}

// New creates an orchestrator. The enricher may be nil when enrichment is
// disabled.
func New(
	fetcher Fetcher,
	analyzer Analyzer,
	extractor Extractor,
	enricher Enricher,
	log logger.Interface,
	opts Options,
) *Orchestrator {
	if opts.MaxConcurrency <= 0 {
		opts.MaxConcurrency = DefaultMaxConcurrency
	}
	return &Orchestrator{
		fetcher:   fetcher,
		analyzer:  analyzer,
		extractor: extractor,
		enricher:  enricher,
		log:       log,
		opts:      opts,
	}
}

// targetOutcome is one pipeline's contribution, indexed by submission order
// so the merge step stays deterministic.
type targetOutcome struct {
	result *domain.TargetResult
	plans  []domain.Plan
}

// Run executes one pipeline per target concurrently and merges the results.
// It always returns a RunResult when targets exist, even if every pipeline
// failed; per-target failures never abort the run. Cancelling ctx stops
// dispatching not-yet-started targets but lets in-flight pipelines finish.
func (o *Orchestrator) Run(ctx context.Context, targetList []domain.Target) (*domain.RunResult, error) {
	if len(targetList) == 0 {
		return nil, ErrNoTargetsConfigured
	}

	o.log.Info("run starting",
		"targets", len(targetList),
		"analyze_only", o.opts.AnalyzeOnly,
		"max_concurrency", o.opts.MaxConcurrency,
	)

	started := time.Now().UTC()
	outcomes := make([]targetOutcome, len(targetList))
	sem := make(chan struct{}, o.opts.MaxConcurrency)
	done := make(chan int, len(targetList))

	dispatched := 0
	for i := range targetList {
		if ctx.Err() != nil {
			outcomes[i] = targetOutcome{result: &domain.TargetResult{
				TargetKey: targetList[i].Key,
				Status:    domain.StatusPending,
				Error:     "run cancelled before dispatch",
			}}
			continue
		}

		dispatched++
		go func(idx int, target domain.Target) {
			sem <- struct{}{}
			defer func() { <-sem }()

			outcomes[idx] = o.runTarget(ctx, target)
			done <- idx
		}(i, targetList[i])
	}

	for n := 0; n < dispatched; n++ {
		<-done
	}

	result := o.merge(targetList, outcomes)
	result.StartedAt = started
	result.FinishedAt = time.Now().UTC()

	o.log.Info("run complete",
		"run_id", result.RunID,
		"plans", len(result.Plans),
		"targets", len(result.Targets),
	)

	return result, nil
}

// runTarget executes the per-target state machine. Any panic is recovered
// into a failed status so it cannot propagate to sibling targets.
func (o *Orchestrator) runTarget(ctx context.Context, target domain.Target) (outcome targetOutcome) {
	log := o.log.With("target", target.Key)

	defer func() {
		if r := recover(); r != nil {
			log.Error("target pipeline panicked", "panic", fmt.Sprint(r))
			outcome = targetOutcome{result: &domain.TargetResult{
				TargetKey: target.Key,
				Status:    domain.StatusFailed,
				Error:     fmt.Sprint(r),
			}}
		}
	}()

	page, ok := o.fetcher.Fetch(ctx, target.URL)
	if !ok {
		log.Warn("target fetch failed")
		return targetOutcome{result: &domain.TargetResult{
			TargetKey: target.Key,
			Status:    domain.StatusFetchFailed,
		}}
	}

	analysis, err := o.analyzer.Analyze(target.Key, target.URL, page.Body)
	if err != nil {
		// Unparseable markup is "no data", not a run error.
		log.Warn("structural analysis failed", "error", err.Error())
		return targetOutcome{result: &domain.TargetResult{
			TargetKey: target.Key,
			Status:    domain.StatusNoItems,
			Error:     err.Error(),
		}}
	}

	// The analyzer sees only markup; response metadata is recorded here.
	analysis.ResponseCode = page.StatusCode
	analysis.FinalURL = page.FinalURL

	if o.opts.AnalyzeOnly {
		return targetOutcome{result: &domain.TargetResult{
			TargetKey: target.Key,
			Status:    domain.StatusAnalyzeOnly,
			Analysis:  analysis,
		}}
	}

	plans, err := o.extractor.Extract(page.Body, o.selectorsFor(target, analysis), target.Name, target.URL)
	if err != nil {
		log.Warn("extraction failed", "error", err.Error())
		return targetOutcome{result: &domain.TargetResult{
			TargetKey: target.Key,
			Status:    domain.StatusNoItems,
			Error:     err.Error(),
			Analysis:  analysis,
		}}
	}

	if len(plans) == 0 {
		log.Info("no plans extracted")
		return targetOutcome{result: &domain.TargetResult{
			TargetKey: target.Key,
			Status:    domain.StatusNoItems,
			Analysis:  analysis,
		}}
	}

	if o.opts.EnrichmentEnabled && o.enricher != nil {
		o.enrichAll(ctx, plans, log)
	}

	log.Info("target pipeline complete", "plans", len(plans))

	return targetOutcome{
		result: &domain.TargetResult{
			TargetKey: target.Key,
			Status:    domain.StatusDone,
			Analysis:  analysis,
			PlanCount: len(plans),
		},
		plans: plans,
	}
}

// selectorsFor resolves the selector set for extraction: target fallbacks
// padded with defaults, with the analyzer's best candidate promoted to the
// container role when its confidence clears the threshold.
func (o *Orchestrator) selectorsFor(target domain.Target, analysis *domain.StructuralAnalysis) domain.SelectorSet {
	sel := target.Selectors
	if len(sel.Containers) == 0 {
		sel.Containers = defaultSelectors.Containers
	}
	if len(sel.Name) == 0 {
		sel.Name = defaultSelectors.Name
	}
	if len(sel.Price) == 0 {
		sel.Price = defaultSelectors.Price
	}
	if len(sel.Data) == 0 {
		sel.Data = defaultSelectors.Data
	}

	if best := analysis.BestCandidate(); best != nil && best.Confidence > promoteThreshold {
		o.log.Debug("promoting inferred container selector",
			"target", target.Key,
			"selector", best.Selector,
			"confidence", best.Confidence,
		)
		sel = sel.WithContainers(best.Selector)
	}

	return sel
}
