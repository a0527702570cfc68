// Package domain defines the core data model shared across the extraction
// pipeline: targets, selector sets, extracted plans, and run results.
package domain

import "time"

// NameUnspecified is the sentinel plan name assigned when a container yields
// a price or data allowance but no name. Sentinel-named plans are countable
// findings but are never deduplicated against each other.
const NameUnspecified = "Unspecified"

// ValueUnknown is the normalized placeholder for a field that could not be
// extracted from a container.
const ValueUnknown = "unknown"

// Plan is one extracted pricing/plan record.
// Created by the extractor, optionally enriched once (fields only added,
// never overwritten), immutable thereafter.
type Plan struct {
	Name           string    `json:"name" yaml:"name"`
	Operator       string    `json:"operator" yaml:"operator"`
	Price          string    `json:"price" yaml:"price"`
	Data           string    `json:"data" yaml:"data"`
	AdditionalInfo string    `json:"additional_info,omitempty" yaml:"additional_info,omitempty"`
	Score          *float64  `json:"score,omitempty" yaml:"score,omitempty"`
	ReviewCount    *int      `json:"review_count,omitempty" yaml:"review_count,omitempty"`
	ReviewURL      *string   `json:"review_url,omitempty" yaml:"review_url,omitempty"`
	SourceURL      string    `json:"source_url" yaml:"source_url"`
	ExtractedAt    time.Time `json:"extracted_at" yaml:"extracted_at"`
}

// HasSentinelName reports whether the plan carries the unspecified-name
// sentinel rather than a real name.
func (p *Plan) HasSentinelName() bool {
	return p.Name == NameUnspecified
}

// Target is one configured site/operator to scrape. Immutable for the
// duration of a run.
type Target struct {
	Key       string      `json:"key" yaml:"key"`
	Name      string      `json:"name" yaml:"name"`
	URL       string      `json:"url" yaml:"url"`
	Selectors SelectorSet `json:"selectors" yaml:"selectors"`
}

// SelectorSet groups alternative CSS selector expressions per field role.
// Expressions are ordered; the first match wins. A set is either a static
// fallback supplied with the target or produced by the structure analyzer.
type SelectorSet struct {
	Containers []string `json:"containers" yaml:"containers"`
	Name       []string `json:"name" yaml:"name"`
	Price      []string `json:"price" yaml:"price"`
	Data       []string `json:"data" yaml:"data"`
}

// IsZero reports whether no role has any expression.
func (s SelectorSet) IsZero() bool {
	return len(s.Containers) == 0 && len(s.Name) == 0 && len(s.Price) == 0 && len(s.Data) == 0
}

// WithContainers returns a copy of the set with the container expressions
// replaced. Used when the analyzer promotes an inferred container selector
// over the static fallback.
func (s SelectorSet) WithContainers(containers ...string) SelectorSet {
	out := s
	out.Containers = containers
	return out
}
