// Package analyzer infers which repeating DOM structures on a fetched page
// are item containers, scores each candidate selector by domain-keyword
// density, and detects consent barriers. It performs no network I/O and
// never mutates its input.
package analyzer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonesrussell/plancrawl/internal/domain"
	"github.com/jonesrussell/plancrawl/internal/logger"
	"github.com/jonesrussell/plancrawl/internal/normalize"
)

const (
	// minContainerMatches is the minimum matched-element count for a
	// selector to qualify as a container candidate. A single match cannot
	// establish a repeating pattern.
	minContainerMatches = 2

	// confidenceSampleSize is how many matched elements contribute to a
	// candidate's keyword-density score.
	confidenceSampleSize = 3

	// sampleTextLimit bounds diagnostic sample text.
	sampleTextLimit = 100

	// textSampleLimit bounds the page text-content sample in the record.
	textSampleLimit = 500
)

// containerPatterns are the generic item-card selectors tried against every
// page, class-based first, then attribute-substring based.
var containerPatterns = []string{
	".plan", ".product", ".card", ".subscription", ".abonnement",
	".offer", ".package", ".tariff", ".mobile-plan",
	`[class*="plan"]`, `[class*="product"]`, `[class*="card"]`,
	`[class*="subscription"]`, `[id*="plan"]`,
}

// domainKeywords is the vocabulary whose density in a candidate's matched
// elements drives its confidence score: currency unit, data unit, generic
// plan vocabulary, and a time-unit word.
var domainKeywords = []string{"kr", "gb", "plan", "mobil", "abonnement", "måned"}

// scriptingTokens signal that static extraction will likely under-count
// items on the page.
var scriptingTokens = []string{
	"document.getelementbyid", "addeventlistener",
	"react", "vue", "angular",
	"loading...", "laster...",
}

// censusSelectors are counted per page for the structural record's
// common-selector census.
var censusSelectors = []string{
	"h1", "h2", "h3", ".price", `[class*="price"]`, ".btn, .button", "form", "table",
}

// Analyzer analyzes raw markup for container candidates and consent barriers.
type Analyzer struct {
	log logger.Interface
}

// New creates a new structure analyzer.
func New(log logger.Interface) *Analyzer {
	return &Analyzer{log: log}
}

// Analyze parses the markup and produces the structural record for one
// target: ranked container candidates, consent info, a requires-scripting
// flag, and page diagnostics.
func (a *Analyzer) Analyze(targetKey, pageURL, markup string) (*domain.StructuralAnalysis, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parse markup: %w", err)
	}

	lowerMarkup := strings.ToLower(markup)

	analysis := &domain.StructuralAnalysis{
		TargetKey:         targetKey,
		URL:               pageURL,
		Title:             normalize.CollapseWhitespace(doc.Find("title").First().Text()),
		ContentLength:     len(markup),
		Candidates:        findCandidates(doc),
		Consent:           detectConsent(doc, lowerMarkup),
		RequiresScripting: requiresScripting(lowerMarkup),
		CommonSelectors:   selectorCensus(doc),
		TextSample:        textSample(doc),
	}

	a.log.Debug("structure analysis complete",
		"target", targetKey,
		"candidates", len(analysis.Candidates),
		"consent_detected", analysis.Consent.Detected,
		"requires_scripting", analysis.RequiresScripting,
	)

	return analysis, nil
}

// findCandidates applies the generic container patterns and ranks the
// resulting candidates descending by confidence, breaking ties by higher
// match count.
func findCandidates(doc *goquery.Document) []domain.ContainerCandidate {
	candidates := make([]domain.ContainerCandidate, 0, len(containerPatterns))

	for _, pattern := range containerPatterns {
		sel := doc.Find(pattern)
		if sel.Length() < minContainerMatches {
			continue
		}

		candidates = append(candidates, domain.ContainerCandidate{
			Selector:   pattern,
			Count:      sel.Length(),
			SampleText: truncate(normalize.CollapseWhitespace(sel.First().Text()), sampleTextLimit),
			Confidence: scoreConfidence(sel),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Confidence != candidates[j].Confidence {
			return candidates[i].Confidence > candidates[j].Confidence
		}
		return candidates[i].Count > candidates[j].Count
	})

	return candidates
}

// scoreConfidence averages, over up to the first confidenceSampleSize
// matched elements, the fraction of domain keywords present in each
// element's text.
func scoreConfidence(sel *goquery.Selection) float64 {
	sampled := sel.Length()
	if sampled > confidenceSampleSize {
		sampled = confidenceSampleSize
	}
	if sampled == 0 {
		return 0
	}

	var total float64
	sel.Slice(0, sampled).Each(func(_ int, el *goquery.Selection) {
		text := strings.ToLower(el.Text())
		matches := 0
		for _, keyword := range domainKeywords {
			if strings.Contains(text, keyword) {
				matches++
			}
		}
		total += float64(matches) / float64(len(domainKeywords))
	})

	return total / float64(sampled)
}

// requiresScripting reports whether the raw markup carries any
// JavaScript-framework or loading-placeholder token.
func requiresScripting(lowerMarkup string) bool {
	for _, token := range scriptingTokens {
		if strings.Contains(lowerMarkup, token) {
			return true
		}
	}
	return false
}

// selectorCensus counts matches for a fixed set of structurally interesting
// selectors, omitting zero counts.
func selectorCensus(doc *goquery.Document) map[string]int {
	census := make(map[string]int, len(censusSelectors))
	for _, sel := range censusSelectors {
		if n := doc.Find(sel).Length(); n > 0 {
			census[sel] = n
		}
	}
	return census
}

// textSample returns a bounded, whitespace-collapsed sample of the page's
// body text.
func textSample(doc *goquery.Document) string {
	body := doc.Find("body").First()
	if body.Length() == 0 {
		return ""
	}
	return truncate(normalize.CollapseWhitespace(body.Text()), textSampleLimit)
}

// truncate bounds s to limit runes.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
