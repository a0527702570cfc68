// Package extractor pulls name/price/data fields out of item containers
// resolved through a selector set, normalizing values as it goes.
package extractor

import (
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonesrussell/plancrawl/internal/domain"
	"github.com/jonesrussell/plancrawl/internal/logger"
	"github.com/jonesrussell/plancrawl/internal/normalize"
)

// extraInfoTags map container-text phrase sets to human-readable tags
// appended to a plan's additional info.
var extraInfoTags = []struct {
	tag     string
	phrases []string
}{
	{"Unlimited calls", []string{"ubegrenset samtaler", "fri samtaler", "unlimited calls"}},
	{"Unlimited SMS", []string{"ubegrenset sms", "fri sms", "unlimited sms"}},
	{"5G support", []string{"5g", "5g-nett", "5g network"}},
}

// Extractor extracts plan records from fetched markup.
type Extractor struct {
	log logger.Interface
}

// New creates a new field extractor.
func New(log logger.Interface) *Extractor {
	return &Extractor{log: log}
}

// Extract resolves item containers through the selector set and produces one
// plan per container that yields at least one of name, price, or data.
// Containers yielding nothing are skipped silently. Enrichment fields are
// left unset.
func (e *Extractor) Extract(
	markup string,
	selectors domain.SelectorSet,
	operator, sourceURL string,
) ([]domain.Plan, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parse markup: %w", err)
	}

	containers := resolveContainers(doc, selectors.Containers)
	e.log.Debug("resolved item containers",
		"operator", operator,
		"count", len(containers),
	)

	now := time.Now().UTC()
	plans := make([]domain.Plan, 0, len(containers))

	for _, container := range containers {
		name := firstMatch(container, selectors.Name)
		price := firstMatch(container, selectors.Price)
		data := firstMatch(container, selectors.Data)

		if name == "" && price == "" && data == "" {
			continue
		}

		if price != "" {
			price = normalize.Price(price)
		} else {
			price = domain.ValueUnknown
		}
		if data != "" {
			data = normalize.DataAllowance(data)
		} else {
			data = domain.ValueUnknown
		}
		// A priced or sized finding without a name is still countable.
		if name == "" {
			name = domain.NameUnspecified
		}

		plans = append(plans, domain.Plan{
			Name:           name,
			Operator:       operator,
			Price:          price,
			Data:           data,
			AdditionalInfo: extraInfo(container),
			SourceURL:      sourceURL,
			ExtractedAt:    now,
		})
	}

	return plans, nil
}

// resolveContainers tries each container expression in order and unions the
// matches, suppressing duplicates by element identity.
func resolveContainers(doc *goquery.Document, expressions []string) []*goquery.Selection {
	seenNodes := make(map[any]struct{})
	var containers []*goquery.Selection

	for _, expr := range expressions {
		doc.Find(expr).Each(func(_ int, el *goquery.Selection) {
			if len(el.Nodes) == 0 {
				return
			}
			node := el.Nodes[0]
			if _, dup := seenNodes[node]; dup {
				return
			}
			seenNodes[node] = struct{}{}
			containers = append(containers, el)
		})
	}

	return containers
}

// firstMatch tries each expression in order and returns the first non-empty,
// whitespace-collapsed text match within the container.
func firstMatch(container *goquery.Selection, expressions []string) string {
	for _, expr := range expressions {
		text := normalize.CollapseWhitespace(container.Find(expr).First().Text())
		if text != "" {
			return text
		}
	}
	return ""
}

// extraInfo scans the container's full text for fixed phrase sets and joins
// the matching tags with semicolons.
func extraInfo(container *goquery.Selection) string {
	text := strings.ToLower(container.Text())
	var tags []string
	for _, entry := range extraInfoTags {
		for _, phrase := range entry.phrases {
			if strings.Contains(text, phrase) {
				tags = append(tags, entry.tag)
				break
			}
		}
	}
	return strings.Join(tags, "; ")
}
