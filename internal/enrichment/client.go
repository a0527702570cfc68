// Package enrichment looks up reputation data (score, review count,
// reference URL) for extracted plan names against an external review site.
// Every failure degrades to an all-nil result; enrichment never fails the
// plan it decorates.
package enrichment

import (
	"context"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"github.com/jonesrussell/plancrawl/internal/logger"
)

// Default configuration values.
const (
	DefaultBaseURL = "https://no.trustpilot.com/search"
	DefaultTimeout = 30 * time.Second
)

// cardSelectors locate the first matching business card in the search
// response: the site-specific class first, then generic fallbacks.
var cardSelectors = []string{
	`[class*="businessUnitCard"]`,
	".business-unit-card",
	".card",
}

// ratingSelectors locate the rating text inside a card.
var ratingSelectors = []string{`[class*="rating"]`, ".star-rating"}

// reviewSelectors locate the review-count text inside a card.
var reviewSelectors = []string{`[class*="text"]`, ".review-count"}

// reviewLinkSelector locates the card's link to the review page.
const reviewLinkSelector = `a[href^="/review/"]`

var digitRun = regexp.MustCompile(`\d[\d\s.,]*`)

// Result carries the optional reputation fields for one lookup. All fields
// are nil when the lookup failed or found no card.
type Result struct {
	Score       *float64
	ReviewCount *int
	URL         *string
}

// Config configures the enrichment client.
type Config struct {
	// BaseURL is the search endpoint queried as BaseURL?query=<name>.
	BaseURL string
	// Timeout is the total per-lookup timeout.
	Timeout time.Duration
}

// Client performs reputation lookups.
type Client struct {
	http    *resty.Client
	baseURL string
	log     logger.Interface
}

// New creates an enrichment client.
func New(cfg Config, log logger.Interface) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	client := resty.New()
	client.SetTimeout(cfg.Timeout)
	client.SetHeader("User-Agent",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")

	return &Client{http: client, baseURL: cfg.BaseURL, log: log}
}

// Enrich looks up the given name and returns whatever reputation fields
// could be parsed from the first matching result card. It never returns an
// error; any failure yields a zero Result.
func (c *Client) Enrich(ctx context.Context, name string) Result {
	if name == "" {
		return Result{}
	}

	searchURL := c.baseURL + "?query=" + url.QueryEscape(name)

	resp, err := c.http.R().SetContext(ctx).Get(searchURL)
	if err != nil {
		c.log.Debug("enrichment lookup failed", "name", name, "error", err.Error())
		return Result{}
	}
	if resp.StatusCode() != http.StatusOK {
		c.log.Debug("enrichment lookup returned non-200 status",
			"name", name,
			"status", resp.StatusCode(),
		)
		return Result{}
	}

	result, parseErr := c.parse(resp.Body())
	if parseErr != nil {
		c.log.Debug("enrichment parse failed", "name", name, "error", parseErr.Error())
		return Result{}
	}

	return result
}

// parse extracts the reputation fields from the first matching card in the
// search response body.
func (c *Client) parse(body []byte) (Result, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return Result{}, err
	}

	card := firstCard(doc)
	if card == nil {
		return Result{}, nil
	}

	var result Result

	if score, ok := parseScore(firstText(card, ratingSelectors)); ok {
		result.Score = &score
	}
	if count, ok := parseReviewCount(firstText(card, reviewSelectors)); ok {
		result.ReviewCount = &count
	}
	if href, ok := card.Find(reviewLinkSelector).First().Attr("href"); ok {
		resolved := c.resolveURL(href)
		result.URL = &resolved
	}

	return result, nil
}

// firstCard returns the first result card found through the ordered selector
// fallbacks, or nil.
func firstCard(doc *goquery.Document) *goquery.Selection {
	for _, selector := range cardSelectors {
		card := doc.Find(selector).First()
		if card.Length() > 0 {
			return card
		}
	}
	return nil
}

// firstText returns the first non-empty trimmed text match for the ordered
// selectors.
func firstText(card *goquery.Selection, selectors []string) string {
	for _, selector := range selectors {
		text := strings.TrimSpace(card.Find(selector).First().Text())
		if text != "" {
			return text
		}
	}
	return ""
}

// parseScore parses a rating that may carry a comma decimal separator.
func parseScore(text string) (float64, bool) {
	if text == "" {
		return 0, false
	}
	score, err := strconv.ParseFloat(strings.ReplaceAll(text, ",", "."), 64)
	if err != nil {
		return 0, false
	}
	return score, true
}

// parseReviewCount digit-extracts a review count, stripping internal
// grouping separators.
func parseReviewCount(text string) (int, bool) {
	match := digitRun.FindString(text)
	if match == "" {
		return 0, false
	}

	cleaned := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, match)

	count, err := strconv.Atoi(cleaned)
	if err != nil {
		return 0, false
	}
	return count, true
}

// resolveURL resolves a card-relative href against the configured base.
func (c *Client) resolveURL(href string) string {
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
