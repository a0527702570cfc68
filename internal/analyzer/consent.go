package analyzer

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonesrussell/plancrawl/internal/domain"
	"github.com/jonesrussell/plancrawl/internal/normalize"
)

// minKeywordHits is the distinct-keyword threshold above which page text
// alone marks a consent barrier as detected.
const minKeywordHits = 2

// consentKeywords index consent-related vocabulary by language group.
// Matches are counted per distinct (keyword, group) pair.
var consentKeywords = []struct {
	lang  string
	words []string
}{
	{"norwegian", []string{"informasjonskapsler", "samtykke", "personvern", "cookies", "godta"}},
	{"english", []string{"cookies", "consent", "privacy", "accept", "gdpr", "tracking"}},
	{"common", []string{"cookie", "gdpr", "privacy policy", "data protection"}},
}

// bannerSelectors locate candidate consent-banner containers.
var bannerSelectors = []string{
	".cookie-banner", ".gdpr-banner", ".consent-banner",
	".privacy-notice", "#cookie-notice", "#gdpr-notice",
	`[class*="cookie"]`, `[class*="consent"]`, `[class*="gdpr"]`,
	`[id*="cookie"]`, `[id*="consent"]`, `[role="dialog"]`,
}

// acceptSelectors locate candidate consent accept buttons.
var acceptSelectors = []string{
	`[data-testid*="accept"]`, `[data-cy*="accept"]`,
	".cookie-accept", ".accept-cookies", ".gdpr-accept",
	`button[class*="accept"]`, `button[id*="accept"]`,
	`[aria-label*="accept"]`, `[title*="accept"]`,
	"button",
}

// affirmativeTokens qualify an accept-button candidate by its visible text.
var affirmativeTokens = []string{"godta", "accept", "ok", "aksepter"}

// modalSelectors detect modal/overlay/dialog markers.
const modalSelectors = `[role="dialog"], .modal, .overlay, [class*="modal"], [class*="overlay"]`

// positionIndicators map class/style tokens to a coarse banner position,
// checked in order.
var positionIndicators = []struct {
	position domain.BannerPosition
	tokens   []string
}{
	{domain.PositionTop, []string{"top", "header", "fixed-top"}},
	{domain.PositionBottom, []string{"bottom", "footer", "fixed-bottom"}},
	{domain.PositionCenter, []string{"center", "modal", "popup"}},
	{domain.PositionOverlay, []string{"overlay", "fixed", "absolute"}},
}

// detectConsent scans the page for cookie/consent barriers: distinct keyword
// hits in the raw text, banner containers whose text carries a consent
// keyword, accept buttons with affirmative visible text, and modal markers.
func detectConsent(doc *goquery.Document, lowerMarkup string) domain.ConsentInfo {
	info := domain.ConsentInfo{Position: domain.PositionUnknown}

	for _, group := range consentKeywords {
		for _, keyword := range group.words {
			if strings.Contains(lowerMarkup, keyword) {
				info.KeywordHits = append(info.KeywordHits, fmt.Sprintf("%s (%s)", keyword, group.lang))
			}
		}
	}

	var firstBanner *goquery.Selection
	for _, selector := range bannerSelectors {
		matched := false
		doc.Find(selector).Each(func(_ int, el *goquery.Selection) {
			text := strings.ToLower(el.Text())
			if !containsConsentKeyword(text) {
				return
			}
			matched = true
			if firstBanner == nil {
				firstBanner = el
			}
		})
		if matched {
			info.BannerSelectors = append(info.BannerSelectors, selector)
		}
	}

	for _, selector := range acceptSelectors {
		matched := false
		doc.Find(selector).EachWithBreak(func(_ int, el *goquery.Selection) bool {
			text := strings.ToLower(normalize.CollapseWhitespace(el.Text()))
			if text == "" {
				return true
			}
			for _, token := range affirmativeTokens {
				if strings.Contains(text, token) {
					matched = true
					return false
				}
			}
			return true
		})
		if matched {
			info.AcceptSelectors = append(info.AcceptSelectors, selector)
		}
	}

	info.ModalOverlay = doc.Find(modalSelectors).Length() > 0

	info.Detected = len(info.KeywordHits) >= minKeywordHits ||
		len(info.BannerSelectors) > 0 ||
		len(info.AcceptSelectors) > 0

	if firstBanner != nil {
		info.BannerText = truncate(normalize.CollapseWhitespace(firstBanner.Text()), sampleTextLimit*2)
		info.Position = bannerPosition(firstBanner)
	}

	return info
}

// containsConsentKeyword reports whether lowered text carries any consent
// keyword from any language group.
func containsConsentKeyword(lowerText string) bool {
	for _, group := range consentKeywords {
		for _, keyword := range group.words {
			if strings.Contains(lowerText, keyword) {
				return true
			}
		}
	}
	return false
}

// bannerPosition infers the coarse screen position from the banner's class
// and style attribute tokens.
func bannerPosition(el *goquery.Selection) domain.BannerPosition {
	class, _ := el.Attr("class")
	style, _ := el.Attr("style")
	haystack := strings.ToLower(class + " " + style)

	for _, indicator := range positionIndicators {
		for _, token := range indicator.tokens {
			if strings.Contains(haystack, token) {
				return indicator.position
			}
		}
	}
	return domain.PositionUnknown
}
