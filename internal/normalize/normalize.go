// Package normalize provides locale-aware extraction of price and
// data-allowance values from free text. All functions are pure and perform
// no I/O.
package normalize

import (
	"fmt"
	"regexp"
	"strings"
)

// Unlimited is the canonical value returned when any unlimited-data keyword
// is present, regardless of co-occurring numeric mentions.
const Unlimited = "Unlimited"

// unlimitedKeywords mark an unlimited data allowance in Norwegian or English.
var unlimitedKeywords = []string{"ubegrenset", "unlimited", "fri data", "uten grense"}

// pricePatterns match Norwegian krone amounts: a number followed or preceded
// by kr/NOK, or a trailing ",-" marker. The decimal separator may be a comma
// or a dot.
var pricePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\d+(?:[,.]\d+)?)\s*kr\b`),
	regexp.MustCompile(`(?i)(\d+(?:[,.]\d+)?)\s*NOK\b`),
	regexp.MustCompile(`(?i)\bkr\s*(\d+(?:[,.]\d+)?)`),
	regexp.MustCompile(`(?i)\bNOK\s*(\d+(?:[,.]\d+)?)`),
	regexp.MustCompile(`(\d+(?:[,.]\d+)?)\s*,-`),
}

// dataPatterns match numeric data allowances. "giga" is accepted as a GB
// synonym.
var dataPatterns = []struct {
	re   *regexp.Regexp
	unit string
}{
	{regexp.MustCompile(`(?i)(\d+(?:[,.]\d+)?)\s*GB\b`), "GB"},
	{regexp.MustCompile(`(?i)(\d+(?:[,.]\d+)?)\s*TB\b`), "TB"},
	{regexp.MustCompile(`(?i)(\d+(?:[,.]\d+)?)\s*MB\b`), "MB"},
	{regexp.MustCompile(`(?i)(\d+)\s*giga\b`), "GB"},
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// CollapseWhitespace collapses any run of whitespace to a single space and
// trims leading and trailing whitespace.
func CollapseWhitespace(text string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(text, " "))
}

// Price extracts a normalized krone amount from free text, returning
// "<amount> kr" with the decimal separator normalized to a dot. When no
// pattern matches, the whitespace-collapsed input is returned unchanged, so
// the result is never empty unless the input is.
func Price(text string) string {
	if text == "" {
		return ""
	}

	for _, re := range pricePatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			amount := strings.ReplaceAll(m[1], ",", ".")
			return fmt.Sprintf("%s kr", amount)
		}
	}

	return CollapseWhitespace(text)
}

// DataAllowance extracts a normalized data allowance from free text. Any
// unlimited keyword takes priority over numeric mentions and yields the
// literal "Unlimited". Numeric GB/TB/MB amounts are returned as
// "<amount> <unit>" with the decimal separator normalized to a dot. When
// nothing matches, the whitespace-collapsed input is returned.
func DataAllowance(text string) string {
	if text == "" {
		return ""
	}

	lower := strings.ToLower(text)
	for _, keyword := range unlimitedKeywords {
		if strings.Contains(lower, keyword) {
			return Unlimited
		}
	}

	for _, p := range dataPatterns {
		if m := p.re.FindStringSubmatch(text); m != nil {
			amount := strings.ReplaceAll(m[1], ",", ".")
			return fmt.Sprintf("%s %s", amount, p.unit)
		}
	}

	return CollapseWhitespace(text)
}
