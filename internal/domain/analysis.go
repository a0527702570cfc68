package domain

// ContainerCandidate is one candidate item-container selector with its match
// statistics. Candidates are ranked descending by confidence; a candidate
// with fewer than 2 matches is never produced (a single match cannot
// establish a repeating pattern).
type ContainerCandidate struct {
	Selector   string  `json:"selector" yaml:"selector"`
	Count      int     `json:"count" yaml:"count"`
	SampleText string  `json:"sample_text" yaml:"sample_text"`
	Confidence float64 `json:"confidence" yaml:"confidence"`
}

// BannerPosition is the coarse on-screen position inferred for a consent
// banner from its class and style tokens.
type BannerPosition string

const (
	PositionTop     BannerPosition = "top"
	PositionBottom  BannerPosition = "bottom"
	PositionCenter  BannerPosition = "center"
	PositionOverlay BannerPosition = "overlay"
	PositionUnknown BannerPosition = "unknown"
)

// ConsentInfo describes a detected cookie/consent barrier on a fetched page.
// Derived once per page, never mutated afterward.
type ConsentInfo struct {
	Detected        bool           `json:"detected" yaml:"detected"`
	AcceptSelectors []string       `json:"accept_selectors,omitempty" yaml:"accept_selectors,omitempty"`
	BannerSelectors []string       `json:"banner_selectors,omitempty" yaml:"banner_selectors,omitempty"`
	KeywordHits     []string       `json:"keyword_hits,omitempty" yaml:"keyword_hits,omitempty"`
	BannerText      string         `json:"banner_text,omitempty" yaml:"banner_text,omitempty"`
	Position        BannerPosition `json:"position" yaml:"position"`
	ModalOverlay    bool           `json:"modal_overlay" yaml:"modal_overlay"`
}

// StructuralAnalysis is the per-target structural record produced by the
// analyzer stage, including page diagnostics recovered alongside the
// candidate ranking.
type StructuralAnalysis struct {
	TargetKey         string               `json:"target_key" yaml:"target_key"`
	URL               string               `json:"url" yaml:"url"`
	FinalURL          string               `json:"final_url,omitempty" yaml:"final_url,omitempty"`
	ResponseCode      int                  `json:"response_code,omitempty" yaml:"response_code,omitempty"`
	Title             string               `json:"title,omitempty" yaml:"title,omitempty"`
	ContentLength     int                  `json:"content_length" yaml:"content_length"`
	Candidates        []ContainerCandidate `json:"candidates,omitempty" yaml:"candidates,omitempty"`
	Consent           ConsentInfo          `json:"consent" yaml:"consent"`
	RequiresScripting bool                 `json:"requires_scripting" yaml:"requires_scripting"`
	CommonSelectors   map[string]int       `json:"common_selectors,omitempty" yaml:"common_selectors,omitempty"`
	TextSample        string               `json:"text_sample,omitempty" yaml:"text_sample,omitempty"`
}

// BestCandidate returns the top-ranked container candidate, or nil when the
// page yielded none.
func (a *StructuralAnalysis) BestCandidate() *ContainerCandidate {
	if len(a.Candidates) == 0 {
		return nil
	}
	return &a.Candidates[0]
}
