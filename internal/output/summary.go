package output

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/jonesrussell/plancrawl/internal/domain"
)

// timePrecision rounds the reported run duration.
const timePrecision = time.Millisecond

// sortedKeys returns target keys in stable alphabetical order for display.
func sortedKeys(targets map[string]*domain.TargetResult) []string {
	keys := make([]string, 0, len(targets))
	for key := range targets {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// SummaryRenderer displays run results as console tables.
type SummaryRenderer struct {
	out io.Writer
}

// NewSummaryRenderer creates a renderer writing to out.
func NewSummaryRenderer(out io.Writer) *SummaryRenderer {
	return &SummaryRenderer{out: out}
}

// Render prints the target status table, the plan table, and per-operator
// counts for a completed run.
func (r *SummaryRenderer) Render(result *domain.RunResult) {
	r.renderTargets(result)

	if len(result.Plans) > 0 {
		r.renderPlans(result)
	}

	fmt.Fprintf(r.out, "\n%d plans from %d operators (run %s, %s)\n",
		len(result.Plans),
		len(result.Operators()),
		result.RunID,
		result.FinishedAt.Sub(result.StartedAt).Round(timePrecision),
	)
}

// RenderAnalysis prints the structural analysis table for an analyze-only
// run: candidate selectors, confidence, and page diagnostics per target.
func (r *SummaryRenderer) RenderAnalysis(result *domain.RunResult) {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Target", "Best Selector", "Confidence", "Matches", "Consent", "Scripting"})

	for _, key := range sortedKeys(result.Targets) {
		res := result.Targets[key]
		selector, confidence, matches := "-", "-", "-"
		consent, scripting := "-", "-"
		if res.Analysis != nil {
			if best := res.Analysis.BestCandidate(); best != nil {
				selector = best.Selector
				confidence = fmt.Sprintf("%.2f", best.Confidence)
				matches = fmt.Sprintf("%d", best.Count)
			}
			consent = yesNo(res.Analysis.Consent.Detected)
			scripting = yesNo(res.Analysis.RequiresScripting)
		}
		t.AppendRow(table.Row{key, selector, confidence, matches, consent, scripting})
	}

	t.Render()
}

func (r *SummaryRenderer) renderTargets(result *domain.RunResult) {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Target", "Status", "Plans", "Error"})

	for _, key := range sortedKeys(result.Targets) {
		res := result.Targets[key]
		t.AppendRow(table.Row{key, string(res.Status), res.PlanCount, res.Error})
	}

	t.Render()
}

func (r *SummaryRenderer) renderPlans(result *domain.RunResult) {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Plan", "Operator", "Price", "Data", "Score", "Reviews"})

	for i := range result.Plans {
		p := &result.Plans[i]
		score, reviews := "-", "-"
		if p.Score != nil {
			score = fmt.Sprintf("%.1f", *p.Score)
		}
		if p.ReviewCount != nil {
			reviews = fmt.Sprintf("%d", *p.ReviewCount)
		}
		t.AppendRow(table.Row{p.Name, p.Operator, p.Price, p.Data, score, reviews})
	}

	t.Render()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
