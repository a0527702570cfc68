package domain

import "time"

// TargetStatus is the terminal (or in-flight) state of one target's pipeline.
type TargetStatus string

const (
	// StatusPending means the target has not been dispatched yet.
	StatusPending TargetStatus = "pending"
	// StatusFetchFailed means every fetch attempt was exhausted.
	StatusFetchFailed TargetStatus = "fetch_failed"
	// StatusNoItems means the page fetched and analyzed cleanly but no
	// container yielded a plan.
	StatusNoItems TargetStatus = "no_items"
	// StatusAnalyzeOnly means the pipeline stopped after structural analysis
	// by request.
	StatusAnalyzeOnly TargetStatus = "analyze_only"
	// StatusDone means the pipeline completed and contributed plans.
	StatusDone TargetStatus = "done"
	// StatusFailed means an unhandled condition was recovered inside the
	// target's pipeline.
	StatusFailed TargetStatus = "failed"
)

// TargetResult is the per-target slice of a run: terminal status, structural
// record, and any diagnostic carried out of the pipeline.
type TargetResult struct {
	TargetKey string              `json:"target_key" yaml:"target_key"`
	Status    TargetStatus        `json:"status" yaml:"status"`
	Error     string              `json:"error,omitempty" yaml:"error,omitempty"`
	Analysis  *StructuralAnalysis `json:"analysis,omitempty" yaml:"analysis,omitempty"`
	PlanCount int                 `json:"plan_count" yaml:"plan_count"`
}

// RunResult aggregates all plans across targets (deduplicated by name, first
// occurrence wins) plus the per-target records. Read-only after the
// orchestrator's merge step completes.
type RunResult struct {
	RunID      string                   `json:"run_id" yaml:"run_id"`
	StartedAt  time.Time                `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time                `json:"finished_at" yaml:"finished_at"`
	Plans      []Plan                   `json:"plans" yaml:"plans"`
	Targets    map[string]*TargetResult `json:"targets" yaml:"targets"`
}

// Operators returns the distinct operator names across all plans, in first-seen order.
func (r *RunResult) Operators() []string {
	seen := make(map[string]struct{}, len(r.Plans))
	out := make([]string, 0, len(r.Plans))
	for i := range r.Plans {
		op := r.Plans[i].Operator
		if _, ok := seen[op]; ok {
			continue
		}
		seen[op] = struct{}{}
		out = append(out, op)
	}
	return out
}

// PlanCountByOperator returns per-operator plan counts.
func (r *RunResult) PlanCountByOperator() map[string]int {
	counts := make(map[string]int, len(r.Targets))
	for i := range r.Plans {
		counts[r.Plans[i].Operator]++
	}
	return counts
}
