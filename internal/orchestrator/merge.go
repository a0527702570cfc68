package orchestrator

import (
	"github.com/google/uuid"

	"github.com/jonesrussell/plancrawl/internal/domain"
)

// merge combines per-target outcomes into a single run result. Plans are
// appended in target submission order and deduplicated by name, keeping the
// first occurrence. Plans carrying the sentinel name are never deduplicated
// against each other.
func (o *Orchestrator) merge(targetList []domain.Target, outcomes []targetOutcome) *domain.RunResult {
	result := &domain.RunResult{
		RunID:   uuid.NewString(),
		Targets: make(map[string]*domain.TargetResult, len(targetList)),
	}

	seen := make(map[string]struct{})
	for i := range outcomes {
		if outcomes[i].result != nil {
			result.Targets[targetList[i].Key] = outcomes[i].result
		}

		for _, plan := range outcomes[i].plans {
			if !plan.HasSentinelName() {
				if _, dup := seen[plan.Name]; dup {
					continue
				}
				seen[plan.Name] = struct{}{}
			}
			result.Plans = append(result.Plans, plan)
		}
	}

	return result
}
