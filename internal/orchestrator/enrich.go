package orchestrator

import (
	"context"
	"fmt"
	"sync"

	"github.com/jonesrussell/plancrawl/internal/domain"
	"github.com/jonesrussell/plancrawl/internal/logger"
)

// enrichAll runs the reputation lookup for every plan with a real name,
// concurrently. Enrichment only adds fields; a failed or panicking lookup
// leaves its plan untouched and never affects the others.
func (o *Orchestrator) enrichAll(ctx context.Context, plans []domain.Plan, log logger.Interface) {
	var wg sync.WaitGroup

	for i := range plans {
		if plans[i].HasSentinelName() {
			continue
		}

		wg.Add(1)
		go func(p *domain.Plan) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					log.Warn("enrichment panicked", "plan", p.Name, "panic", fmt.Sprint(r))
				}
			}()

			res := o.enricher.Enrich(ctx, p.Name)
			p.Score = res.Score
			p.ReviewCount = res.ReviewCount
			p.ReviewURL = res.URL
		}(&plans[i])
	}

	wg.Wait()
}
