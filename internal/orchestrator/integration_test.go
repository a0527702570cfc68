package orchestrator_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/plancrawl/internal/analyzer"
	"github.com/jonesrussell/plancrawl/internal/domain"
	"github.com/jonesrussell/plancrawl/internal/extractor"
	"github.com/jonesrussell/plancrawl/internal/fetcher"
	"github.com/jonesrussell/plancrawl/internal/logger"
	"github.com/jonesrussell/plancrawl/internal/orchestrator"
)

const teliaPageHTML = `<!DOCTYPE html>
<html><head><title>Mobilabonnement - Telia</title></head><body>
<div class="plan-card">
  <h3>Telia Frihet</h3>
  <span class="price">299 kr/md.</span>
  <span class="data">50 GB</span>
</div>
<div class="plan-card">
  <h3>Telia Smart</h3>
  <span class="price">199 kr/md.</span>
  <span class="data">10 GB</span>
</div>
</body></html>`

const resellerPageHTML = `<!DOCTYPE html>
<html><head><title>Abonnement - Reseller</title></head><body>
<div class="plan-card">
  <h3>Telia Frihet</h3>
  <span class="price">309 kr/md.</span>
  <span class="data">50 GB</span>
</div>
<div class="plan-card">
  <h3>Reseller Fri Data</h3>
  <span class="price">399,- per mnd</span>
  <span class="data">Ubegrenset data</span>
</div>
</body></html>`

func servePage(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func selectorsForPlanCards() domain.SelectorSet {
	return domain.SelectorSet{
		Containers: []string{".plan-card"},
		Name:       []string{"h3"},
		Price:      []string{".price"},
		Data:       []string{".data"},
	}
}

// TestPipelineEndToEnd runs the real fetcher, analyzer, and extractor
// against local servers: one plan name appears on both pages and must
// survive deduplicated, a dead target must not affect the others.
func TestPipelineEndToEnd(t *testing.T) {
	teliaSrv := servePage(t, teliaPageHTML)
	resellerSrv := servePage(t, resellerPageHTML)

	downSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(downSrv.Close)

	log := logger.NewNoOp()
	fetch := fetcher.New(fetcher.Config{
		MaxRetries:     1,
		Timeout:        5 * time.Second,
		ConnectTimeout: 5 * time.Second,
		BackoffBase:    time.Millisecond,
	}, log)

	o := orchestrator.New(fetch, analyzer.New(log), extractor.New(log), nil, log, orchestrator.Options{})

	targetList := []domain.Target{
		{Key: "telia", Name: "Telia", URL: teliaSrv.URL, Selectors: selectorsForPlanCards()},
		{Key: "reseller", Name: "Reseller", URL: resellerSrv.URL, Selectors: selectorsForPlanCards()},
		{Key: "down", Name: "Down", URL: downSrv.URL, Selectors: selectorsForPlanCards()},
	}

	result, err := o.Run(context.Background(), targetList)

	require.NoError(t, err)
	require.Len(t, result.Targets, 3)
	assert.Equal(t, domain.StatusDone, result.Targets["telia"].Status)
	assert.Equal(t, domain.StatusDone, result.Targets["reseller"].Status)
	assert.Equal(t, domain.StatusFetchFailed, result.Targets["down"].Status)

	names := make([]string, 0, len(result.Plans))
	for _, p := range result.Plans {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"Telia Frihet", "Telia Smart", "Reseller Fri Data"}, names)

	// Telia submitted first, so its copy of the shared plan wins.
	assert.Equal(t, "Telia", result.Plans[0].Operator)
	assert.Equal(t, "299 kr", result.Plans[0].Price)
	assert.Equal(t, "50 GB", result.Plans[0].Data)

	// The reseller's unlimited tier normalizes to the unlimited keyword.
	assert.Equal(t, "399 kr", result.Plans[2].Price)
	assert.Equal(t, "Unlimited", result.Plans[2].Data)

	for key := range map[string]struct{}{"telia": {}, "reseller": {}} {
		analysis := result.Targets[key].Analysis
		require.NotNil(t, analysis, key)
		assert.NotEmpty(t, analysis.Candidates, key)
		assert.Equal(t, http.StatusOK, analysis.ResponseCode, key)
		assert.NotEmpty(t, analysis.FinalURL, key)
	}
}
