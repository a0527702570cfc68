package enrichment_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/plancrawl/internal/enrichment"
	"github.com/jonesrussell/plancrawl/internal/logger"
)

// searchResultHTML mimics a review-site search response with one business card.
const searchResultHTML = `<!DOCTYPE html>
<html><body>
  <div class="styles_businessUnitCard__container">
    <span class="styles_rating__size-m">4,3</span>
    <span class="styles_text__count">1 284 anmeldelser</span>
    <a href="/review/telia.no">Telia</a>
  </div>
</body></html>`

// fallbackCardHTML exercises the generic card selector fallbacks.
const fallbackCardHTML = `<html><body>
  <div class="business-unit-card">
    <span class="star-rating">3.9</span>
    <span class="review-count">412 reviews</span>
    <a href="/review/ice.no">Ice</a>
  </div>
</body></html>`

func newClient(baseURL string) *enrichment.Client {
	return enrichment.New(enrichment.Config{
		BaseURL: baseURL,
		Timeout: 2 * time.Second,
	}, logger.NewNoOp())
}

func TestEnrichParsesCard(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("query")
		w.Write([]byte(searchResultHTML))
	}))
	defer srv.Close()

	result := newClient(srv.URL).Enrich(context.Background(), "Telia Frihet")

	assert.Equal(t, "Telia Frihet", gotQuery)
	require.NotNil(t, result.Score)
	assert.InDelta(t, 4.3, *result.Score, 0.001)
	require.NotNil(t, result.ReviewCount)
	assert.Equal(t, 1284, *result.ReviewCount)
	require.NotNil(t, result.URL)
	assert.Equal(t, srv.URL+"/review/telia.no", *result.URL)
}

func TestEnrichFallbackCardSelectors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(fallbackCardHTML))
	}))
	defer srv.Close()

	result := newClient(srv.URL).Enrich(context.Background(), "Ice Smart")

	require.NotNil(t, result.Score)
	assert.InDelta(t, 3.9, *result.Score, 0.001)
	require.NotNil(t, result.ReviewCount)
	assert.Equal(t, 412, *result.ReviewCount)
}

func TestEnrichNoCardYieldsNilFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body><p>No Results Found</p></body></html>"))
	}))
	defer srv.Close()

	result := newClient(srv.URL).Enrich(context.Background(), "Ukjent Operator")

	assert.Nil(t, result.Score)
	assert.Nil(t, result.ReviewCount)
	assert.Nil(t, result.URL)
}

func TestEnrichServerErrorYieldsNilFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	result := newClient(srv.URL).Enrich(context.Background(), "Telia")
	assert.Nil(t, result.Score)
	assert.Nil(t, result.ReviewCount)
	assert.Nil(t, result.URL)
}

func TestEnrichUnreachableHostYieldsNilFields(t *testing.T) {
	result := newClient("http://127.0.0.1:0").Enrich(context.Background(), "Telia")
	assert.Nil(t, result.Score)
}

func TestEnrichEmptyNameSkipsLookup(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	result := newClient(srv.URL).Enrich(context.Background(), "")
	assert.False(t, called)
	assert.Nil(t, result.Score)
}

func TestEnrichPartialCard(t *testing.T) {
	// Rating present, review count missing.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><div class="card"><span class="star-rating">4,8</span></div></body></html>`))
	}))
	defer srv.Close()

	result := newClient(srv.URL).Enrich(context.Background(), "Telenor")
	require.NotNil(t, result.Score)
	assert.InDelta(t, 4.8, *result.Score, 0.001)
	assert.Nil(t, result.ReviewCount)
	assert.Nil(t, result.URL)
}
