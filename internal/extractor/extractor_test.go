package extractor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/plancrawl/internal/domain"
	"github.com/jonesrussell/plancrawl/internal/extractor"
	"github.com/jonesrussell/plancrawl/internal/logger"
)

const (
	testOperator  = "Telia"
	testSourceURL = "https://www.telia.no/privat/mobil/abonnement"
)

// planCardsHTML carries two complete plan cards.
const planCardsHTML = `<!DOCTYPE html>
<html><body>
  <div class="plan-card">
    <h3>Telia Frihet</h3>
    <span class="price">299 kr</span>
    <span class="data-amount">50 GB</span>
    <p>Ubegrenset samtaler og fri SMS. 5G inkludert.</p>
  </div>
  <div class="plan-card">
    <h3>Telia Smart</h3>
    <span class="price">199 kr</span>
    <span class="data-amount">10 GB</span>
  </div>
</body></html>`

func defaultSelectors() domain.SelectorSet {
	return domain.SelectorSet{
		Containers: []string{".plan-card"},
		Name:       []string{"h3", ".plan-name"},
		Price:      []string{".price", ".monthly-price"},
		Data:       []string{".data-amount", ".gb-amount"},
	}
}

func newExtractor() *extractor.Extractor {
	return extractor.New(logger.NewNoOp())
}

func TestExtractTwoPlans(t *testing.T) {
	plans, err := newExtractor().Extract(planCardsHTML, defaultSelectors(), testOperator, testSourceURL)
	require.NoError(t, err)
	require.Len(t, plans, 2)

	assert.Equal(t, "Telia Frihet", plans[0].Name)
	assert.Equal(t, "299 kr", plans[0].Price)
	assert.Equal(t, "50 GB", plans[0].Data)
	assert.Equal(t, testOperator, plans[0].Operator)
	assert.Equal(t, testSourceURL, plans[0].SourceURL)
	assert.False(t, plans[0].ExtractedAt.IsZero())

	assert.Equal(t, "Telia Smart", plans[1].Name)
	assert.Equal(t, "199 kr", plans[1].Price)
	assert.Equal(t, "10 GB", plans[1].Data)
}

func TestExtractExtraInfoTags(t *testing.T) {
	plans, err := newExtractor().Extract(planCardsHTML, defaultSelectors(), testOperator, testSourceURL)
	require.NoError(t, err)
	require.Len(t, plans, 2)

	assert.Equal(t, "Unlimited calls; Unlimited SMS; 5G support", plans[0].AdditionalInfo)
	assert.Empty(t, plans[1].AdditionalInfo)
}

func TestExtractSelectorAlternativesFirstMatchWins(t *testing.T) {
	markup := `<html><body>
	  <div class="plan-card">
	    <span class="plan-name">Alt Name</span>
	    <span class="monthly-price">kr 149</span>
	    <span class="gb-amount">5 GB</span>
	  </div>
	  <div class="plan-card">
	    <span class="plan-name">Second</span>
	    <span class="monthly-price">kr 249</span>
	    <span class="gb-amount">15 GB</span>
	  </div>
	</body></html>`

	plans, err := newExtractor().Extract(markup, defaultSelectors(), testOperator, testSourceURL)
	require.NoError(t, err)
	require.Len(t, plans, 2)
	assert.Equal(t, "Alt Name", plans[0].Name)
	assert.Equal(t, "149 kr", plans[0].Price)
	assert.Equal(t, "5 GB", plans[0].Data)
}

func TestExtractContainerUnionDeduplicates(t *testing.T) {
	// Both expressions match the same two elements; each must yield one plan.
	selectors := defaultSelectors()
	selectors.Containers = []string{".plan-card", `[class*="plan"]`}

	plans, err := newExtractor().Extract(planCardsHTML, selectors, testOperator, testSourceURL)
	require.NoError(t, err)
	assert.Len(t, plans, 2)
}

func TestExtractSkipsEmptyContainers(t *testing.T) {
	markup := `<html><body>
	  <div class="plan-card"><p>Ingen strukturert informasjon</p></div>
	  <div class="plan-card"><h3>Real Plan</h3><span class="price">99 kr</span></div>
	</body></html>`

	plans, err := newExtractor().Extract(markup, defaultSelectors(), testOperator, testSourceURL)
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, "Real Plan", plans[0].Name)
}

func TestExtractNameDefaultsToSentinel(t *testing.T) {
	markup := `<html><body>
	  <div class="plan-card"><span class="price">299 kr</span></div>
	</body></html>`

	plans, err := newExtractor().Extract(markup, defaultSelectors(), testOperator, testSourceURL)
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, domain.NameUnspecified, plans[0].Name)
	assert.True(t, plans[0].HasSentinelName())
	assert.Equal(t, "299 kr", plans[0].Price)
	assert.Equal(t, domain.ValueUnknown, plans[0].Data)
}

func TestExtractMissingFieldsAreUnknown(t *testing.T) {
	markup := `<html><body>
	  <div class="plan-card"><h3>Name Only</h3></div>
	  <div class="plan-card"><h3>Other</h3></div>
	</body></html>`

	plans, err := newExtractor().Extract(markup, defaultSelectors(), testOperator, testSourceURL)
	require.NoError(t, err)
	require.Len(t, plans, 2)
	assert.Equal(t, domain.ValueUnknown, plans[0].Price)
	assert.Equal(t, domain.ValueUnknown, plans[0].Data)
}

func TestExtractNoContainersYieldsNoPlans(t *testing.T) {
	plans, err := newExtractor().Extract("<html><body></body></html>", defaultSelectors(), testOperator, testSourceURL)
	require.NoError(t, err)
	assert.Empty(t, plans)
}
