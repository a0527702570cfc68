package targets_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/plancrawl/internal/domain"
	"github.com/jonesrussell/plancrawl/internal/targets"
)

const validTargetsYAML = `targets:
  - key: telia
    name: Telia
    url: https://www.telia.no/privat/mobil/abonnement
    selectors:
      containers: [".product-card", ".plan-card"]
      name: ["h3", ".plan-name"]
      price: [".price", ".monthly-price"]
      data: [".data-amount", ".gb-amount"]
  - key: ice
    name: Ice
    url: https://www.ice.no/mobil/abonnement
`

func writeTargetsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "targets.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadValidTargets(t *testing.T) {
	loader := targets.NewLoader(writeTargetsFile(t, validTargetsYAML))
	loaded, err := loader.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	assert.Equal(t, "telia", loaded[0].Key)
	assert.Equal(t, "Telia", loaded[0].Name)
	assert.Equal(t, []string{".product-card", ".plan-card"}, loaded[0].Selectors.Containers)
	assert.True(t, loaded[1].Selectors.IsZero())
}

func TestLoadEmptyFile(t *testing.T) {
	loader := targets.NewLoader(writeTargetsFile(t, "targets: []\n"))
	_, err := loader.Load()
	assert.ErrorIs(t, err, targets.ErrNoTargets)
}

func TestLoadMissingFile(t *testing.T) {
	loader := targets.NewLoader(filepath.Join(t.TempDir(), "absent.yml"))
	_, err := loader.Load()
	assert.Error(t, err)
}

func TestLoadRejectsMissingFields(t *testing.T) {
	content := "targets:\n  - key: telia\n    url: https://example.com\n"
	loader := targets.NewLoader(writeTargetsFile(t, content))
	_, err := loader.Load()
	assert.ErrorIs(t, err, targets.ErrMissingRequiredField)
}

func TestLoadRejectsDuplicateKeys(t *testing.T) {
	content := `targets:
  - key: telia
    name: Telia
    url: https://example.com/a
  - key: telia
    name: Telia Again
    url: https://example.com/b
`
	loader := targets.NewLoader(writeTargetsFile(t, content))
	_, err := loader.Load()
	assert.ErrorIs(t, err, targets.ErrDuplicateKey)
}

func TestLoadRejectsInvalidURL(t *testing.T) {
	content := "targets:\n  - key: x\n    name: X\n    url: not-a-url\n"
	loader := targets.NewLoader(writeTargetsFile(t, content))
	_, err := loader.Load()
	assert.ErrorIs(t, err, targets.ErrInvalidURL)
}

func TestFilter(t *testing.T) {
	all := []domain.Target{
		{Key: "telia"}, {Key: "telenor"}, {Key: "ice"},
	}

	assert.Len(t, targets.Filter(all, nil), 3)

	filtered := targets.Filter(all, []string{"ice", "telia"})
	require.Len(t, filtered, 2)
	assert.Equal(t, "telia", filtered[0].Key)
	assert.Equal(t, "ice", filtered[1].Key)
}
