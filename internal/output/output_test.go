package output_test

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/plancrawl/internal/domain"
	"github.com/jonesrussell/plancrawl/internal/output"
)

func sampleResult() *domain.RunResult {
	score := 4.3
	reviews := 1284
	reviewURL := "https://no.trustpilot.com/review/telia.no"

	started := time.Date(2025, 11, 3, 10, 30, 0, 0, time.UTC)

	return &domain.RunResult{
		RunID:      "run-123",
		StartedAt:  started,
		FinishedAt: started.Add(4 * time.Second),
		Plans: []domain.Plan{
			{
				Name:           "Telia Frihet",
				Operator:       "Telia",
				Price:          "299 kr",
				Data:           "50 GB",
				AdditionalInfo: "Unlimited calls; 5G support",
				Score:          &score,
				ReviewCount:    &reviews,
				ReviewURL:      &reviewURL,
				SourceURL:      "https://www.telia.no/mobilabonnement",
				ExtractedAt:    started.Add(2 * time.Second),
			},
			{
				Name:        "Ice Fri Data",
				Operator:    "Ice",
				Price:       "399 kr",
				Data:        "Unlimited",
				SourceURL:   "https://www.ice.no/mobilabonnement",
				ExtractedAt: started.Add(3 * time.Second),
			},
		},
		Targets: map[string]*domain.TargetResult{
			"telia": {
				TargetKey: "telia",
				Status:    domain.StatusDone,
				PlanCount: 1,
				Analysis: &domain.StructuralAnalysis{
					TargetKey: "telia",
					Candidates: []domain.ContainerCandidate{
						{Selector: ".plan-card", Count: 4, Confidence: 0.83},
					},
				},
			},
			"ice": {
				TargetKey: "ice",
				Status:    domain.StatusDone,
				PlanCount: 1,
			},
			"telenor": {
				TargetKey: "telenor",
				Status:    domain.StatusFetchFailed,
			},
		},
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, output.WriteJSON(&buf, sampleResult()))

	var doc struct {
		Metadata struct {
			RunID            string         `json:"run_id"`
			TotalPlans       int            `json:"total_plans"`
			Operators        []string       `json:"operators"`
			PlansPerOperator map[string]int `json:"plans_per_operator"`
			Targets          map[string]struct {
				Status string `json:"status"`
			} `json:"targets"`
		} `json:"metadata"`
		Plans []map[string]any `json:"plans"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	assert.Equal(t, "run-123", doc.Metadata.RunID)
	assert.Equal(t, 2, doc.Metadata.TotalPlans)
	assert.ElementsMatch(t, []string{"Telia", "Ice"}, doc.Metadata.Operators)
	assert.Equal(t, 1, doc.Metadata.PlansPerOperator["Telia"])
	assert.Equal(t, "fetch_failed", doc.Metadata.Targets["telenor"].Status)

	require.Len(t, doc.Plans, 2)
	assert.Equal(t, "Telia Frihet", doc.Plans[0]["name"])
	assert.Equal(t, 4.3, doc.Plans[0]["score"])
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, output.WriteCSV(&buf, sampleResult()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{
		"name", "operator", "price", "data", "additional_info",
		"score", "review_count", "review_url", "source_url", "extracted_at",
	}, rows[0])

	assert.Equal(t, "Telia Frihet", rows[1][0])
	assert.Equal(t, "4.3", rows[1][5])
	assert.Equal(t, "1284", rows[1][6])

	// Missing reputation fields render as empty cells.
	assert.Equal(t, "", rows[2][5])
	assert.Equal(t, "", rows[2][6])
	assert.Equal(t, "", rows[2][7])
}

func TestSaveJSONCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")

	path, err := output.SaveJSON(dir, sampleResult())

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "plans_20251103_103000.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Telia Frihet")
}

func TestSaveAnalysisJSON(t *testing.T) {
	dir := t.TempDir()
	result := sampleResult()
	result.Plans = nil

	path, err := output.SaveAnalysisJSON(dir, result)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "analysis_20251103_103000.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), ".plan-card")
	assert.Contains(t, string(data), `"total_plans": 0`)
}

func TestSaveCSV(t *testing.T) {
	dir := t.TempDir()

	path, err := output.SaveCSV(dir, sampleResult())

	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, ".csv"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Ice Fri Data")
}

func TestSummaryRender(t *testing.T) {
	var buf bytes.Buffer

	output.NewSummaryRenderer(&buf).Render(sampleResult())

	out := buf.String()
	assert.Contains(t, out, "telia")
	assert.Contains(t, out, "fetch_failed")
	assert.Contains(t, out, "Telia Frihet")
	assert.Contains(t, out, "299 kr")
	assert.Contains(t, out, "2 plans from 2 operators")
}

func TestSummaryRenderAnalysis(t *testing.T) {
	var buf bytes.Buffer

	output.NewSummaryRenderer(&buf).RenderAnalysis(sampleResult())

	out := buf.String()
	assert.Contains(t, out, ".plan-card")
	assert.Contains(t, out, "0.83")
}
