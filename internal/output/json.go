// Package output exports run results as JSON or CSV files and renders
// console summaries.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/jonesrussell/plancrawl/internal/domain"
)

// timestampLayout names export files by run start time.
const timestampLayout = "20060102_150405"

// dirPerm is the mode for created output directories.
const dirPerm = 0o755

// Metadata summarizes a run for the export header.
type Metadata struct {
	RunID            string                          `json:"run_id"`
	StartedAt        time.Time                       `json:"started_at"`
	FinishedAt       time.Time                       `json:"finished_at"`
	TotalPlans       int                             `json:"total_plans"`
	Operators        []string                        `json:"operators"`
	PlansPerOperator map[string]int                  `json:"plans_per_operator"`
	Targets          map[string]*domain.TargetResult `json:"targets"`
}

// Document is the JSON export shape: run metadata followed by the merged
// plan list.
type Document struct {
	Metadata Metadata      `json:"metadata"`
	Plans    []domain.Plan `json:"plans"`
}

// NewDocument builds the export document for a run result.
func NewDocument(result *domain.RunResult) Document {
	return Document{
		Metadata: Metadata{
			RunID:            result.RunID,
			StartedAt:        result.StartedAt,
			FinishedAt:       result.FinishedAt,
			TotalPlans:       len(result.Plans),
			Operators:        result.Operators(),
			PlansPerOperator: result.PlanCountByOperator(),
			Targets:          result.Targets,
		},
		Plans: result.Plans,
	}
}

// WriteJSON writes the run result as indented JSON.
func WriteJSON(w io.Writer, result *domain.RunResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(NewDocument(result)); err != nil {
		return fmt.Errorf("failed to encode run result: %w", err)
	}
	return nil
}

// SaveJSON writes the run result to a timestamped JSON file under dir,
// creating the directory if needed. It returns the file path.
func SaveJSON(dir string, result *domain.RunResult) (string, error) {
	path := filepath.Join(dir, fmt.Sprintf("plans_%s.json", result.StartedAt.Format(timestampLayout)))
	if err := saveTo(path, result, WriteJSON); err != nil {
		return "", err
	}
	return path, nil
}

// SaveAnalysisJSON writes an analyze-only run to a timestamped JSON file
// under dir. The document shape matches SaveJSON; the plan list is empty and
// the per-target structural records carry the findings.
func SaveAnalysisJSON(dir string, result *domain.RunResult) (string, error) {
	path := filepath.Join(dir, fmt.Sprintf("analysis_%s.json", result.StartedAt.Format(timestampLayout)))
	if err := saveTo(path, result, WriteJSON); err != nil {
		return "", err
	}
	return path, nil
}

// saveTo creates the parent directory and streams the result through write.
func saveTo(path string, result *domain.RunResult, write func(io.Writer, *domain.RunResult) error) error {
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	if err := write(f, result); err != nil {
		f.Close()
		return err
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}
	return nil
}
