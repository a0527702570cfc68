package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"time"

	"github.com/jonesrussell/plancrawl/internal/domain"
)

// csvHeader lists the export columns in plan field order.
var csvHeader = []string{
	"name",
	"operator",
	"price",
	"data",
	"additional_info",
	"score",
	"review_count",
	"review_url",
	"source_url",
	"extracted_at",
}

// WriteCSV writes the merged plan list as CSV with a header row.
func WriteCSV(w io.Writer, result *domain.RunResult) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for i := range result.Plans {
		if err := cw.Write(planRow(&result.Plans[i])); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

// SaveCSV writes the run result to a timestamped CSV file under dir,
// creating the directory if needed. It returns the file path.
func SaveCSV(dir string, result *domain.RunResult) (string, error) {
	path := filepath.Join(dir, fmt.Sprintf("plans_%s.csv", result.StartedAt.Format(timestampLayout)))
	if err := saveTo(path, result, WriteCSV); err != nil {
		return "", err
	}
	return path, nil
}

// planRow flattens one plan into csvHeader order. Optional reputation
// fields render as empty cells when absent.
func planRow(p *domain.Plan) []string {
	score := ""
	if p.Score != nil {
		score = strconv.FormatFloat(*p.Score, 'f', -1, 64)
	}
	reviews := ""
	if p.ReviewCount != nil {
		reviews = strconv.Itoa(*p.ReviewCount)
	}
	reviewURL := ""
	if p.ReviewURL != nil {
		reviewURL = *p.ReviewURL
	}

	return []string{
		p.Name,
		p.Operator,
		p.Price,
		p.Data,
		p.AdditionalInfo,
		score,
		reviews,
		reviewURL,
		p.SourceURL,
		p.ExtractedAt.Format(time.RFC3339),
	}
}
