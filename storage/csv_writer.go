package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"jaikod-scoring/models"
)

var assessmentHeader = []string{
	"item_id", "category", "price", "price_status", "percentile", "confidence",
	"suggested_min", "suggested_max", "condition_score", "condition_label",
	"trust_score", "trust_level", "boost_type", "boost_cost", "badges",
}

// CSVWriter writes assessments to a CSV file.
// It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter creates (or truncates) the CSV file at the given path and
// writes the header row. Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(assessmentHeader); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()

	return &CSVWriter{file: f, writer: w}, nil
}

// WriteAssessments appends one row per assessment.
func (c *CSVWriter) WriteAssessments(assessments []models.Assessment) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, a := range assessments {
		if err := c.writer.Write(assessmentRow(a)); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

func assessmentRow(a models.Assessment) []string {
	boostType, boostCost := "", ""
	if a.Boost != nil {
		boostType = string(a.Boost.BoostType)
		boostCost = a.Boost.Cost.StringFixed(2)
	}
	return []string{
		a.ItemID,
		a.Price.Category,
		formatFloat(a.Price.Price),
		string(a.Price.Status),
		formatFloat(a.Price.Percentile),
		formatFloat(a.Price.Confidence),
		formatFloat(a.Price.SuggestedRange.Min),
		formatFloat(a.Price.SuggestedRange.Max),
		strconv.Itoa(a.Condition.Score),
		string(a.Condition.Label),
		strconv.Itoa(a.Trust.TotalScore),
		string(a.Trust.Level),
		boostType,
		boostCost,
		strings.Join(a.Price.Badges, "|"),
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	return c.file.Close()
}
