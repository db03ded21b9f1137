package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"glassdoor-scraper/models"
)

// CSVWriter rewrites the whole output file from the in-memory snapshot on
// every Persist, so the file always holds the latest complete state.
type CSVWriter struct {
	path string
}

// NewCSVWriter prepares the output path. Intermediate directories are created
// automatically; the file itself is written on the first Persist.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}
	return &CSVWriter{path: path}, nil
}

// Path returns the file the writer persists to.
func (c *CSVWriter) Path() string {
	return c.path
}

// Persist truncates the file and writes the header plus one row per record.
func (c *CSVWriter) Persist(records []models.JobRecord) error {
	f, err := os.Create(c.path)
	if err != nil {
		return fmt.Errorf("csv: create file %q: %w", c.path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(models.Columns); err != nil {
		_ = f.Close()
		return fmt.Errorf("csv: write header: %w", err)
	}

	for _, r := range records {
		if err := w.Write(r.Row()); err != nil {
			_ = f.Close()
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return fmt.Errorf("csv: flush: %w", err)
	}
	return f.Close()
}

// Close is a no-op; every Persist closes its own file.
func (c *CSVWriter) Close() error {
	return nil
}
