package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glassdoor-scraper/models"
	"glassdoor-scraper/utils"
)

func sampleRecords(n int) []models.JobRecord {
	out := make([]models.JobRecord, n)
	for i := range out {
		out[i] = models.JobRecord{
			Title:          fmt.Sprintf("Data Scientist %d", i),
			Company:        "Acme, Inc.",
			Location:       "Remote",
			SalaryEstimate: models.Sentinel,
			Rating:         "4.1",
			Description:    "Line one\nline \"two\"",
			Headquarters:   models.Sentinel,
			Size:           models.Sentinel,
			Founded:        "1999",
			Ownership:      models.Sentinel,
			Industry:       models.Sentinel,
			Sector:         "IT",
			Revenue:        models.Sentinel,
			Competitors:    models.Sentinel,
		}
	}
	return out
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestCSVWriterWritesHeaderAndRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "jobs.csv")
	w, err := NewCSVWriter(path)
	require.NoError(t, err)

	require.NoError(t, w.Persist(sampleRecords(3)))

	assert.Equal(t, path, w.Path())
	rows := readCSV(t, w.Path())
	require.Len(t, rows, 4)
	assert.Equal(t, models.Columns, rows[0])
	assert.Equal(t, "Acme, Inc.", rows[1][1])
	assert.Equal(t, "Line one\nline \"two\"", rows[1][5])
	assert.Equal(t, "Data Scientist 2", rows[3][0])
}

func TestCSVWriterOverwritesWithLatestSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.csv")
	w, err := NewCSVWriter(path)
	require.NoError(t, err)

	records := sampleRecords(5)
	require.NoError(t, w.Persist(records))
	require.NoError(t, w.Persist(records[:2]))

	rows := readCSV(t, path)
	assert.Len(t, rows, 3, "header plus the two records of the last snapshot")
}

func TestCSVWriterEmptySnapshotKeepsHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.csv")
	w, err := NewCSVWriter(path)
	require.NoError(t, err)

	require.NoError(t, w.Persist(nil))
	assert.Equal(t, [][]string{models.Columns}, readCSV(t, path))
}

type failingSink struct{ calls int }

func (f *failingSink) Persist([]models.JobRecord) error { f.calls++; return errors.New("boom") }
func (f *failingSink) Close() error                     { return nil }

func TestMultiSinkTriesEverySink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.csv")
	csvSink, err := NewCSVWriter(path)
	require.NoError(t, err)
	bad := &failingSink{}

	err = MultiSink{bad, csvSink}.Persist(sampleRecords(2))
	assert.Error(t, err)
	assert.Equal(t, 1, bad.calls)
	assert.Len(t, readCSV(t, path), 3)
}

func newSQLiteWriter(t *testing.T, runID string) *SQLWriter {
	t.Helper()
	retry := &utils.RetryConfig{MaxAttempts: 1, BaseDelay: time.Millisecond, Logger: utils.NewDiscardLogger()}
	w, err := NewSQLWriter(DriverSQLite, filepath.Join(t.TempDir(), "db", "jobs.db"), runID, "data scientist", retry)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })
	return w
}

func TestSQLWriterReplacesRunSnapshot(t *testing.T) {
	w := newSQLiteWriter(t, "run-1")

	records := sampleRecords(120)
	require.NoError(t, w.Persist(records[:60]))
	require.NoError(t, w.Persist(records))

	got, err := w.FetchRun("run-1")
	require.NoError(t, err)
	require.Len(t, got, 120)
	assert.Equal(t, records[0], got[0])
	assert.Equal(t, records[119], got[119])
}

func TestSQLWriterRunsAreIsolated(t *testing.T) {
	w := newSQLiteWriter(t, "run-a")
	assert.Equal(t, "run-a", w.RunID())
	require.NoError(t, w.Persist(sampleRecords(2)))

	other, err := w.FetchRun("run-b")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestSQLWriterRejectsUnknownDriver(t *testing.T) {
	_, err := NewSQLWriter("mysql", "dsn", "run", "", &utils.RetryConfig{MaxAttempts: 1, Logger: utils.NewDiscardLogger()})
	assert.Error(t, err)
}
