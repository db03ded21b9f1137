package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"glassdoor-scraper/models"
	"glassdoor-scraper/utils"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// jobColumns is the insert column order; the record fields follow the three keys.
var jobColumns = []string{
	"run_id", "position", "keyword",
	"title", "company", "location", "salary_estimate", "rating", "description",
	"headquarters", "size", "founded", "ownership", "industry", "sector", "revenue", "competitors",
	"run_started_at",
}

// SQLWriter mirrors the snapshot of one run into a jobs table. It works with
// PostgreSQL (lib/pq) and SQLite (go-sqlite3) through database/sql.
type SQLWriter struct {
	db        *sql.DB
	runID     string
	keyword   string
	startedAt time.Time
}

// NewSQLWriter opens the database, waits for it to answer, runs the schema
// migration and returns a writer bound to runID.
func NewSQLWriter(driver, dsn, runID, keyword string, retry *utils.RetryConfig) (*SQLWriter, error) {
	if driver != DriverPostgres && driver != DriverSQLite {
		return nil, fmt.Errorf("sql: unsupported driver %q", driver)
	}
	if driver == DriverSQLite && !strings.HasPrefix(dsn, "file:") && dsn != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
			return nil, fmt.Errorf("sql: create database dir: %w", err)
		}
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("sql: open %s: %w", driver, err)
	}

	if err := retry.Do("db-ping", db.Ping); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sql: %w", err)
	}

	w := &SQLWriter{db: db, runID: runID, keyword: keyword, startedAt: time.Now().UTC()}
	if err := w.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sql: migrate: %w", err)
	}
	return w, nil
}

func (w *SQLWriter) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS jobs (
			run_id          TEXT      NOT NULL,
			position        INTEGER   NOT NULL,
			keyword         TEXT      NOT NULL DEFAULT '',
			title           TEXT      NOT NULL,
			company         TEXT      NOT NULL,
			location        TEXT      NOT NULL,
			salary_estimate TEXT      NOT NULL,
			rating          TEXT      NOT NULL,
			description     TEXT      NOT NULL,
			headquarters    TEXT      NOT NULL,
			size            TEXT      NOT NULL,
			founded         TEXT      NOT NULL,
			ownership       TEXT      NOT NULL,
			industry        TEXT      NOT NULL,
			sector          TEXT      NOT NULL,
			revenue         TEXT      NOT NULL,
			competitors     TEXT      NOT NULL,
			run_started_at  TIMESTAMP NOT NULL,
			PRIMARY KEY (run_id, position)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_jobs_company ON jobs(company)`,
		`CREATE INDEX IF NOT EXISTS idx_jobs_sector  ON jobs(sector)`,
	}
	for _, s := range stmts {
		if _, err := w.db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// RunID identifies the rows this writer owns.
func (w *SQLWriter) RunID() string {
	return w.runID
}

// Persist replaces the run's rows with the snapshot in one transaction.
func (w *SQLWriter) Persist(records []models.JobRecord) error {
	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("sql: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM jobs WHERE run_id = $1", w.runID); err != nil {
		return fmt.Errorf("sql: clear run: %w", err)
	}

	const batchSize = 50
	for i := 0; i < len(records); i += batchSize {
		end := i + batchSize
		if end > len(records) {
			end = len(records)
		}
		if err := w.insertBatch(tx, i, records[i:end]); err != nil {
			return fmt.Errorf("sql: insert batch at %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sql: commit: %w", err)
	}
	return nil
}

func (w *SQLWriter) insertBatch(tx *sql.Tx, offset int, batch []models.JobRecord) error {
	width := len(jobColumns)
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*width)

	for idx, r := range batch {
		holders := make([]string, width)
		for c := range holders {
			holders[c] = fmt.Sprintf("$%d", idx*width+c+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(holders, ",")+")")

		valueArgs = append(valueArgs, w.runID, offset+idx, w.keyword)
		for _, v := range r.Row() {
			valueArgs = append(valueArgs, v)
		}
		valueArgs = append(valueArgs, w.startedAt)
	}

	query := fmt.Sprintf("INSERT INTO jobs (%s) VALUES %s",
		strings.Join(jobColumns, ", "), strings.Join(valueStrings, ","))

	_, err := tx.Exec(query, valueArgs...)
	return err
}

// FetchRun retrieves a run's records in collection order.
func (w *SQLWriter) FetchRun(runID string) ([]models.JobRecord, error) {
	rows, err := w.db.Query(`
		SELECT title, company, location, salary_estimate, rating, description,
		       headquarters, size, founded, ownership, industry, sector, revenue, competitors
		FROM jobs
		WHERE run_id = $1
		ORDER BY position
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("sql: fetch run: %w", err)
	}
	defer rows.Close()

	var records []models.JobRecord
	for rows.Next() {
		var r models.JobRecord
		if err := rows.Scan(
			&r.Title, &r.Company, &r.Location, &r.SalaryEstimate, &r.Rating, &r.Description,
			&r.Headquarters, &r.Size, &r.Founded, &r.Ownership, &r.Industry, &r.Sector,
			&r.Revenue, &r.Competitors,
		); err != nil {
			return nil, fmt.Errorf("sql: scan row: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (w *SQLWriter) Close() error {
	return w.db.Close()
}
