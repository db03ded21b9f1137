package storage

import "glassdoor-scraper/models"

// RecordSink is the interface any storage backend must satisfy.
// Persist receives the full ordered snapshot and replaces what was stored before.
type RecordSink interface {
	Persist(records []models.JobRecord) error
	Close() error
}
