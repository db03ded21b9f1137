package storage

import (
	"errors"

	"glassdoor-scraper/models"
)

// MultiSink fans every snapshot out to several sinks.
type MultiSink []RecordSink

// Persist writes to every sink and joins their errors.
func (m MultiSink) Persist(records []models.JobRecord) error {
	var errs []error
	for _, s := range m {
		if err := s.Persist(records); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m MultiSink) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
