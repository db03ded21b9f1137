package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchURLEscapesKeyword(t *testing.T) {
	cfg := &Config{BaseURL: defaultSearchURL}
	got := cfg.SearchURL("data scientist")
	assert.Equal(t, "https://www.glassdoor.com/Job/jobs.htm?sc.keyword=data+scientist&locT=&locId=&jobType=", got)
}

func TestDSNByDriver(t *testing.T) {
	cfg := &Config{
		DBDriver:     "postgres",
		PostgresHost: "db", PostgresPort: "5432", PostgresUser: "u",
		PostgresPassword: "p", PostgresDB: "jobs", PostgresSSLMode: "disable",
		SQLitePath: "/tmp/jobs.db",
	}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=jobs sslmode=disable", cfg.DSN())

	cfg.DBDriver = "sqlite3"
	assert.Equal(t, "/tmp/jobs.db", cfg.DSN())
}

func TestLoadReadsEnv(t *testing.T) {
	t.Setenv("KEYWORD", "go developer")
	t.Setenv("NUM_JOBS", "25")
	t.Setenv("VERBOSE", "false")
	t.Setenv("DETAIL_WAIT_MS", "1500")
	t.Setenv("MAX_PAGE_VISITS", "not-a-number")

	cfg := Load()
	assert.Equal(t, "go developer", cfg.Keyword)
	assert.Equal(t, 25, cfg.NumJobs)
	assert.False(t, cfg.Verbose)
	assert.Equal(t, 1500*time.Millisecond, cfg.Timings.DetailWait)
	assert.Equal(t, 10, cfg.MaxPageVisits, "invalid ints fall back to the default")
	assert.Equal(t, DefaultTimings().ListingWait, cfg.Timings.ListingWait)
}

func TestLoadSelectorsDefaults(t *testing.T) {
	sel, err := LoadSelectors("")
	require.NoError(t, err)
	assert.Equal(t, "See more jobs", sel.SeeMoreText)
	assert.Len(t, sel.ModalClose, 5)
	assert.Equal(t, Locator{".//div[span[text()='Type']]/div"}, sel.Fields.Ownership)
}

func TestLoadSelectorsOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "selectors.yaml")
	yml := `
load_more:
  - "button.show-more"
fields:
  title:
    - "h1.new-title"
    - "h1"
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))

	sel, err := LoadSelectors(path)
	require.NoError(t, err)
	assert.Equal(t, Locator{"button.show-more"}, sel.LoadMore)
	assert.Equal(t, Locator{"h1.new-title", "h1"}, sel.Fields.Title)
	assert.Equal(t, DefaultSelectors().Fields.Company, sel.Fields.Company)
	assert.Equal(t, DefaultSelectors().Listings, sel.Listings)
}

func TestLoadSelectorsErrors(t *testing.T) {
	_, err := LoadSelectors(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listings: [unterminated"), 0o644))
	_, err = LoadSelectors(path)
	assert.Error(t, err)
}

func TestLocatorAny(t *testing.T) {
	l := Locator{"a.one", "b.two"}
	assert.Equal(t, "a.one, b.two", l.Any())
}
