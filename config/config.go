package config

import (
	"log"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const defaultSearchURL = "https://www.glassdoor.com/Job/jobs.htm"

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Keyword       string
	NumJobs       int
	Verbose       bool
	MaxPageVisits int
	BaseURL       string

	CSVOutputPath string
	ChromeBin     string
	ProfileDir    string
	UserAgent     string
	WindowWidth   int
	WindowHeight  int

	DBDriver         string
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string
	SQLitePath       string
	MaxRetries       int

	SelectorsPath string
	Timings       Timings
}

// Timings holds every bounded wait and fixed pause used while driving the page.
type Timings struct {
	ListingWait   time.Duration
	DetailWait    time.Duration
	InitialLoad   time.Duration
	OperatorGrace time.Duration
	ModalClose    time.Duration
	ScrollSettle  time.Duration
	AfterClick    time.Duration
	ScrollBottom  time.Duration
	LoadMore      time.Duration
	Navigation    time.Duration
}

// DefaultTimings returns the waits and pauses the scraper was tuned with.
func DefaultTimings() Timings {
	return Timings{
		ListingWait:   10 * time.Second,
		DetailWait:    8 * time.Second,
		InitialLoad:   3 * time.Second,
		OperatorGrace: 2 * time.Second,
		ModalClose:    1 * time.Second,
		ScrollSettle:  400 * time.Millisecond,
		AfterClick:    2 * time.Second,
		ScrollBottom:  2 * time.Second,
		LoadMore:      4 * time.Second,
		Navigation:    5 * time.Second,
	}
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	t := DefaultTimings()
	return &Config{
		Keyword:       getEnv("KEYWORD", "data scientist"),
		NumJobs:       getEnvInt("NUM_JOBS", 2000),
		Verbose:       getEnvBool("VERBOSE", true),
		MaxPageVisits: getEnvInt("MAX_PAGE_VISITS", 10),
		BaseURL:       getEnv("GLASSDOOR_URL", defaultSearchURL),

		CSVOutputPath: getEnv("CSV_OUTPUT_PATH", "./output/glassdoor_jobs.csv"),
		ChromeBin:     getEnv("CHROME_BIN", ""),
		ProfileDir:    getEnv("CHROME_PROFILE_DIR", "./chrome_profile"),
		UserAgent: getEnv("USER_AGENT", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 "+
			"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
		WindowWidth:  getEnvInt("WINDOW_WIDTH", 1920),
		WindowHeight: getEnvInt("WINDOW_HEIGHT", 1080),

		DBDriver:         getEnv("DB_DRIVER", ""),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "scraper"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "scraper123"),
		PostgresDB:       getEnv("POSTGRES_DB", "jobs_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		SQLitePath:       getEnv("SQLITE_PATH", "./output/jobs.db"),
		MaxRetries:       getEnvInt("MAX_RETRIES", 3),

		SelectorsPath: getEnv("SELECTORS_PATH", ""),
		Timings: Timings{
			ListingWait:   getEnvMs("LISTING_WAIT_MS", t.ListingWait),
			DetailWait:    getEnvMs("DETAIL_WAIT_MS", t.DetailWait),
			InitialLoad:   getEnvMs("INITIAL_LOAD_MS", t.InitialLoad),
			OperatorGrace: getEnvMs("OPERATOR_GRACE_MS", t.OperatorGrace),
			ModalClose:    getEnvMs("MODAL_CLOSE_MS", t.ModalClose),
			ScrollSettle:  getEnvMs("SCROLL_SETTLE_MS", t.ScrollSettle),
			AfterClick:    getEnvMs("AFTER_CLICK_MS", t.AfterClick),
			ScrollBottom:  getEnvMs("SCROLL_BOTTOM_MS", t.ScrollBottom),
			LoadMore:      getEnvMs("LOAD_MORE_MS", t.LoadMore),
			Navigation:    getEnvMs("NAVIGATION_MS", t.Navigation),
		},
	}
}

// SearchURL returns the search-results URL for a free-text keyword.
func (c *Config) SearchURL(keyword string) string {
	return c.BaseURL + "?sc.keyword=" + url.QueryEscape(keyword) + "&locT=&locId=&jobType="
}

// DSN returns the connection string for the configured database driver.
func (c *Config) DSN() string {
	if c.DBDriver == "sqlite3" {
		return c.SQLitePath
	}
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}

func getEnvMs(key string, fallback time.Duration) time.Duration {
	if ms := getEnvInt(key, -1); ms >= 0 {
		return time.Duration(ms) * time.Millisecond
	}
	return fallback
}
