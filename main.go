package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"glassdoor-scraper/browser"
	"glassdoor-scraper/config"
	"glassdoor-scraper/scraper/glassdoor"
	"glassdoor-scraper/services"
	"glassdoor-scraper/storage"
	"glassdoor-scraper/utils"
)

func main() {
	cfg := config.Load()

	flag.StringVar(&cfg.Keyword, "keyword", cfg.Keyword, "job search keyword")
	flag.IntVar(&cfg.NumJobs, "n", cfg.NumJobs, "number of jobs to collect")
	flag.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "log every step of the collection loop")
	flag.Parse()

	logger := utils.NewLogger(cfg.Verbose)
	os.Exit(run(cfg, logger))
}

func run(cfg *config.Config, logger *utils.Logger) int {
	logger.Info("=== Glassdoor Job Scraper starting ===")
	logger.Info("Config: keyword: %q | jobs: %d | max page visits: %d | output: %s",
		cfg.Keyword, cfg.NumJobs, cfg.MaxPageVisits, cfg.CSVOutputPath)

	selectors, err := config.LoadSelectors(cfg.SelectorsPath)
	if err != nil {
		logger.Error("Failed to load selector tables: %v", err)
		return 1
	}

	csvWriter, err := storage.NewCSVWriter(cfg.CSVOutputPath)
	if err != nil {
		logger.Error("Failed to create CSV writer: %v", err)
		return 1
	}
	sinks := storage.MultiSink{csvWriter}

	if cfg.DBDriver != "" {
		retry := &utils.RetryConfig{MaxAttempts: cfg.MaxRetries, BaseDelay: 2 * time.Second, Logger: logger}
		runID := uuid.NewString()
		sqlWriter, err := storage.NewSQLWriter(cfg.DBDriver, cfg.DSN(), runID, cfg.Keyword, retry)
		if err != nil {
			logger.Warn("Database mirror disabled: %v", err)
		} else {
			logger.Info("Mirroring records to %s (run %s)", cfg.DBDriver, sqlWriter.RunID())
			sinks = append(sinks, sqlWriter)
		}
	}
	defer sinks.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	execPath := cfg.ChromeBin
	if execPath == "" {
		execPath = browser.FindChromeBinary()
	}
	logger.Info("Using browser binary: %s", execPath)

	chrome, err := browser.Launch(ctx, browser.Options{
		ExecPath:   execPath,
		ProfileDir: cfg.ProfileDir,
		UserAgent:  cfg.UserAgent,
		Width:      cfg.WindowWidth,
		Height:     cfg.WindowHeight,
	}, logger)
	if err != nil {
		logger.Error("Failed to start Chrome: %v", err)
		return 1
	}
	defer chrome.Close()

	res, err := glassdoor.New(cfg, selectors, logger, chrome, sinks).Scrape(ctx, cfg.Keyword, cfg.NumJobs)
	if err != nil {
		logger.Error("Glassdoor scrape failed: %v", err)
		if len(res.Records) == 0 {
			return 1
		}
	}

	logger.Info("Scrape finished (%s): %d jobs saved to %s", res.Reason, len(res.Records), csvWriter.Path())
	if len(res.Records) == 0 {
		logger.Warn("No jobs were scraped.")
		return 0
	}

	cleaner := services.NewCleaner(logger)
	jobs := cleaner.Clean(res.Records)

	insightSvc := services.NewInsightService(logger)
	insightSvc.Print(insightSvc.Generate(jobs))

	fmt.Printf("  Done. Jobs CSV → %s\n\n", csvWriter.Path())
	return 0
}
