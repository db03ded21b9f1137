package glassdoor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"glassdoor-scraper/browser"
	"glassdoor-scraper/config"
	"glassdoor-scraper/scraper"
	"glassdoor-scraper/utils"
)

// Scraper drives one Glassdoor search over an already launched browser session.
type Scraper struct {
	cfg    *config.Config
	sel    config.Selectors
	logger *utils.Logger
	sess   browser.Session
	sink   scraper.Sink

	operatorIn  io.Reader
	operatorOut io.Writer
}

// New creates a ready-to-use Glassdoor Scraper. The manual login prompt reads
// from stdin and writes to stdout unless WithOperatorIO overrides them.
func New(cfg *config.Config, sel config.Selectors, logger *utils.Logger, sess browser.Session, sink scraper.Sink) *Scraper {
	return &Scraper{
		cfg:         cfg,
		sel:         sel,
		logger:      logger,
		sess:        sess,
		sink:        sink,
		operatorIn:  os.Stdin,
		operatorOut: os.Stdout,
	}
}

// WithOperatorIO redirects the manual login prompt.
func (s *Scraper) WithOperatorIO(in io.Reader, out io.Writer) *Scraper {
	s.operatorIn = in
	s.operatorOut = out
	return s
}

// Scrape opens the search results for keyword, waits for the operator to log
// in, then collects up to numJobs records. The final snapshot is persisted
// once more before returning.
func (s *Scraper) Scrape(ctx context.Context, keyword string, numJobs int) (scraper.Result, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return scraper.Result{}, errors.New("glassdoor: keyword is required")
	}
	if numJobs <= 0 {
		return scraper.Result{}, fmt.Errorf("glassdoor: number of jobs must be positive, got %d", numJobs)
	}

	searchURL := s.cfg.SearchURL(keyword)
	s.logger.Info("[glassdoor] Starting scrape for %q, target: %d jobs", keyword, numJobs)
	s.logger.Debug("[glassdoor] Search URL: %s", searchURL)

	if err := s.sess.Navigate(ctx, searchURL); err != nil {
		return scraper.Result{}, fmt.Errorf("glassdoor: open search page: %w", err)
	}
	s.sess.Pause(s.cfg.Timings.InitialLoad)

	if err := browser.WaitForOperator(s.operatorIn, s.operatorOut); err != nil {
		return scraper.Result{}, fmt.Errorf("glassdoor: %w", err)
	}
	s.sess.Pause(s.cfg.Timings.OperatorGrace)

	if scraper.DismissModal(ctx, s.sess, s.sel.ModalClose, s.cfg.Timings.ModalClose) {
		s.logger.Debug("[glassdoor] Closed a modal before collecting")
	}

	collector := scraper.NewCollector(s.sess, s.sink, s.sel, s.cfg.Timings, s.cfg.MaxPageVisits, s.logger)
	collector.MarkVisited(searchURL)

	res := collector.Collect(ctx, numJobs)

	if err := s.sink.Persist(res.Records); err != nil {
		return res, fmt.Errorf("glassdoor: persist final snapshot: %w", err)
	}

	s.logger.Info("[glassdoor] Done (%s), collected %d/%d jobs", res.Reason, len(res.Records), numJobs)
	return res, nil
}
