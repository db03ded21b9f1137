package scraper

import (
	"context"
	"errors"
	"fmt"

	"github.com/chromedp/cdproto/cdp"

	"glassdoor-scraper/browser"
	"glassdoor-scraper/config"
	"glassdoor-scraper/models"
	"glassdoor-scraper/utils"
)

// Reason says why a collection run stopped.
type Reason string

const (
	ReasonTargetReached  Reason = "target-reached"
	ReasonNoListings     Reason = "no-listings"
	ReasonNoContinuation Reason = "no-continuation"
	ReasonPageLimit      Reason = "page-limit"
	ReasonCancelled      Reason = "cancelled"
)

// Sink receives the full snapshot of collected records after every page.
type Sink interface {
	Persist(records []models.JobRecord) error
}

// CollectionState is the mutable state of one collection run.
type CollectionState struct {
	Collected []models.JobRecord
	Target    int
	// PageVisits counts scans of the current result list that produced no new
	// listings. It restarts at 1 after navigating to a new list.
	PageVisits int
	// Processed is how many listing elements of the current list were dispatched.
	Processed int
}

func (s *CollectionState) done() bool {
	return len(s.Collected) >= s.Target
}

// Result is what a finished run hands back.
type Result struct {
	Records []models.JobRecord
	Reason  Reason
	State   CollectionState
}

// Collector drives the listing/detail state machine over one browser session.
type Collector struct {
	sess          browser.Session
	sink          Sink
	sel           config.Selectors
	timing        config.Timings
	maxPageVisits int
	logger        *utils.Logger
	visited       *utils.URLSet
}

// NewCollector wires a Collector. maxPageVisits bounds stalled rescans of one list.
func NewCollector(sess browser.Session, sink Sink, sel config.Selectors, timing config.Timings,
	maxPageVisits int, logger *utils.Logger) *Collector {
	return &Collector{
		sess:          sess,
		sink:          sink,
		sel:           sel,
		timing:        timing,
		maxPageVisits: maxPageVisits,
		logger:        logger,
		visited:       utils.NewURLSet(),
	}
}

// MarkVisited records a list URL so a "See more jobs" link back to it ends the run.
func (c *Collector) MarkVisited(url string) {
	c.visited.Add(url)
}

// Collect scans the page currently loaded in the session until target records
// are collected or no way to continue is left.
func (c *Collector) Collect(ctx context.Context, target int) Result {
	st := &CollectionState{Target: target, PageVisits: 1}
	reason := c.run(ctx, st)

	c.logger.Info("[collector] Stopped (%s) with %d/%d records", reason, len(st.Collected), target)
	return Result{Records: st.Collected, Reason: reason, State: *st}
}

func (c *Collector) run(ctx context.Context, st *CollectionState) Reason {
	for {
		if st.done() {
			return ReasonTargetReached
		}
		if ctx.Err() != nil {
			return ReasonCancelled
		}
		if st.PageVisits > c.maxPageVisits {
			c.logger.Warn("[collector] Page visit limit (%d) exceeded, stopping", c.maxPageVisits)
			return ReasonPageLimit
		}

		c.logger.Debug("[collector] Scanning listings (visit %d)", st.PageVisits)
		cards, err := c.scan(ctx)
		if err != nil {
			c.logger.Warn("[collector] Could not find job listings on this page: %v", err)
			return ReasonNoListings
		}
		if len(cards) == 0 {
			c.logger.Warn("[collector] No job cards found on this page")
			return ReasonNoListings
		}

		start := st.Processed
		if start > len(cards) {
			start = len(cards)
		}
		fresh := cards[start:]
		c.logger.Debug("[collector] Found %d total cards, %d are new", len(cards), len(fresh))

		stalled := len(fresh) == 0 && st.Processed > 0
		if stalled {
			c.logger.Debug("[collector] 'Show more' loaded no new jobs, checking for navigation")
			st.PageVisits++
		}

		c.dispatch(ctx, st, fresh)
		c.persist(st)

		if st.done() {
			return ReasonTargetReached
		}
		if ctx.Err() != nil {
			return ReasonCancelled
		}
		if !c.advance(ctx, st, len(cards), stalled) {
			c.logger.Info("[collector] No 'Show more' or 'See more jobs' control found, scraping complete")
			return ReasonNoContinuation
		}
	}
}

// scan waits for the listing container and returns the current listing elements,
// taken from the first listing locator that matches anything.
func (c *Collector) scan(ctx context.Context) ([]*cdp.Node, error) {
	if _, err := c.sess.WaitPresent(ctx, c.sel.Listings.Any(), c.timing.ListingWait); err != nil {
		return nil, err
	}
	for _, loc := range c.sel.Listings {
		cards, err := c.sess.FindAll(ctx, loc)
		if err != nil {
			return nil, err
		}
		if len(cards) > 0 {
			return cards, nil
		}
	}
	return nil, nil
}

func (c *Collector) dispatch(ctx context.Context, st *CollectionState, cards []*cdp.Node) {
	for i, card := range cards {
		if st.done() || ctx.Err() != nil {
			return
		}

		DismissModal(ctx, c.sess, c.sel.ModalClose, c.timing.ModalClose)

		rec, err := c.open(ctx, card)
		if err != nil {
			c.logger.Debug("[collector] Skipping card %d: %v", st.Processed+i+1, err)
			continue
		}

		st.Collected = append(st.Collected, rec)
		c.logger.Debug("[collector] [%d/%d] %s @ %s",
			len(st.Collected), st.Target, clip(rec.Title, 40), clip(rec.Company, 30))
	}
}

// open activates one listing and extracts the detail pane it reveals.
func (c *Collector) open(ctx context.Context, card *cdp.Node) (models.JobRecord, error) {
	if err := c.sess.ScrollIntoView(ctx, card); err != nil {
		return models.JobRecord{}, fmt.Errorf("scroll into view: %w", err)
	}
	c.sess.Pause(c.timing.ScrollSettle)

	if err := c.sess.Click(ctx, card); err != nil {
		if scriptErr := c.sess.ClickScript(ctx, card); scriptErr != nil {
			return models.JobRecord{}, fmt.Errorf("activate card: %w", errors.Join(err, scriptErr))
		}
	}
	c.sess.Pause(c.timing.AfterClick)

	pane, err := c.sess.WaitPresent(ctx, c.sel.DetailPane.Any(), c.timing.DetailWait)
	if err != nil {
		return models.JobRecord{}, fmt.Errorf("detail pane: %w", err)
	}

	html, err := c.sess.OuterHTML(ctx, pane)
	if err != nil {
		return models.JobRecord{}, err
	}
	root, err := ParseDetail(html)
	if err != nil {
		return models.JobRecord{}, err
	}
	return ExtractRecord(root, c.sel.Fields), nil
}

func (c *Collector) persist(st *CollectionState) {
	if err := c.sink.Persist(st.Collected); err != nil {
		c.logger.Warn("[collector] Persisting %d records failed: %v", len(st.Collected), err)
	}
}

// advance tries the "load more" control first and the "See more jobs" link
// second. After a load-more click that brought nothing new the link goes
// first, and load more is retried only when there is no link to follow.
// seen is the size of the listing set before any click.
func (c *Collector) advance(ctx context.Context, st *CollectionState, seen int, stalled bool) bool {
	if stalled && c.navigate(ctx) {
		st.Processed = 0
		st.PageVisits = 1
		return true
	}

	if c.loadMore(ctx) {
		st.Processed = seen
		c.logger.Debug("[collector] Updating processed card count to %d", seen)
		return true
	}

	if !stalled && c.navigate(ctx) {
		st.Processed = 0
		st.PageVisits = 1
		return true
	}
	return false
}

func (c *Collector) loadMore(ctx context.Context) bool {
	if err := c.sess.ScrollToBottom(ctx); err != nil {
		c.logger.Debug("[collector] Scroll to bottom failed: %v", err)
	}
	c.sess.Pause(c.timing.ScrollBottom)

	for _, loc := range c.sel.LoadMore {
		btn, err := c.sess.Find(ctx, loc)
		if err != nil {
			continue
		}

		ok, err := c.sess.Interactable(ctx, btn)
		if err != nil || !ok {
			c.logger.Debug("[collector] 'Show more jobs' present but not clickable")
			return false
		}
		if err := c.sess.Click(ctx, btn); err != nil {
			c.logger.Debug("[collector] Clicking 'Show more jobs' failed: %v", err)
			return false
		}

		c.logger.Debug("[collector] Clicked 'Show more jobs' to load more")
		c.sess.Pause(c.timing.LoadMore)
		return true
	}

	c.logger.Debug("[collector] No 'Show more jobs' button found")
	return false
}

func (c *Collector) navigate(ctx context.Context) bool {
	link, err := c.sess.FindLinkByText(ctx, c.sel.SeeMoreText)
	if err != nil {
		return false
	}

	href, err := c.sess.Attribute(ctx, link, "href")
	if err != nil || href == "" {
		return false
	}
	if !c.visited.Add(href) {
		c.logger.Warn("[collector] '%s' points at an already visited list: %s", c.sel.SeeMoreText, clip(href, 80))
		return false
	}

	c.logger.Info("[collector] Navigating to new list: %s", clip(href, 80))
	if err := c.sess.Navigate(ctx, href); err != nil {
		c.logger.Warn("[collector] Navigation failed: %v", err)
		return false
	}
	c.sess.Pause(c.timing.Navigation)
	DismissModal(ctx, c.sess, c.sel.ModalClose, c.timing.ModalClose)
	return true
}

func clip(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}
