package scraper

import (
	"context"
	"time"

	"glassdoor-scraper/browser"
	"glassdoor-scraper/config"
)

// DismissModal clicks the first close control found on the page, waits for
// the overlay to go away and stops. It reports whether anything was clicked.
func DismissModal(ctx context.Context, sess browser.Session, closers config.Locator, pause time.Duration) bool {
	for _, sel := range closers {
		btn, err := sess.Find(ctx, sel)
		if err != nil {
			continue
		}
		if err := sess.Click(ctx, btn); err != nil {
			continue
		}
		sess.Pause(pause)
		return true
	}
	return false
}
