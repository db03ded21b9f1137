// Package browser wraps a live Chrome tab behind the small set of
// operations the collection loop needs.
package browser

import (
	"context"
	"errors"
	"time"

	"github.com/chromedp/cdproto/cdp"
)

var (
	// ErrNotFound is returned when a selector matches nothing.
	ErrNotFound = errors.New("browser: element not found")
	// ErrTimeout is returned when a bounded wait expires.
	ErrTimeout = errors.New("browser: wait timed out")
	// ErrIntercepted is returned when another element covers the click target.
	ErrIntercepted = errors.New("browser: click intercepted")
)

// Session is a single browser tab. It is not safe for concurrent use.
type Session interface {
	// Navigate loads url in the tab.
	Navigate(ctx context.Context, url string) error
	// Find returns the first element matching a CSS selector, or ErrNotFound.
	Find(ctx context.Context, selector string) (*cdp.Node, error)
	// FindAll returns every element matching a CSS selector, possibly none.
	FindAll(ctx context.Context, selector string) ([]*cdp.Node, error)
	// WaitPresent blocks until selector matches or timeout elapses (ErrTimeout).
	WaitPresent(ctx context.Context, selector string, timeout time.Duration) (*cdp.Node, error)
	// FindLinkByText returns the first anchor whose text contains text, or ErrNotFound.
	FindLinkByText(ctx context.Context, text string) (*cdp.Node, error)

	ScrollIntoView(ctx context.Context, n *cdp.Node) error
	ScrollToBottom(ctx context.Context) error
	// Click performs a real mouse click, or returns ErrIntercepted.
	Click(ctx context.Context, n *cdp.Node) error
	// ClickScript activates n through the DOM click() method.
	ClickScript(ctx context.Context, n *cdp.Node) error
	// Interactable reports whether n is enabled and visible.
	Interactable(ctx context.Context, n *cdp.Node) (bool, error)
	// Attribute returns a property or attribute of n, "" when unset.
	Attribute(ctx context.Context, n *cdp.Node, name string) (string, error)
	OuterHTML(ctx context.Context, n *cdp.Node) (string, error)

	// Pause sleeps for d to let the page settle.
	Pause(d time.Duration)
}
