package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"glassdoor-scraper/utils"
)

// hideWebdriver runs before any page script so the site sees a regular browser.
const hideWebdriver = `Object.defineProperty(navigator, 'webdriver', {get: () => undefined})`

const (
	jsScrollIntoView = `function() { this.scrollIntoView({behavior: 'smooth', block: 'center'}); }`
	jsClick          = `function() { this.click(); }`
	jsHitTest        = `function() {
		const r = this.getBoundingClientRect();
		const hit = document.elementFromPoint(r.left + r.width / 2, r.top + r.height / 2);
		return hit !== null && (hit === this || this.contains(hit));
	}`
	jsInteractable = `function() {
		const r = this.getBoundingClientRect();
		const s = window.getComputedStyle(this);
		return !this.disabled && r.width > 0 && r.height > 0 &&
			s.visibility !== 'hidden' && s.display !== 'none';
	}`
)

// Options configures the Chrome process.
type Options struct {
	ExecPath   string
	ProfileDir string
	UserAgent  string
	Width      int
	Height     int
	// Headless is only for tests; the login wall needs a visible window.
	Headless bool
}

// Chrome is a Session backed by one chromedp tab.
type Chrome struct {
	ctx         context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
	logger      *utils.Logger
}

// Launch starts Chrome with a persistent profile and fingerprint settings and
// opens a blank tab. A launch failure is fatal for the run.
func Launch(parent context.Context, opts Options, logger *utils.Logger) (*Chrome, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("start-maximized", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("enable-automation", false),
		chromedp.Flag("disable-infobars", true),
	)
	if opts.Width > 0 && opts.Height > 0 {
		allocOpts = append(allocOpts, chromedp.WindowSize(opts.Width, opts.Height))
	}
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}
	if opts.ProfileDir != "" {
		dir, err := filepath.Abs(opts.ProfileDir)
		if err != nil {
			logger.Warn("[browser] Could not resolve profile dir %q: %v, continuing without profile",
				opts.ProfileDir, err)
		} else {
			allocOpts = append(allocOpts, chromedp.UserDataDir(dir))
		}
	}
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(parent, allocOpts...)

	// Suppress chromedp log noise
	tabCtx, cancelTab := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))

	if err := chromedp.Run(tabCtx, stealth(opts.UserAgent)); err != nil {
		cancelTab()
		cancelAlloc()
		return nil, fmt.Errorf("browser: start chrome: %w", err)
	}

	return &Chrome{ctx: tabCtx, cancelTab: cancelTab, cancelAlloc: cancelAlloc, logger: logger}, nil
}

func stealth(userAgent string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		if _, err := page.AddScriptToEvaluateOnNewDocument(hideWebdriver).Do(ctx); err != nil {
			return fmt.Errorf("register stealth script: %w", err)
		}
		if userAgent == "" {
			return nil
		}
		return emulation.SetUserAgentOverride(userAgent).Do(ctx)
	})
}

// Close shuts the tab and the browser process.
func (c *Chrome) Close() error {
	c.cancelTab()
	c.cancelAlloc()
	return nil
}

// run executes actions on the tab; ctx only gates whether the call starts.
func (c *Chrome) run(ctx context.Context, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return chromedp.Run(c.ctx, actions...)
}

func (c *Chrome) Navigate(ctx context.Context, url string) error {
	if err := c.run(ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("browser: navigate %q: %w", url, err)
	}
	return nil
}

func (c *Chrome) Find(ctx context.Context, selector string) (*cdp.Node, error) {
	var nodes []*cdp.Node
	if err := c.run(ctx, chromedp.Nodes(selector, &nodes, chromedp.ByQuery, chromedp.AtLeast(0))); err != nil {
		return nil, fmt.Errorf("browser: find %q: %w", selector, err)
	}
	if len(nodes) == 0 {
		return nil, ErrNotFound
	}
	return nodes[0], nil
}

func (c *Chrome) FindAll(ctx context.Context, selector string) ([]*cdp.Node, error) {
	var nodes []*cdp.Node
	if err := c.run(ctx, chromedp.Nodes(selector, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0))); err != nil {
		return nil, fmt.Errorf("browser: find all %q: %w", selector, err)
	}
	return nodes, nil
}

func (c *Chrome) WaitPresent(ctx context.Context, selector string, timeout time.Duration) (*cdp.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	waitCtx, cancel := context.WithTimeout(c.ctx, timeout)
	defer cancel()

	var nodes []*cdp.Node
	err := chromedp.Run(waitCtx, chromedp.Nodes(selector, &nodes, chromedp.ByQuery))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, fmt.Errorf("browser: wait for %q: %w", selector, err)
	}
	if len(nodes) == 0 {
		return nil, ErrTimeout
	}
	return nodes[0], nil
}

func (c *Chrome) FindLinkByText(ctx context.Context, text string) (*cdp.Node, error) {
	expr := "//a[contains(., " + xpathLiteral(text) + ")]"

	var nodes []*cdp.Node
	if err := c.run(ctx, chromedp.Nodes(expr, &nodes, chromedp.BySearch, chromedp.AtLeast(0))); err != nil {
		return nil, fmt.Errorf("browser: find link %q: %w", text, err)
	}
	if len(nodes) == 0 {
		return nil, ErrNotFound
	}
	return nodes[0], nil
}

func (c *Chrome) ScrollIntoView(ctx context.Context, n *cdp.Node) error {
	return c.callOn(ctx, n, jsScrollIntoView, nil)
}

func (c *Chrome) ScrollToBottom(ctx context.Context) error {
	return c.run(ctx, chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil))
}

func (c *Chrome) Click(ctx context.Context, n *cdp.Node) error {
	var onTop bool
	if err := c.callOn(ctx, n, jsHitTest, &onTop); err != nil {
		return err
	}
	if !onTop {
		return ErrIntercepted
	}
	if err := c.run(ctx, chromedp.MouseClickNode(n)); err != nil {
		return fmt.Errorf("browser: click: %w", err)
	}
	return nil
}

func (c *Chrome) ClickScript(ctx context.Context, n *cdp.Node) error {
	return c.callOn(ctx, n, jsClick, nil)
}

func (c *Chrome) Interactable(ctx context.Context, n *cdp.Node) (bool, error) {
	var ok bool
	if err := c.callOn(ctx, n, jsInteractable, &ok); err != nil {
		return false, err
	}
	return ok, nil
}

// Attribute prefers the DOM property so that href comes back absolute.
func (c *Chrome) Attribute(ctx context.Context, n *cdp.Node, name string) (string, error) {
	fn := fmt.Sprintf(`function() {
		const v = this[%[1]s];
		if (typeof v === 'string') return v;
		return this.getAttribute(%[1]s) || '';
	}`, strconv.Quote(name))

	var val string
	if err := c.callOn(ctx, n, fn, &val); err != nil {
		return "", err
	}
	return val, nil
}

func (c *Chrome) OuterHTML(ctx context.Context, n *cdp.Node) (string, error) {
	var html string
	err := c.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		html, err = dom.GetOuterHTML().WithNodeID(n.NodeID).Do(ctx)
		return err
	}))
	if err != nil {
		return "", fmt.Errorf("browser: outer html: %w", err)
	}
	return html, nil
}

func (c *Chrome) Pause(d time.Duration) {
	time.Sleep(d)
}

// callOn runs fn with this bound to n and decodes its return value into res.
func (c *Chrome) callOn(ctx context.Context, n *cdp.Node, fn string, res any) error {
	return c.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		obj, err := dom.ResolveNode().WithNodeID(n.NodeID).Do(ctx)
		if err != nil {
			return fmt.Errorf("browser: resolve node %d: %w", n.NodeID, err)
		}
		defer func() { _ = runtime.ReleaseObject(obj.ObjectID).Do(ctx) }()

		ret, exc, err := runtime.CallFunctionOn(fn).
			WithObjectID(obj.ObjectID).
			WithReturnByValue(true).
			Do(ctx)
		if err != nil {
			return fmt.Errorf("browser: call function: %w", err)
		}
		if exc != nil {
			return fmt.Errorf("browser: script exception: %w", exc)
		}
		if res == nil || ret == nil || len(ret.Value) == 0 {
			return nil
		}
		return json.Unmarshal([]byte(ret.Value), res)
	}))
}

// xpathLiteral quotes s for use inside an XPath 1.0 expression.
func xpathLiteral(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	parts := strings.Split(s, "'")
	return "concat('" + strings.Join(parts, `', "'", '`) + "')"
}

var _ Session = (*Chrome)(nil)
