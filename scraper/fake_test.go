package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/cdp"

	"glassdoor-scraper/browser"
	"glassdoor-scraper/config"
	"glassdoor-scraper/models"
)

const (
	loadMoreID cdp.NodeID = 1
	linkID     cdp.NodeID = 2
	paneID     cdp.NodeID = 3
	closerBase cdp.NodeID = 500
	cardBase   cdp.NodeID = 1000
)

// fakeCard is one listing element on a fake result page.
type fakeCard struct {
	title       string
	company     string
	noDetail    bool
	intercepted bool
}

func cards(prefix string, n int) []fakeCard {
	out := make([]fakeCard, n)
	for i := range out {
		out[i] = fakeCard{title: fmt.Sprintf("%s-%d", prefix, i), company: "Acme"}
	}
	return out
}

// fakePage is a result list. Each load-more click appends the next batch;
// stuckLoadMore keeps an enabled button that loads nothing.
type fakePage struct {
	cards         []fakeCard
	batches       [][]fakeCard
	stuckLoadMore bool
	seeMore       string
}

func (p *fakePage) hasLoadMore() bool {
	return len(p.batches) > 0 || p.stuckLoadMore
}

// fakeSession is an in-memory browser.Session over fakePages.
type fakeSession struct {
	sel   config.Selectors
	pages map[string]*fakePage
	cur   *fakePage
	open  *fakeCard

	modalOpen   map[string]bool
	closerClick []string

	activated      []string
	scripted       []string
	loadMoreClicks int
	navigations    []string
	pauses         int
}

func newFakeSession(sel config.Selectors, start string, pages map[string]*fakePage) *fakeSession {
	return &fakeSession{sel: sel, pages: pages, cur: pages[start], modalOpen: map[string]bool{}}
}

func (f *fakeSession) Navigate(_ context.Context, url string) error {
	p, ok := f.pages[url]
	if !ok {
		return fmt.Errorf("no page %q", url)
	}
	f.navigations = append(f.navigations, url)
	f.cur = p
	f.open = nil
	return nil
}

func (f *fakeSession) Find(_ context.Context, selector string) (*cdp.Node, error) {
	for i, closer := range f.sel.ModalClose {
		if selector == closer && f.modalOpen[closer] {
			return &cdp.Node{NodeID: closerBase + cdp.NodeID(i)}, nil
		}
	}
	if f.cur != nil && selector == f.sel.LoadMore[0] && f.cur.hasLoadMore() {
		return &cdp.Node{NodeID: loadMoreID}, nil
	}
	return nil, browser.ErrNotFound
}

func (f *fakeSession) FindAll(_ context.Context, selector string) ([]*cdp.Node, error) {
	if f.cur == nil || selector != f.sel.Listings[0] {
		return nil, nil
	}
	nodes := make([]*cdp.Node, len(f.cur.cards))
	for i := range f.cur.cards {
		nodes[i] = &cdp.Node{NodeID: cardBase + cdp.NodeID(i)}
	}
	return nodes, nil
}

func (f *fakeSession) WaitPresent(_ context.Context, selector string, _ time.Duration) (*cdp.Node, error) {
	switch selector {
	case f.sel.Listings.Any():
		if f.cur != nil && len(f.cur.cards) > 0 {
			return &cdp.Node{NodeID: cardBase}, nil
		}
	case f.sel.DetailPane.Any():
		if f.open != nil && !f.open.noDetail {
			return &cdp.Node{NodeID: paneID}, nil
		}
	}
	return nil, browser.ErrTimeout
}

func (f *fakeSession) FindLinkByText(_ context.Context, text string) (*cdp.Node, error) {
	if f.cur == nil || f.cur.seeMore == "" || text != f.sel.SeeMoreText {
		return nil, browser.ErrNotFound
	}
	return &cdp.Node{NodeID: linkID}, nil
}

func (f *fakeSession) ScrollIntoView(context.Context, *cdp.Node) error { return nil }
func (f *fakeSession) ScrollToBottom(context.Context) error          { return nil }

func (f *fakeSession) Click(_ context.Context, n *cdp.Node) error {
	switch {
	case n.NodeID == loadMoreID:
		f.loadMoreClicks++
		if len(f.cur.batches) > 0 {
			f.cur.cards = append(f.cur.cards, f.cur.batches[0]...)
			f.cur.batches = f.cur.batches[1:]
		}
		return nil
	case n.NodeID >= cardBase:
		card := &f.cur.cards[n.NodeID-cardBase]
		if card.intercepted {
			return browser.ErrIntercepted
		}
		f.open = card
		f.activated = append(f.activated, card.title)
		return nil
	case n.NodeID >= closerBase:
		closer := f.sel.ModalClose[n.NodeID-closerBase]
		f.closerClick = append(f.closerClick, closer)
		for k := range f.modalOpen {
			delete(f.modalOpen, k)
		}
		return nil
	}
	return fmt.Errorf("unexpected click on node %d", n.NodeID)
}

func (f *fakeSession) ClickScript(_ context.Context, n *cdp.Node) error {
	if n.NodeID < cardBase {
		return fmt.Errorf("unexpected script click on node %d", n.NodeID)
	}
	card := &f.cur.cards[n.NodeID-cardBase]
	f.open = card
	f.activated = append(f.activated, card.title)
	f.scripted = append(f.scripted, card.title)
	return nil
}

func (f *fakeSession) Interactable(context.Context, *cdp.Node) (bool, error) { return true, nil }

func (f *fakeSession) Attribute(_ context.Context, n *cdp.Node, name string) (string, error) {
	if n.NodeID == linkID && name == "href" {
		return f.cur.seeMore, nil
	}
	return "", nil
}

func (f *fakeSession) OuterHTML(_ context.Context, n *cdp.Node) (string, error) {
	if n.NodeID != paneID || f.open == nil {
		return "", fmt.Errorf("no detail pane")
	}
	return fmt.Sprintf(`<div data-test="job-details-panel">
		<div data-test="jobTitle">%s</div>
		<div data-test="employerName">%s</div>
	</div>`, f.open.title, f.open.company), nil
}

func (f *fakeSession) Pause(time.Duration) { f.pauses++ }

var _ browser.Session = (*fakeSession)(nil)

// recordingSink remembers the size of every persisted snapshot.
type recordingSink struct {
	snapshots []int
	last      []models.JobRecord
	err       error
}

func (r *recordingSink) Persist(records []models.JobRecord) error {
	r.snapshots = append(r.snapshots, len(records))
	r.last = append([]models.JobRecord(nil), records...)
	return r.err
}
