// Package browsertest provides an in-memory browser.Driver for tests.
package browsertest

import (
	"fmt"
	"net/http"
	"sort"
	"sync"

	"github.com/entrhq/guestlist/pkg/browser"
)

// Page describes what the fake browser shows at one URL.
type Page struct {
	// HTML is returned by Snapshot.
	HTML string

	// Elements maps a selector to how many elements match it. Waits for
	// selectors missing here time out.
	Elements map[string]int

	// Texts maps a selector to its text content.
	Texts map[string]string

	// Requests are emitted to observers when the page is navigated to.
	Requests []string

	// ClickRequests maps a selector to requests emitted when it is clicked.
	ClickRequests map[string][]string

	// ClickNavigates maps a selector to the URL the page moves to on click.
	ClickNavigates map[string]string

	// TypeNavigates maps a selector to the URL the page moves to once its
	// last matching element has been typed into.
	TypeNavigates map[string]string

	// RedirectTo is where the page lands when navigated to, if set.
	RedirectTo string

	// Heights are returned by successive ScrollToBottom calls; the last
	// value repeats once exhausted.
	Heights []int
}

// Typed records one Type call.
type Typed struct {
	Selector string
	Index    int
	Text     string
}

// Driver is a scriptable browser.Driver. The zero value is not usable;
// call New.
type Driver struct {
	mu sync.Mutex

	pages   map[string]*Page
	current string
	polls   int

	observers map[int]func(string)
	nextID    int

	// Cookies returned for every URL.
	CookieJar []*http.Cookie

	// Calls is an ordered log: "navigate <url>", "wait <sel>", "click <sel>",
	// "observe", "detach", "type <sel>[i]", "scroll", "snapshot", "waitURL".
	Calls []string

	// TypedText records every Type call.
	TypedText []Typed
}

// New returns a driver serving pages keyed by URL.
func New(pages map[string]*Page) *Driver {
	if pages == nil {
		pages = make(map[string]*Page)
	}
	return &Driver{
		pages:     pages,
		current:   "about:blank",
		observers: make(map[int]func(string)),
	}
}

// SetPage adds or replaces the page served at url.
func (d *Driver) SetPage(url string, page *Page) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pages[url] = page
}

// Polls returns the number of ScrollToBottom calls made.
func (d *Driver) Polls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.polls
}

// Observers returns the number of attached request observers.
func (d *Driver) Observers() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.observers)
}

// CallLog returns a copy of Calls.
func (d *Driver) CallLog() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.Calls...)
}

// Emit delivers a request URL to every observer.
func (d *Driver) Emit(url string) {
	d.mu.Lock()
	fns := d.observerSnapshot()
	d.mu.Unlock()

	for _, fn := range fns {
		fn(url)
	}
}

func (d *Driver) observerSnapshot() []func(string) {
	ids := make([]int, 0, len(d.observers))
	for id := range d.observers {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	fns := make([]func(string), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, d.observers[id])
	}
	return fns
}

func (d *Driver) page() *Page {
	if p, ok := d.pages[d.current]; ok {
		return p
	}
	return &Page{}
}

func (d *Driver) record(call string) {
	d.Calls = append(d.Calls, call)
}

// Navigate implements browser.Driver.
func (d *Driver) Navigate(url string, _ browser.NavigateOptions) error {
	d.mu.Lock()
	d.record("navigate " + url)
	page, ok := d.pages[url]
	if !ok {
		d.mu.Unlock()
		return fmt.Errorf("navigation to %s failed: net::ERR_NAME_NOT_RESOLVED", url)
	}
	d.current = url
	if page.RedirectTo != "" {
		d.current = page.RedirectTo
	}
	d.polls = 0
	requests := append([]string(nil), page.Requests...)
	d.mu.Unlock()

	for _, r := range requests {
		d.Emit(r)
	}
	return nil
}

// Wait implements browser.Driver.
func (d *Driver) Wait(opts browser.WaitOptions) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("wait " + opts.Selector)

	if d.page().Elements[opts.Selector] > 0 {
		return nil
	}
	return fmt.Errorf("%w: wait for %q failed", browser.ErrWaitTimeout, opts.Selector)
}

// WaitForURL implements browser.Driver. It succeeds only if the current
// URL already matches.
func (d *Driver) WaitForURL(match func(string) bool, _ browser.WaitPolicy) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("waitURL")

	if match(d.current) {
		return nil
	}
	return fmt.Errorf("%w: url %s never matched", browser.ErrWaitTimeout, d.current)
}

// Click implements browser.Driver.
func (d *Driver) Click(opts browser.ClickOptions) error {
	d.mu.Lock()
	d.record("click " + opts.Selector)
	page := d.page()
	if page.Elements[opts.Selector] == 0 {
		d.mu.Unlock()
		return fmt.Errorf("%w: click %q failed", browser.ErrWaitTimeout, opts.Selector)
	}
	requests := append([]string(nil), page.ClickRequests[opts.Selector]...)
	if next, ok := page.ClickNavigates[opts.Selector]; ok {
		d.current = next
	}
	d.mu.Unlock()

	for _, r := range requests {
		d.Emit(r)
	}
	return nil
}

// Type implements browser.Driver.
func (d *Driver) Type(opts browser.TypeOptions) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record(fmt.Sprintf("type %s[%d]", opts.Selector, opts.Index))

	page := d.page()
	count := page.Elements[opts.Selector]
	if opts.Index >= count {
		return fmt.Errorf("%w: no element %q[%d]", browser.ErrWaitTimeout, opts.Selector, opts.Index)
	}
	d.TypedText = append(d.TypedText, Typed{Selector: opts.Selector, Index: opts.Index, Text: opts.Text})
	if next, ok := page.TypeNavigates[opts.Selector]; ok && opts.Index == count-1 {
		d.current = next
	}
	return nil
}

// Count implements browser.Driver.
func (d *Driver) Count(selector string) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.page().Elements[selector], nil
}

// TextContent implements browser.Driver.
func (d *Driver) TextContent(selector string, _ browser.WaitPolicy) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	text, ok := d.page().Texts[selector]
	if !ok {
		return "", fmt.Errorf("%w: text of %q failed", browser.ErrWaitTimeout, selector)
	}
	return text, nil
}

// Snapshot implements browser.Driver.
func (d *Driver) Snapshot() (*browser.Snapshot, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("snapshot")
	return browser.NewSnapshot(d.current, d.page().HTML)
}

// ScrollToBottom implements browser.Driver.
func (d *Driver) ScrollToBottom() (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("scroll")

	heights := d.page().Heights
	d.polls++
	if len(heights) == 0 {
		return 0, nil
	}
	i := d.polls - 1
	if i >= len(heights) {
		i = len(heights) - 1
	}
	return heights[i], nil
}

// ObserveRequests implements browser.Driver.
func (d *Driver) ObserveRequests(fn func(url string)) func() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("observe")

	id := d.nextID
	d.nextID++
	d.observers[id] = fn

	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		if _, ok := d.observers[id]; ok {
			d.record("detach")
			delete(d.observers, id)
		}
	}
}

// Cookies implements browser.Driver.
func (d *Driver) Cookies(string) ([]*http.Cookie, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.CookieJar, nil
}

// URL implements browser.Driver.
func (d *Driver) URL() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current
}

var _ browser.Driver = (*Driver)(nil)
