package browser

import "net/http"

// Driver is the set of page primitives the scraping components need.
// *Session implements it on top of Playwright; browsertest.Driver
// implements it in memory.
type Driver interface {
	RequestObserver

	// Navigate loads url in the page.
	Navigate(url string, opts NavigateOptions) error

	// Wait blocks until an element matching opts.Selector reaches opts.State.
	Wait(opts WaitOptions) error

	// WaitForURL blocks until the page URL satisfies match.
	WaitForURL(match func(url string) bool, policy WaitPolicy) error

	// Click clicks the first element matching the selector.
	Click(opts ClickOptions) error

	// Type types text into the nth element matching the selector.
	Type(opts TypeOptions) error

	// Count returns how many elements currently match selector.
	Count(selector string) (int, error)

	// TextContent returns the text of the first element matching selector.
	TextContent(selector string, policy WaitPolicy) (string, error)

	// Snapshot returns the parsed current page HTML.
	Snapshot() (*Snapshot, error)

	// ScrollToBottom scrolls to the end of the document and returns the
	// document height measured before scrolling.
	ScrollToBottom() (int, error)

	// Cookies returns the browser cookies that apply to url.
	Cookies(url string) ([]*http.Cookie, error)

	// URL returns the current page URL.
	URL() string
}

// RequestObserver delivers the URL of every outbound request to fn until
// the returned detach function is called.
type RequestObserver interface {
	ObserveRequests(fn func(url string)) (detach func())
}

var _ Driver = (*Session)(nil)
