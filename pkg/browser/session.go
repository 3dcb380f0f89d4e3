package browser

import (
	"errors"
	"fmt"
	"math"
	"net/http"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/guestlist/pkg/logging"
)

// scrollScript scrolls to the bottom and reports the height it scrolled to.
const scrollScript = `() => {
	const height = document.body.scrollHeight;
	window.scrollTo(0, height);
	return height;
}`

func (s *Session) log() *logging.Logger {
	if s.logger == nil {
		return logging.Discard("browser")
	}
	return s.logger
}

// Navigate navigates the session's page to the specified URL.
func (s *Session) Navigate(url string, opts NavigateOptions) error {
	gotoOpts := playwright.PageGotoOptions{
		Timeout: playwright.Float(opts.Policy.Milliseconds()),
	}
	if opts.WaitUntil != "" {
		waitUntil := playwright.WaitUntilState(opts.WaitUntil)
		gotoOpts.WaitUntil = &waitUntil
	}

	s.log().Debugf("navigate %s (wait until %q, %s)", url, opts.WaitUntil, opts.Policy)
	if _, err := s.Page.Goto(url, gotoOpts); err != nil {
		return wrapTimeout(fmt.Errorf("navigation to %s failed: %w", url, err), err)
	}
	return nil
}

// Wait waits for an element to reach a state.
func (s *Session) Wait(opts WaitOptions) error {
	if opts.Selector == "" {
		return fmt.Errorf("selector is required for wait")
	}

	waitOpts := playwright.PageWaitForSelectorOptions{
		Timeout: playwright.Float(opts.Policy.Milliseconds()),
	}
	if opts.State != "" {
		state := playwright.WaitForSelectorState(opts.State)
		waitOpts.State = &state
	}

	s.log().Debugf("wait for %q (%s, %s)", opts.Selector, opts.State, opts.Policy)
	if _, err := s.Page.WaitForSelector(opts.Selector, waitOpts); err != nil {
		return wrapTimeout(fmt.Errorf("wait for %q failed: %w", opts.Selector, err), err)
	}
	return nil
}

// WaitForURL waits until the page URL satisfies match.
func (s *Session) WaitForURL(match func(url string) bool, policy WaitPolicy) error {
	err := s.Page.WaitForURL(match, playwright.PageWaitForURLOptions{
		Timeout: playwright.Float(policy.Milliseconds()),
	})
	if err != nil {
		return wrapTimeout(fmt.Errorf("wait for url change failed: %w", err), err)
	}
	return nil
}

// Click clicks the first element matching the selector.
func (s *Session) Click(opts ClickOptions) error {
	err := s.Page.Locator(opts.Selector).First().Click(playwright.LocatorClickOptions{
		Timeout: playwright.Float(opts.Policy.Milliseconds()),
	})
	if err != nil {
		return wrapTimeout(fmt.Errorf("click %q failed: %w", opts.Selector, err), err)
	}
	return nil
}

// Type presses each key of opts.Text into the nth element matching the selector.
func (s *Session) Type(opts TypeOptions) error {
	err := s.Page.Locator(opts.Selector).Nth(opts.Index).PressSequentially(opts.Text, playwright.LocatorPressSequentiallyOptions{
		Delay:   playwright.Float(float64(opts.Delay.Milliseconds())),
		Timeout: playwright.Float(opts.Policy.Milliseconds()),
	})
	if err != nil {
		return wrapTimeout(fmt.Errorf("type into %q[%d] failed: %w", opts.Selector, opts.Index, err), err)
	}
	return nil
}

// Count returns how many elements currently match selector.
func (s *Session) Count(selector string) (int, error) {
	n, err := s.Page.Locator(selector).Count()
	if err != nil {
		return 0, fmt.Errorf("count %q failed: %w", selector, err)
	}
	return n, nil
}

// TextContent returns the text of the first element matching selector.
func (s *Session) TextContent(selector string, policy WaitPolicy) (string, error) {
	text, err := s.Page.Locator(selector).First().TextContent(playwright.LocatorTextContentOptions{
		Timeout: playwright.Float(policy.Milliseconds()),
	})
	if err != nil {
		return "", wrapTimeout(fmt.Errorf("text of %q failed: %w", selector, err), err)
	}
	return text, nil
}

// Snapshot parses the current page HTML.
func (s *Session) Snapshot() (*Snapshot, error) {
	content, err := s.Page.Content()
	if err != nil {
		return nil, fmt.Errorf("failed to read page content: %w", err)
	}
	return NewSnapshot(s.Page.URL(), content)
}

// ScrollToBottom scrolls to the end of the document and returns its height.
func (s *Session) ScrollToBottom() (int, error) {
	result, err := s.Page.Evaluate(scrollScript)
	if err != nil {
		return 0, fmt.Errorf("scroll failed: %w", err)
	}
	return toInt(result)
}

// ObserveRequests calls fn with the URL of every request the page issues.
func (s *Session) ObserveRequests(fn func(url string)) func() {
	handler := func(req playwright.Request) {
		fn(req.URL())
	}
	s.Page.OnRequest(handler)
	return func() {
		s.Page.RemoveListener("request", handler)
	}
}

// Cookies returns the context cookies for url as net/http cookies.
func (s *Session) Cookies(url string) ([]*http.Cookie, error) {
	cookies, err := s.Context.Cookies(url)
	if err != nil {
		return nil, fmt.Errorf("failed to read cookies for %s: %w", url, err)
	}

	out := make([]*http.Cookie, 0, len(cookies))
	for _, c := range cookies {
		out = append(out, &http.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Secure:   c.Secure,
			HttpOnly: c.HttpOnly,
		})
	}
	return out, nil
}

// URL returns the current page URL.
func (s *Session) URL() string {
	return s.Page.URL()
}

func (s *Session) close() {
	_ = s.Page.Close()    // Ignore errors, continue cleanup
	_ = s.Context.Close() // Ignore errors, continue cleanup
	_ = s.Browser.Close() // Ignore errors, continue cleanup
}

func wrapTimeout(wrapped, cause error) error {
	if errors.Is(cause, playwright.ErrTimeout) {
		return fmt.Errorf("%w: %w", ErrWaitTimeout, wrapped)
	}
	return wrapped
}

// toInt converts a number returned from page evaluation.
func toInt(v interface{}) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, fmt.Errorf("invalid number %v", n)
		}
		return int(n), nil
	default:
		return 0, fmt.Errorf("unexpected value %v (%T), expected a number", v, v)
	}
}
