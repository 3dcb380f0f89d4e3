// Package capture recovers the attendee list of a single event page.
//
// The event page loads its guests from an undocumented listing API, one
// small page at a time. Capture opens the guest list, intercepts that
// request, reads the real total from the popup heading and reissues the
// request directly with the page size set to the total, so the whole list
// arrives in one response.
package capture

import (
	"context"
	"errors"
	"fmt"

	"github.com/entrhq/guestlist/pkg/browser"
	"github.com/entrhq/guestlist/pkg/logging"
)

var (
	// ErrGuestListControlMissing means the event page has no guests button.
	ErrGuestListControlMissing = errors.New("guest list control not found")

	// ErrEndpointNotCaptured means no listing-API request was seen after
	// opening the guest list.
	ErrEndpointNotCaptured = errors.New("guest list request not captured")

	// ErrUpstreamStatus means the listing API answered with a non-2xx status.
	ErrUpstreamStatus = errors.New("listing API returned an error status")
)

// State is a step of a capture.
type State int

const (
	StateIdle State = iota
	StateNavigated
	StateObserverArmed
	StatePopupOpened
	StateEndpointCaptured
	StateTotalParsed
	StateRequestIssued
	StateNormalized
	StateDone
	StateFailed
)

var stateNames = map[State]string{
	StateIdle:             "idle",
	StateNavigated:        "navigated",
	StateObserverArmed:    "observer-armed",
	StatePopupOpened:      "popup-opened",
	StateEndpointCaptured: "endpoint-captured",
	StateTotalParsed:      "total-parsed",
	StateRequestIssued:    "request-issued",
	StateNormalized:       "normalized",
	StateDone:             "done",
	StateFailed:           "failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Outcome tells a failed capture apart from an event with no guests.
type Outcome int

const (
	OutcomeCaptured Outcome = iota
	OutcomeEmpty
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCaptured:
		return "captured"
	case OutcomeEmpty:
		return "empty"
	case OutcomeFailed:
		return "failed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Result is the outcome of one capture.
type Result struct {
	// Attendees is never nil; it is empty unless Outcome is OutcomeCaptured.
	Attendees []Attendee

	EventName string
	EventLink string
	Outcome   Outcome

	// State is the last state reached. A failed capture reports the state
	// it failed in.
	State State

	// Err is set when Outcome is OutcomeFailed.
	Err error

	// Endpoint is the rewritten listing-API URL that was fetched.
	Endpoint string

	// Total is the count read from the guest list heading, 0 if unknown.
	Total int

	// Raw is the untouched listing-API response body.
	Raw []byte
}

// Selectors locate the guest list UI on an event page.
type Selectors struct {
	Container string
	Button    string
	Total     string
	Title     string
}

// Waits are the wait policies of the capture steps.
type Waits struct {
	Navigation browser.WaitPolicy
	GuestList  browser.WaitPolicy
	Capture    browser.WaitPolicy
}

// Options configures a Capturer.
type Options struct {
	// SiteURL prefixes profile links
	SiteURL string

	Selectors Selectors
	Waits     Waits

	Matcher *EndpointMatcher

	// PaginationParam is set to the parsed total before fetching
	PaginationParam string
}

// Capturer runs captures against one browser driver.
type Capturer struct {
	driver browser.Driver
	client *Client
	opts   Options
	logger *logging.Logger
}

// New returns a Capturer. A nil logger discards output.
func New(driver browser.Driver, client *Client, opts Options, logger *logging.Logger) *Capturer {
	if logger == nil {
		logger = logging.Discard("capture")
	}
	if opts.Matcher == nil {
		opts.Matcher = DefaultMatcher()
	}
	if opts.PaginationParam == "" {
		opts.PaginationParam = DefaultPaginationParam
	}
	return &Capturer{
		driver: driver,
		client: client,
		opts:   opts,
		logger: logger,
	}
}

// Capture extracts the attendees of the event at eventURL. It never
// returns an error directly: failures are reported on the Result with
// OutcomeFailed and an empty attendee list so the caller can carry on.
func (c *Capturer) Capture(ctx context.Context, eventURL string) Result {
	res := Result{
		Attendees: []Attendee{},
		EventName: DefaultEventName,
		EventLink: eventURL,
		State:     StateIdle,
	}

	if err := c.run(ctx, eventURL, &res); err != nil {
		c.logger.Errorf("capture of %s failed in state %s: %v", eventURL, res.State, err)
		res.Attendees = []Attendee{}
		res.Outcome = OutcomeFailed
		res.Err = err
		return res
	}

	res.State = StateDone
	if len(res.Attendees) == 0 {
		res.Outcome = OutcomeEmpty
	} else {
		res.Outcome = OutcomeCaptured
	}
	c.logger.Infof("captured %d attendees of %q (%s)", len(res.Attendees), res.EventName, res.Outcome)
	return res
}

func (c *Capturer) run(ctx context.Context, eventURL string, res *Result) error {
	err := c.driver.Navigate(eventURL, browser.NavigateOptions{
		WaitUntil: "networkidle",
		Policy:    c.opts.Waits.Navigation,
	})
	if err != nil {
		return fmt.Errorf("failed to open event page: %w", err)
	}
	res.State = StateNavigated

	if err := ctx.Err(); err != nil {
		return err
	}

	err = c.driver.Wait(browser.WaitOptions{
		Selector: c.opts.Selectors.Container,
		State:    "visible",
		Policy:   c.opts.Waits.GuestList,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrGuestListControlMissing, err)
	}
	buttons, err := c.driver.Count(c.opts.Selectors.Button)
	if err != nil {
		return fmt.Errorf("failed to look up guest list control: %w", err)
	}
	if buttons == 0 {
		return ErrGuestListControlMissing
	}

	// The watch must be listening before the click that triggers the request.
	watch := browser.NewRequestWatch(c.opts.Matcher.Match)
	if err := watch.Arm(c.driver); err != nil {
		return err
	}
	defer watch.Cancel()
	res.State = StateObserverArmed
	c.logger.Debugf("watching for %s", c.opts.Matcher)

	err = c.driver.Click(browser.ClickOptions{
		Selector: c.opts.Selectors.Button,
		Policy:   c.opts.Waits.GuestList,
	})
	if err != nil {
		return fmt.Errorf("failed to open guest list: %w", err)
	}
	res.State = StatePopupOpened

	endpoint, err := watch.Wait(ctx, c.opts.Waits.Capture)
	if err != nil {
		if errors.Is(err, browser.ErrNoRequest) {
			return fmt.Errorf("%w within %s", ErrEndpointNotCaptured, c.opts.Waits.Capture)
		}
		return err
	}
	res.State = StateEndpointCaptured
	c.logger.Debugf("captured endpoint %s", endpoint)

	heading, err := c.driver.TextContent(c.opts.Selectors.Total, c.opts.Waits.GuestList)
	if err != nil {
		return fmt.Errorf("failed to read guest total: %w", err)
	}
	if total, ok := ParseTotal(heading); ok {
		res.Total = total
		endpoint, err = WithPaginationLimit(endpoint, c.opts.PaginationParam, total)
		if err != nil {
			return err
		}
		c.logger.Infof("guest list reports %d guests", total)
	} else {
		c.logger.Warnf("could not parse guest total from %q, fetching with the page's own limit", heading)
	}
	res.State = StateTotalParsed
	res.Endpoint = endpoint

	cookies, err := c.driver.Cookies(endpoint)
	if err != nil {
		return fmt.Errorf("failed to read browser cookies: %w", err)
	}
	body, err := c.client.FetchGuestList(ctx, endpoint, cookies)
	if err != nil {
		return err
	}
	res.Raw = body
	res.State = StateRequestIssued

	snap, err := c.driver.Snapshot()
	if err != nil {
		return fmt.Errorf("failed to read event page: %w", err)
	}
	if name := snap.FirstText(c.opts.Selectors.Title); name != "" {
		res.EventName = name
	}

	entries, err := decodeEntries(body)
	if err != nil {
		c.logger.Warnf("treating listing response as empty: %v", err)
	}
	res.Attendees = Normalizer{
		SiteURL:   c.opts.SiteURL,
		EventName: res.EventName,
		EventLink: eventURL,
	}.Normalize(entries)
	res.State = StateNormalized

	return nil
}
