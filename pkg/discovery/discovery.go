// Package discovery lists the events of a calendar page.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/entrhq/guestlist/pkg/browser"
	"github.com/entrhq/guestlist/pkg/logging"
)

// ErrNoEvents is returned when a calendar page has no event links.
var ErrNoEvents = errors.New("no events found on calendar page")

// EventLink is one event found on a calendar page.
type EventLink struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// Waits are the wait policies of discovery.
type Waits struct {
	Navigation browser.WaitPolicy
	EventList  browser.WaitPolicy
}

// Options configures a Discoverer.
type Options struct {
	// SiteURL resolves relative event links
	SiteURL string

	// EventLink selects the event anchors
	EventLink string

	Waits  Waits
	Scroll browser.ScrollOptions
}

// Discoverer finds the events listed on calendar pages.
type Discoverer struct {
	driver browser.Driver
	opts   Options
	logger *logging.Logger
}

// New returns a Discoverer. A nil logger discards output.
func New(driver browser.Driver, opts Options, logger *logging.Logger) *Discoverer {
	if logger == nil {
		logger = logging.Discard("discovery")
	}
	return &Discoverer{driver: driver, opts: opts, logger: logger}
}

// DiscoverEvents opens calendarURL, scrolls until every lazily loaded
// event has rendered and returns the events in page order, one per URL.
func (d *Discoverer) DiscoverEvents(ctx context.Context, calendarURL string) ([]EventLink, error) {
	err := d.driver.Navigate(calendarURL, browser.NavigateOptions{
		WaitUntil: "networkidle",
		Policy:    d.opts.Waits.Navigation,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open calendar: %w", err)
	}

	err = d.driver.Wait(browser.WaitOptions{
		Selector: d.opts.EventLink,
		State:    "visible",
		Policy:   d.opts.Waits.EventList,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoEvents, err)
	}

	polls, err := browser.ScrollUntilStable(ctx, d.driver, d.opts.Scroll)
	if err != nil {
		return nil, fmt.Errorf("failed to load all events: %w", err)
	}
	d.logger.Debugf("calendar height settled after %d polls", polls)

	snap, err := d.driver.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("failed to read calendar: %w", err)
	}

	events := d.collect(snap.Anchors(d.opts.EventLink))
	if len(events) == 0 {
		return nil, ErrNoEvents
	}

	d.logger.Infof("found %d events on %s", len(events), calendarURL)
	return events, nil
}

// collect resolves and deduplicates anchors. Anchors without an href or a
// label are skipped; the first title seen for a URL wins.
func (d *Discoverer) collect(anchors []browser.Anchor) []EventLink {
	base, err := url.Parse(d.opts.SiteURL)
	if err != nil {
		base = nil
	}

	seen := make(map[string]bool)
	events := make([]EventLink, 0, len(anchors))
	for _, a := range anchors {
		if a.Href == "" || a.Label == "" {
			continue
		}

		link := a.Href
		if ref, err := url.Parse(a.Href); err == nil && base != nil {
			link = base.ResolveReference(ref).String()
		}

		if seen[link] {
			continue
		}
		seen[link] = true
		events = append(events, EventLink{URL: link, Title: a.Label})
	}
	return events
}
