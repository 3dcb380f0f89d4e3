package browser

import (
	"errors"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/guestlist/pkg/logging"
)

var (
	// ErrWaitTimeout is returned when an element or condition does not
	// appear within a bounded WaitPolicy.
	ErrWaitTimeout = errors.New("wait timed out")

	// ErrScrollTimeout is returned when the page height does not settle
	// within ScrollOptions.MaxDuration.
	ErrScrollTimeout = errors.New("page height did not converge")

	// ErrNoRequest is returned by RequestWatch.Wait when no matching
	// request was observed.
	ErrNoRequest = errors.New("no matching request observed")
)

// Session represents an active browser session with its associated resources.
//
// The auth flow calls two blocking waits on one Session concurrently, so
// Session carries no mutable state of its own beyond Playwright's handles.
type Session struct {
	// Browser is the Playwright browser instance
	Browser playwright.Browser

	// Context is the browser context (isolated session)
	Context playwright.BrowserContext

	// Page is the single page every component drives
	Page playwright.Page

	logger *logging.Logger
}

// SessionOptions configures a new browser session.
type SessionOptions struct {
	// Headless controls whether the browser runs without a visible window
	Headless bool

	// Viewport sets the initial viewport size
	Viewport *Viewport

	// DefaultWait is applied to every Playwright call that does not carry
	// its own policy.
	DefaultWait WaitPolicy
}

// Viewport represents the browser viewport dimensions.
type Viewport struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// WaitPolicy decides how long a blocking page operation may take.
//
// An indefinite policy waits until the condition holds, which is what an
// operator solving a CAPTCHA or finishing 2FA by hand needs. A bounded
// policy fails with ErrWaitTimeout once Timeout has elapsed.
type WaitPolicy struct {
	Indefinite bool          `yaml:"indefinite"`
	Timeout    time.Duration `yaml:"timeout"`
}

// Bounded returns a policy that fails after d.
func Bounded(d time.Duration) WaitPolicy {
	return WaitPolicy{Timeout: d}
}

// Indefinite returns a policy that never times out.
func Indefinite() WaitPolicy {
	return WaitPolicy{Indefinite: true}
}

// Milliseconds converts the policy to a Playwright timeout, where 0 disables it.
func (p WaitPolicy) Milliseconds() float64 {
	if p.Indefinite {
		return 0
	}
	if p.Timeout <= 0 {
		return DefaultTimeout
	}
	return float64(p.Timeout.Milliseconds())
}

// Duration returns the bound as a time.Duration, or 0 when indefinite.
func (p WaitPolicy) Duration() time.Duration {
	if p.Indefinite {
		return 0
	}
	if p.Timeout <= 0 {
		return time.Duration(DefaultTimeout) * time.Millisecond
	}
	return p.Timeout
}

func (p WaitPolicy) String() string {
	if p.Indefinite {
		return "indefinite"
	}
	return p.Duration().String()
}

// NavigateOptions configures page navigation behavior.
type NavigateOptions struct {
	// WaitUntil specifies when to consider navigation successful
	// Valid values: "load", "domcontentloaded", "networkidle", "commit"
	WaitUntil string

	Policy WaitPolicy
}

// ClickOptions configures element clicking behavior.
type ClickOptions struct {
	// Selector identifies the element to click; the first match is used
	Selector string

	Policy WaitPolicy
}

// TypeOptions configures keystroke-by-keystroke typing into an input.
type TypeOptions struct {
	// Selector identifies the input elements
	Selector string

	// Index selects the nth match of Selector
	Index int

	// Text is typed one key at a time
	Text string

	// Delay is the pause between keystrokes
	Delay time.Duration

	Policy WaitPolicy
}

// WaitOptions configures waiting behavior.
type WaitOptions struct {
	// Selector to wait for
	Selector string

	// State to wait for: "attached", "detached", "visible", "hidden"
	State string

	Policy WaitPolicy
}

// ScrollOptions configures ScrollUntilStable.
type ScrollOptions struct {
	// Interval is the pause before every poll
	Interval time.Duration `yaml:"interval"`

	// StablePolls is how many consecutive polls must report an unchanged
	// height before the page is considered fully loaded
	StablePolls int `yaml:"stable_polls"`

	// MaxDuration bounds the whole loop; 0 means DefaultScrollMaxDuration
	MaxDuration time.Duration `yaml:"max_duration"`
}

// Default values for various operations
const (
	DefaultTimeout           = 30000.0 // 30 seconds in milliseconds
	DefaultViewportWidth     = 1280
	DefaultViewportHeight    = 720
	DefaultMaxSessions       = 1
	DefaultScrollInterval    = 1500 * time.Millisecond
	DefaultScrollStablePolls = 1
	DefaultScrollMaxDuration = 10 * time.Minute
)
