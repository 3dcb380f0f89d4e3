// Package auth signs a browser session in with an email one-time code.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/entrhq/guestlist/pkg/browser"
	"github.com/entrhq/guestlist/pkg/logging"
)

var (
	// ErrEmailRequired is returned when no login email was supplied.
	ErrEmailRequired = errors.New("login email is required")

	// ErrAuthFailed is returned when the login could not be confirmed.
	ErrAuthFailed = errors.New("authentication failed")
)

// CodePrompter asks the operator for the one-time code sent by email.
type CodePrompter interface {
	PromptCode(ctx context.Context, email string) (string, error)
}

// CodePrompterFunc adapts a function to CodePrompter.
type CodePrompterFunc func(ctx context.Context, email string) (string, error)

// PromptCode implements CodePrompter.
func (f CodePrompterFunc) PromptCode(ctx context.Context, email string) (string, error) {
	return f(ctx, email)
}

// Selectors locate the sign-in form.
type Selectors struct {
	EmailInput   string
	SubmitButton string
	OTPInput     string
	UserMenu     string
}

// Waits are the wait policies of the sign-in steps.
type Waits struct {
	Navigation   browser.WaitPolicy
	Login        browser.WaitPolicy
	OTP          browser.WaitPolicy
	AuthComplete browser.WaitPolicy
}

// Options configures a Flow.
type Options struct {
	SiteURL   string
	Selectors Selectors
	Waits     Waits

	// TypeDelay is the pause between keystrokes
	TypeDelay time.Duration
}

// Flow drives the sign-in form.
type Flow struct {
	driver   browser.Driver
	prompter CodePrompter
	opts     Options
	logger   *logging.Logger
}

// New returns a Flow. A nil logger discards output.
func New(driver browser.Driver, prompter CodePrompter, opts Options, logger *logging.Logger) *Flow {
	if logger == nil {
		logger = logging.Discard("auth")
	}
	return &Flow{
		driver:   driver,
		prompter: prompter,
		opts:     opts,
		logger:   logger,
	}
}

// SignInURL is the page the flow starts from.
func (f *Flow) SignInURL() string {
	return strings.TrimRight(f.opts.SiteURL, "/") + "/signin"
}

// Authenticate signs in as email. It returns nil once the session is
// authenticated; there are no retries.
func (f *Flow) Authenticate(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ErrEmailRequired
	}

	signIn := f.SignInURL()
	f.logger.Infof("signing in as %s at %s", email, signIn)

	err := f.driver.Navigate(signIn, browser.NavigateOptions{
		WaitUntil: "networkidle",
		Policy:    f.opts.Waits.Navigation,
	})
	if err != nil {
		return fmt.Errorf("failed to open sign-in page: %w", err)
	}

	err = f.driver.Wait(browser.WaitOptions{
		Selector: f.opts.Selectors.EmailInput,
		State:    "visible",
		Policy:   f.opts.Waits.Login,
	})
	if err != nil {
		return fmt.Errorf("%w: email field: %w", ErrAuthFailed, err)
	}

	err = f.driver.Type(browser.TypeOptions{
		Selector: f.opts.Selectors.EmailInput,
		Text:     email,
		Delay:    f.opts.TypeDelay,
		Policy:   f.opts.Waits.Login,
	})
	if err != nil {
		return fmt.Errorf("%w: typing email: %w", ErrAuthFailed, err)
	}

	err = f.driver.Click(browser.ClickOptions{
		Selector: f.opts.Selectors.SubmitButton,
		Policy:   f.opts.Waits.Login,
	})
	if err != nil {
		return fmt.Errorf("%w: submitting email: %w", ErrAuthFailed, err)
	}

	err = f.driver.Wait(browser.WaitOptions{
		Selector: f.opts.Selectors.OTPInput,
		State:    "visible",
		Policy:   f.opts.Waits.OTP,
	})
	if err != nil {
		return fmt.Errorf("%w: code field: %w", ErrAuthFailed, err)
	}

	code, err := f.prompter.PromptCode(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to read verification code: %w", err)
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return fmt.Errorf("%w: empty verification code", ErrAuthFailed)
	}

	// Redirects and query parameters can leave the code page elsewhere than signIn.
	codePage := f.driver.URL()
	if err := f.enterCode(code); err != nil {
		return err
	}

	return f.awaitSignedIn(ctx, codePage)
}

// enterCode types one character per code input. Extra characters or
// extra inputs are ignored.
func (f *Flow) enterCode(code string) error {
	inputs, err := f.driver.Count(f.opts.Selectors.OTPInput)
	if err != nil {
		return fmt.Errorf("%w: counting code fields: %w", ErrAuthFailed, err)
	}

	digits := []rune(code)
	n := min(len(digits), inputs)
	f.logger.Debugf("entering %d of %d code digits into %d fields", n, len(digits), inputs)

	for i := 0; i < n; i++ {
		err := f.driver.Type(browser.TypeOptions{
			Selector: f.opts.Selectors.OTPInput,
			Index:    i,
			Text:     string(digits[i]),
			Delay:    f.opts.TypeDelay,
			Policy:   f.opts.Waits.OTP,
		})
		if err != nil {
			return fmt.Errorf("%w: code field %d: %w", ErrAuthFailed, i, err)
		}
	}
	return nil
}

type signal struct {
	source string
	err    error
}

// awaitSignedIn races leaving codePage against the user menu appearing.
// The first success wins; both failing is an auth failure.
func (f *Flow) awaitSignedIn(ctx context.Context, codePage string) error {
	policy := f.opts.Waits.AuthComplete
	signals := make(chan signal, 2)

	go func() {
		err := f.driver.WaitForURL(func(u string) bool {
			return u != codePage
		}, policy)
		signals <- signal{source: "navigation", err: err}
	}()

	go func() {
		err := f.driver.Wait(browser.WaitOptions{
			Selector: f.opts.Selectors.UserMenu,
			State:    "visible",
			Policy:   policy,
		})
		signals <- signal{source: "user menu", err: err}
	}()

	var errs []error
	for range 2 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case s := <-signals:
			if s.err == nil {
				f.logger.Infof("signed in (confirmed by %s)", s.source)
				return nil
			}
			f.logger.Debugf("%s did not confirm sign-in: %v", s.source, s.err)
			errs = append(errs, s.err)
		}
	}

	return fmt.Errorf("%w: %w", ErrAuthFailed, errors.Join(errs...))
}
