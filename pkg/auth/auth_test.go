package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/guestlist/pkg/browser"
	"github.com/entrhq/guestlist/pkg/browser/browsertest"
)

const (
	signInURL = "https://lu.ma/signin"
	emailSel  = `input[placeholder="you@email.com"]`
	submitSel = `button[type="submit"]`
	otpSel    = `input[inputmode="numeric"]`
	menuSel   = `div[class*="UserMenu"]`
)

func testOptions() Options {
	return Options{
		SiteURL: "https://lu.ma/",
		Selectors: Selectors{
			EmailInput:   emailSel,
			SubmitButton: submitSel,
			OTPInput:     otpSel,
			UserMenu:     menuSel,
		},
		Waits: Waits{
			Navigation:   browser.Bounded(time.Second),
			Login:        browser.Bounded(time.Second),
			OTP:          browser.Bounded(time.Second),
			AuthComplete: browser.Bounded(time.Second),
		},
	}
}

func fixedCode(code string) CodePrompter {
	return CodePrompterFunc(func(context.Context, string) (string, error) {
		return code, nil
	})
}

// signInPage is the form after the code step, with the user menu shown
// once the code is accepted.
func signInPage(otpFields int, signedIn bool) *browsertest.Page {
	elements := map[string]int{
		emailSel:  1,
		submitSel: 1,
		otpSel:    otpFields,
	}
	if signedIn {
		elements[menuSel] = 1
	}
	return &browsertest.Page{Elements: elements}
}

func TestAuthenticate_UserMenuConfirms(t *testing.T) {
	driver := browsertest.New(map[string]*browsertest.Page{signInURL: signInPage(6, true)})
	flow := New(driver, fixedCode("123456"), testOptions(), nil)

	err := flow.Authenticate(context.Background(), "  ann@example.com ")
	require.NoError(t, err)

	require.Len(t, driver.TypedText, 7)
	assert.Equal(t, browsertest.Typed{Selector: emailSel, Index: 0, Text: "ann@example.com"}, driver.TypedText[0])
	for i, digit := range "123456" {
		assert.Equal(t, browsertest.Typed{Selector: otpSel, Index: i, Text: string(digit)}, driver.TypedText[i+1])
	}

	calls := driver.CallLog()
	assert.Equal(t, "navigate "+signInURL, calls[0])
	assert.Contains(t, calls, "click "+submitSel)
}

func TestAuthenticate_NavigationConfirms(t *testing.T) {
	page := signInPage(6, false)
	page.ClickNavigates = map[string]string{submitSel: "https://lu.ma/verify"}
	codePage := signInPage(6, false)
	codePage.TypeNavigates = map[string]string{otpSel: "https://lu.ma/home"}
	driver := browsertest.New(map[string]*browsertest.Page{
		signInURL:              page,
		"https://lu.ma/verify": codePage,
		"https://lu.ma/home":   {},
	})

	err := New(driver, fixedCode("654321"), testOptions(), nil).Authenticate(context.Background(), "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, "https://lu.ma/home", driver.URL())
}

func TestAuthenticate_StayingOnCodePageIsNotSignedIn(t *testing.T) {
	tests := []struct {
		name  string
		pages map[string]*browsertest.Page
	}{
		{
			name: "sign-in page redirects to another host",
			pages: map[string]*browsertest.Page{
				signInURL:                              {RedirectTo: "https://luma.com/signin?next=%2Fhome"},
				"https://luma.com/signin?next=%2Fhome": signInPage(6, false),
			},
		},
		{
			name: "submit moves to a separate code page",
			pages: func() map[string]*browsertest.Page {
				page := signInPage(6, false)
				page.ClickNavigates = map[string]string{submitSel: "https://lu.ma/verify"}
				return map[string]*browsertest.Page{
					signInURL:              page,
					"https://lu.ma/verify": signInPage(6, false),
				}
			}(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			driver := browsertest.New(tt.pages)
			err := New(driver, fixedCode("000000"), testOptions(), nil).Authenticate(context.Background(), "ann@example.com")

			assert.ErrorIs(t, err, ErrAuthFailed)
			assert.Len(t, driver.TypedText, 7, "the code was entered before giving up")
		})
	}
}

func TestAuthenticate_CodeLengthMismatch(t *testing.T) {
	tests := []struct {
		name       string
		code       string
		fields     int
		wantDigits int
	}{
		{"short code fills leading fields", "12", 6, 2},
		{"long code is truncated", "12345678", 6, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			driver := browsertest.New(map[string]*browsertest.Page{signInURL: signInPage(tt.fields, true)})
			err := New(driver, fixedCode(tt.code), testOptions(), nil).Authenticate(context.Background(), "ann@example.com")
			require.NoError(t, err)
			assert.Len(t, driver.TypedText, 1+tt.wantDigits)
		})
	}
}

func TestAuthenticate_EmailRequired(t *testing.T) {
	driver := browsertest.New(nil)
	err := New(driver, fixedCode("1"), testOptions(), nil).Authenticate(context.Background(), "   ")

	assert.ErrorIs(t, err, ErrEmailRequired)
	assert.Empty(t, driver.CallLog(), "no browser work without an email")
}

func TestAuthenticate_Failures(t *testing.T) {
	tests := []struct {
		name string
		page *browsertest.Page
	}{
		{
			name: "email field never appears",
			page: &browsertest.Page{},
		},
		{
			name: "code field never appears",
			page: &browsertest.Page{Elements: map[string]int{emailSel: 1, submitSel: 1}},
		},
		{
			name: "neither signal confirms",
			page: signInPage(6, false),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			driver := browsertest.New(map[string]*browsertest.Page{signInURL: tt.page})
			err := New(driver, fixedCode("123456"), testOptions(), nil).Authenticate(context.Background(), "ann@example.com")

			assert.ErrorIs(t, err, ErrAuthFailed)
			assert.ErrorIs(t, err, browser.ErrWaitTimeout)
		})
	}
}

func TestAuthenticate_PromptErrors(t *testing.T) {
	driver := browsertest.New(map[string]*browsertest.Page{signInURL: signInPage(6, true)})
	cancelled := CodePrompterFunc(func(context.Context, string) (string, error) {
		return "", context.Canceled
	})

	err := New(driver, cancelled, testOptions(), nil).Authenticate(context.Background(), "ann@example.com")
	assert.True(t, errors.Is(err, context.Canceled))

	err = New(driver, fixedCode(" "), testOptions(), nil).Authenticate(context.Background(), "ann@example.com")
	assert.ErrorIs(t, err, ErrAuthFailed)
}

func TestAuthenticate_NavigationFails(t *testing.T) {
	driver := browsertest.New(nil)
	err := New(driver, fixedCode("1"), testOptions(), nil).Authenticate(context.Background(), "ann@example.com")

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrAuthFailed)
}

func TestSignInURL(t *testing.T) {
	flow := New(browsertest.New(nil), fixedCode(""), testOptions(), nil)
	assert.Equal(t, signInURL, flow.SignInURL())
}
