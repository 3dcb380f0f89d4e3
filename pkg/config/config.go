package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/entrhq/guestlist/pkg/browser"
)

// Config is the full configuration of a scrape run.
type Config struct {
	// SiteURL is the events platform origin, used for sign-in, profile
	// links and relative event links
	SiteURL string `yaml:"site_url" json:"site_url"`

	// Email is the login email; prompted for when empty
	Email string `yaml:"email" json:"email"`

	Browser   BrowserConfig         `yaml:"browser" json:"browser"`
	Waits     WaitsConfig           `yaml:"waits" json:"waits"`
	Scroll    browser.ScrollOptions `yaml:"scroll" json:"scroll"`
	Selectors SelectorConfig        `yaml:"selectors" json:"selectors"`
	Endpoint  EndpointConfig        `yaml:"endpoint" json:"endpoint"`
	HTTP      HTTPConfig            `yaml:"http" json:"http"`
	Export    ExportConfig          `yaml:"export" json:"export"`
	Logging   LoggingConfig         `yaml:"logging" json:"logging"`

	// ConfigFilePath is where the config was loaded from, if anywhere
	ConfigFilePath string `yaml:"-" json:"-"`
}

// BrowserConfig controls the Chromium session.
type BrowserConfig struct {
	// Headless hides the browser window. Headed is the default so the
	// operator can see and help with the login.
	Headless bool `yaml:"headless" json:"headless"`

	// Install downloads the Playwright driver and Chromium on start
	Install bool `yaml:"install" json:"install"`

	Viewport browser.Viewport `yaml:"viewport" json:"viewport"`

	// TypeDelay is the pause between keystrokes when typing email and OTP
	TypeDelay time.Duration `yaml:"type_delay" json:"type_delay"`
}

// WaitsConfig holds the wait policy of every blocking step.
type WaitsConfig struct {
	Default      browser.WaitPolicy `yaml:"default" json:"default"`
	Navigation   browser.WaitPolicy `yaml:"navigation" json:"navigation"`
	Login        browser.WaitPolicy `yaml:"login" json:"login"`
	OTP          browser.WaitPolicy `yaml:"otp" json:"otp"`
	AuthComplete browser.WaitPolicy `yaml:"auth_complete" json:"auth_complete"`
	EventList    browser.WaitPolicy `yaml:"event_list" json:"event_list"`
	GuestList    browser.WaitPolicy `yaml:"guest_list" json:"guest_list"`
	Capture      browser.WaitPolicy `yaml:"capture" json:"capture"`
}

// SelectorConfig holds every CSS selector the scraper depends on.
type SelectorConfig struct {
	EmailInput     string `yaml:"email_input" json:"email_input"`
	SubmitButton   string `yaml:"submit_button" json:"submit_button"`
	OTPInput       string `yaml:"otp_input" json:"otp_input"`
	UserMenu       string `yaml:"user_menu" json:"user_menu"`
	EventLink      string `yaml:"event_link" json:"event_link"`
	GuestContainer string `yaml:"guest_container" json:"guest_container"`
	GuestButton    string `yaml:"guest_button" json:"guest_button"`
	GuestTotal     string `yaml:"guest_total" json:"guest_total"`
	EventTitle     string `yaml:"event_title" json:"event_title"`
}

// EndpointConfig describes the listing-API request to intercept.
type EndpointConfig struct {
	// Pattern is a glob matched against scheme://host/path of each request
	Pattern string `yaml:"pattern" json:"pattern"`

	// RequiredParams must all be present in the query
	RequiredParams []string `yaml:"required_params" json:"required_params"`

	// PaginationParam is rewritten to the total guest count
	PaginationParam string `yaml:"pagination_param" json:"pagination_param"`
}

// HTTPConfig configures the direct listing-API request.
type HTTPConfig struct {
	Timeout   time.Duration `yaml:"timeout" json:"timeout"`
	UserAgent string        `yaml:"user_agent" json:"user_agent"`
}

// ExportConfig controls the written artifacts.
type ExportConfig struct {
	OutputDir string `yaml:"output_dir" json:"output_dir"`
	XLSX      bool   `yaml:"xlsx" json:"xlsx"`
	JSON      bool   `yaml:"json" json:"json"`

	// Raw also writes the untouched API payload
	Raw bool `yaml:"raw" json:"raw"`
}

// LoggingConfig defines logging configuration
type LoggingConfig struct {
	// Verbosity controls console output: quiet, normal, verbose, debug
	Verbosity string `yaml:"verbosity" json:"verbosity"`

	// Level is the minimum log file level: debug, info, warn, error
	Level string `yaml:"level" json:"level"`

	// Dir overrides the log directory (default ~/.guestlist/logs)
	Dir string `yaml:"dir" json:"dir"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		SiteURL: "https://lu.ma",
		Browser: BrowserConfig{
			Headless: false,
			Install:  true,
			Viewport: browser.Viewport{
				Width:  browser.DefaultViewportWidth,
				Height: browser.DefaultViewportHeight,
			},
			TypeDelay: 100 * time.Millisecond,
		},
		Waits: WaitsConfig{
			Default:      browser.Bounded(30 * time.Second),
			Navigation:   browser.Bounded(2 * time.Minute),
			Login:        browser.Indefinite(),
			OTP:          browser.Indefinite(),
			AuthComplete: browser.Indefinite(),
			EventList:    browser.Indefinite(),
			GuestList:    browser.Indefinite(),
			Capture:      browser.Bounded(10 * time.Second),
		},
		Scroll: browser.ScrollOptions{
			Interval:    browser.DefaultScrollInterval,
			StablePolls: browser.DefaultScrollStablePolls,
			MaxDuration: browser.DefaultScrollMaxDuration,
		},
		Selectors: SelectorConfig{
			EmailInput:     `input[placeholder="you@email.com"]`,
			SubmitButton:   `button[type="submit"]`,
			OTPInput:       `input[inputmode="numeric"]`,
			UserMenu:       `div[class*="UserMenu"]`,
			EventLink:      `.timeline a.event-link`,
			GuestContainer: `.event-page-left .jsx-4155675949.content`,
			GuestButton:    `.event-page-left .jsx-4155675949.content .jsx-2911588165.guests-button`,
			GuestTotal:     `h3.title`,
			EventTitle:     `h1`,
		},
		Endpoint: EndpointConfig{
			Pattern:         "https://api.lu.ma/event/get-guest-list",
			RequiredParams:  []string{"event_api_id", "ticket_key"},
			PaginationParam: "pagination_limit",
		},
		HTTP: HTTPConfig{
			Timeout:   60 * time.Second,
			UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
		},
		Export: ExportConfig{
			OutputDir: ".",
			XLSX:      true,
			JSON:      true,
		},
		Logging: LoggingConfig{
			Verbosity: "normal",
			Level:     "info",
		},
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	site, err := url.Parse(c.SiteURL)
	if err != nil || site.Scheme == "" || site.Host == "" {
		return fmt.Errorf("site_url must be an absolute URL, got %q", c.SiteURL)
	}
	c.SiteURL = strings.TrimRight(c.SiteURL, "/")

	if c.Browser.TypeDelay < 0 {
		return fmt.Errorf("browser.type_delay cannot be negative")
	}

	waits := map[string]browser.WaitPolicy{
		"default":       c.Waits.Default,
		"navigation":    c.Waits.Navigation,
		"login":         c.Waits.Login,
		"otp":           c.Waits.OTP,
		"auth_complete": c.Waits.AuthComplete,
		"event_list":    c.Waits.EventList,
		"guest_list":    c.Waits.GuestList,
		"capture":       c.Waits.Capture,
	}
	for name, policy := range waits {
		if policy.Timeout < 0 {
			return fmt.Errorf("waits.%s.timeout cannot be negative", name)
		}
	}

	if c.Scroll.Interval < 0 || c.Scroll.MaxDuration < 0 || c.Scroll.StablePolls < 0 {
		return fmt.Errorf("scroll settings cannot be negative")
	}

	selectors := map[string]string{
		"email_input":     c.Selectors.EmailInput,
		"submit_button":   c.Selectors.SubmitButton,
		"otp_input":       c.Selectors.OTPInput,
		"user_menu":       c.Selectors.UserMenu,
		"event_link":      c.Selectors.EventLink,
		"guest_container": c.Selectors.GuestContainer,
		"guest_button":    c.Selectors.GuestButton,
		"guest_total":     c.Selectors.GuestTotal,
		"event_title":     c.Selectors.EventTitle,
	}
	for name, sel := range selectors {
		if strings.TrimSpace(sel) == "" {
			return fmt.Errorf("selectors.%s is required", name)
		}
	}

	if c.Endpoint.Pattern == "" {
		return fmt.Errorf("endpoint.pattern is required")
	}
	if c.Endpoint.PaginationParam == "" {
		return fmt.Errorf("endpoint.pagination_param is required")
	}

	if c.HTTP.Timeout < 0 {
		return fmt.Errorf("http.timeout cannot be negative")
	}

	if c.Export.OutputDir == "" {
		c.Export.OutputDir = "."
	}

	if c.Logging.Verbosity == "" {
		c.Logging.Verbosity = "normal"
	}
	validVerbosity := map[string]bool{
		"quiet":   true,
		"normal":  true,
		"verbose": true,
		"debug":   true,
	}
	if !validVerbosity[c.Logging.Verbosity] {
		return fmt.Errorf("invalid logging verbosity: %s (must be 'quiet', 'normal', 'verbose', or 'debug')", c.Logging.Verbosity)
	}

	return nil
}
