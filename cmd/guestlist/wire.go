package main

import (
	"github.com/entrhq/guestlist/pkg/auth"
	"github.com/entrhq/guestlist/pkg/browser"
	"github.com/entrhq/guestlist/pkg/capture"
	"github.com/entrhq/guestlist/pkg/config"
	"github.com/entrhq/guestlist/pkg/discovery"
	"github.com/entrhq/guestlist/pkg/export"
)

// applyFlags lets explicit command-line flags override the loaded config.
func applyFlags(cfg *config.Config, cli *CLIConfig) {
	if cli.Email != "" {
		cfg.Email = cli.Email
	}
	if cli.IsSet("headless") {
		cfg.Browser.Headless = cli.Headless
	}
	if cli.OutputDir != "" {
		cfg.Export.OutputDir = cli.OutputDir
	}
	if cli.IsSet("raw") {
		cfg.Export.Raw = cli.Raw
	}
	if cli.Verbosity != "" {
		cfg.Logging.Verbosity = cli.Verbosity
	}
}

func sessionOptions(cfg *config.Config) browser.SessionOptions {
	viewport := cfg.Browser.Viewport
	return browser.SessionOptions{
		Headless:    cfg.Browser.Headless,
		Viewport:    &viewport,
		DefaultWait: cfg.Waits.Default,
	}
}

func authOptions(cfg *config.Config) auth.Options {
	return auth.Options{
		SiteURL: cfg.SiteURL,
		Selectors: auth.Selectors{
			EmailInput:   cfg.Selectors.EmailInput,
			SubmitButton: cfg.Selectors.SubmitButton,
			OTPInput:     cfg.Selectors.OTPInput,
			UserMenu:     cfg.Selectors.UserMenu,
		},
		Waits: auth.Waits{
			Navigation:   cfg.Waits.Navigation,
			Login:        cfg.Waits.Login,
			OTP:          cfg.Waits.OTP,
			AuthComplete: cfg.Waits.AuthComplete,
		},
		TypeDelay: cfg.Browser.TypeDelay,
	}
}

func discoveryOptions(cfg *config.Config) discovery.Options {
	return discovery.Options{
		SiteURL:   cfg.SiteURL,
		EventLink: cfg.Selectors.EventLink,
		Waits: discovery.Waits{
			Navigation: cfg.Waits.Navigation,
			EventList:  cfg.Waits.EventList,
		},
		Scroll: cfg.Scroll,
	}
}

func captureOptions(cfg *config.Config) (capture.Options, error) {
	matcher, err := capture.NewEndpointMatcher(cfg.Endpoint.Pattern, cfg.Endpoint.RequiredParams)
	if err != nil {
		return capture.Options{}, err
	}
	return capture.Options{
		SiteURL: cfg.SiteURL,
		Selectors: capture.Selectors{
			Container: cfg.Selectors.GuestContainer,
			Button:    cfg.Selectors.GuestButton,
			Total:     cfg.Selectors.GuestTotal,
			Title:     cfg.Selectors.EventTitle,
		},
		Waits: capture.Waits{
			Navigation: cfg.Waits.Navigation,
			GuestList:  cfg.Waits.GuestList,
			Capture:    cfg.Waits.Capture,
		},
		Matcher:         matcher,
		PaginationParam: cfg.Endpoint.PaginationParam,
	}, nil
}

func clientOptions(cfg *config.Config) capture.ClientOptions {
	return capture.ClientOptions{
		Timeout:   cfg.HTTP.Timeout,
		UserAgent: cfg.HTTP.UserAgent,
	}
}

func exportOptions(cfg *config.Config) export.Options {
	return export.Options{
		OutputDir: cfg.Export.OutputDir,
		XLSX:      cfg.Export.XLSX,
		JSON:      cfg.Export.JSON,
		Raw:       cfg.Export.Raw,
	}
}
