package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/entrhq/guestlist/pkg/auth"
	"github.com/entrhq/guestlist/pkg/browser"
	"github.com/entrhq/guestlist/pkg/capture"
	"github.com/entrhq/guestlist/pkg/config"
	"github.com/entrhq/guestlist/pkg/discovery"
	"github.com/entrhq/guestlist/pkg/export"
	"github.com/entrhq/guestlist/pkg/logging"
	"github.com/entrhq/guestlist/pkg/prompt"
	"github.com/entrhq/guestlist/pkg/report"
)

// Prompter collects run inputs from the operator.
type Prompter interface {
	auth.CodePrompter
	PromptURL(ctx context.Context) (string, error)
	PromptEmail(ctx context.Context, fallback string) (string, error)
	Select(ctx context.Context, title string, options []string, initial int) (int, error)
}

var _ Prompter = (*prompt.Prompter)(nil)

// run executes one scrape
func run(ctx context.Context, cliConfig *CLIConfig) error {
	cfg, err := config.Load(cliConfig.ConfigFile, ".env")
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	applyFlags(cfg, cliConfig)
	if validationErr := cfg.Validate(); validationErr != nil {
		return fmt.Errorf("invalid configuration: %w", validationErr)
	}

	if cliConfig.WriteConfig != "" {
		if err := cfg.Save(cliConfig.WriteConfig); err != nil {
			return err
		}
		fmt.Printf("Wrote configuration to %s\n", cliConfig.WriteConfig)
		return nil
	}

	if cfg.Logging.Dir != "" {
		logging.SetDirectory(cfg.Logging.Dir)
	}
	logging.SetLevel(logging.ParseLevel(cfg.Logging.Level))
	logger, logErr := logging.NewLogger("guestlist")
	defer logger.Close()

	reporter := report.New(report.ParseLevel(cfg.Logging.Verbosity), os.Stdout)
	if logErr != nil {
		reporter.Warningf("file logging unavailable: %v", logErr)
	}
	reporter.Header(fmt.Sprintf("guestlist v%s", version))
	logger.Infof("run %s started (config %q)", logger.RunID(), cfg.ConfigFilePath)

	p := &pipeline{
		cfg:      cfg,
		cli:      cliConfig,
		prompter: prompt.New(nil, nil),
		reporter: reporter,
		logger:   logger,
	}

	target, email, err := p.inputs(ctx)
	if err != nil {
		return err
	}

	manager := browser.NewSessionManager(logger.With("browser"))
	defer func() {
		if shutdownErr := manager.Shutdown(); shutdownErr != nil {
			logger.Warnf("browser shutdown: %v", shutdownErr)
		}
	}()
	// Indefinite waits never look at ctx; closing the browser releases them.
	stop := closeOnCancel(ctx, manager, logger)
	defer stop()

	if err := ctx.Err(); err != nil {
		return err
	}
	reporter.Step("Starting browser")
	if err := manager.Initialize(cfg.Browser.Install); err != nil {
		return err
	}
	session, err := manager.StartSession("guestlist", sessionOptions(cfg))
	if err != nil {
		return fmt.Errorf("failed to start browser: %w", err)
	}

	summary, err := p.scrape(ctx, session, target, email)
	if err != nil && ctx.Err() != nil {
		err = fmt.Errorf("interrupted: %w", ctx.Err())
	}
	summary.Duration = reporter.Elapsed()
	summary.RunID = logger.RunID()
	summary.LogPath = logger.LogPath()
	if err != nil {
		logger.Errorf("run failed: %v", err)
		summary.Status = report.StatusFailed
		summary.Error = err.Error()
	}
	reporter.Summary(summary)
	return err
}

type shutdowner interface {
	Shutdown() error
}

// closeOnCancel shuts the browser down as soon as ctx is cancelled. The
// returned stop function disarms it.
func closeOnCancel(ctx context.Context, target shutdowner, logger *logging.Logger) func() bool {
	return context.AfterFunc(ctx, func() {
		logger.Warnf("run cancelled, closing the browser")
		if err := target.Shutdown(); err != nil {
			logger.Warnf("browser shutdown: %v", err)
		}
	})
}

// pipeline runs sign-in, discovery, capture and export against one driver.
type pipeline struct {
	cfg      *config.Config
	cli      *CLIConfig
	prompter Prompter
	reporter *report.Reporter
	logger   *logging.Logger
}

// inputs resolves the target URL and login email. The URL comes from -url
// or a prompt. The email comes from -email or LUMA_EMAIL (both already in
// the config) and is only prompted for when neither is set.
func (p *pipeline) inputs(ctx context.Context) (string, string, error) {
	target := p.cli.URL
	if target == "" {
		var err error
		if target, err = p.prompter.PromptURL(ctx); err != nil {
			return "", "", fmt.Errorf("failed to read URL: %w", err)
		}
	}
	if err := prompt.ValidateURL(target); err != nil {
		return "", "", fmt.Errorf("invalid URL %q: %w", target, err)
	}

	email := strings.TrimSpace(p.cfg.Email)
	if email == "" {
		var err error
		if email, err = p.prompter.PromptEmail(ctx, ""); err != nil {
			return "", "", fmt.Errorf("failed to read email: %w", err)
		}
	}
	if email == "" {
		return "", "", auth.ErrEmailRequired
	}

	return target, email, nil
}

func (p *pipeline) scrape(ctx context.Context, driver browser.Driver, target, email string) (report.Summary, error) {
	summary := report.Summary{URL: target}

	p.reporter.Step("Signing in")
	flow := auth.New(driver, p.prompter, authOptions(p.cfg), p.logger.With("auth"))
	if err := flow.Authenticate(ctx, email); err != nil {
		return summary, err
	}
	p.reporter.Successf("Signed in as %s", email)

	mode, err := p.chooseMode(ctx)
	if err != nil {
		return summary, err
	}

	eventURL := target
	if mode == modeCalendar {
		p.reporter.Step("Discovering events")
		discoverer := discovery.New(driver, discoveryOptions(p.cfg), p.logger.With("discovery"))
		events, err := discoverer.DiscoverEvents(ctx, target)
		if err != nil {
			return summary, err
		}
		p.reporter.Successf("Found %d events", len(events))

		idx, err := p.chooseEvent(ctx, events)
		if err != nil {
			return summary, err
		}
		eventURL = events[idx].URL
		p.reporter.Infof("Selected %s", events[idx].Title)
	}
	summary.URL = eventURL

	p.reporter.Step("Capturing attendees")
	opts, err := captureOptions(p.cfg)
	if err != nil {
		return summary, err
	}
	capturer := capture.New(driver, capture.NewClient(clientOptions(p.cfg)), opts, p.logger.With("capture"))
	res := capturer.Capture(ctx, eventURL)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return summary, ctxErr
	}

	summary.EventName = res.EventName
	summary.Total = res.Total
	summary.Attendees = len(res.Attendees)

	exporter := export.New(exportOptions(p.cfg))
	switch res.Outcome {
	case capture.OutcomeFailed:
		p.reporter.Warningf("no attendees found: %v", res.Err)
		summary.Status = report.StatusNoAttendees
		summary.Error = res.Err.Error()
		return summary, nil
	case capture.OutcomeEmpty:
		p.reporter.Warningf("no attendees found: the guest list is empty")
		summary.Status = report.StatusNoAttendees
		if p.cfg.Export.Raw && len(res.Raw) > 0 {
			path, err := exporter.WriteRaw(res.Raw, res.EventName)
			if err != nil {
				return summary, err
			}
			summary.Artifacts = append(summary.Artifacts, path)
			p.reporter.Artifact(path)
		}
		return summary, nil
	}
	p.reporter.Successf("Captured %d attendees of %s", len(res.Attendees), res.EventName)

	p.reporter.Step("Exporting")
	paths, err := exporter.WriteAll(res)
	summary.Artifacts = paths
	if err != nil {
		return summary, err
	}
	for _, path := range paths {
		p.reporter.Artifact(path)
	}

	if p.cli.Preview > 0 {
		p.reporter.Section(fmt.Sprintf("First %d attendees", min(p.cli.Preview, len(res.Attendees))))
		if err := export.Preview(p.reporter.Writer(), res.Attendees, p.cli.Preview); err != nil {
			p.reporter.Warningf("preview failed: %v", err)
		}
	}

	summary.Status = report.StatusSuccess
	return summary, nil
}

func (p *pipeline) chooseMode(ctx context.Context) (string, error) {
	if p.cli.Mode != "" {
		return p.cli.Mode, nil
	}
	choice, err := p.prompter.Select(ctx, "What are you scraping?", []string{
		"A calendar (pick one of its events)",
		"A single event page",
	}, 0)
	if err != nil {
		return "", fmt.Errorf("failed to read mode: %w", err)
	}
	if choice == 0 {
		return modeCalendar, nil
	}
	return modeEvent, nil
}

func (p *pipeline) chooseEvent(ctx context.Context, events []discovery.EventLink) (int, error) {
	titles := make([]string, len(events))
	for i, e := range events {
		titles[i] = e.Title
	}

	if p.cli.Event > 0 {
		if p.cli.Event > len(events) {
			return 0, fmt.Errorf("event %d out of range: the calendar lists %d events", p.cli.Event, len(events))
		}
		return p.cli.Event - 1, nil
	}

	if len(events) == 1 {
		return 0, nil
	}

	p.reporter.Events(titles)
	idx, err := p.prompter.Select(ctx, "Which event?", titles, 0)
	if err != nil {
		return 0, fmt.Errorf("failed to read event choice: %w", err)
	}
	return idx, nil
}
