// Package main provides the guestlist command, which signs in to lu.ma,
// opens an event's guest list and exports every attendee to a spreadsheet.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
)

const version = "0.1.0"

// Scrape modes.
const (
	modeCalendar = "calendar"
	modeEvent    = "event"
)

// CLIConfig holds command-line configuration
type CLIConfig struct {
	ConfigFile  string
	URL         string
	Email       string
	Mode        string
	Event       int
	Headless    bool
	OutputDir   string
	Raw         bool
	Preview     int
	Verbosity   string
	WriteConfig string
	ShowVersion bool

	// set records which flags were given explicitly
	set map[string]bool
}

// IsSet reports whether the named flag was given on the command line.
func (c *CLIConfig) IsSet(name string) bool {
	return c.set[name]
}

func main() {
	cliConfig, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		os.Exit(2)
	}

	if cliConfig.ShowVersion {
		fmt.Printf("guestlist v%s\n", version)
		return
	}

	// Create context with signal handling
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\n\nShutting down gracefully...")
		cancel()
	}()

	if err := run(ctx, cliConfig); err != nil {
		cancel()
		log.Printf("guestlist failed: %v", err)
		os.Exit(1)
	}
	cancel()
}

// parseFlags parses command line flags
func parseFlags(args []string, output io.Writer) (*CLIConfig, error) {
	config := &CLIConfig{set: make(map[string]bool)}

	fs := flag.NewFlagSet("guestlist", flag.ContinueOnError)
	fs.SetOutput(output)

	fs.StringVar(&config.ConfigFile, "config", "", "Path to configuration file (YAML)")
	fs.StringVar(&config.URL, "url", "", "Calendar or event URL (prompted for when empty)")
	fs.StringVar(&config.Email, "email", "", "Login email (defaults to LUMA_EMAIL)")
	fs.StringVar(&config.Mode, "mode", "", "Scrape mode: calendar or event (prompted for when empty)")
	fs.IntVar(&config.Event, "event", 0, "1-based index of the calendar event to scrape")
	fs.BoolVar(&config.Headless, "headless", false, "Run the browser without a window")
	fs.StringVar(&config.OutputDir, "out", "", "Output directory for exported files")
	fs.BoolVar(&config.Raw, "raw", false, "Also write the raw guest list API response")
	fs.IntVar(&config.Preview, "preview", 0, "Print the first N attendees as JSON")
	fs.StringVar(&config.Verbosity, "verbosity", "", "Console verbosity: quiet, normal, verbose or debug")
	fs.StringVar(&config.WriteConfig, "write-config", "", "Write the effective configuration to this YAML file and exit")
	fs.BoolVar(&config.ShowVersion, "version", false, "Show version and exit")

	fs.Usage = func() {
		fmt.Fprintf(output, "guestlist - export lu.ma event attendees\n\n")
		fmt.Fprintf(output, "Usage: guestlist [options]\n\n")
		fmt.Fprintf(output, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(output, "\nExamples:\n")
		fmt.Fprintf(output, "  # Interactive run\n")
		fmt.Fprintf(output, "  guestlist\n\n")
		fmt.Fprintf(output, "  # Scrape the third event of a calendar\n")
		fmt.Fprintf(output, "  guestlist -url https://lu.ma/my-calendar -mode calendar -event 3\n\n")
		fmt.Fprintf(output, "  # Single event, with a preview and the raw payload\n")
		fmt.Fprintf(output, "  guestlist -url https://lu.ma/abc123 -mode event -preview 5 -raw\n\n")
		fmt.Fprintf(output, "  # Start a config file from the defaults\n")
		fmt.Fprintf(output, "  guestlist -headless -write-config guestlist.yaml\n\n")
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) {
		config.set[f.Name] = true
	})

	var err error
	switch {
	case config.Mode != "" && config.Mode != modeCalendar && config.Mode != modeEvent:
		err = fmt.Errorf("invalid mode %q (must be %q or %q)", config.Mode, modeCalendar, modeEvent)
	case config.Event < 0:
		err = fmt.Errorf("event index must be positive")
	}
	if err != nil {
		fmt.Fprintln(output, err)
		return nil, err
	}

	return config, nil
}
