package report

import (
	"fmt"
	"strings"
	"time"
)

// Run statuses.
const (
	StatusSuccess     = "success"
	StatusNoAttendees = "no_attendees"
	StatusFailed      = "failed"
)

// Summary describes a finished run.
type Summary struct {
	Status    string
	URL       string
	EventName string
	Attendees int
	Total     int
	Artifacts []string
	Duration  time.Duration
	Error     string
	RunID     string
	LogPath   string
}

// Summary prints the final run summary. It is shown at every level.
func (r *Reporter) Summary(s Summary) {
	bar := strings.Repeat("=", 70)

	fmt.Fprintln(r.writer)
	r.line(r.styles.header, bar)
	r.line(r.styles.header, "  RUN SUMMARY")
	r.line(r.styles.header, bar)

	r.printStatus(s.Status)
	if s.URL != "" {
		fmt.Fprintf(r.writer, "  URL: %s\n", s.URL)
	}
	if s.EventName != "" {
		fmt.Fprintf(r.writer, "  Event: %s\n", s.EventName)
	}
	fmt.Fprintf(r.writer, "  Duration: %s\n", s.Duration.Round(time.Second))

	if s.Attendees > 0 || s.Total > 0 {
		fmt.Fprintf(r.writer, "\n  📊 Attendees: %s", formatNumber(s.Attendees))
		if s.Total > 0 {
			fmt.Fprintf(r.writer, " of %s listed", formatNumber(s.Total))
		}
		fmt.Fprintln(r.writer)
	}

	if len(s.Artifacts) > 0 {
		fmt.Fprintf(r.writer, "\n  📝 Files:\n")
		for _, path := range s.Artifacts {
			fmt.Fprintf(r.writer, "    • %s\n", path)
		}
	}

	if r.level >= LevelVerbose && s.LogPath != "" {
		fmt.Fprintf(r.writer, "\n  Log: %s (run %s)\n", s.LogPath, s.RunID)
	}

	if s.Error != "" {
		fmt.Fprintln(r.writer)
		r.line(r.styles.err, "  Error Details:")
		fmt.Fprintf(r.writer, "    %s\n", s.Error)
	}

	r.line(r.styles.header, bar)
	fmt.Fprintln(r.writer)
}

func (r *Reporter) printStatus(status string) {
	fmt.Fprint(r.writer, "  Status: ")
	switch status {
	case StatusSuccess:
		r.line(r.styles.success, "✓ SUCCESS")
	case StatusNoAttendees:
		r.line(r.styles.warning, "⚠ NO ATTENDEES FOUND")
	case StatusFailed:
		r.line(r.styles.err, "✗ FAILED")
	default:
		fmt.Fprintln(r.writer, status)
	}
}

// formatNumber formats large numbers with commas for readability
func formatNumber(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	if n < 1000000 {
		return fmt.Sprintf("%d,%03d", n/1000, n%1000)
	}
	return fmt.Sprintf("%d,%03d,%03d", n/1000000, (n/1000)%1000, n%1000)
}
