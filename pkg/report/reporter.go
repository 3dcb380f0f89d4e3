// Package report prints run progress and the final summary to the console.
package report

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Level represents the console verbosity level
type Level int

const (
	// LevelQuiet shows only errors, warnings and the final summary
	LevelQuiet Level = iota
	// LevelNormal shows standard progress (default)
	LevelNormal
	// LevelVerbose shows detailed progress
	LevelVerbose
	// LevelDebug shows everything
	LevelDebug
)

// ParseLevel converts a verbosity name to a Level, defaulting to normal.
func ParseLevel(level string) Level {
	switch level {
	case "quiet":
		return LevelQuiet
	case "normal":
		return LevelNormal
	case "verbose":
		return LevelVerbose
	case "debug":
		return LevelDebug
	default:
		return LevelNormal
	}
}

// Color Palette
var (
	salmonPink  = lipgloss.Color("#FFB3BA")
	mintGreen   = lipgloss.Color("#A8E6CF")
	skyBlue     = lipgloss.Color("#87CEEB")
	amber       = lipgloss.Color("#FFD580")
	mutedGray   = lipgloss.Color("#6B7280")
	brightWhite = lipgloss.Color("#F9FAFB")
)

type styles struct {
	header  lipgloss.Style
	section lipgloss.Style
	rule    lipgloss.Style
	success lipgloss.Style
	info    lipgloss.Style
	warning lipgloss.Style
	err     lipgloss.Style
	muted   lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		header:  r.NewStyle().Foreground(brightWhite).Bold(true),
		section: r.NewStyle().Foreground(skyBlue),
		rule:    r.NewStyle().Foreground(mutedGray),
		success: r.NewStyle().Foreground(mintGreen).Bold(true),
		info:    r.NewStyle().Foreground(salmonPink),
		warning: r.NewStyle().Foreground(amber),
		err:     r.NewStyle().Foreground(salmonPink).Bold(true),
		muted:   r.NewStyle().Foreground(mutedGray),
	}
}

// Reporter prints progress for one run.
type Reporter struct {
	level  Level
	writer io.Writer
	styles styles

	startTime time.Time
	stepCount int
}

// New returns a Reporter writing to w, or stdout when w is nil.
func New(level Level, w io.Writer) *Reporter {
	if w == nil {
		w = os.Stdout
	}
	return &Reporter{
		level:     level,
		writer:    w,
		styles:    newStyles(lipgloss.NewRenderer(w)),
		startTime: time.Now(),
	}
}

// Level returns the configured verbosity.
func (r *Reporter) Level() Level {
	return r.level
}

// Writer returns the underlying writer.
func (r *Reporter) Writer() io.Writer {
	return r.writer
}

func (r *Reporter) line(style lipgloss.Style, s string) {
	fmt.Fprintln(r.writer, style.Render(s))
}

// Header prints a prominent header message
func (r *Reporter) Header(message string) {
	if r.level >= LevelNormal {
		bar := strings.Repeat("=", 70)
		fmt.Fprintln(r.writer)
		r.line(r.styles.header, bar)
		r.line(r.styles.header, "  "+message)
		r.line(r.styles.header, bar)
	}
}

// Section prints a section divider
func (r *Reporter) Section(title string) {
	if r.level >= LevelNormal {
		fmt.Fprintln(r.writer)
		r.line(r.styles.section, "▶ "+title)
		r.line(r.styles.rule, strings.Repeat("─", 50))
	}
}

// Step prints a numbered step
func (r *Reporter) Step(message string) {
	if r.level >= LevelNormal {
		r.stepCount++
		r.line(r.styles.section, fmt.Sprintf("[%d] %s", r.stepCount, message))
	}
}

// Successf prints a success message with checkmark
func (r *Reporter) Successf(format string, args ...interface{}) {
	if r.level >= LevelNormal {
		r.line(r.styles.success, "✓ "+fmt.Sprintf(format, args...))
	}
}

// Infof prints an informational message
func (r *Reporter) Infof(format string, args ...interface{}) {
	if r.level >= LevelNormal {
		r.line(r.styles.info, fmt.Sprintf(format, args...))
	}
}

// Warningf prints a warning message
func (r *Reporter) Warningf(format string, args ...interface{}) {
	r.line(r.styles.warning, "⚠ Warning: "+fmt.Sprintf(format, args...))
}

// Errorf prints an error message
func (r *Reporter) Errorf(format string, args ...interface{}) {
	r.line(r.styles.err, "✗ Error: "+fmt.Sprintf(format, args...))
}

// Verbosef prints detailed information (only in verbose mode)
func (r *Reporter) Verbosef(format string, args ...interface{}) {
	if r.level >= LevelVerbose {
		r.line(r.styles.muted, "→ "+fmt.Sprintf(format, args...))
	}
}

// Debugf prints debug information (only in debug mode)
func (r *Reporter) Debugf(format string, args ...interface{}) {
	if r.level >= LevelDebug {
		r.line(r.styles.muted, "[DEBUG] "+fmt.Sprintf(format, args...))
	}
}

// Events lists discovered events with their 1-based index.
func (r *Reporter) Events(titles []string) {
	if r.level < LevelNormal {
		return
	}
	for i, title := range titles {
		fmt.Fprintf(r.writer, "  %s %s\n", r.styles.muted.Render(fmt.Sprintf("%3d.", i+1)), title)
	}
}

// Artifact logs a written file
func (r *Reporter) Artifact(path string) {
	if r.level >= LevelNormal {
		r.line(r.styles.success, "  📄 Wrote: "+path)
	}
}

// Elapsed returns the time since the reporter was created.
func (r *Reporter) Elapsed() time.Duration {
	return time.Since(r.startTime)
}
