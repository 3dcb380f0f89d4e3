// Package export writes captured attendees to disk.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/entrhq/guestlist/pkg/capture"
)

// File name prefixes.
const (
	AttendeesPrefix = "attendees"
	RawPrefix       = "guestlist_raw"
)

// Options selects which artifacts are written and where.
type Options struct {
	OutputDir string
	XLSX      bool
	JSON      bool
	Raw       bool
}

// Exporter writes export artifacts into one directory.
type Exporter struct {
	opts Options
}

// New returns an Exporter. An empty OutputDir means the working directory.
func New(opts Options) *Exporter {
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}
	return &Exporter{opts: opts}
}

// OutputDir returns the directory artifacts are written to.
func (e *Exporter) OutputDir() string {
	return e.opts.OutputDir
}

// WriteAll writes every enabled artifact for a capture and returns the
// paths written.
func (e *Exporter) WriteAll(res capture.Result) ([]string, error) {
	var paths []string

	if e.opts.XLSX {
		path, err := e.WriteXLSX(res.Attendees, res.EventName)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}

	if e.opts.JSON {
		path, err := e.WriteJSON(res.Attendees, res.EventName)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}

	if e.opts.Raw && len(res.Raw) > 0 {
		path, err := e.WriteRaw(res.Raw, res.EventName)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}

	return paths, nil
}

// WriteJSON writes the attendees as an indented JSON array.
func (e *Exporter) WriteJSON(attendees []capture.Attendee, eventName string) (string, error) {
	if attendees == nil {
		attendees = []capture.Attendee{}
	}
	data, err := json.MarshalIndent(attendees, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal attendees: %w", err)
	}
	return e.write(FileName(AttendeesPrefix, eventName, "json"), data)
}

// WriteRaw writes the listing-API payload as received, indented when it
// is valid JSON.
func (e *Exporter) WriteRaw(raw []byte, eventName string) (string, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err == nil {
		raw = buf.Bytes()
	}
	return e.write(FileName(RawPrefix, eventName, "json"), raw)
}

func (e *Exporter) write(name string, data []byte) (string, error) {
	if err := os.MkdirAll(e.opts.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(e.opts.OutputDir, name)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}
	return path, nil
}

// FileName builds "<prefix>_<event>.<ext>" where every character of the
// event name outside [A-Za-z0-9] becomes '_' and the result is lower-cased.
func FileName(prefix, eventName, ext string) string {
	return prefix + "_" + sanitize(eventName) + "." + ext
}

func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '_'
		}
	}, name)
}
