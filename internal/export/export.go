// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export renders drafting sessions as documents.
package export

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/dilekce/dilekce-tui/internal/model"
)

// ErrEmptySession is returned when a document export has nothing to show.
var ErrEmptySession = errors.New("session has no messages")

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter converts a session to one document format.
type Exporter interface {
	// Export renders the session.
	Export(s *model.SessionState) ([]byte, error)

	// FileExtension returns the extension including the dot, e.g. ".md".
	FileExtension() string

	// MimeType returns the MIME type of the rendered document.
	MimeType() string
}

// =============================================================================
// EXPORT OPTIONS
// =============================================================================

// Options configures document exports.
type Options struct {
	// IncludeMetadata adds front matter and the session information block.
	IncludeMetadata bool

	// Theme for HTML export, "dark" or "light".
	Theme string

	// Now stamps the export time. Defaults to time.Now.
	Now func() time.Time
}

// DefaultOptions returns default export options.
func DefaultOptions() *Options {
	return &Options{
		IncludeMetadata: true,
		Theme:           "dark",
		Now:             time.Now,
	}
}

func (o *Options) normalize() *Options {
	if o == nil {
		return DefaultOptions()
	}
	out := *o
	if out.Now == nil {
		out.Now = time.Now
	}
	if out.Theme != "light" {
		out.Theme = "dark"
	}
	return &out
}

// =============================================================================
// FORMAT SELECTION
// =============================================================================

// Formats lists the accepted format names.
func Formats() []string {
	return []string{"markdown", "json", "html"}
}

// New returns the exporter for a format name. "md" and "htm" are accepted
// as aliases.
func New(format string, opts *Options) (Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "markdown", "md":
		return NewMarkdownExporter(opts), nil
	case "json":
		return NewJSONExporter(), nil
	case "html", "htm":
		return NewHTMLExporter(opts), nil
	}
	return nil, fmt.Errorf("unknown export format %q (%s)", format, strings.Join(Formats(), ", "))
}

// validate rejects sessions a document export cannot render.
func validate(s *model.SessionState) error {
	if s == nil {
		return errors.New("session is nil")
	}
	if len(s.Messages) == 0 {
		return ErrEmptySession
	}
	return nil
}

// =============================================================================
// FILE HELPERS
// =============================================================================

// Filename proposes a file name for the export of s, e.g.
// "dilekce_Kira_tespit_davasi_20250102_150405.md".
func Filename(s *model.SessionState, exp Exporter, now time.Time) string {
	return fmt.Sprintf("dilekce_%s_%s%s",
		sanitizeFilename(s.DisplayTitle()),
		now.Format("20060102_150405"),
		exp.FileExtension())
}

// sanitizeFilename replaces characters that are invalid in file names on
// common platforms and limits the length to 50 runes.
func sanitizeFilename(s string) string {
	const maxLen = 50
	runes := []rune(strings.TrimSpace(s))
	if len(runes) > maxLen {
		runes = runes[:maxLen]
	}

	out := make([]rune, 0, len(runes))
	for _, r := range runes {
		switch {
		case strings.ContainsRune(`/\:*?"<>|`, r):
			out = append(out, '-')
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			out = append(out, '_')
		case r < 32 || r == 127:
			out = append(out, '-')
		default:
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		return "oturum"
	}
	return string(out)
}

// Open opens path in the default application of the platform.
func Open(path string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", `""`, path)
	case "darwin":
		cmd = exec.Command("open", path)
	case "linux", "freebsd", "openbsd":
		cmd = exec.Command("xdg-open", path)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
	return cmd.Start()
}

// formatTimestamp formats a timestamp for display.
func formatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04")
}
