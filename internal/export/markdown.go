// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dilekce/dilekce-tui/internal/model"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter exports sessions to Markdown.
type MarkdownExporter struct {
	options *Options
}

// NewMarkdownExporter creates a Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	return &MarkdownExporter{options: opts.normalize()}
}

// frontMatter is the YAML header of a Markdown export.
type frontMatter struct {
	Title     string `yaml:"title"`
	ID        string `yaml:"id"`
	Mode      string `yaml:"mode"`
	Model     string `yaml:"model,omitempty"`
	Date      string `yaml:"date"`
	Updated   string `yaml:"updated"`
	Messages  int    `yaml:"messages"`
	Tokens    int    `yaml:"tokens,omitempty"`
	Exported  string `yaml:"exported"`
	Generator string `yaml:"generator"`
}

// Export implements Exporter.
func (e *MarkdownExporter) Export(s *model.SessionState) ([]byte, error) {
	if err := validate(s); err != nil {
		return nil, err
	}

	var sb strings.Builder
	title := s.DisplayTitle()

	if e.options.IncludeMetadata {
		header, err := yaml.Marshal(frontMatter{
			Title:     title,
			ID:        s.ID,
			Mode:      s.Mode.String(),
			Model:     s.Model,
			Date:      s.CreatedAt.Format(time.RFC3339),
			Updated:   s.UpdatedAt.Format(time.RFC3339),
			Messages:  len(s.Messages),
			Tokens:    s.TokensUsed,
			Exported:  e.options.Now().Format(time.RFC3339),
			Generator: "dilekce",
		})
		if err != nil {
			return nil, fmt.Errorf("failed to encode front matter: %w", err)
		}
		sb.WriteString("---\n")
		sb.Write(header)
		sb.WriteString("---\n\n")
	}

	sb.WriteString("# " + escapeMarkdown(title) + "\n\n")

	if e.options.IncludeMetadata {
		sb.WriteString("- **Oturum**: `" + s.ID + "`\n")
		sb.WriteString("- **Mod**: " + s.Mode.Label() + " (" + s.Mode.String() + ")\n")
		if s.Model != "" {
			sb.WriteString("- **Model**: " + s.Model + "\n")
		}
		sb.WriteString("- **Oluşturulma**: " + formatTimestamp(s.CreatedAt) + "\n")
		sb.WriteString("- **Güncelleme**: " + formatTimestamp(s.UpdatedAt) + "\n")
		sb.WriteString(fmt.Sprintf("- **Mesaj**: %d\n", len(s.Messages)))
		sb.WriteString("\n---\n\n")
	}

	for i, msg := range s.Messages {
		sb.WriteString("### " + msg.Role.DisplayName() + "\n\n")
		sb.WriteString(strings.TrimSpace(msg.Content))
		sb.WriteString("\n\n")
		if i < len(s.Messages)-1 {
			sb.WriteString("---\n\n")
		}
	}

	sb.WriteString("\n---\n\n")
	sb.WriteString("*dilekce ile dışa aktarıldı: " + formatTimestamp(e.options.Now()) + "*\n")
	return []byte(sb.String()), nil
}

// FileExtension implements Exporter.
func (e *MarkdownExporter) FileExtension() string { return ".md" }

// MimeType implements Exporter.
func (e *MarkdownExporter) MimeType() string { return "text/markdown" }

// escapeMarkdown escapes characters that would break a heading.
func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

var markdownEscaper = strings.NewReplacer(
	"#", `\#`,
	"*", `\*`,
	"_", `\_`,
	"[", `\[`,
	"]", `\]`,
)
