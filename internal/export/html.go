// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/dilekce/dilekce-tui/internal/model"
)

// =============================================================================
// HTML EXPORTER
// =============================================================================

// HTMLExporter exports sessions to a standalone HTML page with embedded CSS.
type HTMLExporter struct {
	options *Options
}

// NewHTMLExporter creates an HTML exporter.
func NewHTMLExporter(opts *Options) *HTMLExporter {
	return &HTMLExporter{options: opts.normalize()}
}

// Export implements Exporter.
func (e *HTMLExporter) Export(s *model.SessionState) ([]byte, error) {
	if err := validate(s); err != nil {
		return nil, err
	}
	title := html.EscapeString(s.DisplayTitle())

	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n")
	sb.WriteString("<html lang=\"tr\">\n<head>\n")
	sb.WriteString("    <meta charset=\"UTF-8\">\n")
	sb.WriteString("    <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	sb.WriteString("    <title>" + title + "</title>\n")
	sb.WriteString("    <meta name=\"generator\" content=\"dilekce\">\n")
	sb.WriteString("    <meta name=\"date\" content=\"" + s.CreatedAt.Format(time.RFC3339) + "\">\n")
	sb.WriteString(css)
	sb.WriteString("</head>\n")
	sb.WriteString("<body class=\"" + e.options.Theme + "-theme\">\n")
	sb.WriteString("    <div class=\"container\">\n")

	if e.options.IncludeMetadata {
		sb.WriteString(e.renderHeader(s, title))
	}

	sb.WriteString("        <main class=\"conversation\">\n")
	for _, msg := range s.Messages {
		sb.WriteString(renderMessage(msg))
	}
	sb.WriteString("        </main>\n")

	sb.WriteString("        <footer class=\"footer\">\n")
	sb.WriteString("            <p><strong>dilekce</strong> ile dışa aktarıldı: " + formatTimestamp(e.options.Now()) + "</p>\n")
	sb.WriteString("        </footer>\n")
	sb.WriteString("    </div>\n</body>\n</html>\n")
	return []byte(sb.String()), nil
}

// FileExtension implements Exporter.
func (e *HTMLExporter) FileExtension() string { return ".html" }

// MimeType implements Exporter.
func (e *HTMLExporter) MimeType() string { return "text/html" }

// =============================================================================
// RENDERING
// =============================================================================

func (e *HTMLExporter) renderHeader(s *model.SessionState, title string) string {
	var sb strings.Builder
	sb.WriteString("        <header class=\"header\">\n")
	sb.WriteString("            <h1>" + title + "</h1>\n")
	sb.WriteString("            <div class=\"metadata\">\n")
	meta := func(label, value string) {
		sb.WriteString(fmt.Sprintf("                <span class=\"meta-item\"><strong>%s:</strong> %s</span>\n",
			label, html.EscapeString(value)))
	}
	meta("Mod", s.Mode.Label())
	if s.Model != "" {
		meta("Model", s.Model)
	}
	meta("Oluşturulma", formatTimestamp(s.CreatedAt))
	meta("Mesaj", fmt.Sprint(len(s.Messages)))
	sb.WriteString("            </div>\n")
	sb.WriteString("        </header>\n")
	return sb.String()
}

func renderMessage(msg model.ChatMessage) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("            <div class=\"message %s-message\">\n", html.EscapeString(msg.Role.String())))
	sb.WriteString("                <div class=\"role-label\">" + html.EscapeString(msg.Role.DisplayName()) + "</div>\n")
	sb.WriteString("                <div class=\"message-content\">\n")
	sb.WriteString(formatContent(msg.Content))
	sb.WriteString("\n                </div>\n")
	sb.WriteString("            </div>\n")
	return sb.String()
}

var (
	codeBlockRe  = regexp.MustCompile("(?s)```([a-zA-Z0-9_+-]*)\n(.*?)```")
	inlineCodeRe = regexp.MustCompile("`([^`\n]+)`")
	boldRe       = regexp.MustCompile(`\*\*([^*\n]+)\*\*`)
)

// formatContent converts the small Markdown subset answers use into HTML:
// fenced code, inline code, bold and paragraphs separated by blank lines.
// Text is escaped before any markup is added.
func formatContent(content string) string {
	content = strings.TrimSpace(strings.ReplaceAll(content, "\r\n", "\n"))

	var blocks []string
	last := 0
	for _, loc := range codeBlockRe.FindAllStringSubmatchIndex(content, -1) {
		blocks = append(blocks, formatParagraphs(content[last:loc[0]])...)
		lang := html.EscapeString(content[loc[2]:loc[3]])
		code := html.EscapeString(strings.TrimRight(content[loc[4]:loc[5]], "\n"))
		blocks = append(blocks, fmt.Sprintf("<pre><code class=\"language-%s\">%s</code></pre>", lang, code))
		last = loc[1]
	}
	blocks = append(blocks, formatParagraphs(content[last:])...)
	return strings.Join(blocks, "\n")
}

func formatParagraphs(text string) []string {
	var out []string
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		para = html.EscapeString(para)
		para = inlineCodeRe.ReplaceAllString(para, "<code>$1</code>")
		para = boldRe.ReplaceAllString(para, "<strong>$1</strong>")
		para = strings.ReplaceAll(para, "\n", "<br>\n")
		out = append(out, "<p>"+para+"</p>")
	}
	return out
}

// =============================================================================
// EMBEDDED CSS
// =============================================================================

const css = `    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }
        :root {
            --font-serif: "Times New Roman", Georgia, serif;
            --font-sans: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Arial, sans-serif;
            --font-mono: "SF Mono", Menlo, Consolas, monospace;
        }
        .dark-theme {
            --bg-primary: #1a1b26;
            --bg-secondary: #24283b;
            --bg-tertiary: #414868;
            --text-primary: #c0caf5;
            --text-secondary: #a9b1d6;
            --border-color: #414868;
            --user-accent: #7aa2f7;
            --assistant-accent: #bb9af7;
            --code-bg: #1a1b26;
        }
        .light-theme {
            --bg-primary: #ffffff;
            --bg-secondary: #f7f8fa;
            --bg-tertiary: #e1e4e8;
            --text-primary: #24292e;
            --text-secondary: #586069;
            --border-color: #e1e4e8;
            --user-accent: #0366d6;
            --assistant-accent: #6f42c1;
            --code-bg: #f6f8fa;
        }
        body {
            font-family: var(--font-sans);
            line-height: 1.6;
            color: var(--text-primary);
            background: var(--bg-primary);
            padding: 20px;
        }
        .container {
            max-width: 900px;
            margin: 0 auto;
            background: var(--bg-secondary);
            border-radius: 12px;
            overflow: hidden;
        }
        .header {
            padding: 32px;
            background: var(--bg-tertiary);
            border-bottom: 2px solid var(--border-color);
        }
        .header h1 { font-size: 26px; margin-bottom: 12px; }
        .metadata { display: flex; flex-wrap: wrap; gap: 16px; font-size: 14px; color: var(--text-secondary); }
        .conversation { padding: 24px 32px; }
        .message {
            margin-bottom: 24px;
            padding: 20px;
            border-radius: 8px;
            border-left: 4px solid transparent;
        }
        .user-message { border-left-color: var(--user-accent); }
        .assistant-message { border-left-color: var(--assistant-accent); }
        .assistant-message .message-content { font-family: var(--font-serif); font-size: 17px; }
        .role-label { font-weight: 600; font-size: 14px; margin-bottom: 8px; }
        .message-content p { margin-bottom: 12px; }
        code { font-family: var(--font-mono); background: var(--code-bg); padding: 2px 4px; border-radius: 4px; }
        pre { background: var(--code-bg); padding: 12px; border-radius: 6px; overflow-x: auto; margin-bottom: 12px; }
        pre code { padding: 0; }
        .footer { padding: 16px 32px; font-size: 13px; color: var(--text-secondary); border-top: 1px solid var(--border-color); }
        @media print {
            body { background: #fff; color: #000; padding: 0; }
            .container { box-shadow: none; }
        }
    </style>
`
