// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the dilekce command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dilekce/dilekce-tui/internal/llm"
	"github.com/dilekce/dilekce-tui/internal/mode"
	"github.com/dilekce/dilekce-tui/internal/prompt"
)

// maxContextFileSize bounds an attached document.
const maxContextFileSize = 2 << 20

// askOptions holds the flags of the ask command.
type askOptions struct {
	mode        string
	contextFile string
	raw         bool
	save        bool
	json        bool
}

// askResult is the --json payload of the ask command.
type askResult struct {
	Mode             mode.Mode `json:"mode"`
	Model            string    `json:"model"`
	Answer           string    `json:"answer"`
	Thinking         string    `json:"thinking,omitempty"`
	PromptTokens     int       `json:"prompt_tokens"`
	CompletionTokens int       `json:"completion_tokens"`
	DurationMs       int64     `json:"duration_ms"`
	SessionID        string    `json:"session_id,omitempty"`
}

func (a *App) askCommand() *cobra.Command {
	var opts askOptions
	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a single question",
		Long: `Send one request in the chosen mode and print the answer.

The question is taken from the arguments, or from stdin when no
arguments are given. With --context-file the file's text is attached
after the question, which suits the ozetle mode.`,
		Example: `  dilekce ask "İtirazın iptali davası ne zaman açılır?"
  dilekce ask --mode ozetle --context-file karar.txt "Kararı özetle"
  echo "Kira artışına itiraz" | dilekce ask --mode yazdir`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runAsk(cmd.Context(), args, opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.mode, "mode", "", "writing mode: sor, ozetle or yazdir")
	f.StringVarP(&opts.contextFile, "context-file", "c", "", "attach the text of this file")
	f.BoolVar(&opts.raw, "raw", false, "stream plain text without markdown rendering")
	f.BoolVar(&opts.save, "save", false, "store the exchange as a session")
	f.BoolVar(&opts.json, "json", false, "print the result as JSON")
	return cmd
}

func (a *App) runAsk(ctx context.Context, args []string, opts askOptions) error {
	m, err := a.resolveMode(opts.mode)
	if err != nil {
		return err
	}
	question, err := a.readQuestion(args)
	if err != nil {
		return err
	}
	contextText, err := readContextFile(opts.contextFile)
	if err != nil {
		return err
	}

	client, err := a.NewClient(ctx, a.cfg, a.Logger())
	if err != nil {
		return err
	}
	req := prompt.Build(prompt.Input{Mode: m, UserInput: question, ContextText: contextText})
	a.Logger().Debug("ask",
		zap.String("mode", m.String()),
		zap.String("provider", client.Provider()),
		zap.String("model", client.Model()),
		zap.Int("context_bytes", len(contextText)))

	var resp *llm.Response
	if opts.raw && !opts.json {
		resp, err = client.Stream(ctx, req, func(delta string) {
			fmt.Fprint(a.Out, delta)
		})
		fmt.Fprintln(a.Out)
	} else {
		resp, err = client.Complete(ctx, req)
	}
	if err != nil {
		if opts.json {
			_ = NewJSONErrorResponse("ask", err).Write(a.Out)
		}
		return err
	}

	var sessionID string
	if opts.save {
		sessionID, err = a.saveExchange(ctx, m, client, req, resp)
		if err != nil {
			return err
		}
	}

	if opts.json {
		return NewJSONResponse("ask", askResult{
			Mode:             m,
			Model:            resp.Model,
			Answer:           resp.Content,
			Thinking:         resp.Thinking,
			PromptTokens:     resp.PromptTokens,
			CompletionTokens: resp.CompletionTokens,
			DurationMs:       resp.Duration.Milliseconds(),
			SessionID:        sessionID,
		}).Write(a.Out)
	}

	if !opts.raw {
		fmt.Fprint(a.Out, renderMarkdown(resp.Content))
	}
	if a.verbose {
		fmt.Fprintln(a.Err, DimStyle.Render(resp.Stats()))
	}
	if sessionID != "" {
		fmt.Fprintln(a.Err, DimStyle.Render("Oturum kaydedildi: "+sessionID))
	}
	return nil
}

// readQuestion joins args, or reads stdin when there are none.
func (a *App) readQuestion(args []string) (string, error) {
	question := strings.TrimSpace(strings.Join(args, " "))
	if question == "" && a.In != nil {
		if f, ok := a.In.(*os.File); !ok || !isTerminalFile(f) {
			data, err := io.ReadAll(io.LimitReader(a.In, maxContextFileSize))
			if err != nil {
				return "", fmt.Errorf("failed to read stdin: %w", err)
			}
			question = strings.TrimSpace(string(data))
		}
	}
	if question == "" {
		return "", errors.New("no question given")
	}
	return question, nil
}

// readContextFile returns the text of path, or "" when path is empty.
func readContextFile(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to read context file: %w", err)
	}
	if info.Size() > maxContextFileSize {
		return "", fmt.Errorf("context file %s is too large (%d bytes, max %d)", path, info.Size(), maxContextFileSize)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read context file: %w", err)
	}
	return string(data), nil
}

// saveExchange stores the question and answer as a new session.
func (a *App) saveExchange(ctx context.Context, m mode.Mode, client llm.Client, req prompt.Request, resp *llm.Response) (string, error) {
	store, err := a.openStore()
	if err != nil {
		return "", err
	}
	defer store.Close()

	s := newSession(m, client)
	if conv := req.Conversation(); len(conv) > 0 {
		s.Messages = append(s.Messages, conv[len(conv)-1])
	}
	s.Messages = append(s.Messages, resp.Message())
	s.Refresh()

	saved, err := store.Save(ctx, s)
	if err != nil {
		return "", fmt.Errorf("failed to save session: %w", err)
	}
	return saved.ID, nil
}
