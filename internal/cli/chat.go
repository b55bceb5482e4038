// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the dilekce command line.
//
// The chat command is a line-based REPL for terminals where the full-screen
// UI is unwanted. Tab completes the phrase under the cursor from the
// dictionary; slash commands control the session:
//
//	/help, /h           Show help
//	/mode [name]        Show the mode cycle, or switch to name
//	/clear, /c          Start a new session
//	/history            Show the conversation so far
//	/save               Write the session to the history store
//	/load <id>          Continue a stored session
//	/quit, /q, /exit    Exit
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dilekce/dilekce-tui/internal/autocomplete"
	"github.com/dilekce/dilekce-tui/internal/config"
	"github.com/dilekce/dilekce-tui/internal/llm"
	"github.com/dilekce/dilekce-tui/internal/mode"
	"github.com/dilekce/dilekce-tui/internal/model"
	"github.com/dilekce/dilekce-tui/internal/prompt"
	"github.com/dilekce/dilekce-tui/internal/session"
	"github.com/dilekce/dilekce-tui/internal/storage"
	"github.com/dilekce/dilekce-tui/internal/util"
)

// =============================================================================
// LINE EDITOR
// =============================================================================

// ChatCLI provides input history, line editing and phrase completion.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a line editor completing words from provider.
func NewChatCLI(provider *autocomplete.Provider) *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	line.SetTabCompletionStyle(liner.TabCircular)
	line.SetWordCompleter(wordCompleter(provider))

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}

	c := &ChatCLI{
		line:        line,
		historyFile: filepath.Join(configDir, "chat_history"),
	}
	c.LoadHistory()
	return c
}

// LoadHistory loads input history from file.
func (c *ChatCLI) LoadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		_, _ = c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line of input with the given prompt.
func (c *ChatCLI) ReadInput(p string) (string, error) {
	input, err := c.line.Prompt(p)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// SaveHistory persists input history with owner-only permissions.
func (c *ChatCLI) SaveHistory() {
	if err := config.EnsureConfigDir(); err != nil {
		return
	}
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	_, _ = c.line.WriteHistory(f)
}

// Close saves history and restores the terminal.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// wordCompleter adapts the dictionary to liner. The caret position liner
// passes is a rune index, as SplitAtCaret expects. An alias suggestion
// replaces the fragment; a prefix suggestion extends it.
func wordCompleter(provider *autocomplete.Provider) liner.WordCompleter {
	return func(line string, pos int) (string, []string, string) {
		before, after := autocomplete.SplitAtCaret(line, pos)
		fragment, s := provider.Complete(before, after)
		if s == nil {
			return before, nil, after
		}
		head := before[:len(before)-len(fragment)]
		if s.Alias {
			return head, []string{s.Remainder}, after
		}
		return head, []string{fragment + s.Remainder}, after
	}
}

// =============================================================================
// CHAT SESSION
// =============================================================================

// chatSession is the REPL state independent of the line editor.
type chatSession struct {
	client  llm.Client
	store   *session.Store
	history storage.HistoryStore
	saver   *session.Saver
	out     io.Writer
	logger  *zap.Logger
}

// prompt returns the input prompt for the current mode.
func (s *chatSession) prompt() string {
	return "[" + s.store.Mode().Label() + "] › "
}

// send streams an answer to text. The exchange is appended to the session
// only when the request succeeds.
func (s *chatSession) send(ctx context.Context, text string) error {
	state := s.store.State()
	req := prompt.Build(prompt.Input{
		Mode:      state.Mode,
		UserInput: text,
		History:   state.Messages,
	})

	resp, err := s.client.Stream(ctx, req, func(delta string) {
		fmt.Fprint(s.out, delta)
	})
	fmt.Fprintln(s.out)
	if err != nil {
		return err
	}

	s.store.Append(model.NewUserMessage(text))
	next := s.store.Append(resp.Message())
	if next.IsContextCritical() {
		fmt.Fprintln(s.out, WarningStyle.Render(fmt.Sprintf("Bağlam penceresi %%%.0f dolu; /clear ile yeni oturum açın.", next.ContextPercent)))
	}
	s.logger.Debug("chat turn",
		zap.String("mode", state.Mode.String()),
		zap.Int("messages", len(next.Messages)),
		zap.String("stats", resp.Stats()))
	return nil
}

// handle processes one input line. It returns false when the REPL should
// exit.
func (s *chatSession) handle(ctx context.Context, line string) (bool, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return true, nil
	}
	if strings.HasPrefix(line, "/") {
		return s.command(ctx, line)
	}
	return true, s.send(ctx, line)
}

// command runs a slash command.
func (s *chatSession) command(ctx context.Context, line string) (bool, error) {
	parts := strings.Fields(line)
	name := strings.ToLower(parts[0])
	args := parts[1:]

	switch name {
	case "/help", "/h", "/?", "/":
		printChatHelp(s.out)

	case "/mode", "/m":
		var next *model.SessionState
		if len(args) == 0 {
			next = s.store.CycleMode()
		} else {
			m, ok := mode.Parse(args[0])
			if !ok {
				return true, fmt.Errorf("unknown mode %q (sor, ozetle, yazdir)", args[0])
			}
			next = s.store.SetMode(m)
		}
		fmt.Fprintln(s.out, SuccessStyle.Render("Mod: ")+next.Mode.Label()+DimStyle.Render(" ("+next.Mode.String()+")"))

	case "/clear", "/c":
		s.store.Reset()
		fmt.Fprintln(s.out, DimStyle.Render("[Yeni oturum]"))

	case "/history":
		printConversation(s.out, s.store.State())

	case "/save":
		if s.history == nil {
			return true, errors.New("no history store")
		}
		saved, err := s.history.Save(ctx, s.store.State())
		if err != nil {
			return true, fmt.Errorf("failed to save session: %w", err)
		}
		fmt.Fprintln(s.out, SuccessStyle.Render("Kaydedildi: ")+saved.ID)

	case "/load":
		if len(args) != 1 {
			return true, errors.New("usage: /load <id>")
		}
		if s.history == nil {
			return true, errors.New("no history store")
		}
		loaded, err := s.history.Load(ctx, args[0])
		if err != nil {
			return true, err
		}
		next := s.store.Restore(loaded)
		fmt.Fprintf(s.out, "%s %s (%d mesaj)\n", SuccessStyle.Render("Yüklendi:"), next.DisplayTitle(), len(next.Messages))

	case "/quit", "/q", "/exit":
		return false, nil

	default:
		return true, fmt.Errorf("unknown command: %s (type /help for commands)", name)
	}
	return true, nil
}

// =============================================================================
// COMMAND
// =============================================================================

func (a *App) chatCommand() *cobra.Command {
	var modeFlag string
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Line-based chat with phrase completion",
		Long: `Start a line-based chat. Press Tab to complete the legal phrase
under the cursor. Type /help for commands.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runChat(cmd.Context(), modeFlag)
		},
	}
	cmd.Flags().StringVar(&modeFlag, "mode", "", "starting mode: sor, ozetle or yazdir")
	return cmd
}

func (a *App) runChat(ctx context.Context, modeFlag string) error {
	m, err := a.resolveMode(modeFlag)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	client, err := a.NewClient(ctx, a.cfg, a.Logger())
	if err != nil {
		return err
	}
	provider, err := a.loadDictionary(ctx, true)
	if err != nil {
		return err
	}
	history, err := a.openStore()
	if err != nil {
		return err
	}
	defer history.Close()

	s := &chatSession{
		client:  client,
		store:   session.NewStore(newSession(m, client)),
		history: history,
		out:     a.Out,
		logger:  a.Logger().Named("chat"),
	}
	if a.cfg.Session.Autosave {
		s.saver = session.NewSaver(history, a.saverConfig(func(err error) {
			fmt.Fprintln(a.Err, WarningStyle.Render("Kayıt hatası: ")+err.Error())
		}))
		defer s.saver.Close()
		unsubscribe := s.store.Subscribe(s.saver.Listener())
		defer unsubscribe()
	}

	editor := NewChatCLI(provider)
	defer editor.Close()

	fmt.Fprintln(a.Out, TitleStyle.Render("dilekce")+DimStyle.Render(" · "+client.Provider()+"/"+client.Model()))
	fmt.Fprintln(a.Out, DimStyle.Render("Tab: ifade tamamla · /help: komutlar · /quit: çıkış"))

	for {
		line, err := editor.ReadInput(s.prompt())
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Fprintln(a.Out)
				return nil
			}
			return err
		}
		more, err := s.handle(ctx, line)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			fmt.Fprintln(a.Err, ErrorStyle.Render("Hata: ")+err.Error())
		}
		if !more {
			return nil
		}
	}
}

// =============================================================================
// DISPLAY
// =============================================================================

func printChatHelp(w io.Writer) {
	commands := []struct{ cmd, desc string }{
		{"/help, /h", "Bu yardımı göster"},
		{"/mode [ad]", "Modu değiştir (sor, ozetle, yazdir); adsız kullanımda sıradakine geç"},
		{"/clear, /c", "Yeni oturum başlat"},
		{"/history", "Konuşmayı göster"},
		{"/save", "Oturumu kaydet"},
		{"/load <id>", "Kayıtlı oturumu yükle"},
		{"/quit, /q", "Çık"},
	}
	fmt.Fprintln(w, TitleStyle.Render("Komutlar"))
	for _, c := range commands {
		fmt.Fprintf(w, "  %s %s\n", PromptStyle.Render(util.PadRight(c.cmd, 14)), c.desc)
	}
	fmt.Fprintln(w, DimStyle.Render("  Tab tuşu imlecin önündeki hukuki ifadeyi tamamlar."))
}

func printConversation(w io.Writer, s *model.SessionState) {
	if s.IsEmpty() {
		fmt.Fprintln(w, DimStyle.Render("[Henüz mesaj yok]"))
		return
	}
	for _, msg := range s.Messages {
		fmt.Fprintf(w, "%s %s\n", PromptStyle.Render(msg.Role.DisplayName()+":"), msg.Preview(200))
	}
	fmt.Fprintln(w, DimStyle.Render(fmt.Sprintf("%d mesaj · bağlam %%%.0f", len(s.Messages), s.ContextPercent)))
}
