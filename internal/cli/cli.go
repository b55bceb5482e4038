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
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dilekce/dilekce-tui/internal/config"
	"github.com/dilekce/dilekce-tui/internal/llm"
	"github.com/dilekce/dilekce-tui/internal/logging"
	"github.com/dilekce/dilekce-tui/internal/ui/chat"
)

// Version information, set at build time via -ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// versionString formats the version for --version.
func versionString() string {
	return fmt.Sprintf("%s (commit %s, built %s)", Version, GitCommit, BuildDate)
}

// =============================================================================
// APP
// =============================================================================

// ClientFactory builds the LLM client for a configuration.
type ClientFactory func(ctx context.Context, cfg *config.Config, logger *zap.Logger) (llm.Client, error)

// TUIRunner starts the interactive UI and blocks until it exits.
type TUIRunner func(ctx context.Context, opts chat.Options) error

// App holds the state shared by all commands.
type App struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer

	// NewClient builds the LLM client. Defaults to NewClient.
	NewClient ClientFactory

	// RunTUI starts the interactive UI. Defaults to chat.Run.
	RunTUI TUIRunner

	cfg    *config.Config
	logger *zap.Logger

	// Global flags.
	configPath string
	provider   string
	model      string
	verbose    bool
}

// NewApp creates an App writing to the given streams.
func NewApp(in io.Reader, out, errOut io.Writer) *App {
	return &App{
		In:        in,
		Out:       out,
		Err:       errOut,
		NewClient: NewClient,
		RunTUI:    chat.Run,
	}
}

// WithConfig presets the configuration and logger, skipping file loading.
// Flag overrides still apply.
func (a *App) WithConfig(cfg *config.Config, logger *zap.Logger) *App {
	a.cfg = cfg
	a.logger = logger
	return a
}

// Config returns the loaded configuration.
func (a *App) Config() *config.Config {
	return a.cfg
}

// Logger returns the application logger.
func (a *App) Logger() *zap.Logger {
	return logging.OrNop(a.logger)
}

// =============================================================================
// ROOT COMMAND
// =============================================================================

// RootCommand builds the command tree.
func (a *App) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "dilekce",
		Short: "Legal drafting assistant with phrase autocomplete",
		Long: `dilekce is a terminal assistant for Turkish legal writing.

It answers questions (sor), summarizes documents (ozetle) and drafts
petitions (yazdir) using a local Ollama model or Google Gemini, and
completes standard legal phrases as you type.`,
		Version:       versionString(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.Logger().Sync()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runTUI(cmd.Context())
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "configuration file (default ~/.dilekce/config.toml)")
	pf.StringVarP(&a.provider, "provider", "p", "", "LLM provider: ollama or gemini")
	pf.StringVarP(&a.model, "model", "m", "", "model name")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "debug logging and response statistics")

	root.AddCommand(
		a.askCommand(),
		a.chatCommand(),
		a.completeCommand(),
		a.modesCommand(),
		a.modelsCommand(),
		a.sessionCommand(),
		a.configCommand(),
		a.dictCommand(),
	)

	root.SetIn(a.In)
	root.SetOut(a.Out)
	root.SetErr(a.Err)
	return root
}

// setup loads configuration and the logger once per invocation.
func (a *App) setup() error {
	if a.cfg == nil {
		cfg, err := a.loadConfig()
		if err != nil {
			if cfg == nil {
				return err
			}
			fmt.Fprintln(a.Err, WarningStyle.Render("Uyarı: ")+err.Error())
		}
		a.cfg = cfg
	}

	if a.provider != "" {
		a.cfg.LLM.Provider = a.provider
	}
	if a.model != "" {
		a.cfg.LLM.Model = a.model
	}
	if a.provider != "" || a.model != "" {
		if err := a.cfg.Validate(); err != nil {
			return err
		}
	}
	config.SetGlobal(a.cfg)

	if a.logger == nil {
		opts, err := logging.OptionsFromConfig(a.cfg)
		if err != nil {
			return err
		}
		if a.verbose {
			opts.Level = "debug"
		}
		logger, err := logging.New(opts)
		if err != nil {
			fmt.Fprintln(a.Err, WarningStyle.Render("Uyarı: ")+"günlük dosyası açılamadı: "+err.Error())
			logger = logging.Nop()
		}
		a.logger = logger
	}
	return nil
}

// loadConfig reads the --config file or the default locations. A non-nil
// config with an error means defaults are in use.
func (a *App) loadConfig() (*config.Config, error) {
	if a.configPath != "" {
		if _, err := os.Stat(a.configPath); errors.Is(err, os.ErrNotExist) {
			return config.Default(), fmt.Errorf("%s does not exist, using defaults", a.configPath)
		}
		cfg, err := config.LoadFromPath(a.configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config %s: %w", a.configPath, err)
		}
		return cfg, nil
	}
	return config.Load()
}

// =============================================================================
// ENTRY POINT
// =============================================================================

// Execute runs the command line and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := NewApp(os.Stdin, os.Stdout, os.Stderr)
	if err := app.RootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Hata: ")+err.Error())
		return 1
	}
	return 0
}
