// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the dilekce command line.
package cli

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/dilekce/dilekce-tui/internal/autocomplete"
	"github.com/dilekce/dilekce-tui/internal/config"
	"github.com/dilekce/dilekce-tui/internal/gemini"
	"github.com/dilekce/dilekce-tui/internal/llm"
	"github.com/dilekce/dilekce-tui/internal/mode"
	"github.com/dilekce/dilekce-tui/internal/model"
	"github.com/dilekce/dilekce-tui/internal/ollama"
	"github.com/dilekce/dilekce-tui/internal/session"
	"github.com/dilekce/dilekce-tui/internal/storage"
	"github.com/dilekce/dilekce-tui/internal/ui/chat"
)

// defaultGeminiModel replaces an Ollama model name when the provider is
// switched to Gemini without choosing a model.
const defaultGeminiModel = "gemini-2.5-flash"

// =============================================================================
// CLIENT FACTORY
// =============================================================================

// NewClient builds the llm.Client selected by cfg.LLM.Provider.
func NewClient(ctx context.Context, cfg *config.Config, logger *zap.Logger) (llm.Client, error) {
	switch strings.ToLower(cfg.LLM.Provider) {
	case "gemini":
		name := cfg.LLM.Model
		if info, ok := model.GetModelInfo(name); ok && info.Provider != "gemini" {
			logger.Info("model belongs to another provider, using default",
				zap.String("model", name), zap.String("default", defaultGeminiModel))
			name = defaultGeminiModel
		}
		return gemini.NewClient(ctx, gemini.Config{
			APIKey:  cfg.LLM.GeminiKey,
			Model:   name,
			Timeout: cfg.LLMTimeout(),
			Logger:  logger.Named("gemini"),
		})
	case "", "ollama":
		return ollama.NewClient(ollama.ClientConfig{
			BaseURL: cfg.LLM.OllamaURL,
			Model:   cfg.LLM.Model,
			Timeout: cfg.LLMTimeout(),
			Logger:  logger.Named("ollama"),
		}), nil
	}
	return nil, fmt.Errorf("unknown provider %q", cfg.LLM.Provider)
}

// =============================================================================
// SHARED RESOURCES
// =============================================================================

// openStore opens the configured history store.
func (a *App) openStore() (storage.HistoryStore, error) {
	dir, err := a.cfg.DataDir()
	if err != nil {
		return nil, err
	}
	store, err := storage.Open(a.cfg.Storage.Backend, dir, a.cfg.Storage.MaxSessions)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}
	return store, nil
}

// loadDictionary returns a provider over the configured dictionary, or the
// built-in phrases when none is set. With watch, edits to the file are
// picked up until ctx ends.
func (a *App) loadDictionary(ctx context.Context, watch bool) (*autocomplete.Provider, error) {
	path := a.cfg.DictionaryPath()
	if path == "" {
		return autocomplete.NewProvider(autocomplete.Builtin(), a.Logger()), nil
	}

	dict, err := autocomplete.LoadFile(path)
	if err != nil {
		return nil, err
	}
	provider := autocomplete.NewProvider(dict, a.Logger())
	if watch && a.cfg.Dictionary.Watch {
		if err := provider.Watch(ctx, path); err != nil {
			a.Logger().Warn("dictionary watch disabled", zap.String("path", path), zap.Error(err))
		}
	}
	return provider, nil
}

// newSession returns an empty session for client in mode m.
func newSession(m mode.Mode, client llm.Client) *model.SessionState {
	s := model.NewSessionState()
	s.Mode = m
	if client != nil {
		s.Model = client.Model()
		s.ContextWindow = model.ContextWindowFor(client.Model())
	}
	s.Refresh()
	return s
}

// saverConfig maps the session section to a SaverConfig.
func (a *App) saverConfig(onError func(error)) session.SaverConfig {
	cfg := session.DefaultSaverConfig()
	cfg.MinInterval = a.cfg.SaveInterval()
	cfg.Timeout = a.cfg.SaveTimeout()
	cfg.OnError = onError
	cfg.Logger = a.Logger().Named("saver")
	return cfg
}

// resolveMode parses a --mode flag, falling back to the configured default.
func (a *App) resolveMode(flag string) (mode.Mode, error) {
	if strings.TrimSpace(flag) == "" {
		return a.cfg.DefaultMode(), nil
	}
	m, ok := mode.Parse(flag)
	if !ok {
		return mode.Default, fmt.Errorf("unknown mode %q (sor, ozetle, yazdir)", flag)
	}
	return m, nil
}

// =============================================================================
// INTERACTIVE UI
// =============================================================================

// runTUI starts the terminal UI with the shared resources.
func (a *App) runTUI(ctx context.Context) error {
	if !IsTTY() || !IsStdoutTTY() {
		return fmt.Errorf("the interactive UI needs a terminal; use 'dilekce ask' or 'dilekce chat'")
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
	store, err := a.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	return a.RunTUI(ctx, chat.Options{
		Client:     client,
		Dictionary: provider,
		History:    store,
		Initial:    newSession(a.cfg.DefaultMode(), client),
		Autosave:   a.cfg.Session.Autosave,
		Saver:      a.saverConfig(nil),
		GhostText:  a.cfg.UI.GhostText,
		ShowTokens: a.cfg.UI.ShowTokens,
		Theme:      a.cfg.UI.Theme,
		Logger:     a.Logger().Named("tui"),
	})
}
