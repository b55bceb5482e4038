// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the dilekce command line.
package cli

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dilekce/dilekce-tui/internal/mode"
	"github.com/dilekce/dilekce-tui/internal/model"
	"github.com/dilekce/dilekce-tui/internal/ollama"
	"github.com/dilekce/dilekce-tui/internal/util"
)

// modeInfo is the listing form of a mode.
type modeInfo struct {
	Name         string       `json:"name"`
	Label        string       `json:"label"`
	Options      mode.Options `json:"options"`
	SystemPrompt string       `json:"system_prompt,omitempty"`
	Default      bool         `json:"default,omitempty"`
}

func (a *App) modesCommand() *cobra.Command {
	var showPrompt, jsonFlag bool
	cmd := &cobra.Command{
		Use:   "modes",
		Short: "List writing modes and their parameters",
		RunE: func(cmd *cobra.Command, _ []string) error {
			modes := listModes(a.cfg.DefaultMode(), showPrompt || jsonFlag)
			if jsonFlag {
				return NewJSONResponse("modes", modes).Write(a.Out)
			}
			printModes(a, modes)
			return nil
		},
	}
	cmd.Flags().BoolVar(&showPrompt, "show-prompt", false, "include each mode's system instruction")
	cmd.Flags().BoolVar(&jsonFlag, "json", false, "print the result as JSON")
	return cmd
}

func listModes(def mode.Mode, withPrompt bool) []modeInfo {
	var out []modeInfo
	for _, m := range mode.All() {
		info := modeInfo{
			Name:    m.String(),
			Label:   m.Label(),
			Options: mode.CompletionOptions(m),
			Default: m == def,
		}
		if withPrompt {
			info.SystemPrompt = mode.SystemMessage(m)
		}
		out = append(out, info)
	}
	return out
}

func printModes(a *App, modes []modeInfo) {
	fmt.Fprintln(a.Out, TitleStyle.Render("Modlar"))
	for _, m := range modes {
		marker := "  "
		if m.Default {
			marker = SuccessStyle.Render("* ")
		}
		reasoning := ""
		if m.Options.Reasoning {
			reasoning = DimStyle.Render(" · akıl yürütme")
		}
		fmt.Fprintf(a.Out, "%s%s %s sıcaklık %.1f · en fazla %d token%s\n",
			marker,
			PromptStyle.Render(util.PadRight(m.Name, 8)),
			util.PadRight(m.Label, 8),
			m.Options.Temperature,
			m.Options.MaxOutputTokens,
			reasoning)
		if m.SystemPrompt != "" {
			fmt.Fprintln(a.Out, DimStyle.Render("    "+m.SystemPrompt))
		}
	}
	fmt.Fprintln(a.Out, DimStyle.Render("Sıra: sor → ozetle → yazdir → sor"))
}

// =============================================================================
// MODELS
// =============================================================================

// modelsTimeout bounds the Ollama model listing.
const modelsTimeout = 3 * time.Second

// modelListing is the --json payload of the models command.
type modelListing struct {
	Known     []model.ModelInfo  `json:"known"`
	Installed []ollama.ModelInfo `json:"installed,omitempty"`
	Current   string             `json:"current"`
}

func (a *App) modelsCommand() *cobra.Command {
	var jsonFlag bool
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List known models and models installed in Ollama",
		RunE: func(cmd *cobra.Command, _ []string) error {
			listing := modelListing{Current: a.cfg.LLM.Model}
			for _, provider := range []string{"ollama", "gemini"} {
				listing.Known = append(listing.Known, model.GetModelsByProvider(provider)...)
			}
			installed, err := a.installedModels(cmd.Context())
			if err != nil {
				a.Logger().Debug("ollama model listing failed", zap.Error(err))
			}
			listing.Installed = installed

			if jsonFlag {
				return NewJSONResponse("models", listing).Write(a.Out)
			}
			printModels(a, listing, err)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonFlag, "json", false, "print the result as JSON")
	return cmd
}

// installedModels asks the configured Ollama server for its models.
func (a *App) installedModels(ctx context.Context) ([]ollama.ModelInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, modelsTimeout)
	defer cancel()

	client := ollama.NewClient(ollama.ClientConfig{BaseURL: a.cfg.LLM.OllamaURL, Logger: a.Logger()})
	if err := client.CheckRunning(ctx); err != nil {
		return nil, err
	}
	models, err := client.ListModels(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(models, func(i, j int) bool { return models[i].Name < models[j].Name })
	return models, nil
}

func printModels(a *App, listing modelListing, installErr error) {
	fmt.Fprintln(a.Out, TitleStyle.Render("Bilinen modeller"))
	for _, m := range listing.Known {
		marker := "  "
		if m.ID == listing.Current {
			marker = SuccessStyle.Render("* ")
		}
		fmt.Fprintf(a.Out, "%s%s %s %s\n", marker,
			util.PadRight(m.ID, 20),
			util.PadRight(m.Provider, 8),
			DimStyle.Render(m.ContextString()+" bağlam"))
	}

	fmt.Fprintln(a.Out)
	fmt.Fprintln(a.Out, TitleStyle.Render("Ollama"))
	if installErr != nil {
		fmt.Fprintln(a.Out, WarningStyle.Render("  erişilemedi: ")+installErr.Error())
		return
	}
	if len(listing.Installed) == 0 {
		fmt.Fprintln(a.Out, DimStyle.Render("  yüklü model yok (ollama pull qwen3)"))
		return
	}
	for _, m := range listing.Installed {
		fmt.Fprintf(a.Out, "  %s %s %s\n",
			util.PadRight(m.Name, 28),
			util.PadRight(m.Details.ParameterSize, 6),
			DimStyle.Render(m.FormatSize()))
	}
}
