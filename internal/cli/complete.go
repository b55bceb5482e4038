// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the dilekce command line.
package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dilekce/dilekce-tui/internal/autocomplete"
)

// completion is the result of the complete command.
type completion struct {
	Fragment   string                   `json:"fragment"`
	Suggestion *autocomplete.Suggestion `json:"suggestion"`
	Result     string                   `json:"result"`
	Caret      int                      `json:"caret"`
}

func (a *App) completeCommand() *cobra.Command {
	var (
		after    string
		jsonFlag bool
	)
	cmd := &cobra.Command{
		Use:   "complete <text>",
		Short: "Show the phrase suggestion for text",
		Long: `Run the phrase matcher on text as if the caret were at its end,
followed by --after. Useful for checking a dictionary.`,
		Example: `  dilekce complete "Gereğinin yapılmasını arz ve Tal"
  dilekce complete --after " Mahkemesi" "Asliye Hukuk"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.runComplete(cmd.Context(), strings.Join(args, " "), after)
			if err != nil {
				return err
			}
			if jsonFlag {
				return NewJSONResponse("complete", c).Write(a.Out)
			}
			printCompletion(a, c)
			return nil
		},
	}
	cmd.Flags().StringVar(&after, "after", "", "text after the caret")
	cmd.Flags().BoolVar(&jsonFlag, "json", false, "print the result as JSON")
	return cmd
}

func (a *App) runComplete(ctx context.Context, before, after string) (completion, error) {
	provider, err := a.loadDictionary(ctx, false)
	if err != nil {
		return completion{}, err
	}
	fragment, s := provider.Complete(before, after)
	result, caret := s.Apply(before, after)
	return completion{Fragment: fragment, Suggestion: s, Result: result, Caret: caret}, nil
}

func printCompletion(a *App, c completion) {
	fmt.Fprintf(a.Out, "%s %q\n", RenderLabel("Parça:"), c.Fragment)
	if c.Suggestion == nil {
		fmt.Fprintln(a.Out, RenderLabel("Öneri:")+DimStyle.Render(" yok"))
		return
	}
	kind := "ek"
	if c.Suggestion.Alias {
		kind = "kısaltma"
	}
	fmt.Fprintf(a.Out, "%s %s %s\n", RenderLabel("Öneri:"), ValueStyle.Render(c.Suggestion.Target), DimStyle.Render("("+kind+")"))
	fmt.Fprintf(a.Out, "%s %q\n", RenderLabel("Eklenecek:"), c.Suggestion.Remainder)
	fmt.Fprintf(a.Out, "%s %s\n", RenderLabel("Sonuç:"), c.Result)
}
