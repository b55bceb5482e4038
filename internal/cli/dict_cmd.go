// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the dilekce command line.
package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dilekce/dilekce-tui/internal/autocomplete"
)

// dictReport summarizes a checked dictionary.
type dictReport struct {
	Path    string `json:"path"`
	Format  string `json:"format"`
	Entries int    `json:"entries"`
	Aliases int    `json:"aliases"`
}

func (a *App) dictCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "dict",
		Aliases: []string{"dictionary"},
		Short:   "Check and list phrase dictionaries",
	}
	cmd.AddCommand(a.dictCheckCommand(), a.dictListCommand())
	return cmd
}

func (a *App) dictCheckCommand() *cobra.Command {
	var jsonFlag bool
	cmd := &cobra.Command{
		Use:   "check <file>",
		Short: "Validate a dictionary file (.toml, .yaml, .json, .txt)",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return a.output(jsonFlag, "dict check", func() (interface{}, error) {
				return checkDictionary(args[0])
			}, func(v interface{}) {
				r := v.(dictReport)
				fmt.Fprintf(a.Out, "%s %s (%s): %d ifade, %d kısaltma\n",
					SuccessStyle.Render("Geçerli:"), r.Path, r.Format, r.Entries, r.Aliases)
			})
		},
	}
	cmd.Flags().BoolVar(&jsonFlag, "json", false, "print the result as JSON")
	return cmd
}

func checkDictionary(path string) (dictReport, error) {
	d, err := autocomplete.LoadFile(path)
	if err != nil {
		return dictReport{}, err
	}
	r := dictReport{Path: path, Format: string(autocomplete.FormatFromPath(path)), Entries: d.Len()}
	for _, e := range d.Entries() {
		r.Aliases += len(e.Aliases)
	}
	return r, nil
}

func (a *App) dictListCommand() *cobra.Command {
	var jsonFlag bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the phrases of the active dictionary",
		RunE: func(cmd *cobra.Command, _ []string) error {
			provider, err := a.loadDictionary(cmd.Context(), false)
			if err != nil {
				return err
			}
			entries := provider.Dictionary().Entries()
			if jsonFlag {
				return NewJSONResponse("dict list", entries).Write(a.Out)
			}
			for _, e := range entries {
				line := e.Target
				if len(e.Aliases) > 0 {
					line += DimStyle.Render("  (" + strings.Join(e.Aliases, ", ") + ")")
				}
				fmt.Fprintln(a.Out, line)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonFlag, "json", false, "print the result as JSON")
	return cmd
}

// output runs handler and prints its result as JSON or with text.
func (a *App) output(jsonFlag bool, command string, handler func() (interface{}, error), text func(interface{})) error {
	if jsonFlag {
		return writeJSON(a.Out, command, handler)
	}
	v, err := handler()
	if err != nil {
		return err
	}
	text(v)
	return nil
}
