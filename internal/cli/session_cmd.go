// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the dilekce command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dilekce/dilekce-tui/internal/export"
	"github.com/dilekce/dilekce-tui/internal/storage"
	"github.com/dilekce/dilekce-tui/internal/util"
)

func (a *App) sessionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "session",
		Aliases: []string{"sessions"},
		Short:   "Manage stored sessions",
	}
	cmd.AddCommand(
		a.sessionListCommand(),
		a.sessionShowCommand(),
		a.sessionExportCommand(),
		a.sessionDeleteCommand(),
	)
	return cmd
}

// withStore opens the history store for the duration of fn.
func (a *App) withStore(fn func(storage.HistoryStore) error) error {
	store, err := a.openStore()
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func (a *App) sessionListCommand() *cobra.Command {
	var (
		limit, offset int
		search        string
		jsonFlag      bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List sessions, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withStore(func(store storage.HistoryStore) error {
				sessions, err := listSessions(cmd.Context(), store, search, limit, offset)
				if err != nil {
					return err
				}
				if jsonFlag {
					return NewJSONResponse("session list", sessions).Write(a.Out)
				}
				fmt.Fprint(a.Out, storage.FormatSessionList(sessions))
				return nil
			})
		},
	}
	f := cmd.Flags()
	f.IntVarP(&limit, "limit", "n", 20, "maximum number of sessions (0 for all)")
	f.IntVar(&offset, "offset", 0, "number of sessions to skip")
	f.StringVarP(&search, "search", "s", "", "only sessions whose title or messages contain this text")
	f.BoolVar(&jsonFlag, "json", false, "print the result as JSON")
	return cmd
}

// listSessions lists or searches store. Search results are paged the same
// way as listings.
func listSessions(ctx context.Context, store storage.HistoryStore, query string, limit, offset int) ([]storage.Summary, error) {
	if strings.TrimSpace(query) == "" {
		return store.List(ctx, limit, offset)
	}
	searcher, ok := store.(storage.Searcher)
	if !ok {
		return nil, errors.New("this storage backend does not support search")
	}
	found, err := searcher.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	if offset > len(found) {
		return nil, nil
	}
	found = found[offset:]
	if limit > 0 && len(found) > limit {
		found = found[:limit]
	}
	return found, nil
}

func (a *App) sessionShowCommand() *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(store storage.HistoryStore) error {
				s, err := store.Load(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				data, err := export.NewMarkdownExporter(&export.Options{}).Export(s)
				if err != nil {
					return err
				}
				if raw {
					_, err = a.Out.Write(data)
					return err
				}
				fmt.Fprint(a.Out, renderMarkdown(string(data)))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "print markdown without rendering")
	return cmd
}

func (a *App) sessionExportCommand() *cobra.Command {
	var (
		format, output, theme string
		noMetadata, open      bool
	)
	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Export a session as Markdown, JSON or HTML",
		Long: `Export a session as a document.

With -o pointing to a directory, the file name is derived from the
session title and the current time.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if theme == "" {
				theme = a.cfg.UI.Theme
			}
			exp, err := export.New(format, &export.Options{
				IncludeMetadata: !noMetadata,
				Theme:           theme,
			})
			if err != nil {
				return err
			}

			return a.withStore(func(store storage.HistoryStore) error {
				s, err := store.Load(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				data, err := exp.Export(s)
				if err != nil {
					return fmt.Errorf("failed to export session: %w", err)
				}

				if output == "" || output == "-" {
					if open {
						return errors.New("--open needs an output file")
					}
					_, err := a.Out.Write(data)
					return err
				}

				path := util.ExpandHome(output)
				if isDir(path) {
					path = filepath.Join(path, export.Filename(s, exp, time.Now()))
				}
				if err := util.AtomicWriteFile(path, data, 0600); err != nil {
					return fmt.Errorf("failed to write %s: %w", path, err)
				}
				fmt.Fprintln(a.Err, SuccessStyle.Render("Dışa aktarıldı: ")+path)
				a.Logger().Info("session exported",
					zap.String("id", s.ID),
					zap.String("format", exp.MimeType()),
					zap.String("path", path))

				if open {
					if err := export.Open(path); err != nil {
						return fmt.Errorf("failed to open %s: %w", path, err)
					}
				}
				return nil
			})
		},
	}
	f := cmd.Flags()
	f.StringVarP(&format, "format", "f", "markdown", "export format: "+strings.Join(export.Formats(), ", "))
	f.StringVarP(&output, "output", "o", "", "output file or directory (default stdout)")
	f.StringVar(&theme, "theme", "", "HTML theme, dark or light (default from ui.theme)")
	f.BoolVar(&noMetadata, "no-metadata", false, "omit front matter and the session information block")
	f.BoolVar(&open, "open", false, "open the exported file")
	return cmd
}

// isDir reports whether path is an existing directory or ends with a
// path separator.
func isDir(path string) bool {
	if strings.HasSuffix(path, string(filepath.Separator)) || strings.HasSuffix(path, "/") {
		return true
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func (a *App) sessionDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>...",
		Aliases: []string{"rm"},
		Short:   "Delete sessions",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(store storage.HistoryStore) error {
				var errs []error
				for _, id := range args {
					if err := store.Delete(cmd.Context(), id); err != nil {
						errs = append(errs, err)
						continue
					}
					fmt.Fprintln(a.Out, SuccessStyle.Render("Silindi: ")+id)
				}
				return errors.Join(errs...)
			})
		},
	}
}
