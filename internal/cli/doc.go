// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the dilekce command line.
//
// The root command starts the interactive terminal UI. Subcommands cover
// the non-interactive paths:
//
//	dilekce                      start the TUI
//	dilekce ask [question]       one-shot question, reads stdin when piped
//	dilekce chat                 line-based REPL with tab completion
//	dilekce complete <text>      show the phrase suggestion for text
//	dilekce modes                list writing modes and their parameters
//	dilekce models               list known and installed models
//	dilekce session ...          list, show, export and delete sessions
//	dilekce config ...           show, init, get and set configuration
//	dilekce dict ...             check and list phrase dictionaries
//
// Global flags:
//
//	--config PATH      configuration file (default ~/.dilekce/config.toml)
//	-p, --provider     LLM provider override (ollama or gemini)
//	-m, --model        model override
//	-v, --verbose      debug logging and response statistics
//
// All commands share an App, which owns the loaded configuration, the
// logger and the factories for clients, stores and dictionaries. Tests
// build an App with buffers and a fake client factory.
package cli
