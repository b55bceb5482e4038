// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for dilekce.
//
// Supports both TOML and JSON configuration formats, with defaults,
// environment variable overrides, and validation.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - LLMConfig: Provider selection (ollama, gemini) and model
//   - DictionaryConfig: Custom phrase dictionary and hot reload
//   - StorageConfig: Session history backend (file, sqlite)
//   - LoggingConfig: Log level and rotating log file
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (DILEKCE_*)
//   - ~/.dilekce/config.toml
//   - ~/.dilekce/config.json
//   - Built-in defaults
//
// DILEKCE_HOME relocates the ~/.dilekce directory.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	provider := cfg.LLM.Provider
//	interval := cfg.SaveInterval()
package config
