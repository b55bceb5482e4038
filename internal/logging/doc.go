// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging builds the structured zap logger used across dilekce.
//
// The terminal UI owns stdout, so log output goes to a JSON file rotated by
// lumberjack. Components receive a *zap.Logger by injection and fall back to
// Nop when none is given.
//
// # Usage
//
//	logger, err := logging.New(logging.Options{Path: path, Level: "info"})
//	defer logger.Sync()
//	logger.Info("dictionary loaded", zap.Int("entries", n))
package logging
