// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package mode defines the writing modes and their generation settings.
//
// The set of modes is closed: sor (question), ozetle (summary) and yazdir
// (drafting). Each mode has one system instruction and one set of generation
// options. Lookups are total; an unknown mode behaves like sor.
//
// # Usage
//
//	m, _ := mode.Parse("özetle")
//	sys := mode.SystemMessage(m)
//	opts := mode.CompletionOptions(m)
//	m = mode.Next(m) // yazdir
package mode
