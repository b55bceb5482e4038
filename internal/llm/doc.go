// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package llm defines the transport contract between assembled prompts and
// model providers.
//
// # Key Types
//
//   - Client: Complete or Stream one prompt.Request
//   - Response: final text, reasoning trace, token counts and timing
//
// Implementations live in the ollama and gemini packages.
package llm
