// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gemini implements llm.Client on the Google Gen AI SDK.
//
// The leading system message of a request becomes the system instruction;
// the remaining messages become user and model contents. Mode options map
// to Temperature, MaxOutputTokens and ThinkingConfig.
//
// # Usage
//
//	client, err := gemini.NewClient(ctx, gemini.Config{
//	    APIKey: os.Getenv("GEMINI_API_KEY"),
//	    Model:  "gemini-2.5-flash",
//	})
//	resp, err := client.Complete(ctx, prompt.Build(in))
package gemini
