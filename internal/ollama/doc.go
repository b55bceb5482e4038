// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama provides the HTTP client for communicating with Ollama API.
//
// The client implements llm.Client on top of /api/chat. Mode options map to
// options.temperature and options.num_predict; the reasoning flag maps to
// the top-level think field for models that support it.
//
// # Key Types
//
//   - Client: HTTP client for Ollama API communication
//   - ChatRequest / ChatResponse: /api/chat wire structures
//   - StreamReader: NDJSON stream parser
//   - StreamAccumulator: collects streamed chunks into an llm.Response
//   - ClientError: typed error; compare with errors.Is(err, ErrNotRunning)
//
// # Usage
//
//	client := ollama.NewClient(ollama.ClientConfig{
//	    BaseURL: "http://localhost:11434",
//	    Model:   "qwen3",
//	})
//	resp, err := client.Stream(ctx, prompt.Build(in), func(delta string) {
//	    fmt.Print(delta)
//	})
package ollama
