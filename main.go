// dilekce - a terminal drafting assistant for Turkish legal petitions.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"os"

	"github.com/dilekce/dilekce-tui/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
