// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: cmd/texeltail/main.go
// Summary: Entry point for the texeltail dashboard.
// Usage: texeltail [-c LAYOUT] [-t N [-m]] [-n] [-f] [-r] FILE...

package main

import (
	"os"

	tailrt "github.com/framegrace/texeltail/internal/runtime/tail"
)

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr, tailrt.Run))
}
