// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command scholar is the entry point of the academic profile site.
//
// Run `scholar serve` to start the web server; see `scholar --help` for the
// content maintenance commands.
package main

import "github.com/taibuivan/scholar/internal/cli"

func main() {
	cli.Execute()
}
