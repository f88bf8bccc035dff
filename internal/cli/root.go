// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package cli holds the cobra commands of the scholar binary.

Commands:

  - serve: run the web server.
  - content list|get|delete: inspect and prune the content API from a terminal.
  - version: print the build version.
*/
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/taibuivan/scholar/internal/platform/constants"
)

// NewRootCommand assembles the command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "scholar",
		Short: "Academic profile site and content console",
		Long: `scholar serves a researcher's public profile (books, blogs, publications,
talks, courses, team) and a password-gated console that edits the content
through the external REST API.`,
		SilenceUsage: true,
	}

	root.AddCommand(newServeCommand())
	root.AddCommand(newContentCommand())
	root.AddCommand(newVersionCommand())
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", constants.AppName, constants.AppVersion)
		},
	}
}
