// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cli

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/taibuivan/scholar/internal/admin"
	"github.com/taibuivan/scholar/internal/backend"
	"github.com/taibuivan/scholar/internal/crud"
	"github.com/taibuivan/scholar/pkg/slice"
)

// contentEnv is the environment the content commands read. Flags override it.
type contentEnv struct {
	APIBaseURL string        `env:"API_BASE_URL"`
	APITimeout time.Duration `env:"API_TIMEOUT" envDefault:"10s"`
	Token      string        `env:"SCHOLAR_API_TOKEN"`
}

// contentOptions are the persistent flags of the content command group.
type contentOptions struct {
	apiBaseURL string
	token      string
	timeout    time.Duration
}

func newContentCommand() *cobra.Command {
	options := &contentOptions{}

	command := &cobra.Command{
		Use:   "content",
		Short: "Inspect and prune the content API",
		Long: `content works on the same collections as the admin console.

Resources: ` + strings.Join(resourceNames(), ", ") + `

The API address comes from --api or API_BASE_URL. Deleting needs a bearer
token from --token or SCHOLAR_API_TOKEN.`,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return options.complete()
		},
	}

	command.PersistentFlags().StringVar(&options.apiBaseURL, "api", "", "content API base URL")
	command.PersistentFlags().DurationVar(&options.timeout, "timeout", 0, "content API request timeout")

	command.AddCommand(newContentListCommand(options))
	command.AddCommand(newContentGetCommand(options))
	command.AddCommand(newContentDeleteCommand(options))
	return command
}

func newContentListCommand(options *contentOptions) *cobra.Command {
	var filter string

	command := &cobra.Command{
		Use:   "list <resource>",
		Short: "List the items of a resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			panel, err := options.panel(args[0])
			if err != nil {
				return err
			}
			if err := panel.List(cmd.Context()); err != nil {
				return err
			}
			return printItems(cmd.OutOrStdout(), panel, panel.Filtered(filter))
		},
	}

	command.Flags().StringVar(&filter, "filter", "", "only items whose filter field equals this value")
	return command
}

func newContentGetCommand(options *contentOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <resource> <id>",
		Short: "Print one item as YAML",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			panel, err := options.panel(args[0])
			if err != nil {
				return err
			}
			if err := panel.List(cmd.Context()); err != nil {
				return err
			}
			if err := panel.SelectForEdit(cmd.Context(), args[1]); err != nil {
				return err
			}

			encoder := yaml.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent(2)
			if err := encoder.Encode(map[string]any(panel.Draft())); err != nil {
				return fmt.Errorf("encode item: %w", err)
			}
			return encoder.Close()
		},
	}
}

func newContentDeleteCommand(options *contentOptions) *cobra.Command {
	command := &cobra.Command{
		Use:   "delete <resource> <id>",
		Short: "Delete an item and print what remains",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			panel, err := options.panel(args[0])
			if err != nil {
				return err
			}
			if err := panel.List(cmd.Context()); err != nil {
				return err
			}
			if err := panel.Remove(cmd.Context(), args[1]); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s deleted.\n", panel.Resource().Title)
			return printItems(cmd.OutOrStdout(), panel, panel.Items())
		},
	}

	command.Flags().StringVar(&options.token, "token", "", "bearer token for the content API")
	return command
}

// # Helpers

// complete fills unset flags from the environment.
func (options *contentOptions) complete() error {
	var environment contentEnv
	if err := env.Parse(&environment); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}

	if options.apiBaseURL == "" {
		options.apiBaseURL = environment.APIBaseURL
	}
	if options.token == "" {
		options.token = environment.Token
	}
	if options.timeout == 0 {
		options.timeout = environment.APITimeout
	}

	if options.apiBaseURL == "" {
		return fmt.Errorf("content API address is not set: use --api or API_BASE_URL")
	}
	return nil
}

func (options *contentOptions) panel(name string) (*crud.Panel, error) {
	resource, ok := admin.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("unknown resource %q (one of: %s)", name, strings.Join(resourceNames(), ", "))
	}

	client := backend.New(backend.Config{
		BaseURL: options.apiBaseURL,
		Timeout: options.timeout,
	})
	return crud.NewPanel(resource, client, crud.StaticToken(options.token), nil), nil
}

func printItems(out io.Writer, panel *crud.Panel, items []crud.Record) error {
	if len(items) == 0 {
		_, err := fmt.Fprintln(out, "No items.")
		return err
	}

	table := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(table, "ID\tITEM")
	for _, item := range items {
		fmt.Fprintf(table, "%s\t%s\n", item.ID(), panel.Resource().ItemLabel(item))
	}
	return table.Flush()
}

func resourceNames() []string {
	names := slice.Map(admin.Resources, func(resource *crud.Resource) string { return resource.Name })
	slices.Sort(names)
	return names
}
