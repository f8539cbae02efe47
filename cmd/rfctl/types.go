// Copyright (C) RedfishTools, Inc.
// SPDX-License-Identifier: MIT

package main

import (
	"github.com/spf13/cobra"
)

var fullTypes = false

var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "List resource types available on the endpoint",
	Long: `List the resource types discovered on the endpoint. Any of them can be
passed to select or --selector.

Examples:
  # List type names
  rfctl types

  # List full versioned type identifiers
  rfctl types --fulltypes`,
	Args: cobra.ExactArgs(0),
	RunE: typesCmdRun,
}

func init() {
	typesCmd.Flags().BoolVar(&fullTypes, "fulltypes", false, "Show full versioned type identifiers instead of type names")
	enableJsonFlag(typesCmd)
	enableJqFlag(typesCmd)
	enableQuietFlag(typesCmd)
	enableRefreshFlag(typesCmd)
	rootCmd.AddCommand(typesCmd)
}

func typesCmdRun(cmd *cobra.Command, args []string) error {
	if refresh {
		rfApp.Refresh()
	}
	names, err := rfApp.Types(ctx, fullTypes)
	if err != nil {
		return err
	}

	hasAlternativeOutput := jsonOutput || jq != ""
	if !quiet && !hasAlternativeOutput {
		table := detailView()
		table.SetHeader([]string{"Type"})
		for _, name := range names {
			table.Append([]string{name})
		}
		table.Render()
	}
	if jsonOutput {
		displayJSON(names)
	}
	if jq != "" {
		displayJQ(names)
	}
	return nil
}
