// Copyright (C) RedfishTools, Inc.
// SPDX-License-Identifier: MIT

package main

import (
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list [property path]...",
	Short: "Display the current values of properties, including reserved properties",
	Long: `Retrieve property values from the selected type the way get does, but
keep reserved and @odata metadata properties and show every matched instance.

Examples:
  # List all properties of every instance of the selected type
  rfctl list

  # List properties of the Thermal resources as JSON
  rfctl list --selector Thermal --json`,
	RunE: listCmdRun,
}

func init() {
	addStandardGetFlags(listCmd)
	rootCmd.AddCommand(listCmd)
}

func listCmdRun(cmd *cobra.Command, args []string) error {
	contents, nocontent, err := retrieveProps(args, false)
	if err != nil {
		return err
	}
	if err := renderContents(contents, nocontent); err != nil {
		return err
	}
	return logoutRoutine()
}
