// Copyright (C) RedfishTools, Inc.
// SPDX-License-Identifier: MIT

package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

var rawgetCmd = &cobra.Command{
	Use:   "rawget <uri>",
	Short: "Perform a GET of an arbitrary Redfish URI",
	Long: `Fetch a Redfish URI through the authenticated client and print the JSON
body. Useful for resources the type-based commands do not reach.

Examples:
  # Fetch the service root
  rfctl rawget /redfish/v1/

  # Extract one field
  rfctl rawget /redfish/v1/Systems/1 --jq .PowerState`,
	Args: cobra.ExactArgs(1),
	RunE: rawgetCmdRun,
}

func init() {
	enableJqFlag(rawgetCmd)
	enableQuietFlag(rawgetCmd)
	rootCmd.AddCommand(rawgetCmd)
}

func rawgetCmdRun(cmd *cobra.Command, args []string) error {
	body, err := rfClient.GetRaw(ctx, args[0])
	if err != nil {
		return err
	}

	if jq != "" {
		displayJQForBytes(body, jq)
		return nil
	}
	if quiet {
		return nil
	}
	var pretty any
	if err := json.Unmarshal(body, &pretty); err != nil {
		// Not JSON; print as-is.
		tprintRaw(string(body))
		return nil
	}
	displayJSON(pretty)
	return nil
}
