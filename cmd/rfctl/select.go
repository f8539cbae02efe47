// Copyright (C) RedfishTools, Inc.
// SPDX-License-Identifier: MIT

package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/redfishtools/rfctl/internal/redfish"
)

var selectCmd = &cobra.Command{
	Use:   "select [type]",
	Short: "Select a resource type to operate on",
	Long: `Select the resource type that subsequent get and list commands operate
on. The selection is validated against the endpoint's resource tree and saved
in the context. With no argument, the current selection is shown.

Examples:
  # Select the Thermal resources
  rfctl select Thermal

  # Re-discover the resource tree and select BIOS settings
  rfctl select Bios --refresh

  # Show the current selection
  rfctl select`,
	Args: cobra.MaximumNArgs(1),
	RunE: selectCmdRun,
}

func init() {
	enableRefreshFlag(selectCmd)
	enableQuietFlag(selectCmd)
	rootCmd.AddCommand(selectCmd)
}

func selectCmdRun(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		if rfctlContext.Selector == "" {
			return redfish.ErrNothingSelected
		}
		tprint("Current selection: %s", strings.TrimSuffix(rfctlContext.Selector, "."))
		return nil
	}

	if refresh {
		rfApp.Refresh()
	}
	instances, err := rfApp.Select(ctx, args[0], nil)
	if err != nil {
		return err
	}

	rfctlContext.Selector = rfApp.Selector()
	if err := SaveRfctlContext(rfctlContext); err != nil {
		return err
	}

	if !quiet {
		tprint("Selected %s (%d instances)", strings.TrimSuffix(rfApp.Selector(), "."), len(instances))
	}
	return nil
}
