// Copyright (C) RedfishTools, Inc.
// SPDX-License-Identifier: MIT

package main

import (
	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out of the current Redfish session",
	Long:  `Destroy the stored Redfish session on the endpoint and forget its token.`,
	Args:  cobra.ExactArgs(0),
	RunE:  logoutCmdRun,
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}

func logoutCmdRun(cmd *cobra.Command, args []string) error {
	return logoutSession()
}

// logoutSession is the shared session-teardown routine. Commands invoked with
// --logout chain into it after their own output.
func logoutSession() error {
	if err := rfClient.Logout(ctx, rfSession.Location); err != nil {
		// The remote session may have expired; still drop local state.
		tprintErr("Warning: %s", err.Error())
	}
	if err := RemoveSessionState(); err != nil {
		return err
	}
	rfctlContext.Selector = ""
	if err := SaveRfctlContext(rfctlContext); err != nil {
		return err
	}
	if !quiet {
		tprint("Successfully logged out of %s", rfSession.URL)
	}
	return nil
}

// logoutRoutine runs as the final step of commands that accept --logout.
func logoutRoutine() error {
	if !logout {
		return nil
	}
	return logoutSession()
}
