// Copyright (C) RedfishTools, Inc.
// SPDX-License-Identifier: MIT

package main

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/redfishtools/rfctl/internal/redfish"
)

var (
	loginURL      string
	loginUsername string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log into a Redfish endpoint",
	Long: `Create a Redfish session and store its token for use by other commands.

The endpoint can come from --url, the RFCTL_URL environment variable, or the
saved context, in that order of precedence.

Examples:
  # Log into a BMC
  rfctl login --url https://10.0.0.8 --username admin --password secret

  # Log in using the endpoint from the environment
  RFCTL_URL=https://10.0.0.8 rfctl login --username admin --password secret`,
	Args: cobra.ExactArgs(0),
	RunE: loginCmdRun,
}

func init() {
	loginCmd.Flags().StringVar(&loginURL, "url", "", "Redfish endpoint, e.g. https://10.0.0.8")
	loginCmd.Flags().StringVar(&loginUsername, "username", "", "account username")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "account password")
	rootCmd.AddCommand(loginCmd)
}

func loginCmdRun(cmd *cobra.Command, args []string) error {
	url := loginURL
	if url == "" {
		url = os.Getenv("RFCTL_URL")
	}
	if url == "" {
		url = rfctlContext.URL
	}
	if url == "" {
		return errors.New("no endpoint; provide --url or set RFCTL_URL")
	}
	if loginUsername == "" {
		return errors.New("--username is required")
	}

	client := redfish.NewClient(url, debug, redfish.WithLogger(newLogger()))
	session, err := client.Login(ctx, loginUsername, loginPassword)
	if err != nil {
		return err
	}

	state := SessionState{
		URL:      url,
		Username: session.Username,
		Token:    session.Token,
		Location: session.Location,
	}
	if err := SaveSessionState(state); err != nil {
		return err
	}
	rfctlContext.URL = url
	if err := SaveRfctlContext(rfctlContext); err != nil {
		return err
	}

	if !quiet {
		tprint("Successfully logged into %s as %s", url, session.Username)
	}
	return nil
}
