// Copyright (C) RedfishTools, Inc.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/cockroachdb/errors"
	"github.com/fatih/color"
	"github.com/itchyny/gojq"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/redfishtools/rfctl/internal/redfish"
)

const (
	RFCTL_DIR = ".rfctl"
)

//go:embed rfctl-overview.md
var overviewFS embed.FS

var ctx = context.Background()
var rfClient *redfish.Client
var rfApp *redfish.App
var rfSession SessionState

var rootCmd = &cobra.Command{
	Use:   "rfctl",
	Short: "Redfish management CLI",
	Long: `Command line tool for managing Redfish-capable servers.
To change the default endpoint, set the RFCTL_URL environment variable.`,
}

// Commands that work without a stored session.
var unauthenticatedCmds = []string{"login", "version", "help", "completion"}

// isUnauthenticatedCmd walks the command path so subcommands inherit their
// parent's exemption, e.g. "completion bash".
func isUnauthenticatedCmd(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if slices.Contains(unauthenticatedCmds, c.Name()) {
			return true
		}
	}
	return false
}

func globalPreRun(cmd *cobra.Command, args []string) error {
	if debug {
		fmt.Printf("rfctl debug mode enabled. version: %s, buildDate: %s\n", BuildTag, BuildDate)
	}

	var err error
	rfSession, err = LoadSessionState()
	if err != nil {
		if !isUnauthenticatedCmd(cmd) {
			return errors.New("you must be logged in to execute this command. Log in with the command: rfctl login")
		}
		return nil
	}

	rfClient = redfish.NewClient(endpointURL(), debug,
		redfish.WithToken(rfSession.Token),
		redfish.WithLogger(newLogger()))
	rfApp = redfish.NewApp(rfClient, newLogger())
	return nil
}

// endpointURL resolves the endpoint, preferring the environment over the
// saved context and session.
func endpointURL() string {
	if env := os.Getenv("RFCTL_URL"); env != "" {
		return env
	}
	if rfctlContext.URL != "" {
		return rfctlContext.URL
	}
	return rfSession.URL
}

func newLogger() *zap.Logger {
	if !debug {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func getFormattedOverview() string {
	content, err := overviewFS.ReadFile("rfctl-overview.md")
	if err != nil {
		return rootCmd.Long
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return string(content)
	}
	formatted, err := renderer.Render(string(content))
	if err != nil {
		return string(content)
	}
	return formatted
}

func main() {
	LoadRfctlContext()
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Debug output")

	var helpOverview bool
	rootCmd.Flags().BoolVar(&helpOverview, "help-overview", false, "Show detailed overview instead of standard help")

	originalHelpFunc := rootCmd.HelpFunc()
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		if helpOverview {
			fmt.Print(getFormattedOverview())
			return
		}
		originalHelpFunc(cmd, args)
	})

	// This turns off printing Usage after an error
	rootCmd.SilenceUsage = true
	// We don't want root command to print errors. We'll do it ourselves.
	rootCmd.SilenceErrors = true

	rootCmd.PersistentPreRunE = globalPreRun

	err := rootCmd.Execute()
	failOnError(err)
}

func failOnError(err error) {
	if err != nil {
		tprintErr("Failed: %s", err.Error())
		os.Exit(1)
	}
}

func tableView() *tablewriter.Table {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("    ")
	table.SetNoWhiteSpace(true)
	return table
}

func detailView() *tablewriter.Table {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(true)
	table.SetBorder(false)
	table.SetTablePadding("    ")
	table.SetNoWhiteSpace(true)
	return table
}

// tprint stands for terminal print
func tprint(format string, args ...interface{}) {
	// Ensure there are no leading newlines and exactly one trailing newline.
	format = strings.Trim(format, "\n") + "\n"
	fmt.Printf(format, args...)
}

func tprintErr(format string, args ...interface{}) {
	red := color.New(color.FgRed).Add(color.Bold)
	redf := red.SprintFunc()
	// Ensure there are no leading newlines and exactly one trailing newline.
	format = strings.Trim(format, "\n") + "\n"
	fmt.Fprint(os.Stderr, redf(fmt.Sprintf(format, args...)))
}

func tprintRaw(output string) {
	// Ensure there are no leading newlines and exactly one trailing newline.
	output = strings.Trim(output, "\n") + "\n"
	fmt.Print(output)
}

var selector = ""
var filter = ""
var jsonOutput = false
var jq = ""
var quiet = false
var debug = false
var noReadOnly = false
var refresh = false
var logout = false

func enableSelectorFlag(cmd *cobra.Command) {
	cmd.Flags().StringVar(&selector, "selector", "", "Select a type to run the command on without selecting it first, or to override the current selection")
}

func enableFilterFlag(cmd *cobra.Command) {
	cmd.Flags().StringVar(&filter, "filter", "", "Narrow results to instances matching an attribute value. Usage: --filter [ATTRIBUTE]=[VALUE]")
}

func enableJsonFlag(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "JSON output, suppressing default output")
}

func enableJqFlag(cmd *cobra.Command) {
	cmd.Flags().StringVar(&jq, "jq", "", "jq expression, suppressing default output")
}

func enableQuietFlag(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&quiet, "quiet", false, "No default output. Use with --jq to get specific output")
}

func enableRefreshFlag(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Reload the data of the selected type, discarding the cached resource tree")
}

func enableLogoutFlag(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&logout, "logout", false, "Log out of the session after the command completes")
}

func addStandardGetFlags(cmd *cobra.Command) {
	enableSelectorFlag(cmd)
	enableFilterFlag(cmd)
	enableJsonFlag(cmd)
	enableJqFlag(cmd)
	enableQuietFlag(cmd)
	enableRefreshFlag(cmd)
	enableLogoutFlag(cmd)
}

func displayJSON(entity any) {
	outBytes, err := json.MarshalIndent(entity, "", "  ")
	failOnError(err)
	tprintRaw(string(outBytes))
}

func displayJQForBytes(outBytes []byte, jqExpr string) {
	var tree any
	err := json.Unmarshal(outBytes, &tree)
	failOnError(err)
	jqQuery, err := gojq.Parse(jqExpr)
	failOnError(err)
	iter := jqQuery.Run(tree)
	for {
		value, ok := iter.Next()
		if !ok {
			break
		}
		if err, ok := value.(error); ok {
			if err, ok := err.(*gojq.HaltError); ok && err.Value() == nil {
				break
			}
			failOnError(err)
		}
		switch v := value.(type) {
		case string, int, bool:
			tprint("%v", v)
		default:
			displayJSON(value)
		}
	}
}

func displayJQ(entity any) {
	outBytes, err := json.Marshal(entity)
	failOnError(err)
	displayJQForBytes(outBytes, jq)
}
