// Copyright (C) RedfishTools, Inc.
// SPDX-License-Identifier: MIT

package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/redfishtools/rfctl/internal/redfish"
)

var getCmd = &cobra.Command{
	Use:   "get [property path]...",
	Short: "Display the current value(s) of properties within a selected type",
	Long: `Retrieve property values from the selected resource type. Run without
arguments to retrieve all properties; a type must be selected or passed with
--selector or this will return an error.

Property paths are slash-delimited, e.g. Temperatures/ReadingCelsius.

Examples:
  # Retrieve all properties of the selected type
  rfctl get

  # Retrieve multiple properties from the Thermal resources
  rfctl get Temperatures/ReadingCelsius Fans/Name --selector Thermal

  # Retrieve properties of one instance only
  rfctl get --selector Thermal --filter "Name=CPU Fan"

  # JSON output
  rfctl get --selector Bios PowerProfile --json`,
	RunE: getCmdRun,
}

func init() {
	addStandardGetFlags(getCmd)
	getCmd.Flags().BoolVar(&noReadOnly, "noreadonly", false, "Only show properties that are not read-only. This is useful to see what is configurable with the selected type(s)")
	rootCmd.AddCommand(getCmd)
}

func getCmdRun(cmd *cobra.Command, args []string) error {
	contents, nocontent, err := retrieveProps(args, true)
	if err != nil {
		return err
	}
	if err := renderContents(contents, nocontent); err != nil {
		return err
	}
	return logoutRoutine()
}

// retrieveProps runs the shared pipeline: selection validation, filter parse,
// retrieval with the one degrade-and-retry branch, and post-processing.
// useList enables single-instance list mode, where reserved keys are dropped.
func retrieveProps(args []string, useList bool) ([]*orderedmap.OrderedMap[string, any], map[string]struct{}, error) {
	if refresh {
		rfApp.Refresh()
	}

	sel := selector
	if sel == "" {
		sel = rfctlContext.Selector
	}

	var filtr *redfish.Filter
	if filter != "" {
		var err error
		filtr, err = parseFilter(filter)
		if err != nil {
			return nil, nil, err
		}
	}

	// Activate and validate the selection before touching arguments; the
	// BIOS rewrite depends on the normalized selector.
	if _, err := rfApp.Select(ctx, sel, nil); err != nil {
		return nil, nil, err
	}
	props := rewriteBiosArgs(rfApp.Selector(), args)

	var instances []*redfish.Instance
	if filtr != nil {
		var err error
		instances, err = rfApp.Select(ctx, sel, filtr)
		if err != nil {
			return nil, nil, err
		}
		if instances == nil {
			instances = []*redfish.Instance{}
		}
	}

	nocontent := map[string]struct{}{}
	contents, err := rfApp.GetProps(ctx, props, redfish.GetOptions{
		RemoveReadOnly: noReadOnly,
		Instances:      instances,
		NoContent:      nocontent,
	})
	switch {
	case err == nil:
		// Read-only removal reshapes the mapping, so list-mode trimming
		// is skipped for it.
		useList = useList && !noReadOnly
	case errors.Is(err, redfish.ErrEmptyRefine):
		contents, err = rfApp.GetProps(ctx, props, redfish.GetOptions{NoContent: nocontent})
		if err != nil {
			return nil, nil, err
		}
	default:
		return nil, nil, err
	}

	return postProcess(contents, rfApp.Selector(), useList), nocontent, nil
}

// parseFilter strips one layer of matching surrounding quotes and splits the
// remainder on its single '=' into a trimmed attribute/value pair.
func parseFilter(raw string) (*redfish.Filter, error) {
	s := raw
	if len(s) >= 2 && s[0] == s[len(s)-1] && (s[0] == '\'' || s[0] == '"') {
		s = s[1 : len(s)-1]
	}
	if strings.Count(s, "=") != 1 {
		return nil, errors.Wrapf(ErrInvalidFilterFormat, "%q", raw)
	}
	attr, val, _ := strings.Cut(s, "=")
	return &redfish.Filter{
		Attribute: strings.TrimSpace(attr),
		Value:     strings.TrimSpace(val),
	}, nil
}

// rewriteBiosArgs nests property arguments under Attributes for BIOS
// selectors; BIOS settings live one level deeper than other resource
// properties. Arguments already referencing the container are left alone.
func rewriteBiosArgs(selector string, args []string) []string {
	if !strings.HasPrefix(strings.ToLower(selector), "bios.") {
		return args
	}
	out := make([]string, len(args))
	for i, arg := range args {
		if strings.Contains(strings.ToLower(arg), "attributes") {
			out[i] = arg
		} else {
			out[i] = "Attributes/" + arg
		}
	}
	return out
}

// reservedKeys are internal bookkeeping properties dropped from
// single-instance list output, compared case-insensitively.
var reservedKeys = map[string]struct{}{
	"name":              {},
	"modified":          {},
	"type":              {},
	"description":       {},
	"attributeregistry": {},
	"links":             {},
	"settingsresult":    {},
	"actions":           {},
	"availableactions":  {},
	"id":                {},
	"extref":            {},
}

// postProcess flattens BIOS Attributes containers, sorts every mapping's keys
// ascending (sorted order is the output contract), and in list mode collapses
// to the first instance with reserved and @odata keys dropped.
func postProcess(contents []map[string]any, selector string, useList bool) []*orderedmap.OrderedMap[string, any] {
	bios := strings.HasPrefix(strings.ToLower(selector), "bios.")
	sorted := make([]*orderedmap.OrderedMap[string, any], 0, len(contents))
	for _, content := range contents {
		if bios {
			flattenAttributes(content)
		}
		sorted = append(sorted, sortContent(content))
	}
	if useList && len(sorted) > 0 {
		return []*orderedmap.OrderedMap[string, any]{trimReserved(sorted[0])}
	}
	return sorted
}

// flattenAttributes promotes the children of a nested Attributes container to
// the top level and removes the container key.
func flattenAttributes(content map[string]any) {
	attrs, ok := content["Attributes"].(map[string]any)
	if !ok {
		return
	}
	for key, val := range attrs {
		content[key] = val
	}
	delete(content, "Attributes")
}

func sortContent(content map[string]any) *orderedmap.OrderedMap[string, any] {
	keys := make([]string, 0, len(content))
	for key := range content {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	om := orderedmap.New[string, any]()
	for _, key := range keys {
		om.Set(key, content[key])
	}
	return om
}

func trimReserved(content *orderedmap.OrderedMap[string, any]) *orderedmap.OrderedMap[string, any] {
	om := orderedmap.New[string, any]()
	for pair := content.Oldest(); pair != nil; pair = pair.Next() {
		lower := strings.ToLower(pair.Key)
		if strings.Contains(lower, "@odata") {
			continue
		}
		if _, reserved := reservedKeys[lower]; reserved {
			continue
		}
		om.Set(pair.Key, pair.Value)
	}
	return om
}

// renderContents emits the retrieved mappings as a table, JSON, or a jq
// result, or fails with the no-contents error when nothing remains.
func renderContents(contents []*orderedmap.OrderedMap[string, any], nocontent map[string]struct{}) error {
	if empty(contents) {
		return noContentsError(nocontent)
	}

	var payload any = contents
	if len(contents) == 1 {
		payload = contents[0]
	}

	hasAlternativeOutput := jsonOutput || jq != ""
	if !quiet && !hasAlternativeOutput {
		displayContentTables(contents)
	}
	if jsonOutput {
		displayJSON(payload)
	}
	if jq != "" {
		displayJQ(payload)
	}
	return nil
}

func empty(contents []*orderedmap.OrderedMap[string, any]) bool {
	for _, content := range contents {
		if content.Len() > 0 {
			return false
		}
	}
	return true
}

func noContentsError(nocontent map[string]struct{}) error {
	if len(nocontent) > 0 {
		missing := make([]string, 0, len(nocontent))
		for prop := range nocontent {
			missing = append(missing, prop)
		}
		sort.Strings(missing)
		return errors.Wrapf(ErrNoContents, "no get contents found for entry: %s", strings.Join(missing, ", "))
	}
	return errors.Wrap(ErrNoContents, "no get contents found for selected type")
}

func displayContentTables(contents []*orderedmap.OrderedMap[string, any]) {
	for i, content := range contents {
		if i > 0 {
			tprint("")
		}
		view := tableView()
		for pair := content.Oldest(); pair != nil; pair = pair.Next() {
			view.Append([]string{pair.Key, formatValue(pair.Value)})
		}
		view.Render()
	}
}

func formatValue(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case map[string]any, []any:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(data)
	default:
		return fmt.Sprintf("%v", v)
	}
}
