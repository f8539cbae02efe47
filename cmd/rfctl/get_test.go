// Copyright (C) RedfishTools, Inc.
// SPDX-License-Identifier: MIT

package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redfishtools/rfctl/internal/redfish"
)

func TestParseFilter(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want *redfish.Filter
	}{
		{
			name: "plain",
			raw:  "Name=CPU Fan",
			want: &redfish.Filter{Attribute: "Name", Value: "CPU Fan"},
		},
		{
			name: "single-quoted",
			raw:  "'Name=CPU Fan'",
			want: &redfish.Filter{Attribute: "Name", Value: "CPU Fan"},
		},
		{
			name: "double-quoted",
			raw:  `"Name=CPU Fan"`,
			want: &redfish.Filter{Attribute: "Name", Value: "CPU Fan"},
		},
		{
			name: "whitespace trimmed",
			raw:  " Name = CPU Fan ",
			want: &redfish.Filter{Attribute: "Name", Value: "CPU Fan"},
		},
		{
			name: "empty value",
			raw:  "Name=",
			want: &redfish.Filter{Attribute: "Name", Value: ""},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseFilter(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	invalid := []string{"Name", "", "Name=CPU=Fan", "'Name'"}
	for _, raw := range invalid {
		t.Run("invalid "+raw, func(t *testing.T) {
			_, err := parseFilter(raw)
			assert.ErrorIs(t, err, ErrInvalidFilterFormat)
		})
	}
}

func TestRewriteBiosArgs(t *testing.T) {
	args := []string{"PowerProfile", "Attributes/BootMode", "attributes/NumaEnabled"}

	rewritten := rewriteBiosArgs("Bios.", args)
	assert.Equal(t, []string{"Attributes/PowerProfile", "Attributes/BootMode", "attributes/NumaEnabled"}, rewritten)

	// Case-insensitive selector prefix.
	rewritten = rewriteBiosArgs("bios.v1_1_0.", []string{"PowerProfile"})
	assert.Equal(t, []string{"Attributes/PowerProfile"}, rewritten)

	// Non-BIOS selectors are untouched.
	assert.Equal(t, args, rewriteBiosArgs("Thermal.", args))
}

func TestPostProcessFlattensBiosAttributes(t *testing.T) {
	contents := []map[string]any{{
		"Id": "BIOS",
		"Attributes": map[string]any{
			"PowerProfile": "MaxPerf",
			"BootMode":     "Uefi",
		},
	}}

	sorted := postProcess(contents, "Bios.", false)
	require.Len(t, sorted, 1)

	_, hasContainer := sorted[0].Get("Attributes")
	assert.False(t, hasContainer)
	profile, ok := sorted[0].Get("PowerProfile")
	require.True(t, ok)
	assert.Equal(t, "MaxPerf", profile)
	mode, ok := sorted[0].Get("BootMode")
	require.True(t, ok)
	assert.Equal(t, "Uefi", mode)
}

func TestPostProcessSortsKeys(t *testing.T) {
	contents := []map[string]any{{
		"Zebra":  1,
		"alpha":  2,
		"Middle": 3,
		"AAA":    4,
	}}

	sorted := postProcess(contents, "Thermal.", false)
	require.Len(t, sorted, 1)

	var keys []string
	for pair := sorted[0].Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	assert.Equal(t, []string{"AAA", "Middle", "Zebra", "alpha"}, keys)
}

func TestPostProcessListModeDropsReservedKeys(t *testing.T) {
	contents := []map[string]any{
		{
			"@odata.id":    "/redfish/v1/Chassis/1/Thermal",
			"@ODATA.type":  "#Thermal.v1_6_0.Thermal",
			"Id":           "Thermal",
			"Name":         "Front Thermal",
			"Temperatures": []any{},
			"Fans":         []any{},
		},
		{
			"Id": "second instance is dropped in list mode",
		},
	}

	sorted := postProcess(contents, "Thermal.", true)
	require.Len(t, sorted, 1)

	for pair := sorted[0].Oldest(); pair != nil; pair = pair.Next() {
		lower := strings.ToLower(pair.Key)
		assert.NotContains(t, lower, "@odata")
		assert.NotContains(t, []string{"id", "name"}, lower)
	}
	_, ok := sorted[0].Get("Temperatures")
	assert.True(t, ok)
	_, ok = sorted[0].Get("Fans")
	assert.True(t, ok)
}

func TestNoContentsError(t *testing.T) {
	err := noContentsError(map[string]struct{}{"NoSuchProp": {}, "Another": {}})
	assert.ErrorIs(t, err, ErrNoContents)
	assert.ErrorContains(t, err, "no get contents found for entry: Another, NoSuchProp")

	err = noContentsError(nil)
	assert.ErrorIs(t, err, ErrNoContents)
	assert.ErrorContains(t, err, "no get contents found for selected type")
}

func TestEmpty(t *testing.T) {
	assert.True(t, empty(nil))
	assert.True(t, empty(postProcess([]map[string]any{{}}, "Thermal.", false)))
	assert.False(t, empty(postProcess([]map[string]any{{"Id": "1"}}, "Thermal.", false)))
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "", formatValue(nil))
	assert.Equal(t, "On", formatValue("On"))
	assert.Equal(t, "42", formatValue(float64(42)))
	assert.Equal(t, "true", formatValue(true))
	assert.Equal(t, `{"ReadingCelsius":41}`, formatValue(map[string]any{"ReadingCelsius": 41}))
	assert.Equal(t, `[1,2]`, formatValue([]any{1, 2}))
}
