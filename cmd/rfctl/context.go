// Copyright (C) RedfishTools, Inc.
// SPDX-License-Identifier: MIT

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

var rfctlContext = RfctlContext{}

// RfctlContext is the state that survives between invocations: the endpoint
// and the currently selected resource type.
type RfctlContext struct {
	URL      string `json:"url"`
	Selector string `json:"selector"`
}

func contextFilePath() string {
	return filepath.Join(os.Getenv("HOME"), RFCTL_DIR, "context.json")
}

func LoadRfctlContext() {
	contextFile := contextFilePath()
	_, err := os.Stat(contextFile)
	if err != nil {
		if os.IsNotExist(err) {
			// no file, which is ok
			return
		}
		failOnError(fmt.Errorf("failed to stat context file: %w", err))
	}
	data, err := os.ReadFile(contextFile)
	failOnError(err)

	err = json.Unmarshal(data, &rfctlContext)
	failOnError(err)
}

func SaveRfctlContext(context RfctlContext) error {
	configDir := filepath.Join(os.Getenv("HOME"), RFCTL_DIR)

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := json.MarshalIndent(context, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal context: %w", err)
	}

	if err := os.WriteFile(contextFilePath(), data, 0600); err != nil {
		return fmt.Errorf("failed to write context to file: %w", err)
	}

	return nil
}
