// Copyright (C) RedfishTools, Inc.
// SPDX-License-Identifier: MIT

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// SessionState is the persisted Redfish session: the endpoint it was created
// against, the auth token, and the session resource URI needed to destroy it.
type SessionState struct {
	URL      string `json:"url"`
	Username string `json:"username"`
	Token    string `json:"token"`
	Location string `json:"location"`
}

func sessionFilePath() string {
	return filepath.Join(os.Getenv("HOME"), RFCTL_DIR, "session.json")
}

func LoadSessionState() (SessionState, error) {
	var session SessionState

	data, err := os.ReadFile(sessionFilePath())
	if err != nil {
		return session, fmt.Errorf("failed to read session file: %w", err)
	}

	if err := json.Unmarshal(data, &session); err != nil {
		return session, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return session, nil
}

func SaveSessionState(session SessionState) error {
	configDir := filepath.Join(os.Getenv("HOME"), RFCTL_DIR)

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := os.WriteFile(sessionFilePath(), data, 0600); err != nil {
		return fmt.Errorf("failed to write session to file: %w", err)
	}

	return nil
}

func RemoveSessionState() error {
	err := os.Remove(sessionFilePath())
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}
