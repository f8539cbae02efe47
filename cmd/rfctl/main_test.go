// Copyright (C) RedfishTools, Inc.
// SPDX-License-Identifier: MIT

package main

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
)

func TestIsUnauthenticatedCmd(t *testing.T) {
	login := &cobra.Command{Use: "login"}
	get := &cobra.Command{Use: "get"}
	completion := &cobra.Command{Use: "completion"}
	bash := &cobra.Command{Use: "bash"}
	completion.AddCommand(bash)

	root := &cobra.Command{Use: "rfctl"}
	root.AddCommand(login, get, completion)

	assert.True(t, isUnauthenticatedCmd(login))
	assert.False(t, isUnauthenticatedCmd(get))
	assert.True(t, isUnauthenticatedCmd(completion))
	// Subcommands inherit the parent's exemption.
	assert.True(t, isUnauthenticatedCmd(bash))
	assert.False(t, isUnauthenticatedCmd(root))
}
