// Copyright (C) RedfishTools, Inc.
// SPDX-License-Identifier: MIT

package main

import (
	"github.com/cockroachdb/errors"
)

// Command-level error kinds. cobra/pflag reject unknown flags on their own;
// these cover the failures the commands detect themselves.
var (
	// ErrInvalidFilterFormat reports a malformed --filter value.
	ErrInvalidFilterFormat = errors.New("invalid filter parameter format [filter_attribute]=[filter_value]")

	// ErrNoContents reports a structurally successful retrieval that
	// yielded nothing to display.
	ErrNoContents = errors.New("no contents found for operation")
)
