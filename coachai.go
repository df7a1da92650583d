// Copyright 2025 The Healthmate CoachAI Authors
// SPDX-License-Identifier: Apache-2.0

// Package coachai implements the authenticated remote-tool invocation layer for the Healthmate coaching agent.
package coachai

import (
	// for raw string prompt constants
	_ "github.com/MakeNowJust/heredoc/v2"
	// for prompt templating
	_ "github.com/google/dotprompt/go/dotprompt"
)

// Version is the version of the CoachAI runtime.
var Version = "v0.0.0"
