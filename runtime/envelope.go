// Copyright 2025 The Healthmate CoachAI Authors
// SPDX-License-Identifier: Apache-2.0

package runtime

import "github.com/healthmate-ai/coachai-go/types"

// Wire envelopes for the NDJSON event stream. The shapes follow the chat UI
// contract: progress rides in subAgentProgress, response text in
// contentBlockDelta.

type progressEnvelope struct {
	Event struct {
		SubAgentProgress subAgentProgress `json:"subAgentProgress"`
	} `json:"event"`
}

type subAgentProgress struct {
	Message  string `json:"message"`
	Stage    string `json:"stage"`
	ToolName string `json:"tool_name,omitempty"`
}

type deltaEnvelope struct {
	Event struct {
		ContentBlockDelta struct {
			Delta textDelta `json:"delta"`
		} `json:"contentBlockDelta"`
	} `json:"event"`
}

type textDelta struct {
	Text string `json:"text"`
}

func newProgressEnvelope(e *types.TurnEvent) progressEnvelope {
	var env progressEnvelope
	env.Event.SubAgentProgress = subAgentProgress{
		Message:  e.Message,
		Stage:    string(e.Stage),
		ToolName: e.ToolName,
	}
	return env
}

func newDeltaEnvelope(text string) deltaEnvelope {
	var env deltaEnvelope
	env.Event.ContentBlockDelta.Delta = textDelta{Text: text}
	return env
}
