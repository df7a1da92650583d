// Copyright 2025 The Healthmate CoachAI Authors
// SPDX-License-Identifier: Apache-2.0

package runtime

import (
	"fmt"
	"io"

	"github.com/bytedance/sonic"

	"github.com/healthmate-ai/coachai-go/internal/xmaps"
	"github.com/healthmate-ai/coachai-go/session"
	"github.com/healthmate-ai/coachai-go/types"
)

// InvocationRequest is the POST /invocations body sent by the chat UI
// service.
type InvocationRequest struct {
	// Prompt is the user utterance.
	Prompt string `json:"prompt"`

	// SessionState carries the session attributes.
	SessionState SessionState `json:"sessionState"`

	// ToolCalls are the tool invocations requested for this turn. Empty
	// means the turn bootstraps the tool catalog instead.
	ToolCalls []RequestedCall `json:"toolCalls,omitempty"`
}

// SessionState mirrors the UI payload nesting.
type SessionState struct {
	SessionAttributes session.Attributes `json:"sessionAttributes"`
}

// RequestedCall is one requested tool invocation as it appears on the wire.
// Arguments arrive as a JSON object; [InvocationRequest.Turn] flattens them
// into an ordered parameter list.
type RequestedCall struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
	Optional  bool           `json:"optional,omitempty"`
}

// DecodeRequest parses an invocation request body.
func DecodeRequest(body io.Reader) (*InvocationRequest, error) {
	var req InvocationRequest
	if err := sonic.ConfigFastest.NewDecoder(body).Decode(&req); err != nil {
		return nil, fmt.Errorf("runtime: decode invocation payload: %w", err)
	}
	return &req, nil
}

// Turn validates the session attributes and converts the request into an
// orchestrator turn. Validation failures carry the user-facing message the
// surface streams back verbatim.
func (req *InvocationRequest) Turn() (*types.Turn, error) {
	attrs := req.SessionState.SessionAttributes
	if err := attrs.Validate(); err != nil {
		return nil, err
	}
	attrs.Normalize()

	calls := make([]*types.ToolCall, 0, len(req.ToolCalls))
	for _, rc := range req.ToolCalls {
		call := types.NewToolCall(rc.Name, sortedParams(rc.Arguments)...)
		if rc.Optional {
			call = call.WithOptional(true)
		}
		calls = append(calls, call)
	}

	return &types.Turn{
		SessionID: attrs.SessionID,
		Prompt:    req.Prompt,
		Bearer:    attrs.Bearer,
		Timezone:  attrs.Timezone,
		Language:  attrs.Language,
		Calls:     calls,
	}, nil
}

// sortedParams flattens a JSON arguments object into an ordered parameter
// list. JSON objects carry no order, so parameters sort by name to keep the
// gateway encoding deterministic.
func sortedParams(args map[string]any) []types.ToolParam {
	params := make([]types.ToolParam, 0, len(args))
	for _, name := range xmaps.SortedKeys(args) {
		params = append(params, types.ToolParam{Name: name, Value: args[name]})
	}
	return params
}
