// Copyright 2025 The Healthmate CoachAI Authors
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"bytes"
	"context"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
)

// ToolParam is a single named argument of a tool invocation.
type ToolParam struct {
	Name  string
	Value any
}

// ToolParams is an ordered argument list. Order is preserved on the wire:
// the backend contract keys arguments by name but some tools are sensitive
// to declaration order when echoing them back, so marshaling never goes
// through a map.
type ToolParams []ToolParam

// Get returns the value for the named parameter.
func (p ToolParams) Get(name string) (any, bool) {
	for _, param := range p {
		if param.Name == name {
			return param.Value, true
		}
	}
	return nil, false
}

// MarshalJSON encodes the parameters as a JSON object in declaration order.
func (p ToolParams) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, param := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := sonic.ConfigFastest.Marshal(param.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		value, err := sonic.ConfigFastest.Marshal(param.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ToolCall describes one requested remote tool invocation. A ToolCall is
// immutable once constructed; build new values rather than mutating.
type ToolCall struct {
	// Name is the remote tool name. Must be non-empty.
	Name string `json:"name"`

	// Params are the ordered invocation arguments.
	Params ToolParams `json:"arguments,omitempty"`

	// CallerID is the caller identifier attached to the invocation.
	CallerID string `json:"callerId,omitempty"`

	// CallID correlates this invocation across logs and progress events.
	CallID string `json:"callId"`

	// Optional marks a tool whose failure degrades the turn instead of
	// failing it.
	Optional bool `json:"optional,omitempty"`
}

// NewToolCall creates a [ToolCall] with a fresh correlation id.
func NewToolCall(name string, params ...ToolParam) *ToolCall {
	return &ToolCall{
		Name:   name,
		Params: params,
		CallID: uuid.NewString(),
	}
}

// WithCallerID returns a copy of the call carrying the given caller id.
func (c *ToolCall) WithCallerID(callerID string) *ToolCall {
	clone := *c
	clone.CallerID = callerID
	return &clone
}

// WithOptional returns a copy of the call with the optional flag set.
func (c *ToolCall) WithOptional(optional bool) *ToolCall {
	clone := *c
	clone.Optional = optional
	return &clone
}

// GatewayInvoker is the tool-backend collaborator contract.
//
// Implementations classify backend behavior into the [ToolResult] status
// instead of returning errors; the error return is reserved for caller
// misuse such as an empty tool name or a nil/expired credential.
type GatewayInvoker interface {
	// Invoke performs one authenticated tool invocation.
	Invoke(ctx context.Context, call *ToolCall, cred *Credential) (*ToolResult, error)
}
