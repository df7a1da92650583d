// Copyright 2025 The Healthmate CoachAI Authors
// SPDX-License-Identifier: Apache-2.0

package types

// ToolStatus classifies the outcome of one tool invocation. Backend
// behavior is data, not error: the gateway reports what happened and the
// orchestrator decides what it means for the turn.
type ToolStatus string

const (
	// ToolStatusSuccess means the backend returned a usable payload.
	ToolStatusSuccess ToolStatus = "success"

	// ToolStatusAuthFailure means the backend rejected the credential.
	// The orchestrator may clear it with one forced re-resolution.
	ToolStatusAuthFailure ToolStatus = "auth_failure"

	// ToolStatusUnavailable means the backend could not be reached or
	// answered with a server fault. Retried once with the same credential.
	ToolStatusUnavailable ToolStatus = "unavailable"

	// ToolStatusMalformed means a response arrived but did not parse into
	// the expected shape. Surfaced immediately as a contract violation.
	ToolStatusMalformed ToolStatus = "malformed"
)

// ToolResult is the classified outcome of one tool invocation. Exactly one
// of Payload (success) or Reason (failure) is populated.
type ToolResult struct {
	// Status is the outcome classification.
	Status ToolStatus `json:"status"`

	// Payload is the extracted backend response. Populated only when
	// Status is [ToolStatusSuccess].
	Payload string `json:"payload,omitempty"`

	// Reason describes the failure for operators. Populated only on
	// failure statuses and never carries bearer material.
	Reason string `json:"reason,omitempty"`
}

// OK reports whether the invocation succeeded.
func (r *ToolResult) OK() bool {
	return r.Status == ToolStatusSuccess
}

// NewToolSuccess creates a success result carrying payload.
func NewToolSuccess(payload string) *ToolResult {
	return &ToolResult{Status: ToolStatusSuccess, Payload: payload}
}

// NewToolFailure creates a failure result of the given status. status must
// not be [ToolStatusSuccess].
func NewToolFailure(status ToolStatus, reason string) *ToolResult {
	return &ToolResult{Status: status, Reason: reason}
}
