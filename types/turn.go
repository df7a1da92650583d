// Copyright 2025 The Healthmate CoachAI Authors
// SPDX-License-Identifier: Apache-2.0

package types

// TurnState is a state of the per-turn invocation state machine.
//
// Transitions:
//
//	Idle → ResolvingCredential → Enriching → Invoking → {Succeeded, Degraded, Failed}
//
// ResolvingCredential may also move straight to Failed when every
// resolution attempt, including the one allowed re-acquisition, exhausts.
type TurnState string

const (
	// TurnStateIdle is the initial state before the turn starts.
	TurnStateIdle TurnState = "idle"

	// TurnStateResolvingCredential covers credential resolution.
	TurnStateResolvingCredential TurnState = "resolving_credential"

	// TurnStateEnriching covers caller-context enrichment. Enrichment is
	// best-effort and never fails the turn.
	TurnStateEnriching TurnState = "enriching"

	// TurnStateInvoking covers the gateway invocations.
	TurnStateInvoking TurnState = "invoking"

	// TurnStateSucceeded means every requested invocation succeeded.
	TurnStateSucceeded TurnState = "succeeded"

	// TurnStateDegraded means partial data is available: at least one
	// invocation failed but the turn can proceed with reduced information.
	TurnStateDegraded TurnState = "degraded"

	// TurnStateFailed means the turn produced no usable result.
	TurnStateFailed TurnState = "failed"
)

// Terminal reports whether the state ends the turn.
func (s TurnState) Terminal() bool {
	switch s {
	case TurnStateSucceeded, TurnStateDegraded, TurnStateFailed:
		return true
	}
	return false
}

// Turn is one user/agent turn handed to the orchestrator. Each inbound
// request becomes exactly one Turn; turns are independent except for the
// process-wide credential cache.
type Turn struct {
	// SessionID identifies the conversation session. At least 33
	// characters; validated at the hosting surface.
	SessionID string `json:"sessionId"`

	// ActorID identifies the end user for memory addressing. Derived from
	// the pass-through token subject when available.
	ActorID string `json:"actorId,omitempty"`

	// Prompt is the user utterance for this turn.
	Prompt string `json:"prompt,omitempty"`

	// Bearer is the raw inbound pass-through token. Never logged.
	Bearer string `json:"-"`

	// Timezone is the caller's requested IANA zone id.
	Timezone string `json:"timezone,omitempty"`

	// Language is the caller's language code.
	Language string `json:"language,omitempty"`

	// Calls are the tool invocations requested for this turn.
	Calls []*ToolCall `json:"toolCalls,omitempty"`
}

// TurnStage labels a progress event emitted while a turn runs.
type TurnStage string

const (
	// TurnStageStart is emitted once when the turn begins.
	TurnStageStart TurnStage = "start"

	// TurnStageToolUse is emitted before each tool invocation.
	TurnStageToolUse TurnStage = "tool_use"

	// TurnStageComplete is emitted when the turn reaches Succeeded or
	// Degraded.
	TurnStageComplete TurnStage = "complete"

	// TurnStageError is emitted when the turn fails.
	TurnStageError TurnStage = "error"
)

// TurnEvent is one progress event in a turn's event stream. The JSON field
// names follow the hosting surface's progress envelope.
type TurnEvent struct {
	// Stage labels the event.
	Stage TurnStage `json:"stage"`

	// Message is a short, user-presentable progress note. Never carries
	// credential or token detail.
	Message string `json:"message"`

	// ToolName is set on [TurnStageToolUse] events.
	ToolName string `json:"tool_name,omitempty"`

	// Outcome rides on the final complete/error event only. It is not part
	// of the progress envelope.
	Outcome *TurnOutcome `json:"-"`
}

// Final reports whether the event carries the turn outcome.
func (e *TurnEvent) Final() bool {
	return e.Outcome != nil
}

// ToolOutcome pairs one requested call with its classified result.
type ToolOutcome struct {
	Call   *ToolCall   `json:"call"`
	Result *ToolResult `json:"result"`
}

// TurnOutcome is the aggregated terminal report for one turn.
//
// On [TurnStateFailed] the Message is a generic service-unavailable note:
// credential and token detail never reaches the caller.
type TurnOutcome struct {
	// State is the terminal state, one of Succeeded, Degraded or Failed.
	State TurnState `json:"state"`

	// Outcomes lists per-tool results in invocation order.
	Outcomes []*ToolOutcome `json:"outcomes,omitempty"`

	// FailedTools names the tools that did not succeed, so the caller can
	// qualify its response.
	FailedTools []string `json:"failedTools,omitempty"`

	// Context is the enriched caller context used for the turn.
	Context *CallerContext `json:"context,omitempty"`

	// PromptContext is the rendered ambient-context block for the
	// reasoning layer's system prompt.
	PromptContext string `json:"promptContext,omitempty"`

	// Message is the user-facing summary for Degraded and Failed outcomes.
	Message string `json:"message,omitempty"`
}

// Succeeded reports whether every invocation succeeded.
func (o *TurnOutcome) Succeeded() bool {
	return o.State == TurnStateSucceeded
}
