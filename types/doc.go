// Copyright 2025 The Healthmate CoachAI Authors
// SPDX-License-Identifier: Apache-2.0

// Package types provides the core data model and contracts of the CoachAI
// invocation layer.
//
// The types package defines the structures and interfaces that the auth,
// gateway, callercontext and agent packages exchange. It has no knowledge
// of transports or providers; every collaborator is expressed as a small
// interface so implementations can be swapped without touching the
// orchestration logic.
//
// # Core Interfaces
//
// Three contracts connect the invocation layer to its collaborators:
//
//	type CredentialResolver interface {
//		Resolve(ctx context.Context, force bool) (*Credential, error)
//		Source() CredentialSource
//	}
//
//	type TokenProvider interface {
//		AcquireToken(ctx context.Context, provider string, scopes []string) (*Credential, error)
//	}
//
//	type GatewayInvoker interface {
//		Invoke(ctx context.Context, call *ToolCall, cred *Credential) (*ToolResult, error)
//	}
//
// CredentialResolver has two implementations sharing one contract: the
// pass-through decoder and the machine-to-machine acquirer. TokenProvider
// is the identity-provider collaborator behind the M2M strategy.
// GatewayInvoker is the tool backend.
//
// # Credentials
//
// [Credential] carries an opaque bearer value plus its provenance and
// expiry. Token values never appear in logs or error text. [ExpirySkew]
// builds a safety margin into every freshness decision so credentials are
// re-acquired before the backend would start rejecting them.
//
// # Invocations and Outcomes
//
// [ToolCall] describes one requested invocation with ordered parameters;
// [ToolResult] classifies what the backend did (success, auth_failure,
// unavailable, malformed). Classification is data rather than error so the
// orchestrator can aggregate per-tool outcomes into a [TurnOutcome].
//
// # Turn State Machine
//
// [TurnState] enumerates the per-turn states:
//
//	Idle → ResolvingCredential → Enriching → Invoking → {Succeeded, Degraded, Failed}
//
// [TurnEvent] values are streamed while a turn runs; [TurnOutcome] is the
// terminal aggregate handed to the reasoning layer.
//
// # Error Taxonomy
//
//   - [ConfigurationError]: fatal at startup, the process refuses to start
//   - [AuthError]: recoverable at turn level, classified by [AuthErrorReason]
//   - backend faults: never errors, always [ToolResult] statuses
//
// Timezone resolution failures are absent from the taxonomy: the context
// enricher falls closed to the configured default zone and the turn
// proceeds.
package types
