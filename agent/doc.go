// Copyright 2025 The Healthmate CoachAI Authors
// SPDX-License-Identifier: Apache-2.0

// Package agent orchestrates one conversation turn end to end: credential
// resolution, caller-context enrichment, gateway tool invocation and
// outcome aggregation.
//
// [Orchestrator] is the single entry point. It is stateless across turns;
// the only process-wide state is the credential cache inside the resolver
// it was built with, so one orchestrator instance serves concurrent turns.
//
// # Running a Turn
//
// Turns stream progress events via iter.Seq2 iterators:
//
//	orch := agent.New(gatewayClient, cfg.MemoryID,
//		agent.WithMachineResolver(m2m),
//		agent.WithToolLister(gatewayClient),
//		agent.WithEnvironment(cfg.Environment),
//	)
//
//	for event, err := range orch.Run(ctx, turn) {
//		if err != nil {
//			// caller misuse or cancellation; the turn emitted no outcome
//			return err
//		}
//		stream(event)
//		if event.Final() {
//			outcome = event.Outcome
//		}
//	}
//
// [Orchestrator.RunTurn] drains the stream and returns the outcome directly
// when the caller does not need progress events.
//
// # Turn Lifecycle
//
// A turn moves through resolving_credential, enriching and invoking before
// landing on exactly one terminal state:
//
//   - succeeded: every requested invocation returned a payload
//   - degraded: at least one invocation succeeded, or every failure was
//     marked optional
//   - failed: credential resolution was denied, a required call's auth
//     failure survived the one forced re-resolution, or nothing succeeded
//
// Enrichment never blocks the turn; unknown timezones fall back to the
// default zone inside [callercontext.Enricher].
//
// # Credential Handling
//
// The inbound bearer is always decoded for the caller identity. When a
// machine resolver is configured the gateway sees the machine credential
// instead of the caller's token. On an auth_failure result the orchestrator
// forces one credential re-resolution and retries the call once; a second
// rejection on a required call fails the turn without attempting the
// remaining calls. Failed outcomes carry a generic service message, never
// credential detail.
package agent
