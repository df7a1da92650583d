// Copyright 2025 The Healthmate CoachAI Authors
// SPDX-License-Identifier: Apache-2.0

// Package gateway speaks JSON-RPC 2.0 to the health-manager tool gateway.
//
// The gateway fronts every remote tool the coaching agent can use. This
// package owns the wire protocol and nothing else: it does not decide which
// credential to send or whether a failed call should be retried with a fresh
// one. Those decisions belong to the orchestrator.
//
// # Invoking a Tool
//
//	client := gateway.NewClient(gateway.Endpoint(cfg.GatewayID, cfg.Region))
//
//	call := types.NewToolCall("get_health_summary",
//		types.ToolParam{Name: "user_id", Value: "user-123"},
//	)
//	result, err := client.Invoke(ctx, call, cred)
//	if err != nil {
//		// the call itself was malformed; nothing reached the gateway
//	}
//	if !result.OK() {
//		// result.Status says what went wrong and whether retrying can help
//	}
//
// # Failure Classification
//
// Every exchange ends in exactly one [types.ToolStatus]:
//
//   - 401 and 403 responses are auth failures. The credential was refused.
//   - Connection faults, timeouts, 404 and 5xx responses mean the backend is
//     unavailable. [Client.Invoke] retries these once with the same
//     credential before reporting.
//   - Bodies that do not decode as JSON-RPC, and protocol-level error codes,
//     are malformed. Retrying cannot fix a contract violation, so the client
//     never does.
//
// Transport classification is data, not error values: a turn aggregates
// several calls and the orchestrator needs all outcomes, not the first
// failure.
package gateway
