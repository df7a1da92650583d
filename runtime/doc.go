// Copyright 2025 The Healthmate CoachAI Authors
// SPDX-License-Identifier: Apache-2.0

// Package runtime hosts the agent behind the chat UI contract.
//
// POST /invocations accepts one turn and answers with an NDJSON event
// stream: subAgentProgress envelopes while the turn runs, contentBlockDelta
// envelopes for the response text. GET /ping is the liveness probe.
//
// The surface is strict about the payload and forgiving about everything
// else: a body that is not JSON is the only HTTP error. Missing required
// session attributes, an invalid session id and turn failures all stream
// back as text deltas, because the caller is a chat UI that renders them in
// the conversation.
package runtime
