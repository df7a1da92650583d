// Copyright 2025 The Healthmate CoachAI Authors
// SPDX-License-Identifier: Apache-2.0

// Package callercontext derives the ambient context a coaching turn is
// answered in: the caller's identity, local time and response language.
//
// Every coaching turn is answered relative to the caller's own clock: meal
// advice at 07:00 JST is not meal advice at 07:00 UTC. [Enricher.Enrich]
// resolves the caller's timezone and language from the session attributes
// and the caller identity from the resolved credential, producing the
// [types.CallerContext] the orchestrator threads through the rest of the
// turn.
//
// Resolution is fail-closed: an unknown timezone or language never aborts a
// turn, it degrades to the configured defaults. The host's local zone is
// never used.
package callercontext
