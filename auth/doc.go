// Copyright 2025 The Healthmate CoachAI Authors
// SPDX-License-Identifier: Apache-2.0

// Package auth resolves bearer credentials for gateway invocations.
//
// Two strategies implement the shared [types.CredentialResolver] contract,
// so either can be swapped without touching the orchestrator:
//
//   - [Passthrough]: structural decode of a pre-issued three-part bearer
//     token from the inbound request. No signature verification; the
//     verifying party is the upstream gateway. Yields the token subject
//     as the caller identifier.
//   - [M2M]: machine-to-machine acquisition through the identity
//     provider's client-credentials flow, keyed by (provider, scope-set).
//
// # Caching Discipline
//
// Machine credentials live in a process-wide [TokenCache]. Reads of a
// fresh entry take a shared lock; the fill-on-miss path is single-flight
// per key, so concurrent resolutions for one key collapse into a single
// provider acquisition whose result all waiters share. Acquisitions run on
// a context detached from the triggering caller: one caller's cancellation
// must not abort a result other waiters depend on.
//
// Every read returns a defensive copy. Cached entries expire
// [types.ExpirySkew] ahead of their nominal expiry, so a credential with a
// known expiry is never handed to the gateway after it lapsed.
//
// # Failure Handling
//
// All failures are [*types.AuthError] values: malformed inbound tokens are
// never retried, provider_unavailable is retried once with a short backoff
// under the single-flight slot, and denied is terminal for the turn. Raw
// bearer values never appear in logs or error text; operator previews go
// through [logging.RedactToken].
package auth
