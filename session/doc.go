// Copyright 2025 The Healthmate CoachAI Authors
// SPDX-License-Identifier: Apache-2.0

// Package session models the per-conversation attributes the UI service
// sends with every invocation.
//
// The UI owns the session: it generates the session id, refreshes the
// user's token and remembers the user's timezone and language. This process
// only validates that contract. [Attributes.Validate] enforces the required
// fields with user-facing Japanese messages, since a violation here is
// answered straight back to the chat stream; [Attributes.Normalize] fills
// the optional fields with the Tokyo-and-Japanese defaults.
package session
