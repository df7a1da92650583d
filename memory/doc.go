// Copyright 2025 The Healthmate CoachAI Authors
// SPDX-License-Identifier: Apache-2.0

// Package memory binds conversations to the long-term memory store.
//
// The store is a managed service reached through the gateway; this process
// never touches its contents. What it does own is the [Binding]: the memory
// id from deployment configuration, the session id from the UI and the
// actor id from the authenticated token. [NewBinding] rejects ids that the
// store would refuse anyway, with every violation reported in one error.
//
// There is no fallback store. A turn without a valid binding fails instead
// of silently coaching with amnesia.
package memory
