// Copyright 2025 The Healthmate CoachAI Authors
// SPDX-License-Identifier: Apache-2.0

package types

import "time"

// CallerContext is the enriched ambient context attached to every tool
// invocation and to the reasoning step that follows.
//
// Enrichment is advisory rather than safety-critical: an unresolvable
// timezone falls closed to the configured default zone instead of failing
// the turn.
type CallerContext struct {
	// CallerID is the stable caller identifier. For pass-through
	// credentials it is the decoded token subject; for machine
	// credentials it comes from session metadata, never from the
	// credential itself.
	CallerID string `json:"callerId"`

	// ZoneID is the IANA timezone identifier that was actually applied,
	// which is the default zone after a fallback.
	ZoneID string `json:"zoneId"`

	// Now is the caller's current wall-clock time in ZoneID.
	Now time.Time `json:"now"`

	// Language is the caller's language code, e.g. "ja".
	Language string `json:"language"`

	// LanguageName is the human-readable name for Language, e.g. "日本語".
	LanguageName string `json:"languageName"`
}
