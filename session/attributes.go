// Copyright 2025 The Healthmate CoachAI Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"errors"
	"fmt"

	"github.com/healthmate-ai/coachai-go/config"
	"github.com/healthmate-ai/coachai-go/memory"
)

// Attributes are the session attributes of one inbound invocation, as the
// UI service sends them under sessionState.sessionAttributes.
type Attributes struct {
	// SessionID continues one conversation across invocations. Required,
	// at least [memory.MinSessionIDLen] characters.
	SessionID string `json:"session_id"`

	// Bearer is the caller's token, verified upstream by the platform.
	// Required; it authenticates the turn and carries the user id.
	Bearer string `json:"jwt_token"`

	// Timezone is the caller's IANA zone id. Optional.
	Timezone string `json:"timezone,omitempty"`

	// Language is the caller's preferred language code. Optional.
	Language string `json:"language,omitempty"`
}

// Validation messages are user-facing: the runtime streams them back to the
// chat verbatim, so they stay in Japanese like the rest of the product
// surface.
var (
	ErrMissingBearer    = errors.New("必須フィールド 'jwt_token' がペイロードに含まれていません。認証が必要です。")
	ErrMissingSessionID = errors.New("必須フィールド 'session_id' がペイロードに含まれていません。セッション管理が必要です。")
)

// Validate enforces the inbound contract. It reports the first violation in
// required-field order, matching what the UI service expects to display.
func (a *Attributes) Validate() error {
	if a.Bearer == "" {
		return ErrMissingBearer
	}
	if a.SessionID == "" {
		return ErrMissingSessionID
	}
	if len(a.SessionID) < memory.MinSessionIDLen {
		return fmt.Errorf("session_id の長さが不正です（%d文字）。%d文字以上が必要です。", len(a.SessionID), memory.MinSessionIDLen)
	}
	return nil
}

// Normalize fills the optional fields with their documented defaults.
func (a *Attributes) Normalize() {
	if a.Timezone == "" {
		a.Timezone = config.DefaultTimezone
	}
	if a.Language == "" {
		a.Language = config.DefaultLanguage
	}
}
