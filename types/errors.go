// Copyright 2025 The Healthmate CoachAI Authors
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"errors"
	"fmt"
)

// ConfigurationError reports a fatal configuration problem detected at
// startup. The process must refuse to start rather than substitute a
// fallback value.
type ConfigurationError struct {
	// Field is the configuration key that failed validation.
	Field string

	// Reason describes why the value was rejected.
	Reason string
}

var _ error = (*ConfigurationError)(nil)

// Error returns a string representation of the [ConfigurationError].
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s: %s", e.Field, e.Reason)
}

// NewConfigurationError creates a [ConfigurationError] for the given field.
func NewConfigurationError(field, reason string) *ConfigurationError {
	return &ConfigurationError{Field: field, Reason: reason}
}

// AsConfigurationError reports whether err is (or wraps) a [ConfigurationError].
func AsConfigurationError(err error) (*ConfigurationError, bool) {
	var ce *ConfigurationError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// AuthErrorReason classifies credential resolution failures.
type AuthErrorReason string

const (
	// AuthMalformed indicates the inbound credential material could not be
	// structurally decoded. Not retried.
	AuthMalformed AuthErrorReason = "malformed"

	// AuthProviderUnavailable indicates the identity provider could not be
	// reached or answered with a server fault. Retried once with backoff.
	AuthProviderUnavailable AuthErrorReason = "provider_unavailable"

	// AuthDenied indicates the identity provider rejected the request. The
	// credentials are invalid rather than expired, so no automatic retry.
	AuthDenied AuthErrorReason = "denied"
)

// AuthError reports a credential resolution failure. It is recoverable at
// the turn level: the orchestrator converts it into a turn outcome rather
// than letting it escape to the caller.
//
// AuthError messages never carry raw bearer material.
type AuthError struct {
	// Reason is the failure classification.
	Reason AuthErrorReason

	// Source identifies which resolution strategy failed.
	Source CredentialSource

	// Hint is an optional operator-facing note. Never contains token bytes.
	Hint string

	err error
}

var _ error = (*AuthError)(nil)

// Error returns a string representation of the [AuthError].
func (e *AuthError) Error() string {
	msg := fmt.Sprintf("auth: %s credential resolution failed: %s", e.Source, e.Reason)
	if e.Hint != "" {
		msg += ": " + e.Hint
	}
	return msg
}

// Unwrap returns the underlying cause, if any.
func (e *AuthError) Unwrap() error {
	return e.err
}

// NewAuthError creates an [AuthError] wrapping err. err may be nil.
func NewAuthError(reason AuthErrorReason, source CredentialSource, err error) *AuthError {
	return &AuthError{Reason: reason, Source: source, err: err}
}

// AsAuthError reports whether err is (or wraps) an [AuthError].
func AsAuthError(err error) (*AuthError, bool) {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}
