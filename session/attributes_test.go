// Copyright 2025 The Healthmate CoachAI Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"errors"
	"strings"
	"testing"
)

const validSessionID = "healthmate-chat-0123456789abcdef0123456789abcdef"

func TestAttributesValidate(t *testing.T) {
	t.Parallel()

	attrs := &Attributes{
		SessionID: validSessionID,
		Bearer:    "eyJ.test.token",
		Timezone:  "Asia/Tokyo",
		Language:  "ja",
	}
	if err := attrs.Validate(); err != nil {
		t.Errorf("Validate() returned unexpected error: %v", err)
	}
}

func TestAttributesValidateMissingBearer(t *testing.T) {
	t.Parallel()

	attrs := &Attributes{SessionID: validSessionID}
	if err := attrs.Validate(); !errors.Is(err, ErrMissingBearer) {
		t.Errorf("Validate() = %v, want ErrMissingBearer", err)
	}
}

func TestAttributesValidateMissingSessionID(t *testing.T) {
	t.Parallel()

	attrs := &Attributes{Bearer: "eyJ.test.token"}
	if err := attrs.Validate(); !errors.Is(err, ErrMissingSessionID) {
		t.Errorf("Validate() = %v, want ErrMissingSessionID", err)
	}
}

func TestAttributesValidateShortSessionID(t *testing.T) {
	t.Parallel()

	attrs := &Attributes{SessionID: "healthmate-chat-1", Bearer: "eyJ.test.token"}
	err := attrs.Validate()
	if err == nil {
		t.Fatal("Validate() expected error for short session id, got nil")
	}
	if !strings.Contains(err.Error(), "17文字") {
		t.Errorf("error %q does not report the actual length", err)
	}
	if strings.Contains(err.Error(), "eyJ") {
		t.Errorf("error %q leaks the bearer token", err)
	}
}

func TestAttributesValidateOrder(t *testing.T) {
	t.Parallel()

	// Both required fields missing: the bearer is reported first.
	attrs := &Attributes{}
	if err := attrs.Validate(); !errors.Is(err, ErrMissingBearer) {
		t.Errorf("Validate() = %v, want ErrMissingBearer first", err)
	}
}

func TestAttributesNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		attrs        Attributes
		wantTimezone string
		wantLanguage string
	}{
		{
			name:         "defaults applied",
			attrs:        Attributes{SessionID: validSessionID, Bearer: "tok"},
			wantTimezone: "Asia/Tokyo",
			wantLanguage: "ja",
		},
		{
			name:         "existing values kept",
			attrs:        Attributes{SessionID: validSessionID, Bearer: "tok", Timezone: "Europe/Paris", Language: "fr"},
			wantTimezone: "Europe/Paris",
			wantLanguage: "fr",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			attrs := tt.attrs
			attrs.Normalize()

			if attrs.Timezone != tt.wantTimezone {
				t.Errorf("Timezone = %q, want %q", attrs.Timezone, tt.wantTimezone)
			}
			if attrs.Language != tt.wantLanguage {
				t.Errorf("Language = %q, want %q", attrs.Language, tt.wantLanguage)
			}
		})
	}
}
