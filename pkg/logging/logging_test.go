// Copyright 2025 The Healthmate CoachAI Authors
// SPDX-License-Identifier: Apache-2.0

package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	ctx := NewContext(t.Context(), logger)
	got := FromContext(ctx)

	if got != logger {
		t.Error("FromContext returned a different logger than NewContext stored")
	}
}

func TestFromContextFallback(t *testing.T) {
	if got := FromContext(t.Context()); got == nil {
		t.Fatal("FromContext returned nil for a bare context")
	}
}

func TestRedactToken(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  string
	}{
		{
			name:  "empty",
			token: "",
			want:  "",
		},
		{
			name:  "short token fully masked",
			token: "abc123",
			want:  "********",
		},
		{
			name:  "long token keeps a short preview",
			token: "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9",
			want:  "eyJhbGci...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RedactToken(tt.token); got != tt.want {
				t.Errorf("RedactToken(%q) = %q, want %q", tt.token, got, tt.want)
			}
		})
	}
}

func TestRedactTokenNeverEchoesFullValue(t *testing.T) {
	token := "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.payload.signature"
	preview := RedactToken(token)

	if strings.Contains(preview, token) {
		t.Errorf("RedactToken leaked the full token: %q", preview)
	}
	if len(preview) >= len(token) {
		t.Errorf("preview %q is not shorter than the token", preview)
	}
}
