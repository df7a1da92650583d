// Copyright 2025 The Healthmate CoachAI Authors
// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/healthmate-ai/coachai-go/types"
)

// signToken builds a real three-part token for decode tests. The signing
// key is irrelevant: resolution never verifies signatures.
func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return tok
}

func TestPassthroughResolveDeterminism(t *testing.T) {
	bearer := signToken(t, jwt.MapClaims{
		"sub": "user-42",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	p := NewPassthrough(bearer)

	first, err := p.Resolve(t.Context(), false)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	second, err := p.Resolve(t.Context(), false)
	if err != nil {
		t.Fatalf("Resolve (second): %v", err)
	}

	if first.Subject != "user-42" || second.Subject != "user-42" {
		t.Errorf("subjects = %q, %q, want user-42 twice", first.Subject, second.Subject)
	}
	if first.Source != types.CredentialSourcePassthrough {
		t.Errorf("Source = %q, want %q", first.Source, types.CredentialSourcePassthrough)
	}
	if first.Token != bearer {
		t.Error("credential does not carry the inbound bearer")
	}
	if first.ExpiresAt.IsZero() {
		t.Error("ExpiresAt not populated from the exp claim")
	}
}

func TestPassthroughResolveMalformed(t *testing.T) {
	tests := []struct {
		name   string
		bearer string
	}{
		{name: "empty", bearer: ""},
		{name: "not a token", bearer: "definitely-not-a-jwt"},
		{name: "two segments", bearer: "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiJ4In0"},
		{name: "garbage payload", bearer: "eyJhbGciOiJIUzI1NiJ9.!!!not-base64!!!.sig"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPassthrough(tt.bearer)

			cred, err := p.Resolve(t.Context(), false)
			if cred != nil {
				t.Error("Resolve returned a credential for malformed input")
			}
			ae, ok := types.AsAuthError(err)
			if !ok {
				t.Fatalf("error = %T (%v), want *types.AuthError", err, err)
			}
			if ae.Reason != types.AuthMalformed {
				t.Errorf("Reason = %q, want %q", ae.Reason, types.AuthMalformed)
			}
			if tt.bearer != "" && strings.Contains(err.Error(), tt.bearer) {
				t.Errorf("error text leaks the raw token: %q", err.Error())
			}
		})
	}
}

func TestPassthroughResolveMissingSubject(t *testing.T) {
	bearer := signToken(t, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	p := NewPassthrough(bearer)

	_, err := p.Resolve(t.Context(), false)
	ae, ok := types.AsAuthError(err)
	if !ok {
		t.Fatalf("error = %v, want *types.AuthError", err)
	}
	if ae.Reason != types.AuthMalformed {
		t.Errorf("Reason = %q, want %q", ae.Reason, types.AuthMalformed)
	}
}

func TestPassthroughResolveExpired(t *testing.T) {
	bearer := signToken(t, jwt.MapClaims{
		"sub": "user-42",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	p := NewPassthrough(bearer)

	_, err := p.Resolve(t.Context(), false)
	ae, ok := types.AsAuthError(err)
	if !ok {
		t.Fatalf("error = %v, want *types.AuthError", err)
	}
	if ae.Reason != types.AuthDenied {
		t.Errorf("Reason = %q, want %q: expired tokens cannot be re-acquired here", ae.Reason, types.AuthDenied)
	}
	if strings.Contains(err.Error(), bearer) {
		t.Errorf("error text leaks the raw token: %q", err.Error())
	}
}
