// Copyright 2025 The Healthmate CoachAI Authors
// SPDX-License-Identifier: Apache-2.0

package callercontext

import (
	"testing"
	"time"

	"github.com/healthmate-ai/coachai-go/types"
)

// fixedInstant is 2025-08-21T03:30:00Z: 12:30 Thursday in Tokyo, 23:30
// Wednesday of the previous day in New York.
var fixedInstant = time.Date(2025, 8, 21, 3, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedInstant }

func passthroughCredential(subject string) *types.Credential {
	return &types.Credential{
		Source:  types.CredentialSourcePassthrough,
		Token:   "inbound-token",
		Subject: subject,
	}
}

func TestEnrichLocalizesNow(t *testing.T) {
	t.Parallel()

	e := NewEnricher(WithClock(fixedClock))
	turn := &types.Turn{ActorID: "actor-1", Timezone: "America/New_York"}

	cc := e.Enrich(t.Context(), turn, nil)

	if cc.ZoneID != "America/New_York" {
		t.Errorf("ZoneID = %q, want America/New_York", cc.ZoneID)
	}
	if !cc.Now.Equal(fixedInstant) {
		t.Errorf("Now = %v, want the same instant as %v", cc.Now, fixedInstant)
	}
	if got := cc.Now.Hour(); got != 23 {
		t.Errorf("localized hour = %d, want 23", got)
	}
	if got := cc.Now.Day(); got != 20 {
		t.Errorf("localized day = %d, want 20", got)
	}
}

func TestEnrichUnknownZoneFailsClosed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		timezone string
	}{
		{name: "unknown zone", timezone: "Mars/Olympus_Mons"},
		{name: "garbage", timezone: "not a zone"},
		{name: "empty", timezone: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e := NewEnricher(WithClock(fixedClock))
			cc := e.Enrich(t.Context(), &types.Turn{ActorID: "actor-1", Timezone: tt.timezone}, nil)

			if cc.ZoneID != "Asia/Tokyo" {
				t.Errorf("ZoneID = %q, want the Asia/Tokyo default", cc.ZoneID)
			}
			if !cc.Now.Equal(fixedInstant) {
				t.Errorf("Now = %v, want the same instant as %v", cc.Now, fixedInstant)
			}
			if got := cc.Now.Hour(); got != 12 {
				t.Errorf("localized hour = %d, want 12 (Tokyo)", got)
			}
		})
	}
}

func TestEnrichCallerID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cred *types.Credential
		want string
	}{
		{
			name: "passthrough uses the token subject",
			cred: passthroughCredential("user-from-jwt"),
			want: "user-from-jwt",
		},
		{
			name: "passthrough without subject falls back to the actor",
			cred: passthroughCredential(""),
			want: "actor-from-session",
		},
		{
			name: "machine credential uses the actor",
			cred: &types.Credential{Source: types.CredentialSourceM2M, Token: "m2m", Subject: "service-account"},
			want: "actor-from-session",
		},
		{
			name: "no credential uses the actor",
			cred: nil,
			want: "actor-from-session",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e := NewEnricher(WithClock(fixedClock))
			cc := e.Enrich(t.Context(), &types.Turn{ActorID: "actor-from-session"}, tt.cred)

			if cc.CallerID != tt.want {
				t.Errorf("CallerID = %q, want %q", cc.CallerID, tt.want)
			}
		})
	}
}

func TestEnrichLanguage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		language string
		wantCode string
		wantName string
	}{
		{name: "default", language: "", wantCode: "ja", wantName: "日本語"},
		{name: "english", language: "en", wantCode: "en", wantName: "English"},
		{name: "uppercase normalized", language: "EN-US", wantCode: "en-us", wantName: "English (US)"},
		{name: "korean", language: "ko", wantCode: "ko", wantName: "한국어"},
		{name: "unknown code passes through", language: "tlh", wantCode: "tlh", wantName: "tlh"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e := NewEnricher(WithClock(fixedClock))
			cc := e.Enrich(t.Context(), &types.Turn{ActorID: "actor-1", Language: tt.language}, nil)

			if cc.Language != tt.wantCode {
				t.Errorf("Language = %q, want %q", cc.Language, tt.wantCode)
			}
			if cc.LanguageName != tt.wantName {
				t.Errorf("LanguageName = %q, want %q", cc.LanguageName, tt.wantName)
			}
		})
	}
}

func TestEnrichDefaultsOverridable(t *testing.T) {
	t.Parallel()

	utc := time.UTC
	e := NewEnricher(
		WithClock(fixedClock),
		WithDefaultZone(utc),
		WithDefaultLanguage("EN"),
	)

	cc := e.Enrich(t.Context(), &types.Turn{ActorID: "actor-1"}, nil)

	if cc.ZoneID != "UTC" {
		t.Errorf("ZoneID = %q, want UTC", cc.ZoneID)
	}
	if cc.Language != "en" {
		t.Errorf("Language = %q, want en", cc.Language)
	}
}
