// Copyright 2025 The Healthmate CoachAI Authors
// SPDX-License-Identifier: Apache-2.0

package callercontext

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/healthmate-ai/coachai-go/types"
)

// Enricher derives the per-turn caller context: the caller's identity, the
// wall-clock time in the caller's timezone and the language the answer
// should be written in.
//
// Enrichment never fails a turn. Anything missing or unresolvable falls
// back to the configured defaults, so a caller with a broken timezone still
// gets coached, just on Tokyo time.
type Enricher struct {
	defaultZone     *time.Location
	defaultLanguage string
	now             func() time.Time
	logger          *slog.Logger
}

// Option configures an [Enricher].
type Option func(*Enricher)

// WithDefaultZone replaces the fallback timezone, normally Asia/Tokyo.
func WithDefaultZone(loc *time.Location) Option {
	return func(e *Enricher) {
		if loc != nil {
			e.defaultZone = loc
		}
	}
}

// WithDefaultLanguage replaces the fallback language code.
func WithDefaultLanguage(code string) Option {
	return func(e *Enricher) {
		if code != "" {
			e.defaultLanguage = strings.ToLower(code)
		}
	}
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Enricher) {
		e.now = now
	}
}

// WithLogger replaces the enricher logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Enricher) {
		e.logger = logger
	}
}

// NewEnricher creates an enricher with Asia/Tokyo and Japanese defaults.
func NewEnricher(opts ...Option) *Enricher {
	e := &Enricher{
		defaultZone:     tokyo(),
		defaultLanguage: "ja",
		now:             time.Now,
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Enrich builds the caller context for one turn. The credential decides the
// caller identity: a passthrough credential carries the authenticated
// subject, a machine credential says nothing about the user, so the session
// actor id is used instead.
func (e *Enricher) Enrich(ctx context.Context, turn *types.Turn, cred *types.Credential) *types.CallerContext {
	loc := e.zone(ctx, turn.Timezone)

	lang := strings.ToLower(turn.Language)
	if lang == "" {
		lang = e.defaultLanguage
	}

	return &types.CallerContext{
		CallerID:     callerID(turn, cred),
		ZoneID:       loc.String(),
		Now:          e.now().In(loc),
		Language:     lang,
		LanguageName: LanguageName(lang),
	}
}

// zone resolves the requested timezone, falling back to the default zone
// when the id is empty or unknown. The instant is never changed, only the
// zone it is rendered in.
func (e *Enricher) zone(ctx context.Context, id string) *time.Location {
	if id == "" {
		return e.defaultZone
	}
	loc, err := time.LoadLocation(id)
	if err != nil {
		e.logger.WarnContext(ctx, "unknown timezone, using default",
			slog.String("timezone", id),
			slog.String("default", e.defaultZone.String()),
		)
		return e.defaultZone
	}
	return loc
}

func callerID(turn *types.Turn, cred *types.Credential) string {
	if cred != nil && cred.Source == types.CredentialSourcePassthrough && cred.Subject != "" {
		return cred.Subject
	}
	return turn.ActorID
}

// tokyo returns the Asia/Tokyo location, degrading to a fixed JST offset on
// hosts without tzdata.
func tokyo() *time.Location {
	loc, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		return time.FixedZone("JST", 9*60*60)
	}
	return loc
}
