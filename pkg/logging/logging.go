// Copyright 2025 The Healthmate CoachAI Authors
// SPDX-License-Identifier: Apache-2.0

package logging

import (
	"context"
	"log/slog"
	"os"
)

// contextKey is how we find [*slog.Logger] in a [context.Context].
type contextKey struct{}

// NewContext returns a new [context.Context], derived from ctx, which carries the provided [*slog.Logger].
func NewContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext returns a [slog.Logger] from ctx.
//
// If no [*slog.Logger] is found, this returns a logger writing JSON to stdout at [slog.LevelInfo].
func FromContext(ctx context.Context) *slog.Logger {
	if v := ctx.Value(contextKey{}); v != nil {
		return v.(*slog.Logger)
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// redactKeep is how many leading characters of a token survive redaction.
const redactKeep = 8

// RedactToken returns an operator-safe preview of a bearer token: the first
// few characters followed by an ellipsis. Tokens shorter than the preview
// are fully masked. The full value must never reach a log record or error
// message; every log site that mentions a token goes through this helper.
func RedactToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= redactKeep {
		return "********"
	}
	return token[:redactKeep] + "..."
}
