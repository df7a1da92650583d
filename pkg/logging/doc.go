// Copyright 2025 The Healthmate CoachAI Authors
// SPDX-License-Identifier: Apache-2.0

// Package logging provides context-based structured logging on Go's
// standard slog package, plus the token redaction helper used everywhere a
// credential value could otherwise reach a log record.
//
// # Basic Usage
//
// Creating a logger context:
//
//	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
//		Level: slog.LevelInfo,
//	}))
//
//	ctx := logging.NewContext(ctx, logger)
//
// Retrieving the logger from context:
//
//	logger := logging.FromContext(ctx)
//	logger.InfoContext(ctx, "turn completed", slog.String("sessionId", id))
//
// When no logger is found in the context, [FromContext] returns a default
// JSON logger that writes to stdout at [slog.LevelInfo].
//
// # Token Redaction
//
// Bearer tokens and client secrets never appear whole in a log record or an
// error message. Log the [RedactToken] preview instead of the value:
//
//	logger.DebugContext(ctx, "resolved credential",
//		slog.String("token", logging.RedactToken(cred.Token)),
//	)
package logging
