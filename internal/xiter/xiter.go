// Copyright 2025 The Healthmate CoachAI Authors
// SPDX-License-Identifier: Apache-2.0

// Package xiter contains additional stdlib [iter] functionality for the
// turn event streams.
package xiter

import (
	"iter"
)

// Fail returns a sequence that yields only err. Event-stream producers hand
// it back when a run cannot start at all.
func Fail[T any](err error) iter.Seq2[*T, error] {
	return func(yield func(*T, error) bool) {
		yield(nil, err)
	}
}
