// Copyright 2025 The Healthmate CoachAI Authors
// SPDX-License-Identifier: Apache-2.0

// Package pool provides strongly-typed object pooling for the invocation
// layer's hot paths: the gateway wire codec and the tool-catalog renderer
// both need a scratch buffer per call.
//
// The Get/Put pairs own the reset discipline:
//
//	buf := pool.GetBuffer()
//	defer pool.PutBuffer(buf)
package pool
