// Copyright 2025 The Healthmate CoachAI Authors
// SPDX-License-Identifier: Apache-2.0

package pool

import (
	"bytes"
	"strings"
	"sync"
)

// Pool is a generics wrapper around [sync.Pool] to provide strongly-typed
// object pooling.
type Pool[T any] struct {
	pool sync.Pool
}

// New returns a new [Pool] for T, and will use fn to construct new T's when
// the pool is empty.
func New[T any](fn func() T) *Pool[T] {
	return &Pool[T]{
		pool: sync.Pool{
			New: func() any {
				return fn()
			},
		},
	}
}

// Get gets a T from the pool, or creates a new one if the pool is empty.
func (p *Pool[T]) Get() T {
	return p.pool.Get().(T)
}

// Put returns x into the pool.
func (p *Pool[T]) Put(x T) {
	p.pool.Put(x)
}

var (
	buffers  = New(func() *bytes.Buffer { return &bytes.Buffer{} })
	builders = New(func() *strings.Builder { return &strings.Builder{} })
)

// GetBuffer returns an empty [*bytes.Buffer] from the shared pool. Return
// it with [PutBuffer] when done.
func GetBuffer() *bytes.Buffer {
	return buffers.Get()
}

// PutBuffer resets buf and returns it to the shared pool. buf must not be
// used afterwards.
func PutBuffer(buf *bytes.Buffer) {
	buf.Reset()
	buffers.Put(buf)
}

// GetBuilder returns an empty [*strings.Builder] from the shared pool.
// Return it with [PutBuilder] when done.
func GetBuilder() *strings.Builder {
	return builders.Get()
}

// PutBuilder resets sb and returns it to the shared pool. sb must not be
// used afterwards.
func PutBuilder(sb *strings.Builder) {
	sb.Reset()
	builders.Put(sb)
}
