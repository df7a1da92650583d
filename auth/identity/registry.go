// Copyright 2025 The Healthmate CoachAI Authors
// SPDX-License-Identifier: Apache-2.0

package identity

import (
	"context"
	"fmt"
	"sync"

	"github.com/healthmate-ai/coachai-go/internal/xmaps"
	"github.com/healthmate-ai/coachai-go/types"
)

// Provider acquires a machine credential from one identity provider.
type Provider interface {
	// Acquire performs a single client-credentials exchange for scopes.
	Acquire(ctx context.Context, scopes []string) (*types.Credential, error)
}

// Registry routes acquisition requests to named [Provider] instances and
// implements [types.TokenProvider]. Providers are registered once at
// startup; lookups are safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

var _ types.TokenProvider = (*Registry)(nil)

// NewRegistry returns an empty [Registry].
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]Provider),
	}
}

// Register registers a provider instance under name, replacing any
// previous registration.
func (r *Registry) Register(name string, provider Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[name] = provider
}

// AcquireToken implements [types.TokenProvider]. An unknown provider name
// is a denial: no endpoint exists that could ever grant the request.
func (r *Registry) AcquireToken(ctx context.Context, provider string, scopes []string) (*types.Credential, error) {
	r.mu.RLock()
	known := xmaps.Contains(r.providers, provider)
	p := r.providers[provider]
	r.mu.RUnlock()

	if !known {
		return nil, types.NewAuthError(types.AuthDenied, types.CredentialSourceM2M,
			fmt.Errorf("unknown identity provider %q", provider))
	}
	return p.Acquire(ctx, scopes)
}
