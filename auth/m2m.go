// Copyright 2025 The Healthmate CoachAI Authors
// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/healthmate-ai/coachai-go/types"
)

// defaultRetryBackoff separates the two acquisition attempts after a
// provider_unavailable failure.
const defaultRetryBackoff = 500 * time.Millisecond

// M2M resolves machine-to-machine credentials for a fixed (provider,
// scope-set) key. Lookups go through the process-wide [TokenCache];
// acquisition happens through the injected [types.TokenProvider] under the
// cache's single-flight slot.
type M2M struct {
	provider string
	scopes   []string
	cache    *TokenCache
	tokens   types.TokenProvider

	logger       *slog.Logger
	retryBackoff time.Duration
}

var _ types.CredentialResolver = (*M2M)(nil)

// M2MOption configures an [M2M] resolver.
type M2MOption func(*M2M)

// WithM2MLogger sets the logger. Defaults to [slog.Default].
func WithM2MLogger(logger *slog.Logger) M2MOption {
	return func(m *M2M) {
		m.logger = logger
	}
}

// WithRetryBackoff sets the pause before the one retry allowed after a
// provider_unavailable failure.
func WithRetryBackoff(d time.Duration) M2MOption {
	return func(m *M2M) {
		m.retryBackoff = d
	}
}

// NewM2M returns a machine-to-machine resolver bound to one provider and
// scope set. All resolvers sharing a cache share its single-flight
// discipline.
func NewM2M(provider string, scopes []string, cache *TokenCache, tokens types.TokenProvider, opts ...M2MOption) *M2M {
	m := &M2M{
		provider:     provider,
		scopes:       scopes,
		cache:        cache,
		tokens:       tokens,
		logger:       slog.Default(),
		retryBackoff: defaultRetryBackoff,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Source implements [types.CredentialResolver].
func (m *M2M) Source() types.CredentialSource {
	return types.CredentialSourceM2M
}

// Resolve implements [types.CredentialResolver].
//
// force discards the cached entry for this resolver's key before the
// lookup, which is how the orchestrator clears a backend auth rejection.
func (m *M2M) Resolve(ctx context.Context, force bool) (*types.Credential, error) {
	key := CacheKey(m.provider, m.scopes)
	if force {
		m.logger.InfoContext(ctx, "forcing credential re-acquisition",
			slog.String("provider", m.provider),
		)
		m.cache.Invalidate(key)
	}

	cred, err := m.cache.Fill(ctx, key, m.acquire)
	if err != nil {
		if _, ok := types.AsAuthError(err); ok {
			return nil, err
		}
		return nil, fmt.Errorf("fill credential cache: %w", err)
	}
	return cred, nil
}

// acquire performs the provider exchange, retrying once with backoff when
// the provider is unavailable. It runs under the cache's single-flight
// slot on a detached context, so the retry benefits every waiter.
func (m *M2M) acquire(ctx context.Context) (*types.Credential, error) {
	cred, err := m.tokens.AcquireToken(ctx, m.provider, m.scopes)
	if err == nil {
		m.logCredential(ctx, cred)
		return cred, nil
	}

	ae, ok := types.AsAuthError(err)
	if !ok || ae.Reason != types.AuthProviderUnavailable {
		return nil, err
	}

	m.logger.WarnContext(ctx, "identity provider unavailable, retrying once",
		slog.String("provider", m.provider),
		slog.Duration("backoff", m.retryBackoff),
	)
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(m.retryBackoff):
	}

	cred, err = m.tokens.AcquireToken(ctx, m.provider, m.scopes)
	if err != nil {
		return nil, err
	}
	m.logCredential(ctx, cred)
	return cred, nil
}

func (m *M2M) logCredential(ctx context.Context, cred *types.Credential) {
	m.logger.InfoContext(ctx, "acquired machine credential",
		slog.String("provider", m.provider),
		slog.Int("scopes", len(m.scopes)),
		slog.Time("expiresAt", cred.ExpiresAt),
	)
}
