// Copyright 2025 The Healthmate CoachAI Authors
// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"context"
	"crypto/sha256"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/go-json-experiment/json"
	deepcopy "github.com/tiendc/go-deepcopy"
	"golang.org/x/sync/singleflight"

	"github.com/healthmate-ai/coachai-go/types"
)

// defaultAcquireTimeout bounds one detached token acquisition.
const defaultAcquireTimeout = 30 * time.Second

// CacheKey derives the process-wide cache key for a (provider, scopes)
// pair: the canonical JSON of the pair hashed with SHA-256, prefixed with
// the provider name for log readability. Scope order does not matter.
func CacheKey(provider string, scopes []string) string {
	sorted := slices.Clone(scopes)
	slices.Sort(sorted)

	keyJSON, err := json.Marshal(struct {
		Provider string   `json:"provider"`
		Scopes   []string `json:"scopes"`
	}{
		Provider: provider,
		Scopes:   sorted,
	})
	if err != nil {
		panic(fmt.Errorf("marshal cache key: %w", err))
	}
	hash := sha256.Sum256(keyJSON)

	return fmt.Sprintf("%s_%x", provider, hash[:4])
}

// TokenCache is the process-wide store for machine credentials, keyed by
// [CacheKey]. Reads of a fresh entry take a shared lock; fill-on-miss runs
// under a single-flight slot per key so concurrent resolutions collapse
// into one acquisition whose result every waiter receives.
//
// The cache never hands out its internal pointers: every read returns a
// defensive copy, so callers cannot mutate cached state.
type TokenCache struct {
	mu      sync.RWMutex
	entries map[string]*types.Credential
	group   singleflight.Group

	acquireTimeout time.Duration
	now            func() time.Time
}

// TokenCacheOption configures a [TokenCache].
type TokenCacheOption func(*TokenCache)

// WithAcquireTimeout bounds one token acquisition. The default is 30 seconds.
func WithAcquireTimeout(d time.Duration) TokenCacheOption {
	return func(c *TokenCache) {
		c.acquireTimeout = d
	}
}

// NewTokenCache returns an empty [TokenCache].
func NewTokenCache(opts ...TokenCacheOption) *TokenCache {
	c := &TokenCache{
		entries:        make(map[string]*types.Credential),
		acquireTimeout: defaultAcquireTimeout,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Lookup returns a copy of the cached credential for key. Stale entries
// (expired under the [types.ExpirySkew]) report a miss so the caller
// re-acquires instead of receiving a credential the backend would reject.
func (c *TokenCache) Lookup(key string) (*types.Credential, bool) {
	c.mu.RLock()
	cred, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || cred.Expired(c.now()) {
		return nil, false
	}
	return clone(cred), true
}

// Fill returns the credential for key, invoking acquire under the key's
// single-flight slot when the cache has no fresh entry. All concurrent
// callers for one key share a single acquisition.
//
// The acquisition runs on a context detached from the caller with its own
// timeout: waiters other than the canceled one may depend on the result,
// so a caller's cancellation abandons the wait but never the acquisition.
func (c *TokenCache) Fill(ctx context.Context, key string, acquire func(ctx context.Context) (*types.Credential, error)) (*types.Credential, error) {
	if cred, ok := c.Lookup(key); ok {
		return cred, nil
	}

	ch := c.group.DoChan(key, func() (any, error) {
		// A concurrent filler may have stored a fresh entry between the
		// miss above and this slot running.
		if cred, ok := c.Lookup(key); ok {
			return cred, nil
		}

		actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.acquireTimeout)
		defer cancel()

		cred, err := acquire(actx)
		if err != nil {
			return nil, err
		}
		c.store(key, cred)
		return clone(cred), nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		// Waiters share one singleflight result value; copy per caller.
		return clone(res.Val.(*types.Credential)), nil
	}
}

// Invalidate discards the entry and forgets any in-flight single-flight
// slot for key, so the next fill observes a fresh acquisition.
func (c *TokenCache) Invalidate(key string) {
	c.group.Forget(key)

	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

func (c *TokenCache) store(key string, cred *types.Credential) {
	c.mu.Lock()
	c.entries[key] = cred
	c.mu.Unlock()
}

func clone(cred *types.Credential) *types.Credential {
	var out types.Credential
	if err := deepcopy.Copy(&out, cred); err != nil {
		panic(fmt.Errorf("copy credential: %w", err))
	}
	return &out
}
