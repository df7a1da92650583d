// Copyright 2025 The Healthmate CoachAI Authors
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"context"
	"time"
)

// CredentialSource identifies which resolution strategy produced a credential.
type CredentialSource string

const (
	// CredentialSourcePassthrough marks a credential extracted from a
	// pre-issued bearer token carried on the inbound request.
	CredentialSourcePassthrough CredentialSource = "passthrough"

	// CredentialSourceM2M marks a credential acquired from the identity
	// provider via the machine-to-machine client-credentials flow.
	CredentialSourceM2M CredentialSource = "m2m"
)

// ExpirySkew is subtracted from a credential's nominal expiry when deciding
// freshness, so a credential is re-acquired before the backend would start
// rejecting it mid-flight.
const ExpirySkew = 30 * time.Second

// Credential is a resolved bearer credential ready to be attached to a
// gateway invocation.
//
// The Token value is opaque and must never be written to logs or error
// text; use [github.com/healthmate-ai/coachai-go/pkg/logging.RedactToken]
// for operator-facing previews.
type Credential struct {
	// Source records the resolution strategy that produced this credential.
	Source CredentialSource `json:"source"`

	// Token is the opaque bearer value. Never logged.
	Token string `json:"-"`

	// TokenType is the authorization scheme, normally "Bearer".
	TokenType string `json:"tokenType,omitempty"`

	// Provider is the identity provider name the credential came from.
	// Empty for pass-through credentials.
	Provider string `json:"provider,omitempty"`

	// Scopes are the OAuth2 scopes the credential was granted.
	Scopes []string `json:"scopes,omitempty"`

	// Subject is the caller identifier decoded from a pass-through token.
	// Empty for machine credentials, which identify the service rather
	// than an end user.
	Subject string `json:"subject,omitempty"`

	// ExpiresAt is the nominal expiry instant. Zero when the provider did
	// not report one; such credentials never count as expired.
	ExpiresAt time.Time `json:"expiresAt,omitzero"`
}

// Expired reports whether the credential must not be used at the given
// instant. The [ExpirySkew] is applied so callers re-acquire slightly
// before the nominal expiry.
func (c *Credential) Expired(now time.Time) bool {
	if c.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(c.ExpiresAt.Add(-ExpirySkew))
}

// AuthorizationValue returns the value for an Authorization header.
// The scheme defaults to "Bearer" when TokenType is unset.
func (c *Credential) AuthorizationValue() string {
	scheme := c.TokenType
	if scheme == "" {
		scheme = "Bearer"
	}
	return scheme + " " + c.Token
}

// CredentialResolver resolves a credential for the current turn.
//
// Implementations are safe for concurrent use; the only shared state they
// may hold is the process-wide token cache.
type CredentialResolver interface {
	// Resolve returns a credential ready for gateway use. When force is
	// true any cached entry for the resolver's key is discarded before the
	// lookup, so the next use observes a freshly acquired credential.
	//
	// Failures are reported as [*AuthError].
	Resolve(ctx context.Context, force bool) (*Credential, error)

	// Source reports which strategy this resolver implements.
	Source() CredentialSource
}

// TokenProvider is the identity-provider collaborator contract: a single
// acquisition operation for machine-to-machine credentials.
type TokenProvider interface {
	// AcquireToken performs one client-credentials exchange against the
	// named provider and returns the acquired credential with its expiry.
	//
	// Failures are reported as [*AuthError] with reason
	// [AuthProviderUnavailable] (endpoint unreachable or server fault) or
	// [AuthDenied] (the provider rejected the request).
	AcquireToken(ctx context.Context, provider string, scopes []string) (*Credential, error)
}
