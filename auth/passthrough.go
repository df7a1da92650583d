// Copyright 2025 The Healthmate CoachAI Authors
// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/healthmate-ai/coachai-go/pkg/logging"
	"github.com/healthmate-ai/coachai-go/types"
)

// Passthrough resolves a credential from a pre-issued bearer token carried
// on the inbound request. Decoding is structural only: the verifying party
// is the upstream gateway, so no signature check happens here. The raw
// token value never reaches logs or error text.
type Passthrough struct {
	bearer string
	logger *slog.Logger
}

var _ types.CredentialResolver = (*Passthrough)(nil)

// PassthroughOption configures a [Passthrough].
type PassthroughOption func(*Passthrough)

// WithPassthroughLogger sets the logger. Defaults to [slog.Default].
func WithPassthroughLogger(logger *slog.Logger) PassthroughOption {
	return func(p *Passthrough) {
		p.logger = logger
	}
}

// NewPassthrough returns a resolver for the given inbound bearer token.
func NewPassthrough(bearer string, opts ...PassthroughOption) *Passthrough {
	p := &Passthrough{
		bearer: bearer,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Source implements [types.CredentialResolver].
func (p *Passthrough) Source() types.CredentialSource {
	return types.CredentialSourcePassthrough
}

// Resolve implements [types.CredentialResolver].
//
// force is ignored: a pre-issued token cannot be re-acquired. Decoding is
// deterministic, so resolving twice yields the same subject.
func (p *Passthrough) Resolve(ctx context.Context, force bool) (*types.Credential, error) {
	if p.bearer == "" {
		return nil, types.NewAuthError(types.AuthMalformed, types.CredentialSourcePassthrough,
			errors.New("no bearer token on the inbound request"))
	}

	claims := jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(p.bearer, claims); err != nil {
		return nil, types.NewAuthError(types.AuthMalformed, types.CredentialSourcePassthrough, err)
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, types.NewAuthError(types.AuthMalformed, types.CredentialSourcePassthrough,
			errors.New("subject claim missing"))
	}

	var expiresAt time.Time
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		expiresAt = exp.Time
		if !time.Now().Before(expiresAt) {
			// Expired pass-through tokens are denied rather than retried:
			// only the issuing party can mint a fresh one.
			return nil, types.NewAuthError(types.AuthDenied, types.CredentialSourcePassthrough,
				errors.New("inbound token is expired"))
		}
	}

	p.logger.DebugContext(ctx, "resolved pass-through credential",
		slog.String("subject", sub),
		slog.String("token", logging.RedactToken(p.bearer)),
	)

	return &types.Credential{
		Source:    types.CredentialSourcePassthrough,
		Token:     p.bearer,
		TokenType: "Bearer",
		Subject:   sub,
		ExpiresAt: expiresAt,
	}, nil
}
