// Copyright 2025 The Healthmate CoachAI Authors
// SPDX-License-Identifier: Apache-2.0

package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/healthmate-ai/coachai-go/types"
)

// OAuth2 is a [Provider] backed by the OAuth2 client-credentials flow.
type OAuth2 struct {
	name   string
	conf   *clientcredentials.Config
	client *http.Client
	logger *slog.Logger
}

var _ Provider = (*OAuth2)(nil)

// OAuth2Option configures an [OAuth2] provider.
type OAuth2Option func(*OAuth2)

// WithHTTPClient sets the HTTP client used for the token exchange.
func WithHTTPClient(client *http.Client) OAuth2Option {
	return func(o *OAuth2) {
		o.client = client
	}
}

// WithOAuth2Logger sets the logger. Defaults to [slog.Default].
func WithOAuth2Logger(logger *slog.Logger) OAuth2Option {
	return func(o *OAuth2) {
		o.logger = logger
	}
}

// NewOAuth2 returns a provider exchanging client credentials at tokenURL.
// The client secret is held for the exchange only and never logged.
func NewOAuth2(name, tokenURL, clientID, clientSecret string, opts ...OAuth2Option) *OAuth2 {
	o := &OAuth2{
		name: name,
		conf: &clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     tokenURL,
			AuthStyle:    oauth2.AuthStyleInHeader,
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Acquire implements [Provider].
func (o *OAuth2) Acquire(ctx context.Context, scopes []string) (*types.Credential, error) {
	conf := *o.conf
	conf.Scopes = scopes

	if o.client != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, o.client)
	}

	tok, err := conf.Token(ctx)
	if err != nil {
		return nil, o.classify(ctx, err)
	}

	o.logger.DebugContext(ctx, "token exchange succeeded",
		slog.String("provider", o.name),
		slog.Time("expiry", tok.Expiry),
	)

	return &types.Credential{
		Source:    types.CredentialSourceM2M,
		Token:     tok.AccessToken,
		TokenType: tok.Type(),
		Provider:  o.name,
		Scopes:    scopes,
		ExpiresAt: tok.Expiry,
	}, nil
}

// classify maps token-endpoint failures onto the auth taxonomy: an HTTP
// rejection (4xx) means the provider understood and refused, a server
// fault or transport failure means it may recover.
func (o *OAuth2) classify(ctx context.Context, err error) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		code := re.Response.StatusCode
		reason := types.AuthProviderUnavailable
		if code >= 400 && code < 500 {
			reason = types.AuthDenied
		}

		o.logger.WarnContext(ctx, "token exchange rejected",
			slog.String("provider", o.name),
			slog.Int("status", code),
			slog.String("oauthError", re.ErrorCode),
		)

		ae := types.NewAuthError(reason, types.CredentialSourceM2M, err)
		ae.Hint = fmt.Sprintf("token endpoint returned %d", code)
		return ae
	}

	o.logger.WarnContext(ctx, "token endpoint unreachable",
		slog.String("provider", o.name),
	)
	return types.NewAuthError(types.AuthProviderUnavailable, types.CredentialSourceM2M, err)
}
