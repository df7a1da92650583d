// Copyright 2025 The Healthmate CoachAI Authors
// SPDX-License-Identifier: Apache-2.0

// Package identity implements the identity-provider collaborator behind
// machine-to-machine credential acquisition.
//
// A [Registry] maps provider names to [Provider] implementations and
// satisfies [types.TokenProvider]; providers are registered once at
// startup from the identity configuration block. The only shipped
// implementation is [OAuth2], a client-credentials exchange.
//
// Failure classification follows the auth taxonomy: a 4xx answer from the
// token endpoint is a denial (the provider understood the request and
// refused it, retrying cannot help), a 5xx answer or a transport failure
// is provider_unavailable (the caller retries once), and a provider name
// with no registration is a denial because no endpoint could ever grant
// it.
package identity
