// Copyright 2025 The Healthmate CoachAI Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads and validates the process configuration.
//
// Configuration is environment-first, matching the deployment surface:
// [Load] starts from package defaults, overlays the environment variables,
// then overlays an optional YAML file whose present keys win. Validation
// is strict and happens once at startup: a missing gateway id, a missing
// memory id or a half-configured identity block is a
// [types.ConfigurationError] and the process refuses to start rather than
// substitute a fallback.
//
// The memory id has no default under any overlay: the coaching agent is
// not allowed to run amnesiac.
package config
