// Copyright 2025 The Healthmate CoachAI Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/healthmate-ai/coachai-go/types"
)

// Environment variable names consumed by [Load]. The memory id is read from
// [EnvMemoryID] first, then from the legacy [EnvMemoryIDAlias].
const (
	EnvProviderName  = "AGENTCORE_PROVIDER_NAME"
	EnvGatewayID     = "HEALTHMANAGER_GATEWAY_ID"
	EnvMemoryID      = "AGENTCORE_MEMORY_ID"
	EnvMemoryIDAlias = "BEDROCK_AGENTCORE_MEMORY_ID"
	EnvRegion        = "AWS_REGION"
	EnvEnvironment   = "HEALTHMATE_ENV"
	EnvTokenURL      = "AGENTCORE_TOKEN_URL"
	EnvClientID      = "AGENTCORE_CLIENT_ID"
	EnvClientSecret  = "AGENTCORE_CLIENT_SECRET"
	EnvLogLevel      = "LOG_LEVEL"
)

// Defaults applied before the environment and file overlays.
const (
	// DefaultScope is the gateway invocation scope requested for machine
	// credentials.
	DefaultScope = "HealthManager/HealthTarget:invoke"

	// DefaultRegion is the gateway region.
	DefaultRegion = "us-west-2"

	// DefaultTimezone is the zone applied when a turn does not carry one
	// and the fail-closed fallback for unresolvable zone ids.
	DefaultTimezone = "Asia/Tokyo"

	// DefaultLanguage is the response language applied when a turn does
	// not carry one.
	DefaultLanguage = "ja"

	// DefaultEnvironment selects the deployment flavor, e.g. which system
	// prompt is served.
	DefaultEnvironment = "dev"
)

// Identity configures the machine-to-machine credential acquisition. The
// block is optional: when ProviderName is empty the process runs in
// pass-through-only mode and never contacts an identity provider.
type Identity struct {
	// ProviderName is the registered identity provider name.
	ProviderName string `yaml:"providerName"`

	// TokenURL is the provider's client-credentials token endpoint.
	TokenURL string `yaml:"tokenURL"`

	// ClientID identifies this service to the provider.
	ClientID string `yaml:"clientID"`

	// ClientSecret authenticates this service. Never logged.
	ClientSecret string `yaml:"clientSecret"`

	// Scopes are the scopes requested on acquisition.
	Scopes []string `yaml:"scopes"`
}

// Configured reports whether the machine-to-machine strategy is available.
func (i Identity) Configured() bool {
	return i.ProviderName != ""
}

// Config is the immutable process configuration. Build it with [Load];
// mutating a Config after Load is a caller bug.
type Config struct {
	// GatewayID is the tool gateway identifier. Mandatory.
	GatewayID string `yaml:"gatewayID"`

	// Region is the gateway region.
	Region string `yaml:"region"`

	// MemoryID addresses the remote memory store. Mandatory: startup must
	// fail rather than run without memory.
	MemoryID string `yaml:"memoryID"`

	// DefaultTimezone is the fail-closed zone for context enrichment.
	DefaultTimezone string `yaml:"defaultTimezone"`

	// DefaultLanguage is the fallback response language.
	DefaultLanguage string `yaml:"defaultLanguage"`

	// Environment is the deployment flavor: dev, stage or prod.
	Environment string `yaml:"environment"`

	// LogLevel is the slog level name: debug, info, warn or error.
	LogLevel string `yaml:"logLevel"`

	// Identity is the optional machine-to-machine block.
	Identity Identity `yaml:"identity"`
}

// Default returns a Config carrying only the package defaults.
func Default() *Config {
	return &Config{
		Region:          DefaultRegion,
		DefaultTimezone: DefaultTimezone,
		DefaultLanguage: DefaultLanguage,
		Environment:     DefaultEnvironment,
		LogLevel:        "info",
		Identity: Identity{
			Scopes: []string{DefaultScope},
		},
	}
}

// Load builds the process configuration: package defaults, then the
// environment, then the optional YAML file at path (values present in the
// file win over the environment). The result is validated; any violation
// is reported as a [*types.ConfigurationError] and the caller must refuse
// to start.
func Load(path string) (*Config, error) {
	cfg := Default()
	cfg.applyEnv()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, types.NewConfigurationError("config file", err.Error())
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, types.NewConfigurationError("config file", fmt.Sprintf("parse %s: %v", path, err))
		}
	}

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	setIfPresent := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	setIfPresent(&c.GatewayID, EnvGatewayID)
	setIfPresent(&c.Region, EnvRegion)
	setIfPresent(&c.Environment, EnvEnvironment)
	setIfPresent(&c.LogLevel, EnvLogLevel)
	setIfPresent(&c.Identity.ProviderName, EnvProviderName)
	setIfPresent(&c.Identity.TokenURL, EnvTokenURL)
	setIfPresent(&c.Identity.ClientID, EnvClientID)
	setIfPresent(&c.Identity.ClientSecret, EnvClientSecret)

	if v := os.Getenv(EnvMemoryID); v != "" {
		c.MemoryID = v
	} else if v := os.Getenv(EnvMemoryIDAlias); v != "" {
		c.MemoryID = v
	}
}

func (c *Config) normalize() {
	c.Environment = strings.ToLower(strings.TrimSpace(c.Environment))
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
}

func (c *Config) validate() error {
	if c.GatewayID == "" {
		return types.NewConfigurationError(EnvGatewayID, "must be set")
	}
	if c.MemoryID == "" {
		return types.NewConfigurationError(EnvMemoryID, "must be set; no fallback is applied")
	}
	if c.Region == "" {
		return types.NewConfigurationError(EnvRegion, "must not be empty")
	}
	if _, err := time.LoadLocation(c.DefaultTimezone); err != nil {
		return types.NewConfigurationError("defaultTimezone", fmt.Sprintf("unknown zone %q", c.DefaultTimezone))
	}

	if c.Identity.Configured() {
		if c.Identity.TokenURL == "" {
			return types.NewConfigurationError(EnvTokenURL, "must be set when "+EnvProviderName+" is configured")
		}
		if c.Identity.ClientID == "" {
			return types.NewConfigurationError(EnvClientID, "must be set when "+EnvProviderName+" is configured")
		}
		if c.Identity.ClientSecret == "" {
			return types.NewConfigurationError(EnvClientSecret, "must be set when "+EnvProviderName+" is configured")
		}
		if len(c.Identity.Scopes) == 0 {
			return types.NewConfigurationError("identity.scopes", "must not be empty")
		}
	} else if c.Identity.TokenURL != "" {
		return types.NewConfigurationError(EnvProviderName, "must be set when the identity token endpoint is configured")
	}

	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel into a [slog.Level].
func (c *Config) Level() (slog.Level, error) {
	switch c.LogLevel {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, types.NewConfigurationError(EnvLogLevel, fmt.Sprintf("unknown level %q", c.LogLevel))
}
