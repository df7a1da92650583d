// Copyright 2025 The Healthmate CoachAI Authors
// SPDX-License-Identifier: Apache-2.0

// Command coachai serves the Healthmate CoachAI tool-invocation layer:
// POST /invocations for turns, GET /ping for liveness.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	// Zone data must be available in scratch containers for caller-context
	// enrichment.
	_ "time/tzdata"

	"github.com/jessevdk/go-flags"

	"github.com/healthmate-ai/coachai-go/agent"
	"github.com/healthmate-ai/coachai-go/auth"
	"github.com/healthmate-ai/coachai-go/auth/identity"
	"github.com/healthmate-ai/coachai-go/callercontext"
	"github.com/healthmate-ai/coachai-go/config"
	"github.com/healthmate-ai/coachai-go/gateway"
	"github.com/healthmate-ai/coachai-go/runtime"
	"github.com/healthmate-ai/coachai-go/types"
)

// options are the command-line flags. Everything else comes from the
// environment and the optional config file, see [config.Load].
type options struct {
	Listen   string `short:"l" long:"listen" default:":8080" description:"HTTP listen address"`
	Config   string `short:"f" long:"config" description:"config YAML path"`
	LogLevel string `long:"log-level" description:"override the configured log level (debug, info, warn, error)"`
}

func main() {
	var opts options
	if _, err := flags.Parse(&opts); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return
		}
		os.Exit(2)
	}

	if err := run(&opts); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(opts *options) error {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return err
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}
	level, err := cfg.Level()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	defaultZone, err := time.LoadLocation(cfg.DefaultTimezone)
	if err != nil {
		return types.NewConfigurationError("defaultTimezone",
			fmt.Sprintf("unknown zone %q: %v", cfg.DefaultTimezone, err))
	}

	gw := gateway.NewClient(
		gateway.Endpoint(cfg.GatewayID, cfg.Region),
		gateway.WithLogger(logger),
	)

	enricher := callercontext.NewEnricher(
		callercontext.WithDefaultZone(defaultZone),
		callercontext.WithDefaultLanguage(cfg.DefaultLanguage),
		callercontext.WithLogger(logger),
	)

	orchOpts := []agent.Option{
		agent.WithToolLister(gw),
		agent.WithEnricher(enricher),
		agent.WithEnvironment(cfg.Environment),
		agent.WithLogger(logger),
	}
	if cfg.Identity.Configured() {
		registry := identity.NewRegistry()
		registry.Register(cfg.Identity.ProviderName, identity.NewOAuth2(
			cfg.Identity.ProviderName,
			cfg.Identity.TokenURL,
			cfg.Identity.ClientID,
			cfg.Identity.ClientSecret,
			identity.WithOAuth2Logger(logger),
		))
		m2m := auth.NewM2M(cfg.Identity.ProviderName, cfg.Identity.Scopes,
			auth.NewTokenCache(), registry, auth.WithM2MLogger(logger))
		orchOpts = append(orchOpts, agent.WithMachineResolver(m2m))
		logger.Info("machine credential strategy enabled",
			slog.String("provider", cfg.Identity.ProviderName))
	} else {
		logger.Info("pass-through credential strategy only")
	}

	orch := agent.New(gw, cfg.MemoryID, orchOpts...)
	app := runtime.NewApp(orch, runtime.WithAppLogger(logger))

	srv := &http.Server{
		Addr:              opts.Listen,
		Handler:           app.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("coachai listening",
			slog.String("addr", opts.Listen),
			slog.String("environment", cfg.Environment),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutting down", slog.String("signal", sig.String()))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
