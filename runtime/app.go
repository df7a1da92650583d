// Copyright 2025 The Healthmate CoachAI Authors
// SPDX-License-Identifier: Apache-2.0

package runtime

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/bytedance/sonic"

	"github.com/healthmate-ai/coachai-go/agent"
	"github.com/healthmate-ai/coachai-go/pkg/logging"
	"github.com/healthmate-ai/coachai-go/types"
)

const contentTypeNDJSON = "application/x-ndjson"

// User-facing surface messages. The greeting answers empty turns; the
// apology covers aborted turns without exposing the cause.
const (
	msgGreeting      = "こんにちは！健康に関してどのようなサポートが必要ですか？"
	msgTurnAborted   = "申し訳ございません。処理中にエラーが発生しました。"
	errDeltaPrefix   = "エラー: "
	pingResponseBody = `{"status":"Healthy"}`
)

// App is the hosting surface: it decodes invocation payloads, drives the
// orchestrator and streams the event envelopes back as NDJSON.
type App struct {
	orch   *agent.Orchestrator
	logger *slog.Logger
}

// AppOption configures an [App].
type AppOption func(*App)

// WithAppLogger sets the logger. Defaults to [slog.Default].
func WithAppLogger(logger *slog.Logger) AppOption {
	return func(a *App) {
		a.logger = logger
	}
}

// NewApp wraps an orchestrator in the hosting surface.
func NewApp(orch *agent.Orchestrator, opts ...AppOption) *App {
	a := &App{
		orch:   orch,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Handler returns the route table:
//
//	POST /invocations  NDJSON event stream for one turn
//	GET  /ping         liveness probe
func (a *App) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /invocations", a.handleInvocation)
	mux.HandleFunc("GET /ping", a.handlePing)
	return mux
}

func (a *App) handlePing(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	io.WriteString(w, pingResponseBody+"\n")
}

// handleInvocation runs one turn. Only an undecodable body is an HTTP
// error; payload contract violations and turn failures stream back as
// text deltas so the chat UI shows them in the conversation.
func (a *App) handleInvocation(w http.ResponseWriter, r *http.Request) {
	req, err := DecodeRequest(r.Body)
	if err != nil {
		a.logger.WarnContext(r.Context(), "undecodable invocation payload", slog.Any("error", err))
		http.Error(w, "request body is not valid JSON", http.StatusBadRequest)
		return
	}

	ctx := logging.NewContext(r.Context(), a.logger)
	w.Header().Set("Content-Type", contentTypeNDJSON)
	stream := newEventStream(w)

	turn, err := req.Turn()
	if err != nil {
		a.logger.WarnContext(ctx, "invocation payload rejected", slog.Any("error", err))
		stream.text(ctx, errDeltaPrefix+err.Error())
		return
	}

	if turn.Prompt == "" && len(turn.Calls) == 0 {
		stream.text(ctx, msgGreeting)
		return
	}

	for event, err := range a.orch.Run(ctx, turn) {
		if err != nil {
			a.logger.ErrorContext(ctx, "turn aborted",
				slog.String("sessionId", turn.SessionID),
				slog.Any("error", err),
			)
			stream.text(ctx, msgTurnAborted)
			return
		}
		stream.progress(ctx, event)
		if event.Final() {
			stream.outcome(ctx, event.Outcome)
		}
	}
}

// eventStream writes one envelope per line and flushes after each so the
// UI renders progress as it happens.
type eventStream struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

func newEventStream(w http.ResponseWriter) *eventStream {
	flusher, _ := w.(http.Flusher)
	return &eventStream{w: w, flusher: flusher}
}

// emit writes one NDJSON line. An envelope that fails to marshal is dropped
// and logged through the request-scoped logger; the stream keeps going.
func (s *eventStream) emit(ctx context.Context, v any) {
	data, err := sonic.ConfigFastest.Marshal(v)
	if err != nil {
		logging.FromContext(ctx).ErrorContext(ctx, "dropping unmarshalable stream envelope", slog.Any("error", err))
		return
	}
	s.w.Write(data)
	io.WriteString(s.w, "\n")
	if s.flusher != nil {
		s.flusher.Flush()
	}
}

func (s *eventStream) progress(ctx context.Context, e *types.TurnEvent) {
	s.emit(ctx, newProgressEnvelope(e))
}

func (s *eventStream) text(ctx context.Context, text string) {
	s.emit(ctx, newDeltaEnvelope(text))
}

// outcome streams the turn's response text: successful payloads in
// invocation order, then the degradation note or the failure message.
func (s *eventStream) outcome(ctx context.Context, o *types.TurnOutcome) {
	for _, to := range o.Outcomes {
		if to.Result.OK() {
			s.text(ctx, to.Result.Payload)
		}
	}
	switch o.State {
	case types.TurnStateDegraded:
		s.text(ctx, o.Message)
	case types.TurnStateFailed:
		s.text(ctx, errDeltaPrefix+o.Message)
	}
}
