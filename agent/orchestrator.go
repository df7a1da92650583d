// Copyright 2025 The Healthmate CoachAI Authors
// SPDX-License-Identifier: Apache-2.0

package agent

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"

	"github.com/healthmate-ai/coachai-go/auth"
	"github.com/healthmate-ai/coachai-go/callercontext"
	"github.com/healthmate-ai/coachai-go/internal/xiter"
	"github.com/healthmate-ai/coachai-go/memory"
	"github.com/healthmate-ai/coachai-go/tool"
	"github.com/healthmate-ai/coachai-go/types"
)

// Progress and outcome messages streamed back to the chat. User-facing, so
// Japanese like the rest of the product surface. The failure message stays
// generic: credential and token detail never reaches the caller.
const (
	msgTurnStart   = "Healthmate-CoachAIが起動中"
	msgToolListing = "利用可能なツールを確認中"
	msgComplete    = "Healthmate-CoachAIが応答を完了"
	msgDegraded    = "一部のツール呼び出しに失敗しました"
	msgFailed      = "サービスが一時的に利用できません。しばらくしてからもう一度お試しください。"
)

// catalogToolName is the synthetic tool name reported for the catalog
// bootstrap that runs when a turn requests no calls.
const catalogToolName = "list_health_tools"

// ToolLister fetches the remote tool catalog. [gateway.Client] implements
// it.
type ToolLister interface {
	ListTools(ctx context.Context, cred *types.Credential) (*tool.Catalog, *types.ToolResult, error)
}

// Orchestrator executes one turn end to end: resolve a credential, enrich
// the caller context, invoke the requested tools and aggregate the results
// into a terminal outcome.
//
// The orchestrator holds no state across turns; everything per-turn lives in
// the run. The only cross-turn state in the process is the credential cache
// inside the machine resolver, so one Orchestrator serves concurrent turns.
type Orchestrator struct {
	invoker  types.GatewayInvoker
	lister   ToolLister
	machine  types.CredentialResolver
	enricher *callercontext.Enricher
	memoryID string
	env      string
	logger   *slog.Logger
}

// Option configures an [Orchestrator].
type Option func(*Orchestrator)

// WithMachineResolver makes turns call the gateway with a machine
// credential from r instead of the caller's own token. The inbound token is
// still decoded for the caller identity.
func WithMachineResolver(r types.CredentialResolver) Option {
	return func(o *Orchestrator) {
		o.machine = r
	}
}

// WithToolLister enables the catalog bootstrap for turns that request no
// tool calls.
func WithToolLister(l ToolLister) Option {
	return func(o *Orchestrator) {
		o.lister = l
	}
}

// WithEnricher replaces the caller-context enricher.
func WithEnricher(e *callercontext.Enricher) Option {
	return func(o *Orchestrator) {
		if e != nil {
			o.enricher = e
		}
	}
}

// WithEnvironment selects the system-prompt environment, dev by default.
func WithEnvironment(env string) Option {
	return func(o *Orchestrator) {
		if env != "" {
			o.env = env
		}
	}
}

// WithLogger replaces the orchestrator logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// New creates an orchestrator. invoker performs the gateway calls; memoryID
// names the memory store every turn binds to.
func New(invoker types.GatewayInvoker, memoryID string, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		invoker:  invoker,
		memoryID: memoryID,
		enricher: callercontext.NewEnricher(),
		env:      "dev",
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}

	return o
}

// Run executes one turn, yielding progress events as it goes: a start
// event, one tool_use event per invocation, then a final complete or error
// event whose Outcome field carries the aggregated [types.TurnOutcome].
//
// Turn-level failures are outcomes, not iterator errors; the error slot is
// reserved for caller misuse and context cancellation.
func (o *Orchestrator) Run(ctx context.Context, turn *types.Turn) iter.Seq2[*types.TurnEvent, error] {
	if turn == nil {
		return xiter.Fail[types.TurnEvent](errors.New("agent: turn must not be nil"))
	}

	return func(yield func(*types.TurnEvent, error) bool) {
		r := &turnRun{o: o, turn: turn, state: types.TurnStateIdle}
		r.run(ctx, yield)
	}
}

// RunTurn drains [Orchestrator.Run] and returns the terminal outcome.
func (o *Orchestrator) RunTurn(ctx context.Context, turn *types.Turn) (*types.TurnOutcome, error) {
	var outcome *types.TurnOutcome
	for event, err := range o.Run(ctx, turn) {
		if err != nil {
			return nil, err
		}
		if event.Final() {
			outcome = event.Outcome
		}
	}
	if outcome == nil {
		return nil, errors.New("agent: turn ended without a terminal outcome")
	}
	return outcome, nil
}

// turnRun is the per-turn state of one [Orchestrator.Run].
type turnRun struct {
	o    *Orchestrator
	turn *types.Turn

	state    types.TurnState
	user     *types.Credential
	cred     *types.Credential
	resolver types.CredentialResolver
	actorID  string
	cc       *types.CallerContext
	outcomes []*types.ToolOutcome
	failed   []string

	// authFatal is set when a required invocation's auth failure survived
	// the one allowed re-resolution.
	authFatal bool
}

func (r *turnRun) run(ctx context.Context, yield func(*types.TurnEvent, error) bool) {
	if !yield(&types.TurnEvent{Stage: types.TurnStageStart, Message: msgTurnStart}, nil) {
		return
	}

	r.transition(ctx, types.TurnStateResolvingCredential)
	if err := r.resolve(ctx); err != nil {
		r.o.logger.ErrorContext(ctx, "turn failed before invoking",
			slog.String("sessionId", r.turn.SessionID),
			slog.Any("error", err),
		)
		yield(r.fail(ctx), nil)
		return
	}

	r.transition(ctx, types.TurnStateEnriching)
	r.cc = r.o.enricher.Enrich(ctx, r.turn, r.user)

	r.transition(ctx, types.TurnStateInvoking)
	if !r.invoke(ctx, yield) {
		return
	}

	yield(r.finish(ctx), nil)
}

func (r *turnRun) transition(ctx context.Context, next types.TurnState) {
	r.o.logger.InfoContext(ctx, "turn state transition",
		slog.String("sessionId", r.turn.SessionID),
		slog.String("from", string(r.state)),
		slog.String("to", string(next)),
	)
	r.state = next
}

// resolve establishes who the turn runs as: the caller identity from the
// inbound token, the gateway credential from the machine resolver when one
// is configured, and the memory binding for the conversation.
func (r *turnRun) resolve(ctx context.Context) error {
	passthrough := auth.NewPassthrough(r.turn.Bearer, auth.WithPassthroughLogger(r.o.logger))
	user, err := passthrough.Resolve(ctx, false)
	if err != nil {
		return fmt.Errorf("resolve caller identity: %w", err)
	}
	r.user = user
	r.actorID = r.turn.ActorID
	if r.actorID == "" {
		r.actorID = user.Subject
	}

	r.resolver, r.cred = passthrough, user
	if r.o.machine != nil {
		cred, err := r.o.machine.Resolve(ctx, false)
		if err != nil {
			return fmt.Errorf("resolve machine credential: %w", err)
		}
		r.resolver, r.cred = r.o.machine, cred
	}

	binding, err := memory.NewBinding(r.o.memoryID, r.turn.SessionID, r.actorID)
	if err != nil {
		return err
	}
	r.o.logger.DebugContext(ctx, "memory binding validated",
		slog.String("memoryId", binding.MemoryID),
		slog.String("sessionId", binding.SessionID),
		slog.String("actorId", binding.ActorID),
	)

	return nil
}

// invoke runs the turn's calls in order and records every outcome. It
// returns false when the consumer stopped the event stream.
func (r *turnRun) invoke(ctx context.Context, yield func(*types.TurnEvent, error) bool) bool {
	if len(r.turn.Calls) == 0 {
		return r.bootstrap(ctx, yield)
	}

	for _, requested := range r.turn.Calls {
		if ctx.Err() != nil {
			yield(nil, ctx.Err())
			return false
		}

		call := requested.WithCallerID(r.cc.CallerID)
		event := &types.TurnEvent{
			Stage:    types.TurnStageToolUse,
			Message:  fmt.Sprintf("健康データを%sで処理中", call.Name),
			ToolName: call.Name,
		}
		if !yield(event, nil) {
			return false
		}

		result := r.withAuthRetry(ctx, call.Name, func(cred *types.Credential) (*types.ToolResult, error) {
			return r.o.invoker.Invoke(ctx, call, cred)
		})
		r.record(call, result)

		if result.Status == types.ToolStatusAuthFailure && !call.Optional {
			// The credential is bad and one re-resolution did not fix it;
			// every remaining call would fail the same way.
			r.authFatal = true
			return true
		}
	}

	return true
}

// bootstrap fetches the tool catalog for turns that request no calls, so
// the reasoning layer learns what it could ask for.
func (r *turnRun) bootstrap(ctx context.Context, yield func(*types.TurnEvent, error) bool) bool {
	if r.o.lister == nil {
		return true
	}

	call := types.NewToolCall(catalogToolName).WithCallerID(r.cc.CallerID)
	event := &types.TurnEvent{
		Stage:    types.TurnStageToolUse,
		Message:  msgToolListing,
		ToolName: call.Name,
	}
	if !yield(event, nil) {
		return false
	}

	result := r.withAuthRetry(ctx, call.Name, func(cred *types.Credential) (*types.ToolResult, error) {
		_, res, err := r.o.lister.ListTools(ctx, cred)
		return res, err
	})
	r.record(call, result)

	if result.Status == types.ToolStatusAuthFailure {
		r.authFatal = true
	}
	return true
}

// withAuthRetry performs one exchange; on an auth failure it forces a
// credential re-resolution and tries again exactly once. Any fresher
// credential also serves the rest of the turn.
func (r *turnRun) withAuthRetry(ctx context.Context, toolName string, do func(*types.Credential) (*types.ToolResult, error)) *types.ToolResult {
	result, err := do(r.cred)
	if err != nil {
		return r.misuse(ctx, toolName, err)
	}
	if result.Status != types.ToolStatusAuthFailure {
		return result
	}

	r.o.logger.WarnContext(ctx, "credential rejected by gateway, re-resolving",
		slog.String("tool", toolName),
		slog.String("reason", result.Reason),
	)
	fresh, err := r.resolver.Resolve(ctx, true)
	if err != nil {
		r.o.logger.ErrorContext(ctx, "forced re-resolution failed", slog.Any("error", err))
		return result
	}
	r.cred = fresh

	retried, err := do(fresh)
	if err != nil {
		return r.misuse(ctx, toolName, err)
	}
	return retried
}

// misuse converts a gateway caller-misuse error into a malformed result so
// the aggregation still sees every call. Raw errors never escape the turn.
func (r *turnRun) misuse(ctx context.Context, toolName string, err error) *types.ToolResult {
	r.o.logger.ErrorContext(ctx, "invocation rejected before reaching the gateway",
		slog.String("tool", toolName),
		slog.Any("error", err),
	)
	return types.NewToolFailure(types.ToolStatusMalformed, "invocation rejected: "+err.Error())
}

func (r *turnRun) record(call *types.ToolCall, result *types.ToolResult) {
	r.outcomes = append(r.outcomes, &types.ToolOutcome{Call: call, Result: result})
	if !result.OK() {
		r.failed = append(r.failed, call.Name)
	}
}

// finish aggregates the recorded outcomes into the terminal state.
func (r *turnRun) finish(ctx context.Context) *types.TurnEvent {
	switch {
	case r.authFatal:
		return r.fail(ctx)
	case len(r.failed) == 0:
		r.transition(ctx, types.TurnStateSucceeded)
		return &types.TurnEvent{
			Stage:   types.TurnStageComplete,
			Message: msgComplete,
			Outcome: r.outcome(ctx, types.TurnStateSucceeded, ""),
		}
	case r.succeededAny() || r.failedAllOptional():
		r.transition(ctx, types.TurnStateDegraded)
		return &types.TurnEvent{
			Stage:   types.TurnStageComplete,
			Message: msgDegraded,
			Outcome: r.outcome(ctx, types.TurnStateDegraded, msgDegraded),
		}
	default:
		return r.fail(ctx)
	}
}

func (r *turnRun) fail(ctx context.Context) *types.TurnEvent {
	r.transition(ctx, types.TurnStateFailed)
	return &types.TurnEvent{
		Stage:   types.TurnStageError,
		Message: msgFailed,
		Outcome: r.outcome(ctx, types.TurnStateFailed, msgFailed),
	}
}

func (r *turnRun) outcome(ctx context.Context, state types.TurnState, message string) *types.TurnOutcome {
	return &types.TurnOutcome{
		State:         state,
		Outcomes:      r.outcomes,
		FailedTools:   r.failed,
		Context:       r.cc,
		PromptContext: r.promptContext(ctx),
		Message:       message,
	}
}

// promptContext renders the environment's system prompt with the turn's
// ambient context appended. An unknown environment degrades to the context
// blocks alone rather than failing a turn that already has tool results.
func (r *turnRun) promptContext(ctx context.Context) string {
	if r.cc == nil {
		return ""
	}
	blocks := ContextBlocks(r.cc, r.turn.SessionID)
	base, err := SystemPrompt(r.o.env)
	if err != nil {
		r.o.logger.WarnContext(ctx, "system prompt unavailable, using context blocks only",
			slog.String("environment", r.o.env),
			slog.Any("error", err),
		)
		return blocks
	}
	return base + "\n" + blocks
}

func (r *turnRun) succeededAny() bool {
	for _, o := range r.outcomes {
		if o.Result.OK() {
			return true
		}
	}
	return false
}

func (r *turnRun) failedAllOptional() bool {
	for _, o := range r.outcomes {
		if !o.Result.OK() && !o.Call.Optional {
			return false
		}
	}
	return true
}
