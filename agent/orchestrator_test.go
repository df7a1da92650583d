// Copyright 2025 The Healthmate CoachAI Authors
// SPDX-License-Identifier: Apache-2.0

package agent_test

import (
	"context"
	"errors"
	"iter"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/go-cmp/cmp"

	"github.com/healthmate-ai/coachai-go/agent"
	"github.com/healthmate-ai/coachai-go/tool"
	"github.com/healthmate-ai/coachai-go/types"
)

const (
	testMemoryID  = "coachai-memory-01"
	testSessionID = "healthmate-chat-0123456789abcdefghij"
)

// signToken builds a real three-part token for the turns under test.
// Resolution never verifies signatures, so the key is irrelevant.
func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return tok
}

func userBearer(t *testing.T) string {
	t.Helper()
	return signToken(t, jwt.MapClaims{
		"sub": "user-42",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
}

// scriptedInvoker replays queued results per tool name and falls back to a
// success payload once a queue is drained.
type scriptedInvoker struct {
	mu      sync.Mutex
	results map[string][]*types.ToolResult
	calls   []*types.ToolCall
	tokens  []string
}

var _ types.GatewayInvoker = (*scriptedInvoker)(nil)

func (s *scriptedInvoker) Invoke(_ context.Context, call *types.ToolCall, cred *types.Credential) (*types.ToolResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call)
	s.tokens = append(s.tokens, cred.Token)
	queue := s.results[call.Name]
	if len(queue) == 0 {
		return types.NewToolSuccess("payload from " + call.Name), nil
	}
	s.results[call.Name] = queue[1:]
	return queue[0], nil
}

func (s *scriptedInvoker) invocations(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if c.Name == name {
			n++
		}
	}
	return n
}

// machineResolver hands out scripted tokens in order and counts forced
// refreshes.
type machineResolver struct {
	mu     sync.Mutex
	tokens []string
	next   int
	forced int
	deny   bool
}

var _ types.CredentialResolver = (*machineResolver)(nil)

func (m *machineResolver) Resolve(_ context.Context, force bool) (*types.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if force {
		m.forced++
	}
	if m.deny {
		return nil, types.NewAuthError(types.AuthDenied, types.CredentialSourceM2M,
			errors.New("client credentials rejected"))
	}
	token := "machine-token"
	if m.next < len(m.tokens) {
		token = m.tokens[m.next]
		m.next++
	} else if len(m.tokens) > 0 {
		token = m.tokens[len(m.tokens)-1]
	}
	return &types.Credential{
		Source:    types.CredentialSourceM2M,
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil
}

func (m *machineResolver) Source() types.CredentialSource {
	return types.CredentialSourceM2M
}

type catalogLister struct {
	mu     sync.Mutex
	listed int
	fail   *types.ToolResult
}

var _ agent.ToolLister = (*catalogLister)(nil)

func (l *catalogLister) ListTools(context.Context, *types.Credential) (*tool.Catalog, *types.ToolResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.listed++
	if l.fail != nil {
		return nil, l.fail, nil
	}
	cat := &tool.Catalog{Tools: []tool.Descriptor{
		{Name: "get_health_summary", Description: "直近の健康サマリーを取得します"},
	}}
	return cat, types.NewToolSuccess(cat.Render()), nil
}

func drain(t *testing.T, seq iter.Seq2[*types.TurnEvent, error]) []*types.TurnEvent {
	t.Helper()
	var events []*types.TurnEvent
	for event, err := range seq {
		if err != nil {
			t.Fatalf("unexpected stream error: %v", err)
		}
		events = append(events, event)
	}
	return events
}

func TestOrchestratorRunAllSucceed(t *testing.T) {
	t.Parallel()

	inv := &scriptedInvoker{}
	orch := agent.New(inv, testMemoryID, agent.WithEnvironment("prod"))
	bearer := userBearer(t)
	turn := &types.Turn{
		SessionID: testSessionID,
		Bearer:    bearer,
		Timezone:  "Asia/Tokyo",
		Language:  "ja",
		Calls: []*types.ToolCall{
			types.NewToolCall("get_health_summary", types.ToolParam{Name: "period", Value: "week"}),
			types.NewToolCall("get_sleep_quality"),
		},
	}

	events := drain(t, orch.Run(t.Context(), turn))

	wantStages := []types.TurnStage{
		types.TurnStageStart,
		types.TurnStageToolUse,
		types.TurnStageToolUse,
		types.TurnStageComplete,
	}
	gotStages := make([]types.TurnStage, 0, len(events))
	for _, e := range events {
		gotStages = append(gotStages, e.Stage)
	}
	if diff := cmp.Diff(wantStages, gotStages); diff != "" {
		t.Fatalf("event stages mismatch (-want +got):\n%s", diff)
	}
	if got, want := events[1].Message, "健康データをget_health_summaryで処理中"; got != want {
		t.Errorf("tool_use message = %q, want %q", got, want)
	}

	final := events[len(events)-1]
	if !final.Final() {
		t.Fatal("complete event carries no outcome")
	}
	outcome := final.Outcome
	if outcome.State != types.TurnStateSucceeded {
		t.Errorf("State = %q, want %q", outcome.State, types.TurnStateSucceeded)
	}
	if len(outcome.Outcomes) != 2 {
		t.Fatalf("len(Outcomes) = %d, want 2", len(outcome.Outcomes))
	}
	if got, want := outcome.Outcomes[0].Result.Payload, "payload from get_health_summary"; got != want {
		t.Errorf("first payload = %q, want %q", got, want)
	}
	if len(outcome.FailedTools) != 0 {
		t.Errorf("FailedTools = %v, want none", outcome.FailedTools)
	}
	if outcome.Context == nil || outcome.Context.CallerID != "user-42" {
		t.Errorf("Context caller = %+v, want user-42", outcome.Context)
	}
	for _, want := range []string{"## 現在の日時情報", "## 言語設定情報", "## 現在のユーザー情報"} {
		if !strings.Contains(outcome.PromptContext, want) {
			t.Errorf("PromptContext missing %q", want)
		}
	}

	// Without a machine resolver the gateway sees the caller's own token,
	// and every call carries the caller id.
	if inv.tokens[0] != bearer {
		t.Error("gateway credential is not the inbound bearer")
	}
	if inv.calls[0].CallerID != "user-42" {
		t.Errorf("CallerID = %q, want user-42", inv.calls[0].CallerID)
	}
}

func TestOrchestratorRunDegraded(t *testing.T) {
	t.Parallel()

	inv := &scriptedInvoker{results: map[string][]*types.ToolResult{
		"get_sleep_quality": {types.NewToolFailure(types.ToolStatusUnavailable, "gateway returned 503")},
	}}
	orch := agent.New(inv, testMemoryID)
	turn := &types.Turn{
		SessionID: testSessionID,
		Bearer:    userBearer(t),
		Calls: []*types.ToolCall{
			types.NewToolCall("get_health_summary"),
			types.NewToolCall("get_sleep_quality"),
		},
	}

	outcome, err := orch.RunTurn(t.Context(), turn)
	if err != nil {
		t.Fatalf("RunTurn: %v", err)
	}

	if outcome.State != types.TurnStateDegraded {
		t.Errorf("State = %q, want %q", outcome.State, types.TurnStateDegraded)
	}
	if diff := cmp.Diff([]string{"get_sleep_quality"}, outcome.FailedTools); diff != "" {
		t.Errorf("FailedTools mismatch (-want +got):\n%s", diff)
	}
	if got, want := outcome.Outcomes[0].Result.Payload, "payload from get_health_summary"; got != want {
		t.Errorf("surviving payload = %q, want %q", got, want)
	}
	if got, want := outcome.Message, "一部のツール呼び出しに失敗しました"; got != want {
		t.Errorf("Message = %q, want %q", got, want)
	}
}

func TestOrchestratorRunResolutionDenied(t *testing.T) {
	t.Parallel()

	inv := &scriptedInvoker{}
	orch := agent.New(inv, testMemoryID,
		agent.WithMachineResolver(&machineResolver{deny: true}),
	)
	turn := &types.Turn{
		SessionID: testSessionID,
		Bearer:    userBearer(t),
		Calls:     []*types.ToolCall{types.NewToolCall("get_health_summary")},
	}

	events := drain(t, orch.Run(t.Context(), turn))

	final := events[len(events)-1]
	if final.Stage != types.TurnStageError {
		t.Errorf("final stage = %q, want %q", final.Stage, types.TurnStageError)
	}
	if final.Outcome.State != types.TurnStateFailed {
		t.Errorf("State = %q, want %q", final.Outcome.State, types.TurnStateFailed)
	}
	if len(inv.calls) != 0 {
		t.Errorf("gateway saw %d calls, want 0: denied resolution must not invoke", len(inv.calls))
	}
	if strings.Contains(final.Outcome.Message, "client credentials rejected") {
		t.Errorf("outcome message leaks resolution detail: %q", final.Outcome.Message)
	}
}

func TestOrchestratorRunMalformedBearer(t *testing.T) {
	t.Parallel()

	inv := &scriptedInvoker{}
	orch := agent.New(inv, testMemoryID)
	turn := &types.Turn{
		SessionID: testSessionID,
		Bearer:    "not-a-jwt",
		Calls:     []*types.ToolCall{types.NewToolCall("get_health_summary")},
	}

	outcome, err := orch.RunTurn(t.Context(), turn)
	if err != nil {
		t.Fatalf("RunTurn: %v", err)
	}
	if outcome.State != types.TurnStateFailed {
		t.Errorf("State = %q, want %q", outcome.State, types.TurnStateFailed)
	}
	if len(inv.calls) != 0 {
		t.Errorf("gateway saw %d calls, want 0", len(inv.calls))
	}
	if strings.Contains(outcome.Message, "not-a-jwt") {
		t.Errorf("outcome message leaks the bearer: %q", outcome.Message)
	}
}

func TestOrchestratorRunInvalidBinding(t *testing.T) {
	t.Parallel()

	inv := &scriptedInvoker{}
	orch := agent.New(inv, "short")
	turn := &types.Turn{
		SessionID: testSessionID,
		Bearer:    userBearer(t),
		Calls:     []*types.ToolCall{types.NewToolCall("get_health_summary")},
	}

	outcome, err := orch.RunTurn(t.Context(), turn)
	if err != nil {
		t.Fatalf("RunTurn: %v", err)
	}
	if outcome.State != types.TurnStateFailed {
		t.Errorf("State = %q, want %q", outcome.State, types.TurnStateFailed)
	}
	if len(inv.calls) != 0 {
		t.Errorf("gateway saw %d calls, want 0", len(inv.calls))
	}
}

func TestOrchestratorAuthRetryRecovers(t *testing.T) {
	t.Parallel()

	inv := &scriptedInvoker{results: map[string][]*types.ToolResult{
		"get_health_summary": {
			types.NewToolFailure(types.ToolStatusAuthFailure, "gateway rejected the credential (401)"),
		},
	}}
	machine := &machineResolver{tokens: []string{"stale-token", "fresh-token"}}
	orch := agent.New(inv, testMemoryID, agent.WithMachineResolver(machine))
	turn := &types.Turn{
		SessionID: testSessionID,
		Bearer:    userBearer(t),
		Calls: []*types.ToolCall{
			types.NewToolCall("get_health_summary"),
			types.NewToolCall("get_sleep_quality"),
		},
	}

	outcome, err := orch.RunTurn(t.Context(), turn)
	if err != nil {
		t.Fatalf("RunTurn: %v", err)
	}

	if outcome.State != types.TurnStateSucceeded {
		t.Errorf("State = %q, want %q", outcome.State, types.TurnStateSucceeded)
	}
	if machine.forced != 1 {
		t.Errorf("forced resolutions = %d, want 1", machine.forced)
	}
	wantTokens := []string{"stale-token", "fresh-token", "fresh-token"}
	if diff := cmp.Diff(wantTokens, inv.tokens); diff != "" {
		t.Errorf("credential sequence mismatch (-want +got):\n%s", diff)
	}
	// The retried call is recorded once, with its final result.
	if len(outcome.Outcomes) != 2 {
		t.Errorf("len(Outcomes) = %d, want 2", len(outcome.Outcomes))
	}
}

func TestOrchestratorAuthFailurePersists(t *testing.T) {
	t.Parallel()

	rejected := types.NewToolFailure(types.ToolStatusAuthFailure, "gateway rejected the credential (401)")
	inv := &scriptedInvoker{results: map[string][]*types.ToolResult{
		"get_health_summary": {rejected, rejected},
	}}
	machine := &machineResolver{tokens: []string{"stale-token", "fresh-token"}}
	orch := agent.New(inv, testMemoryID, agent.WithMachineResolver(machine))
	turn := &types.Turn{
		SessionID: testSessionID,
		Bearer:    userBearer(t),
		Calls: []*types.ToolCall{
			types.NewToolCall("get_health_summary"),
			types.NewToolCall("get_sleep_quality"),
		},
	}

	outcome, err := orch.RunTurn(t.Context(), turn)
	if err != nil {
		t.Fatalf("RunTurn: %v", err)
	}

	if outcome.State != types.TurnStateFailed {
		t.Errorf("State = %q, want %q", outcome.State, types.TurnStateFailed)
	}
	if machine.forced != 1 {
		t.Errorf("forced resolutions = %d, want exactly 1", machine.forced)
	}
	if got := inv.invocations("get_sleep_quality"); got != 0 {
		t.Errorf("second tool invoked %d times, want 0: uncleared auth failure must stop the turn", got)
	}
	if diff := cmp.Diff([]string{"get_health_summary"}, outcome.FailedTools); diff != "" {
		t.Errorf("FailedTools mismatch (-want +got):\n%s", diff)
	}
}

func TestOrchestratorOptionalFailuresDegrade(t *testing.T) {
	t.Parallel()

	inv := &scriptedInvoker{results: map[string][]*types.ToolResult{
		"get_activity_log": {types.NewToolFailure(types.ToolStatusUnavailable, "gateway returned 503")},
	}}
	orch := agent.New(inv, testMemoryID)
	turn := &types.Turn{
		SessionID: testSessionID,
		Bearer:    userBearer(t),
		Calls: []*types.ToolCall{
			types.NewToolCall("get_activity_log").WithOptional(true),
		},
	}

	outcome, err := orch.RunTurn(t.Context(), turn)
	if err != nil {
		t.Fatalf("RunTurn: %v", err)
	}
	if outcome.State != types.TurnStateDegraded {
		t.Errorf("State = %q, want %q: all failures were optional", outcome.State, types.TurnStateDegraded)
	}
}

func TestOrchestratorOptionalAuthFailureContinues(t *testing.T) {
	t.Parallel()

	rejected := types.NewToolFailure(types.ToolStatusAuthFailure, "gateway rejected the credential (401)")
	inv := &scriptedInvoker{results: map[string][]*types.ToolResult{
		"get_activity_log": {rejected, rejected},
	}}
	machine := &machineResolver{tokens: []string{"stale-token", "fresh-token"}}
	orch := agent.New(inv, testMemoryID, agent.WithMachineResolver(machine))
	turn := &types.Turn{
		SessionID: testSessionID,
		Bearer:    userBearer(t),
		Calls: []*types.ToolCall{
			types.NewToolCall("get_activity_log").WithOptional(true),
			types.NewToolCall("get_health_summary"),
		},
	}

	outcome, err := orch.RunTurn(t.Context(), turn)
	if err != nil {
		t.Fatalf("RunTurn: %v", err)
	}

	if outcome.State != types.TurnStateDegraded {
		t.Errorf("State = %q, want %q", outcome.State, types.TurnStateDegraded)
	}
	if got := inv.invocations("get_health_summary"); got != 1 {
		t.Errorf("required tool invoked %d times, want 1: optional auth failure must not stop the turn", got)
	}
}

func TestOrchestratorBootstrapsCatalog(t *testing.T) {
	t.Parallel()

	inv := &scriptedInvoker{}
	lister := &catalogLister{}
	orch := agent.New(inv, testMemoryID, agent.WithToolLister(lister))
	turn := &types.Turn{
		SessionID: testSessionID,
		Bearer:    userBearer(t),
	}

	events := drain(t, orch.Run(t.Context(), turn))

	if len(events) != 3 {
		t.Fatalf("len(events) = %d, want 3 (start, tool_use, complete)", len(events))
	}
	if got, want := events[1].Message, "利用可能なツールを確認中"; got != want {
		t.Errorf("bootstrap message = %q, want %q", got, want)
	}
	if events[1].ToolName != "list_health_tools" {
		t.Errorf("bootstrap tool name = %q, want list_health_tools", events[1].ToolName)
	}

	outcome := events[2].Outcome
	if outcome.State != types.TurnStateSucceeded {
		t.Errorf("State = %q, want %q", outcome.State, types.TurnStateSucceeded)
	}
	if !strings.Contains(outcome.Outcomes[0].Result.Payload, "利用可能なHealthManagerMCPツール") {
		t.Errorf("bootstrap payload is not the rendered catalog: %q", outcome.Outcomes[0].Result.Payload)
	}
	if lister.listed != 1 {
		t.Errorf("catalog listed %d times, want 1", lister.listed)
	}
	if len(inv.calls) != 0 {
		t.Errorf("invoker saw %d calls, want 0", len(inv.calls))
	}
}

func TestOrchestratorNoCallsNoLister(t *testing.T) {
	t.Parallel()

	orch := agent.New(&scriptedInvoker{}, testMemoryID)
	turn := &types.Turn{
		SessionID: testSessionID,
		Bearer:    userBearer(t),
	}

	outcome, err := orch.RunTurn(t.Context(), turn)
	if err != nil {
		t.Fatalf("RunTurn: %v", err)
	}
	if outcome.State != types.TurnStateSucceeded {
		t.Errorf("State = %q, want %q", outcome.State, types.TurnStateSucceeded)
	}
	if len(outcome.Outcomes) != 0 {
		t.Errorf("len(Outcomes) = %d, want 0", len(outcome.Outcomes))
	}
}

func TestOrchestratorRunNilTurn(t *testing.T) {
	t.Parallel()

	orch := agent.New(&scriptedInvoker{}, testMemoryID)
	if _, err := orch.RunTurn(t.Context(), nil); err == nil {
		t.Fatal("RunTurn(nil) returned no error")
	}
}

func TestOrchestratorRunCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	orch := agent.New(&scriptedInvoker{}, testMemoryID)
	turn := &types.Turn{
		SessionID: testSessionID,
		Bearer:    userBearer(t),
		Calls:     []*types.ToolCall{types.NewToolCall("get_health_summary")},
	}

	_, err := orch.RunTurn(ctx, turn)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
