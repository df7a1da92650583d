// Copyright 2025 The Healthmate CoachAI Authors
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/bytedance/sonic"

	"github.com/healthmate-ai/coachai-go/internal/pool"
	"github.com/healthmate-ai/coachai-go/tool"
	"github.com/healthmate-ai/coachai-go/types"
)

const (
	// DefaultTimeout bounds a single gateway exchange, connection setup and
	// body read included.
	DefaultTimeout = 30 * time.Second

	// maxResponseBytes caps how much of a response body is read.
	maxResponseBytes = 4 << 20
)

// Endpoint returns the MCP endpoint for a health-manager gateway deployment.
func Endpoint(gatewayID, region string) string {
	return fmt.Sprintf("https://%s.gateway.bedrock-agentcore.%s.amazonaws.com/mcp", gatewayID, region)
}

// Client invokes remote tools on a health-manager gateway over JSON-RPC 2.0.
//
// Backend failures never surface as Go errors: transport faults, rejection
// statuses and protocol violations all come back as a classified
// [types.ToolResult] so callers can aggregate them per turn. The error
// return is reserved for caller misuse, such as an empty tool name or an
// already-expired credential.
type Client struct {
	endpoint string
	hc       *http.Client
	timeout  time.Duration
	logger   *slog.Logger

	reqID atomic.Int64
}

var _ types.GatewayInvoker = (*Client)(nil)

// ClientOption configures a [Client].
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.hc = hc
	}
}

// WithTimeout replaces the per-attempt exchange timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithLogger replaces the client logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a client for the gateway at endpoint, typically built
// with [Endpoint].
func NewClient(endpoint string, opts ...ClientOption) *Client {
	c := &Client{
		endpoint: endpoint,
		hc:       &http.Client{},
		timeout:  DefaultTimeout,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Invoke implements [types.GatewayInvoker]. It performs one tools/call
// exchange and retries exactly once, with the same credential, when the
// backend was unavailable. Auth failures are never retried here; whether to
// re-resolve the credential is the orchestrator's decision. Malformed
// responses are never retried at all.
func (c *Client) Invoke(ctx context.Context, call *types.ToolCall, cred *types.Credential) (*types.ToolResult, error) {
	result, err := c.CallTool(ctx, call, cred)
	if err != nil {
		return nil, err
	}
	if result.Status != types.ToolStatusUnavailable {
		return result, nil
	}

	c.logger.WarnContext(ctx, "tool backend unavailable, retrying once",
		slog.String("tool", call.Name),
		slog.String("callId", call.CallID),
		slog.String("reason", result.Reason),
	)

	return c.CallTool(ctx, call, cred)
}

// CallTool performs a single tools/call exchange, with no retry. On success
// the result payload carries the first text content block of the MCP
// response, or the raw content when the backend returned no text block.
func (c *Client) CallTool(ctx context.Context, call *types.ToolCall, cred *types.Credential) (*types.ToolResult, error) {
	if err := validateCall(call); err != nil {
		return nil, err
	}
	if err := validateCredential(cred); err != nil {
		return nil, err
	}

	params := &toolCallParams{
		Name:      call.Name,
		Arguments: call.Params,
	}
	raw, failure, err := c.exchange(ctx, methodToolsCall, params, cred)
	switch {
	case err != nil:
		return nil, err
	case failure != nil:
		return failure, nil
	}

	return types.NewToolSuccess(extractText(raw)), nil
}

// ListTools fetches the remote tool catalog via tools/list. The returned
// result classifies the exchange like any invocation; on success its payload
// carries [tool.Catalog.Render] output and catalog is non-nil.
func (c *Client) ListTools(ctx context.Context, cred *types.Credential) (*tool.Catalog, *types.ToolResult, error) {
	if err := validateCredential(cred); err != nil {
		return nil, nil, err
	}

	raw, failure, err := c.exchange(ctx, methodToolsList, nil, cred)
	switch {
	case err != nil:
		return nil, nil, err
	case failure != nil:
		return nil, failure, nil
	}

	catalog, err := tool.DecodeCatalog(raw)
	if err != nil {
		return nil, types.NewToolFailure(types.ToolStatusMalformed, "tool catalog does not match the tools/list shape"), nil
	}

	return catalog, types.NewToolSuccess(catalog.Render()), nil
}

// exchange posts one JSON-RPC request and decodes the envelope. It returns
// the raw result on success, a classified failure for anything the backend
// or the network did wrong, and an error only when the request could not be
// constructed.
func (c *Client) exchange(ctx context.Context, method string, params any, cred *types.Credential) (json.RawMessage, *types.ToolResult, error) {
	buf := pool.GetBuffer()
	defer pool.PutBuffer(buf)

	rpcReq := &rpcRequest{
		JSONRPC: "2.0",
		ID:      c.reqID.Add(1),
		Method:  method,
		Params:  params,
	}
	if err := sonic.ConfigFastest.NewEncoder(buf).Encode(rpcReq); err != nil {
		return nil, nil, fmt.Errorf("encode %s request: %w", method, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(buf.Bytes()))
	if err != nil {
		return nil, nil, fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Authorization", cred.AuthorizationValue())
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		reason := "gateway unreachable"
		if errors.Is(err, context.DeadlineExceeded) {
			reason = fmt.Sprintf("gateway did not respond within %s", c.timeout)
		}
		c.logger.WarnContext(ctx, "gateway exchange failed",
			slog.String("method", method),
			slog.Any("error", err),
		)
		return nil, types.NewToolFailure(types.ToolStatusUnavailable, reason), nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.WarnContext(ctx, "gateway rejected the exchange",
			slog.String("method", method),
			slog.Int("status", resp.StatusCode),
			slog.String("hint", operatorHint(resp.StatusCode)),
		)
		return nil, classifyStatus(resp.StatusCode), nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, types.NewToolFailure(types.ToolStatusUnavailable, "read gateway response: "+err.Error()), nil
	}

	var rpcResp rpcResponse
	if err := sonic.ConfigFastest.Unmarshal(body, &rpcResp); err != nil {
		return nil, types.NewToolFailure(types.ToolStatusMalformed, "gateway response is not valid JSON-RPC"), nil
	}
	if rpcResp.Error != nil {
		reason := fmt.Sprintf("backend error %d: %s", rpcResp.Error.Code, rpcResp.Error.Message)
		return nil, types.NewToolFailure(rpcResp.Error.status(), reason), nil
	}

	return rpcResp.Result, nil, nil
}

func validateCall(call *types.ToolCall) error {
	if call == nil || call.Name == "" {
		return errors.New("gateway: tool name must not be empty")
	}
	return nil
}

func validateCredential(cred *types.Credential) error {
	switch {
	case cred == nil || cred.Token == "":
		return errors.New("gateway: credential must not be empty")
	case cred.Expired(time.Now()):
		return errors.New("gateway: credential is already expired")
	}
	return nil
}

// classifyStatus maps a non-200 response onto the invocation taxonomy.
// Rejections of the credential itself (401, 403) are auth failures so the
// orchestrator can re-resolve; everything else is a backend fault.
func classifyStatus(code int) *types.ToolResult {
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return types.NewToolFailure(types.ToolStatusAuthFailure, fmt.Sprintf("gateway rejected the credential (%d)", code))
	default:
		return types.NewToolFailure(types.ToolStatusUnavailable, fmt.Sprintf("gateway returned %d", code))
	}
}

// operatorHint names the first thing to check for a rejection status. The
// hints go to logs only, never into result payloads.
func operatorHint(code int) string {
	switch {
	case code == http.StatusUnauthorized:
		return "token rejected; verify the identity provider configuration"
	case code == http.StatusForbidden:
		return "credential lacks the gateway invocation scope"
	case code == http.StatusNotFound:
		return "gateway id may be wrong or the gateway is not deployed"
	case code >= http.StatusInternalServerError:
		return "backend fault; check the health-manager service logs"
	default:
		return "unexpected status from the gateway"
	}
}

// extractText pulls the text of an MCP tools/call result: the first content
// block's text when present, the content list itself when the first block
// has no text, and the raw result when there is no content list at all.
func extractText(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) || bytes.Equal(trimmed, []byte("{}")) {
		return "ツールの実行結果が空でした。"
	}

	var result struct {
		Content []json.RawMessage `json:"content"`
	}
	if err := sonic.ConfigFastest.Unmarshal(raw, &result); err != nil || len(result.Content) == 0 {
		return string(raw)
	}

	var block struct {
		Text string `json:"text"`
	}
	if err := sonic.ConfigFastest.Unmarshal(result.Content[0], &block); err == nil && block.Text != "" {
		return block.Text
	}

	if dump, err := sonic.ConfigFastest.MarshalToString(result.Content); err == nil {
		return dump
	}
	return string(raw)
}
