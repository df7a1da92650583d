// Copyright 2025 The Healthmate CoachAI Authors
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"encoding/json"

	"github.com/healthmate-ai/coachai-go/types"
)

const (
	methodToolsList = "tools/list"
	methodToolsCall = "tools/call"
)

// rpcRequest is a JSON-RPC 2.0 request envelope. Params is omitted entirely
// when nil; the gateway rejects explicit null params.
type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

// rpcResponse is a JSON-RPC 2.0 response envelope. Exactly one of Result and
// Error is populated by a conforming backend.
type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int64           `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// status maps a JSON-RPC error onto the invocation taxonomy. Codes that mean
// the exchange itself broke contract (parse error, invalid request, unknown
// method, invalid params) are malformed and never worth retrying; everything
// else, including the implementation-defined server error range, is a
// backend fault.
func (e *rpcError) status() types.ToolStatus {
	switch e.Code {
	case -32700, -32600, -32601, -32602:
		return types.ToolStatusMalformed
	default:
		return types.ToolStatusUnavailable
	}
}

// toolCallParams is the tools/call parameter object. Arguments marshal in
// declaration order so request bodies are reproducible.
type toolCallParams struct {
	Name      string           `json:"name"`
	Arguments types.ToolParams `json:"arguments,omitempty"`
}
