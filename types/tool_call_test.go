// Copyright 2025 The Healthmate CoachAI Authors
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"testing"

	"github.com/bytedance/sonic"
	"github.com/google/go-cmp/cmp"
)

func TestToolParamsMarshalJSON(t *testing.T) {
	tests := []struct {
		name   string
		params ToolParams
		want   string
	}{
		{
			name:   "empty",
			params: ToolParams{},
			want:   `{}`,
		},
		{
			name: "declaration order preserved",
			params: ToolParams{
				{Name: "zulu", Value: "last-by-name"},
				{Name: "alpha", Value: 1},
				{Name: "mike", Value: true},
			},
			want: `{"zulu":"last-by-name","alpha":1,"mike":true}`,
		},
		{
			name: "nested values",
			params: ToolParams{
				{Name: "range", Value: map[string]any{"days": 7}},
				{Name: "metrics", Value: []string{"steps", "sleep"}},
			},
			want: `{"range":{"days":7},"metrics":["steps","sleep"]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := sonic.ConfigFastest.Marshal(tt.params)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			if diff := cmp.Diff(tt.want, string(got)); diff != "" {
				t.Errorf("MarshalJSON mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestToolParamsGet(t *testing.T) {
	params := ToolParams{
		{Name: "period", Value: "week"},
		{Name: "limit", Value: 5},
	}

	if v, ok := params.Get("period"); !ok || v != "week" {
		t.Errorf("Get(period) = (%v, %v), want (week, true)", v, ok)
	}
	if _, ok := params.Get("missing"); ok {
		t.Error("Get(missing) reported ok for an absent parameter")
	}
}

func TestNewToolCall(t *testing.T) {
	first := NewToolCall("get_health_summary", ToolParam{Name: "period", Value: "week"})
	second := NewToolCall("get_health_summary")

	if first.Name != "get_health_summary" {
		t.Errorf("Name = %q, want get_health_summary", first.Name)
	}
	if first.CallID == "" || second.CallID == "" {
		t.Error("NewToolCall left CallID empty")
	}
	if first.CallID == second.CallID {
		t.Errorf("correlation ids collide: %q", first.CallID)
	}
	if len(first.Params) != 1 {
		t.Errorf("len(Params) = %d, want 1", len(first.Params))
	}
}

func TestToolCallWithCallerID(t *testing.T) {
	call := NewToolCall("get_sleep_data")
	derived := call.WithCallerID("user-123")

	if derived.CallerID != "user-123" {
		t.Errorf("derived CallerID = %q, want user-123", derived.CallerID)
	}
	if call.CallerID != "" {
		t.Errorf("original mutated: CallerID = %q", call.CallerID)
	}
	if derived.CallID != call.CallID {
		t.Error("WithCallerID must preserve the correlation id")
	}
}
