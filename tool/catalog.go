// Copyright 2025 The Healthmate CoachAI Authors
// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"fmt"
	"slices"

	"github.com/bytedance/sonic"

	"github.com/healthmate-ai/coachai-go/internal/pool"
	"github.com/healthmate-ai/coachai-go/internal/xmaps"
)

// Property is one parameter of a remote tool's input schema.
type Property struct {
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
}

// Schema is the JSON-schema fragment describing a tool's arguments.
type Schema struct {
	Type       string              `json:"type,omitempty"`
	Properties map[string]Property `json:"properties,omitempty"`
	Required   []string            `json:"required,omitempty"`
}

// Descriptor describes one remote tool as reported by the gateway's
// tools/list operation.
type Descriptor struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	InputSchema *Schema `json:"inputSchema,omitempty"`
}

// Catalog is the set of tools the gateway currently exposes.
type Catalog struct {
	Tools []Descriptor `json:"tools"`
}

// DecodeCatalog parses a tools/list result payload.
func DecodeCatalog(raw []byte) (*Catalog, error) {
	var c Catalog
	if err := sonic.ConfigFastest.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("decode tool catalog: %w", err)
	}
	return &c, nil
}

// Names returns the tool names in catalog order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.Tools))
	for i, t := range c.Tools {
		names[i] = t.Name
	}
	return names
}

// Has reports whether the catalog lists the named tool.
func (c *Catalog) Has(name string) bool {
	return slices.Contains(c.Names(), name)
}

// Render formats the catalog for the reasoning layer: every tool with its
// description and parameters, each parameter marked required or optional.
// Parameter order is name-sorted so renders are deterministic.
func (c *Catalog) Render() string {
	if len(c.Tools) == 0 {
		return "利用可能なツールが見つかりませんでした。"
	}

	sb := pool.GetBuilder()
	defer pool.PutBuilder(sb)

	fmt.Fprintf(sb, "利用可能なHealthManagerMCPツール (%d個):\n", len(c.Tools))
	for _, t := range c.Tools {
		name := t.Name
		if name == "" {
			name = "Unknown"
		}
		desc := t.Description
		if desc == "" {
			desc = "No description"
		}
		fmt.Fprintf(sb, "\n**%s**\n説明: %s\n", name, desc)

		if t.InputSchema == nil || len(t.InputSchema.Properties) == 0 {
			continue
		}
		sb.WriteString("パラメータ:\n")
		for _, propName := range xmaps.SortedKeys(t.InputSchema.Properties) {
			prop := t.InputSchema.Properties[propName]
			propType := prop.Type
			if propType == "" {
				propType = "unknown"
			}
			mark := " (任意)"
			if slices.Contains(t.InputSchema.Required, propName) {
				mark = " (必須)"
			}
			fmt.Fprintf(sb, "  - %s (%s)%s: %s\n", propName, propType, mark, prop.Description)
		}
	}

	return sb.String()
}
