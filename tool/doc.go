// Copyright 2025 The Healthmate CoachAI Authors
// SPDX-License-Identifier: Apache-2.0

// Package tool models the remote tool catalog exposed by the health-manager
// gateway.
//
// Tools are not implemented in this process. The gateway hosts them; this
// package only describes them so the reasoning layer can decide what to
// invoke and how.
//
// # Catalog
//
// [Catalog] is the decoded result of the gateway's tools/list operation:
//
//	catalog, err := tool.DecodeCatalog(raw)
//	if err != nil {
//		// the gateway returned something that is not a catalog
//	}
//	if catalog.Has("get_health_summary") {
//		// ...
//	}
//
// [Catalog.Render] produces the human-readable listing handed to the
// reasoning layer, with each parameter marked 必須 (required) or 任意
// (optional).
package tool
