// Copyright 2025 The Healthmate CoachAI Authors
// SPDX-License-Identifier: Apache-2.0

package memory

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// MinMemoryIDLen is the shortest id the memory store issues.
	MinMemoryIDLen = 10

	// MinSessionIDLen is the shortest session id the UI service generates.
	// Anything shorter is a truncated or hand-typed id.
	MinSessionIDLen = 33
)

// Binding ties one conversation turn to the long-term memory store: which
// store, which conversation, and whose memories.
//
// The store itself lives behind the gateway. This process only validates
// and forwards the binding, so a bad id must be caught here, before any
// remote call runs with it.
type Binding struct {
	// MemoryID names the memory store deployment.
	MemoryID string `json:"memoryId"`

	// SessionID scopes short-term memory to one conversation.
	SessionID string `json:"sessionId"`

	// ActorID scopes long-term memory to one person, the authenticated
	// subject.
	ActorID string `json:"actorId"`
}

// NewBinding validates the three ids together and reports every problem at
// once, not just the first, so a misdeployment is diagnosed in one pass.
func NewBinding(memoryID, sessionID, actorID string) (*Binding, error) {
	var errs []error

	switch {
	case strings.TrimSpace(memoryID) == "":
		errs = append(errs, errors.New("memory id is empty"))
	case len(memoryID) < MinMemoryIDLen:
		errs = append(errs, fmt.Errorf("memory id too short (%d chars, need at least %d)", len(memoryID), MinMemoryIDLen))
	}

	switch {
	case strings.TrimSpace(sessionID) == "":
		errs = append(errs, errors.New("session id is empty"))
	case len(sessionID) < MinSessionIDLen:
		errs = append(errs, fmt.Errorf("session id too short (%d chars, need at least %d)", len(sessionID), MinSessionIDLen))
	}

	if strings.TrimSpace(actorID) == "" {
		errs = append(errs, errors.New("actor id is empty"))
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("memory binding: %w", errors.Join(errs...))
	}

	return &Binding{
		MemoryID:  memoryID,
		SessionID: sessionID,
		ActorID:   actorID,
	}, nil
}
