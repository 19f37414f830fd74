//
// Copyright (C) 2026 CMU-TBD.  All rights reserved.
//
// behavior-machine-go is licensed under the Apache License Version 2.0.
//
//

package library

import (
	"context"

	"github.com/cmu-tbd/behavior-machine-go/core"
)

// SetFlowState sets a fixed value as its flow-out and succeeds, seeding flow
// data for downstream states.
type SetFlowState struct {
	core.State
	value any
}

// NewSetFlowState creates a state whose flow-out is always value.
func NewSetFlowState(value any, name string) *SetFlowState {
	s := &SetFlowState{value: value}
	s.Init(name, s)
	return s
}

// Execute implements core.Executable.
func (s *SetFlowState) Execute(_ context.Context, _ *core.Board) (core.Status, error) {
	s.SetFlowOut(s.value)
	return core.StatusSuccess, nil
}
