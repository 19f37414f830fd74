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

// IdleState does nothing and succeeds immediately. It is typically used as a
// terminal parking state for a machine's end set.
type IdleState struct {
	core.State
}

// NewIdleState creates an idle state.
func NewIdleState(name string) *IdleState {
	s := &IdleState{}
	s.Init(name, s)
	return s
}

// Execute implements core.Executable.
func (s *IdleState) Execute(_ context.Context, _ *core.Board) (core.Status, error) {
	return core.StatusSuccess, nil
}
