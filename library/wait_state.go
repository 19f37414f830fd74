//
// Copyright (C) 2026 CMU-TBD.  All rights reserved.
//
// behavior-machine-go is licensed under the Apache License Version 2.0.
//
//

package library

import (
	"context"
	"time"

	"github.com/cmu-tbd/behavior-machine-go/core"
)

// WaitState blocks for a fixed duration, passing its flow-in through to its
// flow-out on success. Interruption cuts the wait short.
type WaitState struct {
	core.State
	duration time.Duration
}

// NewWaitState creates a state that waits for the given duration.
func NewWaitState(duration time.Duration, name string) *WaitState {
	w := &WaitState{duration: duration}
	w.Init(name, w)
	return w
}

// Execute implements core.Executable.
func (w *WaitState) Execute(ctx context.Context, _ *core.Board) (core.Status, error) {
	timer := time.NewTimer(w.duration)
	defer timer.Stop()
	select {
	case <-timer.C:
		w.SetFlowOut(w.FlowIn())
		return core.StatusSuccess, nil
	case <-ctx.Done():
		return core.StatusInterrupted, nil
	}
}
