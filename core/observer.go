//
// Copyright (C) 2026 CMU-TBD.  All rights reserved.
//
// behavior-machine-go is licensed under the Apache License Version 2.0.
//
//

package core

import (
	"time"

	"github.com/cmu-tbd/behavior-machine-go/log"
)

// TickEvent describes one scheduler tick of a machine. The snapshot covers
// the machine and its active path.
type TickEvent struct {
	// RunID identifies the machine activation this tick belongs to.
	RunID string
	// Seq is the 1-based tick number within the run.
	Seq int64
	// Time is when the tick was observed.
	Time time.Time
	// Snapshot is the machine's debug snapshot at this tick.
	Snapshot *DebugInfo
}

// Observer receives one synchronous callback per machine tick. Callbacks run
// on the machine's tick goroutine, so they must be fast and must not block.
type Observer interface {
	OnTick(ev *TickEvent)
}

// logObserver renders each tick as an indented tree on the debug log. It is
// installed automatically when a machine is built with WithDebug.
type logObserver struct {
	logger log.Logger
}

func (o *logObserver) OnTick(ev *TickEvent) {
	o.logger.Debugf("[Base] %s", RenderDebugInfo(ev.Snapshot))
}
