//
// Copyright (C) 2026 CMU-TBD.  All rights reserved.
//
// behavior-machine-go is licensed under the Apache License Version 2.0.
//
//

package library

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cmu-tbd/behavior-machine-go/core"
)

// lockedBuffer is an io.Writer safe for states running on separate
// goroutines.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// failNode fails immediately, exposing a fixed flow-out.
type failNode struct {
	core.State
	flow any
}

func newFailNode(flow any, name string) *failNode {
	f := &failNode{flow: flow}
	f.Init(name, f)
	return f
}

func (f *failNode) Execute(_ context.Context, _ *core.Board) (core.Status, error) {
	f.SetFlowOut(f.flow)
	return core.StatusFailed, nil
}

// raiseNode faults with a fixed message.
type raiseNode struct {
	core.State
	msg string
}

func newRaiseNode(msg, name string) *raiseNode {
	r := &raiseNode{msg: msg}
	r.Init(name, r)
	return r
}

func (r *raiseNode) Execute(_ context.Context, _ *core.Board) (core.Status, error) {
	return 0, errors.New(r.msg)
}

// blockNode blocks until its context is cancelled or a timeout fires.
type blockNode struct {
	core.State
	d time.Duration
}

func newBlockNode(d time.Duration, name string) *blockNode {
	b := &blockNode{d: d}
	b.Init(name, b)
	return b
}

func (b *blockNode) Execute(ctx context.Context, _ *core.Board) (core.Status, error) {
	timer := time.NewTimer(b.d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return core.StatusSuccess, nil
	case <-ctx.Done():
		return core.StatusInterrupted, nil
	}
}

// captureNode records its flow-in and passes it through.
type captureNode struct {
	core.State

	mu   sync.Mutex
	seen any
}

func newCaptureNode(name string) *captureNode {
	c := &captureNode{}
	c.Init(name, c)
	return c
}

func (c *captureNode) Execute(_ context.Context, _ *core.Board) (core.Status, error) {
	c.mu.Lock()
	c.seen = c.FlowIn()
	c.mu.Unlock()
	c.SetFlowOut(c.FlowIn())
	return core.StatusSuccess, nil
}

func (c *captureNode) Seen() any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seen
}
