//
// Copyright (C) 2026 CMU-TBD.  All rights reserved.
//
// behavior-machine-go is licensed under the Apache License Version 2.0.
//
//

package library

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/cmu-tbd/behavior-machine-go/core"
)

var (
	errChildFailed      = errors.New("parallel child failed")
	errChildInterrupted = errors.New("parallel child interrupted")
)

// ParallelState starts all of its children at once and supervises them as a
// group. The composite succeeds when every child succeeds, with flow-out
// taken from the last child in declaration order. The first FAILED child
// fails the composite and the remaining children are interrupted; the first
// child fault becomes the composite's EXCEPTION the same way, with the
// fault's qualified origin preserved. Every child receives the composite's
// flow-in. Interrupting the composite interrupts and fully joins every child
// before the composite reports INTERRUPTED.
type ParallelState struct {
	core.State

	mu       sync.Mutex
	children []core.Node
}

// NewParallelState creates a parallel composite over children.
func NewParallelState(name string, children ...core.Node) *ParallelState {
	p := &ParallelState{children: children}
	p.Init(name, p)
	return p
}

// AddChildren appends children to the group. Attach children before the
// composite is first started.
func (p *ParallelState) AddChildren(children ...core.Node) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.children = append(p.children, children...)
}

func (p *ParallelState) snapshotChildren() []core.Node {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]core.Node(nil), p.children...)
}

// Execute implements core.Executable.
func (p *ParallelState) Execute(ctx context.Context, board *core.Board) (core.Status, error) {
	children := p.snapshotChildren()
	if len(children) == 0 {
		return core.StatusSuccess, nil
	}
	for _, child := range children {
		child.Reset()
	}
	flowIn := p.FlowIn()
	started := make([]core.Node, 0, len(children))
	for _, child := range children {
		if err := p.StartChild(child, board, flowIn); err != nil {
			for _, c := range started {
				c.Interrupt()
			}
			return 0, err
		}
		started = append(started, child)
	}

	var (
		resMu      sync.Mutex
		firstFail  core.Node
		firstFault error
		sawCancel  bool
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, child := range children {
		child := child
		g.Go(func() error {
			select {
			case <-child.Done():
			case <-gctx.Done():
				// A sibling settled the group (or the composite itself was
				// interrupted): drain this child before reporting anything.
				child.Interrupt()
				return nil
			}
			switch child.Status() {
			case core.StatusSuccess:
				return nil
			case core.StatusFailed:
				resMu.Lock()
				if firstFail == nil {
					firstFail = child
				}
				resMu.Unlock()
				return errChildFailed
			case core.StatusException:
				resMu.Lock()
				if firstFault == nil {
					firstFault = child.Err()
				}
				resMu.Unlock()
				return child.Err()
			default:
				resMu.Lock()
				sawCancel = true
				resMu.Unlock()
				return errChildInterrupted
			}
		})
	}
	// Wait joins every supervisor, and every supervisor joins its child, so
	// no goroutine of this subtree is alive past this point.
	_ = g.Wait()
	if ctx.Err() != nil {
		return core.StatusInterrupted, nil
	}
	resMu.Lock()
	fail, fault, cancelled := firstFail, firstFault, sawCancel
	resMu.Unlock()
	if fault != nil {
		return core.StatusException, fault
	}
	if fail != nil {
		p.SetFlowOut(fail.FlowOut())
		return core.StatusFailed, nil
	}
	if cancelled {
		return core.StatusInterrupted, nil
	}
	p.SetFlowOut(children[len(children)-1].FlowOut())
	return core.StatusSuccess, nil
}

// DebugInfo includes a snapshot of every child.
func (p *ParallelState) DebugInfo() *core.DebugInfo {
	info := p.State.DebugInfo()
	for _, child := range p.snapshotChildren() {
		info.Children = append(info.Children, child.DebugInfo())
	}
	return info
}
