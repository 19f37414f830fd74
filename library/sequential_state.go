//
// Copyright (C) 2026 CMU-TBD.  All rights reserved.
//
// behavior-machine-go is licensed under the Apache License Version 2.0.
//
//

package library

import (
	"context"
	"sync"

	"github.com/cmu-tbd/behavior-machine-go/core"
)

// SequentialState runs its children one at a time, in order, behaving as a
// single state to its owner. Flow data chains through the children: the first
// child receives the composite's flow-in, each later child receives the
// previous child's flow-out, and the composite's flow-out is the flow-out of
// the last child that executed.
//
// A FAILED child short-circuits the sequence and fails the composite
// immediately. A child fault becomes the composite's own EXCEPTION, with the
// fault's qualified origin preserved. Interrupting the composite interrupts
// only the active child; children never started stay NOT_RUNNING and finished
// children keep their status.
type SequentialState struct {
	core.State

	mu       sync.Mutex
	children []core.Node
	curIdx   int
}

// NewSequentialState creates a sequential composite over children.
func NewSequentialState(name string, children ...core.Node) *SequentialState {
	s := &SequentialState{children: children, curIdx: -1}
	s.Init(name, s)
	return s
}

// AddChildren appends children to the end of the sequence. Attach children
// before the composite is first started.
func (s *SequentialState) AddChildren(children ...core.Node) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.children = append(s.children, children...)
}

// CurrentChild returns the child the composite is currently driving, or nil.
// Custom transition predicates use it to observe the composite mid-run.
func (s *SequentialState) CurrentChild() core.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.curIdx < 0 || s.curIdx >= len(s.children) {
		return nil
	}
	return s.children[s.curIdx]
}

func (s *SequentialState) setCurrent(idx int) {
	s.mu.Lock()
	s.curIdx = idx
	s.mu.Unlock()
}

func (s *SequentialState) snapshotChildren() []core.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Node(nil), s.children...)
}

// Execute implements core.Executable; it is the composite's internal loop.
func (s *SequentialState) Execute(ctx context.Context, board *core.Board) (core.Status, error) {
	children := s.snapshotChildren()
	for _, child := range children {
		child.Reset()
	}
	flow := s.FlowIn()
	for i, child := range children {
		s.setCurrent(i)
		if err := s.StartChild(child, board, flow); err != nil {
			return 0, err
		}
		select {
		case <-child.Done():
		case <-ctx.Done():
			child.Interrupt()
			return core.StatusInterrupted, nil
		}
		switch child.Status() {
		case core.StatusSuccess:
			flow = child.FlowOut()
			s.SetFlowOut(flow)
		case core.StatusFailed:
			s.SetFlowOut(child.FlowOut())
			return core.StatusFailed, nil
		case core.StatusException:
			return core.StatusException, child.Err()
		default:
			// The child was interrupted out of band; fold into our own
			// interruption.
			return core.StatusInterrupted, nil
		}
	}
	return core.StatusSuccess, nil
}

// DebugInfo includes a snapshot of every child, runnable while the composite
// is live.
func (s *SequentialState) DebugInfo() *core.DebugInfo {
	info := s.State.DebugInfo()
	for _, child := range s.snapshotChildren() {
		info.Children = append(info.Children, child.DebugInfo())
	}
	return info
}
