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

// SelectorState tries its children one at a time, in order, and succeeds as
// soon as one child succeeds; the composite's flow-out is then that child's
// flow-out. When every child fails, the composite fails with the last
// child's flow-out. Every child receives the composite's own flow-in.
//
// Fault and interrupt semantics match SequentialState.
type SelectorState struct {
	core.State

	mu       sync.Mutex
	children []core.Node
	curIdx   int
}

// NewSelectorState creates a selector composite over children.
func NewSelectorState(name string, children ...core.Node) *SelectorState {
	s := &SelectorState{children: children, curIdx: -1}
	s.Init(name, s)
	return s
}

// AddChildren appends fallback children. Attach children before the composite
// is first started.
func (s *SelectorState) AddChildren(children ...core.Node) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.children = append(s.children, children...)
}

// CurrentChild returns the child the composite is currently driving, or nil.
func (s *SelectorState) CurrentChild() core.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.curIdx < 0 || s.curIdx >= len(s.children) {
		return nil
	}
	return s.children[s.curIdx]
}

func (s *SelectorState) setCurrent(idx int) {
	s.mu.Lock()
	s.curIdx = idx
	s.mu.Unlock()
}

func (s *SelectorState) snapshotChildren() []core.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Node(nil), s.children...)
}

// Execute implements core.Executable.
func (s *SelectorState) Execute(ctx context.Context, board *core.Board) (core.Status, error) {
	children := s.snapshotChildren()
	for _, child := range children {
		child.Reset()
	}
	flowIn := s.FlowIn()
	var lastFlow any
	for i, child := range children {
		s.setCurrent(i)
		if err := s.StartChild(child, board, flowIn); err != nil {
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
			s.SetFlowOut(child.FlowOut())
			return core.StatusSuccess, nil
		case core.StatusFailed:
			lastFlow = child.FlowOut()
		case core.StatusException:
			return core.StatusException, child.Err()
		default:
			return core.StatusInterrupted, nil
		}
	}
	s.SetFlowOut(lastFlow)
	return core.StatusFailed, nil
}

// DebugInfo includes a snapshot of every child.
func (s *SelectorState) DebugInfo() *core.DebugInfo {
	info := s.State.DebugInfo()
	for _, child := range s.snapshotChildren() {
		info.Children = append(info.Children, child.DebugInfo())
	}
	return info
}
