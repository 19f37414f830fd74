//
// Copyright (C) 2026 CMU-TBD.  All rights reserved.
//
// behavior-machine-go is licensed under the Apache License Version 2.0.
//
//

package core

// TransitionKind tags the built-in transition variants. Keeping the variants
// structural (rather than baking them into predicates) makes insertion-order
// evaluation and first-match-wins explicit.
type TransitionKind int

const (
	// TransitionCustom fires when a caller-supplied predicate holds.
	TransitionCustom TransitionKind = iota
	// TransitionOnSuccess fires when the source status is SUCCESS.
	TransitionOnSuccess
	// TransitionOnFailed fires when the source status is FAILED.
	TransitionOnFailed
	// TransitionOnComplete fires on any clean terminal outcome, i.e. SUCCESS
	// or FAILED, never EXCEPTION or INTERRUPTED.
	TransitionOnComplete
)

// Predicate decides whether a custom transition should fire. It is evaluated
// on the owning scheduler's tick goroutine, so it may observe the source node
// while the node is still running. A non-nil error is a fault and is routed
// to the exception path, attributed to the source node.
type Predicate func(node Node, board *Board) (bool, error)

// transition is one (kind, predicate, target) entry in a node's table.
type transition struct {
	kind   TransitionKind
	pred   Predicate
	target Node
}

// matches evaluates the transition against the source node's current status.
func (t transition) matches(source Node, board *Board, status Status) (bool, error) {
	switch t.kind {
	case TransitionOnSuccess:
		return status == StatusSuccess, nil
	case TransitionOnFailed:
		return status == StatusFailed, nil
	case TransitionOnComplete:
		return status.Complete(), nil
	default:
		return t.pred(source, board)
	}
}
