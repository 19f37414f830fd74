//
// Copyright (C) 2026 CMU-TBD.  All rights reserved.
//
// behavior-machine-go is licensed under the Apache License Version 2.0.
//
//

package core

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/cmu-tbd/behavior-machine-go/telemetry/trace"
)

// Executable is the behavior body contract. The body runs on the state's own
// activation goroutine and must return promptly once ctx is cancelled; the
// interrupt protocol joins the goroutine and cannot complete otherwise.
//
// A non-nil error is a fault and surfaces as StatusException. A nil error
// with a non-terminal status is recorded as StatusSuccess, so bodies that
// only "complete" can return the zero Status.
type Executable interface {
	Execute(ctx context.Context, board *Board) (Status, error)
}

// Node is the engine-facing contract of every state. Concrete states obtain
// it by embedding State and implementing Execute; State supplies the rest.
type Node interface {
	Executable

	// Name returns the local (unqualified) name of the node.
	Name() string
	// QualifiedName returns the dot-joined path from the outermost container
	// down to this node. Before any container adopts the node it equals Name.
	QualifiedName() string
	// Status returns the node's current status.
	Status() Status
	// CheckStatus reports whether the node's status equals status.
	CheckStatus(status Status) bool
	// CheckName reports whether the node's local name equals name.
	CheckName(name string) bool

	// Start resets the node and spawns its activation goroutine. It returns
	// ErrAlreadyRunning if a previous activation is still alive.
	Start(board *Board, flowIn any) error
	// Tick evaluates the node's outgoing transitions in insertion order and
	// returns the node that is current afterwards: the first matching target
	// (started, with flow handed over), or the node itself. A predicate fault
	// aborts evaluation and is returned as a *Fault.
	Tick(board *Board) (Node, error)
	// Interrupt cancels a running activation and blocks until the goroutine
	// has fully exited, leaving the node INTERRUPTED. It is idempotent and a
	// no-op when the node is not running.
	Interrupt()
	// Wait blocks until the current activation exits or timeout elapses.
	// A timeout <= 0 waits forever. It reports whether the activation exited.
	Wait(timeout time.Duration) bool
	// Done returns a channel closed when the current activation exits.
	Done() <-chan struct{}
	// Reset returns a finished node to NOT_RUNNING, clearing flow and fault
	// data. It is a no-op on a running node.
	Reset()

	// FlowIn returns the value handed to this node when it was started.
	FlowIn() any
	// FlowOut returns the value this node exposes to its successor.
	FlowOut() any
	// SetFlowOut sets the flow-out value; bodies call it during execution.
	SetFlowOut(v any)

	// Err returns the fault captured by this node (a *Fault), or nil.
	Err() error
	// FaultOrigin returns the qualified name of the node where the captured
	// fault originated, or "" when there is none.
	FaultOrigin() string

	// DebugInfo returns a point-in-time snapshot of the node, recursively
	// including children for composites.
	DebugInfo() *DebugInfo

	setPathPrefix(prefix string)
	pathPrefix() string
}

// closedChan is returned by Done for never-started nodes.
var closedChan = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()

// State is the embeddable base of every node. It owns identity, status, the
// transition table, flow slots and the activation goroutine. All mutable
// fields are guarded by mu; status is only ever written by the activation
// goroutine itself, which is what keeps observation race-free.
type State struct {
	name string
	kind string
	self Node

	mu          sync.Mutex
	prefix      string
	status      Status
	flowIn      any
	flowOut     any
	transitions []transition
	fault       *Fault

	cancel      context.CancelFunc
	done        chan struct{}
	interrupted bool // interrupt requested for the current activation
}

// Init wires the embedding node into the base. Every constructor must call it
// with the concrete node as self before the node is used.
func (s *State) Init(name string, self Node) {
	if self == nil {
		panic("core: State.Init called with nil self")
	}
	s.name = name
	s.self = self
	s.kind = reflect.Indirect(reflect.ValueOf(self)).Type().Name()
}

// Name returns the local name of the node.
func (s *State) Name() string { return s.name }

// QualifiedName returns the dot-joined path of the node.
func (s *State) QualifiedName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.qualifiedLocked()
}

func (s *State) qualifiedLocked() string {
	if s.prefix == "" {
		return s.name
	}
	return s.prefix + "." + s.name
}

func (s *State) setPathPrefix(prefix string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefix = prefix
}

func (s *State) pathPrefix() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefix
}

// Status returns the node's current status.
func (s *State) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// CheckStatus reports whether the node's status equals status.
func (s *State) CheckStatus(status Status) bool { return s.Status() == status }

// CheckName reports whether the node's local name equals name.
func (s *State) CheckName(name string) bool { return s.name == name }

// FlowIn returns the value handed to this node at start.
func (s *State) FlowIn() any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flowIn
}

// FlowOut returns the node's flow-out value.
func (s *State) FlowOut() any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flowOut
}

// SetFlowOut sets the node's flow-out value.
func (s *State) SetFlowOut(v any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flowOut = v
}

// Err returns the captured fault, or nil.
func (s *State) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fault == nil {
		return nil
	}
	return s.fault
}

// FaultOrigin returns the qualified origin of the captured fault, or "".
func (s *State) FaultOrigin() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fault == nil {
		return ""
	}
	return s.fault.Origin
}

// AddTransition attaches a custom-predicate transition to target. Transitions
// are evaluated in insertion order; the first match wins. Attach transitions
// before the node is first started.
func (s *State) AddTransition(pred Predicate, target Node) {
	s.addTransition(transition{kind: TransitionCustom, pred: pred, target: target})
}

// AddTransitionOnSuccess attaches a transition that fires on SUCCESS.
func (s *State) AddTransitionOnSuccess(target Node) {
	s.addTransition(transition{kind: TransitionOnSuccess, target: target})
}

// AddTransitionOnFailed attaches a transition that fires on FAILED.
func (s *State) AddTransitionOnFailed(target Node) {
	s.addTransition(transition{kind: TransitionOnFailed, target: target})
}

// AddTransitionOnComplete attaches a transition that fires on SUCCESS or
// FAILED, but never on EXCEPTION or INTERRUPTED.
func (s *State) AddTransitionOnComplete(target Node) {
	s.addTransition(transition{kind: TransitionOnComplete, target: target})
}

func (s *State) addTransition(t transition) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transitions = append(s.transitions, t)
}

// Start resets the node and spawns its activation goroutine.
func (s *State) Start(board *Board, flowIn any) error {
	s.mu.Lock()
	if s.self == nil {
		s.mu.Unlock()
		return fmt.Errorf("state %q not initialized", s.name)
	}
	if s.status == StatusRunning {
		s.mu.Unlock()
		return fmt.Errorf("start %s: %w", s.qualifiedLocked(), ErrAlreadyRunning)
	}
	s.status = StatusRunning
	s.flowIn = flowIn
	s.flowOut = nil
	s.fault = nil
	s.interrupted = false
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	done := make(chan struct{})
	s.done = done
	s.mu.Unlock()

	spawn(func() { s.runActivation(ctx, cancel, board, done) })
	return nil
}

// runActivation is the activation goroutine body: it runs Execute, converts
// the result into a terminal status, and closes done. It is the only writer
// of status between Start and the close of done.
func (s *State) runActivation(ctx context.Context, cancel context.CancelFunc, board *Board, done chan struct{}) {
	defer cancel()
	qname := s.QualifiedName()
	ctx, span := trace.Tracer.Start(ctx, "execute_state")
	span.SetAttributes(
		attribute.String("behavior.state.name", qname),
		attribute.String("behavior.state.type", s.kind),
	)
	status, err := s.executeBody(ctx, board)

	s.mu.Lock()
	switch {
	case s.interrupted:
		s.status = StatusInterrupted
	case err != nil:
		s.status = StatusException
		s.fault = newFault(s.qualifiedLocked(), err)
	case status.Terminal():
		s.status = status
	default:
		// A body that returns no explicit status has completed successfully.
		s.status = StatusSuccess
	}
	final := s.status
	fault := s.fault
	s.mu.Unlock()

	span.SetAttributes(attribute.String("behavior.state.status", final.String()))
	if fault != nil {
		span.RecordError(fault)
	}
	span.End()
	close(done)
}

// executeBody invokes the concrete Execute, converting panics into faults.
func (s *State) executeBody(ctx context.Context, board *Board) (status Status, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return s.self.Execute(ctx, board)
}

// StartChild stamps child with this node's qualified name as path prefix and
// starts it. Containers (machines, composites) use it so that qualified names
// compose by dot-concatenation through arbitrary nesting depth.
func (s *State) StartChild(child Node, board *Board, flowIn any) error {
	child.setPathPrefix(s.QualifiedName())
	return child.Start(board, flowIn)
}

// Tick evaluates outgoing transitions against the node's current status.
// Transitions are checked on every tick, even while the node is running, so
// a custom predicate may route away from a live node; the node is then
// interrupted and fully joined before the target starts.
func (s *State) Tick(board *Board) (Node, error) {
	s.mu.Lock()
	entries := s.transitions
	status := s.status
	qname := s.qualifiedLocked()
	prefix := s.prefix
	s.mu.Unlock()

	var target Node
	for _, t := range entries {
		ok, err := t.matches(s.self, board, status)
		if err != nil {
			return nil, newFault(qname, fmt.Errorf("transition to %s: %w", t.target.Name(), err))
		}
		if ok {
			target = t.target
			break
		}
	}
	if target == nil {
		return s.self, nil
	}
	// Drain the source before the target starts; no goroutine of this node
	// may be alive once the scheduler moves on.
	s.self.Interrupt()
	target.setPathPrefix(prefix)
	if err := target.Start(board, s.FlowOut()); err != nil {
		return nil, newFault(target.QualifiedName(), err)
	}
	return target, nil
}

// Interrupt cancels a running activation and joins it. After Interrupt
// returns, no goroutine owned by this node (or, for composites, by any
// descendant) is alive and the status is INTERRUPTED.
func (s *State) Interrupt() {
	s.mu.Lock()
	if s.status != StatusRunning {
		s.mu.Unlock()
		return
	}
	s.interrupted = true
	cancel := s.cancel
	done := s.done
	s.mu.Unlock()

	cancel()
	<-done
}

// Wait blocks until the current activation exits or timeout elapses.
func (s *State) Wait(timeout time.Duration) bool {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done == nil {
		return true
	}
	if timeout <= 0 {
		<-done
		return true
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-done:
		return true
	case <-timer.C:
		return false
	}
}

// Done returns a channel closed when the current activation exits. For a
// never-started node the channel is already closed.
func (s *State) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done == nil {
		return closedChan
	}
	return s.done
}

// Reset returns a finished node to NOT_RUNNING. Composites reset their
// children with it before re-running.
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == StatusRunning {
		return
	}
	s.status = StatusNotRunning
	s.flowIn = nil
	s.flowOut = nil
	s.fault = nil
	s.done = nil
	s.cancel = nil
	s.interrupted = false
}

// DebugInfo returns the node's {name, type, status} snapshot. Composites
// shadow this to attach children.
func (s *State) DebugInfo() *DebugInfo {
	return &DebugInfo{Name: s.name, Type: s.kind, Status: s.Status()}
}
