//
// Copyright (C) 2026 CMU-TBD.  All rights reserved.
//
// behavior-machine-go is licensed under the Apache License Version 2.0.
//
//

package core

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/cmu-tbd/behavior-machine-go/log"
	"github.com/cmu-tbd/behavior-machine-go/telemetry/trace"
)

// Machine drives a graph of states from a configured root. It ticks the
// current state at a configurable rate on its own goroutine, follows
// transitions, and finishes once the current state's name is in the end set
// and that state's activation is done. A Machine is itself a Node, so
// machines nest to arbitrary depth; each level owns exactly one tick
// goroutine and only ever inspects or interrupts its immediate current child.
type Machine struct {
	State

	root      Node
	endStates map[string]struct{}
	rate      float64
	debug     bool
	logger    log.Logger
	observer  Observer

	curMu  sync.RWMutex
	curr   Node
	runID  string
	seq    int64
	manual bool
}

// MachineOption configures a Machine.
type MachineOption func(*Machine)

// WithEndStates sets the names of the machine's terminal states. Reaching one
// of them by transition ends the run once that state itself finishes.
func WithEndStates(names ...string) MachineOption {
	return func(m *Machine) {
		for _, n := range names {
			m.endStates[n] = struct{}{}
		}
	}
}

// WithRate sets the tick rate in ticks per second. A rate <= 0 means tick as
// fast as possible, still yielding between iterations.
func WithRate(ticksPerSecond float64) MachineOption {
	return func(m *Machine) { m.rate = ticksPerSecond }
}

// WithDebug enables per-tick debug logging of the active path.
func WithDebug(debug bool) MachineOption {
	return func(m *Machine) { m.debug = debug }
}

// WithLogger sets the logger used by the debug observer.
func WithLogger(logger log.Logger) MachineOption {
	return func(m *Machine) { m.logger = logger }
}

// WithObserver installs an observer invoked synchronously once per tick.
// It replaces the default debug-logging observer.
func WithObserver(o Observer) MachineOption {
	return func(m *Machine) { m.observer = o }
}

// NewMachine creates a machine that starts at root.
func NewMachine(name string, root Node, opts ...MachineOption) *Machine {
	m := &Machine{
		root:      root,
		endStates: make(map[string]struct{}),
		logger:    log.Default,
	}
	m.Init(name, m)
	for _, opt := range opts {
		opt(m)
	}
	if m.observer == nil && m.debug {
		m.observer = &logObserver{logger: m.logger}
	}
	return m
}

// Current returns the machine's current node, or nil before the first start.
func (m *Machine) Current() Node {
	m.curMu.RLock()
	defer m.curMu.RUnlock()
	return m.curr
}

// RunID returns the uuid of the current (or last) activation.
func (m *Machine) RunID() string {
	m.curMu.RLock()
	defer m.curMu.RUnlock()
	return m.runID
}

// IsEnd reports whether the current node's name is in the end set and that
// node has finished. Reaching an end state by transition is not sufficient
// until the state itself is terminal.
func (m *Machine) IsEnd() bool {
	cur := m.Current()
	if cur == nil {
		return false
	}
	if !m.isEndName(cur.Name()) {
		return false
	}
	return cur.Status().Terminal()
}

func (m *Machine) isEndName(name string) bool {
	_, ok := m.endStates[name]
	return ok
}

// Run starts the machine and blocks until its tick goroutine exits. It
// returns the machine's final status; on EXCEPTION the fault and its origin
// are queryable via Err and FaultOrigin.
func (m *Machine) Run(board *Board, flowIn any) Status {
	if err := m.Start(board, flowIn); err != nil {
		return m.Status()
	}
	m.Wait(0)
	return m.Status()
}

// StartManual starts the machine in manual mode: the root is started, but no
// tick goroutine is spawned; the caller drives the machine with Update.
func (m *Machine) StartManual(board *Board, flowIn any) error {
	m.mu.Lock()
	if m.status == StatusRunning {
		m.mu.Unlock()
		return ErrAlreadyRunning
	}
	m.status = StatusRunning
	m.flowIn = flowIn
	m.flowOut = nil
	m.fault = nil
	m.mu.Unlock()

	m.setManual(true)
	return m.startRoot(board)
}

// Update performs one manual tick. When wait is true it first blocks until
// the current state's activation exits, so the tick is guaranteed to observe
// a settled status.
func (m *Machine) Update(board *Board, wait bool) {
	if m.Status() != StatusRunning {
		return
	}
	if wait {
		if cur := m.Current(); cur != nil {
			cur.Wait(0)
		}
	}
	fault := m.stepOnce(context.Background(), board)
	m.observe()
	if fault != nil {
		m.haltCurrent()
		m.settleManual(StatusException, newFault(m.QualifiedName(), fault))
		return
	}
	if m.IsEnd() {
		m.SetFlowOut(m.Current().FlowOut())
		m.settleManual(StatusSuccess, nil)
	}
}

// Interrupt stops the machine: the current state is interrupted and joined,
// and the machine becomes INTERRUPTED. A machine that already reached a
// terminal status is left untouched.
func (m *Machine) Interrupt() {
	if m.isManual() {
		m.mu.Lock()
		if m.status != StatusRunning {
			m.mu.Unlock()
			return
		}
		m.status = StatusInterrupted
		m.mu.Unlock()
		m.haltCurrent()
		return
	}
	m.State.Interrupt()
}

// Execute is the machine's tick loop; it runs on the machine's own activation
// goroutine when the machine is started (directly or as a nested node).
func (m *Machine) Execute(ctx context.Context, board *Board) (Status, error) {
	m.setManual(false)
	ctx, span := trace.Tracer.Start(ctx, "machine_run")
	defer span.End()
	span.SetAttributes(attribute.String("behavior.machine.name", m.QualifiedName()))

	if err := m.startRoot(board); err != nil {
		return 0, err
	}
	span.SetAttributes(attribute.String("behavior.machine.run_id", m.RunID()))

	var ticker *time.Ticker
	if m.rate > 0 {
		ticker = time.NewTicker(m.period())
		defer ticker.Stop()
	}
	for {
		if ctx.Err() != nil {
			m.haltCurrent()
			return StatusInterrupted, nil
		}
		if fault := m.stepOnce(ctx, board); fault != nil {
			// The current state may still be running (the fault can come from
			// a transition predicate one level above it); drain it before
			// this machine reports its own terminal status.
			m.haltCurrent()
			return 0, fault
		}
		m.observe()
		if m.IsEnd() {
			m.SetFlowOut(m.Current().FlowOut())
			return StatusSuccess, nil
		}
		if ticker != nil {
			select {
			case <-ctx.Done():
			case <-ticker.C:
			}
		} else {
			select {
			case <-ctx.Done():
			default:
				runtime.Gosched()
			}
		}
	}
}

// startRoot makes the configured root current and starts it with the
// machine's own flow-in.
func (m *Machine) startRoot(board *Board) error {
	m.curMu.Lock()
	m.runID = uuid.NewString()
	m.seq = 0
	m.curr = m.root
	m.curMu.Unlock()

	if err := m.StartChild(m.root, board, m.FlowIn()); err != nil {
		return newFault(m.root.QualifiedName(), err)
	}
	return nil
}

// stepOnce performs one tick: it surfaces a fault captured by the current
// state, evaluates its transitions, and — when the tick lands on an end
// state — waits for that state to finish so that end detection cannot race
// the state's own goroutine.
func (m *Machine) stepOnce(ctx context.Context, board *Board) error {
	cur := m.Current()
	if cur.CheckStatus(StatusException) {
		return cur.Err()
	}
	next, err := cur.Tick(board)
	if err != nil {
		return err
	}
	if next != cur {
		m.setCurrent(next)
		cur = next
	}
	if m.isEndName(cur.Name()) {
		select {
		case <-cur.Done():
		case <-ctx.Done():
			return nil
		}
		if cur.CheckStatus(StatusException) {
			return cur.Err()
		}
	}
	return nil
}

func (m *Machine) setCurrent(n Node) {
	m.curMu.Lock()
	m.curr = n
	m.curMu.Unlock()
}

// haltCurrent interrupts and joins the current state if it is still running.
func (m *Machine) haltCurrent() {
	if cur := m.Current(); cur != nil {
		cur.Interrupt()
	}
}

// observe delivers one TickEvent to the configured observer.
func (m *Machine) observe() {
	if m.observer == nil {
		return
	}
	m.curMu.Lock()
	m.seq++
	seq := m.seq
	runID := m.runID
	m.curMu.Unlock()
	m.observer.OnTick(&TickEvent{
		RunID:    runID,
		Seq:      seq,
		Time:     time.Now(),
		Snapshot: m.DebugInfo(),
	})
}

// settleManual records a terminal outcome in manual mode, where there is no
// activation goroutine to do it.
func (m *Machine) settleManual(status Status, fault *Fault) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.status != StatusRunning {
		return
	}
	m.status = status
	m.fault = fault
}

func (m *Machine) setManual(v bool) {
	m.curMu.Lock()
	m.manual = v
	m.curMu.Unlock()
}

func (m *Machine) isManual() bool {
	m.curMu.RLock()
	defer m.curMu.RUnlock()
	return m.manual
}

func (m *Machine) period() time.Duration {
	return time.Duration(float64(time.Second) / m.rate)
}

// DebugInfo returns the machine snapshot with the current state as its only
// child; the active path through nested machines and composites follows from
// recursion.
func (m *Machine) DebugInfo() *DebugInfo {
	info := m.State.DebugInfo()
	if cur := m.Current(); cur != nil {
		info.Children = []*DebugInfo{cur.DebugInfo()}
	}
	return info
}
