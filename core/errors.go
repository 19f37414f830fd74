//
// Copyright (C) 2026 CMU-TBD.  All rights reserved.
//
// behavior-machine-go is licensed under the Apache License Version 2.0.
//
//

package core

import (
	"errors"
	"fmt"
)

// ErrAlreadyRunning is returned by Start when the state still owns a live
// activation goroutine. Starting a running state is a programming error in
// the caller's graph.
var ErrAlreadyRunning = errors.New("state already has a live activation")

// Fault records an unexpected error raised by a state body or a transition
// predicate, together with the qualified dotted name of the node where it
// originated. The origin is preserved unchanged as the fault propagates
// through enclosing machines.
type Fault struct {
	// Origin is the full qualified name of the node that raised the fault,
	// e.g. "mac.seq.rs1".
	Origin string
	// Err is the original error.
	Err error
}

// Error implements the error interface.
func (f *Fault) Error() string {
	return fmt.Sprintf("fault at %s: %v", f.Origin, f.Err)
}

// Unwrap returns the original error.
func (f *Fault) Unwrap() error { return f.Err }

// AsFault extracts a *Fault from an error chain.
func AsFault(err error) (*Fault, bool) {
	var f *Fault
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

// newFault wraps err with an origin unless it already carries one.
func newFault(origin string, err error) *Fault {
	if f, ok := AsFault(err); ok {
		return f
	}
	return &Fault{Origin: origin, Err: err}
}
