//
// Copyright (C) 2026 CMU-TBD.  All rights reserved.
//
// behavior-machine-go is licensed under the Apache License Version 2.0.
//
//

// Package core implements the behavior execution engine: states, transitions,
// and the machine that ticks a graph of states on its own goroutine.
package core

import (
	"encoding/json"
	"fmt"
)

// Status is the execution status of a state.
type Status int

// Status values. The zero value is StatusNotRunning.
const (
	// StatusNotRunning means the state has not been started, or has been reset.
	StatusNotRunning Status = iota
	// StatusRunning means the state's activation goroutine is alive.
	StatusRunning
	// StatusSuccess means the state finished and reported success.
	StatusSuccess
	// StatusFailed means the state finished and reported a behavioral failure.
	StatusFailed
	// StatusInterrupted means the state was cancelled by its owner and its
	// activation goroutine has fully exited.
	StatusInterrupted
	// StatusException means the state's body or one of its descendants raised
	// a fault. The fault is queryable via Err.
	StatusException
)

var statusNames = map[Status]string{
	StatusNotRunning:  "NOT_RUNNING",
	StatusRunning:     "RUNNING",
	StatusSuccess:     "SUCCESS",
	StatusFailed:      "FAILED",
	StatusInterrupted: "INTERRUPTED",
	StatusException:   "EXCEPTION",
}

// String returns the canonical name of the status.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", int(s))
}

// Terminal reports whether execution has stopped in this status.
// StatusNotRunning is not terminal: it is the initial/reset status.
func (s Status) Terminal() bool {
	switch s {
	case StatusSuccess, StatusFailed, StatusInterrupted, StatusException:
		return true
	default:
		return false
	}
}

// Complete reports whether the status is a clean terminal outcome, i.e. the
// state ran to the end of its body. On-complete transitions fire on these and
// only these statuses.
func (s Status) Complete() bool {
	return s == StatusSuccess || s == StatusFailed
}

// MarshalJSON encodes the status as its string name so that debug snapshots
// stay readable for external tooling.
func (s Status) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON decodes a status from its string name.
func (s *Status) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for status, n := range statusNames {
		if n == name {
			*s = status
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", name)
}
