//
// Copyright (C) 2026 CMU-TBD.  All rights reserved.
//
// behavior-machine-go is licensed under the Apache License Version 2.0.
//
//

package library

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/cmu-tbd/behavior-machine-go/core"
)

// PrintState writes a fixed line of text and succeeds.
type PrintState struct {
	core.State
	text string
	w    io.Writer
}

// NewPrintState creates a state that prints text followed by a newline to
// standard output.
func NewPrintState(text, name string) *PrintState {
	p := &PrintState{text: text, w: os.Stdout}
	p.Init(name, p)
	return p
}

// SetWriter redirects output, e.g. into a buffer under test. Set it before
// the state is started.
func (p *PrintState) SetWriter(w io.Writer) *PrintState {
	p.w = w
	return p
}

// Execute implements core.Executable.
func (p *PrintState) Execute(_ context.Context, _ *core.Board) (core.Status, error) {
	fmt.Fprintln(p.w, p.text)
	return core.StatusSuccess, nil
}
