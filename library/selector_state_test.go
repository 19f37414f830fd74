//
// Copyright (C) 2026 CMU-TBD.  All rights reserved.
//
// behavior-machine-go is licensed under the Apache License Version 2.0.
//
//

package library

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmu-tbd/behavior-machine-go/core"
)

func TestSelectorFirstSuccessWins(t *testing.T) {
	fail := newFailNode(nil, "f1")
	win := NewSetFlowState("winner", "w1")
	spare := newCaptureNode("spare")
	sel := NewSelectorState("sel", fail, win, spare)

	require.NoError(t, sel.Start(core.NewBoard(), nil))
	require.True(t, sel.Wait(2*time.Second))

	assert.Equal(t, core.StatusSuccess, sel.Status())
	assert.Equal(t, "winner", sel.FlowOut())
	assert.Equal(t, core.StatusNotRunning, spare.Status(), "children after the winner never start")
}

func TestSelectorAllFail(t *testing.T) {
	sel := NewSelectorState("sel",
		newFailNode("first", "f1"),
		newFailNode("last", "f2"),
	)
	require.NoError(t, sel.Start(core.NewBoard(), nil))
	require.True(t, sel.Wait(2*time.Second))

	assert.Equal(t, core.StatusFailed, sel.Status())
	assert.Equal(t, "last", sel.FlowOut())
}

func TestSelectorChildrenShareFlowIn(t *testing.T) {
	fail := newFailNode(nil, "f1")
	capture := newCaptureNode("c1")
	sel := NewSelectorState("sel", fail, capture)

	require.NoError(t, sel.Start(core.NewBoard(), "same for all"))
	require.True(t, sel.Wait(2*time.Second))

	assert.Equal(t, core.StatusSuccess, sel.Status())
	assert.Equal(t, "same for all", capture.Seen())
}

func TestSelectorChildFaultPropagates(t *testing.T) {
	sel := NewSelectorState("sel",
		newFailNode(nil, "f1"),
		newRaiseNode("boom", "r1"),
	)
	mac := core.NewMachine("mac", sel, core.WithEndStates("sel"), core.WithRate(50))
	status := mac.Run(core.NewBoard(), nil)

	assert.Equal(t, core.StatusException, status)
	assert.Equal(t, "mac.sel.r1", mac.FaultOrigin())
}

func TestSelectorInterruptMidRun(t *testing.T) {
	block := newBlockNode(10*time.Second, "b")
	sel := NewSelectorState("sel", block, newCaptureNode("c1"))

	require.NoError(t, sel.Start(core.NewBoard(), nil))
	time.Sleep(100 * time.Millisecond)
	sel.Interrupt()

	assert.Equal(t, core.StatusInterrupted, sel.Status())
	assert.Equal(t, core.StatusInterrupted, block.Status())
}
