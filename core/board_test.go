//
// Copyright (C) 2026 CMU-TBD.  All rights reserved.
//
// behavior-machine-go is licensed under the Apache License Version 2.0.
//
//

package core

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoardBasicOps(t *testing.T) {
	b := NewBoard()
	_, ok := b.Get("missing")
	assert.False(t, ok)
	assert.False(t, b.Exists("missing"))

	b.Set("k", 42)
	v, ok := b.Get("k")
	require.True(t, ok)
	assert.Equal(t, 42, v)
	assert.True(t, b.Exists("k"))

	b.Set("k", "replaced")
	v, _ = b.Get("k")
	assert.Equal(t, "replaced", v)

	b.Delete("k")
	assert.False(t, b.Exists("k"))
	b.Delete("k") // deleting absent keys is fine
}

func TestBoardConcurrentAccess(t *testing.T) {
	b := NewBoard()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				b.Set("shared", n)
				b.Get("shared")
				b.Exists("shared")
			}
		}(i)
	}
	wg.Wait()
	assert.True(t, b.Exists("shared"))
}

// boardWriter stores its flow-in on the board; boardReader reads the same key
// back out into its flow-out. Together they exercise board handoff between
// states in a running machine.
type boardWriter struct {
	State
	key string
}

func (w *boardWriter) Execute(_ context.Context, board *Board) (Status, error) {
	board.Set(w.key, w.FlowIn())
	return StatusSuccess, nil
}

type boardReader struct {
	State
	key string
}

func (r *boardReader) Execute(_ context.Context, board *Board) (Status, error) {
	v, ok := board.Get(r.key)
	if !ok {
		return StatusFailed, nil
	}
	r.SetFlowOut(v)
	return StatusSuccess, nil
}

func TestBoardHandoffThroughMachine(t *testing.T) {
	w := &boardWriter{key: "msg"}
	w.Init("writer", w)
	r := &boardReader{key: "msg"}
	r.Init("reader", r)
	w.AddTransitionOnSuccess(r)

	mac := NewMachine("mac", w, WithEndStates("reader"), WithRate(100))
	status := mac.Run(NewBoard(), "via board")

	assert.Equal(t, StatusSuccess, status)
	assert.Equal(t, "via board", r.FlowOut())
}
