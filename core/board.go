//
// Copyright (C) 2026 CMU-TBD.  All rights reserved.
//
// behavior-machine-go is licensed under the Apache License Version 2.0.
//
//

package core

import "sync"

// Board is the shared mutable context handed to every state's body. It is an
// opaque read/write bag with no behavior of its own; the engine never writes
// to it. Individual operations are goroutine safe, but read-modify-write
// discipline across operations is the responsibility of behavior authors.
type Board struct {
	mu   sync.RWMutex
	data map[string]any
}

// NewBoard creates an empty board.
func NewBoard() *Board {
	return &Board{data: make(map[string]any)}
}

// Get returns the value stored under key.
func (b *Board) Get(key string) (any, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.data[key]
	return v, ok
}

// Set stores value under key.
func (b *Board) Set(key string, value any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data[key] = value
}

// Delete removes key from the board.
func (b *Board) Delete(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.data, key)
}

// Exists reports whether key is present.
func (b *Board) Exists(key string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.data[key]
	return ok
}
