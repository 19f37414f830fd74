//
// Copyright (C) 2026 CMU-TBD.  All rights reserved.
//
// behavior-machine-go is licensed under the Apache License Version 2.0.
//
//

package core

import "github.com/panjf2000/ants/v2"

// activationPool runs every state activation. Cyclic machines restart their
// states many times per second; worker reuse keeps that cheap. Capacity is
// unbounded so nested machines can never deadlock waiting for a worker.
var activationPool, _ = ants.NewPool(-1)

// spawn schedules f on the activation pool, falling back to a plain goroutine
// if the pool has been released.
func spawn(f func()) {
	if activationPool != nil {
		if err := activationPool.Submit(f); err == nil {
			return
		}
	}
	go f()
}
