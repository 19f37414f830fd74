//
// Copyright (C) 2026 CMU-TBD.  All rights reserved.
//
// behavior-machine-go is licensed under the Apache License Version 2.0.
//
//

// Package library provides ready-made leaf behaviors and composite states
// built on the core execution engine.
package library
