//
// Copyright (C) 2026 CMU-TBD.  All rights reserved.
//
// behavior-machine-go is licensed under the Apache License Version 2.0.
//
//

// Package trace exposes the tracer used for machine-run and state-activation
// spans. It integrates with OpenTelemetry; by default spans are no-ops until
// a real provider is installed.
package trace

import (
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const instrumentationName = "github.com/cmu-tbd/behavior-machine-go"

// TracerProvider is the global tracer provider for telemetry.
var TracerProvider trace.TracerProvider = noop.NewTracerProvider()

// Tracer is the global tracer instance for telemetry.
var Tracer trace.Tracer = TracerProvider.Tracer(instrumentationName)

// SetTracerProvider installs the provider used for all engine spans. Call it
// before starting machines; the engine does not synchronize against it.
func SetTracerProvider(tp trace.TracerProvider) {
	TracerProvider = tp
	Tracer = tp.Tracer(instrumentationName)
}
