// Package trace centralizes access to the module's tracer, so every
// package reports through the same sink without importing schuko directly.
package trace

import (
	"github.com/npillmayer/schuko/tracing"
)

// T traces with key 'rpal', following the one-tracer-per-subsystem
// convention: components select a sub-tracer by passing their own key.
func T() tracing.Trace {
	return tracing.Select("rpal")
}

// Select returns a tracer scoped to a given subsystem, e.g. "rpal.scan"
// or "rpal.cse".
func Select(key string) tracing.Trace {
	return tracing.Select(key)
}
