// Package telemetry defines the read-only diagnostics projection the
// core publishes for export and persistence. It has no dependency on
// the ackq core so it can be imported by both sides (core and sinks)
// without a cycle.
package telemetry

import "time"

// Snapshot is a point-in-time copy of Diagnostics' counters. It is
// telemetry, not queue content: nothing in it can reconstruct a
// tracked message, so sinking it does not reintroduce the
// cross-restart persistence the core's Non-goals exclude.
type Snapshot struct {
	Time          time.Time
	MaxBurst      int
	MaxPayloadLen int
	TimeoutCount  int
	DynBlockCount int
	LateAcks      int
	RebindMisses  int
}
