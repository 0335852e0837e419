package ackq

import (
	"time"

	"github.com/brinkedge/ackq/telemetry"
)

// Diagnostics holds the queue's monotonic counters. All five only
// increase between init() calls.
type Diagnostics struct {
	maxBurst        int
	maxPayloadLen   int
	timeoutCount    int
	lateAckCount    int
	rebindMissCount int
}

func (d *Diagnostics) updateBurst(current int) {
	if current > d.maxBurst {
		d.maxBurst = current
	}
}

func (d *Diagnostics) updatePayloadLen(n int) {
	if n > d.maxPayloadLen {
		d.maxPayloadLen = n
	}
}

func (d *Diagnostics) incTimeout()    { d.timeoutCount++ }
func (d *Diagnostics) incLateAck()    { d.lateAckCount++ }
func (d *Diagnostics) incRebindMiss() { d.rebindMissCount++ }

func (d *Diagnostics) reset() { *d = Diagnostics{} }

// Snapshot returns a read-only point-in-time copy of the counters,
// safe to export or persist without touching queue content.
func (d *Diagnostics) Snapshot(now time.Time, dynBlockCount int) telemetry.Snapshot {
	return telemetry.Snapshot{
		Time:          now,
		MaxBurst:      d.maxBurst,
		MaxPayloadLen: d.maxPayloadLen,
		TimeoutCount:  d.timeoutCount,
		DynBlockCount: dynBlockCount,
		LateAcks:      d.lateAckCount,
		RebindMisses:  d.rebindMissCount,
	}
}
