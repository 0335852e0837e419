package ackq

import "time"

// Sweeper performs the periodic maintenance pass: timeout expiry,
// DynBlock idle stamping/reclamation, and ControlRing expiry.
type Sweeper struct {
	pools        *pools
	diag         *Diagnostics
	control      *ControlRing
	ackTimeout   time.Duration
	idleTimeout  time.Duration
	controlTTL   time.Duration
}

func newSweeper(p *pools, diag *Diagnostics, control *ControlRing, ackTimeout, idleTimeout, controlTTL time.Duration) *Sweeper {
	return &Sweeper{pools: p, diag: diag, control: control, ackTimeout: ackTimeout, idleTimeout: idleTimeout, controlTTL: controlTTL}
}

// tick is idempotent and safe to invoke at any frequency.
func (sw *Sweeper) tick(now time.Time) {
	sw.sweepTimeouts(sw.pools.static.slots, now)
	for _, b := range sw.pools.dyn.blocks {
		sw.sweepTimeouts(b.slots, now)
		if b.allFree() {
			if b.lastActiveAt.IsZero() {
				b.lastActiveAt = now
			}
		} else {
			b.lastActiveAt = time.Time{}
		}
	}

	// Reclaim idle blocks, compacting to preserve order. Walk forward
	// without advancing the index on removal since later blocks shift
	// left.
	for i := 0; i < sw.pools.dyn.len(); {
		b := sw.pools.dyn.blocks[i]
		if b.allFree() && !b.lastActiveAt.IsZero() && now.Sub(b.lastActiveAt) > sw.idleTimeout {
			sw.pools.dyn.removeAt(i)
			continue
		}
		i++
	}

	sw.control.deleteExpired(now, sw.controlTTL)
}

func (sw *Sweeper) sweepTimeouts(slots []Slot, now time.Time) {
	for i := range slots {
		s := &slots[i]
		if s.InUse && now.Sub(s.Timestamp) > sw.ackTimeout {
			s.free()
			sw.diag.incTimeout()
		}
	}
}
