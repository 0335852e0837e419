package ackq

import "time"

// Allocator implements the admission policy: static search, dynamic
// search, growth, then oldest-victim eviction.
type Allocator struct {
	pools      *pools
	dynSlots   int
	topicMax   int
	payloadMax int
	diag       *Diagnostics
}

func newAllocator(p *pools, dynSlots, topicMax, payloadMax int, diag *Diagnostics) *Allocator {
	return &Allocator{pools: p, dynSlots: dynSlots, topicMax: topicMax, payloadMax: payloadMax, diag: diag}
}

// acquire returns a free slot ready to be filled, evicting the oldest
// occupant if every tier is exhausted and growth is unavailable.
// evicted reports whether the returned slot was reused via eviction
// (its previous occupant's msg_id is now lost).
func (a *Allocator) acquire(now time.Time) (slot *Slot, evicted bool) {
	// 1. Static search.
	for i := range a.pools.static.slots {
		s := &a.pools.static.slots[i]
		if !s.InUse {
			return s, false
		}
	}

	// 2. Dynamic search.
	for _, b := range a.pools.dyn.blocks {
		for i := range b.slots {
			s := &b.slots[i]
			if !s.InUse {
				// Idle -> Active: the block is occupied again.
				b.lastActiveAt = time.Time{}
				return s, false
			}
		}
	}

	// 3. Growth.
	if a.pools.dyn.canGrow() {
		b := newDynBlock(a.dynSlots, a.topicMax, a.payloadMax)
		a.pools.dyn.append(b)
		return &b.slots[0], false
	}

	// 4. Eviction: oldest timestamp across both tiers, ties broken by
	// scan order (static before dynamic, lower index first).
	var oldest *Slot
	var oldestTime time.Time
	a.pools.forEachSlot(func(_ slotLoc, s *Slot) bool {
		if !s.InUse {
			return false
		}
		if oldest == nil || s.Timestamp.Before(oldestTime) {
			oldest = s
			oldestTime = s.Timestamp
		}
		return false
	})
	if oldest == nil {
		// Structurally unreachable: step 1 would have already
		// returned if every pool were empty.
		return nil, false
	}
	oldest.free()
	return oldest, true
}

// recordBurst updates the peak-burst counter after a slot has been
// filled. Called by the Facade once the new occupant is marked in_use.
func (a *Allocator) recordBurst() {
	a.diag.updateBurst(a.pools.countOccupied())
}
