package ackq

// pools bundles the StaticPool and DynPool so the Allocator,
// Reconciler, Sweeper, and Facade share one scan order: static by
// index, then dynamic blocks in block order and slot order within
// each block. The Reconciler, the Allocator's eviction pass, and the
// burst count go through forEachSlot; the Allocator's first-free
// searches and the Sweeper walk the pools directly in the same order.
type pools struct {
	static *StaticPool
	dyn    *DynPool
}

// slotLoc identifies where a slot returned by forEachSlot lives. block
// is nil for a StaticPool slot.
type slotLoc struct {
	block *DynBlock
}

// forEachSlot visits every slot in scan order, stopping as soon as fn
// returns true. It returns whatever fn returned on the last visit.
func (p *pools) forEachSlot(fn func(loc slotLoc, s *Slot) bool) bool {
	for i := range p.static.slots {
		if fn(slotLoc{}, &p.static.slots[i]) {
			return true
		}
	}
	for _, b := range p.dyn.blocks {
		for i := range b.slots {
			if fn(slotLoc{block: b}, &b.slots[i]) {
				return true
			}
		}
	}
	return false
}

// countOccupied returns the number of in-use slots across both tiers,
// used by the Allocator to update the peak-burst counter.
func (p *pools) countOccupied() int {
	n := 0
	p.forEachSlot(func(_ slotLoc, s *Slot) bool {
		if s.InUse {
			n++
		}
		return false
	})
	return n
}
