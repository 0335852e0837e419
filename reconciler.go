package ackq

import "time"

// Reconciler matches transport acknowledgements to occupied slots.
type Reconciler struct {
	pools *pools
	diag  *Diagnostics
}

func newReconciler(p *pools, diag *Diagnostics) *Reconciler {
	return &Reconciler{pools: p, diag: diag}
}

// onPublished frees the slot holding msgID, if any. A miss is recorded
// as a late ack and otherwise ignored: duplicate or post-timeout acks
// must never panic or mutate unrelated state.
func (r *Reconciler) onPublished(msgID int, now time.Time) (hit bool) {
	r.pools.forEachSlot(func(loc slotLoc, s *Slot) bool {
		if !s.InUse || s.MsgID != msgID {
			return false
		}
		s.free()
		if loc.block != nil && loc.block.allFree() {
			loc.block.lastActiveAt = now
		}
		hit = true
		return true
	})
	if !hit {
		r.diag.incLateAck()
	}
	return hit
}

// rebind retargets an occupied slot's msg_id from provisional to
// final. It is a no-op for final <= 0, provisional == final, or a
// provisional equal to the free sentinel (-1); an unmatched
// provisional id is a logged miss rather than an error. Provisional
// ids assigned by track() are otherwise free to be negative (e.g. a
// locally-generated placeholder awaiting the transport's real id).
func (r *Reconciler) rebind(provisional, final int) (hit, attempted bool) {
	if provisional == freeMsgID || final <= 0 || provisional == final {
		return false, false
	}
	attempted = true
	r.pools.forEachSlot(func(_ slotLoc, s *Slot) bool {
		if s.InUse && s.MsgID == provisional {
			s.MsgID = final
			hit = true
			return true
		}
		return false
	})
	if !hit {
		r.diag.incRebindMiss()
	}
	return hit, attempted
}
