package ackq

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/brinkedge/ackq/telemetry"
)

// placeholderMsgID is the transient value a slot carries between being
// filled and the transport returning its real id. It is never
// observable outside the Facade's critical section.
const placeholderMsgID = 0

// Facade wires the Allocator, Reconciler, Sweeper, Diagnostics, and
// ControlRing behind one mutex, exposing the queue's public
// operations. No public method suspends internally; ctx is consulted
// only by the Publisher upcall.
type Facade struct {
	mu sync.Mutex

	cfg Config
	pub Publisher

	static *StaticPool
	dyn    *DynPool
	pools  pools

	allocator  *Allocator
	reconciler *Reconciler
	sweeper    *Sweeper
	diag       *Diagnostics
	control    *ControlRing

	nowFn func() time.Time
}

// New constructs a Facade from cfg (zero fields defaulted) and pub,
// the transport the core will invoke from Publish. It starts
// initialized, equivalent to calling Init() once.
func New(cfg Config, pub Publisher) *Facade {
	cfg.Normalize()
	f := &Facade{cfg: cfg, pub: pub, nowFn: time.Now}
	f.build()
	return f
}

func (f *Facade) build() {
	f.static = newStaticPool(f.cfg.StaticSlotCount, f.cfg.TopicMax, f.cfg.PayloadMax)
	f.dyn = newDynPool(f.cfg.MaxDynamicBlocks)
	f.pools = pools{static: f.static, dyn: f.dyn}
	f.diag = &Diagnostics{}
	f.control = newControlRing(f.cfg.ControlRingCap)
	f.allocator = newAllocator(&f.pools, f.cfg.DynamicSlotCount, f.cfg.TopicMax, f.cfg.PayloadMax, f.diag)
	f.reconciler = newReconciler(&f.pools, f.diag)
	f.sweeper = newSweeper(&f.pools, f.diag, f.control, f.cfg.AckTimeout, f.cfg.DynBlockIdleTimeout, f.cfg.ControlTimeout)
}

// Init resets the Facade to its just-constructed state: every slot
// free, DynPool empty, diagnostics and ControlRing zeroed. Idempotent.
func (f *Facade) Init() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.static.reset()
	f.dyn.reset()
	f.diag.reset()
	f.control.reset()
}

// Publish clamps and copies topic/payload into a newly acquired slot,
// invokes the transport, and records the assigned id. It returns the
// legacy int code (>=0 success, -1 invalid/transport failure, -2 no
// capacity) alongside an idiomatic error for errors.Is callers.
func (f *Facade) Publish(ctx context.Context, topic, payload []byte, retain bool) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.pub == nil || len(topic) == 0 {
		return -1, ErrInvalidArgument
	}

	now := f.nowFn()
	f.sweeper.tick(now)

	slot, _ := f.allocator.acquire(now)
	if slot == nil {
		return -2, ErrNoCapacity
	}

	if slot.topicTruncated(topic) {
		slog.Warn("ackq: topic truncated", "capacity", cap(slot.Topic)-1)
	}
	if slot.payloadTruncated(payload) {
		slog.Warn("ackq: payload truncated", "capacity", cap(slot.Payload)-1)
	}
	slot.fill(topic, payload, retain, placeholderMsgID, now)
	f.allocator.recordBurst()
	f.diag.updatePayloadLen(slot.PayloadLen)

	// QoS=1 is the only acknowledged path through the slot pool; all
	// other QoS traffic goes through EnqueueControl instead.
	msgID, err := f.pub.Publish(ctx, string(slot.Topic[:slot.TopicLen]), slot.Payload[:slot.PayloadLen], 1, retain)
	if msgID < 0 || err != nil {
		slot.free()
		return -1, fmt.Errorf("%w: %v", ErrTransportFailed, err)
	}
	slot.MsgID = msgID
	return msgID, nil
}

// Track registers a message the caller already handed to the
// transport out of band, skipping the transport call. msgID is stored
// directly and may be a negative placeholder other than the free
// sentinel (-1), to be resolved later with Rebind.
func (f *Facade) Track(ctx context.Context, topic, payload []byte, retain bool, msgID int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(topic) == 0 || msgID == freeMsgID {
		return -1, ErrInvalidArgument
	}

	now := f.nowFn()
	f.sweeper.tick(now)

	slot, _ := f.allocator.acquire(now)
	if slot == nil {
		return -2, ErrNoCapacity
	}

	if slot.topicTruncated(topic) {
		slog.Warn("ackq: topic truncated", "capacity", cap(slot.Topic)-1)
	}
	if slot.payloadTruncated(payload) {
		slog.Warn("ackq: payload truncated", "capacity", cap(slot.Payload)-1)
	}
	slot.fill(topic, payload, retain, msgID, now)
	f.allocator.recordBurst()
	f.diag.updatePayloadLen(slot.PayloadLen)
	return msgID, nil
}

// Rebind updates a tracked slot's id from provisional to final.
func (f *Facade) Rebind(provisional, final int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	hit, attempted := f.reconciler.rebind(provisional, final)
	if attempted && !hit {
		slog.Warn("ackq: rebind miss", "provisional", provisional, "final", final)
	}
}

// OnPublished reconciles a transport acknowledgement against the
// tracked slots. A miss (duplicate or post-timeout ack) is logged and
// otherwise silent.
func (f *Facade) OnPublished(msgID int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.reconciler.onPublished(msgID, f.nowFn()) {
		slog.Warn("ackq: late acknowledgement", "msg_id", msgID)
	}
}

// Tick drives the Sweeper's timeout sweep, DynBlock reclamation, and
// ControlRing expiry. Safe to call at any frequency.
func (f *Facade) Tick() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sweeper.tick(f.nowFn())
}

// ClearAll drops every tracked message and resets diagnostics and the
// ControlRing. The only cancellation the core offers is this coarse
// one.
func (f *Facade) ClearAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.static.reset()
	f.dyn.reset()
	f.diag.reset()
	f.control.reset()
}

// LogDiagnostics emits the five monotonic counters at info level.
func (f *Facade) LogDiagnostics() {
	f.mu.Lock()
	snap := f.diag.Snapshot(f.nowFn(), f.dyn.len())
	f.mu.Unlock()
	slog.Info("ackq: diagnostics",
		"max_burst", snap.MaxBurst,
		"max_payload_len", snap.MaxPayloadLen,
		"timeout_count", snap.TimeoutCount,
		"block_count", snap.DynBlockCount,
		"late_acks", snap.LateAcks,
		"rebind_misses", snap.RebindMisses,
	)
}

// Size returns the ControlRing's current total byte accounting.
func (f *Facade) Size() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.control.totalBytes()
}

// Snapshot returns a read-only copy of the current diagnostics.
func (f *Facade) Snapshot() telemetry.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.diag.Snapshot(f.nowFn(), f.dyn.len())
}

// EnqueueControl places a non-QoS1 message on the ControlRing.
func (f *Facade) EnqueueControl(msg ControlMessage) *ControlEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.control.enqueue(msg, f.nowFn())
}

func (f *Facade) ControlFindByID(id int) *ControlEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.control.findByID(id)
}

func (f *Facade) ControlSetState(id int, state ControlState) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.control.setState(id, state)
}

func (f *Facade) ControlSetTick(id int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.control.setTick(id, f.nowFn())
}

// DeleteControl removes a ControlRing entry by id. When isPublishAck
// is set, it first forwards to the Reconciler as on_published(id) —
// mqtt_outbox.c's outbox_delete special-cases PUBLISH messages this
// way before touching the ring itself.
func (f *Facade) DeleteControl(id int, isPublishAck bool) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if isPublishAck {
		f.reconciler.onPublished(id, f.nowFn())
	}
	return f.control.deleteByID(id)
}

func (f *Facade) ControlDequeueByState(state ControlState) *ControlEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.control.dequeueByState(state)
}

func (f *Facade) ControlDeleteExpired() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.control.deleteExpired(f.nowFn(), f.cfg.ControlTimeout)
}
