package ackq

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var errPublisherRejected = errors.New("publisher rejected message")

// sequentialPublisher hands out consecutive ids starting at 1, matching
// the scenario fixtures below.
type sequentialPublisher struct {
	next int
	fail bool
}

func (p *sequentialPublisher) Publish(_ context.Context, _ string, _ []byte, _ int, _ bool) (int, error) {
	if p.fail {
		return -1, errPublisherRejected
	}
	p.next++
	return p.next, nil
}

// fakeClock gives tests control over the Facade's notion of "now"
// without touching the wall clock, grounded on the nowFn field pattern
// used elsewhere in the pack for deterministic time-based tests.
type fakeClock struct{ t time.Time }

func newFakeClock() *fakeClock { return &fakeClock{t: time.Unix(0, 0)} }
func (c *fakeClock) now() time.Time         { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func scenarioConfig() Config {
	return Config{
		StaticSlotCount:     3,
		DynamicSlotCount:    3,
		MaxDynamicBlocks:    2,
		PayloadMax:          16,
		TopicMax:            16,
		AckTimeout:          100 * time.Millisecond,
		DynBlockIdleTimeout: 500 * time.Millisecond,
		ControlRingCap:      8,
	}
}

func newScenarioFacade(cfg Config, pub Publisher) (*Facade, *fakeClock) {
	f := New(cfg, pub)
	clk := newFakeClock()
	f.nowFn = clk.now
	return f, clk
}

func TestS1SteadyState(t *testing.T) {
	pub := &sequentialPublisher{}
	f, _ := newScenarioFacade(scenarioConfig(), pub)

	id1, err := f.Publish(context.Background(), []byte("a"), []byte("1"), false)
	require.NoError(t, err)
	id2, err := f.Publish(context.Background(), []byte("b"), []byte("2"), false)
	require.NoError(t, err)
	id3, err := f.Publish(context.Background(), []byte("c"), []byte("3"), false)
	require.NoError(t, err)

	f.OnPublished(id1)
	f.OnPublished(id2)
	f.OnPublished(id3)

	for i := range f.static.slots {
		require.False(t, f.static.slots[i].InUse)
	}
	snap := f.Snapshot()
	require.Equal(t, 3, snap.MaxBurst)
	require.Equal(t, 0, snap.TimeoutCount)
	require.Equal(t, 0, f.dyn.len())
}

func TestS2BurstIntoOneBlock(t *testing.T) {
	pub := &sequentialPublisher{}
	f, _ := newScenarioFacade(scenarioConfig(), pub)

	for i := 0; i < 4; i++ {
		_, err := f.Publish(context.Background(), []byte("t"), []byte("x"), false)
		require.NoError(t, err)
	}

	occupiedStatic := 0
	for i := range f.static.slots {
		if f.static.slots[i].InUse {
			occupiedStatic++
		}
	}
	require.Equal(t, 3, occupiedStatic)
	require.Equal(t, 1, f.dyn.len())
	require.True(t, f.dyn.blocks[0].slots[0].InUse)
	require.Equal(t, 4, f.Snapshot().MaxBurst)
}

func TestS3EvictOldestOnExhaustion(t *testing.T) {
	pub := &sequentialPublisher{}
	cfg := scenarioConfig()
	cfg.MaxDynamicBlocks = 1
	f, clk := newScenarioFacade(cfg, pub)

	var ids []int
	for i := 0; i < 7; i++ {
		clk.advance(time.Millisecond)
		id, err := f.Publish(context.Background(), []byte("t"), []byte("x"), false)
		require.NoError(t, err)
		ids = append(ids, id)
	}

	// id 1 (the oldest) must have been evicted and reused.
	found1 := false
	f.pools.forEachSlot(func(_ slotLoc, s *Slot) bool {
		if s.InUse && s.MsgID == ids[0] {
			found1 = true
		}
		return false
	})
	require.False(t, found1, "evicted id should no longer be tracked")

	f.OnPublished(ids[0])
	require.Equal(t, 1, f.Snapshot().LateAcks)
	require.Equal(t, 6, f.Snapshot().MaxBurst)
}

func TestS4TimeoutSweep(t *testing.T) {
	pub := &sequentialPublisher{}
	f, clk := newScenarioFacade(scenarioConfig(), pub)

	id1, err := f.Publish(context.Background(), []byte("a"), []byte("1"), false)
	require.NoError(t, err)
	id2, err := f.Publish(context.Background(), []byte("b"), []byte("2"), false)
	require.NoError(t, err)

	clk.advance(150 * time.Millisecond)
	f.Tick()

	for i := range f.static.slots {
		require.False(t, f.static.slots[i].InUse)
	}
	require.Equal(t, 2, f.Snapshot().TimeoutCount)

	f.OnPublished(id1)
	f.OnPublished(id2)
	require.Equal(t, 2, f.Snapshot().LateAcks)
}

func TestS5IdleBlockReclamation(t *testing.T) {
	pub := &sequentialPublisher{}
	f, clk := newScenarioFacade(scenarioConfig(), pub)

	// Fill the static pool, then force one dynamic block.
	var ids []int
	for i := 0; i < 4; i++ {
		id, err := f.Publish(context.Background(), []byte("t"), []byte("x"), false)
		require.NoError(t, err)
		ids = append(ids, id)
	}
	require.Equal(t, 1, f.dyn.len())

	// Free the dynamic block's only occupant.
	f.OnPublished(ids[3])

	clk.advance(100 * time.Millisecond)
	f.Tick()
	require.Equal(t, 1, f.dyn.len(), "block should still be present before its idle timeout")

	clk.advance(500 * time.Millisecond)
	f.Tick()
	require.Equal(t, 0, f.dyn.len(), "block should be reclaimed once idle past its timeout")
}

func TestS6ProvisionalRebind(t *testing.T) {
	pub := &sequentialPublisher{}
	f, _ := newScenarioFacade(scenarioConfig(), pub)

	_, err := f.Track(context.Background(), []byte("x"), []byte("y"), false, -42)
	require.NoError(t, err)

	f.Rebind(-42, 17)
	f.OnPublished(17)

	for i := range f.static.slots {
		require.False(t, f.static.slots[i].InUse)
	}
	require.Equal(t, 0, f.Snapshot().LateAcks)
}

func TestClearAllResetsEverything(t *testing.T) {
	pub := &sequentialPublisher{}
	f, _ := newScenarioFacade(scenarioConfig(), pub)

	for i := 0; i < 5; i++ {
		_, err := f.Publish(context.Background(), []byte("t"), []byte("x"), false)
		require.NoError(t, err)
	}
	require.True(t, f.dyn.len() > 0)

	f.ClearAll()

	for i := range f.static.slots {
		require.False(t, f.static.slots[i].InUse)
		require.Equal(t, freeMsgID, f.static.slots[i].MsgID)
	}
	require.Equal(t, 0, f.dyn.len())
	snap := f.Snapshot()
	require.Zero(t, snap.MaxBurst)
	require.Zero(t, snap.TimeoutCount)
	require.Zero(t, snap.LateAcks)
	require.Zero(t, snap.RebindMisses)
}

func TestPublishInvalidArgument(t *testing.T) {
	pub := &sequentialPublisher{}
	f, _ := newScenarioFacade(scenarioConfig(), pub)

	id, err := f.Publish(context.Background(), nil, []byte("x"), false)
	require.Equal(t, -1, id)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestPublishTransportFailureClearsSlot(t *testing.T) {
	pub := &sequentialPublisher{fail: true}
	f, _ := newScenarioFacade(scenarioConfig(), pub)

	id, err := f.Publish(context.Background(), []byte("t"), []byte("x"), false)
	require.Equal(t, -1, id)
	require.ErrorIs(t, err, ErrTransportFailed)
	for i := range f.static.slots {
		require.False(t, f.static.slots[i].InUse)
	}
}

func TestControlRingOverwritesIndexZeroWhenFull(t *testing.T) {
	pub := &sequentialPublisher{}
	cfg := scenarioConfig()
	cfg.ControlRingCap = 2
	f, _ := newScenarioFacade(cfg, pub)

	e0 := f.EnqueueControl(ControlMessage{ID: 1, Len: 3})
	_ = f.EnqueueControl(ControlMessage{ID: 2, Len: 4})
	e2 := f.EnqueueControl(ControlMessage{ID: 3, Len: 5})

	require.Same(t, e0, e2)
	require.Equal(t, 3, e2.Msg.ID)
	require.Nil(t, f.ControlFindByID(1))
}

func TestDeleteControlForwardsPublishAckToReconciler(t *testing.T) {
	pub := &sequentialPublisher{}
	f, _ := newScenarioFacade(scenarioConfig(), pub)

	id, err := f.Publish(context.Background(), []byte("t"), []byte("x"), false)
	require.NoError(t, err)

	ok := f.DeleteControl(id, true)
	require.False(t, ok, "nothing was enqueued on the control ring for this id")
	for i := range f.static.slots {
		require.False(t, f.static.slots[i].InUse)
	}
}
