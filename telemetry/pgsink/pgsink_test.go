package pgsink

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/brinkedge/ackq/telemetry"
)

type fakeInserter struct {
	calls int
	args  []interface{}
	err   error
}

func (f *fakeInserter) Exec(_ context.Context, _ string, args ...interface{}) (int64, error) {
	f.calls++
	f.args = args
	return 1, f.err
}

func TestInsertPassesSnapshotFields(t *testing.T) {
	fi := &fakeInserter{}
	s := &Sink{db: fi}

	snap := telemetry.Snapshot{
		Time: time.Unix(100, 0), MaxBurst: 4, MaxPayloadLen: 200,
		TimeoutCount: 1, DynBlockCount: 2, LateAcks: 3, RebindMisses: 5,
	}
	require.NoError(t, s.Insert(context.Background(), snap))
	require.Equal(t, 1, fi.calls)
	require.Equal(t, []interface{}{snap.Time, 4, 200, 1, 2, 3, 5}, fi.args)
}

func TestInsertWrapsError(t *testing.T) {
	fi := &fakeInserter{err: errors.New("connection reset")}
	s := &Sink{db: fi}

	err := s.Insert(context.Background(), telemetry.Snapshot{})
	require.Error(t, err)
	require.ErrorContains(t, err, "connection reset")
}

func TestRunStopsOnContextCancel(t *testing.T) {
	fi := &fakeInserter{}
	s := &Sink{db: fi}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx, time.Millisecond, func() telemetry.Snapshot { return telemetry.Snapshot{} }, nil)
		close(done)
	}()

	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after context cancellation")
	}
	require.Greater(t, fi.calls, 0)
}
