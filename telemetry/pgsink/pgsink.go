// Package pgsink periodically persists ackq.Diagnostics snapshots to
// Postgres for fleet-wide observability. It is deliberately
// one-directional — snapshots out, never read back to repopulate a
// queue — so it cannot be mistaken for the cross-restart queue-content
// persistence the core's Non-goals exclude.
package pgsink

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brinkedge/ackq/telemetry"
)

// rowInserter is the narrow slice of pgxpool.Pool the sink calls,
// letting tests exercise Sink.Insert without a live Postgres
// container.
type rowInserter interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (int64, error)
}

type poolExec struct{ pool *pgxpool.Pool }

func (p poolExec) Exec(ctx context.Context, sql string, args ...interface{}) (int64, error) {
	tag, err := p.pool.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const insertSnapshotSQL = `
INSERT INTO queue_diagnostics
	(recorded_at, max_burst, max_payload_len, timeout_count, dyn_block_count, late_acks, rebind_misses)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`

// Sink inserts a Snapshot row on demand with Insert, or on a fixed
// interval with Run (cmd/ackqsim uses Run).
type Sink struct {
	db rowInserter
}

// New wraps an existing pgxpool.Pool. The pool's lifecycle (including
// reconnection) is the caller's responsibility; pgxpool already
// retries acquisition internally.
func New(pool *pgxpool.Pool) *Sink {
	return &Sink{db: poolExec{pool: pool}}
}

// Insert persists one Snapshot row.
func (s *Sink) Insert(ctx context.Context, snap telemetry.Snapshot) error {
	_, err := s.db.Exec(ctx, insertSnapshotSQL,
		snap.Time, snap.MaxBurst, snap.MaxPayloadLen, snap.TimeoutCount,
		snap.DynBlockCount, snap.LateAcks, snap.RebindMisses)
	if err != nil {
		return fmt.Errorf("ackq/pgsink: insert snapshot: %w", err)
	}
	return nil
}

// Run inserts a snapshot from source every interval until ctx is
// cancelled. Insert errors are non-fatal: they are sent to errCh if
// non-nil (and dropped when errCh cannot take one without blocking),
// and the loop keeps running.
func (s *Sink) Run(ctx context.Context, interval time.Duration, source func() telemetry.Snapshot, errCh chan<- error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Insert(ctx, source()); err != nil && errCh != nil {
				select {
				case errCh <- err:
				default:
				}
			}
		}
	}
}
