package ackq

import "errors"

// Sentinel errors for the idiomatic (int, error) return pair. The
// historical int codes (-1, -2) on Publish/Track stay for fidelity to
// the source contract; these let callers use errors.Is instead of
// parsing the integers.
var (
	// ErrInvalidArgument covers a nil transport, an empty topic, or
	// the free-slot sentinel id (-1) passed to Track.
	ErrInvalidArgument = errors.New("ackq: invalid argument")
	// ErrNoCapacity is returned when the Allocator cannot produce a
	// free slot even after eviction. This should be structurally
	// unreachable given correct eviction; it is reserved for future
	// hard-limit modes.
	ErrNoCapacity = errors.New("ackq: no capacity")
	// ErrTransportFailed wraps a negative return from the Publisher.
	ErrTransportFailed = errors.New("ackq: transport publish failed")
)
