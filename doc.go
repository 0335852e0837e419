// Package ackq implements a publish-tracking queue for at-least-once
// delivery on a resource-constrained, long-running process.
//
// It sits between a producer and a transport client (an MQTT broker
// connection, typically) that eventually confirms delivery out of
// band. For every message that needs an acknowledgement, ackq keeps a
// copy of its topic, payload, and metadata in a slot until the
// transport reports the message published or the slot times out.
//
// Slots come from two tiers: a fixed StaticPool that is always
// resident, and an elastic DynPool of DynBlocks that absorbs bursts
// and is reclaimed after an idle period. When both tiers are
// exhausted, the oldest outstanding message is evicted to make room —
// a documented lossy-degradation mode rather than a hard failure.
//
// Non-ack-bearing traffic (QoS other than 1) does not occupy a slot;
// it goes through the small fixed ControlRing instead, which shares
// the same periodic maintenance tick.
//
// The Facade serializes every public operation behind a single mutex
// and performs no suspension internally; the transport's Publish call
// is treated as a synchronous upcall.
package ackq
