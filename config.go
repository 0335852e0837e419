package ackq

import "time"

// Config holds the queue's compile/init-time constants. Zero values
// are filled in by Normalize with the documented defaults, the way
// ssepg's DefaultConfig/New pair treats a partially-specified Config
// as the common case rather than an error.
type Config struct {
	// StaticSlotCount is N1, the always-resident slot count.
	StaticSlotCount int
	// DynamicSlotCount is N2, slots per DynBlock.
	DynamicSlotCount int
	// MaxDynamicBlocks is B, the DynPool growth ceiling.
	MaxDynamicBlocks int
	// PayloadMax is the payload buffer capacity per slot.
	PayloadMax int
	// TopicMax is the topic buffer capacity per slot.
	TopicMax int
	// AckTimeout is how long a slot may stay occupied awaiting an ack.
	AckTimeout time.Duration
	// DynBlockIdleTimeout is how long a fully-free DynBlock survives
	// before the Sweeper reclaims it.
	DynBlockIdleTimeout time.Duration
	// ControlRingCap is R, the ControlRing's fixed entry count.
	ControlRingCap int
	// ControlTimeout bounds how long a ControlRing entry survives
	// without being transitioned or deleted. When left zero, Normalize
	// sets it to AckTimeout (itself defaulted first) rather than
	// introduce an unmotivated second constant.
	ControlTimeout time.Duration
}

// DefaultConfig returns the queue's documented default tuning.
func DefaultConfig() Config {
	return Config{
		StaticSlotCount:     3,
		DynamicSlotCount:    3,
		MaxDynamicBlocks:    8,
		PayloadMax:          512,
		TopicMax:            128,
		AckTimeout:          5000 * time.Millisecond,
		DynBlockIdleTimeout: 60000 * time.Millisecond,
		ControlRingCap:      8,
		ControlTimeout:      5000 * time.Millisecond,
	}
}

// Normalize fills every zero-valued field with its default, in place.
func (c *Config) Normalize() {
	def := DefaultConfig()
	if c.StaticSlotCount == 0 {
		c.StaticSlotCount = def.StaticSlotCount
	}
	if c.DynamicSlotCount == 0 {
		c.DynamicSlotCount = def.DynamicSlotCount
	}
	if c.MaxDynamicBlocks == 0 {
		c.MaxDynamicBlocks = def.MaxDynamicBlocks
	}
	if c.PayloadMax == 0 {
		c.PayloadMax = def.PayloadMax
	}
	if c.TopicMax == 0 {
		c.TopicMax = def.TopicMax
	}
	if c.AckTimeout == 0 {
		c.AckTimeout = def.AckTimeout
	}
	if c.DynBlockIdleTimeout == 0 {
		c.DynBlockIdleTimeout = def.DynBlockIdleTimeout
	}
	if c.ControlRingCap == 0 {
		c.ControlRingCap = def.ControlRingCap
	}
	if c.ControlTimeout == 0 {
		c.ControlTimeout = c.AckTimeout
	}
}
