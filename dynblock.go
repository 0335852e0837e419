package ackq

import "time"

// DynBlock is a contiguous group of exactly N2 overflow slots, backed
// by its own topic and payload arenas. A block is born when the
// Allocator needs overflow capacity and dies when the Sweeper reclaims
// it after an idle period.
//
// lastActiveAt records when the block most recently transitioned to
// fully free; it is the zero time.Time while any slot is occupied,
// mirroring the source's last_active_at == 0 sentinel.
type DynBlock struct {
	slots        []Slot
	topics       []byte
	payloads     []byte
	lastActiveAt time.Time
}

func newDynBlock(n, topicMax, payloadMax int) *DynBlock {
	b := &DynBlock{
		slots:    make([]Slot, n),
		topics:   make([]byte, n*topicMax),
		payloads: make([]byte, n*payloadMax),
	}
	for i := range b.slots {
		b.slots[i].Topic = b.topics[i*topicMax : (i+1)*topicMax : (i+1)*topicMax]
		b.slots[i].Payload = b.payloads[i*payloadMax : (i+1)*payloadMax : (i+1)*payloadMax]
		b.slots[i].MsgID = freeMsgID
	}
	return b
}

func (b *DynBlock) allFree() bool {
	for i := range b.slots {
		if b.slots[i].InUse {
			return false
		}
	}
	return true
}
