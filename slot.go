package ackq

import "time"

// freeMsgID is the sentinel Slot.MsgID value for an unoccupied slot.
const freeMsgID = -1

// Slot is a fixed-capacity record of one in-flight tracked message.
// Its Topic and Payload buffers are borrowed, non-owning references
// into the enclosing pool's arena; they are never reallocated during
// the slot's lifetime.
type Slot struct {
	Topic     []byte
	Payload   []byte
	TopicLen  int
	PayloadLen int
	MsgID     int
	Timestamp time.Time
	Retain    bool
	InUse     bool
}

func (s *Slot) free() {
	s.InUse = false
	s.MsgID = freeMsgID
	s.TopicLen = 0
	s.PayloadLen = 0
	s.Retain = false
}

// fill copies topic/payload into the slot's own buffers, clamping to
// capacity and preserving the null-terminated convention for transport
// interop (the trailing byte after the logical length is zeroed).
func (s *Slot) fill(topic, payload []byte, retain bool, msgID int, now time.Time) {
	n := len(topic)
	if n > cap(s.Topic)-1 {
		n = cap(s.Topic) - 1
	}
	copy(s.Topic[:cap(s.Topic)], topic[:n])
	if n < cap(s.Topic) {
		s.Topic[n] = 0
	}
	s.TopicLen = n

	p := len(payload)
	if p > cap(s.Payload)-1 {
		p = cap(s.Payload) - 1
	}
	copy(s.Payload[:cap(s.Payload)], payload[:p])
	if p < cap(s.Payload) {
		s.Payload[p] = 0
	}
	s.PayloadLen = p

	s.Retain = retain
	s.MsgID = msgID
	s.Timestamp = now
	s.InUse = true
}

func (s *Slot) topicTruncated(topic []byte) bool  { return len(topic) > cap(s.Topic)-1 }
func (s *Slot) payloadTruncated(payload []byte) bool { return len(payload) > cap(s.Payload)-1 }

// StaticPool is the always-resident first tier: exactly N1 slots
// backed by one contiguous topic arena and one contiguous payload
// arena, allocated once at construction and never resized.
type StaticPool struct {
	slots    []Slot
	topics   []byte
	payloads []byte
}

func newStaticPool(n, topicMax, payloadMax int) *StaticPool {
	p := &StaticPool{
		slots:    make([]Slot, n),
		topics:   make([]byte, n*topicMax),
		payloads: make([]byte, n*payloadMax),
	}
	for i := range p.slots {
		// Three-index slices cap each slot's view at its own segment;
		// a plain two-index slice would leave cap() reaching to the
		// end of the shared arena instead of the slot's own bound.
		p.slots[i].Topic = p.topics[i*topicMax : (i+1)*topicMax : (i+1)*topicMax]
		p.slots[i].Payload = p.payloads[i*payloadMax : (i+1)*payloadMax : (i+1)*payloadMax]
		p.slots[i].MsgID = freeMsgID
	}
	return p
}

func (p *StaticPool) len() int { return len(p.slots) }

func (p *StaticPool) reset() {
	for i := range p.slots {
		p.slots[i].free()
	}
}
