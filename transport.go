package ackq

import "context"

// Publisher is the narrow capability the core consumes from whatever
// wire client sits below it. The core never imports a concrete
// transport package; transport/mqttpaho imports ackq, not the
// reverse.
type Publisher interface {
	// Publish hands topic/payload to the transport and returns the
	// assigned message id (>= 0) on success, or a negative value on
	// failure. The transport does not copy the buffers, so the core
	// keeps them alive in the slot until ack or timeout.
	Publish(ctx context.Context, topic string, payload []byte, qos int, retain bool) (msgID int, err error)
}
