// Package transport implements the reliable node-to-node packet
// transport described in spec.md section 4.4 and section 6: a
// length-framed, tagged-field envelope carried over a reliable transport
// that is ordered per-peer but not globally ordered.
package transport

import (
	"github.com/jabolina/pleroma/internal/address"
	"github.com/jabolina/pleroma/internal/message"
)

// Inbound pairs a decoded message with the peer it arrived from.
type Inbound struct {
	From address.NodeID
	Msg  message.Message
}

// Transport is the interface the router depends on. It is owned
// entirely by the network thread (spec.md section 4.4/5): Join, Send,
// Listen and Close are never called concurrently from more than one
// goroutine in this runtime.
type Transport interface {
	// Join records in the peer table the address a remote node listens
	// on. It opens no connection, and a node whose messages arrive here
	// is not added to the peer table by receiving them.
	Join(node address.NodeID, address string) error

	// Send reliably delivers m to the given node. Mid-run peer loss
	// surfaces as an error; the caller (router) drops the message, it
	// does not retry (spec.md section 7).
	Send(node address.NodeID, m message.Message) error

	// Listen returns the channel inbound messages arrive on.
	Listen() <-chan Inbound

	// Close shuts the transport down for sending and receiving.
	Close() error
}
