// Package message defines the envelope exchanged between entities, and
// the reply-synthesis rule described in spec.md section 4.2. Messages
// are immutable once enqueued for send - callers build a new Message
// rather than mutating one in flight.
package message

import (
	"github.com/jabolina/pleroma/internal/address"
	"github.com/jabolina/pleroma/internal/value"
)

// Message is the envelope delivered between entities, locally or across
// the network. Destination.Entity names the target; Function is the
// method selector; PromiseID is the reply token; Values carries the
// call arguments or the (0 or 1) response value.
type Message struct {
	Destination address.EntityAddress `json:"destination"`
	Source      address.EntityAddress `json:"source"`
	Function    string                `json:"function"`
	PromiseID   address.PromiseID     `json:"promise_id"`
	IsResponse  bool                  `json:"is_response"`
	Values      []value.ValueNode     `json:"values,omitempty"`
}

// IsMain reports whether this message invokes the system-injected boot
// function. Replies to main are suppressed since its source is the
// sentinel address and has nowhere to go.
func (m Message) IsMain() bool {
	return m.Function == "main"
}

// Reply synthesizes the response to an incoming call m, carrying the
// returned value v. Per spec.md section 4.2, values is a single-element
// slice when v is a recognized value, and empty otherwise (v.IsNone()).
func Reply(m Message, v value.ValueNode) Message {
	reply := Message{
		Destination: m.Source,
		Source:      m.Destination,
		Function:    m.Function,
		PromiseID:   m.PromiseID,
		IsResponse:  true,
	}
	if !v.IsNone() {
		reply.Values = []value.ValueNode{v}
	}
	return reply
}
