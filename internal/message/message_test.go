package message

import (
	"testing"

	"github.com/jabolina/pleroma/internal/address"
	"github.com/jabolina/pleroma/internal/value"
)

func addr(node, vat, entity uint32) address.EntityAddress {
	return address.EntityAddress{Node: address.NodeID(node), Vat: address.VatID(vat), Entity: address.EntityID(entity)}
}

func TestReplySwapsSourceAndDestination(t *testing.T) {
	call := Message{
		Destination: addr(1, 0, 0),
		Source:      addr(2, 0, 0),
		Function:    "ping",
		PromiseID:   5,
	}

	reply := Reply(call, value.NewNumber(1))
	if reply.Destination != call.Source {
		t.Fatalf("reply destination should be the caller")
	}
	if reply.Source != call.Destination {
		t.Fatalf("reply source should be the callee")
	}
	if !reply.IsResponse {
		t.Fatalf("reply must be marked IsResponse")
	}
	if reply.PromiseID != call.PromiseID {
		t.Fatalf("reply must carry the same promise id")
	}
	if len(reply.Values) != 1 || reply.Values[0].Num != 1 {
		t.Fatalf("reply must carry exactly the returned value")
	}
}

func TestReplyOmitsValuesForNone(t *testing.T) {
	call := Message{Destination: addr(1, 0, 0), Source: addr(2, 0, 0), Function: "noop"}
	reply := Reply(call, value.ValueNode{})
	if len(reply.Values) != 0 {
		t.Fatalf("reply to a None result must carry no values, got %v", reply.Values)
	}
}

func TestIsMain(t *testing.T) {
	m := Message{Function: "main"}
	if !m.IsMain() {
		t.Fatalf("expected IsMain() for function \"main\"")
	}
	if (Message{Function: "hello"}).IsMain() {
		t.Fatalf("expected IsMain() false for function \"hello\"")
	}
}
