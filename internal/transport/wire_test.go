package transport

import (
	"testing"

	"github.com/jabolina/pleroma/internal/address"
	"github.com/jabolina/pleroma/internal/message"
	"github.com/jabolina/pleroma/internal/value"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	m := message.Message{
		Destination: address.EntityAddress{Node: 1, Vat: 2, Entity: 3},
		Source:      address.EntityAddress{Node: 4, Vat: 5, Entity: 6},
		Function:    "ping",
		PromiseID:   99,
		IsResponse:  true,
		Values: []value.ValueNode{
			value.NewNumber(1),
			value.NewString("ok"),
			value.NewEntityRef(address.EntityAddress{Node: 7, Vat: 8, Entity: 9}),
		},
	}

	data, err := Encode(m)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if decoded.Destination != m.Destination || decoded.Source != m.Source {
		t.Fatalf("addresses did not round-trip: got %+v", decoded)
	}
	if decoded.Function != m.Function || decoded.PromiseID != m.PromiseID || decoded.IsResponse != m.IsResponse {
		t.Fatalf("header fields did not round-trip: got %+v", decoded)
	}
	if len(decoded.Values) != len(m.Values) {
		t.Fatalf("expected %d values, got %d", len(m.Values), len(decoded.Values))
	}
	for i := range m.Values {
		if decoded.Values[i] != m.Values[i] {
			t.Fatalf("value %d did not round-trip: got %+v, want %+v", i, decoded.Values[i], m.Values[i])
		}
	}
}

func TestDecodeInvalidPayload(t *testing.T) {
	if _, err := Decode([]byte("not json")); err == nil {
		t.Fatal("expected an error decoding invalid JSON")
	}
}
