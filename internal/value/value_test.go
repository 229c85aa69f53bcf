package value

import (
	"encoding/json"
	"testing"

	"github.com/jabolina/pleroma/internal/address"
)

func TestIsNone(t *testing.T) {
	if !(ValueNode{}).IsNone() {
		t.Fatalf("zero-value ValueNode must be None")
	}
	if NewNumber(0).IsNone() {
		t.Fatalf("Number(0) is still a value, not None")
	}
}

func TestWireRoundTrip(t *testing.T) {
	cases := []ValueNode{
		NewNumber(42.5),
		NewString("hello"),
		NewEntityRef(address.EntityAddress{Node: 1, Vat: 2, Entity: 3}),
	}

	for _, v := range cases {
		data, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("marshal %v: %v", v, err)
		}
		var out ValueNode
		if err := json.Unmarshal(data, &out); err != nil {
			t.Fatalf("unmarshal %v: %v", v, err)
		}
		if out != v {
			t.Fatalf("round trip mismatch: got %+v, want %+v", out, v)
		}
	}
}
