package promise

import (
	"testing"

	"github.com/jabolina/pleroma/internal/address"
	"github.com/jabolina/pleroma/internal/value"
)

func TestResolveIsIdempotent(t *testing.T) {
	table := NewTable()
	p := &Promise{ID: 1}
	table.Create(p)

	first, ok := table.Resolve(1, []value.ValueNode{value.NewNumber(9)})
	if !ok {
		t.Fatalf("expected first resolve to succeed")
	}
	if len(first.Results) != 1 || first.Results[0].Num != 9 {
		t.Fatalf("unexpected results: %v", first.Results)
	}

	_, ok = table.Resolve(1, []value.ValueNode{value.NewNumber(100)})
	if ok {
		t.Fatalf("expected second resolve of the same promise to be a no-op")
	}
	if first.Results[0].Num != 9 {
		t.Fatalf("second resolve must not overwrite the first result")
	}
}

func TestResolveUnknownPromise(t *testing.T) {
	table := NewTable()
	_, ok := table.Resolve(address.PromiseID(999), nil)
	if ok {
		t.Fatalf("expected resolving an unregistered promise id to fail")
	}
}

func TestDeleteRemovesFromTable(t *testing.T) {
	table := NewTable()
	table.Create(&Promise{ID: 1})
	table.Delete(1)
	if _, ok := table.Get(1); ok {
		t.Fatalf("expected promise to be gone after Delete")
	}
	if table.Len() != 0 {
		t.Fatalf("expected empty table after Delete")
	}
}

func TestDrainClearsAllPromises(t *testing.T) {
	table := NewTable()
	table.Create(&Promise{ID: 1})
	table.Create(&Promise{ID: 2})
	table.Drain()
	if table.Len() != 0 {
		t.Fatalf("expected Drain to clear the table")
	}
}
