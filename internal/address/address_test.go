package address

import "testing"

func TestMinterUniqueAcrossVats(t *testing.T) {
	a := NewMinter(1)
	b := NewMinter(2)

	ids := map[PromiseID]bool{}
	for i := 0; i < 100; i++ {
		ids[a.Next()] = true
		ids[b.Next()] = true
	}
	if len(ids) != 200 {
		t.Fatalf("expected 200 unique promise ids, got %d", len(ids))
	}
}

func TestMinterMonotonicPerVat(t *testing.T) {
	m := NewMinter(7)
	first := m.Next()
	second := m.Next()
	if second <= first {
		t.Fatalf("expected increasing promise ids, got %d then %d", first, second)
	}
}

func TestEntityAddressCompareOrdersByNodeThenVatThenEntity(t *testing.T) {
	a := EntityAddress{Node: 1, Vat: 0, Entity: 0}
	b := EntityAddress{Node: 2, Vat: 0, Entity: 0}
	if a.Compare(b) >= 0 {
		t.Fatalf("expected a < b by node")
	}

	c := EntityAddress{Node: 1, Vat: 5, Entity: 0}
	if a.Compare(c) >= 0 {
		t.Fatalf("expected a < c by vat")
	}
}

func TestSentinelIsSentinel(t *testing.T) {
	if !Sentinel.IsSentinel() {
		t.Fatalf("expected Sentinel.IsSentinel() to be true")
	}
	if (EntityAddress{}).IsSentinel() {
		t.Fatalf("zero-value address must not be treated as sentinel")
	}
}

func TestLocal(t *testing.T) {
	a := EntityAddress{Node: 3, Vat: 0, Entity: 0}
	if !a.Local(3) {
		t.Fatalf("expected address on node 3 to be local to node 3")
	}
	if a.Local(4) {
		t.Fatalf("expected address on node 3 to not be local to node 4")
	}
}
