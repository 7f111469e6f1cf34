package halls

import "testing"

func TestGetKnownHall(t *testing.T) {
	h, ok := Get("hoch")
	if !ok {
		t.Fatal("expected hoch to be registered")
	}
	if h.Vendor != Sodexo {
		t.Errorf("expected Sodexo vendor, got %s", h.Vendor)
	}
}

func TestGetUnknownHall(t *testing.T) {
	if _, ok := Get("nonexistent"); ok {
		t.Error("expected unknown hall_id to miss")
	}
}

func TestAllReturnsCanonicalOrder(t *testing.T) {
	all := All()
	if len(all) != len(Ordered) {
		t.Fatalf("expected %d halls, got %d", len(Ordered), len(all))
	}
	for i, h := range all {
		if h.ID != Ordered[i] {
			t.Errorf("position %d: expected %s, got %s", i, Ordered[i], h.ID)
		}
	}
}

func TestOldenborgSplitsOnSlash(t *testing.T) {
	h, ok := Get("oldenborg")
	if !ok {
		t.Fatal("expected oldenborg to be registered")
	}
	if !h.SplitOnSlash {
		t.Error("expected oldenborg to split item names on slash")
	}
	frank, _ := Get("frank")
	if frank.SplitOnSlash {
		t.Error("expected frank not to split on slash")
	}
}
