package cache

import (
	"testing"
	"time"

	"github.com/claremont-dine/menu-api/internal/menu"
)

func TestKeyFormat(t *testing.T) {
	got := Key("hoch", "2026-03-05", "lunch")
	want := "menu:hoch:2026-03-05:lunch"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestSetThenGetHits(t *testing.T) {
	c := New(NewInProcessBackend(), nil)
	entry := Entry{Meal: menu.Meal{Period: "lunch"}, IsStale: false}

	c.Set("k", entry)
	got, result := c.Get("k")

	if result != Hit {
		t.Fatalf("expected Hit, got %s", result)
	}
	if got.Meal.Period != "lunch" {
		t.Errorf("expected lunch, got %s", got.Meal.Period)
	}
}

func TestGetMissOnAbsentKey(t *testing.T) {
	c := New(NewInProcessBackend(), nil)
	_, result := c.Get("missing")
	if result != Miss {
		t.Errorf("expected Miss, got %s", result)
	}
}

func TestGetMissOnCorruptEntry(t *testing.T) {
	backend := NewInProcessBackend()
	backend.Set("corrupt", []byte("not json"), time.Minute)
	c := New(backend, nil)

	_, result := c.Get("corrupt")
	if result != Miss {
		t.Errorf("expected corrupt entry treated as Miss, got %s", result)
	}
}

func TestJitteredTTLWithinBounds(t *testing.T) {
	for i := 0; i < 100; i++ {
		ttl := jitteredTTL()
		if ttl < BaseTTL-JitterRange || ttl > BaseTTL+JitterRange {
			t.Fatalf("ttl %s out of bounds [%s, %s]", ttl, BaseTTL-JitterRange, BaseTTL+JitterRange)
		}
	}
}
