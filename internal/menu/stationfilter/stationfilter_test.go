package stationfilter

import (
	"testing"

	"github.com/claremont-dine/menu-api/internal/menu"
)

func item(name string) menu.Item { return menu.Item{Name: name, Tags: []string{}} }

func TestApplyMergesAliases(t *testing.T) {
	stations := []menu.Station{
		{Name: "Grill", Items: []menu.Item{item("Burger")}},
		{Name: "grille", Items: []menu.Item{item("Fries")}},
	}
	cfg := Config{Combined: map[string][]string{"Grill": {"grille"}}}

	out := Apply(stations, cfg)
	if len(out) != 1 {
		t.Fatalf("expected 1 merged station, got %d", len(out))
	}
	if len(out[0].Items) != 2 {
		t.Errorf("expected 2 merged items, got %d", len(out[0].Items))
	}
}

func TestApplyHidesStations(t *testing.T) {
	stations := []menu.Station{
		{Name: "Grill", Items: []menu.Item{item("Burger")}},
		{Name: "Condiments", Items: []menu.Item{item("Ketchup")}},
	}
	cfg := Config{Hidden: []string{"condiments"}}

	out := Apply(stations, cfg)
	if len(out) != 1 || out[0].Name != "Grill" {
		t.Errorf("expected only Grill to survive, got %+v", out)
	}
}

func TestApplyTruncatesItems(t *testing.T) {
	stations := []menu.Station{
		{Name: "Salads", Items: []menu.Item{item("A"), item("B"), item("C")}},
	}
	cfg := Config{Truncated: map[string]int{"salads": 2}}

	out := Apply(stations, cfg)
	if len(out[0].Items) != 2 {
		t.Errorf("expected 2 items after truncation, got %d", len(out[0].Items))
	}
}

func TestApplyTruncateNegativeOneDropsStation(t *testing.T) {
	stations := []menu.Station{
		{Name: "Beverages", Items: []menu.Item{item("Water")}},
		{Name: "Grill", Items: []menu.Item{item("Burger")}},
	}
	cfg := Config{Truncated: map[string]int{"beverages": -1}}

	out := Apply(stations, cfg)
	if len(out) != 1 || out[0].Name != "Grill" {
		t.Errorf("expected Beverages dropped, got %+v", out)
	}
}

func TestApplySortsByPriorityStably(t *testing.T) {
	stations := []menu.Station{
		{Name: "Dessert", Items: []menu.Item{item("Cake")}},
		{Name: "Grill", Items: []menu.Item{item("Burger")}},
		{Name: "Salads", Items: []menu.Item{item("Greens")}},
	}
	cfg := Config{Ordered: []string{"grill", "salads"}}

	out := Apply(stations, cfg)
	names := []string{out[0].Name, out[1].Name, out[2].Name}
	want := []string{"Grill", "Salads", "Dessert"}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], names[i])
		}
	}
}

func TestApplyDropsEmptyStationsAfterTruncate(t *testing.T) {
	stations := []menu.Station{
		{Name: "Grill", Items: []menu.Item{}},
	}
	out := Apply(stations, Config{})
	if len(out) != 0 {
		t.Errorf("expected empty station dropped, got %+v", out)
	}
}
