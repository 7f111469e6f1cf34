package pomona

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/claremont-dine/menu-api/internal/menu/halls"
)

func loadTestdata(t *testing.T, name string) string {
	t.Helper()
	raw, err := os.ReadFile("testdata/" + name)
	if err != nil {
		t.Fatalf("failed to load testdata/%s: %v", name, err)
	}
	return string(raw)
}

func TestNewRejectsNonPomonaHall(t *testing.T) {
	if _, err := New("hoch"); err == nil {
		t.Error("expected error building a Pomona parser for a Sodexo hall")
	}
}

func TestDecodeOneOrManyHandlesSingleObject(t *testing.T) {
	raw := json.RawMessage(`{"@id":"1","#text":"Yes"}`)
	got, err := decodeOneOrMany[eatecDietaryChoice](raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID != "1" {
		t.Errorf("expected single-element slice, got %+v", got)
	}
}

func TestDecodeOneOrManyHandlesArray(t *testing.T) {
	raw := json.RawMessage(`[{"@id":"1","#text":"Yes"},{"@id":"2","#text":"No"}]`)
	got, err := decodeOneOrMany[eatecDietaryChoice](raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 elements, got %d", len(got))
	}
}

func TestDecodeOneOrManyEmptyReturnsNil(t *testing.T) {
	got, err := decodeOneOrMany[eatecDietaryChoice](nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
}

func TestSplitItemNameCommaOnlyForFrank(t *testing.T) {
	h, _ := halls.Get("frank")
	p := &Parser{hall: h}
	got := p.splitItemName("Rice/Beans, Salsa")
	want := []string{"Rice/Beans", "Salsa"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSplitItemNameCommaAndSlashForOldenborg(t *testing.T) {
	h, _ := halls.Get("oldenborg")
	p := &Parser{hall: h}
	got := p.splitItemName("Rice/Beans, Salsa")
	want := []string{"Rice", "Beans", "Salsa"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestParseBuildsMealFromEatecFeed(t *testing.T) {
	h, _ := halls.Get("frank")
	p := &Parser{hall: h}

	got, err := p.Parse(loadTestdata(t, "frank_day.json"), "2026-03-05")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Meals) != 1 {
		t.Fatalf("expected 1 meal, got %d", len(got.Meals))
	}
	meal := got.Meals[0]
	if meal.Period != "lunch" {
		t.Errorf("expected lunch period, got %s", meal.Period)
	}
	if len(meal.Stations) != 1 {
		t.Fatalf("expected 1 station, got %d", len(meal.Stations))
	}
	if len(meal.Stations[0].Items) != 1 || meal.Stations[0].Items[0].Name != "Grilled Chicken" {
		t.Errorf("expected only the displayed item to survive, got %+v", meal.Stations[0].Items)
	}
}

func TestParseSkipsNonMatchingServeDate(t *testing.T) {
	h, _ := halls.Get("frank")
	p := &Parser{hall: h}

	got, err := p.Parse(loadTestdata(t, "frank_day.json"), "2026-03-06")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Meals) != 0 {
		t.Errorf("expected no meals for non-matching date, got %d", len(got.Meals))
	}
}
