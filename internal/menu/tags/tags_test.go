package tags

import (
	"reflect"
	"testing"

	"go.uber.org/zap"
)

func TestNormalizeMapsKnownTags(t *testing.T) {
	got := Normalize(nil, []string{"Vegan", "IsVegetarian", "halal"})
	want := []string{Halal, Vegan, Vegetarian}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestNormalizeDropsUnknownTags(t *testing.T) {
	got := Normalize(zap.NewNop(), []string{"vegan", "contains-nuts"})
	want := []string{Vegan}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestNormalizeDedupes(t *testing.T) {
	got := Normalize(nil, []string{"vegan", "Vegan", "VEGAN"})
	want := []string{Vegan}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	first := Normalize(nil, []string{"gluten free", "in balance"})
	second := Normalize(nil, first)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Normalize not idempotent: %v != %v", first, second)
	}
}

func TestNormalizeEmptyInput(t *testing.T) {
	got := Normalize(nil, nil)
	if len(got) != 0 {
		t.Errorf("expected empty result, got %v", got)
	}
}
