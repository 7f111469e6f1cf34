package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/claremont-dine/menu-api/internal/menu"
	"github.com/claremont-dine/menu-api/internal/menu/bonappetit"
	"github.com/claremont-dine/menu-api/internal/menu/cache"
	"github.com/claremont-dine/menu-api/internal/menu/coalesce"
	"github.com/claremont-dine/menu-api/internal/menu/orchestrator"
	"github.com/claremont-dine/menu-api/internal/menu/pomona"
	"github.com/claremont-dine/menu-api/internal/menu/sodexo"
)

func TestBuildParserDispatchesByVendor(t *testing.T) {
	cases := []struct {
		hallID string
		want   string
	}{
		{"hoch", "*sodexo.Parser"},
		{"collins", "*bonappetit.Parser"},
		{"frank", "*pomona.Parser"},
	}
	for _, tc := range cases {
		p, err := buildParser(tc.hallID)
		if err != nil {
			t.Fatalf("buildParser(%q): unexpected error: %v", tc.hallID, err)
		}
		switch p.(type) {
		case *sodexo.Parser:
			if tc.want != "*sodexo.Parser" {
				t.Errorf("buildParser(%q) returned *sodexo.Parser, want %s", tc.hallID, tc.want)
			}
		case *bonappetit.Parser:
			if tc.want != "*bonappetit.Parser" {
				t.Errorf("buildParser(%q) returned *bonappetit.Parser, want %s", tc.hallID, tc.want)
			}
		case *pomona.Parser:
			if tc.want != "*pomona.Parser" {
				t.Errorf("buildParser(%q) returned *pomona.Parser, want %s", tc.hallID, tc.want)
			}
		default:
			t.Errorf("buildParser(%q) returned unexpected type %T", tc.hallID, p)
		}
	}
}

func TestBuildParserUnknownHall(t *testing.T) {
	_, err := buildParser("nonexistent")
	var unknownHall *menu.UnknownHallError
	if !errors.As(err, &unknownHall) {
		t.Errorf("expected *menu.UnknownHallError, got %v", err)
	}
}

func newTestService() *Service {
	o := orchestrator.New(&noopStore{}, &noopRunRecorder{}, nil)
	return New(cache.New(cache.NewInProcessBackend(), nil), coalesce.New(), o, nil)
}

type noopStore struct{}

func (noopStore) Persist(ctx context.Context, hallID, date string, m menu.Menu) error { return nil }
func (noopStore) LoadLatest(ctx context.Context, hallID, date string) (menu.Menu, time.Time, bool, error) {
	return menu.Menu{}, time.Time{}, false, nil
}

type noopRunRecorder struct{}

func (noopRunRecorder) Record(ctx context.Context, hallID, menuDate string, startedAt time.Time, duration time.Duration, status, errMsg string) {
}

func TestGetMenuRejectsUnknownHall(t *testing.T) {
	s := newTestService()
	_, err := s.GetMenu(context.Background(), "nonexistent", "2026-03-05", "lunch")
	var unknownHall *menu.UnknownHallError
	if !errors.As(err, &unknownHall) {
		t.Errorf("expected *menu.UnknownHallError, got %v", err)
	}
}

func TestGetMenuRejectsInvalidDate(t *testing.T) {
	s := newTestService()
	_, err := s.GetMenu(context.Background(), "hoch", "not-a-date", "lunch")
	var invalidDate *menu.InvalidDateError
	if !errors.As(err, &invalidDate) {
		t.Errorf("expected *menu.InvalidDateError, got %v", err)
	}
}

func TestGetMenuReturnsCachedEntryWithoutInvokingOrchestrator(t *testing.T) {
	c := cache.New(cache.NewInProcessBackend(), nil)
	o := orchestrator.New(&explodingStore{t: t}, &noopRunRecorder{}, nil)
	s := New(c, coalesce.New(), o, nil)

	fetchedAt := time.Now().UTC()
	c.Set(cache.Key("hoch", "2026-03-05", "lunch"), cache.Entry{
		Meal:      menu.Meal{Period: "lunch"},
		IsStale:   false,
		FetchedAt: &fetchedAt,
	})

	result, err := s.GetMenu(context.Background(), "hoch", "2026-03-05", "lunch")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Meal.Period != "lunch" {
		t.Errorf("expected cached meal returned, got %+v", result)
	}
}

type explodingStore struct{ t *testing.T }

func (e *explodingStore) Persist(ctx context.Context, hallID, date string, m menu.Menu) error {
	e.t.Fatal("orchestrator should not run on a cache hit")
	return nil
}
func (e *explodingStore) LoadLatest(ctx context.Context, hallID, date string) (menu.Menu, time.Time, bool, error) {
	e.t.Fatal("orchestrator should not run on a cache hit")
	return menu.Menu{}, time.Time{}, false, nil
}
