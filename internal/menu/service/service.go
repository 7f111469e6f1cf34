// Package service composes the cache, coalescer, and fallback orchestrator
// into the single entry point the (out-of-scope) HTTP layer calls: ask for
// one hall's one meal on one date, get back a station list plus staleness
// metadata, or a typed error.
package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/claremont-dine/menu-api/internal/menu"
	"github.com/claremont-dine/menu-api/internal/menu/bonappetit"
	"github.com/claremont-dine/menu-api/internal/menu/cache"
	"github.com/claremont-dine/menu-api/internal/menu/coalesce"
	"github.com/claremont-dine/menu-api/internal/menu/halls"
	"github.com/claremont-dine/menu-api/internal/menu/orchestrator"
	"github.com/claremont-dine/menu-api/internal/menu/pomona"
	"github.com/claremont-dine/menu-api/internal/menu/sodexo"
	"github.com/claremont-dine/menu-api/internal/pkg/metrics"
)

// MenuResult is what GetMenu returns on success.
type MenuResult struct {
	HallID    string
	Date      string
	Meal      menu.Meal
	IsStale   bool
	FetchedAt time.Time
}

// Service is the cache-aside, coalesced, fallback-backed menu service.
type Service struct {
	cache        *cache.Cache
	coalescer    *coalesce.Group
	orchestrator *orchestrator.Orchestrator
	logger       *zap.Logger
}

// New builds a Service from its three collaborators.
func New(c *cache.Cache, co *coalesce.Group, orch *orchestrator.Orchestrator, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{cache: c, coalescer: co, orchestrator: orch, logger: logger}
}

// buildParser instantiates the correct vendor parser for a hall_id, mirroring
// the original PARSER_REGISTRY/get_parser dispatch.
func buildParser(hallID string) (menu.Parser, error) {
	h, ok := halls.Get(hallID)
	if !ok {
		return nil, &menu.UnknownHallError{HallID: hallID}
	}
	switch h.Vendor {
	case halls.Sodexo:
		return sodexo.New(), nil
	case halls.BonAppetit:
		return bonappetit.New(hallID)
	case halls.Pomona:
		return pomona.New(hallID)
	default:
		return nil, &menu.UnknownHallError{HallID: hallID}
	}
}

// GetMenu resolves one hall/date/meal query: cache hit short-circuits
// everything below it; a miss coalesces concurrent callers into one
// orchestrator invocation.
func (s *Service) GetMenu(ctx context.Context, hallID, date, meal string) (MenuResult, error) {
	if _, ok := halls.Get(hallID); !ok {
		return MenuResult{}, &menu.UnknownHallError{HallID: hallID}
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return MenuResult{}, &menu.InvalidDateError{Raw: date, Err: err}
	}

	key := cache.Key(hallID, date, meal)

	if entry, result := s.cache.Get(key); result == cache.Hit {
		metrics.CacheHitsTotal.WithLabelValues(string(cache.Hit)).Inc()
		var fetchedAt time.Time
		if entry.FetchedAt != nil {
			fetchedAt = *entry.FetchedAt
		}
		return MenuResult{HallID: hallID, Date: date, Meal: entry.Meal, IsStale: entry.IsStale, FetchedAt: fetchedAt}, nil
	}
	metrics.CacheHitsTotal.WithLabelValues(string(cache.Miss)).Inc()

	v, err := s.coalescer.Fetch(ctx, key, func(ctx context.Context) (any, error) {
		return s.fetchAndCache(ctx, hallID, date, meal, key)
	})
	if err != nil {
		return MenuResult{}, err
	}
	return v.(MenuResult), nil
}

func (s *Service) fetchAndCache(ctx context.Context, hallID, date, meal, key string) (MenuResult, error) {
	parser, err := buildParser(hallID)
	if err != nil {
		return MenuResult{}, err
	}

	result := s.orchestrator.GetMenuWithFallback(ctx, parser, hallID, date)
	if !result.Found {
		return MenuResult{}, fmt.Errorf("no menu data available for %s on %s", hallID, date)
	}

	mealData, ok := result.Menu.MealByPeriod(meal)
	if !ok {
		return MenuResult{}, fmt.Errorf("no %s meal found for %s on %s", meal, hallID, date)
	}

	out := MenuResult{HallID: hallID, Date: date, Meal: mealData, IsStale: result.IsStale, FetchedAt: result.FetchedAt}

	fetchedAt := result.FetchedAt
	s.cache.Set(key, cache.Entry{Meal: mealData, IsStale: result.IsStale, FetchedAt: &fetchedAt})

	return out, nil
}
