// Package snapshot is the Postgres-backed last-known-good store: every
// successful live parse is persisted here, and the Fallback Orchestrator
// reads it back when a live fetch fails.
package snapshot

import (
	"context"
	"encoding/json"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/claremont-dine/menu-api/internal/menu"
)

// querier is the subset of *pgxpool.Pool's interface the Store needs,
// satisfied by pgxmock's pool too so tests run without a live database.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Store persists and retrieves menu snapshots. Built over *pgxpool.Pool in
// production; tests substitute pgxmock.
type Store struct {
	pool   querier
	logger *zap.Logger
}

// New builds a Store over an established connection pool.
func New(pool *pgxpool.Pool, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{pool: pool, logger: logger}
}

// NewWithQuerier builds a Store over any querier, for tests that substitute
// pgxmock.
func NewWithQuerier(pool querier, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{pool: pool, logger: logger}
}

type stationsPayload struct {
	Name  string      `json:"name"`
	Items []itemsPayload `json:"items"`
}

type itemsPayload struct {
	Name string   `json:"name"`
	Tags []string `json:"tags"`
}

// Persist upserts one row per meal period in m, keyed on (hall_id, date,
// meal). Each call bumps fetched_at to now and marks the row valid, so a
// later successful parse naturally supersedes a stale one.
func (s *Store) Persist(ctx context.Context, hallID, date string, m menu.Menu) error {
	now := time.Now().UTC()
	for _, meal := range m.Meals {
		payload := make([]stationsPayload, 0, len(meal.Stations))
		for _, st := range meal.Stations {
			items := make([]itemsPayload, 0, len(st.Items))
			for _, it := range st.Items {
				items = append(items, itemsPayload{Name: it.Name, Tags: it.Tags})
			}
			payload = append(payload, stationsPayload{Name: st.Name, Items: items})
		}

		stationsJSON, err := json.Marshal(payload)
		if err != nil {
			return &menu.StoreError{Op: "marshal stations", Err: err}
		}

		query, args, err := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
			Insert("menus").
			Columns("hall_id", "date", "meal", "stations_json", "fetched_at", "is_valid").
			Values(hallID, date, meal.Period, stationsJSON, now, true).
			Suffix(`ON CONFLICT (hall_id, date, meal) DO UPDATE SET
				stations_json = EXCLUDED.stations_json,
				fetched_at = EXCLUDED.fetched_at,
				is_valid = EXCLUDED.is_valid`).
			ToSql()
		if err != nil {
			return &menu.StoreError{Op: "build upsert", Err: err}
		}

		if _, err := s.pool.Exec(ctx, query, args...); err != nil {
			return &menu.StoreError{Op: "exec upsert", Err: err}
		}
	}
	return nil
}

// LoadLatest returns the most recently fetched valid snapshot for
// hall_id/date, one meal per distinct meal period. ok is false if no valid
// rows exist.
func (s *Store) LoadLatest(ctx context.Context, hallID, date string) (menu.Menu, time.Time, bool, error) {
	query, args, err := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
		Select("meal", "stations_json", "fetched_at").
		From("menus").
		Where(sq.Eq{"hall_id": hallID, "date": date, "is_valid": true}).
		OrderBy("fetched_at DESC").
		ToSql()
	if err != nil {
		return menu.Menu{}, time.Time{}, false, &menu.StoreError{Op: "build select", Err: err}
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return menu.Menu{}, time.Time{}, false, &menu.StoreError{Op: "exec select", Err: err}
	}
	defer rows.Close()

	seen := make(map[string]struct{})
	var meals []menu.Meal
	var latest time.Time

	for rows.Next() {
		var (
			mealName     string
			stationsRaw  []byte
			fetchedAt    time.Time
		)
		if err := rows.Scan(&mealName, &stationsRaw, &fetchedAt); err != nil {
			return menu.Menu{}, time.Time{}, false, &menu.StoreError{Op: "scan row", Err: err}
		}
		if _, dup := seen[mealName]; dup {
			continue
		}
		seen[mealName] = struct{}{}

		if fetchedAt.After(latest) {
			latest = fetchedAt
		}

		var payload []stationsPayload
		if err := json.Unmarshal(stationsRaw, &payload); err != nil {
			return menu.Menu{}, time.Time{}, false, &menu.StoreError{Op: "unmarshal stations", Err: err}
		}
		stations := make([]menu.Station, 0, len(payload))
		for _, st := range payload {
			items := make([]menu.Item, 0, len(st.Items))
			for _, it := range st.Items {
				items = append(items, menu.ItemFromStored(it.Name, it.Tags))
			}
			stations = append(stations, menu.Station{Name: st.Name, Items: items})
		}
		meals = append(meals, menu.Meal{Period: mealName, Stations: stations})
	}
	if err := rows.Err(); err != nil {
		return menu.Menu{}, time.Time{}, false, &menu.StoreError{Op: "iterate rows", Err: err}
	}

	if len(meals) == 0 {
		return menu.Menu{}, time.Time{}, false, nil
	}

	return menu.Menu{HallID: hallID, Date: date, Meals: meals}, latest, true, nil
}
