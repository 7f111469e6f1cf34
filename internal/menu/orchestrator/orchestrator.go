// Package orchestrator implements the Fallback Orchestrator: run the live
// parser, persist success for future fallback, and fall back to the
// last-known-good snapshot when the live parser fails.
package orchestrator

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/claremont-dine/menu-api/internal/menu"
	"github.com/claremont-dine/menu-api/internal/menu/snapshot"
	"github.com/claremont-dine/menu-api/internal/pkg/metrics"
)

var tracer = otel.Tracer("menu/orchestrator")

// Store is the persistence seam the orchestrator depends on.
type Store interface {
	Persist(ctx context.Context, hallID, date string, m menu.Menu) error
	LoadLatest(ctx context.Context, hallID, date string) (menu.Menu, time.Time, bool, error)
}

// RunRecorder is the observability seam the orchestrator depends on.
type RunRecorder interface {
	Record(ctx context.Context, hallID, menuDate string, startedAt time.Time, duration time.Duration, status, errMsg string)
}

// Result is the outcome of GetMenuWithFallback.
type Result struct {
	Menu      menu.Menu
	IsStale   bool
	FetchedAt time.Time
	Found     bool
}

// Orchestrator composes a Store and RunRecorder around the fetch/parse
// step for every hall.
type Orchestrator struct {
	store  Store
	runs   RunRecorder
	logger *zap.Logger
}

// New builds an Orchestrator.
func New(store Store, runs RunRecorder, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{store: store, runs: runs, logger: logger}
}

// NewFromSnapshot is a convenience constructor when both Store and
// RunRecorder are backed by the same *snapshot.Store/*snapshot.RunRecorder
// pair.
func NewFromSnapshot(store *snapshot.Store, runs *snapshot.RunRecorder, logger *zap.Logger) *Orchestrator {
	return New(store, runs, logger)
}

// GetMenuWithFallback runs parser.FetchRaw+Parse+Validate, persists on
// success, and falls back to the last stored snapshot on any failure.
// Result.Found is false only when neither a live fetch nor a stored
// snapshot produced data.
func (o *Orchestrator) GetMenuWithFallback(ctx context.Context, p menu.Parser, hallID, date string) Result {
	ctx, span := tracer.Start(ctx, "orchestrator.get_menu_with_fallback",
		trace.WithAttributes(
			attribute.String("hall_id", hallID),
			attribute.String("menu_date", date),
		))
	defer span.End()

	start := time.Now()
	status := snapshot.RunSuccess
	var errMsg string

	m, ok, err := menu.FetchAndParse(ctx, p, date)
	if err == nil && ok {
		now := time.Now().UTC()
		if persistErr := o.store.Persist(ctx, hallID, date, m); persistErr != nil {
			o.logger.Warn("failed to persist fresh menu",
				zap.String("hall_id", hallID), zap.String("date", date), zap.Error(persistErr))
		}
		o.runs.Record(ctx, hallID, date, start, time.Since(start), status, "")
		metrics.ParserRunsTotal.WithLabelValues(hallID, status).Inc()
		span.SetAttributes(attribute.String("status", "success"), attribute.Bool("is_stale", false))
		return Result{Menu: m, IsStale: false, FetchedAt: now, Found: true}
	}

	if err != nil {
		status = snapshot.RunError
		errMsg = err.Error()
		o.logger.Warn("parser failed, falling back to stored snapshot",
			zap.String("hall_id", hallID), zap.String("date", date), zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		status = snapshot.RunNoData
	}
	o.runs.Record(ctx, hallID, date, start, time.Since(start), status, errMsg)
	metrics.ParserRunsTotal.WithLabelValues(hallID, status).Inc()

	stored, fetchedAt, found, loadErr := o.store.LoadLatest(ctx, hallID, date)
	if loadErr != nil {
		o.logger.Warn("fallback snapshot lookup failed",
			zap.String("hall_id", hallID), zap.String("date", date), zap.Error(loadErr))
		span.SetAttributes(attribute.String("status", status), attribute.Bool("is_stale", true))
		return Result{Found: false}
	}
	if !found {
		span.SetAttributes(attribute.String("status", status), attribute.Bool("is_stale", true))
		return Result{Found: false}
	}

	span.SetAttributes(attribute.String("status", status), attribute.Bool("is_stale", true))
	return Result{Menu: stored, IsStale: true, FetchedAt: fetchedAt, Found: true}
}
