package snapshot

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ParserRun statuses, carried verbatim from the original ParserRun model.
const (
	RunSuccess = "success"
	RunNoData  = "no_data"
	RunError   = "error"
)

const errorMessageMaxLen = 500

// RunRecorder persists ParserRun rows for operational visibility. Never
// read by the core pipeline — write-only, best-effort.
type RunRecorder struct {
	pool   querier
	logger *zap.Logger
}

// NewRunRecorder builds a RunRecorder over the same pool the Store uses.
func NewRunRecorder(pool querier, logger *zap.Logger) *RunRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RunRecorder{pool: pool, logger: logger}
}

// Record inserts one ParserRun row. Failures are logged, not propagated:
// losing an observability row must never fail the caller's request.
func (r *RunRecorder) Record(ctx context.Context, hallID, menuDate string, startedAt time.Time, duration time.Duration, status string, errMsg string) {
	if len(errMsg) > errorMessageMaxLen {
		errMsg = errMsg[:errorMessageMaxLen]
	}

	var errArg any
	if errMsg != "" {
		errArg = errMsg
	}

	query, args, err := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
		Insert("parser_runs").
		Columns("id", "hall_id", "menu_date", "started_at", "duration_ms", "status", "error_message").
		Values(uuid.New(), hallID, menuDate, startedAt, duration.Milliseconds(), status, errArg).
		ToSql()
	if err != nil {
		r.logger.Warn("failed to build parser_run insert", zap.Error(err))
		return
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		r.logger.Warn("failed to record parser run",
			zap.String("hall_id", hallID), zap.String("status", status), zap.Error(err))
	}
}
