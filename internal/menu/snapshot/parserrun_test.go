package snapshot

import (
	"context"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
)

func TestRecordInsertsParserRunRow(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO parser_runs")).
		WithArgs(pgxmock.AnyArg(), "hoch", "2026-03-05", pgxmock.AnyArg(), pgxmock.AnyArg(), RunSuccess, nil).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	r := NewRunRecorder(mock, nil)
	r.Record(context.Background(), "hoch", "2026-03-05", time.Now(), 50*time.Millisecond, RunSuccess, "")

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRecordTruncatesLongErrorMessages(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	longMsg := strings.Repeat("x", errorMessageMaxLen+100)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO parser_runs")).
		WithArgs(pgxmock.AnyArg(), "hoch", "2026-03-05", pgxmock.AnyArg(), pgxmock.AnyArg(), RunError,
			strings.Repeat("x", errorMessageMaxLen)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	r := NewRunRecorder(mock, nil)
	r.Record(context.Background(), "hoch", "2026-03-05", time.Now(), 50*time.Millisecond, RunError, longMsg)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRecordSwallowsExecError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO parser_runs")).
		WillReturnError(context.DeadlineExceeded)

	r := NewRunRecorder(mock, nil)
	// Record must never panic or propagate; this call succeeding at all is the assertion.
	r.Record(context.Background(), "hoch", "2026-03-05", time.Now(), 50*time.Millisecond, RunError, "boom")
}
