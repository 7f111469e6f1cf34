package coalesce

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/claremont-dine/menu-api/internal/menu"
)

func TestFetchCoalescesConcurrentCallers(t *testing.T) {
	g := New()
	var calls int32
	var wg sync.WaitGroup
	results := make([]any, 10)

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			v, err := g.Fetch(context.Background(), "same-key", func(ctx context.Context) (any, error) {
				atomic.AddInt32(&calls, 1)
				time.Sleep(20 * time.Millisecond)
				return "value", nil
			})
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			results[idx] = v
		}(i)
	}
	wg.Wait()

	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("expected exactly 1 underlying call, got %d", calls)
	}
	for _, r := range results {
		if r != "value" {
			t.Errorf("expected all callers to get 'value', got %v", r)
		}
	}
}

func TestFetchPropagatesError(t *testing.T) {
	g := New()
	wantErr := errors.New("boom")

	_, err := g.Fetch(context.Background(), "err-key", func(ctx context.Context) (any, error) {
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("expected %v, got %v", wantErr, err)
	}
}

func TestFetchRespectsParentCancellation(t *testing.T) {
	g := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Fetch(ctx, "cancelled-key", func(ctx context.Context) (any, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})

	var timeoutErr *menu.TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Errorf("expected *menu.TimeoutError, got %v", err)
	}
}

func TestDifferentKeysDoNotCoalesce(t *testing.T) {
	g := New()
	var calls int32

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		key := "key"
		if i == 1 {
			key = "other-key"
		}
		go func(k string) {
			defer wg.Done()
			_, _ = g.Fetch(context.Background(), k, func(ctx context.Context) (any, error) {
				atomic.AddInt32(&calls, 1)
				return nil, nil
			})
		}(key)
	}
	wg.Wait()

	if atomic.LoadInt32(&calls) != 2 {
		t.Errorf("expected 2 independent calls for distinct keys, got %d", calls)
	}
}
