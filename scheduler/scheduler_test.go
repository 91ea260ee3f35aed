package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestEvery_RunsImmediately(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ran := make(chan struct{}, 1)
	Every(ctx, time.Hour, func(context.Context) {
		select {
		case ran <- struct{}{}:
		default:
		}
	})

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("expected an immediate first run")
	}
}

func TestEvery_RunsOnTicks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var runs atomic.Int32
	Every(ctx, 10*time.Millisecond, func(context.Context) {
		runs.Add(1)
	})

	time.Sleep(100 * time.Millisecond)
	if got := runs.Load(); got < 3 {
		t.Errorf("expected several runs, got %d", got)
	}
}

func TestEvery_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var runs atomic.Int32
	Every(ctx, 10*time.Millisecond, func(context.Context) {
		runs.Add(1)
	})

	time.Sleep(30 * time.Millisecond)
	cancel()
	time.Sleep(20 * time.Millisecond)

	after := runs.Load()
	time.Sleep(50 * time.Millisecond)
	if got := runs.Load(); got != after {
		t.Errorf("job kept running after cancel: %d -> %d", after, got)
	}
}
