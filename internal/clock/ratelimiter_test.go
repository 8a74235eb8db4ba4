package clock

import (
	"context"
	"testing"
	"time"
)

func TestLimiterUnlimited(t *testing.T) {
	l := NewLimiter(0)
	start := time.Now()
	for i := 0; i < 5; i++ {
		if err := l.Wait(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Fatalf("unlimited limiter should not pace, took %s", elapsed)
	}
}

func TestLimiterPaces(t *testing.T) {
	l := NewLimiter(20) // 20/s => ~50ms between requests after the first
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := l.Wait(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	elapsed := time.Since(start)
	if elapsed < 80*time.Millisecond {
		t.Fatalf("expected pacing to enforce roughly 50ms between requests, elapsed=%s", elapsed)
	}
}

func TestLimiterRespectsCancellation(t *testing.T) {
	l := NewLimiter(1) // 1/s, burst 1: first call consumes the token
	ctx := context.Background()
	if err := l.Wait(ctx); err != nil {
		t.Fatalf("unexpected error on first wait: %v", err)
	}

	cancelCtx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := l.Wait(cancelCtx); err == nil {
		t.Fatal("expected cancellation error on second wait")
	}
}

func TestNilLimiter(t *testing.T) {
	var l *Limiter
	if err := l.Wait(context.Background()); err != nil {
		t.Fatalf("nil limiter should never error: %v", err)
	}
}
