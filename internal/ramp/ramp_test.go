package ramp

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		plan Plan
		conc int
		ok   bool
	}{
		{"valid", Plan{Initial: 1, Max: 4, Interval: time.Second, Increment: 1}, 4, true},
		{"initial too low", Plan{Initial: 0, Max: 4, Interval: time.Second, Increment: 1}, 4, false},
		{"max below initial", Plan{Initial: 3, Max: 2, Interval: time.Second, Increment: 1}, 4, false},
		{"max exceeds concurrency", Plan{Initial: 1, Max: 10, Interval: time.Second, Increment: 1}, 4, false},
		{"zero interval", Plan{Initial: 1, Max: 4, Interval: 0, Increment: 1}, 4, false},
		{"zero increment", Plan{Initial: 1, Max: 4, Interval: time.Second, Increment: 0}, 4, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.plan.Validate(tc.conc)
			if tc.ok && err != nil {
				t.Fatalf("expected valid, got error: %v", err)
			}
			if !tc.ok && err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}

func TestControllerRampsToMax(t *testing.T) {
	plan := Plan{Initial: 1, Max: 4, Interval: 10 * time.Millisecond, Increment: 1}

	var mu sync.Mutex
	var spawned int
	c := New(plan, func(n int) {
		mu.Lock()
		spawned += n
		mu.Unlock()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	c.Run(ctx)

	mu.Lock()
	defer mu.Unlock()
	if spawned != 3 {
		t.Fatalf("expected 3 additional workers spawned (1 initial + 3 = max 4), got %d", spawned)
	}
}

func TestControllerStopsOnCancellation(t *testing.T) {
	plan := Plan{Initial: 1, Max: 100, Interval: 10 * time.Millisecond, Increment: 1}

	var mu sync.Mutex
	var spawned int
	c := New(plan, func(n int) {
		mu.Lock()
		spawned += n
		mu.Unlock()
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()

	time.Sleep(35 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("controller did not stop after cancellation")
	}

	mu.Lock()
	defer mu.Unlock()
	if spawned >= 99 {
		t.Fatalf("expected ramp to stop early, got %d spawned", spawned)
	}
}

func TestControllerNoopWhenAlreadyAtMax(t *testing.T) {
	plan := Plan{Initial: 4, Max: 4, Interval: time.Millisecond, Increment: 1}
	called := false
	c := New(plan, func(int) { called = true })

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	c.Run(ctx)

	if called {
		t.Fatal("expected no spawn calls when initial already equals max")
	}
}
