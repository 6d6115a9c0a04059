package driver

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/pixil98/go-testutil"
)

type countingSim struct {
	mu     sync.Mutex
	calls  int
	deltas []time.Duration
	err    error
}

func (s *countingSim) Advance(_ context.Context, delta time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.deltas = append(s.deltas, delta)
	return s.err
}

func (s *countingSim) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestDriver_AdvancesUntilCanceled(t *testing.T) {
	sim := &countingSim{}
	d := NewDriver(sim, WithInterval(time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- d.Start(ctx)
	}()

	deadline := time.After(time.Second)
	for sim.count() < 3 {
		select {
		case <-deadline:
			t.Fatal("simulation was not advanced")
		case <-time.After(time.Millisecond):
		}
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("start error: unexpected error: %v", err)
	}

	select {
	case <-d.Stopped():
	default:
		t.Fatal("expected driver to be stopped")
	}
}

func TestDriver_StopsOnAdvanceError(t *testing.T) {
	sim := &countingSim{err: errors.New("boom")}
	d := NewDriver(sim, WithInterval(time.Millisecond))

	err := d.Start(context.Background())
	testutil.AssertErrorContains(t, err, "boom")
	testutil.AssertEqual(t, "calls", sim.count(), 1)
}

func TestDriver_DeltaUsesClock(t *testing.T) {
	var mu sync.Mutex
	now := time.Unix(0, 0)
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(10 * time.Millisecond)
		return now
	}

	sim := &countingSim{err: errors.New("stop")}
	d := NewDriver(sim, WithInterval(time.Millisecond), WithClock(clock))
	_ = d.Start(context.Background())

	testutil.AssertEqual(t, "delta", sim.deltas[0], 10*time.Millisecond)
}

func TestDriver_Do(t *testing.T) {
	sim := &countingSim{}
	d := NewDriver(sim, WithInterval(time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- d.Start(ctx)
	}()

	total := 0
	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := d.Do(context.Background(), func() {
				// Work items never overlap, so this needs no lock of its own.
				total++
			})
			if err != nil {
				t.Errorf("do: %v", err)
			}
		}()
	}
	wg.Wait()
	testutil.AssertEqual(t, "total", total, 20)

	cancel()
	<-done

	err := d.Do(context.Background(), func() {})
	testutil.AssertEqual(t, "after stop", errors.Is(err, ErrStopped), true)
}

func TestDriver_DoCanceled(t *testing.T) {
	d := NewDriver(&countingSim{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := d.Do(ctx, func() {})
	testutil.AssertEqual(t, "canceled", errors.Is(err, context.Canceled), true)
}

func TestDriver_StartOnce(t *testing.T) {
	d := NewDriver(&countingSim{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := d.Start(ctx); err != nil {
		t.Errorf("first start: unexpected error: %v", err)
	}
	err := d.Start(context.Background())
	testutil.AssertEqual(t, "second start", errors.Is(err, ErrStopped), true)
}
