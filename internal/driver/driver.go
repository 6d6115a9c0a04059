package driver

import (
	"context"
	"errors"
	"sync"
	"time"
)

const (
	DefaultInterval = time.Second / 60
)

var ErrStopped = errors.New("driver is not running")

// Simulation is advanced by the driver with the wall-clock time elapsed since the previous
// call. Deltas are irregular; it is up to the simulation to turn them into fixed steps.
type Simulation interface {
	Advance(ctx context.Context, delta time.Duration) error
}

// Driver owns the goroutine a simulation runs on. Work submitted through Do runs on that
// same goroutine between advances, so the simulation never needs its own locking.
type Driver struct {
	interval time.Duration
	clock    func() time.Time
	sim      Simulation

	work      chan func()
	stopped   chan struct{}
	startOnce sync.Once
}

func NewDriver(sim Simulation, opts ...DriverOpt) *Driver {
	d := &Driver{
		interval: DefaultInterval,
		clock:    time.Now,
		sim:      sim,
		work:     make(chan func()),
		stopped:  make(chan struct{}),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Start runs the simulation until ctx is canceled or an advance fails. A driver can only be
// started once.
func (d *Driver) Start(ctx context.Context) error {
	err := ErrStopped
	d.startOnce.Do(func() {
		defer close(d.stopped)
		err = d.run(ctx)
	})
	return err
}

func (d *Driver) run(ctx context.Context) error {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	last := d.clock()
	for {
		select {
		case <-ctx.Done():
			return nil
		case fn := <-d.work:
			fn()
		case <-ticker.C:
			now := d.clock()
			err := d.sim.Advance(ctx, now.Sub(last))
			last = now
			if err != nil {
				return err
			}
		}
	}
}

// Do runs fn on the simulation goroutine and waits for it to finish. Once fn has been
// accepted it always runs to completion, even if ctx is canceled while waiting.
func (d *Driver) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	item := func() {
		defer close(finished)
		fn()
	}

	select {
	case d.work <- item:
	case <-ctx.Done():
		return ctx.Err()
	case <-d.stopped:
		return ErrStopped
	}

	<-finished
	return nil
}

// Stopped is closed once Start has returned.
func (d *Driver) Stopped() <-chan struct{} {
	return d.stopped
}
