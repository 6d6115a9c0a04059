package driver

import "time"

type DriverOpt func(*Driver)

// WithInterval sets how often the simulation is advanced.
func WithInterval(interval time.Duration) DriverOpt {
	return func(d *Driver) {
		if interval > 0 {
			d.interval = interval
		}
	}
}

// WithClock replaces the wall clock used to measure deltas.
func WithClock(clock func() time.Time) DriverOpt {
	return func(d *Driver) {
		d.clock = clock
	}
}
