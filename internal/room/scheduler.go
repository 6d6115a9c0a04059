package room

import "time"

// TickScheduler converts irregular wall-clock deltas into a whole number of fixed steps.
type TickScheduler struct {
	step    time.Duration
	elapsed time.Duration
}

func NewTickScheduler(step time.Duration) *TickScheduler {
	if step <= 0 {
		step = FixedStep
	}
	return &TickScheduler{step: step}
}

// Advance accumulates delta and returns how many fixed steps are now due. The remainder is
// carried into the next call.
func (s *TickScheduler) Advance(delta time.Duration) int {
	if delta > 0 {
		s.elapsed += delta
	}

	ticks := 0
	for s.elapsed >= s.step {
		s.elapsed -= s.step
		ticks++
	}
	return ticks
}

// Leftover returns the accumulated time not yet consumed by a step.
func (s *TickScheduler) Leftover() time.Duration {
	return s.elapsed
}

func (s *TickScheduler) Step() time.Duration {
	return s.step
}
