package room

import "time"

type RoomOpt func(*Room)

// WithPublisher sets where state is sent after every tick.
func WithPublisher(p Publisher) RoomOpt {
	return func(r *Room) {
		r.publisher = p
	}
}

// WithClock replaces the wall clock used for ticks and record timestamps.
func WithClock(clock func() time.Time) RoomOpt {
	return func(r *Room) {
		r.clock = clock
	}
}

// WithSimulationInterval sets how often the simulation is invoked. The number of ticks run
// per invocation still follows the fixed step.
func WithSimulationInterval(d time.Duration) RoomOpt {
	return func(r *Room) {
		r.interval = d
	}
}

// WithInputQueueCapacity sets how many pending events each player may have queued.
func WithInputQueueCapacity(n int) RoomOpt {
	return func(r *Room) {
		r.queueCapacity = n
	}
}

// WithProtectedZones replaces the zones in which a connected farm cannot be taken over.
func WithProtectedZones(zones ...string) RoomOpt {
	return func(r *Room) {
		r.protected = zones
	}
}

// WithNoticeTemplate sets the template trade notices are rendered with.
func WithNoticeTemplate(t *NoticeTemplate) RoomOpt {
	return func(r *Room) {
		r.notices = t
	}
}

// WithSessionIds replaces the session id generator.
func WithSessionIds(gen func() string) RoomOpt {
	return func(r *Room) {
		r.newSessionId = gen
	}
}
