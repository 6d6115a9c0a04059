package listener

import (
	"time"

	"golang.org/x/time/rate"
)

type ConnectionManagerOpt func(*ConnectionManager)

// WithReadLimit caps the size of a single client frame in bytes.
func WithReadLimit(n int64) ConnectionManagerOpt {
	return func(m *ConnectionManager) {
		if n > 0 {
			m.readLimit = n
		}
	}
}

// WithJoinTimeout bounds how long a client has to send its join request.
func WithJoinTimeout(d time.Duration) ConnectionManagerOpt {
	return func(m *ConnectionManager) {
		if d > 0 {
			m.joinTimeout = d
		}
	}
}

// WithInputRate limits how many input frames per second a connection may send. A rate of
// zero disables the limit.
func WithInputRate(perSecond float64, burst int) ConnectionManagerOpt {
	return func(m *ConnectionManager) {
		if perSecond <= 0 {
			m.inputRate = rate.Inf
			return
		}
		m.inputRate = rate.Limit(perSecond)
		if burst > 0 {
			m.inputBurst = burst
		}
	}
}
