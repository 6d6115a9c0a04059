package room

import "sync"

// Session is a connection's handle on its player. The connection only ever talks to the
// room through Enqueue and by asking the room to Leave.
type Session struct {
	Id     string
	FarmId int64

	queue *InputQueue

	done    chan struct{}
	once    sync.Once
	mu      sync.Mutex
	kickErr error
}

func newSession(id string, farmId int64, queueCapacity int) *Session {
	return &Session{
		Id:     id,
		FarmId: farmId,
		queue:  NewInputQueue(queueCapacity),
		done:   make(chan struct{}),
	}
}

// Enqueue hands an input event to the simulation. It never blocks; false means the queue was
// full and the oldest pending event was dropped.
func (s *Session) Enqueue(ev InputEvent) bool {
	return s.queue.Enqueue(ev)
}

// Done is closed when the room ends the session, either because another connection took over
// the farm or because the room stopped.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Err returns why the session was ended, or nil while it is active.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.kickErr
}

// kick ends the session. Subsequent calls are no-ops.
func (s *Session) kick(reason error) {
	s.once.Do(func() {
		s.mu.Lock()
		s.kickErr = reason
		s.mu.Unlock()
		close(s.done)
	})
}
