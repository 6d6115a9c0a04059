package room

import (
	"context"
	"sync"
)

// IdentityRegistry maps a farm to the session currently admitted for it. Callers serialize
// work on one farm by holding a Claim; different farms proceed independently.
type IdentityRegistry struct {
	mu       sync.Mutex
	sessions map[int64]string
	locks    map[int64]*identityLock
}

type identityLock struct {
	sem  chan struct{}
	refs int
}

func NewIdentityRegistry() *IdentityRegistry {
	return &IdentityRegistry{
		sessions: make(map[int64]string),
		locks:    make(map[int64]*identityLock),
	}
}

// Lookup returns the session last registered for farmId.
func (r *IdentityRegistry) Lookup(farmId int64) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.sessions[farmId]
	return id, ok
}

// Claim blocks until the caller holds exclusive access to farmId or ctx is done.
func (r *IdentityRegistry) Claim(ctx context.Context, farmId int64) (*IdentityClaim, error) {
	r.mu.Lock()
	l, ok := r.locks[farmId]
	if !ok {
		l = &identityLock{sem: make(chan struct{}, 1)}
		r.locks[farmId] = l
	}
	l.refs++
	r.mu.Unlock()

	select {
	case l.sem <- struct{}{}:
		return &IdentityClaim{registry: r, farmId: farmId, lock: l}, nil
	case <-ctx.Done():
		r.unref(farmId, l)
		return nil, ctx.Err()
	}
}

func (r *IdentityRegistry) unref(farmId int64, l *identityLock) {
	r.mu.Lock()
	defer r.mu.Unlock()

	l.refs--
	if l.refs == 0 {
		delete(r.locks, farmId)
	}
}

// IdentityClaim is exclusive access to one farm's registry entry.
type IdentityClaim struct {
	registry *IdentityRegistry
	farmId   int64
	lock     *identityLock
	once     sync.Once
}

// Current returns the session registered for the claimed farm.
func (c *IdentityClaim) Current() (string, bool) {
	return c.registry.Lookup(c.farmId)
}

// Register records sessionId as the farm's active session, replacing any previous one.
func (c *IdentityClaim) Register(sessionId string) {
	c.registry.mu.Lock()
	defer c.registry.mu.Unlock()

	c.registry.sessions[c.farmId] = sessionId
}

// Release gives up the claim. It is safe to call more than once.
func (c *IdentityClaim) Release() {
	c.once.Do(func() {
		<-c.lock.sem
		c.registry.unref(c.farmId, c.lock)
	})
}
