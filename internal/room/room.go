package room

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pixil98/go-plaza/internal/driver"
)

// Publisher hands a finished tick's state to whatever synchronizes it to clients.
type Publisher interface {
	PublishState(ctx context.Context, s Snapshot) error
}

// Room is a single shared space. All world mutation happens on the goroutine running Start.
type Room struct {
	id        string
	world     *WorldState
	scheduler *TickScheduler
	registry  *IdentityRegistry
	admission *AdmissionController
	publisher Publisher
	driver    *driver.Driver

	// sessions is owned by the simulation goroutine.
	sessions map[string]*Session

	clock         func() time.Time
	interval      time.Duration
	queueCapacity int
	protected     []string
	notices       *NoticeTemplate
	newSessionId  func() string
}

func NewRoom(id string, auth Authenticator, opts ...RoomOpt) *Room {
	r := &Room{
		id:            id,
		scheduler:     NewTickScheduler(FixedStep),
		registry:      NewIdentityRegistry(),
		sessions:      make(map[string]*Session),
		clock:         time.Now,
		interval:      driver.DefaultInterval,
		queueCapacity: DefaultInputQueueCapacity,
		protected:     []string{DefaultProtectedZone},
		newSessionId:  uuid.NewString,
	}

	for _, opt := range opts {
		opt(r)
	}

	r.world = NewWorldState(r.notices)
	r.admission = NewAdmissionController(auth, r.protected)
	r.driver = driver.NewDriver(r, driver.WithInterval(r.interval), driver.WithClock(r.clock))

	return r
}

func (r *Room) Id() string {
	return r.id
}

// Start runs the simulation until ctx is canceled. Every session still connected when the
// room stops is ended.
func (r *Room) Start(ctx context.Context) error {
	slog.InfoContext(ctx, "room started", "roomId", r.id, "tickRate", TickRate)

	err := r.driver.Start(ctx)

	for id, s := range r.sessions {
		s.kick(ErrRoomStopped)
		delete(r.sessions, id)
	}

	slog.InfoContext(ctx, "room stopped", "roomId", r.id)
	return err
}

// Advance runs however many fixed ticks delta covers and publishes the state after each.
func (r *Room) Advance(ctx context.Context, delta time.Duration) error {
	ticks := r.scheduler.Advance(delta)
	for range ticks {
		r.world.Tick(ctx, r.clock())

		if r.publisher == nil {
			continue
		}
		err := r.publisher.PublishState(ctx, r.world.Snapshot(r.id))
		if err != nil {
			slog.WarnContext(ctx, "publishing room state", "roomId", r.id, "error", err)
		}
	}
	return nil
}

// Snapshot returns a copy of the room's current state.
func (r *Room) Snapshot(ctx context.Context) (Snapshot, error) {
	var s Snapshot
	err := r.do(ctx, func() {
		s = r.world.Snapshot(r.id)
	})
	return s, err
}

func (r *Room) do(ctx context.Context, fn func()) error {
	err := r.driver.Do(ctx, fn)
	if errors.Is(err, driver.ErrStopped) {
		return ErrRoomStopped
	}
	if err != nil {
		return fmt.Errorf("waiting for room: %w", err)
	}
	return nil
}
