package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pixil98/go-plaza/internal/protocol"
	"github.com/pixil98/go-plaza/internal/room"
)

type publisher interface {
	Publish(subject string, data []byte) error
	StateSubject(roomId string) string
}

// StatePublisher encodes room snapshots and publishes them for every connection to pick up.
type StatePublisher struct {
	server publisher
}

func NewStatePublisher(server *NatsServer) *StatePublisher {
	return &StatePublisher{server: server}
}

func (p *StatePublisher) PublishState(_ context.Context, s room.Snapshot) error {
	data, err := json.Marshal(protocol.ServerFrame{Type: protocol.FrameState, Payload: s})
	if err != nil {
		return fmt.Errorf("marshalling snapshot: %w", err)
	}

	err = p.server.Publish(p.server.StateSubject(s.RoomId), data)
	// Nobody can be listening before the server is up.
	if errors.Is(err, ErrNotStarted) {
		return nil
	}
	return err
}
