package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-plaza/internal/room"
)

type RoomConfig struct {
	Id                 string   `json:"id"`
	ProtectedZones     []string `json:"protected_zones,omitempty"`
	InputQueueCapacity int      `json:"input_queue_capacity,omitempty"`
	SimulationInterval string   `json:"simulation_interval,omitempty"`
	TradeNotice        string   `json:"trade_notice,omitempty"`
}

func (c *RoomConfig) validate() error {
	el := errors.NewErrorList()

	if c.Id == "" {
		el.Add(fmt.Errorf("room id is required"))
	}

	if c.InputQueueCapacity < 0 {
		el.Add(fmt.Errorf("input_queue_capacity must not be negative"))
	}

	if c.SimulationInterval != "" {
		d, err := time.ParseDuration(c.SimulationInterval)
		if err != nil {
			el.Add(fmt.Errorf("parsing simulation_interval: %w", err))
		} else if d <= 0 || d > time.Second {
			el.Add(fmt.Errorf("simulation_interval must be between 0 and 1s"))
		}
	}

	if _, err := room.ParseNoticeTemplate(c.TradeNotice); err != nil {
		el.Add(err)
	}

	return el.Err()
}

func (c *RoomConfig) BuildRoom(auth room.Authenticator, pub room.Publisher) (*room.Room, error) {
	notices, err := room.ParseNoticeTemplate(c.TradeNotice)
	if err != nil {
		return nil, err
	}

	opts := []room.RoomOpt{
		room.WithPublisher(pub),
		room.WithNoticeTemplate(notices),
	}
	if c.ProtectedZones != nil {
		opts = append(opts, room.WithProtectedZones(c.ProtectedZones...))
	}
	if c.InputQueueCapacity > 0 {
		opts = append(opts, room.WithInputQueueCapacity(c.InputQueueCapacity))
	}
	if c.SimulationInterval != "" {
		d, err := time.ParseDuration(c.SimulationInterval)
		if err != nil {
			return nil, fmt.Errorf("parsing simulation_interval: %w", err)
		}
		opts = append(opts, room.WithSimulationInterval(d))
	}

	return room.NewRoom(c.Id, auth, opts...), nil
}
