package command

import (
	"fmt"

	"github.com/pixil98/go-errors"
)

type Config struct {
	Room      RoomConfig       `json:"room"`
	Listeners []ListenerConfig `json:"listeners"`
	Nats      NatsConfig       `json:"nats"`
	Auth      AuthConfig       `json:"auth"`
}

func (c *Config) Validate() error {
	el := errors.NewErrorList()

	if len(c.Listeners) == 0 {
		el.Add(fmt.Errorf("at least one listener is required"))
	}
	for i, l := range c.Listeners {
		err := l.validate()
		if err != nil {
			el.Add(fmt.Errorf("listener %d: %w", i, err))
		}
	}

	el.Add(c.Room.validate())
	el.Add(c.Nats.validate())
	el.Add(c.Auth.validate())

	return el.Err()
}
