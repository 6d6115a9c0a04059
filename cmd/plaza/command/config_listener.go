package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-plaza/internal/listener"
	"github.com/pixil98/go-plaza/internal/room"
	"github.com/pixil98/go-service"
)

type ListenerConfig struct {
	Port        uint16  `json:"port"`
	Path        string  `json:"path,omitempty"`
	ReadLimit   int64   `json:"read_limit,omitempty"`
	JoinTimeout string  `json:"join_timeout,omitempty"`
	InputRate   float64 `json:"input_rate,omitempty"`
	InputBurst  int     `json:"input_burst,omitempty"`
}

func (cl *ListenerConfig) validate() error {
	el := errors.NewErrorList()

	if cl.Port == 0 {
		el.Add(fmt.Errorf("port must be set to a positive integer"))
	}

	if cl.ReadLimit < 0 {
		el.Add(fmt.Errorf("read_limit must not be negative"))
	}

	if cl.JoinTimeout != "" {
		if _, err := time.ParseDuration(cl.JoinTimeout); err != nil {
			el.Add(fmt.Errorf("parsing join_timeout: %w", err))
		}
	}

	if cl.InputRate < 0 {
		el.Add(fmt.Errorf("input_rate must not be negative"))
	}

	return el.Err()
}

func (cl *ListenerConfig) BuildListener(r *room.Room, sub listener.Subscriber) (service.Worker, error) {
	opts := []listener.ConnectionManagerOpt{
		listener.WithReadLimit(cl.ReadLimit),
	}
	if cl.JoinTimeout != "" {
		d, err := time.ParseDuration(cl.JoinTimeout)
		if err != nil {
			return nil, fmt.Errorf("parsing join_timeout: %w", err)
		}
		opts = append(opts, listener.WithJoinTimeout(d))
	}
	if cl.InputRate > 0 {
		opts = append(opts, listener.WithInputRate(cl.InputRate, cl.InputBurst))
	}

	cm := listener.NewConnectionManager(r, sub, opts...)
	return listener.NewWebsocketListener(cl.Port, cl.Path, cm), nil
}
