package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-plaza/internal/messaging"
)

// maxPayloadLimit is the largest max_payload the nats server accepts without warning.
const maxPayloadLimit = 64 * 1024 * 1024

type NatsConfig struct {
	Host          string `json:"host"`
	Port          int    `json:"port"`
	StartTimeout  string `json:"start_timeout"`
	SubjectPrefix string `json:"subject_prefix"`
	MaxPayload    int    `json:"max_payload"`
}

func (n *NatsConfig) validate() error {
	el := errors.NewErrorList()

	if n.StartTimeout != "" {
		_, err := time.ParseDuration(n.StartTimeout)
		if err != nil {
			el.Add(fmt.Errorf("parsing start_timeout: %w", err))
		}
	}

	if n.Port < -1 || n.Port > 65535 {
		el.Add(fmt.Errorf("port must be -1 (random) or between 0 and 65535"))
	}

	if n.SubjectPrefix != "" {
		el.Add(messaging.ValidateSubjectPrefix(n.SubjectPrefix))
	}

	if n.MaxPayload < 0 || n.MaxPayload > maxPayloadLimit {
		el.Add(fmt.Errorf("max_payload must be between 0 and %d", maxPayloadLimit))
	}

	return el.Err()
}

func (c *NatsConfig) buildNatsServer() (*messaging.NatsServer, error) {
	var opts []messaging.NatsServerOpt
	if c.StartTimeout != "" {
		d, err := time.ParseDuration(c.StartTimeout)
		if err != nil {
			return nil, fmt.Errorf("parsing start_timeout: %w", err)
		}
		opts = append(opts, messaging.WithStartTimeout(d))
	}
	if c.Host != "" {
		opts = append(opts, messaging.WithHost(c.Host))
	}
	if c.Port != 0 {
		opts = append(opts, messaging.WithPort(c.Port))
	}
	if c.SubjectPrefix != "" {
		opts = append(opts, messaging.WithSubjectPrefix(c.SubjectPrefix))
	}
	if c.MaxPayload != 0 {
		opts = append(opts, messaging.WithMaxPayload(int32(c.MaxPayload)))
	}

	s, err := messaging.NewNatsServer(opts...)
	if err != nil {
		return nil, err
	}

	return s, nil
}
