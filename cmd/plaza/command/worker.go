package command

import (
	"fmt"
	"log/slog"

	"github.com/pixil98/go-plaza/internal/messaging"
	"github.com/pixil98/go-service"
)

func BuildWorkers(config interface{}) (service.WorkerList, error) {
	cfg, ok := config.(*Config)
	if !ok {
		return nil, fmt.Errorf("unable to cast config")
	}

	natsServer, err := cfg.Nats.buildNatsServer()
	if err != nil {
		return nil, fmt.Errorf("creating nats server: %w", err)
	}

	authenticator, err := cfg.Auth.BuildAuthenticator()
	if err != nil {
		return nil, fmt.Errorf("creating authenticator: %w", err)
	}
	if cfg.Auth.Mode == AuthModeTrust {
		slog.Warn("auth mode is trust, join requests are not verified")
	}

	r, err := cfg.Room.BuildRoom(authenticator, messaging.NewStatePublisher(natsServer))
	if err != nil {
		return nil, fmt.Errorf("creating room: %w", err)
	}

	// Create Listeners
	listeners := make(service.WorkerList, len(cfg.Listeners))
	for i, l := range cfg.Listeners {
		listener, err := l.BuildListener(r, natsServer)
		if err != nil {
			return nil, fmt.Errorf("creating listener %d: %w", i, err)
		}
		listeners[fmt.Sprintf("listener-%d", i)] = listener
	}

	return service.WorkerList{
		"nats":      natsServer,
		"room":      r,
		"listeners": &listeners,
	}, nil
}
