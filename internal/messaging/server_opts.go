package messaging

import "time"

type NatsServerOpt func(*NatsServer)

// WithStartTimeout sets the startup timeout for the nats server
func WithStartTimeout(d time.Duration) NatsServerOpt {
	return func(n *NatsServer) {
		n.startupTimeout = d
	}
}

// WithHost sets the host for the nats server
func WithHost(host string) NatsServerOpt {
	return func(n *NatsServer) {
		n.host = host
	}
}

// WithPort sets the port for the nats server. -1 picks a random free port.
func WithPort(port int) NatsServerOpt {
	return func(n *NatsServer) {
		n.port = port
	}
}

// WithMaxPayload caps the size of a single published message. Snapshots grow with the player
// count, so a full room may need more than the server default.
func WithMaxPayload(bytes int32) NatsServerOpt {
	return func(n *NatsServer) {
		n.maxPayload = bytes
	}
}

// WithSubjectPrefix sets the leading tokens of every room subject. Servers sharing one nats
// cluster use distinct prefixes to keep their rooms apart.
func WithSubjectPrefix(prefix string) NatsServerOpt {
	return func(n *NatsServer) {
		n.subjectPrefix = prefix
	}
}

// WithClientName sets the name the internal client connection reports to the server.
func WithClientName(name string) NatsServerOpt {
	return func(n *NatsServer) {
		n.clientName = name
	}
}
