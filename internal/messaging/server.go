package messaging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
)

const (
	DefaultSubjectPrefix = "room"
	DefaultClientName    = "plaza"
)

var ErrNotStarted = errors.New("nats server not started")

// NatsServer embeds a nats server that fans room snapshots out to every connection.
type NatsServer struct {
	ns   *server.Server
	conn atomic.Pointer[nats.Conn]

	startupTimeout time.Duration
	host           string
	port           int
	maxPayload     int32
	subjectPrefix  string
	clientName     string
}

func NewNatsServer(opts ...NatsServerOpt) (*NatsServer, error) {
	s := &NatsServer{
		startupTimeout: 10 * time.Second,
		host:           "127.0.0.1",
		port:           server.DEFAULT_PORT,
		subjectPrefix:  DefaultSubjectPrefix,
		clientName:     DefaultClientName,
	}

	for _, opt := range opts {
		opt(s)
	}

	err := ValidateSubjectPrefix(s.subjectPrefix)
	if err != nil {
		return nil, err
	}

	ns, err := server.NewServer(&server.Options{
		Host:       s.host,
		Port:       s.port,
		MaxPayload: s.maxPayload, // zero keeps the server default
		NoSigs:     true,         // Let the application handle signals
	})
	if err != nil {
		return nil, fmt.Errorf("creating nats server: %w", err)
	}
	s.ns = ns

	return s, nil
}

func (n *NatsServer) Start(ctx context.Context) error {
	n.ns.Start()

	if !n.ns.ReadyForConnections(n.startupTimeout) {
		n.ns.Shutdown()
		return fmt.Errorf("nats server not ready for connections")
	}

	// Create internal client connection
	conn, err := nats.Connect(n.ns.ClientURL(), nats.Name(n.clientName))
	if err != nil {
		n.ns.Shutdown()
		return fmt.Errorf("creating nats client connection: %w", err)
	}
	n.conn.Store(conn)

	slog.InfoContext(ctx, "nats server listening", "addr", n.ns.Addr())

	<-ctx.Done()
	n.conn.Store(nil)
	conn.Close()
	n.ns.Shutdown()
	n.ns.WaitForShutdown()

	return nil
}

// StateSubject is the subject the snapshots of the given room are published on.
func (n *NatsServer) StateSubject(roomId string) string {
	return fmt.Sprintf("%s.%s.state", n.subjectPrefix, roomId)
}

// SubscribeState delivers every snapshot frame published for the given room to handler.
func (n *NatsServer) SubscribeState(roomId string, handler func(data []byte)) (func(), error) {
	return n.Subscribe(n.StateSubject(roomId), handler)
}

// Subscribe creates a subscription on the given subject.
// The handler is called for each message received.
// Returns an unsubscribe function to remove the subscription.
func (n *NatsServer) Subscribe(subject string, handler func(data []byte)) (func(), error) {
	conn := n.conn.Load()
	if conn == nil {
		return nil, ErrNotStarted
	}
	sub, err := conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(msg.Data)
	})
	if err != nil {
		return nil, fmt.Errorf("subscribing to %q: %w", subject, err)
	}
	return func() { _ = sub.Unsubscribe() }, nil
}

// Publish sends a message to the given subject
func (n *NatsServer) Publish(subject string, data []byte) error {
	conn := n.conn.Load()
	if conn == nil {
		return ErrNotStarted
	}
	return conn.Publish(subject, data)
}

// ValidateSubjectPrefix reports whether prefix can lead a literal nats subject.
func ValidateSubjectPrefix(prefix string) error {
	if prefix == "" {
		return fmt.Errorf("subject prefix must not be empty")
	}
	for _, token := range strings.Split(prefix, ".") {
		if token == "" || strings.ContainsAny(token, "*> \t\r\n") {
			return fmt.Errorf("subject prefix %q is not a valid nats subject", prefix)
		}
	}
	return nil
}
