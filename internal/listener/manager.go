package listener

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pixil98/go-plaza/internal/protocol"
	"github.com/pixil98/go-plaza/internal/room"
	"golang.org/x/time/rate"
)

const (
	DefaultReadLimit   = 64 * 1024
	DefaultJoinTimeout = 10 * time.Second
	DefaultInputRate   = 120
	DefaultInputBurst  = 120

	writeWait      = 10 * time.Second
	outboundFrames = 8
)

// Subscriber delivers the published snapshot frames of a room.
type Subscriber interface {
	SubscribeState(roomId string, handler func(data []byte)) (unsubscribe func(), err error)
}

// ConnectionManager runs one websocket connection from join handshake to disconnect.
type ConnectionManager struct {
	room     *room.Room
	sub      Subscriber
	upgrader websocket.Upgrader

	readLimit   int64
	joinTimeout time.Duration
	inputRate   rate.Limit
	inputBurst  int
}

func NewConnectionManager(r *room.Room, sub Subscriber, opts ...ConnectionManagerOpt) *ConnectionManager {
	m := &ConnectionManager{
		room: r,
		sub:  sub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		readLimit:   DefaultReadLimit,
		joinTimeout: DefaultJoinTimeout,
		inputRate:   DefaultInputRate,
		inputBurst:  DefaultInputBurst,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Upgrade turns an HTTP request into a websocket connection and serves it until it ends.
func (m *ConnectionManager) Upgrade(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	conn, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.WarnContext(ctx, "websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	m.AcceptConnection(ctx, conn)
}

// AcceptConnection performs the join handshake and then pumps input in and state out.
func (m *ConnectionManager) AcceptConnection(ctx context.Context, conn *websocket.Conn) {
	c := &connection{conn: conn}
	defer func() { _ = conn.Close() }()

	conn.SetReadLimit(m.readLimit)

	sess, err := m.join(ctx, c)
	if err != nil {
		slog.InfoContext(ctx, "websocket join failed", "remote", conn.RemoteAddr().String(), "error", err)
		c.close(websocket.ClosePolicyViolation, err.Error())
		return
	}

	consented := false
	defer func() {
		// The room may already be stopping; the player only needs removing if it is not.
		err := m.room.Leave(context.WithoutCancel(ctx), sess.Id, consented)
		if err != nil && !errors.Is(err, room.ErrRoomStopped) {
			slog.WarnContext(ctx, "leaving room", "sessionId", sess.Id, "error", err)
		}
	}()

	// Every frame is a full snapshot, so a slow client only ever needs the newest few.
	outbound := make(chan []byte, outboundFrames)
	unsubscribe, err := m.sub.SubscribeState(m.room.Id(), func(data []byte) {
		select {
		case outbound <- data:
		default:
		}
	})
	if err != nil {
		slog.ErrorContext(ctx, "subscribing to room state", "sessionId", sess.Id, "error", err)
		c.close(websocket.CloseInternalServerErr, "state unavailable")
		return
	}
	defer unsubscribe()

	err = c.writeJSON(protocol.ServerFrame{
		Type:    protocol.FrameJoined,
		Payload: protocol.Joined{RoomId: m.room.Id(), SessionId: sess.Id},
	})
	if err != nil {
		return
	}

	readErr := make(chan error, 1)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		readErr <- m.readInput(ctx, conn, sess)
	}()
	defer func() {
		// Unblocks the reader.
		_ = conn.Close()
		wg.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			c.close(websocket.CloseGoingAway, "server shutting down")
			return

		case <-sess.Done():
			c.close(websocket.ClosePolicyViolation, sess.Err().Error())
			return

		case data := <-outbound:
			if err := c.write(websocket.TextMessage, data); err != nil {
				slog.DebugContext(ctx, "writing state", "sessionId", sess.Id, "error", err)
				return
			}

		case err := <-readErr:
			consented = websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway)
			if !consented {
				slog.DebugContext(ctx, "websocket read ended", "sessionId", sess.Id, "error", err)
			}
			return
		}
	}
}

func (m *ConnectionManager) join(ctx context.Context, c *connection) (*room.Session, error) {
	if err := c.conn.SetReadDeadline(time.Now().Add(m.joinTimeout)); err != nil {
		return nil, err
	}

	var req room.JoinRequest
	if err := c.conn.ReadJSON(&req); err != nil {
		return nil, errors.New("invalid join request")
	}

	if err := c.conn.SetReadDeadline(time.Time{}); err != nil {
		return nil, err
	}

	return m.room.Join(ctx, req)
}

// readInput decodes frames until the connection fails. Input beyond the per-connection rate
// is dropped before it reaches the room.
func (m *ConnectionManager) readInput(ctx context.Context, conn *websocket.Conn, sess *room.Session) error {
	limiter := rate.NewLimiter(m.inputRate, m.inputBurst)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		var frame protocol.ClientFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			slog.DebugContext(ctx, "discarding malformed frame", "sessionId", sess.Id, "error", err)
			continue
		}
		if frame.Type != protocol.MessageInput {
			continue
		}

		if !limiter.Allow() {
			slog.DebugContext(ctx, "input rate exceeded", "sessionId", sess.Id)
			continue
		}

		ev, rejected, err := room.DecodeInput(frame.Payload)
		if err != nil {
			slog.DebugContext(ctx, "discarding malformed input", "sessionId", sess.Id, "error", err)
			continue
		}
		if len(rejected) > 0 {
			slog.DebugContext(ctx, "ignored invalid input fields", "sessionId", sess.Id, "fields", rejected)
		}

		if !sess.Enqueue(ev) {
			slog.DebugContext(ctx, "input queue full, dropped oldest", "sessionId", sess.Id)
		}
	}
}

// connection serializes writes; gorilla allows one concurrent writer.
type connection struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *connection) write(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(messageType, data)
}

func (c *connection) writeJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.write(websocket.TextMessage, data)
}

func (c *connection) close(code int, reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	msg := websocket.FormatCloseMessage(code, reason)
	_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
}
