package listener

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pixil98/go-plaza/internal/auth"
	"github.com/pixil98/go-plaza/internal/protocol"
	"github.com/pixil98/go-plaza/internal/room"
	"github.com/pixil98/go-testutil"
)

// memoryBus delivers published room state to subscribers in process, keyed by room id.
type memoryBus struct {
	mu       sync.Mutex
	nextId   int
	handlers map[string]map[int]func([]byte)
}

func newMemoryBus() *memoryBus {
	return &memoryBus{handlers: make(map[string]map[int]func([]byte))}
}

func (b *memoryBus) SubscribeState(roomId string, handler func(data []byte)) (func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.handlers[roomId] == nil {
		b.handlers[roomId] = make(map[int]func([]byte))
	}
	id := b.nextId
	b.nextId++
	b.handlers[roomId][id] = handler

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.handlers[roomId], id)
	}, nil
}

func (b *memoryBus) PublishState(_ context.Context, s room.Snapshot) error {
	data, err := json.Marshal(protocol.ServerFrame{Type: protocol.FrameState, Payload: s})
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, h := range b.handlers[s.RoomId] {
		h(data)
	}
	return nil
}

type testServer struct {
	room *room.Room
	url  string
}

func startServer(t *testing.T, authenticator room.Authenticator, opts ...ConnectionManagerOpt) *testServer {
	t.Helper()

	bus := newMemoryBus()
	r := room.NewRoom("plaza", authenticator, room.WithPublisher(bus))

	ctx, cancel := context.WithCancel(context.Background())
	roomDone := make(chan error, 1)
	go func() {
		roomDone <- r.Start(ctx)
	}()

	cm := NewConnectionManager(r, bus, opts...)
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		cm.Upgrade(ctx, w, req)
	}))

	t.Cleanup(func() {
		cancel()
		svr.Close()
		<-roomDone
	})

	return &testServer{
		room: r,
		url:  "ws" + strings.TrimPrefix(svr.URL, "http"),
	}
}

func (s *testServer) dial(t *testing.T) *websocket.Conn {
	t.Helper()

	conn, _, err := websocket.DefaultDialer.Dial(s.url, nil)
	if err != nil {
		t.Fatalf("dialing: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

type frame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func readFrame(t *testing.T, conn *websocket.Conn) (frame, error) {
	t.Helper()

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var f frame
	err := conn.ReadJSON(&f)
	return f, err
}

func joinAs(t *testing.T, conn *websocket.Conn, req room.JoinRequest) protocol.Joined {
	t.Helper()

	err := conn.WriteJSON(req)
	if err != nil {
		t.Fatalf("sending join: %v", err)
	}

	f, err := readFrame(t, conn)
	if err != nil {
		t.Fatalf("reading joined frame: %v", err)
	}
	testutil.AssertEqual(t, "frame type", f.Type, protocol.FrameJoined)

	var joined protocol.Joined
	err = json.Unmarshal(f.Payload, &joined)
	if err != nil {
		t.Fatalf("decoding joined frame: %v", err)
	}
	return joined
}

func sendInput(t *testing.T, conn *websocket.Conn, payload string) {
	t.Helper()

	err := conn.WriteJSON(protocol.ClientFrame{Type: protocol.MessageInput, Payload: json.RawMessage(payload)})
	if err != nil {
		t.Fatalf("sending input: %v", err)
	}
}

func expectClose(t *testing.T, conn *websocket.Conn, code int, text string) {
	t.Helper()

	for {
		_, err := readFrame(t, conn)
		if err == nil {
			continue
		}

		var closeErr *websocket.CloseError
		if !errors.As(err, &closeErr) {
			t.Fatalf("expected close frame, got %v", err)
		}
		testutil.AssertEqual(t, "close code", closeErr.Code, code)
		testutil.AssertEqual(t, "close text", strings.Contains(closeErr.Text, text), true)
		return
	}
}

// waitForState reads state frames until match accepts one.
func waitForState(t *testing.T, conn *websocket.Conn, match func(room.Snapshot) bool) room.Snapshot {
	t.Helper()

	for {
		f, err := readFrame(t, conn)
		if err != nil {
			t.Fatalf("reading state: %v", err)
		}
		if f.Type != protocol.FrameState {
			continue
		}

		var s room.Snapshot
		err = json.Unmarshal(f.Payload, &s)
		if err != nil {
			t.Fatalf("decoding state: %v", err)
		}
		if match(s) {
			return s
		}
	}
}

func TestConnectionManager_JoinAndMove(t *testing.T) {
	srv := startServer(t, auth.TrustAuthenticator{})
	conn := srv.dial(t)

	joined := joinAs(t, conn, room.JoinRequest{FarmId: 1, SceneId: "plaza", Username: "ann"})
	testutil.AssertEqual(t, "room", joined.RoomId, "plaza")

	sendInput(t, conn, `{"x":42,"y":24,"text":"hello","tick":3}`)

	s := waitForState(t, conn, func(s room.Snapshot) bool {
		return s.Players[joined.SessionId].X == 42
	})
	p := s.Players[joined.SessionId]
	testutil.AssertEqual(t, "y", p.Y, 24.0)
	testutil.AssertEqual(t, "tick", p.Tick, uint64(3))
	testutil.AssertEqual(t, "username", p.Username, "ann")
	testutil.AssertEqual(t, "messages", len(s.Messages), 1)
	testutil.AssertEqual(t, "message", s.Messages[0].Text, "hello")
}

func TestConnectionManager_JoinRejected(t *testing.T) {
	tests := map[string]struct {
		join    any
		expText string
	}{
		"authentication failure": {
			join:    room.JoinRequest{SceneId: "plaza"},
			expText: "authentication failed",
		},
		"malformed join": {
			join:    []string{"not", "a", "join"},
			expText: "invalid join request",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			srv := startServer(t, auth.TrustAuthenticator{})
			conn := srv.dial(t)

			err := conn.WriteJSON(tt.join)
			if err != nil {
				t.Fatal(err)
			}
			expectClose(t, conn, websocket.ClosePolicyViolation, tt.expText)
		})
	}
}

func TestConnectionManager_JoinTimeout(t *testing.T) {
	srv := startServer(t, auth.TrustAuthenticator{}, WithJoinTimeout(50*time.Millisecond))
	conn := srv.dial(t)

	expectClose(t, conn, websocket.ClosePolicyViolation, "invalid join request")
}

func TestConnectionManager_SecondConnectionEvictsFirst(t *testing.T) {
	srv := startServer(t, auth.TrustAuthenticator{})

	first := srv.dial(t)
	joinAs(t, first, room.JoinRequest{FarmId: 5, SceneId: "plaza"})

	second := srv.dial(t)
	joined := joinAs(t, second, room.JoinRequest{FarmId: 5, SceneId: "plaza"})

	expectClose(t, first, websocket.ClosePolicyViolation, room.ErrSessionReplaced.Error())

	s := waitForState(t, second, func(s room.Snapshot) bool {
		return len(s.Players) == 1
	})
	_, ok := s.Players[joined.SessionId]
	testutil.AssertEqual(t, "second present", ok, true)
}

func TestConnectionManager_ProtectedZoneRejectsSecond(t *testing.T) {
	srv := startServer(t, auth.TrustAuthenticator{})

	first := srv.dial(t)
	joined := joinAs(t, first, room.JoinRequest{FarmId: 5, SceneId: room.DefaultProtectedZone})

	second := srv.dial(t)
	err := second.WriteJSON(room.JoinRequest{FarmId: 5, SceneId: "plaza"})
	if err != nil {
		t.Fatal(err)
	}
	expectClose(t, second, websocket.ClosePolicyViolation, room.ErrAdmissionRejected.Error())

	s := waitForState(t, first, func(room.Snapshot) bool { return true })
	_, ok := s.Players[joined.SessionId]
	testutil.AssertEqual(t, "first kept", ok, true)
}

func TestConnectionManager_CloseLeavesRoom(t *testing.T) {
	srv := startServer(t, auth.TrustAuthenticator{})

	conn := srv.dial(t)
	joinAs(t, conn, room.JoinRequest{FarmId: 8, SceneId: "plaza"})

	err := conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))
	if err != nil {
		t.Fatal(err)
	}

	deadline := time.After(5 * time.Second)
	for {
		s, err := srv.room.Snapshot(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if len(s.Players) == 0 {
			return
		}

		select {
		case <-deadline:
			t.Fatal("player was not removed after the connection closed")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestConnectionManager_InputRateLimited(t *testing.T) {
	srv := startServer(t, auth.TrustAuthenticator{}, WithInputRate(0.001, 1))
	conn := srv.dial(t)
	joined := joinAs(t, conn, room.JoinRequest{FarmId: 2, SceneId: "plaza"})

	sendInput(t, conn, `{"text":"first"}`)
	sendInput(t, conn, `{"text":"second"}`)

	s := waitForState(t, conn, func(s room.Snapshot) bool {
		return len(s.Messages) > 0
	})
	testutil.AssertEqual(t, "messages", len(s.Messages), 1)
	testutil.AssertEqual(t, "message", s.Messages[0].Text, "first")
	testutil.AssertEqual(t, "player", s.Players[joined.SessionId].FarmId, int64(2))
}
