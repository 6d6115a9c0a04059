package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pixil98/go-plaza/internal/protocol"
	"github.com/pixil98/go-plaza/internal/room"
	"github.com/pixil98/go-testutil"
)

func TestLerp(t *testing.T) {
	from := point{X: 0, Y: 100}
	to := point{X: 100, Y: 0}

	tests := map[string]struct {
		t   float64
		exp point
	}{
		"start":         {t: 0, exp: from},
		"halfway":       {t: 0.5, exp: point{X: 50, Y: 50}},
		"end":           {t: 1, exp: to},
		"clamped below": {t: -1, exp: from},
		"clamped above": {t: 2, exp: to},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "point", lerp(from, to, tt.t), tt.exp)
		})
	}
}

func TestBot_Step(t *testing.T) {
	b := newBot(botConfig{})
	b.from = point{X: 0, Y: 0}
	b.to = point{X: 200, Y: 0}

	start := time.Unix(100, 0)
	testutil.AssertEqual(t, "start", b.step(start), point{X: 0, Y: 0})
	testutil.AssertEqual(t, "quarter", b.step(start.Add(walkDuration/4)), point{X: 50, Y: 0})
	testutil.AssertEqual(t, "arrived", b.step(start.Add(walkDuration)), point{X: 200, Y: 0})

	// Arriving starts the next leg from the old target.
	testutil.AssertEqual(t, "next from", b.from, point{X: 200, Y: 0})
	testutil.AssertEqual(t, "next start", b.start, start.Add(walkDuration))
}

func TestRandomPoint_InsideMap(t *testing.T) {
	for range 100 {
		p := randomPoint()
		testutil.AssertEqual(t, "x in map", p.X >= 0 && p.X <= room.MapWidth, true)
		testutil.AssertEqual(t, "y in map", p.Y >= 0 && p.Y <= room.MapHeight, true)
	}
}

func TestDialWithRetry_InvalidURL(t *testing.T) {
	_, err := dialWithRetry(context.Background(), "http://localhost")
	testutil.AssertErrorContains(t, err, "invalid websocket url")
}

func TestReadJoined(t *testing.T) {
	tests := map[string]struct {
		serve  func(conn *websocket.Conn)
		expId  string
		expErr string
	}{
		"joined after other frames": {
			serve: func(conn *websocket.Conn) {
				_ = conn.WriteJSON(protocol.ServerFrame{Type: protocol.FrameState, Payload: room.Snapshot{}})
				_ = conn.WriteJSON(protocol.ServerFrame{Type: protocol.FrameJoined, Payload: protocol.Joined{RoomId: "plaza", SessionId: "abc"}})
			},
			expId: "abc",
		},
		"rejected": {
			serve: func(conn *websocket.Conn) {
				msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "room is full")
				_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
			},
			expErr: "join rejected: room is full",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			upgrader := websocket.Upgrader{}
			svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				conn, err := upgrader.Upgrade(w, r, nil)
				if err != nil {
					return
				}
				defer func() { _ = conn.Close() }()

				var req room.JoinRequest
				if conn.ReadJSON(&req) != nil {
					return
				}
				tt.serve(conn)
				// Wait for the client to hang up.
				_, _, _ = conn.ReadMessage()
			}))
			defer svr.Close()

			conn, err := dialWithRetry(context.Background(), "ws"+strings.TrimPrefix(svr.URL, "http"))
			if err != nil {
				t.Fatal(err)
			}
			defer func() { _ = conn.Close() }()

			err = conn.WriteJSON(room.JoinRequest{FarmId: 1})
			if err != nil {
				t.Fatal(err)
			}

			joined, err := readJoined(conn)
			if tt.expErr != "" {
				testutil.AssertErrorContains(t, err, tt.expErr)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "session", joined.SessionId, tt.expId)
		})
	}
}

func TestSend(t *testing.T) {
	received := make(chan protocol.ClientFrame, 1)
	upgrader := websocket.Upgrader{}
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer func() { _ = conn.Close() }()

		var f protocol.ClientFrame
		if conn.ReadJSON(&f) == nil {
			received <- f
		}
	}))
	defer svr.Close()

	conn, err := dialWithRetry(context.Background(), "ws"+strings.TrimPrefix(svr.URL, "http"))
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = conn.Close() }()

	err = send(conn, map[string]any{"text": "hi"})
	if err != nil {
		t.Fatal(err)
	}

	select {
	case f := <-received:
		testutil.AssertEqual(t, "type", f.Type, protocol.MessageInput)
		ev, _, err := room.DecodeInput(f.Payload)
		if err != nil {
			t.Fatal(err)
		}
		testutil.AssertEqual(t, "text", ev.Text, "hi")
	case <-time.After(5 * time.Second):
		t.Fatal("frame not received")
	}
}
