package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pixil98/go-plaza/internal/protocol"
	"github.com/pixil98/go-plaza/internal/room"
)

const (
	walkInterval = time.Second / 60
	walkDuration = 20 * time.Second
	maxChatDelay = 30 * time.Second
	minChatDelay = time.Second
	startX       = 440
	startY       = 440
)

var chatLines = []string{
	"Hello there!",
	"How are you doing?",
	"Nice weather today!",
	"I found a treasure!",
	"Let's explore together!",
	"I need some help!",
	"What's your favorite game?",
	"Have you seen any monsters around?",
	"Let's have an adventure!",
	"I love this game!",
	"Do you want to team up?",
}

var outfits = []room.Equipped{
	{Body: "Beige Farmer Potion", Hair: "Basic Hair", Shirt: "Red Farmer Shirt", Pants: "Farmer Pants", Shoes: "Black Farmer Boots", Tool: "Farmer Pitchfork"},
	{Body: "Dark Brown Farmer Potion", Hair: "Rancher Hair", Shirt: "Yellow Farmer Shirt", Pants: "Lumberjack Overalls", Shoes: "Black Farmer Boots", Tool: "Axe"},
	{Body: "Goblin Potion", Hair: "Sun Spots", Shirt: "Blue Farmer Shirt", Pants: "Farmer Overalls", Shoes: "Black Farmer Boots", Hat: "Straw Hat"},
}

type point struct {
	X float64
	Y float64
}

func lerp(from, to point, t float64) point {
	t = min(max(t, 0), 1)
	return point{
		X: from.X + (to.X-from.X)*t,
		Y: from.Y + (to.Y-from.Y)*t,
	}
}

func randomPoint() point {
	return point{
		X: float64(rand.IntN(room.MapWidth + 1)),
		Y: float64(rand.IntN(room.MapHeight + 1)),
	}
}

func randomChatDelay() time.Duration {
	return minChatDelay + rand.N(maxChatDelay-minChatDelay)
}

type botConfig struct {
	endpoint string
	sceneId  string
	token    string
}

type bot struct {
	cfg    botConfig
	farmId int64
	outfit room.Equipped
	clock  func() time.Time

	// walk state
	from  point
	to    point
	start time.Time
}

func newBot(cfg botConfig) *bot {
	return &bot{
		cfg:    cfg,
		farmId: rand.Int64N(50000) + 1,
		outfit: outfits[rand.IntN(len(outfits))],
		clock:  time.Now,
		from:   point{X: startX, Y: startY},
		to:     randomPoint(),
	}
}

// step advances the walk and returns where the bot should now be. A new target is picked once
// the previous one is reached.
func (b *bot) step(now time.Time) point {
	if b.start.IsZero() {
		b.start = now
	}

	t := float64(now.Sub(b.start)) / float64(walkDuration)
	pos := lerp(b.from, b.to, t)

	if t >= 1 {
		b.from = b.to
		b.to = randomPoint()
		b.start = now
	}
	return pos
}

func (b *bot) run(ctx context.Context) error {
	conn, err := dialWithRetry(ctx, b.cfg.endpoint)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	x, y := float64(startX), float64(startY)
	err = conn.WriteJSON(room.JoinRequest{
		FarmId:  b.farmId,
		Token:   b.cfg.token,
		SceneId: b.cfg.sceneId,
		Bumpkin: room.Bumpkin{Equipped: b.outfit},
		X:       &x,
		Y:       &y,
	})
	if err != nil {
		return fmt.Errorf("sending join: %w", err)
	}

	joined, err := readJoined(conn)
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "bot joined", "farmId", b.farmId, "sessionId", joined.SessionId)

	readErr := make(chan error, 1)
	go func() {
		readErr <- drain(conn)
	}()

	walk := time.NewTicker(walkInterval)
	defer walk.Stop()
	chat := time.NewTimer(randomChatDelay())
	defer chat.Stop()

	for {
		select {
		case <-ctx.Done():
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye")
			_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
			return nil

		case err := <-readErr:
			return fmt.Errorf("connection closed: %w", err)

		case <-walk.C:
			pos := b.step(b.clock())
			err := send(conn, map[string]any{"x": pos.X, "y": pos.Y})
			if err != nil {
				return err
			}

		case <-chat.C:
			err := send(conn, map[string]any{"text": chatLines[rand.IntN(len(chatLines))]})
			if err != nil {
				return err
			}
			chat.Reset(randomChatDelay())
		}
	}
}

func send(conn *websocket.Conn, payload map[string]any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	err = conn.WriteJSON(protocol.ClientFrame{Type: protocol.MessageInput, Payload: data})
	if err != nil {
		return fmt.Errorf("sending input: %w", err)
	}
	return nil
}

func readJoined(conn *websocket.Conn) (protocol.Joined, error) {
	var frame struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	for {
		err := conn.ReadJSON(&frame)
		if err != nil {
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) {
				return protocol.Joined{}, fmt.Errorf("join rejected: %s", closeErr.Text)
			}
			return protocol.Joined{}, fmt.Errorf("reading join response: %w", err)
		}
		if frame.Type != protocol.FrameJoined {
			continue
		}

		var joined protocol.Joined
		err = json.Unmarshal(frame.Payload, &joined)
		if err != nil {
			return protocol.Joined{}, fmt.Errorf("decoding join response: %w", err)
		}
		return joined, nil
	}
}

// drain discards state frames so the server never sees this bot as a slow reader.
func drain(conn *websocket.Conn) error {
	for {
		if _, _, err := conn.NextReader(); err != nil {
			return err
		}
	}
}

func dialWithRetry(ctx context.Context, endpoint string) (*websocket.Conn, error) {
	if !strings.HasPrefix(endpoint, "ws://") && !strings.HasPrefix(endpoint, "wss://") {
		return nil, fmt.Errorf("invalid websocket url: %s", endpoint)
	}

	var lastErr error
	for range 12 {
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, endpoint, nil)
		if err == nil {
			return conn, nil
		}
		lastErr = err

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(180 * time.Millisecond):
		}
	}
	return nil, lastErr
}
