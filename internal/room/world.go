package room

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"time"
)

var errPlayerExists = errors.New("player already exists")

// WorldState is the single source of truth for everything in a room. It is not safe for
// concurrent use: only the room's simulation goroutine may touch it.
type WorldState struct {
	players    map[string]*Player
	order      []string
	placeables map[string]*Placeable

	messages  *HistoryLog[Message]
	reactions *HistoryLog[Reaction]
	trades    *HistoryLog[TradeNotice]
	actions   *HistoryLog[WorldEvent]

	notices  *NoticeTemplate
	lifetime time.Duration
	tick     uint64
}

// NewWorldState creates an empty world. A nil notices template renders DefaultTradeNotice.
func NewWorldState(notices *NoticeTemplate) *WorldState {
	if notices == nil {
		notices, _ = ParseNoticeTemplate(DefaultTradeNotice)
	}

	return &WorldState{
		players:    make(map[string]*Player),
		placeables: make(map[string]*Placeable),
		messages:   NewHistoryLog[Message](MessageCapacity),
		reactions:  NewHistoryLog[Reaction](ReactionCapacity),
		trades:     NewHistoryLog[TradeNotice](TradeCapacity),
		actions:    NewHistoryLog[WorldEvent](WorldEventCapacity),
		notices:    notices,
		lifetime:   PlaceableLifetime,
	}
}

// GetPlayer returns the player for a session. Returns nil if not found.
func (w *WorldState) GetPlayer(sessionId string) *Player {
	return w.players[sessionId]
}

func (w *WorldState) PlayerCount() int {
	return len(w.players)
}

// AddPlayer registers p under its session id.
func (w *WorldState) AddPlayer(p *Player) error {
	if _, exists := w.players[p.SessionId]; exists {
		return errPlayerExists
	}
	if p.queue == nil {
		p.queue = NewInputQueue(DefaultInputQueueCapacity)
	}

	w.players[p.SessionId] = p
	w.order = append(w.order, p.SessionId)
	return nil
}

// RemovePlayer removes a player and anything they placed. It reports whether the player
// was present.
func (w *WorldState) RemovePlayer(sessionId string) bool {
	delete(w.placeables, sessionId)

	if _, exists := w.players[sessionId]; !exists {
		return false
	}
	delete(w.players, sessionId)

	for i, id := range w.order {
		if id == sessionId {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
	return true
}

// GetPlaceable returns the placeable owned by a session. Returns nil if there is none.
func (w *WorldState) GetPlaceable(sessionId string) *Placeable {
	return w.placeables[sessionId]
}

// Ticks returns the number of simulation steps run so far.
func (w *WorldState) Ticks() uint64 {
	return w.tick
}

// Tick runs one fixed simulation step: placeables due at now are removed, then every
// player's queued input is applied in arrival order.
func (w *WorldState) Tick(ctx context.Context, now time.Time) {
	w.tick++
	w.expirePlaceables(now)

	for _, id := range w.order {
		p := w.players[id]
		for _, ev := range p.queue.Drain() {
			w.applySafe(ctx, p, ev, now)
		}
	}
}

// expirePlaceables removes every placeable whose lifetime has run out. Each owner has at most
// one placeable, so this is bounded by the number of players.
func (w *WorldState) expirePlaceables(now time.Time) {
	for id, p := range w.placeables {
		if !now.Before(p.due) {
			delete(w.placeables, id)
		}
	}
}

func (w *WorldState) applySafe(ctx context.Context, p *Player, ev InputEvent, now time.Time) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "recovered while applying input", "sessionId", p.SessionId, "panic", r)
		}
	}()

	w.apply(ctx, p, ev, now)
}

func (w *WorldState) apply(ctx context.Context, p *Player, ev InputEvent, now time.Time) {
	stamp := now.UnixMilli()

	if ev.HasPosition() {
		if ev.X != nil {
			p.X = *ev.X
		}
		if ev.Y != nil {
			p.Y = *ev.Y
		}

		if b, ok := w.placeables[p.SessionId]; ok {
			if math.Hypot(p.X-b.X, p.Y-b.Y) > PlaceableRange {
				delete(w.placeables, p.SessionId)
			}
		}
	}

	if ev.SceneId != "" {
		p.SceneId = ev.SceneId
	}

	if ev.Clothing != nil {
		p.Clothing = *ev.Clothing
		p.Clothing.UpdatedAt = stamp
	}

	// Last write wins, even when the event is older than one already applied.
	p.Tick = ev.Tick

	if ev.Text != "" {
		w.messages.Append(Message{
			SceneId:   p.SceneId,
			SessionId: p.SessionId,
			FarmId:    p.FarmId,
			Username:  p.Username,
			Text:      ev.Text,
			SentAt:    stamp,
		})
	}

	if ev.Reaction != "" {
		w.reactions.Append(Reaction{
			SceneId:   p.SceneId,
			SessionId: p.SessionId,
			FarmId:    p.FarmId,
			Reaction:  ev.Reaction,
			SentAt:    stamp,
		})
	}

	// Placing again replaces the old placeable and restarts the lifetime.
	if ev.BudId != 0 {
		w.placeables[p.SessionId] = &Placeable{
			Id:      ev.BudId,
			SceneId: p.SceneId,
			FarmId:  p.FarmId,
			X:       p.X,
			Y:       p.Y,
			due:     now.Add(w.lifetime),
		}
	}

	if ev.Trade != nil {
		text, err := w.notices.Render(*ev.Trade, p.SceneId)
		if err != nil {
			slog.WarnContext(ctx, "rendering trade notice", "tradeId", ev.Trade.TradeId, "error", err)
			text = DefaultTradeNotice
		}
		w.trades.Append(TradeNotice{
			SceneId:  p.SceneId,
			TradeId:  ev.Trade.TradeId,
			BuyerId:  ev.Trade.BuyerId,
			SellerId: ev.Trade.SellerId,
			Text:     text,
			BoughtAt: stamp,
		})
	}

	if ev.Action != "" {
		w.actions.Append(WorldEvent{
			SceneId: p.SceneId,
			FarmId:  p.FarmId,
			Event:   ev.Action,
			X:       p.X,
			Y:       p.Y,
			SentAt:  stamp,
		})
	}

	if ev.Username != "" {
		p.Username = ev.Username
	}

	if ev.Faction != FactionNone {
		p.Faction = ev.Faction
	}
}
