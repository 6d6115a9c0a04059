package room

// Snapshot is a read-only copy of a room's state, safe to hand to other goroutines.
type Snapshot struct {
	RoomId    string               `json:"roomId"`
	Tick      uint64               `json:"tick"`
	MapWidth  int                  `json:"mapWidth"`
	MapHeight int                  `json:"mapHeight"`
	Players   map[string]Player    `json:"players"`
	Buds      map[string]Placeable `json:"buds"`
	Messages  []Message            `json:"messages"`
	Reactions []Reaction           `json:"reactions"`
	Trades    []TradeNotice        `json:"trades"`
	Actions   []WorldEvent         `json:"actions"`
}

// Snapshot copies the current state of the world.
func (w *WorldState) Snapshot(roomId string) Snapshot {
	s := Snapshot{
		RoomId:    roomId,
		Tick:      w.tick,
		MapWidth:  MapWidth,
		MapHeight: MapHeight,
		Players:   make(map[string]Player, len(w.players)),
		Buds:      make(map[string]Placeable, len(w.placeables)),
		Messages:  w.messages.Entries(),
		Reactions: w.reactions.Entries(),
		Trades:    w.trades.Entries(),
		Actions:   w.actions.Entries(),
	}

	for id, p := range w.players {
		cp := *p
		cp.queue = nil
		s.Players[id] = cp
	}
	for id, b := range w.placeables {
		s.Buds[id] = *b
	}

	return s
}
