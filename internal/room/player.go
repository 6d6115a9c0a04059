package room

import "fmt"

type Faction string

const (
	FactionNone        Faction = ""
	FactionSunflorians Faction = "sunflorians"
	FactionBumpkins    Faction = "bumpkins"
	FactionGoblins     Faction = "goblins"
	FactionNightshades Faction = "nightshades"
)

// Valid reports whether f is one of the known factions or unset.
func (f Faction) Valid() bool {
	switch f {
	case FactionNone, FactionSunflorians, FactionBumpkins, FactionGoblins, FactionNightshades:
		return true
	default:
		return false
	}
}

func (f *Faction) UnmarshalText(text []byte) error {
	v := Faction(text)
	if !v.Valid() {
		return fmt.Errorf("unknown faction: %s", text)
	}
	*f = v
	return nil
}

// Player is the authoritative record of a connected participant.
type Player struct {
	SessionId  string   `json:"-"`
	FarmId     int64    `json:"farmId"`
	Username   string   `json:"username,omitempty"`
	Faction    Faction  `json:"faction,omitempty"`
	SceneId    string   `json:"sceneId,omitempty"`
	Experience float64  `json:"experience"`
	X          float64  `json:"x"`
	Y          float64  `json:"y"`
	Tick       uint64   `json:"tick"`
	Clothing   Equipped `json:"clothing"`

	queue *InputQueue
}

// Queue returns the buffer the player's connection enqueues input into.
func (p *Player) Queue() *InputQueue {
	return p.queue
}
