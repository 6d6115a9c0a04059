package room

import (
	"encoding/json"
	"fmt"
	"math"
)

// Equipped is the cosmetic loadout a player is wearing. Slots are passed through untouched.
type Equipped struct {
	Body       string `json:"body,omitempty"`
	Shirt      string `json:"shirt,omitempty"`
	Pants      string `json:"pants,omitempty"`
	Hat        string `json:"hat,omitempty"`
	Suit       string `json:"suit,omitempty"`
	Onesie     string `json:"onesie,omitempty"`
	Dress      string `json:"dress,omitempty"`
	Hair       string `json:"hair,omitempty"`
	Wings      string `json:"wings,omitempty"`
	Beard      string `json:"beard,omitempty"`
	Tool       string `json:"tool,omitempty"`
	Background string `json:"background,omitempty"`
	Shoes      string `json:"shoes,omitempty"`

	// UpdatedAt is the server time in unix milliseconds the loadout was last replaced.
	UpdatedAt int64 `json:"updatedAt,omitempty"`
}

type TradeDetails struct {
	BuyerId  string `json:"buyerId"`
	SellerId string `json:"sellerId"`
	TradeId  string `json:"tradeId"`
}

// InputEvent is one message sent by a client. Every field is optional and each one present
// is applied independently of the others.
type InputEvent struct {
	X        *float64
	Y        *float64
	Tick     uint64
	Text     string
	Clothing *Equipped
	SceneId  string
	Trade    *TradeDetails
	Reaction string
	Action   string
	Username string
	Faction  Faction
	BudId    int64
}

// HasPosition mirrors the client's "x || y" check: a zero coordinate alone is not a move.
func (e InputEvent) HasPosition() bool {
	return (e.X != nil && *e.X != 0) || (e.Y != nil && *e.Y != 0)
}

// DecodeInput decodes a client input payload field by field. A field that fails to decode or
// validate is dropped and its name returned in rejected; the rest of the event still applies.
// An error is only returned when the payload is not a JSON object.
func DecodeInput(data []byte) (ev InputEvent, rejected []string, err error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return InputEvent{}, nil, fmt.Errorf("decoding input: %w", err)
	}

	reject := func(name string) {
		rejected = append(rejected, name)
	}

	for name, raw := range fields {
		if string(raw) == "null" {
			continue
		}

		switch name {
		case "x", "y":
			var v float64
			if json.Unmarshal(raw, &v) != nil || math.IsNaN(v) || math.IsInf(v, 0) {
				reject(name)
				continue
			}
			if name == "x" {
				ev.X = &v
			} else {
				ev.Y = &v
			}

		case "tick":
			var v float64
			if json.Unmarshal(raw, &v) != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
				reject(name)
				continue
			}
			ev.Tick = uint64(v)

		case "text":
			var v string
			if json.Unmarshal(raw, &v) != nil {
				reject(name)
				continue
			}
			ev.Text = sanitizeText(v, maxTextRunes)

		case "clothing":
			var v Equipped
			if json.Unmarshal(raw, &v) != nil {
				reject(name)
				continue
			}
			v.UpdatedAt = 0
			ev.Clothing = &v

		case "sceneId":
			if json.Unmarshal(raw, &ev.SceneId) != nil {
				reject(name)
			}

		case "trade":
			var v TradeDetails
			if json.Unmarshal(raw, &v) != nil {
				reject(name)
				continue
			}
			ev.Trade = &v

		case "reaction":
			if json.Unmarshal(raw, &ev.Reaction) != nil {
				reject(name)
			}

		case "action":
			if json.Unmarshal(raw, &ev.Action) != nil {
				reject(name)
			}

		case "username":
			var v string
			if json.Unmarshal(raw, &v) != nil {
				reject(name)
				continue
			}
			ev.Username = sanitizeText(v, maxUsernameRunes)

		case "faction":
			var v Faction
			if json.Unmarshal(raw, &v) != nil || !v.Valid() {
				reject(name)
				continue
			}
			ev.Faction = v

		case "budId":
			var v float64
			if json.Unmarshal(raw, &v) != nil || !integralInt64(v) {
				reject(name)
				continue
			}
			ev.BudId = int64(v)
		}
	}

	return ev, rejected, nil
}

// integralInt64 reports whether v is a whole number that converts to int64 without loss.
// float64(math.MaxInt64) rounds up to 2^63, so the upper bound is exclusive.
func integralInt64(v float64) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
		return false
	}
	return v >= math.MinInt64 && v < math.MaxInt64
}
