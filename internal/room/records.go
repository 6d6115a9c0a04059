package room

import "time"

// Message is a chat line said by a player.
type Message struct {
	SceneId   string `json:"sceneId,omitempty"`
	SessionId string `json:"sessionId"`
	FarmId    int64  `json:"farmId"`
	Username  string `json:"username,omitempty"`
	Text      string `json:"text"`
	SentAt    int64  `json:"sentAt"`
}

type Reaction struct {
	SceneId   string `json:"sceneId,omitempty"`
	SessionId string `json:"sessionId"`
	FarmId    int64  `json:"farmId"`
	Reaction  string `json:"reaction"`
	SentAt    int64  `json:"sentAt"`
}

// TradeNotice announces a completed marketplace trade.
type TradeNotice struct {
	SceneId  string `json:"sceneId,omitempty"`
	TradeId  string `json:"tradeId"`
	BuyerId  string `json:"buyerId"`
	SellerId string `json:"sellerId"`
	Text     string `json:"text"`
	BoughtAt int64  `json:"boughtAt"`
}

// WorldEvent is a generic action a player performed at a location.
type WorldEvent struct {
	SceneId string  `json:"sceneId,omitempty"`
	FarmId  int64   `json:"farmId"`
	Event   string  `json:"event"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	SentAt  int64   `json:"sentAt"`
}

// Placeable is a short-lived object a player has put down next to themselves.
type Placeable struct {
	Id      int64   `json:"id"`
	SceneId string  `json:"sceneId,omitempty"`
	FarmId  int64   `json:"farmId"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`

	due time.Time
}
