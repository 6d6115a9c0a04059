// Package protocol defines the JSON frames exchanged with clients over a websocket.
//
// A connection opens with the client sending a room.JoinRequest. The server answers with a
// "joined" frame, or closes the socket with the rejection reason. After that the client sends
// ClientFrames and receives a "state" frame after every tick.
package protocol

import "encoding/json"

// Client message types.
const (
	MessageInput = 0
)

// ClientFrame wraps every message a client sends once it has joined.
type ClientFrame struct {
	Type    int             `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Server frame types.
const (
	FrameJoined = "joined"
	FrameState  = "state"
)

// ServerFrame wraps every message sent to a client.
type ServerFrame struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type Joined struct {
	RoomId    string `json:"roomId"`
	SessionId string `json:"sessionId"`
}
