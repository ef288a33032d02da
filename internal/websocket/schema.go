package websocket

import "time"

// Actions (client -> server)

type Action string

const (
	ActionPing Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// Events (server -> client). Broker messages are forwarded verbatim and carry
// their own event names (player-moved, player-completed, sessions-changed).

type Event string

const (
	EventError    Event = "error"
	EventPong     Event = "pong"
	EventSnapshot Event = "snapshot"
)

// SnapshotResponse is sent once on connect with the current expedition map.
type SnapshotResponse struct {
	Event  Event     `json:"event"`
	Data   any       `json:"data"`
	SentAt time.Time `json:"sent_at"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
