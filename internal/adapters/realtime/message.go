// Package realtime pushes events to connected users over websockets and, when
// configured, fans them out to other instances through Redis pub/sub.
package realtime

import (
	"context"

	"github.com/goccy/go-json"
)

// Event types pushed to clients.
const (
	TypeReceiveMessage = "receive-message"
	TypeMessageSent    = "message-sent"
	TypeRankUpdated    = "rank-updated"
	TypePing           = "ping"
	TypePong           = "pong"
)

// Message is one frame sent to a client.
type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// NewMessage encodes data into a message of type typ.
func NewMessage(typ string, data any) (Message, error) {
	if data == nil {
		return Message{Type: typ}, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: typ, Data: raw}, nil
}

// envelope is the pub/sub payload: a message plus its recipient.
type envelope struct {
	UserID  string  `json:"userId"`
	Message Message `json:"message"`
}

// Publisher delivers a message to every connection of a user.
type Publisher interface {
	Publish(ctx context.Context, userID string, msg Message) error
}
