package model

import "time"

// ChatMessage is a direct message between two users. Messages are relayed, not stored.
type ChatMessage struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	Text       string    `json:"text"`
	TS         time.Time `json:"ts"`
}
