package chat

import (
	"strings"
	"time"
)

// Message is an immutable log entry in a conversation. CreatedAt is assigned
// by the store under the per-conversation append lock and is strictly
// increasing within a conversation.
type Message struct {
	ID             string    `db:"id"`
	ConversationID string    `db:"conversation_id"`
	SenderID       string    `db:"sender_id"`
	Content        string    `db:"content"`
	CreatedAt      time.Time `db:"created_at"`

	// SenderName is display decoration resolved from the user directory;
	// never persisted on the message row.
	SenderName string `db:"-"`
}

// NewMessage validates and normalizes a message before it is persisted.
// ID and CreatedAt are left for the store to assign.
func NewMessage(conversationID, senderID, content string) (*Message, error) {
	if conversationID == "" || senderID == "" {
		return nil, ErrMissingUser
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyMessage
	}
	return &Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        content,
	}, nil
}
