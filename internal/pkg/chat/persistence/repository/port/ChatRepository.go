package repository

import (
	"context"

	chat "github.com/thy-zed/zedsphere-chat-app/internal/pkg/chat/application/domain"
)

// ChatRepository defines persistence operations for the chat domain.
// Implementations own the atomicity guarantees:
//   - GetOrCreateConversation resolves creation races so exactly one row
//     survives per unordered user pair.
//   - AppendMessage applies message insert, latest-pointer update and unread
//     increments as one transaction, serialized per conversation.
type ChatRepository interface {
	// GetOrCreateConversation returns the conversation for the sorted pair
	// (userLow, userHigh), creating it when absent. created reports whether
	// this call inserted the row.
	GetOrCreateConversation(ctx context.Context, userLow, userHigh string) (conv chat.Conversation, created bool, err error)

	// GetConversation returns the conversation by id, hydrated with
	// participants. Returns chat.ErrConversationNotFound when absent.
	GetConversation(ctx context.Context, conversationID string) (chat.Conversation, error)

	// ListConversationsByUser returns every conversation the user belongs to,
	// most recently updated first.
	ListConversationsByUser(ctx context.Context, userID string) ([]chat.Conversation, error)

	// ResetUnread sets the user's unread counter to zero. Returns
	// chat.ErrConversationNotFound when no membership row matches.
	ResetUnread(ctx context.Context, conversationID, userID string) error

	// AppendMessage persists m and applies the latest-pointer and unread
	// side effects. Returns the stored message with id and created_at set.
	// Returns chat.ErrConversationNotFound or chat.ErrNotParticipant on
	// validation failure inside the transaction.
	AppendMessage(ctx context.Context, m chat.Message) (chat.Message, error)

	// GetMessagesByConversation returns messages oldest first. limit <= 0
	// means no limit.
	GetMessagesByConversation(ctx context.Context, conversationID string, limit, offset int) ([]chat.Message, error)

	// ListParticipantIDs returns the member ids of the conversation.
	// Returns chat.ErrConversationNotFound when the conversation is absent.
	ListParticipantIDs(ctx context.Context, conversationID string) ([]string, error)
}
