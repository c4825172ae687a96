package chat

import "errors"

// Domain-level errors for chat behaviors
var (
	ErrMissingUser          = errors.New("chat: user id is required")
	ErrSelfConversation     = errors.New("chat: a conversation needs two distinct users")
	ErrNotParticipant       = errors.New("chat: sender is not a participant in the conversation")
	ErrEmptyMessage         = errors.New("chat: empty message body")
	ErrConversationNotFound = errors.New("chat: conversation not found")
)
