package chat

// Participant captures membership and the unread counter for one user in one
// conversation. Primary key: (ConversationID, UserID).
type Participant struct {
	ConversationID string `db:"conversation_id"`
	UserID         string `db:"user_id"`
	UnreadCount    int    `db:"unread_count"`
}
