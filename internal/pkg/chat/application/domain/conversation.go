package chat

import "time"

// Conversation is a direct-message thread between exactly two users.
// The unordered pair (UserLow, UserHigh) is the identity key: UserLow is
// always the lexicographically smaller id, and storage enforces uniqueness
// on the sorted pair.
type Conversation struct {
	ID              string    `db:"id"`
	UserLow         string    `db:"user_low"`
	UserHigh        string    `db:"user_high"`
	LatestMessageID *string   `db:"latest_message_id"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`

	// Participants carries the per-user unread counters, hydrated by the
	// repository on read. Always two entries for a dyad conversation.
	Participants []Participant
}

// CanonicalPair sorts two distinct user ids into the (low, high) storage order.
func CanonicalPair(a, b string) (low, high string, err error) {
	if a == "" || b == "" {
		return "", "", ErrMissingUser
	}
	if a == b {
		return "", "", ErrSelfConversation
	}
	if a < b {
		return a, b, nil
	}
	return b, a, nil
}

// ParticipantIDs returns both member ids of the dyad.
func (c *Conversation) ParticipantIDs() []string {
	return []string{c.UserLow, c.UserHigh}
}

// HasParticipant tells whether userID is a member of this conversation.
func (c *Conversation) HasParticipant(userID string) bool {
	return userID != "" && (userID == c.UserLow || userID == c.UserHigh)
}

// UnreadFor returns the unread counter for userID; unknown users read as 0.
func (c *Conversation) UnreadFor(userID string) int {
	for _, p := range c.Participants {
		if p.UserID == userID {
			return p.UnreadCount
		}
	}
	return 0
}

// UnreadCounts flattens the participant counters into a userID -> count map.
func (c *Conversation) UnreadCounts() map[string]int {
	out := make(map[string]int, len(c.Participants))
	for _, p := range c.Participants {
		out[p.UserID] = p.UnreadCount
	}
	return out
}
