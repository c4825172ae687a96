package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalPair(t *testing.T) {
	low, high, err := CanonicalPair("bob", "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", low)
	assert.Equal(t, "bob", high)

	low2, high2, err := CanonicalPair("alice", "bob")
	require.NoError(t, err)
	assert.Equal(t, low, low2)
	assert.Equal(t, high, high2)
}

func TestCanonicalPairRejectsSelf(t *testing.T) {
	_, _, err := CanonicalPair("alice", "alice")
	assert.ErrorIs(t, err, ErrSelfConversation)
}

func TestCanonicalPairRejectsMissingUser(t *testing.T) {
	_, _, err := CanonicalPair("", "bob")
	assert.ErrorIs(t, err, ErrMissingUser)

	_, _, err = CanonicalPair("alice", "")
	assert.ErrorIs(t, err, ErrMissingUser)
}

func TestNewMessageTrimsContent(t *testing.T) {
	msg, err := NewMessage("c1", "alice", "  hello  ")
	require.NoError(t, err)
	assert.Equal(t, "hello", msg.Content)
	assert.Empty(t, msg.ID)
	assert.True(t, msg.CreatedAt.IsZero())
}

func TestNewMessageRejectsEmptyContent(t *testing.T) {
	_, err := NewMessage("c1", "alice", "   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestNewMessageRejectsMissingIDs(t *testing.T) {
	_, err := NewMessage("", "alice", "hi")
	assert.ErrorIs(t, err, ErrMissingUser)

	_, err = NewMessage("c1", "", "hi")
	assert.ErrorIs(t, err, ErrMissingUser)
}

func TestConversationMembership(t *testing.T) {
	conv := Conversation{
		UserLow:  "alice",
		UserHigh: "bob",
		Participants: []Participant{
			{UserID: "alice", UnreadCount: 0},
			{UserID: "bob", UnreadCount: 3},
		},
	}

	assert.True(t, conv.HasParticipant("alice"))
	assert.True(t, conv.HasParticipant("bob"))
	assert.False(t, conv.HasParticipant("mallory"))
	assert.False(t, conv.HasParticipant(""))

	assert.Equal(t, 3, conv.UnreadFor("bob"))
	assert.Equal(t, 0, conv.UnreadFor("mallory"))
	assert.Equal(t, map[string]int{"alice": 0, "bob": 3}, conv.UnreadCounts())
	assert.Equal(t, []string{"alice", "bob"}, conv.ParticipantIDs())
}
