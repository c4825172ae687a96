package adapter

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	chat "github.com/thy-zed/zedsphere-chat-app/internal/pkg/chat/application/domain"
	repository "github.com/thy-zed/zedsphere-chat-app/internal/pkg/chat/persistence/repository/port"
)

var _ repository.ChatRepository = (*MemoryChatRepository)(nil)

// MemoryChatRepository is an in-process implementation of the repository
// port, used by tests and local development. It honors the same contracts as
// the Postgres adapter: one surviving conversation per pair (a single mutex
// is the arbitration point) and atomic append side effects.
type MemoryChatRepository struct {
	mu     sync.Mutex
	convs  map[string]*chat.Conversation // by id
	byPair map[string]string             // "low|high" -> conversation id
	msgs   map[string][]chat.Message     // by conversation id
	seq    int
}

func NewMemoryChatRepository() *MemoryChatRepository {
	return &MemoryChatRepository{
		convs:  make(map[string]*chat.Conversation),
		byPair: make(map[string]string),
		msgs:   make(map[string][]chat.Message),
	}
}

func (r *MemoryChatRepository) GetOrCreateConversation(_ context.Context, userLow, userHigh string) (chat.Conversation, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := userLow + "|" + userHigh
	if id, ok := r.byPair[key]; ok {
		return r.snapshotLocked(id), false, nil
	}

	r.seq++
	now := time.Now().UTC()
	conv := &chat.Conversation{
		ID:        fmt.Sprintf("conv-%d", r.seq),
		UserLow:   userLow,
		UserHigh:  userHigh,
		CreatedAt: now,
		UpdatedAt: now,
		Participants: []chat.Participant{
			{UserID: userLow},
			{UserID: userHigh},
		},
	}
	for i := range conv.Participants {
		conv.Participants[i].ConversationID = conv.ID
	}
	r.convs[conv.ID] = conv
	r.byPair[key] = conv.ID
	return r.snapshotLocked(conv.ID), true, nil
}

func (r *MemoryChatRepository) GetConversation(_ context.Context, conversationID string) (chat.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.convs[conversationID]; !ok {
		return chat.Conversation{}, chat.ErrConversationNotFound
	}
	return r.snapshotLocked(conversationID), nil
}

func (r *MemoryChatRepository) ListConversationsByUser(_ context.Context, userID string) ([]chat.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []chat.Conversation
	for id, conv := range r.convs {
		if conv.HasParticipant(userID) {
			out = append(out, r.snapshotLocked(id))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (r *MemoryChatRepository) ResetUnread(_ context.Context, conversationID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	conv, ok := r.convs[conversationID]
	if !ok || !conv.HasParticipant(userID) {
		return chat.ErrConversationNotFound
	}
	for i := range conv.Participants {
		if conv.Participants[i].UserID == userID {
			conv.Participants[i].UnreadCount = 0
		}
	}
	return nil
}

func (r *MemoryChatRepository) AppendMessage(_ context.Context, m chat.Message) (chat.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conv, ok := r.convs[m.ConversationID]
	if !ok {
		return chat.Message{}, chat.ErrConversationNotFound
	}
	if !conv.HasParticipant(m.SenderID) {
		return chat.Message{}, chat.ErrNotParticipant
	}

	createdAt := time.Now().UTC()
	if history := r.msgs[conv.ID]; len(history) > 0 {
		if last := history[len(history)-1].CreatedAt; !createdAt.After(last) {
			createdAt = last.Add(time.Microsecond)
		}
	}

	r.seq++
	stored := m
	stored.ID = fmt.Sprintf("msg-%d", r.seq)
	stored.CreatedAt = createdAt
	r.msgs[conv.ID] = append(r.msgs[conv.ID], stored)

	latest := stored.ID
	conv.LatestMessageID = &latest
	conv.UpdatedAt = createdAt
	for i := range conv.Participants {
		if conv.Participants[i].UserID != m.SenderID {
			conv.Participants[i].UnreadCount++
		}
	}
	return stored, nil
}

func (r *MemoryChatRepository) GetMessagesByConversation(_ context.Context, conversationID string, limit, offset int) ([]chat.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.convs[conversationID]; !ok {
		return nil, chat.ErrConversationNotFound
	}
	history := r.msgs[conversationID]
	if offset < 0 {
		offset = 0
	}
	if offset >= len(history) {
		return nil, nil
	}
	rest := history[offset:]
	if limit > 0 && limit < len(rest) {
		rest = rest[:limit]
	}
	out := make([]chat.Message, len(rest))
	copy(out, rest)
	return out, nil
}

func (r *MemoryChatRepository) ListParticipantIDs(_ context.Context, conversationID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conv, ok := r.convs[conversationID]
	if !ok {
		return nil, chat.ErrConversationNotFound
	}
	return conv.ParticipantIDs(), nil
}

// snapshotLocked deep-copies a conversation so callers never alias the
// repository's mutable state.
func (r *MemoryChatRepository) snapshotLocked(id string) chat.Conversation {
	conv := r.convs[id]
	out := *conv
	out.Participants = append([]chat.Participant(nil), conv.Participants...)
	if conv.LatestMessageID != nil {
		latest := *conv.LatestMessageID
		out.LatestMessageID = &latest
	}
	return out
}
