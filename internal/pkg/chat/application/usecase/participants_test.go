package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cacheport "github.com/thy-zed/zedsphere-chat-app/internal/infrastructure/cache/port"
	chat "github.com/thy-zed/zedsphere-chat-app/internal/pkg/chat/application/domain"
	"github.com/thy-zed/zedsphere-chat-app/internal/pkg/chat/persistence/repository/adapter"
)

// mapCache is a minimal in-process Cache for tests.
type mapCache struct {
	mu   sync.Mutex
	data map[string]string
}

func newMapCache() *mapCache { return &mapCache{data: make(map[string]string)} }

var _ cacheport.Cache = (*mapCache)(nil)

func (c *mapCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return "", cacheport.ErrMiss
	}
	return v, nil
}

func (c *mapCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *mapCache) Close() error { return nil }

// countingRepo counts pass-through calls so tests can observe cache hits.
type countingRepo struct {
	*adapter.MemoryChatRepository
	listCalls int
}

func (r *countingRepo) ListParticipantIDs(ctx context.Context, conversationID string) ([]string, error) {
	r.listCalls++
	return r.MemoryChatRepository.ListParticipantIDs(ctx, conversationID)
}

func TestListParticipantsUsesCache(t *testing.T) {
	repo := &countingRepo{MemoryChatRepository: adapter.NewMemoryChatRepository()}
	ctx := context.Background()
	conv, _, err := NewOpenConversationUseCase(repo).Execute(ctx, OpenConversationInput{RequesterID: "alice", OtherID: "bob"})
	require.NoError(t, err)

	uc := NewListParticipantsUseCase(repo, newMapCache())

	ids, err := uc.Execute(ctx, ListParticipantsInput{ConversationID: conv.ID})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alice", "bob"}, ids)
	assert.Equal(t, 1, repo.listCalls)

	ids, err = uc.Execute(ctx, ListParticipantsInput{ConversationID: conv.ID})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alice", "bob"}, ids)
	assert.Equal(t, 1, repo.listCalls, "second lookup should come from the cache")
}

func TestListParticipantsWithoutCache(t *testing.T) {
	repo := adapter.NewMemoryChatRepository()
	ctx := context.Background()
	conv, _, err := NewOpenConversationUseCase(repo).Execute(ctx, OpenConversationInput{RequesterID: "alice", OtherID: "bob"})
	require.NoError(t, err)

	uc := NewListParticipantsUseCase(repo, nil)
	ids, err := uc.Execute(ctx, ListParticipantsInput{ConversationID: conv.ID})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alice", "bob"}, ids)

	_, err = uc.Execute(ctx, ListParticipantsInput{ConversationID: "missing"})
	assert.ErrorIs(t, err, chat.ErrConversationNotFound)
}

func TestJoinConversationMembership(t *testing.T) {
	repo := adapter.NewMemoryChatRepository()
	ctx := context.Background()
	conv, _, err := NewOpenConversationUseCase(repo).Execute(ctx, OpenConversationInput{RequesterID: "alice", OtherID: "bob"})
	require.NoError(t, err)

	join := NewJoinConversationUseCase(NewListParticipantsUseCase(repo, nil))

	assert.NoError(t, join.Execute(ctx, JoinConversationInput{ConversationID: conv.ID, UserID: "bob"}))
	assert.ErrorIs(t, join.Execute(ctx, JoinConversationInput{ConversationID: conv.ID, UserID: "mallory"}), chat.ErrNotParticipant)
	assert.ErrorIs(t, join.Execute(ctx, JoinConversationInput{ConversationID: "missing", UserID: "bob"}), chat.ErrConversationNotFound)
	assert.ErrorIs(t, join.Execute(ctx, JoinConversationInput{ConversationID: conv.ID, UserID: ""}), chat.ErrMissingUser)
}
