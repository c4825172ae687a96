package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	cacheport "github.com/thy-zed/zedsphere-chat-app/internal/infrastructure/cache/port"
	chat "github.com/thy-zed/zedsphere-chat-app/internal/pkg/chat/application/domain"
	repository "github.com/thy-zed/zedsphere-chat-app/internal/pkg/chat/persistence/repository/port"
)

// participantCacheTTL bounds staleness of the cached member set. Membership
// of a dyad conversation never changes after creation, so the TTL only
// limits memory, not correctness.
const participantCacheTTL = 10 * time.Minute

// ListParticipantsInput wraps the conversation identifier to fetch its participants.
type ListParticipantsInput struct {
	ConversationID string
}

// ListParticipantsUseCase returns user IDs for all participants in the
// conversation, consulting the cache before the repository.
type ListParticipantsUseCase struct {
	Repo  repository.ChatRepository
	Cache cacheport.Cache // optional
}

func NewListParticipantsUseCase(repo repository.ChatRepository, cache cacheport.Cache) *ListParticipantsUseCase {
	return &ListParticipantsUseCase{Repo: repo, Cache: cache}
}

func (uc *ListParticipantsUseCase) Execute(ctx context.Context, in ListParticipantsInput) ([]string, error) {
	if in.ConversationID == "" {
		return nil, chat.ErrConversationNotFound
	}

	key := participantCacheKey(in.ConversationID)
	if uc.Cache != nil {
		if v, err := uc.Cache.Get(ctx, key); err == nil && v != "" {
			return strings.Split(v, ","), nil
		}
	}

	ids, err := uc.Repo.ListParticipantIDs(ctx, in.ConversationID)
	if errors.Is(err, chat.ErrConversationNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if uc.Cache != nil {
		// Cache write is best-effort; a miss next time just re-reads the DB.
		_ = uc.Cache.Set(ctx, key, strings.Join(ids, ","), participantCacheTTL)
	}
	return ids, nil
}

func participantCacheKey(conversationID string) string {
	return "chat:participants:" + conversationID
}
