package usecase

import (
	"context"
	"fmt"

	chat "github.com/thy-zed/zedsphere-chat-app/internal/pkg/chat/application/domain"
	repository "github.com/thy-zed/zedsphere-chat-app/internal/pkg/chat/persistence/repository/port"
)

// OpenConversationInput carries the requester and the peer to open a dyad with.
type OpenConversationInput struct {
	RequesterID string
	OtherID     string
}

// OpenConversationUseCase resolves the one conversation for an unordered user
// pair, creating it when absent. The creation race is arbitrated by the
// repository's unique pair constraint; racing callers converge on one row.
type OpenConversationUseCase struct {
	Repo repository.ChatRepository
}

func NewOpenConversationUseCase(repo repository.ChatRepository) *OpenConversationUseCase {
	return &OpenConversationUseCase{Repo: repo}
}

// Execute returns the conversation for the pair and whether this call created it.
func (uc *OpenConversationUseCase) Execute(ctx context.Context, in OpenConversationInput) (*chat.Conversation, bool, error) {
	low, high, err := chat.CanonicalPair(in.RequesterID, in.OtherID)
	if err != nil {
		return nil, false, err
	}

	conv, created, err := uc.Repo.GetOrCreateConversation(ctx, low, high)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return &conv, created, nil
}
