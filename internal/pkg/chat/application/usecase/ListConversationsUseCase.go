package usecase

import (
	"context"
	"fmt"

	chat "github.com/thy-zed/zedsphere-chat-app/internal/pkg/chat/application/domain"
	repository "github.com/thy-zed/zedsphere-chat-app/internal/pkg/chat/persistence/repository/port"
)

// ListConversationsInput wraps the user whose conversations are listed.
type ListConversationsInput struct {
	UserID string
}

// ListConversationsUseCase returns all conversations for a user, most
// recently active first.
type ListConversationsUseCase struct {
	Repo repository.ChatRepository
}

func NewListConversationsUseCase(repo repository.ChatRepository) *ListConversationsUseCase {
	return &ListConversationsUseCase{Repo: repo}
}

func (uc *ListConversationsUseCase) Execute(ctx context.Context, in ListConversationsInput) ([]chat.Conversation, error) {
	if in.UserID == "" {
		return nil, chat.ErrMissingUser
	}
	convs, err := uc.Repo.ListConversationsByUser(ctx, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return convs, nil
}
