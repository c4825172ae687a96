package usecase

import (
	"context"
	"errors"
	"fmt"

	chat "github.com/thy-zed/zedsphere-chat-app/internal/pkg/chat/application/domain"
	repository "github.com/thy-zed/zedsphere-chat-app/internal/pkg/chat/persistence/repository/port"
)

// ResetUnreadInput identifies whose counter to zero in which conversation.
type ResetUnreadInput struct {
	ConversationID string
	UserID         string
}

// ResetUnreadUseCase acknowledges a conversation as read: the user's unread
// counter drops to zero. Resetting an already-zero counter is a no-op success.
type ResetUnreadUseCase struct {
	Repo repository.ChatRepository
}

func NewResetUnreadUseCase(repo repository.ChatRepository) *ResetUnreadUseCase {
	return &ResetUnreadUseCase{Repo: repo}
}

func (uc *ResetUnreadUseCase) Execute(ctx context.Context, in ResetUnreadInput) error {
	if in.ConversationID == "" || in.UserID == "" {
		return chat.ErrMissingUser
	}
	err := uc.Repo.ResetUnread(ctx, in.ConversationID, in.UserID)
	if errors.Is(err, chat.ErrConversationNotFound) {
		return err
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}
