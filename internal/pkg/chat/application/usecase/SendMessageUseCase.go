package usecase

import (
	"context"
	"errors"
	"fmt"

	chat "github.com/thy-zed/zedsphere-chat-app/internal/pkg/chat/application/domain"
	repository "github.com/thy-zed/zedsphere-chat-app/internal/pkg/chat/persistence/repository/port"
	"github.com/thy-zed/zedsphere-chat-app/internal/pkg/user"
)

// SendMessageInput carries the data needed to append a message.
type SendMessageInput struct {
	ConversationID string
	SenderID       string
	Content        string
}

// SendMessageUseCase persists a message. The repository applies the message
// insert, latest-pointer update and unread increments as one transaction;
// fan-out is the caller's concern and happens only after Execute returns nil.
type SendMessageUseCase struct {
	Repo  repository.ChatRepository
	Users user.Directory // optional; decorates the sender display name
}

func NewSendMessageUseCase(repo repository.ChatRepository, users user.Directory) *SendMessageUseCase {
	return &SendMessageUseCase{Repo: repo, Users: users}
}

func (uc *SendMessageUseCase) Execute(ctx context.Context, in SendMessageInput) (*chat.Message, error) {
	msg, err := chat.NewMessage(in.ConversationID, in.SenderID, in.Content)
	if err != nil {
		return nil, err
	}

	stored, err := uc.Repo.AppendMessage(ctx, *msg)
	if errors.Is(err, chat.ErrConversationNotFound) || errors.Is(err, chat.ErrNotParticipant) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	// Display decoration only; a directory miss never fails the send.
	if uc.Users != nil {
		if names, err := uc.Users.GetUsernames(ctx, []string{stored.SenderID}); err == nil {
			stored.SenderName = names[stored.SenderID]
		}
	}
	return &stored, nil
}
