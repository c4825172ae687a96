package usecase

import (
	"context"
	"errors"
	"fmt"

	chat "github.com/thy-zed/zedsphere-chat-app/internal/pkg/chat/application/domain"
	repository "github.com/thy-zed/zedsphere-chat-app/internal/pkg/chat/persistence/repository/port"
	"github.com/thy-zed/zedsphere-chat-app/internal/pkg/user"
)

// GetMessageInput carries parameters to fetch messages of a conversation.
// Limit <= 0 returns everything; Limit/Offset are an additive extension.
type GetMessageInput struct {
	ConversationID string
	Limit          int
	Offset         int
}

// GetMessageUseCase fetches messages for a conversation, oldest first.
type GetMessageUseCase struct {
	Repo  repository.ChatRepository
	Users user.Directory // optional; decorates sender display names
}

func NewGetMessageUseCase(repo repository.ChatRepository, users user.Directory) *GetMessageUseCase {
	return &GetMessageUseCase{Repo: repo, Users: users}
}

func (uc *GetMessageUseCase) Execute(ctx context.Context, in GetMessageInput) ([]chat.Message, error) {
	if in.ConversationID == "" {
		return nil, chat.ErrConversationNotFound
	}
	msgs, err := uc.Repo.GetMessagesByConversation(ctx, in.ConversationID, in.Limit, in.Offset)
	if errors.Is(err, chat.ErrConversationNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if uc.Users != nil && len(msgs) > 0 {
		ids := make([]string, 0, 2)
		seen := map[string]bool{}
		for _, m := range msgs {
			if !seen[m.SenderID] {
				seen[m.SenderID] = true
				ids = append(ids, m.SenderID)
			}
		}
		if names, err := uc.Users.GetUsernames(ctx, ids); err == nil {
			for i := range msgs {
				msgs[i].SenderName = names[msgs[i].SenderID]
			}
		}
	}
	return msgs, nil
}
