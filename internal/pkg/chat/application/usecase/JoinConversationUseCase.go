package usecase

import (
	"context"

	chat "github.com/thy-zed/zedsphere-chat-app/internal/pkg/chat/application/domain"
)

// JoinConversationInput validates a request to attach a connection to a
// conversation room.
type JoinConversationInput struct {
	ConversationID string
	UserID         string
}

// JoinConversationUseCase ensures the user belongs to the conversation
// before the realtime layer admits the connection to the room.
type JoinConversationUseCase struct {
	Members *ListParticipantsUseCase
}

func NewJoinConversationUseCase(members *ListParticipantsUseCase) *JoinConversationUseCase {
	return &JoinConversationUseCase{Members: members}
}

func (uc *JoinConversationUseCase) Execute(ctx context.Context, in JoinConversationInput) error {
	if in.ConversationID == "" || in.UserID == "" {
		return chat.ErrMissingUser
	}

	ids, err := uc.Members.Execute(ctx, ListParticipantsInput{ConversationID: in.ConversationID})
	if err != nil {
		return err
	}
	for _, id := range ids {
		if id == in.UserID {
			return nil
		}
	}
	return chat.ErrNotParticipant
}
