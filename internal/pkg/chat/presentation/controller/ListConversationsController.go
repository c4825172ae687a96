package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/thy-zed/zedsphere-chat-app/internal/infrastructure/identity"
	"github.com/thy-zed/zedsphere-chat-app/internal/pkg/chat/application/usecase"
	repository "github.com/thy-zed/zedsphere-chat-app/internal/pkg/chat/persistence/repository/port"
)

// ListConversationsController handles listing the caller's conversations
// (one controller per endpoint).
type ListConversationsController struct {
	UC *usecase.ListConversationsUseCase
}

func NewListConversationsController(repo repository.ChatRepository) *ListConversationsController {
	return &ListConversationsController{UC: usecase.NewListConversationsUseCase(repo)}
}

func (h *ListConversationsController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		convs, err := h.UC.Execute(ctx, usecase.ListConversationsInput{UserID: identity.UserID(c)})
		if err != nil {
			replyError(c, err)
			return
		}

		out := make([]conversationPayload, 0, len(convs))
		for _, conv := range convs {
			out = append(out, toConversationPayload(conv))
		}
		c.JSON(http.StatusOK, gin.H{"conversations": out, "count": len(out)})
	}
}
