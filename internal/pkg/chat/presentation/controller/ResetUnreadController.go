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

// ResetUnreadController handles the read-acknowledgement endpoint (one
// controller per endpoint).
type ResetUnreadController struct {
	UC *usecase.ResetUnreadUseCase
}

func NewResetUnreadController(repo repository.ChatRepository) *ResetUnreadController {
	return &ResetUnreadController{UC: usecase.NewResetUnreadUseCase(repo)}
}

func (h *ResetUnreadController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		chatID := c.Param("chatId")
		if chatID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "chatId is required"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		err := h.UC.Execute(ctx, usecase.ResetUnreadInput{
			ConversationID: chatID,
			UserID:         identity.UserID(c),
		})
		if err != nil {
			replyError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}
