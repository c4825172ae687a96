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

// OpenConversationController handles the get-or-create conversation endpoint
// (one controller per endpoint).
type OpenConversationController struct {
	UC *usecase.OpenConversationUseCase
}

func NewOpenConversationController(repo repository.ChatRepository) *OpenConversationController {
	return &OpenConversationController{UC: usecase.NewOpenConversationUseCase(repo)}
}

// openConversationRequest is the DTO for the HTTP request body
type openConversationRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// Handle returns a gin handler that opens (or finds) the dyad conversation
// between the authenticated requester and the given peer.
func (h *OpenConversationController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req openConversationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		conv, created, err := h.UC.Execute(ctx, usecase.OpenConversationInput{
			RequesterID: identity.UserID(c),
			OtherID:     req.UserID,
		})
		if err != nil {
			replyError(c, err)
			return
		}

		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}
		c.JSON(status, toConversationPayload(*conv))
	}
}
