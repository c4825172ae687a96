package controller

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/thy-zed/zedsphere-chat-app/internal/infrastructure/identity"
	queueport "github.com/thy-zed/zedsphere-chat-app/internal/infrastructure/queue/port"
	"github.com/thy-zed/zedsphere-chat-app/internal/infrastructure/realtime"
	chat "github.com/thy-zed/zedsphere-chat-app/internal/pkg/chat/application/domain"
	"github.com/thy-zed/zedsphere-chat-app/internal/pkg/chat/application/task"
	"github.com/thy-zed/zedsphere-chat-app/internal/pkg/chat/application/usecase"
	repository "github.com/thy-zed/zedsphere-chat-app/internal/pkg/chat/persistence/repository/port"
	"github.com/thy-zed/zedsphere-chat-app/internal/pkg/user"
)

// SendMessageController handles the send-message endpoint (one controller
// per endpoint). Persistence happens synchronously; fan-out is handed to the
// queue afterwards and degrades to a direct broadcast when enqueueing fails.
type SendMessageController struct {
	UC  *usecase.SendMessageUseCase
	Q   queueport.Client // optional
	Hub *realtime.Hub
}

func NewSendMessageController(repo repository.ChatRepository, users user.Directory, q queueport.Client, hub *realtime.Hub) *SendMessageController {
	return &SendMessageController{
		UC:  usecase.NewSendMessageUseCase(repo, users),
		Q:   q,
		Hub: hub,
	}
}

// sendMessageRequest is the DTO for the HTTP request body
type sendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

func (h *SendMessageController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		chatID := c.Param("chatId")
		if chatID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "chatId is required"})
			return
		}

		var req sendMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		msg, err := h.UC.Execute(ctx, usecase.SendMessageInput{
			ConversationID: chatID,
			SenderID:       identity.UserID(c),
			Content:        req.Content,
		})
		if err != nil {
			replyError(c, err)
			return
		}

		// The message is durable; fan-out is best-effort from here on.
		h.fanout(ctx, *msg)

		c.JSON(http.StatusCreated, toMessagePayload(*msg))
	}
}

func (h *SendMessageController) fanout(ctx context.Context, msg chat.Message) {
	if h.Q != nil {
		if t, err := task.NewFanoutMessageTask(msg); err == nil {
			opts := queueport.EnqueueOption{Queue: "chat", MaxRetry: 3}
			if _, err := h.Q.Enqueue(ctx, t, opts); err == nil {
				return
			}
		}
		log.Printf("send message: enqueue fan-out failed, broadcasting directly")
	}
	if h.Hub == nil {
		return
	}
	if frame, err := task.EncodeMessageFrame(msg); err == nil {
		h.Hub.Broadcast(msg.ConversationID, frame)
	}
}
