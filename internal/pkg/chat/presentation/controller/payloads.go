package controller

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	chat "github.com/thy-zed/zedsphere-chat-app/internal/pkg/chat/application/domain"
	"github.com/thy-zed/zedsphere-chat-app/internal/pkg/chat/application/usecase"
)

// conversationPayload is the HTTP shape of a conversation.
type conversationPayload struct {
	ID              string         `json:"id"`
	Participants    []string       `json:"participants"`
	LatestMessageID *string        `json:"latest_message_id,omitempty"`
	UnreadCounts    map[string]int `json:"unread_counts"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

func toConversationPayload(c chat.Conversation) conversationPayload {
	return conversationPayload{
		ID:              c.ID,
		Participants:    c.ParticipantIDs(),
		LatestMessageID: c.LatestMessageID,
		UnreadCounts:    c.UnreadCounts(),
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

// messagePayload is the HTTP shape of a message.
type messagePayload struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	SenderID       string    `json:"sender_id"`
	SenderName     string    `json:"sender_name,omitempty"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

func toMessagePayload(m chat.Message) messagePayload {
	return messagePayload{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		SenderName:     m.SenderName,
		Content:        m.Content,
		CreatedAt:      m.CreatedAt,
	}
}

// httpStatus maps use case / domain errors to the response status.
func httpStatus(err error) int {
	switch {
	case errors.Is(err, usecase.ErrPersistence):
		return http.StatusInternalServerError
	case errors.Is(err, chat.ErrNotParticipant):
		return http.StatusForbidden
	case errors.Is(err, chat.ErrConversationNotFound):
		return http.StatusNotFound
	default:
		return http.StatusBadRequest
	}
}

func replyError(c *gin.Context, err error) {
	c.JSON(httpStatus(err), gin.H{"error": err.Error()})
}
