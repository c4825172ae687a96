package task

import (
	"context"
	"encoding/json"
	"log"
	"time"

	qport "github.com/thy-zed/zedsphere-chat-app/internal/infrastructure/queue/port"
	"github.com/thy-zed/zedsphere-chat-app/internal/infrastructure/realtime"
	chat "github.com/thy-zed/zedsphere-chat-app/internal/pkg/chat/application/domain"
)

// FanoutMessageTaskType is the queue task name for pushing an already
// persisted message to the conversation's live connections.
const FanoutMessageTaskType = "chat:fanout"

// FanoutMessageTaskPayload transports the persisted message via the queue.
// Kept decoupled from domain types to avoid tight coupling with JSON tags.
type FanoutMessageTaskPayload struct {
	MessageID      string    `json:"messageId"`
	ConversationID string    `json:"conversationId"`
	SenderID       string    `json:"senderId"`
	SenderName     string    `json:"senderName,omitempty"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"createdAt"`
}

// NewFanoutMessageTask builds the queue task for a persisted message.
func NewFanoutMessageTask(msg chat.Message) (qport.Task, error) {
	b, err := json.Marshal(FanoutMessageTaskPayload{
		MessageID:      msg.ID,
		ConversationID: msg.ConversationID,
		SenderID:       msg.SenderID,
		SenderName:     msg.SenderName,
		Content:        msg.Content,
		CreatedAt:      msg.CreatedAt,
	})
	if err != nil {
		return qport.Task{}, err
	}
	return qport.Task{Type: FanoutMessageTaskType, Payload: b}, nil
}

// messageFrame is the server->client push envelope.
type messageFrame struct {
	Type           string         `json:"type"`
	ConversationID string         `json:"conversation_id"`
	Message        messagePayload `json:"message"`
}

type messagePayload struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	SenderID       string    `json:"sender_id"`
	SenderName     string    `json:"sender_name,omitempty"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

// EncodeMessageFrame renders the message-received push frame broadcast to a
// conversation room.
func EncodeMessageFrame(msg chat.Message) ([]byte, error) {
	return json.Marshal(messageFrame{
		Type:           "message:received",
		ConversationID: msg.ConversationID,
		Message: messagePayload{
			ID:             msg.ID,
			ConversationID: msg.ConversationID,
			SenderID:       msg.SenderID,
			SenderName:     msg.SenderName,
			Content:        msg.Content,
			CreatedAt:      msg.CreatedAt,
		},
	})
}

// RegisterFanoutMessageTask binds the fan-out handler to the queue server.
// The message is durable by the time this runs; delivery is best-effort, so
// an empty room or dropped send is a success, never a retry.
func RegisterFanoutMessageTask(srv qport.Server, hub *realtime.Hub) {
	srv.Register(FanoutMessageTaskType, func(ctx context.Context, t qport.Task) error {
		var p FanoutMessageTaskPayload
		if err := json.Unmarshal(t.Payload, &p); err != nil {
			// Malformed payload: retrying cannot help, drop it.
			log.Printf("fanout: dropping malformed payload: %v", err)
			return nil
		}

		frame, err := EncodeMessageFrame(chat.Message{
			ID:             p.MessageID,
			ConversationID: p.ConversationID,
			SenderID:       p.SenderID,
			SenderName:     p.SenderName,
			Content:        p.Content,
			CreatedAt:      p.CreatedAt,
		})
		if err != nil {
			return err
		}

		hub.Broadcast(p.ConversationID, frame)
		return nil
	})
}
