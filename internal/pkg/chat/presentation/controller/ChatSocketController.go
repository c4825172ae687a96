package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/thy-zed/zedsphere-chat-app/internal/infrastructure/identity"
	"github.com/thy-zed/zedsphere-chat-app/internal/infrastructure/realtime"
	chat "github.com/thy-zed/zedsphere-chat-app/internal/pkg/chat/application/domain"
	"github.com/thy-zed/zedsphere-chat-app/internal/pkg/chat/application/usecase"
)

// ChatSocketController handles the websocket endpoint. The socket path is
// relay-only: joins, typing signals and peer relays never create or mutate
// persisted state. Messages are sent over HTTP and pushed to rooms after
// persistence.
type ChatSocketController struct {
	hub             *realtime.Hub
	joinRoomUC      *usecase.JoinConversationUseCase
	inflightTimeout time.Duration
}

func NewChatSocketController(hub *realtime.Hub, joinUC *usecase.JoinConversationUseCase) *ChatSocketController {
	return &ChatSocketController{
		hub:             hub,
		joinRoomUC:      joinUC,
		inflightTimeout: 5 * time.Second,
	}
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin policy is enforced by the fronting proxy.
		return true
	},
}

type inboundFrame struct {
	Type           string          `json:"type"`
	ConversationID string          `json:"conversation_id,omitempty"`
	Message        json.RawMessage `json:"message,omitempty"`
}

type ackFrame struct {
	Type           string `json:"type"`
	ConversationID string `json:"conversation_id,omitempty"`
}

type errorFrame struct {
	Type  string `json:"type"`
	Code  string `json:"code"`
	Error string `json:"error"`
}

type typingFrame struct {
	Type           string `json:"type"`
	ConversationID string `json:"conversation_id"`
	FromUserID     string `json:"from_user_id"`
}

type relayFrame struct {
	Type           string          `json:"type"`
	ConversationID string          `json:"conversation_id"`
	Message        json.RawMessage `json:"message"`
}

const defaultReadTimeout = 60 * time.Second

// Handle upgrades the connection and processes frames until the client
// disconnects. Disconnect implies leave-all; in-flight sends already
// accepted over HTTP still complete and are fan-out-attempted.
func (ctl *ChatSocketController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := identity.UserID(c)
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		ws, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade already wrote the response.
			return
		}

		conn := realtime.NewConnection(userID, ws)
		ctl.hub.Attach(conn)
		defer func() {
			ctl.hub.Detach(conn)
			conn.Close(websocket.CloseNormalClosure, "session closed")
		}()

		ws.SetReadLimit(1 << 20)
		_ = ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		})

		ctl.reply(conn, ackFrame{Type: "connected"})

		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) ||
					errors.Is(err, websocket.ErrCloseSent) {
					return
				}
				return
			}

			var frame inboundFrame
			if err := json.Unmarshal(data, &frame); err != nil {
				ctl.replyError(conn, "bad_request", "invalid payload")
				continue
			}

			switch frame.Type {
			case "join":
				ctl.handleJoin(c, conn, frame)
			case "leave":
				ctl.handleLeave(conn, frame)
			case "typing":
				ctl.relayTyping(conn, frame.ConversationID, true)
			case "stop_typing":
				ctl.relayTyping(conn, frame.ConversationID, false)
			case "message":
				ctl.relayMessage(conn, frame)
			default:
				ctl.replyError(conn, "unsupported_type", "unknown frame type")
			}
		}
	}
}

func (ctl *ChatSocketController) handleJoin(c *gin.Context, conn *realtime.Connection, frame inboundFrame) {
	if frame.ConversationID == "" {
		ctl.replyError(conn, "bad_request", "conversation_id is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.inflightTimeout)
	defer cancel()

	err := ctl.joinRoomUC.Execute(ctx, usecase.JoinConversationInput{
		ConversationID: frame.ConversationID,
		UserID:         conn.UserID,
	})
	if err != nil {
		ctl.handleUseCaseError(conn, err)
		return
	}

	ctl.hub.Join(frame.ConversationID, conn)
	ctl.reply(conn, ackFrame{Type: "joined", ConversationID: frame.ConversationID})
}

func (ctl *ChatSocketController) handleLeave(conn *realtime.Connection, frame inboundFrame) {
	if frame.ConversationID == "" {
		ctl.replyError(conn, "bad_request", "conversation_id is required")
		return
	}
	ctl.hub.Leave(frame.ConversationID, conn)
	ctl.reply(conn, ackFrame{Type: "left", ConversationID: frame.ConversationID})
}

// relayTyping forwards a typing signal to the rest of the room. Ephemeral,
// at most once: a dropped signal is never an error.
func (ctl *ChatSocketController) relayTyping(conn *realtime.Connection, conversationID string, isTyping bool) {
	if conversationID == "" || !ctl.hub.InRoom(conversationID, conn) {
		return
	}
	kind := "typing"
	if !isTyping {
		kind = "stop_typing"
	}
	payload, err := json.Marshal(typingFrame{
		Type:           kind,
		ConversationID: conversationID,
		FromUserID:     conn.UserID,
	})
	if err != nil {
		return
	}
	ctl.hub.BroadcastExcept(conversationID, payload, conn.ID)
}

// relayMessage forwards an already-delivered message payload to the room's
// other connections, storage untouched.
func (ctl *ChatSocketController) relayMessage(conn *realtime.Connection, frame inboundFrame) {
	if frame.ConversationID == "" || len(frame.Message) == 0 {
		ctl.replyError(conn, "bad_request", "conversation_id and message are required")
		return
	}
	if !ctl.hub.InRoom(frame.ConversationID, conn) {
		ctl.replyError(conn, "forbidden", "join the conversation before relaying")
		return
	}
	payload, err := json.Marshal(relayFrame{
		Type:           "message:received",
		ConversationID: frame.ConversationID,
		Message:        frame.Message,
	})
	if err != nil {
		return
	}
	ctl.hub.BroadcastExcept(frame.ConversationID, payload, conn.ID)
}

func (ctl *ChatSocketController) handleUseCaseError(conn *realtime.Connection, err error) {
	switch {
	case errors.Is(err, usecase.ErrPersistence):
		ctl.replyError(conn, "internal_error", "unexpected persistence error")
	case errors.Is(err, chat.ErrNotParticipant):
		ctl.replyError(conn, "forbidden", "user is not a participant in this conversation")
	case errors.Is(err, chat.ErrConversationNotFound):
		ctl.replyError(conn, "not_found", "conversation not found")
	default:
		ctl.replyError(conn, "bad_request", err.Error())
	}
}

func (ctl *ChatSocketController) reply(conn *realtime.Connection, frame any) {
	if payload, err := json.Marshal(frame); err == nil {
		_ = conn.Send(payload)
	}
}

func (ctl *ChatSocketController) replyError(conn *realtime.Connection, code, message string) {
	ctl.reply(conn, errorFrame{Type: "error", Code: code, Error: message})
}
