package controller

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thy-zed/zedsphere-chat-app/internal/infrastructure/identity"
	identityAdapter "github.com/thy-zed/zedsphere-chat-app/internal/infrastructure/identity/adapter"
	"github.com/thy-zed/zedsphere-chat-app/internal/infrastructure/realtime"
	"github.com/thy-zed/zedsphere-chat-app/internal/pkg/chat/application/usecase"
	"github.com/thy-zed/zedsphere-chat-app/internal/pkg/chat/persistence/repository/adapter"
)

type testEnv struct {
	srv  *httptest.Server
	repo *adapter.MemoryChatRepository
	hub  *realtime.Hub
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := adapter.NewMemoryChatRepository()
	hub := realtime.NewHub()
	t.Cleanup(hub.Close)

	members := usecase.NewListParticipantsUseCase(repo, nil)
	joinUC := usecase.NewJoinConversationUseCase(members)

	r := gin.New()
	g := r.Group("/api/v1")
	chatGroup := g.Group("/chat", identity.Middleware(identityAdapter.NewHeaderResolver("")))
	chatGroup.POST("", NewOpenConversationController(repo).Handle())
	chatGroup.GET("", NewListConversationsController(repo).Handle())
	chatGroup.PUT("/:chatId/reset-unread", NewResetUnreadController(repo).Handle())
	chatGroup.POST("/:chatId/messages", NewSendMessageController(repo, nil, nil, hub).Handle())
	chatGroup.GET("/:chatId/messages", NewGetMessageController(repo, nil).Handle())
	chatGroup.GET("/ws", NewChatSocketController(hub, joinUC).Handle())

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &testEnv{srv: srv, repo: repo, hub: hub}
}

func (e *testEnv) do(t *testing.T, method, path, userID string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, e.srv.URL+path, &buf)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

func (e *testEnv) openConversation(t *testing.T, requester, other string) string {
	t.Helper()
	resp, body := e.do(t, http.MethodPost, "/api/v1/chat", requester, gin.H{"user_id": other})
	require.Contains(t, []int{http.StatusOK, http.StatusCreated}, resp.StatusCode)
	id, _ := body["id"].(string)
	require.NotEmpty(t, id)
	return id
}

func (e *testEnv) dialWS(t *testing.T, userID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(e.srv.URL, "http") + "/api/v1/chat/ws"
	header := http.Header{"X-User-ID": []string{userID}}
	ws, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })

	// handshake ack
	frame := readFrame(t, ws)
	require.Equal(t, "connected", frame["type"])
	return ws
}

func readFrame(t *testing.T, ws *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := ws.ReadMessage()
	require.NoError(t, err)
	var frame map[string]any
	require.NoError(t, json.Unmarshal(data, &frame))
	return frame
}

func expectNoFrame(t *testing.T, ws *websocket.Conn) {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(150*time.Millisecond)))
	_, _, err := ws.ReadMessage()
	assert.Error(t, err, "expected no frame")
}

func joinRoom(t *testing.T, ws *websocket.Conn, conversationID string) {
	t.Helper()
	require.NoError(t, ws.WriteJSON(gin.H{"type": "join", "conversation_id": conversationID}))
	frame := readFrame(t, ws)
	require.Equal(t, "joined", frame["type"])
}

func TestRequestsWithoutIdentityAreRejected(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.do(t, http.MethodGet, "/api/v1/chat", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = env.do(t, http.MethodPost, "/api/v1/chat", "", gin.H{"user_id": "bob"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestOpenConversationEndpoint(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodPost, "/api/v1/chat", "alice", gin.H{"user_id": "bob"})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	id := body["id"].(string)

	// Opening from the other side finds the same conversation.
	resp, body = env.do(t, http.MethodPost, "/api/v1/chat", "bob", gin.H{"user_id": "alice"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, id, body["id"])

	resp, _ = env.do(t, http.MethodPost, "/api/v1/chat", "alice", gin.H{"user_id": "alice"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSendListAndAcknowledgeMessages(t *testing.T) {
	env := newTestEnv(t)
	convID := env.openConversation(t, "alice", "bob")

	resp, _ := env.do(t, http.MethodPost, "/api/v1/chat/"+convID+"/messages", "mallory", gin.H{"content": "hi"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	for _, content := range []string{"hi", "how are you"} {
		resp, _ = env.do(t, http.MethodPost, "/api/v1/chat/"+convID+"/messages", "alice", gin.H{"content": content})
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp, body := env.do(t, http.MethodGet, "/api/v1/chat/"+convID+"/messages", "bob", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	msgs := body["messages"].([]any)
	require.Len(t, msgs, 2)
	assert.Equal(t, "hi", msgs[0].(map[string]any)["content"])
	assert.Equal(t, "how are you", msgs[1].(map[string]any)["content"])

	resp, body = env.do(t, http.MethodGet, "/api/v1/chat", "bob", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	convs := body["conversations"].([]any)
	require.Len(t, convs, 1)
	unread := convs[0].(map[string]any)["unread_counts"].(map[string]any)
	assert.Equal(t, float64(2), unread["bob"])
	assert.Equal(t, float64(0), unread["alice"])

	resp, _ = env.do(t, http.MethodPut, "/api/v1/chat/"+convID+"/reset-unread", "bob", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	_, body = env.do(t, http.MethodGet, "/api/v1/chat", "bob", nil)
	unread = body["conversations"].([]any)[0].(map[string]any)["unread_counts"].(map[string]any)
	assert.Equal(t, float64(0), unread["bob"])

	resp, _ = env.do(t, http.MethodPut, "/api/v1/chat/missing/reset-unread", "bob", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSendMessageValidationErrors(t *testing.T) {
	env := newTestEnv(t)
	convID := env.openConversation(t, "alice", "bob")

	resp, _ := env.do(t, http.MethodPost, "/api/v1/chat/"+convID+"/messages", "alice", gin.H{"content": ""})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = env.do(t, http.MethodPost, "/api/v1/chat/missing/messages", "alice", gin.H{"content": "hi"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMessagePushedToJoinedConnections(t *testing.T) {
	env := newTestEnv(t)
	convID := env.openConversation(t, "alice", "bob")

	bobWS := env.dialWS(t, "bob")
	joinRoom(t, bobWS, convID)

	strangerWS := env.dialWS(t, "mallory")

	resp, body := env.do(t, http.MethodPost, "/api/v1/chat/"+convID+"/messages", "alice", gin.H{"content": "hello"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	msgID := body["id"].(string)

	frame := readFrame(t, bobWS)
	assert.Equal(t, "message:received", frame["type"])
	assert.Equal(t, convID, frame["conversation_id"])
	pushed := frame["message"].(map[string]any)
	assert.Equal(t, msgID, pushed["id"])
	assert.Equal(t, "hello", pushed["content"])
	assert.Equal(t, "alice", pushed["sender_id"])

	// Exactly one push per append, and none for connections never joined.
	expectNoFrame(t, bobWS)
	expectNoFrame(t, strangerWS)
}

func TestJoinRequiresMembership(t *testing.T) {
	env := newTestEnv(t)
	convID := env.openConversation(t, "alice", "bob")

	ws := env.dialWS(t, "mallory")
	require.NoError(t, ws.WriteJSON(gin.H{"type": "join", "conversation_id": convID}))
	frame := readFrame(t, ws)
	assert.Equal(t, "error", frame["type"])
	assert.Equal(t, "forbidden", frame["code"])
}

func TestTypingRelay(t *testing.T) {
	env := newTestEnv(t)
	convID := env.openConversation(t, "alice", "bob")

	aliceWS := env.dialWS(t, "alice")
	bobWS := env.dialWS(t, "bob")
	joinRoom(t, aliceWS, convID)
	joinRoom(t, bobWS, convID)

	require.NoError(t, aliceWS.WriteJSON(gin.H{"type": "typing", "conversation_id": convID}))
	frame := readFrame(t, bobWS)
	assert.Equal(t, "typing", frame["type"])
	assert.Equal(t, "alice", frame["from_user_id"])

	require.NoError(t, aliceWS.WriteJSON(gin.H{"type": "stop_typing", "conversation_id": convID}))
	frame = readFrame(t, bobWS)
	assert.Equal(t, "stop_typing", frame["type"])

	// The origin socket gets no echo of its own typing signal.
	expectNoFrame(t, aliceWS)
}

func TestLeaveStopsDelivery(t *testing.T) {
	env := newTestEnv(t)
	convID := env.openConversation(t, "alice", "bob")

	bobWS := env.dialWS(t, "bob")
	joinRoom(t, bobWS, convID)

	require.NoError(t, bobWS.WriteJSON(gin.H{"type": "leave", "conversation_id": convID}))
	frame := readFrame(t, bobWS)
	require.Equal(t, "left", frame["type"])

	resp, _ := env.do(t, http.MethodPost, "/api/v1/chat/"+convID+"/messages", "alice", gin.H{"content": "gone"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	expectNoFrame(t, bobWS)
}

func TestMessageRelayRequiresRoom(t *testing.T) {
	env := newTestEnv(t)
	convID := env.openConversation(t, "alice", "bob")

	aliceWS := env.dialWS(t, "alice")
	bobWS := env.dialWS(t, "bob")
	joinRoom(t, aliceWS, convID)
	joinRoom(t, bobWS, convID)

	payload := fmt.Sprintf(`{"type":"message","conversation_id":%q,"message":{"content":"relayed"}}`, convID)
	require.NoError(t, aliceWS.WriteMessage(websocket.TextMessage, []byte(payload)))

	frame := readFrame(t, bobWS)
	assert.Equal(t, "message:received", frame["type"])
	assert.Equal(t, "relayed", frame["message"].(map[string]any)["content"])

	// A connection outside the room cannot relay into it.
	strangerWS := env.dialWS(t, "mallory")
	require.NoError(t, strangerWS.WriteMessage(websocket.TextMessage, []byte(payload)))
	frame = readFrame(t, strangerWS)
	assert.Equal(t, "error", frame["type"])
}
