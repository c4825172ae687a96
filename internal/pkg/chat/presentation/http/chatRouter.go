package http

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	cacheport "github.com/thy-zed/zedsphere-chat-app/internal/infrastructure/cache/port"
	"github.com/thy-zed/zedsphere-chat-app/internal/infrastructure/identity"
	identityport "github.com/thy-zed/zedsphere-chat-app/internal/infrastructure/identity/port"
	queueport "github.com/thy-zed/zedsphere-chat-app/internal/infrastructure/queue/port"
	"github.com/thy-zed/zedsphere-chat-app/internal/infrastructure/realtime"
	"github.com/thy-zed/zedsphere-chat-app/internal/pkg/chat/application/usecase"
	repoAdapter "github.com/thy-zed/zedsphere-chat-app/internal/pkg/chat/persistence/repository/adapter"
	"github.com/thy-zed/zedsphere-chat-app/internal/pkg/chat/presentation/controller"
	"github.com/thy-zed/zedsphere-chat-app/internal/pkg/user"
)

// RegisterRoutes registers chat-related HTTP endpoints under the given router
// group. It constructs per-endpoint controllers and binds them directly to
// routes; every route runs behind the identity middleware.
func RegisterRoutes(g *gin.RouterGroup, pool *pgxpool.Pool, cache cacheport.Cache, q queueport.Client, hub *realtime.Hub, resolver identityport.Resolver) {
	repo := repoAdapter.NewPgChatRepository(pool)
	users := user.NewPgDirectory(pool)

	members := usecase.NewListParticipantsUseCase(repo, cache)
	joinUC := usecase.NewJoinConversationUseCase(members)

	openCtl := controller.NewOpenConversationController(repo)
	listCtl := controller.NewListConversationsController(repo)
	resetCtl := controller.NewResetUnreadController(repo)
	sendMsgCtl := controller.NewSendMessageController(repo, users, q, hub)
	getMsgCtl := controller.NewGetMessageController(repo, users)
	socketCtl := controller.NewChatSocketController(hub, joinUC)

	chat := g.Group("/chat", identity.Middleware(resolver))

	// POST /api/v1/chat -> get-or-create the dyad conversation
	chat.POST("", openCtl.Handle())

	// GET /api/v1/chat -> list the caller's conversations
	chat.GET("", listCtl.Handle())

	// PUT /api/v1/chat/:chatId/reset-unread -> acknowledge as read
	chat.PUT("/:chatId/reset-unread", resetCtl.Handle())

	// POST /api/v1/chat/:chatId/messages -> append then fan out
	chat.POST("/:chatId/messages", sendMsgCtl.Handle())

	// GET /api/v1/chat/:chatId/messages -> fetch messages oldest first
	chat.GET("/:chatId/messages", getMsgCtl.Handle())

	// GET /api/v1/chat/ws -> websocket endpoint for realtime events
	chat.GET("/ws", socketCtl.Handle())
}
