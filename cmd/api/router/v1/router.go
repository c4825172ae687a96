package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	cacheport "github.com/thy-zed/zedsphere-chat-app/internal/infrastructure/cache/port"
	identityport "github.com/thy-zed/zedsphere-chat-app/internal/infrastructure/identity/port"
	queueport "github.com/thy-zed/zedsphere-chat-app/internal/infrastructure/queue/port"
	"github.com/thy-zed/zedsphere-chat-app/internal/infrastructure/realtime"
	httpHandler "github.com/thy-zed/zedsphere-chat-app/internal/pkg/chat/presentation/http"
)

// RegisterRoutes mounts all version 1 API routes under /api/v1
func RegisterRoutes(r *gin.Engine, pool *pgxpool.Pool, cache cacheport.Cache, q queueport.Client, hub *realtime.Hub, resolver identityport.Resolver) {
	v1 := r.Group("/api/v1")
	httpHandler.RegisterRoutes(v1, pool, cache, q, hub, resolver)
}
