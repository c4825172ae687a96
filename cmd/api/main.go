package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	v1 "github.com/thy-zed/zedsphere-chat-app/cmd/api/router/v1"
	cacheAdapter "github.com/thy-zed/zedsphere-chat-app/internal/infrastructure/cache/adapter"
	cacheport "github.com/thy-zed/zedsphere-chat-app/internal/infrastructure/cache/port"
	"github.com/thy-zed/zedsphere-chat-app/internal/infrastructure/database"
	identityAdapter "github.com/thy-zed/zedsphere-chat-app/internal/infrastructure/identity/adapter"
	queueAdapter "github.com/thy-zed/zedsphere-chat-app/internal/infrastructure/queue/adapter"
	queueport "github.com/thy-zed/zedsphere-chat-app/internal/infrastructure/queue/port"
	"github.com/thy-zed/zedsphere-chat-app/internal/infrastructure/realtime"
	"github.com/thy-zed/zedsphere-chat-app/internal/pkg/chat/application/task"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to the database on startup
	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	pool, err := database.NewPoolFromEnv(connectCtx)
	cancel()
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		log.Fatalf("failed to apply schema: %v", err)
	}

	// Redis cache is optional: without it, membership lookups hit Postgres.
	var cache cacheport.Cache
	if redisCache, err := cacheAdapter.NewRedisAdapter(); err != nil {
		log.Printf("Warning: redis cache unavailable: %v", err)
	} else {
		cache = redisCache
		defer redisCache.Close()
	}

	// Queue client + in-process worker drive post-persistence fan-out.
	var queueClient queueport.Client
	hub := realtime.NewHub()
	defer hub.Close()

	if client, err := queueAdapter.NewAsynqClientFromEnv(); err != nil {
		log.Printf("Warning: queue unavailable, fan-out runs inline: %v", err)
	} else {
		queueClient = client
		defer client.Close()

		srv, err := queueAdapter.NewAsynqServer()
		if err != nil {
			log.Fatalf("failed to create queue server: %v", err)
		}
		task.RegisterFanoutMessageTask(srv, hub)
		go func() {
			if err := srv.Run(ctx); err != nil {
				log.Printf("queue server stopped: %v", err)
			}
		}()
	}

	resolver := identityAdapter.NewHeaderResolver(os.Getenv("AUTH_USER_HEADER"))

	r := gin.Default()
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})
	v1.RegisterRoutes(r, pool, cache, queueClient, hub, resolver)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{Addr: ":" + port, Handler: r}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server: %v", err)
		}
	}()
	log.Printf("listening on :%s", port)

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown: %v", err)
	}
}
