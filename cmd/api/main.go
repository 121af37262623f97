package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"marketchat/config"
	"marketchat/internal/domain/chat"
	"marketchat/internal/events"
	"marketchat/internal/handler"
	"marketchat/internal/middleware"
	appredis "marketchat/internal/redis"
	"marketchat/internal/repository"
	"marketchat/internal/services"
	"marketchat/internal/websocket"
	"marketchat/pkg/database"
	"marketchat/pkg/logger"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.LoadConfig()

	l := logger.New(cfg.AppMode)
	defer l.Sync()
	logger.SetGlobalLogger(l)

	// Connect to Database
	database.Connect(cfg)
	defer database.Close()

	// Run GORM AutoMigrate for tables
	if err := database.DB.AutoMigrate(
		&chat.ChatRoom{},
		&chat.Message{},
	); err != nil {
		log.Fatalf("Failed to apply GORM migrations: %v", err)
	}

	// Run raw migrations (partial unique indexes on the room pair key)
	if err := database.ApplyRawMigrations("migrations"); err != nil {
		log.Fatalf("Failed to apply raw migrations: %v", err)
	}

	// Redis
	appredis.Initialize(appredis.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
	})
	redisClient := appredis.GetClient()

	// Repositories
	roomRepo := repository.NewRoomRepository(database.DB)
	messageRepo := repository.NewMessageRepository(database.DB)

	// Services
	authService := services.NewAuthService(cfg)
	roomService := services.NewRoomService(roomRepo)
	broadcaster := events.NewRedisBroadcaster(redisClient, l)
	chatService := services.NewChatService(roomRepo, messageRepo, broadcaster, l)

	limiter := appredis.NewRateLimiter(redisClient, appredis.RateLimitConfig{
		MessageLimit:  cfg.SendRateLimit,
		MessageWindow: cfg.SendRateWin,
	})

	// WebSocket hub plus the Redis bridge that feeds it
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := websocket.NewHub()
	go hub.Run(ctx)

	bridge := websocket.NewRedisBridge(redisClient, hub)
	go func() {
		if err := bridge.Run(ctx); err != nil && ctx.Err() == nil {
			l.Errorf("redis bridge stopped: %v", err)
		}
	}()

	authorizer := websocket.NewChannelAuthorizer(roomRepo)
	wsHandler := websocket.NewHandler(authService, hub, authorizer, l)

	// HTTP handlers
	roomHandler := handler.NewRoomHandler(roomService)
	messageHandler := handler.NewMessageHandler(chatService)

	gin.SetMode(ginMode(cfg.AppMode))
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggingMiddleware(l))
	r.Use(middleware.ErrorHandler(l))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	r.GET("/ws", wsHandler.Connect)

	api := r.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(authService))
	{
		api.POST("/rooms", roomHandler.Open)
		api.GET("/rooms", roomHandler.List)
		api.GET("/rooms/:id", roomHandler.GetByID)
		api.GET("/rooms/:id/messages", messageHandler.List)
		api.POST("/rooms/:id/messages", middleware.SendRateLimit(limiter), messageHandler.Send)
		api.POST("/rooms/:id/messages/read", messageHandler.MarkRead)
	}

	l.Infof("Starting server on port %s", cfg.AppPort)
	if err := r.Run(fmt.Sprintf(":%s", cfg.AppPort)); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func ginMode(appMode string) string {
	if appMode == "release" || appMode == "production" {
		return gin.ReleaseMode
	}
	return gin.DebugMode
}
