package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/maumlab/maum/internal/cache"
	"github.com/maumlab/maum/internal/config"
	"github.com/maumlab/maum/internal/database"
	"github.com/maumlab/maum/internal/queue"
	postgresrepo "github.com/maumlab/maum/internal/repository/postgres"
	"github.com/maumlab/maum/internal/service"
	"github.com/maumlab/maum/internal/transport/http/handlers"
	"github.com/maumlab/maum/internal/transport/http/middleware"
	"github.com/maumlab/maum/internal/transport/ws"
)

func main() {
	cfg := config.Load()

	// Database
	pool, err := database.Connect(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()
	log.Println("Connected to database")

	// Presence cache
	presence, err := cache.NewPresenceStore(cfg.RedisURL)
	if err != nil {
		log.Fatal(err)
	}
	log.Println("Connected to redis")

	// Notification fan-out
	producer := queue.NewProducer(cfg.KafkaBroker, cfg.KafkaNotificationTopic)
	if producer != nil {
		defer producer.Close()
	}

	// Repositories
	userRepo := postgresrepo.NewUserRepo(pool)
	tokenRepo := postgresrepo.NewRefreshTokenRepo(pool)
	chatRepo := postgresrepo.NewChatRepo(pool)
	messageRepo := postgresrepo.NewMessageRepo(pool)
	locationRepo := postgresrepo.NewLocationRepo(pool)
	blockRepo := postgresrepo.NewBlockRepo(pool)
	matchingRepo := postgresrepo.NewMatchingRepo(pool)
	notificationRepo := postgresrepo.NewNotificationRepo(pool)

	// Services
	authService := service.NewAuthService(userRepo, tokenRepo, cfg.JWTSecret, cfg.JWTRefreshSecret)
	notificationService := service.NewNotificationService(notificationRepo, producer)
	chatService := service.NewChatService(chatRepo, messageRepo, userRepo, blockRepo, notificationService, cfg.ChatWindowHours)
	matchingService := service.NewMatchingService(matchingRepo, locationRepo, userRepo, blockRepo, notificationService)
	locationService := service.NewLocationService(locationRepo)

	// Realtime hub
	hub := ws.NewHub(presence)
	go hub.Run()
	chatService.SetNotifier(ws.NewHubNotifier(hub))

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	chatHandler := handlers.NewChatHandler(chatService)
	matchingHandler := handlers.NewMatchingHandler(matchingService)
	locationHandler := handlers.NewLocationHandler(locationService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	presenceHandler := handlers.NewPresenceHandler(presence)

	// Auth middleware
	auth := middleware.Auth(cfg.JWTSecret, userRepo)

	// Routes
	mux := http.NewServeMux()

	// Public
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status": "ok", "connections": %d}`, hub.Count())
	})
	mux.HandleFunc("POST /api/v1/auth/oauth", authHandler.OAuthLogin)
	mux.HandleFunc("POST /api/v1/auth/refresh", authHandler.Refresh)

	// WebSocket (token auth via query param)
	mux.HandleFunc("GET /ws", ws.ServeWS(hub, cfg.JWTSecret, chatService))

	// Protected - Chat
	mux.Handle("POST /api/v1/chat/rooms/direct", auth(http.HandlerFunc(chatHandler.OpenDirectRoom)))
	mux.Handle("GET /api/v1/chat/rooms", auth(http.HandlerFunc(chatHandler.ListRooms)))
	mux.Handle("GET /api/v1/chat/rooms/{id}/messages", auth(http.HandlerFunc(chatHandler.ListMessages)))
	mux.Handle("POST /api/v1/chat/rooms/{id}/read", auth(http.HandlerFunc(chatHandler.MarkRead)))
	mux.Handle("DELETE /api/v1/chat/rooms/{id}/messages", auth(http.HandlerFunc(chatHandler.DeleteAllMessages)))
	mux.Handle("DELETE /api/v1/messages/{id}", auth(http.HandlerFunc(chatHandler.DeleteMessage)))

	// Protected - Matching
	mux.Handle("GET /api/v1/matching", auth(http.HandlerFunc(matchingHandler.GetCandidates)))
	mux.Handle("POST /api/v1/matching/actions", auth(http.HandlerFunc(matchingHandler.RecordAction)))
	mux.Handle("GET /api/v1/matching/activity", auth(http.HandlerFunc(matchingHandler.GetActivity)))
	mux.Handle("GET /api/v1/matching/actions", auth(http.HandlerFunc(matchingHandler.GetActionUsers)))

	// Protected - Location areas
	mux.Handle("POST /api/v1/locations", auth(http.HandlerFunc(locationHandler.Create)))
	mux.Handle("GET /api/v1/locations", auth(http.HandlerFunc(locationHandler.List)))
	mux.Handle("POST /api/v1/locations/{id}/verify", auth(http.HandlerFunc(locationHandler.Verify)))
	mux.Handle("PATCH /api/v1/locations/{id}", auth(http.HandlerFunc(locationHandler.Update)))
	mux.Handle("DELETE /api/v1/locations/{id}", auth(http.HandlerFunc(locationHandler.Delete)))

	// Protected - Notifications
	mux.Handle("GET /api/v1/notifications", auth(http.HandlerFunc(notificationHandler.List)))

	// Protected - Presence
	mux.Handle("GET /api/v1/users/{id}/status", auth(http.HandlerFunc(presenceHandler.GetStatus)))

	// Start server with CORS
	addr := fmt.Sprintf(":%s", cfg.ServerPort)
	log.Printf("Starting server on %s", addr)
	log.Fatal(http.ListenAndServe(addr, middleware.CORS(mux)))
}
