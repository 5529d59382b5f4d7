package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/peerbridge/chat-service/internal/api/handler"
	custommiddleware "github.com/peerbridge/chat-service/internal/api/middleware"
	"github.com/peerbridge/chat-service/internal/chat"
	"github.com/peerbridge/chat-service/internal/config"
	"github.com/peerbridge/chat-service/internal/domain"
	"github.com/peerbridge/chat-service/internal/repository/mongodb"
	"github.com/peerbridge/chat-service/internal/repository/redis"
	"github.com/peerbridge/chat-service/internal/security"
)

// NewRouter wires stores, coordinators and handlers into the HTTP surface
func NewRouter(cfg *config.Config, redisClient *redis.Client, mongoClient *mongodb.Client) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize repositories
	timerStore := redis.NewTimerStore(redisClient, cfg.Chat.ActiveSessionTTL, cfg.Chat.StatusRetention)
	transcriptRepo := mongodb.NewTranscriptRepository(mongoClient)
	ticketRepo := mongodb.NewTicketChatRepository(mongoClient)
	auditRepo := mongodb.NewAuditRepository(mongoClient)

	// Initialize coordinators
	sessionCoordinator := chat.NewCoordinator(timerStore, transcriptRepo, auditRepo, cfg.Chat.MaxMessageSize)
	supportCoordinator := chat.NewSupportCoordinator(ticketRepo, auditRepo, cfg.Chat.MaxMessageSize)

	// Initialize handlers
	wsHandler := handler.NewWSHandler(sessionCoordinator, supportCoordinator)
	transcriptHandler := handler.NewTranscriptHandler(transcriptRepo)
	ticketHandler := handler.NewTicketHandler(ticketRepo)
	auditHandler := handler.NewAuditHandler(auditRepo)

	// Auth middleware
	jwtManager := security.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL)
	authMiddleware := custommiddleware.NewAuthMiddleware(jwtManager)

	// Socket namespaces live outside the timeout group: a connection stays
	// open for the whole session.
	r.Get("/ws/session", wsHandler.Session)
	r.Get("/ws/support", wsHandler.Support)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(chimiddleware.Timeout(30 * time.Second))

		// Health check
		r.Get("/health", handler.HealthCheck)
		r.Get("/ready", handler.ReadyCheck(redisClient, mongoClient))

		// Admin read surface over the durable records
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			r.Use(custommiddleware.RequireRole(domain.RoleAdmin))

			r.Get("/sessions/{sessionID}/transcript", transcriptHandler.GetHistory)
			r.Delete("/sessions/{sessionID}/transcript", transcriptHandler.Delete)
			r.Get("/tickets/{ticketID}/messages", ticketHandler.GetHistory)
			r.Get("/audit", auditHandler.Query)
		})
	})

	return r
}
