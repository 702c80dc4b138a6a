package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"

	"tasksphere/internal/config"
	"tasksphere/internal/handler"
	"tasksphere/internal/middleware"
	"tasksphere/internal/redis"
	"tasksphere/internal/services"
	"tasksphere/internal/transport/httpdto"
	"tasksphere/internal/ws"
	"tasksphere/pkg/database"
	"tasksphere/pkg/logger"
)

type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	config     *config.Config
	logger     *logger.Logger
}

type Handlers struct {
	Auth       *handler.AuthHandler
	Project    *handler.ProjectHandler
	Issue      *handler.IssueHandler
	Sprint     *handler.SprintHandler
	Comment    *handler.CommentHandler
	Activity   *handler.ActivityHandler
	Attachment *handler.AttachmentHandler
}

func New(cfg *config.Config, l *logger.Logger) *Server {
	switch cfg.Server.Environment {
	case "production":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	return &Server{
		httpServer: &http.Server{
			Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
			Handler: engine,
		},
		engine: engine,
		config: cfg,
		logger: l,
	}
}

// Deps carries everything route setup needs beyond the handlers.
type Deps struct {
	AuthService *services.AuthService
	Limiter     *redis.RateLimiter
	Pool        *pgxpool.Pool
	Redis       *goredis.Client
	Hub         *ws.Hub
}

func (s *Server) SetupRoutes(handlers *Handlers, deps *Deps) {
	s.engine.Use(middleware.RequestIDMiddleware())
	s.engine.Use(middleware.CORSMiddleware(s.config.WebSocket.AllowedOrigins))
	s.engine.Use(middleware.LoggingMiddleware(s.logger))
	s.engine.Use(middleware.ErrorHandler(s.logger))

	s.engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"message": "pong"}))
	})

	s.engine.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		if err := database.HealthCheck(ctx, deps.Pool); err != nil {
			c.JSON(http.StatusServiceUnavailable, httpdto.NewErrorResponse("database unreachable", "UNHEALTHY"))
			return
		}
		if err := deps.Redis.Ping(ctx).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, httpdto.NewErrorResponse("redis unreachable", "UNHEALTHY"))
			return
		}
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{
			"status":   "healthy",
			"sessions": deps.Hub.SessionCount(),
		}))
	})

	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	requireAuth := middleware.AuthMiddleware(deps.AuthService)
	writeLimit := middleware.WriteRateLimitMiddleware(deps.Limiter)

	auth := s.engine.Group("/v1/auth")
	auth.Use(middleware.AuthRateLimitMiddleware(deps.Limiter))
	{
		auth.POST("/register", handlers.Auth.Register)
		auth.POST("/login", handlers.Auth.Login)
		auth.GET("/me", requireAuth, handlers.Auth.Me)
	}

	projects := s.engine.Group("/v1/projects", requireAuth)
	{
		projects.POST("", writeLimit, handlers.Project.Create)
		projects.GET("", handlers.Project.List)
		projects.GET("/:id", handlers.Project.GetByID)
		projects.DELETE("/:id", writeLimit, handlers.Project.Delete)

		projects.POST("/:id/issues", writeLimit, handlers.Issue.Create)
		projects.GET("/:id/issues", handlers.Issue.List)

		projects.POST("/:id/sprints", writeLimit, handlers.Sprint.Create)
		projects.GET("/:id/sprints/active", handlers.Sprint.GetActive)

		projects.GET("/:id/activity", handlers.Activity.ListByProject)
	}

	issues := s.engine.Group("/v1/issues", requireAuth)
	{
		issues.GET("/:id", handlers.Issue.GetByID)
		issues.PATCH("/:id", writeLimit, handlers.Issue.Update)

		issues.POST("/:id/comments", writeLimit, handlers.Comment.Add)
		issues.GET("/:id/comments", handlers.Comment.List)

		issues.POST("/:id/attachments", writeLimit, handlers.Attachment.PresignUpload)
		issues.GET("/:id/attachments", handlers.Attachment.List)
	}

	sprints := s.engine.Group("/v1/sprints", requireAuth)
	{
		sprints.POST("/:id/close", writeLimit, handlers.Sprint.Close)
	}

	attachments := s.engine.Group("/v1/attachments", requireAuth)
	{
		attachments.GET("/:id/url", handlers.Attachment.DownloadURL)
	}

	wsHandler := ws.NewHandler(deps.Hub, wsAuthenticator{auth: deps.AuthService}, s.config.WebSocket.AllowedOrigins)
	s.engine.GET("/ws", wsHandler.Handle)
}

func (s *Server) Start() error {
	go func() {
		if s.logger != nil {
			s.logger.Infof("Starting the server on port %s...", s.config.Server.Port)
		}
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if s.logger != nil {
				s.logger.Errorf("Error in starting the server: %s", err)
			}
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	if s.logger != nil {
		s.logger.Infof("Server is running on :%s", s.config.Server.Port)
	}

	<-quit

	if s.logger != nil {
		s.logger.Infof("Quitting signal received.. Shutting down after 5 seconds")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		if s.logger != nil {
			s.logger.Infof("Error in the graceful shutdown of the server: %s", err)
		}
		return err
	}

	if s.logger != nil {
		s.logger.Infof("Server stopped gracefully")
	}

	return nil
}
