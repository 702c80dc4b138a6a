package main

import (
	"context"
	"log"

	"tasksphere/internal/config"
	"tasksphere/internal/events"
	"tasksphere/internal/handler"
	"tasksphere/internal/redis"
	"tasksphere/internal/relay"
	"tasksphere/internal/repository"
	"tasksphere/internal/server"
	"tasksphere/internal/services"
	"tasksphere/internal/storage"
	"tasksphere/internal/ws"
	"tasksphere/pkg/database"
	"tasksphere/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	l := logger.New(cfg.Server.Environment)
	logger.SetGlobalLogger(l)

	ctx := context.Background()

	pool, err := database.Connect(ctx, cfg.Database.DSN())
	if err != nil {
		l.Errorf("Failed to connect to database: %v", err)
		log.Fatal(err)
	}
	defer pool.Close()

	redisClient, err := redis.NewClient(ctx, redis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		l.Errorf("Failed to connect to redis: %v", err)
		log.Fatal(err)
	}
	defer redisClient.Close()

	// Repositories
	outboxRepo := repository.NewOutboxRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	projectRepo := repository.NewProjectRepository(pool)
	issueRepo := repository.NewIssueRepository(pool)
	sprintRepo := repository.NewSprintRepository(pool)
	commentRepo := repository.NewCommentRepository(pool)
	activityRepo := repository.NewActivityRepository(pool)
	attachmentRepo := repository.NewAttachmentRepository(pool)

	// Object storage is optional; attachment endpoints fail cleanly when
	// it is not configured.
	var store *storage.Client
	if cfg.S3.Bucket != "" {
		store, err = storage.NewClient(ctx, storage.S3Config{
			Region:     cfg.S3.Region,
			Bucket:     cfg.S3.Bucket,
			AccessKey:  cfg.S3.AccessKey,
			SecretKey:  cfg.S3.SecretKey,
			Endpoint:   cfg.S3.Endpoint,
			PresignTTL: cfg.S3.PresignTTL,
		})
		if err != nil {
			l.Errorf("Failed to configure object storage: %v", err)
			log.Fatal(err)
		}
	}

	// Services
	outboxService := services.NewOutboxService(outboxRepo)
	authService := services.NewAuthService(userRepo, services.AuthConfig{
		JWTSecret:  cfg.Auth.JWTSecret,
		AccessTTL:  cfg.Auth.AccessTTL,
		BcryptCost: cfg.Auth.BcryptCost,
	})
	authzService := services.NewAuthzService(projectRepo, issueRepo, sprintRepo)
	cache := redis.NewCache(redisClient, 0)
	projectService := services.NewProjectService(pool, projectRepo, activityRepo, outboxService, cache)
	issueService := services.NewIssueService(pool, issueRepo, projectRepo, activityRepo, outboxService)
	sprintService := services.NewSprintService(pool, sprintRepo, projectRepo, activityRepo, outboxService)
	commentService := services.NewCommentService(pool, commentRepo, issueRepo, activityRepo, outboxService)
	attachmentService := services.NewAttachmentService(attachmentRepo, issueRepo, store)
	activityService := services.NewActivityService(activityRepo)

	limiter := redis.NewRateLimiter(redisClient, redis.DefaultRateLimitConfig())

	// Event pipeline: outbox rows relay to the broker, the bridge feeds
	// them into the websocket hub.
	broker := events.NewRedisBroker(redisClient)

	outboxRelay := relay.New(outboxRepo, broker, relay.Config{
		Interval:       cfg.Relay.Interval,
		BatchSize:      cfg.Relay.BatchSize,
		PublishTimeout: cfg.Relay.PublishTimeout,
	})
	outboxRelay.Start()
	defer outboxRelay.Stop()

	hub := ws.NewHub(server.NewRealtimeAuthorizer(authzService), ws.HubConfig{
		HeartbeatInterval: cfg.WebSocket.HeartbeatInterval,
		SendQueueSize:     cfg.WebSocket.SendQueueSize,
		DropThreshold:     cfg.WebSocket.DropThreshold,
	})
	go hub.Run()
	defer hub.Stop()

	bridge := ws.NewBridge(broker, hub)
	if err := bridge.Start(ctx); err != nil {
		l.Errorf("Failed to start event bridge: %v", err)
		log.Fatal(err)
	}
	defer bridge.Stop()

	srv := server.New(cfg, l)
	srv.SetupRoutes(&server.Handlers{
		Auth:       handler.NewAuthHandler(authService),
		Project:    handler.NewProjectHandler(projectService),
		Issue:      handler.NewIssueHandler(issueService),
		Sprint:     handler.NewSprintHandler(sprintService),
		Comment:    handler.NewCommentHandler(commentService),
		Activity:   handler.NewActivityHandler(activityService),
		Attachment: handler.NewAttachmentHandler(attachmentService),
	}, &server.Deps{
		AuthService: authService,
		Limiter:     limiter,
		Pool:        pool,
		Redis:       redisClient,
		Hub:         hub,
	})

	if err := srv.Start(); err != nil {
		log.Fatalf("Server exited with error: %v", err)
	}
}
