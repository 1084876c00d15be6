package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/helpfast/helpdesk/internal/api/http"
	"github.com/helpfast/helpdesk/internal/api/http/handlers"
	"github.com/helpfast/helpdesk/internal/assistant"
	"github.com/helpfast/helpdesk/internal/auth"
	"github.com/helpfast/helpdesk/internal/config"
	"github.com/helpfast/helpdesk/internal/events"
	"github.com/helpfast/helpdesk/internal/observability"
	"github.com/helpfast/helpdesk/internal/persistence"
	"github.com/helpfast/helpdesk/internal/repository"
	"github.com/helpfast/helpdesk/internal/service"
	"github.com/helpfast/helpdesk/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()
	statusCache := persistence.NewStatusCache(redis, cfg.Redis.StatusTTL())

	store := repository.NewStore(pg.PoolHandle())
	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	ticketService := service.NewTicketService(service.TicketDependencies{
		Store:       store,
		StatusCache: statusCache,
		Dispatcher:  dispatcher,
	})
	userService := service.NewUserService(service.UserDependencies{
		Store:      store,
		Dispatcher: dispatcher,
		BcryptCost: cfg.Auth.BcryptCost,
	})
	chatService := service.NewChatService(service.ChatDependencies{
		Store:      store,
		Dispatcher: dispatcher,
	})
	authService := service.NewAuthService(*cfg, store, userService)

	var docStore assistant.DocumentStore
	if cfg.Documents.Bucket != "" {
		docStore, err = assistant.NewS3DocumentStore(cfg.Documents)
		if err != nil {
			logger.Fatal("failed to init document store", zap.Error(err))
		}
	}
	assistantService := service.NewAssistantService(service.AssistantDependencies{
		Store:         store,
		LLM:           assistant.NewOpenAIClient(cfg.Assistant),
		DocumentStore: docStore,
		DocumentKey:   cfg.Documents.DocumentKey,
		Logger:        logger,
	})

	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), store.Users())

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Users:          handlers.NewUsersHandler(userService, authService),
		Chat:           handlers.NewChatHandler(chatService),
		Assistant:      handlers.NewAssistantHandler(assistantService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
