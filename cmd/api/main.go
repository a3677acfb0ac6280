package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/ottocrm/ottocrm/internal/api/http"
	"github.com/ottocrm/ottocrm/internal/api/http/handlers"
	"github.com/ottocrm/ottocrm/internal/auth"
	"github.com/ottocrm/ottocrm/internal/config"
	"github.com/ottocrm/ottocrm/internal/events"
	"github.com/ottocrm/ottocrm/internal/feed"
	"github.com/ottocrm/ottocrm/internal/observability"
	"github.com/ottocrm/ottocrm/internal/persistence"
	"github.com/ottocrm/ottocrm/internal/repository"
	"github.com/ottocrm/ottocrm/internal/service"
	"github.com/ottocrm/ottocrm/internal/worker"
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

	pool := pg.PoolHandle()
	accountRepo := repository.NewAccountRepository(pool)
	profileRepo := repository.NewProfileRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	messageRepo := repository.NewTicketMessageRepository(pool)
	documentRepo := repository.NewDocumentRepository(pool)
	resetRepo := repository.NewPasswordResetRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	changeFeed := feed.NewRedisFeed(redis.Client, logger)
	worker.StartFeedRelay(dispatcher, changeFeed)

	notificationService := service.NewNotificationService(dispatcher, logger)
	notificationService.RegisterHandlers()

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		AccountRepo:       accountRepo,
		ProfileRepo:       profileRepo,
		PasswordResetRepo: resetRepo,
		Logger:            logger,
	})
	profileService := service.NewProfileService(accountRepo, profileRepo, ticketRepo, logger)
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:  ticketRepo,
		MessageRepo: messageRepo,
		ProfileRepo: profileRepo,
		Dispatcher:  dispatcher,
	})
	documentService := service.NewDocumentService(documentRepo)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), accountRepo, profileRepo)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	metrics := observability.NewMetrics()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Profiles:       handlers.NewProfilesHandler(profileService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Stream:         handlers.NewStreamHandler(ticketService, changeFeed, logger),
		Documents:      handlers.NewDocumentsHandler(documentService),
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
