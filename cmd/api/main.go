package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/whistle-service/internal/api/http"
	"github.com/spec-kit/whistle-service/internal/api/http/handlers"
	"github.com/spec-kit/whistle-service/internal/auth"
	"github.com/spec-kit/whistle-service/internal/config"
	"github.com/spec-kit/whistle-service/internal/events"
	"github.com/spec-kit/whistle-service/internal/observability"
	"github.com/spec-kit/whistle-service/internal/persistence"
	"github.com/spec-kit/whistle-service/internal/repository"
	"github.com/spec-kit/whistle-service/internal/service"
	"github.com/spec-kit/whistle-service/internal/storage"
	"github.com/spec-kit/whistle-service/internal/worker"
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

	fileStore, err := storage.NewFileStore(cfg.Storage)
	if err != nil {
		logger.Fatal("failed to init file store", zap.Error(err))
	}

	pool := pg.PoolHandle()
	reportRepo := repository.NewReportRepository(pool)
	messageRepo := repository.NewChatMessageRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()

	cookies := auth.NewCookieManager(cfg.Session.Secret, cfg.Session.CookieName, cfg.Session.TTL())
	sessions := auth.NewRedisSessionStore(redis.Client, cfg.Session.TTL())
	sessionMiddleware := auth.NewSessionMiddleware(cookies, sessions)

	accessService := service.NewAccessService(cfg.Access, service.AccessDependencies{
		Sessions: sessions,
		Cookies:  cookies,
	})
	reportService := service.NewReportService(service.ReportDependencies{
		ReportRepo:  reportRepo,
		MessageRepo: messageRepo,
		Dispatcher:  dispatcher,
	})

	var mailer service.Mailer
	if cfg.Mail.Host != "" {
		mailer = service.NewSMTPMailer(cfg.Mail)
	}
	notificationService := service.NewNotificationService(dispatcher, mailer, accessService.ReviewerAddresses(), logger)
	worker.StartNotificationWorker(notificationService)

	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{
		BodyLimit: int(cfg.Storage.MaxUploadBytes) + 1<<20,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:            handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:              handlers.NewAuthHandler(accessService, cookies),
		Reports:           handlers.NewReportsHandler(reportService, fileStore),
		Review:            handlers.NewReviewHandler(reportService, fileStore),
		Attachments:       handlers.NewAttachmentsHandler(fileStore),
		SessionMiddleware: sessionMiddleware,
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
