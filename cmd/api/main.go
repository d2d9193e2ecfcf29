package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/resolvease/complaint-service/internal/api/http"
	"github.com/resolvease/complaint-service/internal/api/http/handlers"
	"github.com/resolvease/complaint-service/internal/auth"
	"github.com/resolvease/complaint-service/internal/config"
	"github.com/resolvease/complaint-service/internal/events"
	"github.com/resolvease/complaint-service/internal/observability"
	"github.com/resolvease/complaint-service/internal/persistence"
	"github.com/resolvease/complaint-service/internal/repository"
	"github.com/resolvease/complaint-service/internal/repository/memory"
	"github.com/resolvease/complaint-service/internal/service"
	"github.com/resolvease/complaint-service/internal/worker"
)

type repositories struct {
	users      repository.UserRepository
	complaints repository.ComplaintRepository
	replies    repository.ComplaintReplyRepository
	history    repository.ComplaintHistoryRepository
}

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

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	repos := buildRepositories(pg, redis)
	metrics := observability.NewMetrics("complaints")
	dispatcher := events.NewInMemoryDispatcher(logger)

	notificationService := service.NewNotificationService(logger, metrics, cfg.Notification)
	notifier := worker.StartNotificationWorker(dispatcher, notificationService, logger, 0)
	defer notifier.Stop()

	tokens := auth.NewTokenManager(cfg.Auth)
	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		UserRepo: repos.users,
		Tokens:   tokens,
		Limiter:  auth.NewLoginLimiter(redis.Client, cfg.Auth, logger),
		Logger:   logger,
	})
	userService := service.NewUserService(cfg.Auth, repos.users)
	complaintService := service.NewComplaintService(service.ComplaintDependencies{
		ComplaintRepo: repos.complaints,
		ReplyRepo:     repos.replies,
		UserRepo:      repos.users,
		HistoryRepo:   repos.history,
		Dispatcher:    dispatcher,
		Logger:        logger,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: httptransport.ErrorHandler,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    redis,
		}),
		Auth:            handlers.NewAuthHandler(authService),
		Complaints:      handlers.NewComplaintsHandler(complaintService),
		AdminComplaints: handlers.NewAdminComplaintsHandler(complaintService),
		AdminUsers:      handlers.NewAdminUsersHandler(userService),
		AuthMiddleware:  auth.NewAuthMiddleware(authService.TokenManager(), repos.users),
		Metrics:         metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
}

// buildRepositories selects Postgres-backed stores when a pool is open and in-memory stores otherwise.
func buildRepositories(pg *persistence.Postgres, redis *persistence.Redis) repositories {
	if !pg.Enabled() {
		store := memory.NewStore()
		return repositories{
			users:      store.Users(),
			complaints: store.Complaints(),
			replies:    store.Replies(),
			history:    store.History(),
		}
	}

	pool := pg.PoolHandle()
	return repositories{
		users:      redis.CacheUsers(repository.NewUserRepository(pool)),
		complaints: repository.NewComplaintRepository(pool),
		replies:    repository.NewComplaintReplyRepository(pool),
		history:    repository.NewComplaintHistoryRepository(pool),
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
