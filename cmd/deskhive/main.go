package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"deskhive/internal/config"
	httpapi "deskhive/internal/http"
	"deskhive/internal/repository"
	"deskhive/internal/service"
	"deskhive/internal/store"
	"deskhive/pkg/database"
	"deskhive/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "deskhive")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}
	defer database.Close(db)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	var kv store.KV = store.NewRedisKV(redisClient)
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		// The unread-count cache is the only Redis consumer; run without it.
		log.Warn("redis unavailable, unread counters uncached", zap.Error(err))
		kv = nil
	}

	companiesRepo := repository.NewPostgresCompaniesRepository(db)
	usersRepo := repository.NewPostgresUsersRepository(db)
	workspacesRepo := repository.NewPostgresWorkspacesRepository(db)
	reservationsRepo := repository.NewPostgresReservationsRepository(db)
	notificationsRepo := repository.NewPostgresNotificationsRepository(db)
	sessionsRepo := repository.NewPostgresSessionsRepository(db)

	authSvc := service.NewAuthService(usersRepo, companiesRepo, sessionsRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, log)
	notificationSvc := service.NewNotificationService(notificationsRepo, usersRepo, kv, log)
	workspaceSvc := service.NewWorkspaceService(workspacesRepo, log)
	reservationSvc := service.NewReservationService(reservationsRepo, workspacesRepo, usersRepo, log)
	reservationSvc.AddPostCommitHook(service.NewReservationNotificationHook(
		notificationSvc, usersRepo, cfg.Reservation.NotifyAdmins, log))

	middleware := httpapi.NewAuthMiddleware(authSvc, log)
	router := httpapi.NewRouter(middleware, log)
	router.RegisterHealthRoutes()
	router.RegisterAuthRoutes(httpapi.NewAuthHandler(authSvc, log))
	reservationHandler := httpapi.NewReservationHandler(reservationSvc, reservationsRepo, workspacesRepo, log)
	router.RegisterReservationRoutes(reservationHandler)
	router.RegisterWorkspaceRoutes(httpapi.NewWorkspaceHandler(workspaceSvc, reservationHandler, log))
	router.RegisterNotificationRoutes(httpapi.NewNotificationHandler(notificationSvc, log))

	srv := service.NewServer(cfg.HTTP.Addr, router.Handler(), log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Reminder.Enabled {
		reminder := service.NewReminderService(reservationsRepo, notificationSvc, cfg.Reminder.Interval, log)
		go reminder.Run(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		cancel()
	case err := <-errCh:
		log.Error("server exited", zap.Error(err))
		cancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
	_ = redisClient.Close()
}
