package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/vedran77/messagely/internal/auth"
	"github.com/vedran77/messagely/internal/config"
	"github.com/vedran77/messagely/internal/database"
	"github.com/vedran77/messagely/internal/logger"
	"github.com/vedran77/messagely/internal/metrics"
	"github.com/vedran77/messagely/internal/repository"
	"github.com/vedran77/messagely/internal/repository/memory"
	postgresrepo "github.com/vedran77/messagely/internal/repository/postgres"
	"github.com/vedran77/messagely/internal/server"
	"github.com/vedran77/messagely/internal/service"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger.Init(cfg.Env, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Repositories
	var (
		userRepo    repository.UserRepository
		messageRepo repository.MessageRepository
	)
	switch cfg.Storage {
	case config.StorageMemory:
		store := memory.NewStore()
		userRepo, messageRepo = store.Users(), store.Messages()
		log.Warn().Msg("using in-memory storage, data is lost on restart")
	default:
		pool, err := database.Connect(ctx, cfg.DatabaseURL())
		if err != nil {
			return err
		}
		defer pool.Close()
		log.Info().Str("host", cfg.DBHost).Str("db", cfg.DBName).Msg("connected to database")

		if cfg.DBMigrate {
			if err := database.Migrate(ctx, pool); err != nil {
				return err
			}
		}
		userRepo, messageRepo = postgresrepo.NewUserRepo(pool), postgresrepo.NewMessageRepo(pool)
	}

	issuer, err := auth.NewIssuer(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		return fmt.Errorf("creating token issuer: %w", err)
	}
	if issuer.TTL() == 0 {
		log.Warn().Msg("JWT_TTL is 0, issued tokens never expire")
	}

	// Services
	recorder := metrics.Recorder{}
	authService := service.NewAuthService(userRepo, issuer)
	authService.SetObserver(recorder)
	userService := service.NewUserService(userRepo)
	userService.SetObserver(recorder)
	messageService := service.NewMessageService(messageRepo)
	messageService.SetObserver(recorder)

	router := server.NewRouter(issuer, server.Services{
		Auth:     authService,
		Users:    userService,
		Messages: messageService,
	}, server.Options{
		RequestTimeout: cfg.RequestTimeout,
		CORSOrigins:    cfg.CORSOrigins,
	})

	return server.Run(ctx, ":"+cfg.ServerPort, router, cfg.ShutdownTimeout)
}
