package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	apiHttp "github.com/souqly/backend/internal/api/http"
	"github.com/souqly/backend/internal/cache"
	"github.com/souqly/backend/internal/config"
	"github.com/souqly/backend/internal/db"
	"github.com/souqly/backend/internal/queue/asynqserver"
	"github.com/souqly/backend/internal/queue/client"
	"github.com/souqly/backend/internal/repository"
	"github.com/souqly/backend/internal/server"
	"github.com/souqly/backend/internal/service"
	"github.com/souqly/backend/internal/storage"
	"github.com/souqly/backend/internal/worker"
	"github.com/souqly/backend/pkg/auth"
	emailProvider "github.com/souqly/backend/pkg/email"
	"github.com/souqly/backend/pkg/email/smtp"
	"github.com/souqly/backend/pkg/logger"
	"github.com/souqly/backend/pkg/otp"
	"github.com/souqly/backend/pkg/sms"
)

const shutdownTimeout = 5 * time.Second

// @title Souqly Verification API
// @version 1.0
// @description Seller identity and business verification for the marketplace

// @securityDefinitions.apikey UserAuth
// @in header
// @name Authorization

// @securityDefinitions.apikey AdminAuth
// @in header
// @name Authorization
func main() {
	cfg := config.MustLoad()

	appLogger := logger.SetupLogger(cfg.Env, cfg.LogLevel)
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("starting verification api", zap.String("env", cfg.Env))

	dbMySQL, err := db.New(cfg.Database)
	if err != nil {
		appLogger.Fatal("mysql connect failed", zap.Error(err))
	}
	defer func() {
		if err := dbMySQL.Close(); err != nil {
			appLogger.Error("mysql close failed", zap.Error(err))
		}
	}()

	if err := db.Migrate(context.Background(), dbMySQL); err != nil {
		appLogger.Fatal("migrations failed", zap.Error(err))
	}
	appLogger.Info("mysql connection done")

	redisClient, err := cache.NewRedis(cfg.Cache)
	if err != nil {
		appLogger.Fatal("redis connect failed", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			appLogger.Error("redis close failed", zap.Error(err))
		}
	}()

	tokenManager, err := auth.NewManager(cfg.Auth.JWT)
	if err != nil {
		appLogger.Fatal("auth manager creation failed", zap.Error(err))
	}

	var emailSender emailProvider.Sender
	if cfg.Email.Enabled {
		emailSender, err = smtp.NewSMTPSender(cfg.SMTP.From, cfg.SMTP.Pass, cfg.SMTP.Host, cfg.SMTP.Port)
		if err != nil {
			appLogger.Fatal("smtp sender creation failed", zap.Error(err))
		}
	}

	repos := repository.NewRepositories(dbMySQL)

	asynqClient := asynq.NewClient(asynqserver.RedisOptions(cfg.Cache))
	defer func() {
		if err := asynqClient.Close(); err != nil {
			appLogger.Error("asynq client close failed", zap.Error(err))
		}
	}()

	services := service.NewServices(service.Deps{
		Config:       cfg,
		Repos:        repos,
		BlobStore:    storage.NewMySQLStore(dbMySQL),
		StatusCache:  cache.NewStatusCache(redisClient, cfg.Verification.StatusCacheTTL),
		PhoneCodes:   cache.NewPhoneCodes(redisClient),
		Events:       client.NewPublisher(asynqClient),
		OtpGenerator: otp.NewGOTPGenerator(),
		SMSSender:    sms.NewLogSender(),
	})

	workers := worker.NewWorkers(worker.Deps{
		Redis:         redisClient,
		Users:         repos.Users,
		EmailProvider: emailSender,
		Config:        cfg,
	})

	queueServer, mux := asynqserver.New(cfg.Cache, workers)
	go func() {
		if err := queueServer.Run(mux); err != nil {
			appLogger.Error("queue server stopped", zap.Error(err))
		}
	}()

	handlers := apiHttp.NewHandlers(services, tokenManager, cfg)

	srv := server.NewServer(cfg, handlers.Init(cfg))
	go func() {
		if err := srv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("http server stopped", zap.Error(err))
		}
	}()

	appLogger.Info("server started", zap.String("port", cfg.HttpServer.Port))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	appLogger.Info("shutting down")

	queueServer.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Stop(ctx); err != nil {
		appLogger.Error("server shutdown failed", zap.Error(err))
	}
}
