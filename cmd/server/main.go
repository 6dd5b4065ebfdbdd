// Package main initializes and starts the filebox HTTP server, setting up
// configuration, logging, database connections, repositories, services,
// handlers, and the session store.
package main

import (
	"cmp"
	"context"
	"fmt"
	"time"

	nethttp "net/http"

	"github.com/ndanilin/filebox/internal/config"
	"github.com/ndanilin/filebox/internal/db"
	"github.com/ndanilin/filebox/internal/logger"
	"github.com/ndanilin/filebox/internal/repository"
	"github.com/ndanilin/filebox/internal/server/handler/http"
	"github.com/ndanilin/filebox/internal/service"
	"github.com/ndanilin/filebox/internal/session"
	"github.com/ndanilin/filebox/internal/storage"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Parse command-line and environment configuration.
	options := config.Parse()

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	// Initialize PostgreSQL connection.
	postgresDB, err := db.InitPostgres(options.DatabaseDSN)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}

	// Periodically drop activation codes whose window passed.
	db.StartActivationCodeCleaner(context.Background(), postgresDB,
		time.Hour, // interval
		zapLogger,
	)

	// Initialize the credential store.
	accountRepo := repository.NewPostgresAccountRepository(postgresDB)

	// Pick the session store backend.
	var sessionStore session.Store
	if options.RedisAddr != "" {
		redisStore, err := session.NewRedisStore(options.RedisAddr)
		if err != nil {
			zapLogger.Fatal("cannot init redis session store", zap.Error(err))
		}
		sessionStore = redisStore
		zapLogger.Info("using redis session store", zap.String("addr", options.RedisAddr))
	} else {
		sessionStore = session.NewMemoryStore()
		zapLogger.Info("using in-memory session store")
	}
	sessions := session.NewManager(sessionStore, options.SessionTTL)

	// Initialize business-logic services.
	accountService := service.NewAccountService(
		accountRepo, options.ActivationMode, options.ActivationTTL, zapLogger,
	)

	// Initialize the shared upload directory.
	fileStore, err := storage.NewFileStore(options.UploadDir)
	if err != nil {
		zapLogger.Fatal("cannot init upload dir", zap.Error(err))
	}

	// Create HTTP handlers for auth and file endpoints.
	authHandler := &http.AuthHandler{
		Accounts:   accountService,
		Sessions:   sessions,
		CookieName: options.SessionCookie,
		SessionTTL: options.SessionTTL,
		Log:        zapLogger,
	}
	filesHandler := &http.FilesHandler{
		Storage:        fileStore,
		MaxUploadBytes: options.MaxUploadBytes,
		Log:            zapLogger,
	}

	// Build the router with middleware and routes.
	router := http.NewRouter(
		authHandler, filesHandler,
		sessions, accountService,
		options.SessionCookie, zapLogger,
	)

	// Create and start the HTTP server.
	server := &nethttp.Server{
		Addr:    options.Addr,
		Handler: router,
	}

	zapLogger.Info("starting HTTP server",
		zap.String("addr", options.Addr),
		zap.String("activation_mode", options.ActivationMode),
		zap.String("upload_dir", options.UploadDir),
	)
	if err := server.ListenAndServe(); err != nil {
		zapLogger.Fatal("failed to start HTTP server", zap.Error(err))
	}
}
