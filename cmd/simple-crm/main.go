package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/tendant/simple-crm-core/internal/config"
	httpserver "github.com/tendant/simple-crm-core/internal/http"
	"github.com/tendant/simple-crm-core/internal/http/middleware"
	"github.com/tendant/simple-crm-core/pkg/ident"
	"github.com/tendant/simple-crm-core/pkg/repository"
)

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Connect to database
	db, err := repository.NewDB(repository.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	})
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	logger.Info("connected to database", "id_encoding", cfg.IDEncoding.String())

	// Initialize repositories
	ids := ident.NewCodec(cfg.IDEncoding)
	gen := ident.NewGenerator(nil)
	contactsRepo := repository.NewContactsRepository(db, ids, gen)
	companiesRepo := repository.NewCompaniesRepository(db, ids, gen)
	dealsRepo := repository.NewDealsRepository(db, ids, gen)
	activitiesRepo := repository.NewActivitiesRepository(db, ids, gen)

	// Create router
	router := httpserver.NewRouter(httpserver.RouterConfig{
		Logger: logger,
		Auth: middleware.AuthConfig{
			Secret: []byte(cfg.AuthJWTSecret),
			Issuer: cfg.AuthJWTIssuer,
		},
		ContactsRepo:       contactsRepo,
		CompaniesRepo:      companiesRepo,
		DealsRepo:          dealsRepo,
		ActivitiesRepo:     activitiesRepo,
		RateLimitConfig:    cfg.RateLimit,
		MaxRequestBodySize: cfg.MaxRequestBodySize,
	})

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.ServerAddr, cfg.ServerPort)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting server", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("server stopped")
}
