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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kgrierson/stronghold/internal/config"
	"github.com/kgrierson/stronghold/internal/database"
	"github.com/kgrierson/stronghold/internal/handlers"
	middlewareCustom "github.com/kgrierson/stronghold/internal/middleware"
	"github.com/kgrierson/stronghold/internal/models"
	"github.com/kgrierson/stronghold/internal/repositories"
	"github.com/kgrierson/stronghold/internal/routes"
	"github.com/kgrierson/stronghold/internal/services"
	pkgauth "github.com/kgrierson/stronghold/pkg/auth"
	pkglogger "github.com/kgrierson/stronghold/pkg/logger"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	// Initialize database
	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	migrateCtx, migrateCancel := context.WithTimeout(context.Background(), 60*time.Second)
	if err := db.Migrate(migrateCtx); err != nil {
		migrateCancel()
		logger.Error("failed to run migrations", slog.Any("error", err))
		os.Exit(1)
	}
	migrateCancel()

	// Initialize repositories
	accountRepo := repositories.NewAccountRepository(db)
	eventRepo := repositories.NewSecurityEventRepository(db)

	// Initialize services
	auditLogger := pkglogger.NewAuditLogger(logger)
	auditService := services.NewAuditService(eventRepo, auditLogger, logger)

	authService := services.NewAuthService(accountRepo, auditService, services.Config{
		MaxFailedAttempts:     cfg.Auth.MaxFailedAttempts,
		LockoutDuration:       cfg.Auth.LockoutDuration,
		StrictLookup:          cfg.Auth.StrictLookup,
		WrapPersistenceErrors: cfg.Auth.WrapPersistenceErrors,
		CommandTimeout:        cfg.Auth.CommandTimeout,
	}, logger)

	sessionService := services.NewSessionService(logger)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, sessionService, logger)
	auditHandler := handlers.NewAuditHandler(auditService, sessionService)

	// Bootstrap the first administrator if configured
	seedCtx, seedCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := ensureAdminAccount(seedCtx, accountRepo, logger); err != nil {
		logger.Error("failed to ensure admin account", slog.Any("error", err))
	}
	seedCancel()

	// Setup router
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.SecureLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// Register routes
	routes.RegisterRoutes(router, authHandler, auditHandler)

	// Health check with database
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.HealthCheck(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unhealthy","database":"down"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy","database":"up"}`))
	})

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}

// ensureAdminAccount creates the first administrator when the accounts table
// is empty and ADMIN_USERNAME/ADMIN_PASSWORD are set. Existing deployments are
// never touched.
func ensureAdminAccount(ctx context.Context, accountRepo *repositories.AccountRepository, logger *slog.Logger) error {
	adminUsername := os.Getenv("ADMIN_USERNAME")
	adminPassword := os.Getenv("ADMIN_PASSWORD")

	if adminUsername == "" || adminPassword == "" {
		logger.Info("no ADMIN_USERNAME or ADMIN_PASSWORD set, skipping admin account creation")
		return nil
	}

	exists, err := accountRepo.Exists(ctx)
	if err != nil {
		return fmt.Errorf("failed to check for existing accounts: %w", err)
	}
	if exists {
		logger.Info("accounts already exist, skipping admin account creation")
		return nil
	}

	if !pkgauth.ValidatePassword(adminPassword) {
		return fmt.Errorf("ADMIN_PASSWORD does not meet complexity requirements")
	}

	hashedPassword, err := pkgauth.HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	stamp := pkgauth.GenerateSecurityStamp()
	admin := &models.Account{
		Username:      adminUsername,
		Email:         os.Getenv("ADMIN_EMAIL"),
		PasswordHash:  hashedPassword,
		AccessLevel:   models.AccessLevelAdministrator,
		IsActive:      true,
		SecurityStamp: &stamp,
	}

	if _, err := accountRepo.Create(ctx, admin); err != nil {
		return fmt.Errorf("failed to create admin account: %w", err)
	}

	logger.Info("admin account created", slog.String("username", adminUsername))
	return nil
}
