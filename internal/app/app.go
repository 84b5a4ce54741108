package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/logger"
	"gorm.io/gorm"

	"github.com/simp-lee/glowingstore/internal/auth"
	"github.com/simp-lee/glowingstore/internal/config"
	"github.com/simp-lee/glowingstore/internal/datastore"
	"github.com/simp-lee/glowingstore/internal/domain"
	"github.com/simp-lee/glowingstore/internal/middleware"
	"github.com/simp-lee/glowingstore/internal/module/category"
	"github.com/simp-lee/glowingstore/internal/module/identity"
	"github.com/simp-lee/glowingstore/internal/module/image"
	"github.com/simp-lee/glowingstore/internal/module/product"
	"github.com/simp-lee/glowingstore/internal/storage"
)

// App holds the core application dependencies and the HTTP server.
type App struct {
	engine *gin.Engine
	db     *gorm.DB
	logger *logger.Logger
	cfg    *config.Config
}

type httpServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

var newHTTPServer = func(addr string, handler http.Handler) httpServer {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

var notifyContext = func(parent context.Context, signals ...os.Signal) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, signals...)
}

// New creates and wires a fully configured App from the given Config.
//
// It sets up logging, the database, the persistence gateway, the storage
// provider, the token service, domain services, handlers, middleware, and
// routes, and seeds the well-known roles.
func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	success := false

	// 1. Setup logger.
	log, err := config.SetupLogger(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	if cfg.Server.Mode == gin.DebugMode && cfg.Server.Host == "0.0.0.0" {
		log.Warn("insecure server config: debug mode on 0.0.0.0 may expose debug behavior and permissive CORS")
	}
	defer func() {
		if success {
			return
		}
		if err := log.Close(); err != nil {
			slog.Error("logger close error", slog.Any("error", err))
		}
	}()

	// 2. Setup database.
	db, err := config.SetupDatabase(&cfg.Database, log.Logger)
	if err != nil {
		return nil, fmt.Errorf("setup database: %w", err)
	}
	defer func() {
		if success {
			return
		}
		sqlDB, err := db.DB()
		if err != nil {
			return
		}
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", slog.Any("error", err))
		}
	}()

	// 3. AutoMigrate in debug mode only.
	if cfg.Server.Mode == gin.DebugMode {
		err := db.AutoMigrate(
			&domain.Category{},
			&domain.Product{},
			&domain.Image{},
			&domain.User{},
			&domain.Role{},
		)
		if err != nil {
			return nil, fmt.Errorf("auto migrate: %w", err)
		}
		log.Info("auto migration completed")
	}

	// 4. Persistence gateway, token service, storage provider.
	store := datastore.NewStore(db, datastore.DefaultRegistry())

	tokens, err := auth.NewTokenService(
		[]byte(cfg.JWT.SecurityKey),
		cfg.JWT.Issuer,
		cfg.JWT.Audience,
		cfg.JWT.TokenExpiration(),
	)
	if err != nil {
		return nil, fmt.Errorf("setup token service: %w", err)
	}

	provider, err := setupStorage(&cfg.Storage, log.Logger)
	if err != nil {
		return nil, fmt.Errorf("setup storage: %w", err)
	}

	// 5. Manual dependency injection: service → handler → module.
	identitySvc := identity.NewService(store, tokens, log.Logger)
	categorySvc := category.NewService(store)
	productSvc := product.NewService(store)
	imageSvc := image.NewService(store, provider, log.Logger)

	modules := []Module{
		identity.NewModule(identity.NewHandler(identitySvc)),
		category.NewModule(category.NewHandler(categorySvc)),
		product.NewModule(product.NewHandler(productSvc)),
		image.NewModule(image.NewHandler(imageSvc)),
	}

	// 6. Seed the well-known roles before the first request.
	seedCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := identitySvc.SeedRoles(seedCtx); err != nil {
		return nil, fmt.Errorf("seed roles: %w", err)
	}

	// 7. Create Gin engine with custom middleware (not gin.Default()).
	gin.SetMode(cfg.Server.Mode)
	engine := gin.New()

	corsConfig := resolveCORSConfig(cfg.Server.Mode, cfg.Server.CORS.AllowOrigins)

	engine.Use(
		middleware.Recovery(log.Logger),
		middleware.RequestIDWithConfig(middleware.RequestIDConfig{
			TrustUpstream: false,
		}),
		middleware.Logger(log.Logger),
		middleware.CORSWithConfig(corsConfig),
	)

	// 8. Register all routes.
	err = RegisterRoutes(engine, &RouteDeps{
		Modules:        modules,
		Authentication: middleware.Authentication(tokens, identitySvc, log.Logger),
		DB:             db,
	})
	if err != nil {
		return nil, fmt.Errorf("register routes: %w", err)
	}

	success = true
	return &App{
		engine: engine,
		db:     db,
		logger: log,
		cfg:    cfg,
	}, nil
}

// setupStorage builds the configured storage provider.
func setupStorage(cfg *config.StorageConfig, log *slog.Logger) (storage.Provider, error) {
	switch cfg.Type {
	case "filesystem":
		return storage.NewFileSystemProvider(cfg.FileSystem.Folder, log)
	case "s3":
		return storage.NewS3Provider(storage.S3Options{
			Endpoint:  cfg.S3.Endpoint,
			Region:    cfg.S3.Region,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Bucket:    cfg.S3.Bucket,
		}, log)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

func resolveCORSConfig(mode string, configuredAllowOrigins []string) middleware.CORSConfig {
	corsConfig := middleware.DefaultCORSConfig()

	if len(configuredAllowOrigins) > 0 {
		corsConfig.AllowOrigins = configuredAllowOrigins
		return corsConfig
	}

	if mode == gin.ReleaseMode {
		corsConfig.AllowOrigins = []string{}
	}

	return corsConfig
}

// Run starts the HTTP server and blocks until a shutdown signal is received.
// It performs graceful shutdown with a 5-second timeout and closes the
// database connection.
func (a *App) Run() error {
	if a == nil {
		return errors.New("app is nil")
	}
	if a.cfg == nil {
		return errors.New("app config is nil")
	}
	if a.engine == nil {
		return errors.New("app engine is nil")
	}

	addr := fmt.Sprintf("%s:%d", a.cfg.Server.Host, a.cfg.Server.Port)
	srv := newHTTPServer(addr, a.engine)

	// Listen for SIGINT / SIGTERM.
	ctx, stop := notifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server started", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var runErr error

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		runErr = fmt.Errorf("server error: %w", err)
	}

	if runErr == nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("server shutdown error", slog.Any("error", err))
		}
	}

	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				a.logger.Error("database close error", slog.Any("error", err))
			} else {
				a.logger.Info("database connection closed")
			}
		}
	}

	a.logger.Info("server stopped")
	if err := a.logger.Close(); err != nil {
		slog.Error("logger close error", slog.Any("error", err))
	}

	return runErr
}
