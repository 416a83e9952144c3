package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/njprem/PlaceBook_BackEnd/internal/config"
	"github.com/njprem/PlaceBook_BackEnd/internal/logging"
	"github.com/njprem/PlaceBook_BackEnd/internal/media"
	"github.com/njprem/PlaceBook_BackEnd/internal/repository/cache"
	"github.com/njprem/PlaceBook_BackEnd/internal/repository/memory"
	objectstore "github.com/njprem/PlaceBook_BackEnd/internal/repository/minio"
	"github.com/njprem/PlaceBook_BackEnd/internal/repository/ports"
	"github.com/njprem/PlaceBook_BackEnd/internal/repository/postgres"
	"github.com/njprem/PlaceBook_BackEnd/internal/service"
	httpx "github.com/njprem/PlaceBook_BackEnd/internal/transport/http"
	"github.com/njprem/PlaceBook_BackEnd/internal/transport/events"
	"github.com/njprem/PlaceBook_BackEnd/internal/util"
)

const shutdownTimeout = 10 * time.Second

type repositories struct {
	places   ports.PlaceRepository
	listings ports.ListingRepository
	users    ports.UserRepository
	ledger   ports.LedgerRepository
	sessions ports.SessionRepository
	close    func()
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("placebook-api: %v", err)
	}
}

func run() error {
	cfg := config.Load()

	logger, flush, err := logging.New(cfg.LogLevel, cfg.LogstashTCPAddr)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer flush()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repos, err := openRepositories(cfg, logger)
	if err != nil {
		return err
	}
	defer repos.close()

	var placeCache ports.PlaceCache
	if cfg.RedisAddr != "" {
		c, err := cache.NewPlaceCache(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.PlaceCacheTTL)
		if err != nil {
			logger.Warn("place cache disabled", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		} else {
			defer c.Close()
			placeCache = c
		}
	}

	var publisher ports.EventPublisher = events.NopPublisher{}
	if cfg.NatsURL != "" {
		p, err := events.NewNATSPublisher(cfg.NatsURL)
		if err != nil {
			logger.Warn("event publishing disabled", zap.String("url", cfg.NatsURL), zap.Error(err))
		} else {
			defer p.Close()
			publisher = p
		}
	}

	var avatars ports.ObjectStorage
	if cfg.MinIOEndpoint != "" {
		client, err := objectstore.NewClient(cfg.MinIOEndpoint, cfg.MinIOAccessKey, cfg.MinIOSecretKey, cfg.MinIOUseSSL)
		if err != nil {
			return fmt.Errorf("init minio: %w", err)
		}
		storage := objectstore.NewStorage(client, cfg.MinIOPublicURL)
		if err := storage.EnsureBucket(ctx, cfg.MinIOBucketProfile); err != nil {
			return fmt.Errorf("ensure bucket %s: %w", cfg.MinIOBucketProfile, err)
		}
		avatars = storage
	}

	jwt := util.NewJWTManager(cfg.JWTSecret, cfg.SessionTTL)
	services := httpx.Services{
		Gate: service.NewGate(jwt, repos.sessions, repos.users),
		Auth: service.NewAuthService(repos.users, repos.sessions, jwt, logger, service.AuthServiceConfig{
			GoogleAudience: cfg.GoogleAudience,
		}),
		Listings: service.NewListingService(repos.listings, repos.users, placeCache, publisher, logger, service.ListingServiceConfig{
			AllowedCategories: cfg.PlaceAllowedCategories,
		}),
		Places: service.NewPlaceService(repos.places, placeCache, publisher, logger, service.PlaceServiceConfig{
			AllowedCategories: cfg.PlaceAllowedCategories,
		}),
		Ledger: service.NewLedgerService(repos.ledger, logger),
		Profiles: service.NewProfileService(repos.users, repos.ledger, avatars, media.NewInspector(cfg.ProfileImageMaxBytes, 0), logger, service.ProfileServiceConfig{
			Bucket: cfg.MinIOBucketProfile,
		}),
	}

	e := httpx.NewRouter(httpx.RouterConfig{
		AllowOrigins: cfg.AllowOrigins,
		BodyLimit:    fmt.Sprintf("%dB", cfg.ProfileImageMaxBytes+1<<20),
		Logger:       logger,
	})
	httpx.RegisterRoutes(e, services, logger)
	httpx.RegisterSwagger(e, "docs/swagger.yaml", logger)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("port", cfg.Port), zap.String("storage", cfg.StorageDriver))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func openRepositories(cfg config.Config, logger *zap.Logger) (*repositories, error) {
	switch cfg.StorageDriver {
	case config.StorageDriverMemory:
		logger.Warn("using in-memory storage; data is lost on restart")
		store := memory.NewStore()
		users := store.Users()
		return &repositories{
			places:   store.Places(),
			listings: store.Listings(),
			users:    users,
			ledger:   users,
			sessions: store.Sessions(),
			close:    func() {},
		}, nil
	case config.StorageDriverPostgres:
		db, err := postgres.New(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if cfg.DatabaseAutoMigrate {
			if err := postgres.Migrate(db); err != nil {
				_ = db.Close()
				return nil, fmt.Errorf("migrate: %w", err)
			}
		}
		users := postgres.NewUserRepo(db)
		return &repositories{
			places:   postgres.NewPlaceRepo(db),
			listings: postgres.NewListingRepo(db),
			users:    users,
			ledger:   users,
			sessions: postgres.NewSessionRepo(db),
			close:    func() { _ = db.Close() },
		}, nil
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}
}
