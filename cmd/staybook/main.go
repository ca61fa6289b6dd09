package main

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

	"staybook/internal/app/bootstrap"
	roomsapp "staybook/internal/app/handlers/rooms"
	"staybook/internal/app/middleware"
	appoutbox "staybook/internal/app/outbox"
	authsvc "staybook/internal/app/services/auth"
	"staybook/internal/app/uow"
	domainauth "staybook/internal/domain/auth"
	domainuser "staybook/internal/domain/user"
	"staybook/internal/infra/broker/kafka"
	"staybook/internal/infra/config"
	mongostore "staybook/internal/infra/db/mongo"
	ginserver "staybook/internal/infra/http/gin"
	"staybook/internal/infra/obs"
	"staybook/internal/infra/outbox"
	"staybook/internal/infra/security"
	"staybook/internal/infra/storage/memory"
	redisstore "staybook/internal/infra/storage/redis"
	"staybook/internal/infra/storage/s3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env, cfg.LogLevel)

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("staybook stopped", "error", err)
		os.Exit(1)
	}
}

// storage is the driver-specific half of the application graph.
type storage struct {
	factory     uow.UoWFactory
	users       domainuser.Repository
	outbox      appoutbox.Outbox
	idempotency middleware.IdempotencyStore
	ready       func(ctx context.Context) error
	relay       *outbox.Store
	close       func(ctx context.Context)
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	store, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		store.close(closeCtx)
	}()

	sessions, err := openSessions(ctx, cfg, logger)
	if err != nil {
		return err
	}

	buses := bootstrap.Build(bootstrap.Deps{
		UoWFactory:  store.factory,
		Users:       store.users,
		Outbox:      store.outbox,
		Idempotency: store.idempotency,
		Uploader:    openUploader(cfg, logger),
		Currency:    cfg.Currency,
		Logger:      logger,
	})

	auth := &authsvc.Service{
		Users:      store.users,
		Sessions:   sessions,
		Passwords:  security.BcryptHasher{},
		Tokens:     security.RandomTokenGenerator{},
		SessionTTL: cfg.SessionTTL,
		Logger:     logger,
	}
	if cfg.AdminEmail != "" {
		if _, err := auth.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			return fmt.Errorf("bootstrap admin: %w", err)
		}
		logger.Info("admin account ready", "email", cfg.AdminEmail)
	}

	if err := loadRoomFixtures(ctx, buses.Commands, fixturesPath(cfg.RoomFixtures), logger); err != nil {
		logger.Warn("room fixtures load failed", "error", err)
	}

	if store.relay != nil && cfg.KafkaEnabled() {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
		if err != nil {
			return fmt.Errorf("kafka producer: %w", err)
		}
		defer producer.Close()
		worker := &outbox.Worker{
			Store:       store.relay,
			Producer:    producer,
			Interval:    cfg.OutboxPollInterval,
			TopicPrefix: cfg.KafkaTopicPrefix,
			Backoff:     cfg.RetryBackoff,
			Logger:      logger,
		}
		go func() {
			if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("outbox worker stopped", "error", err)
			}
		}()
		logger.Info("outbox relay started", "brokers", cfg.KafkaBrokers)
	}

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{Ready: store.ready}, ginserver.Handlers{
		Rooms:          ginserver.RoomHandler{Queries: buses.Queries, Logger: logger},
		Booking:        ginserver.BookingHandler{Commands: buses.Commands, Queries: buses.Queries, Logger: logger},
		Reviews:        ginserver.ReviewsHandler{Commands: buses.Commands, Logger: logger},
		Auth:           ginserver.AuthHandler{Service: auth, Logger: logger},
		Me:             ginserver.MeHandler{Queries: buses.Queries, Logger: logger},
		Admin:          ginserver.AdminHandler{Commands: buses.Commands, Queries: buses.Queries, Logger: logger},
		AuthMiddleware: ginserver.AuthMiddleware{Service: auth, Logger: logger}.Handle,
	})

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "storage", cfg.StorageDriver)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	logger.Info("HTTP server stopped")
	return nil
}

func openStorage(ctx context.Context, cfg config.Config, logger *slog.Logger) (storage, error) {
	if cfg.StorageDriver != config.DriverMongo {
		store := memory.NewStore()
		return storage{
			factory:     store.Factory(),
			users:       memory.NewUserRepository(),
			outbox:      memory.NewOutbox(logger),
			idempotency: memory.NewIdempotencyStore(cfg.IdempotencyTTL),
			ready:       func(context.Context) error { return nil },
			close:       func(context.Context) {},
		}, nil
	}

	client, err := mongostore.New(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return storage{}, err
	}
	store := mongostore.NewStore(client.DB, cfg.IdempotencyTTL)
	relay := outbox.NewStore(client.DB)
	for _, ensure := range []func(context.Context) error{store.EnsureIndexes, relay.EnsureIndexes} {
		if err := ensure(ctx); err != nil {
			_ = client.Close(ctx)
			return storage{}, err
		}
	}
	logger.Info("mongo connected", "database", cfg.MongoDB)
	return storage{
		factory:     store.Factory(),
		users:       store.Users,
		outbox:      relay,
		idempotency: store.Idempotency,
		ready:       client.Ping,
		relay:       relay,
		close: func(ctx context.Context) {
			if err := client.Close(ctx); err != nil {
				logger.Warn("mongo disconnect failed", "error", err)
			}
		},
	}, nil
}

func openSessions(ctx context.Context, cfg config.Config, logger *slog.Logger) (domainauth.SessionStore, error) {
	if cfg.RedisAddr == "" {
		return memory.NewSessionStore(), nil
	}
	client, err := redisstore.NewClient(ctx, redisstore.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("redis session store enabled", "addr", cfg.RedisAddr)
	return redisstore.NewSessionStore(client, ""), nil
}

func openUploader(cfg config.Config, logger *slog.Logger) roomsapp.PhotoUploader {
	if !cfg.S3Enabled() {
		return s3.NoopUploader{}
	}
	client, err := s3.NewClient(s3.Config{
		Endpoint:       cfg.S3Endpoint,
		PublicEndpoint: cfg.S3PublicEndpoint,
		AccessKey:      cfg.S3AccessKey,
		SecretKey:      cfg.S3SecretKey,
		Bucket:         cfg.S3Bucket,
		UseSSL:         cfg.S3UseSSL,
	}, logger)
	if err != nil {
		logger.Warn("s3 uploader disabled", "error", err)
		return s3.NoopUploader{}
	}
	return client
}
