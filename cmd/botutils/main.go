package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/aescanero/botutils/internal/application/health"
	"github.com/aescanero/botutils/internal/application/state"
	"github.com/aescanero/botutils/internal/config"
	"github.com/aescanero/botutils/pkg/adapters/metrics/prometheus"
	"github.com/aescanero/botutils/pkg/adapters/storage/memory"
	redisstorage "github.com/aescanero/botutils/pkg/adapters/storage/redis"
	"github.com/aescanero/botutils/pkg/api/grpc"
	"github.com/aescanero/botutils/pkg/api/http"
	"github.com/aescanero/botutils/pkg/ports"
	"github.com/aescanero/botutils/pkg/resolve"
)

var (
	// Version is set by build flags
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("starting bot support service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("state_endpoint", cfg.Bot.StateEndpoint),
		zap.String("openid_metadata", cfg.Bot.OpenIDMetadata),
		zap.Bool("app_id_set", cfg.Bot.AppID != ""))

	metricsCollector := prometheus.NewCollector()

	domain := resolve.NewDomain(
		resolve.WithLogger(logger.Named("resolve")),
		resolve.WithObserver(metricsCollector),
	)

	// Initialize state storage
	ctx := context.Background()
	storage, closeStorage := initStorage(ctx, cfg, logger)
	defer closeStorage()

	stateService := state.NewService(
		storage,
		domain,
		metricsCollector,
		logger.Named("state"),
		cfg.State.TTL,
	)
	if err := stateService.RegisterModule(state.BuiltinModule()); err != nil {
		logger.Fatal("failed to register builtin module", zap.Error(err))
	}

	healthMonitor := health.NewMonitor(
		domain,
		cfg.Health.CheckInterval,
		cfg.Health.MaxListeners,
		logger.Named("health"),
	)
	healthMonitor.Start()
	defer healthMonitor.Stop()

	// Initialize API servers
	httpServer := http.NewServer(&http.Config{
		Port:     cfg.HTTPPort,
		State:    stateService,
		Domain:   domain,
		Health:   healthMonitor,
		Settings: cfg.Redacted(),
		Logger:   logger,
	})

	grpcServer, err := grpc.NewServer(&grpc.Config{
		Port:   cfg.GRPCPort,
		Logger: logger,
	})
	if err != nil {
		logger.Fatal("failed to create gRPC server", zap.Error(err))
	}

	// Start servers
	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	go func() {
		if err := grpcServer.Start(); err != nil {
			logger.Fatal("gRPC server failed", zap.Error(err))
		}
	}()

	logger.Info("bot support service started",
		zap.Int("http_port", cfg.HTTPPort),
		zap.Int("grpc_port", cfg.GRPCPort))

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	logger.Info("received shutdown signal")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Timeouts.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	if err := grpcServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("gRPC server shutdown error", zap.Error(err))
	}

	logger.Info("bot support service shut down complete")
}

// initStorage selects the conversation state store.
// Table-style storage is backed by Redis; otherwise state stays in memory.
func initStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (ports.StateStorage, func()) {
	if !cfg.Bot.UseTableStorageForConversationState {
		logger.Info("using in-memory state storage")
		return memory.NewInMemoryStateStorage(), func() {}
	}

	redisClient, err := redisstorage.NewClient(cfg.Bot.TableStorageConnectionString, &goredis.Options{
		Addr:         cfg.Redis.Addr,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		MaxRetries:   cfg.Redis.MaxRetries,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		logger.Fatal("failed to create Redis client", zap.Error(err))
	}

	// Test Redis connection
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal("failed to connect to Redis", zap.Error(err))
	}
	logger.Info("connected to Redis", zap.String("addr", redisClient.Options().Addr))

	closeFn := func() {
		if err := redisClient.Close(); err != nil {
			logger.Error("Redis close error", zap.Error(err))
		}
	}

	// Expiry is applied by the state service
	return redisstorage.NewStateStorage(redisClient, 0, logger.Named("redis")), closeFn
}

// initLogger initializes the logger based on log level
func initLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(zapLevel)
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := config.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}

	return logger
}
