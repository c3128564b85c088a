package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/example/ecolife/internal/auth"
	"github.com/example/ecolife/internal/classifier"
	"github.com/example/ecolife/internal/config"
	"github.com/example/ecolife/internal/handlers"
	"github.com/example/ecolife/internal/logging"
	"github.com/example/ecolife/internal/repository"
	"github.com/example/ecolife/internal/usecase"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	logger, err := logging.NewLogger()
	if err != nil {
		panic(err)
	}
	defer logger.Sync() //nolint:errcheck

	cfg := config.LoadServer()

	db := initDatabase(ctx, cfg.DatabaseDSN, logger)
	repo := repository.NewUserRepository(db)
	if err := repo.AutoMigrate(ctx); err != nil {
		logger.Fatal("auto migrate failed", zap.Error(err))
	}

	redisCtx, redisCancel := context.WithTimeout(ctx, 5*time.Second)
	defer redisCancel()
	redisClient := initRedis(redisCtx, cfg.RedisAddr, logger)

	cls := buildClassifier(cfg.ClassifierAddr, logger)

	cache := usecase.NewRedisCache(redisClient)
	accounts := usecase.NewAccountUseCase(repo, cfg.JWTSecret, logger)
	scans := usecase.NewScanUseCase(repo, cache, cls, logger)

	r := gin.Default()
	handlers.RegisterRoutes(r, accounts, scans, auth.JWTMiddleware(cfg.JWTSecret))

	server := &http.Server{
		Addr:    cfg.Addr,
		Handler: r,
	}

	logger.Info("EcoLife API listening", zap.String("addr", cfg.Addr))
	if err := serve(server, 15*time.Second, logger); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

// buildClassifier points at the external classifier service when one is
// configured and falls back to the deterministic heuristic otherwise.
func buildClassifier(addr string, logger *zap.Logger) classifier.Client {
	if addr != "" {
		logger.Info("using remote classifier", zap.String("addr", addr))
		return classifier.NewHTTPClient(addr, logger)
	}
	logger.Warn("no classifier configured, using heuristic fallback")
	return classifier.NewHeuristic()
}

func initDatabase(ctx context.Context, dsn string, zapLogger *zap.Logger) *gorm.DB {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Warn)})
	if err != nil {
		zapLogger.Fatal("failed to connect to database", zap.Error(err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		zapLogger.Fatal("failed to access db handle", zap.Error(err))
	}
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.PingContext(ctx); err != nil {
		zapLogger.Fatal("database ping failed", zap.Error(err))
	}

	return db
}

func initRedis(ctx context.Context, addr string, zapLogger *zap.Logger) *redis.Client {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	return client
}

// serve runs the server until it fails or a shutdown signal arrives, then
// drains within the shutdown timeout.
func serve(server *http.Server, shutdownTimeout time.Duration, logger *zap.Logger) error {
	return serveWithOptions(server, shutdownTimeout, logger, nil, nil)
}

// serveWithOptions is the injectable core of serve. Tests pass their own
// listener and signal channel.
func serveWithOptions(server *http.Server, shutdownTimeout time.Duration, logger *zap.Logger, listener net.Listener, signalCh <-chan os.Signal) error {
	errCh := make(chan error, 1)
	go func() {
		var err error
		if listener != nil {
			err = server.Serve(listener)
		} else {
			err = server.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		errCh <- err
	}()

	var (
		sigCh       <-chan os.Signal
		stopSignals func()
	)
	if signalCh != nil {
		sigCh = signalCh
		stopSignals = func() {}
	} else {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
		sigCh = ch
		stopSignals = func() { signal.Stop(ch) }
	}
	defer stopSignals()

	select {
	case err := <-errCh:
		return err
	case sig, ok := <-sigCh:
		if !ok {
			return <-errCh
		}
		logger.Info("received shutdown signal", zap.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return <-errCh
	}
}
