package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/booruq/internal/config"
	dbRedis "github.com/kailas-cloud/booruq/internal/db/redis"
	logpkg "github.com/kailas-cloud/booruq/internal/logger"
	"github.com/kailas-cloud/booruq/internal/metrics"
	chiTransport "github.com/kailas-cloud/booruq/internal/transport/chi"
	healthuc "github.com/kailas-cloud/booruq/internal/usecase/health"
	"github.com/kailas-cloud/booruq/internal/version"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Serves the match, validate and filter endpoints over HTTP.
Filters come from the config file and, when storage is configured,
from Redis or Valkey.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	env := currentEnv()
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	level := cfg.Logging.Level
	if logLevel != "" {
		level = logLevel
	}
	logger, err := logpkg.NewLogger(env, level)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting booruq API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("filters", len(cfg.Filters)),
	)

	metrics.RegisterQueryMetrics()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	matchSvc, repo, err := newEngine(cfg, logger)
	if err != nil {
		return err
	}
	healthSvc := healthuc.New(matchSvc, matchSvc)

	if cfg.Storage.Enabled() {
		store, err := openStore(ctx, cfg.Storage, logger)
		if err != nil {
			return err
		}
		defer store.Close()

		loadCtx := logpkg.With(logpkg.ContextWithLogger(ctx, logger), zap.String("driver", cfg.Storage.Driver))
		if err := repo.WithKeyPrefix(cfg.Storage.KeyPrefix).WithStore(loadCtx, store); err != nil {
			return fmt.Errorf("load stored filters: %w", err)
		}
		healthSvc.WithStore(store)
	}

	server := chiTransport.NewServer(matchSvc, healthSvc, logger)
	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      chiTransport.NewRouter(server, cfg.Auth.APIKeys, logger),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case <-ctx.Done():
	}
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
	return nil
}

// openStore connects to Redis or Valkey and waits until it answers PING.
func openStore(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (*dbRedis.Store, error) {
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:      cfg.Addrs,
		Username:   cfg.Username,
		Password:   cfg.Password,
		DB:         cfg.DB,
		Standalone: cfg.Standalone,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Driver, err)
	}

	timeout := time.Duration(cfg.ReadinessTimeoutSec) * time.Second
	if err := store.WaitForReady(ctx, timeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("%s not ready: %w", cfg.Driver, err)
	}
	logger.Info("Filter store ready", zap.String("driver", cfg.Driver), zap.Strings("addrs", cfg.Addrs))
	return store, nil
}
