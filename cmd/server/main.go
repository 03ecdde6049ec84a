package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GoodnessFx/GlowUp/internal/api"
	"github.com/GoodnessFx/GlowUp/internal/auth"
	"github.com/GoodnessFx/GlowUp/internal/config"
	"github.com/GoodnessFx/GlowUp/internal/handler"
	"github.com/GoodnessFx/GlowUp/internal/logger"
	"github.com/GoodnessFx/GlowUp/internal/middleware"
	"github.com/GoodnessFx/GlowUp/internal/services"
	"github.com/GoodnessFx/GlowUp/internal/store"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Could not load config: %v", err)
		os.Exit(1)
	}
	logger.Configure(cfg.Log.Debug, cfg.Log.NoColor)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Error("Server failed: %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	// Key-value store
	kv, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Store.Driver, err)
	}
	defer kv.Close()
	logger.Info("Store driver: %s", cfg.Store.Driver)

	provider, err := newProvider(cfg.Auth, kv)
	if err != nil {
		return err
	}
	logger.Info("Identity provider: %s", cfg.Auth.Provider)
	if !cfg.Points.ConsistentUpdates {
		logger.Warning("points.consistent_updates is off: concurrent updates may be lost")
	}

	profiles := services.NewProfileService(kv, cfg.Points)
	h := handler.New(
		services.NewUserService(provider, profiles),
		profiles,
		services.NewLeaderboardService(profiles),
		services.NewFeedService(kv, cfg.Points, profiles),
		cfg.Server.BasePath,
	)

	var limiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
		limiter.StartCleanup(ctx, time.Minute)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           api.SetupRouter(h, provider, limiter, cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Success("Server starting on port %s%s", cfg.Server.Port, cfg.Server.BasePath)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Success("Server stopped")
	return nil
}

func newProvider(cfg config.AuthConfig, kv store.Store) (auth.Provider, error) {
	switch cfg.Provider {
	case "local":
		return auth.NewLocalProvider(kv, cfg.JWTSecret, cfg.TokenTTL), nil
	case "supabase":
		p, err := auth.NewSupabaseProvider(cfg.SupabaseURL, cfg.SupabaseServiceKey, nil)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown auth provider %q", cfg.Provider)
	}
}
