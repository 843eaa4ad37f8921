package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/mquernel/portfolio/backend/internal/config"
	"github.com/mquernel/portfolio/backend/internal/handler"
	"github.com/mquernel/portfolio/backend/internal/logging"
	"github.com/mquernel/portfolio/backend/internal/metrics"
	"github.com/mquernel/portfolio/backend/internal/notify"
	"github.com/mquernel/portfolio/backend/internal/repository"
	"github.com/mquernel/portfolio/backend/internal/service"
	"github.com/mquernel/portfolio/backend/pkg/auth"
)

func main() {
	cfg, err := config.Load(".env", "../.env")
	if err != nil {
		logging.Setup("INFO", "portfolio-api")
		logging.Fatal("invalid configuration", "error", err)
	}
	logging.Setup(cfg.LogLevel, "portfolio-api")

	ctx := context.Background()

	store, closeStore, err := openStore(ctx, cfg.Store)
	if err != nil {
		logging.Fatal("failed to open store", "driver", cfg.Store.Driver, "error", err)
	}
	defer closeStore()

	notifier := newNotifier(cfg.SMTP)
	contactService := service.NewContactService(store, notifier, cfg.SMTP.NotifyTimeout)

	limiter, closeLimiter := newRateLimiter(ctx, cfg.Limit)
	defer closeLimiter()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics.Register(reg)

	server := &http.Server{
		Addr: cfg.Addr(),
		Handler: newRouter(routerDeps{
			db:          store,
			contact:     contactService,
			verifier:    auth.NewIssuer(cfg.JWTSecret),
			limiter:     limiter,
			frontendURL: cfg.FrontendURL,
			metrics:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		}),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// 通知メールの送信時間を含める
		WriteTimeout: 10*time.Second + cfg.SMTP.NotifyTimeout,
	}

	go func() {
		slog.Info("server listening", "addr", server.Addr, "store", cfg.Store.Driver, "notifications", cfg.SMTP.Enabled())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second+cfg.SMTP.NotifyTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	slog.Info("server stopped")
}

// openStore は STORE_DRIVER に応じてリポジトリを生成する
func openStore(ctx context.Context, cfg config.StoreConfig) (repository.SubmissionRepository, func(), error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		repo, err := repository.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() { _ = repo.Close() }, nil
	default:
		pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewPgSubmissionRepository(pool), pool.Close, nil
	}
}

// newNotifier は SMTP 未設定の場合は通知を無効化する
func newNotifier(cfg config.SMTPConfig) notify.Notifier {
	if !cfg.Enabled() {
		slog.Warn("SMTP not configured, contact notifications disabled")
		return notify.NopNotifier{}
	}
	n, err := notify.NewSMTPNotifier(notify.SMTPConfig{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Username: cfg.Username,
		Password: cfg.Password,
		From:     cfg.From,
		To:       cfg.To,
		Timeout:  cfg.NotifyTimeout,
	})
	if err != nil {
		slog.Error("invalid SMTP configuration, contact notifications disabled", "error", err)
		return notify.NopNotifier{}
	}
	return n
}

// newRateLimiter uses Redis when REDIS_URL is reachable, memory otherwise.
func newRateLimiter(ctx context.Context, cfg config.RateLimitConfig) (*handler.RateLimiter, func()) {
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			slog.Error("invalid REDIS_URL, using in-memory rate limiter", "error", err)
		} else {
			client := redis.NewClient(opts)
			pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err := client.Ping(pingCtx).Err()
			cancel()
			if err == nil {
				rl := handler.NewRedisRateLimiter(client, cfg.PerMinute, cfg.Window).WithTrustedProxies(cfg.TrustedProxies)
				return rl, func() { _ = client.Close() }
			}
			slog.Warn("redis unreachable, using in-memory rate limiter", "error", err)
			_ = client.Close()
		}
	}
	rl := handler.NewRateLimiter(cfg.PerMinute).WithTrustedProxies(cfg.TrustedProxies)
	return rl, rl.Close
}
