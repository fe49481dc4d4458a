// Command account runs the simple-account HTTP service: signup, login,
// email verification, password reset and profile endpoints, plus optional
// static pages behind the access guard.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"
	"github.com/tendant/chi-demo/app"
	"github.com/tendant/simple-account/migrations"
	"github.com/tendant/simple-account/pkg/account"
	"github.com/tendant/simple-account/pkg/config"
	"github.com/tendant/simple-account/pkg/guard"
	"github.com/tendant/simple-account/pkg/login"
	"github.com/tendant/simple-account/pkg/notification"
	"github.com/tendant/simple-account/pkg/ratelimit"
	"github.com/tendant/simple-account/pkg/router"
	"github.com/tendant/simple-account/pkg/tokengenerator"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource: true,
		Level:     slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed loading config", "err", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid config", "err", err)
		os.Exit(1)
	}
	if cfg.Session.UsesDefaultSecret() {
		slog.Warn("JWT_SECRET is not set, using the development default")
	}

	ctx := context.Background()

	repo, closeRepo, err := newRepository(ctx, cfg)
	if err != nil {
		slog.Error("Failed creating account repository", "type", cfg.Persistence.Type, "err", err)
		os.Exit(1)
	}
	defer closeRepo()

	nm, err := notification.NewNotificationManager(
		notification.WithSMTP(cfg.Email.ToSMTPConfig()),
		notification.WithDefaultTemplates(),
	)
	if err != nil {
		slog.Error("Failed creating notification manager", "err", err)
		os.Exit(1)
	}

	hasher, err := login.NewPasswordHasher(cfg.PasswordHashAlgorithm)
	if err != nil {
		slog.Error("Failed creating password hasher", "err", err)
		os.Exit(1)
	}

	resendCounter, closeRedis := newResendCounter(ctx, cfg.Redis)
	defer closeRedis()

	rateLimit := cfg.RateLimit.ToMiddlewareConfig()
	routerConfig, services, err := router.NewConfig(router.Options{
		Repository:          repo,
		Notifier:            nm,
		JWTSecret:           cfg.Session.Secret,
		BaseURL:             cfg.BaseURL,
		Prefix:              cfg.APIPrefix,
		JWTIssuer:           cfg.Session.Issuer,
		SessionExpiry:       cfg.Session.Expiry,
		CookieSecure:        cfg.Session.CookieSecure,
		PasswordHasher:      hasher,
		RegistrationEnabled: &cfg.RegistrationEnabled,
		ResendCounter:       resendCounter,
		ResendLimit:         cfg.RateLimit.ResendLimit,
		ResendWindow:        cfg.RateLimit.ResendWindow,
		RateLimit:           &rateLimit,
	})
	if err != nil {
		slog.Error("Failed wiring services", "err", err)
		os.Exit(1)
	}

	server := app.DefaultApp()

	app.RoutesHealthz(server.R)
	app.RoutesHealthzReady(server.R)

	router.SetupRoutes(server.R, routerConfig)

	if cfg.StaticDir != "" {
		mountStatic(server.R, cfg.StaticDir, services.Sessions, cfg.Session.CookieSecure)
	}

	slog.Info("Account service ready", "persistence", cfg.Persistence.Type, "prefix", cfg.APIPrefix, "base_url", cfg.BaseURL)
	server.Run()
	services.PasswordReset.Wait()
}

func newRepository(ctx context.Context, cfg config.Config) (account.Repository, func(), error) {
	noop := func() {}

	switch cfg.Persistence.Type {
	case "postgres", "postgresql":
		pool, err := pgxpool.New(ctx, cfg.Database.ToDatabaseURL())
		if err != nil {
			return nil, noop, fmt.Errorf("create pool: %w", err)
		}
		if err := migrations.Up(ctx, stdlib.OpenDBFromPool(pool)); err != nil {
			pool.Close()
			return nil, noop, err
		}
		repo, err := account.NewRepository(cfg.Persistence.Type, account.RepositoryConfig{DB: pool})
		return repo, pool.Close, err

	case "mongo", "mongodb":
		client, err := mongo.Connect(options.Client().ApplyURI(cfg.Mongo.URI))
		if err != nil {
			return nil, noop, fmt.Errorf("connect mongo: %w", err)
		}
		disconnect := func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(ctx)
		}
		repo := account.NewMongoRepository(client.Database(cfg.Mongo.Database).Collection(cfg.Mongo.Collection))
		if err := repo.EnsureIndexes(ctx); err != nil {
			disconnect()
			return nil, noop, err
		}
		return repo, disconnect, nil

	default:
		repo, err := account.NewRepository(cfg.Persistence.Type, account.RepositoryConfig{DataDir: cfg.Persistence.DataDir})
		return repo, noop, err
	}
}

// newResendCounter uses Redis when configured and reachable, memory otherwise.
func newResendCounter(ctx context.Context, cfg config.RedisConfig) (ratelimit.Counter, func()) {
	if !cfg.Enabled() {
		return ratelimit.NewInMemoryCounter(), func() {}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		slog.Warn("Redis unreachable, counting resends in memory", "addr", cfg.Addr, "err", err)
		_ = rdb.Close()
		return ratelimit.NewInMemoryCounter(), func() {}
	}
	return ratelimit.NewRedisCounter(rdb, "account:resend:"), func() { _ = rdb.Close() }
}

func mountStatic(r chi.Router, dir string, sessions *tokengenerator.JwtTokenGenerator, secure bool) {
	g := guard.Middleware(guard.DefaultPolicy(),
		guard.WithSessionValidator(sessions.ValidSession),
		guard.WithCookieSetter(tokengenerator.NewCookieSetter(secure)),
	)
	r.With(g).Handle("/*", http.FileServer(guard.NewPageDir(http.Dir(dir))))
	slog.Info("Serving static pages", "dir", dir)
}
