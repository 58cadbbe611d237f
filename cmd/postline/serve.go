// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Postline Contributors

package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/postline/postline/internal/api"
	"github.com/postline/postline/internal/auth"
	authpg "github.com/postline/postline/internal/auth/postgres"
	"github.com/postline/postline/internal/config"
	"github.com/postline/postline/internal/logging"
	"github.com/postline/postline/internal/observability"
	"github.com/postline/postline/internal/post"
	postpg "github.com/postline/postline/internal/post/postgres"
	"github.com/postline/postline/internal/session"
	"github.com/postline/postline/internal/store"
	"github.com/postline/postline/internal/web"
)

// observabilityStopTimeout bounds the metrics server shutdown.
const observabilityStopTimeout = 5 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Connect to PostgreSQL and Redis and serve the operation API until
interrupted. SIGINT and SIGTERM trigger a graceful shutdown.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err //nolint:wrapcheck // config errors carry their own code
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg)
		},
	}
}

func runServe(ctx context.Context, cfg *config.Config) error {
	logger := logging.SetDefault("postline", version, cfg.Log.Format, cfg.Log.Level)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.InfoContext(ctx, "starting postline",
		"addr", cfg.Server.Addr,
		"environment", cfg.Server.Environment,
		"version", version)

	pool, err := store.Connect(ctx, cfg.Database.URL, cfg.Database.ConnectTimeout)
	if err != nil {
		return err //nolint:wrapcheck // store errors carry their own code
	}
	defer pool.Close()
	logger.InfoContext(ctx, "connected to database")

	if cfg.Database.AutoMigrate {
		if err := autoMigrate(ctx, cfg.Database.URL, logger); err != nil {
			return err
		}
	}

	rdb, err := session.ConnectRedis(ctx, session.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, cfg.Database.ConnectTimeout)
	if err != nil {
		return err //nolint:wrapcheck // session errors carry their own code
	}
	defer func() { _ = rdb.Close() }()
	logger.InfoContext(ctx, "connected to redis", "addr", cfg.Redis.Addr)

	redisOpts := []session.RedisOption{session.WithRedisLogger(logger)}
	if cfg.Session.Touch {
		redisOpts = append(redisOpts, session.WithTouch(cfg.Session.TTL))
	}
	cookies, err := session.NewCookieStore(session.NewRedisStore(rdb, redisOpts...), session.CookieConfig{
		HashKey:  []byte(cfg.Session.Secret),
		BlockKey: []byte(cfg.Session.EncryptionKey),
		TTL:      cfg.Session.TTL,
		Secure:   cfg.Session.Secure,
		Logger:   logger,
	})
	if err != nil {
		return err //nolint:wrapcheck // session errors carry their own code
	}

	authSvc, err := auth.NewService(authpg.NewUserRepository(pool), auth.NewArgon2idHasher(), auth.WithLogger(logger))
	if err != nil {
		return err //nolint:wrapcheck // auth errors carry their own code
	}
	postSvc, err := post.NewService(postpg.NewPostRepository(pool), logger)
	if err != nil {
		return err //nolint:wrapcheck // post errors carry their own code
	}

	reg, err := api.NewDefaultRegistry(authSvc, postSvc)
	if err != nil {
		return err //nolint:wrapcheck // api errors carry their own code
	}
	dispatcher, err := api.NewDispatcher(reg, api.WithDispatcherLogger(logger))
	if err != nil {
		return err //nolint:wrapcheck // api errors carry their own code
	}

	webOpts := []web.Option{web.WithLogger(logger)}
	if cfg.Metrics.Addr != "" {
		obs := observability.NewServer(cfg.Metrics.Addr,
			observability.Check{Name: "postgres", Ping: pool.Ping},
			observability.Check{Name: "redis", Ping: func(ctx context.Context) error { return rdb.Ping(ctx).Err() }},
		)
		api.RegisterMetrics(obs.Registerer())
		auth.RegisterMetrics(obs.Registerer())

		obsErrs, err := obs.Start()
		if err != nil {
			return err //nolint:wrapcheck // observability errors carry their own code
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), observabilityStopTimeout)
			defer cancel()
			if err := obs.Stop(stopCtx); err != nil {
				logger.Warn("observability server shutdown failed", "error", err)
			}
		}()

		var cancel context.CancelFunc
		ctx, cancel = context.WithCancel(ctx)
		defer cancel()
		go func() {
			if err, ok := <-obsErrs; ok && err != nil {
				logger.Error("observability server failed, shutting down", "error", err)
				cancel()
			}
		}()

		webOpts = append(webOpts, web.WithMetrics(obs.Metrics()))
	}

	srv, err := web.NewServer(web.Config{
		Addr:            cfg.Server.Addr,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		CookieName:      cfg.Session.CookieName,
		AllowedOrigins:  cfg.CORS.AllowedOrigins,
	}, dispatcher, cookies, webOpts...)
	if err != nil {
		return err //nolint:wrapcheck // web errors carry their own code
	}

	if err := srv.Run(ctx); err != nil {
		return oops.Code("SERVE_FAILED").Wrap(err)
	}
	logger.Info("postline stopped")
	return nil
}

func autoMigrate(ctx context.Context, databaseURL string, logger *slog.Logger) error {
	m, err := newMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := m.Close(); closeErr != nil {
			logger.Warn("closing migrator failed", "error", closeErr)
		}
	}()

	if err := m.Up(); err != nil {
		return err //nolint:wrapcheck // store errors carry their own code
	}
	version, _, err := m.Version()
	if err != nil {
		return err //nolint:wrapcheck // store errors carry their own code
	}
	logger.InfoContext(ctx, "database schema current", "version", version)
	return nil
}
