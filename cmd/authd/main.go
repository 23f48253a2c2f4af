// Command authd runs the auth service: it wires Postgres, Redis, and
// SMTP into the engine and serves the HTTP API.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/lessonpath/authcore"
	"github.com/lessonpath/authcore/httpapi"
	"github.com/lessonpath/authcore/mailer"
	"github.com/lessonpath/authcore/postgres"
)

func main() {
	configPath := flag.String("config", ".env", "path to config file")
	flag.Parse()

	log, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(*configPath, log); err != nil {
		log.Fatal("authd exited", zap.Error(err))
	}
}

func run(configPath string, log *zap.Logger) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	if err := runMigrations(cfg); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	defer pool.Close()

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
	defer func() { _ = rdb.Close() }()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return err
	}

	engine, err := authcore.New().
		WithConfig(authcore.Config{
			Token: authcore.TokenConfig{
				AccessTTL:  cfg.AccessTTL,
				RefreshTTL: cfg.RefreshTTL,
				Secret:     []byte(cfg.JWTSecret),
				Issuer:     cfg.JWTIssuer,
			},
			Code: authcore.CodeConfig{
				TTL:    cfg.CodeTTL,
				Digits: cfg.CodeDigits,
			},
			RedisPrefix: cfg.RedisPrefix,
		}).
		WithRedis(rdb).
		WithUserProvider(postgres.NewUserStore(pool)).
		WithMailer(&mailer.SMTPSender{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.FromEmail,
			Log:      log,
		}).
		WithLogger(log).
		Build()
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: httpapi.NewRouter(engine, log),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("authd listening", zap.String("addr", cfg.ServerAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func runMigrations(cfg *appConfig) error {
	m, err := migrate.New("file://"+cfg.MigrationsPath, cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
