package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/zero-sllm-auth/config"
	"github.com/oksasatya/zero-sllm-auth/internal/application"
	"github.com/oksasatya/zero-sllm-auth/internal/container"
	"github.com/oksasatya/zero-sllm-auth/internal/infrastructure/migrations"
	pginfra "github.com/oksasatya/zero-sllm-auth/internal/infrastructure/postgres"
	"github.com/oksasatya/zero-sllm-auth/internal/infrastructure/sqlite"
	"github.com/oksasatya/zero-sllm-auth/internal/router"
	"github.com/oksasatya/zero-sllm-auth/pkg/helpers"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	gin.SetMode(cfg.GinMode)

	ctx := context.Background()

	c, closeStore, err := openContainer(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to open user store")
	}
	defer closeStore()

	r := router.NewEngine(c)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		logger.Infof("server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Fatalf("server forced to shutdown: %v", err)
	}
	logger.Info("server exited properly")
}

// openContainer migrates and opens the configured store, connects the optional
// event publisher and returns a func that releases all of it.
func openContainer(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*container.Container, func(), error) {
	var (
		closers []io.Closer
		c       *container.Container
	)
	release := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i].Close()
		}
	}

	if cfg.UsesSQLite() {
		path := cfg.SQLitePath()
		if err := migrations.Run(migrations.DialectSQLite, path, cfg.MigrationsDir, logger); err != nil {
			return nil, nil, err
		}
		db, err := sqlite.Open(ctx, path)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, db)
		c = container.New(cfg, logger, db, db.Users(), nil)
	} else {
		dsn := cfg.StoreDSN()
		if err := migrations.Run(migrations.DialectPostgres, dsn, cfg.MigrationsDir, logger); err != nil {
			return nil, nil, err
		}
		pool, err := pginfra.NewPool(ctx, dsn, cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, closerFunc(func() error { pool.Close(); return nil }))
		c = container.New(cfg, logger, pool, pginfra.NewUserRepository(pool), nil)
	}

	if cfg.EventsEnabled() {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEventsQueue)
		if err != nil {
			// Registration does not depend on the broker.
			helpers.LogError(logger, "rabbitmq unavailable, registration events disabled", err, logrus.Fields{"queue": cfg.RabbitMQEventsQueue})
		} else {
			closers = append(closers, closerFunc(func() error { pub.Close(); return nil }))
			c.Events = application.EventPublisher(pub)
		}
	}

	return c, release, nil
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }
