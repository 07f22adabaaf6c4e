package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/oksasatya/zero-sllm-auth/config"
	"github.com/oksasatya/zero-sllm-auth/internal/application"
	"github.com/oksasatya/zero-sllm-auth/internal/domain/entity"
	"github.com/oksasatya/zero-sllm-auth/internal/domain/repository"
	"github.com/oksasatya/zero-sllm-auth/internal/infrastructure/migrations"
	pginfra "github.com/oksasatya/zero-sllm-auth/internal/infrastructure/postgres"
	"github.com/oksasatya/zero-sllm-auth/internal/infrastructure/sqlite"
	"github.com/oksasatya/zero-sllm-auth/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)
	ctx := context.Background()

	var users repository.UserRepository
	if cfg.UsesSQLite() {
		if err := migrations.Run(migrations.DialectSQLite, cfg.SQLitePath(), cfg.MigrationsDir, logger); err != nil {
			log.Fatalf("migration failed: %v", err)
		}
		db, err := sqlite.Open(ctx, cfg.SQLitePath())
		if err != nil {
			log.Fatalf("failed to open db: %v", err)
		}
		defer func() { _ = db.Close() }()
		users = db.Users()
	} else {
		if err := migrations.Run(migrations.DialectPostgres, cfg.StoreDSN(), cfg.MigrationsDir, logger); err != nil {
			log.Fatalf("migration failed: %v", err)
		}
		pool, err := pginfra.NewPool(ctx, cfg.StoreDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
		if err != nil {
			log.Fatalf("failed to connect to postgres: %v", err)
		}
		defer pool.Close()
		users = pginfra.NewUserRepository(pool)
	}

	svc := application.NewService(users, logger, nil, cfg.BcryptCost, cfg.DBQueryTimeout)
	u, err := svc.Register(ctx, application.RegisterInput{
		Name:     cfg.SeedName,
		Email:    cfg.SeedEmail,
		Password: cfg.SeedPassword,
	})
	switch {
	case errors.Is(err, application.ErrDuplicateEmail):
		fmt.Printf("already seeded: email=%s\n", cfg.SeedEmail)
	case err != nil:
		log.Fatalf("failed to seed user: %v", err)
	default:
		fmt.Println(seededLine(u))
	}
}

// seededLine reports the created user without any credential.
func seededLine(u *entity.PublicUser) string {
	return fmt.Sprintf("seeded user: id=%d email=%s", u.ID, u.Email)
}
