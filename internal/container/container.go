package container

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/zero-sllm-auth/config"
	"github.com/oksasatya/zero-sllm-auth/internal/application"
	"github.com/oksasatya/zero-sllm-auth/internal/domain/repository"
)

// Store is the process-wide handle behind the user repository.
type Store interface {
	Ping(ctx context.Context) error
}

// Container carries the components built once in main. It is passed
// explicitly to the router so nothing reaches for package-level state.
type Container struct {
	Config *config.Config
	Logger *logrus.Logger
	Store  Store
	Users  repository.UserRepository
	Events application.EventPublisher // nil when events are disabled
}

func New(cfg *config.Config, logger *logrus.Logger, store Store, users repository.UserRepository, events application.EventPublisher) *Container {
	return &Container{Config: cfg, Logger: logger, Store: store, Users: users, Events: events}
}

// UserService builds the registration service from the container's parts.
func (c *Container) UserService() *application.Service {
	return application.NewService(c.Users, c.Logger, c.Events, c.Config.BcryptCost, c.Config.DBQueryTimeout)
}
