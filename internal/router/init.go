package router

import (
	"github.com/oksasatya/zero-sllm-auth/internal/container"
	handlers "github.com/oksasatya/zero-sllm-auth/internal/interface/http"
	"github.com/oksasatya/zero-sllm-auth/internal/router/modules"
)

// InitModules wires every feature module from the container into the registry.
// Call once during startup, before RegisterAll.
func InitModules(r *Registry, c *container.Container) {
	home := handlers.NewHomeHandler(c.Store, c.Logger)
	users := handlers.NewUserHandler(c.UserService(), c.Logger)

	r.Add(modules.NewHomeModule(home))
	r.Add(modules.NewUserModule(users))
	if c.Config.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
