package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/zero-sllm-auth/internal/interface/http"
)

type HomeModule struct {
	Handler *handlers.HomeHandler
}

func NewHomeModule(h *handlers.HomeHandler) *HomeModule { return &HomeModule{Handler: h} }

func (m *HomeModule) Register(rg *gin.RouterGroup) {
	rg.GET("/", m.Handler.Root)
	rg.GET("/healthz", m.Handler.Health)
}
