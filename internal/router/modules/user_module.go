package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/zero-sllm-auth/internal/interface/http"
)

// UserModule mounts the registration route:
//
//	POST /register
type UserModule struct {
	Handler *handlers.UserHandler
}

func NewUserModule(h *handlers.UserHandler) *UserModule {
	return &UserModule{Handler: h}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	rg.POST("/register", m.Handler.Register)
}
