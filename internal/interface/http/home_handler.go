package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/zero-sllm-auth/pkg/response"
)

const WelcomeMessage = "Welcome to Zero sLLM Auth API"

// Pinger reports whether the store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HomeHandler struct {
	Store  Pinger
	Logger *logrus.Logger
}

func NewHomeHandler(store Pinger, logger *logrus.Logger) *HomeHandler {
	return &HomeHandler{Store: store, Logger: logger}
}

func (h *HomeHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": WelcomeMessage})
}

func (h *HomeHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := h.Store.Ping(ctx); err != nil {
		if h.Logger != nil {
			h.Logger.WithError(err).Warn("health check: store unreachable")
		}
		response.AbortWithError(c, http.StatusServiceUnavailable, "store unreachable", nil)
		return
	}
	c.JSON(http.StatusOK, response.Success(c, http.StatusOK, gin.H{"status": "ok"}, "healthy", nil))
}
