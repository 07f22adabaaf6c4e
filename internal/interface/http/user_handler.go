package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	userapp "github.com/oksasatya/zero-sllm-auth/internal/application"
	"github.com/oksasatya/zero-sllm-auth/pkg/response"
	"github.com/oksasatya/zero-sllm-auth/pkg/validation"
)

type UserHandler struct {
	Svc    *userapp.Service
	Logger *logrus.Logger
}

func NewUserHandler(svc *userapp.Service, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

type registerRequest struct {
	Name     string `json:"name" binding:"required,max=255"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required"`
}

// Register handles POST /register and answers with the public user view.
func (h *UserHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.AbortWithError(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	u, err := h.Svc.Register(c.Request.Context(), userapp.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, userapp.ErrDuplicateEmail):
			response.AbortWithError(c, http.StatusBadRequest, "Email already registered", nil)
		case errors.Is(err, userapp.ErrInvalidInput):
			response.AbortWithError(c, http.StatusBadRequest, "invalid payload", err.Error())
		case errors.Is(err, userapp.ErrStoreUnavailable):
			response.AbortWithError(c, http.StatusServiceUnavailable, "service temporarily unavailable", nil)
		default:
			if h.Logger != nil {
				h.Logger.WithError(err).WithField("request_id", c.GetString("request_id")).Error("register failed")
			}
			response.AbortWithError(c, http.StatusInternalServerError, "something went wrong", nil)
		}
		return
	}

	c.JSON(http.StatusOK, u)
}
