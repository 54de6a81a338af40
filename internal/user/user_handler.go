package user

import (
	"net/http"

	"go-hris-workflow/internal/hierarchy"
	"go-hris-workflow/internal/shared/apperror"
	"go-hris-workflow/internal/shared/response"
	usererrors "go-hris-workflow/internal/user/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("user.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("user.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("workflow directory request failed",
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.Error(err),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) NextValidators(c *gin.Context) {
	role, err := hierarchy.ParseRole(c.GetString("role"))
	if err != nil {
		h.writeServiceError(c, usererrors.ErrInvalidRole)
		return
	}

	stage := c.DefaultQuery("stage", StageForward)
	if stage != StageForward && stage != StageSubmit {
		h.writeServiceError(c, apperror.InvalidField("Stage"))
		return
	}

	resp, err := h.service.NextValidators(c.Request.Context(), role, stage)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Hierarchy(c *gin.Context) {
	response.Success(c, http.StatusOK, h.service.Hierarchy(), nil)
}
