package user

import (
	"go-hris-workflow/internal/domain"
	"go-hris-workflow/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService middleware.RBACService,
	jwtSecret string,
	logger *zap.Logger,
) {
	wf := r.Group("/workflow")
	wf.Use(middleware.AuthMiddleware(jwtSecret))
	wf.Use(middleware.ContextLogger(logger))
	{
		wf.GET("/next-validators",
			middleware.RateLimitByUser(3, 10),
			middleware.RBACAuthorize(rbacService, domain.ResourceWorkflow, domain.ActionRead),
			handler.NextValidators,
		)
		wf.GET("/hierarchy",
			middleware.RBACAuthorize(rbacService, domain.ResourceWorkflow, domain.ActionRead),
			handler.Hierarchy,
		)
	}
}
