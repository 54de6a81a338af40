package approval

import (
	"go-hris-workflow/internal/domain"
	"go-hris-workflow/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type RouteDeps struct {
	RBAC      middleware.RBACService
	JWTSecret string
	Redis     *redis.Client
	Logger    *zap.Logger
}

// RegisterRoutes mounts one request kind under path, e.g. "/leaves".
func RegisterRoutes[P Payload](r *gin.RouterGroup, path string, handler *Handler[P], deps RouteDeps) {
	g := r.Group(path)
	g.Use(middleware.AuthMiddleware(deps.JWTSecret))
	g.Use(middleware.ContextLogger(deps.Logger))

	idempotent := middleware.Idempotency(deps.Redis, deps.Logger)
	{
		g.POST("",
			middleware.RateLimitByUser(5, 10),
			middleware.RBACAuthorize(deps.RBAC, domain.ResourceRequest, domain.ActionCreate),
			idempotent,
			handler.Create,
		)
		g.GET("/pending",
			middleware.RBACAuthorize(deps.RBAC, domain.ResourceRequest, domain.ActionValidate),
			handler.Pending,
		)
		g.GET("/:id",
			middleware.RBACAuthorize(deps.RBAC, domain.ResourceRequest, domain.ActionRead),
			handler.GetByID,
		)
		g.GET("/mine",
			middleware.RBACAuthorize(deps.RBAC, domain.ResourceRequest, domain.ActionRead),
			handler.Mine,
		)
		g.PUT("/:id",
			middleware.RateLimitByUser(5, 10),
			middleware.RBACAuthorize(deps.RBAC, domain.ResourceRequest, domain.ActionUpdate),
			handler.Update,
		)
		g.GET("/:id/history",
			middleware.RBACAuthorize(deps.RBAC, domain.ResourceRequest, domain.ActionRead),
			handler.History,
		)
		g.DELETE("/:id",
			middleware.RBACAuthorize(deps.RBAC, domain.ResourceRequest, domain.ActionDelete),
			handler.Delete,
		)
		g.POST("/:id/submit",
			middleware.RateLimitByUser(5, 10),
			middleware.RBACAuthorize(deps.RBAC, domain.ResourceRequest, domain.ActionSubmit),
			idempotent,
			handler.Submit,
		)
		g.POST("/:id/validate",
			middleware.RateLimitByUser(5, 10),
			middleware.RBACAuthorize(deps.RBAC, domain.ResourceRequest, domain.ActionValidate),
			idempotent,
			handler.Validate,
		)
	}
}
