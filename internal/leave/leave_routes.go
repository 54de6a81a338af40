package leave

import (
	"go-hris-workflow/internal/approval"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *approval.Handler[Payload],
	deps approval.RouteDeps,
) {
	approval.RegisterRoutes(r, "/leaves", handler, deps)
}
