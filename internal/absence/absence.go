package absence

import (
	"go-hris-workflow/internal/approval"
	"go-hris-workflow/internal/workflow"

	"github.com/gin-gonic/gin"
)

const (
	Kind   workflow.Kind = "absence"
	Prefix               = "AB"
)

func Definition() approval.Definition[Payload] {
	return approval.Definition[Payload]{
		Kind:      Kind,
		Prefix:    Prefix,
		Normalize: normalize,
	}
}

func RegisterRoutes(r *gin.RouterGroup, handler *approval.Handler[Payload], deps approval.RouteDeps) {
	approval.RegisterRoutes(r, "/absences", handler, deps)
}
