package leave

import (
	"go-hris-workflow/internal/approval"
	"go-hris-workflow/internal/workflow"
)

const (
	Kind   workflow.Kind = "leave"
	Prefix               = "LV"
)

func Definition() approval.Definition[Payload] {
	return approval.Definition[Payload]{
		Kind:      Kind,
		Prefix:    Prefix,
		Normalize: normalize,
	}
}
