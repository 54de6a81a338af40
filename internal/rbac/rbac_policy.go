package rbac

import (
	"go-hris-workflow/internal/domain"
	"go-hris-workflow/internal/hierarchy"
)

// DefaultPolicies apply when the role_permissions table is empty.
func DefaultPolicies() []RolePermissionRow {
	everyone := []hierarchy.Role{
		hierarchy.RoleEmployee,
		hierarchy.RoleSuperior,
		hierarchy.RoleUnitDirector,
		hierarchy.RoleHRManager,
		hierarchy.RoleHRDirector,
		hierarchy.RoleAdmin,
	}
	validators := []hierarchy.Role{
		hierarchy.RoleSuperior,
		hierarchy.RoleUnitDirector,
		hierarchy.RoleHRManager,
		hierarchy.RoleHRDirector,
	}

	var rows []RolePermissionRow
	for _, r := range everyone {
		for _, act := range []string{domain.ActionCreate, domain.ActionRead, domain.ActionUpdate, domain.ActionSubmit, domain.ActionDelete} {
			rows = append(rows, RolePermissionRow{Role: string(r), Resource: domain.ResourceRequest, Action: act})
		}
		rows = append(rows, RolePermissionRow{Role: string(r), Resource: domain.ResourceWorkflow, Action: domain.ActionRead})
	}
	for _, r := range validators {
		rows = append(rows, RolePermissionRow{Role: string(r), Resource: domain.ResourceRequest, Action: domain.ActionValidate})
	}
	return rows
}
