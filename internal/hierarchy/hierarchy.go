package hierarchy

import (
	"fmt"
	"strings"
)

type Role string

const (
	RoleEmployee     Role = "EMPLOYEE"
	RoleSuperior     Role = "SUPERIOR"
	RoleUnitDirector Role = "UNIT_DIRECTOR"
	RoleHRManager    Role = "HR_MANAGER"
	RoleHRDirector   Role = "HR_DIRECTOR"
	RoleAdmin        Role = "ADMIN"
)

var labels = map[Role]string{
	RoleEmployee:     "Employé",
	RoleSuperior:     "Superieur",
	RoleUnitDirector: "Directeur Unité",
	RoleHRManager:    "Responsable RH",
	RoleHRDirector:   "Directeur RH",
	RoleAdmin:        "Administrateur",
}

// Label returns the display name of a role, or the raw code when unknown.
func (r Role) Label() string {
	if l, ok := labels[r]; ok {
		return l
	}
	return string(r)
}

func (r Role) Valid() bool {
	_, ok := labels[r]
	return ok
}

func ParseRole(raw string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(raw)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", raw)
	}
	return r, nil
}

var DefaultChain = []Role{RoleSuperior, RoleUnitDirector, RoleHRManager, RoleHRDirector}

// Table is the ordered approval chain. Each role has at most one legal successor.
type Table struct {
	chain []Role
	next  map[Role]Role
}

func NewTable(chain []Role) (*Table, error) {
	if len(chain) == 0 {
		return nil, fmt.Errorf("approval chain is empty")
	}

	next := make(map[Role]Role, len(chain))
	seen := make(map[Role]bool, len(chain))
	for i, r := range chain {
		if !r.Valid() {
			return nil, fmt.Errorf("unknown role %q in approval chain", r)
		}
		if r == RoleEmployee || r == RoleAdmin {
			return nil, fmt.Errorf("role %s cannot be part of the approval chain", r)
		}
		if seen[r] {
			return nil, fmt.Errorf("role %s appears twice in approval chain", r)
		}
		seen[r] = true
		if i+1 < len(chain) {
			next[r] = chain[i+1]
		}
	}

	c := make([]Role, len(chain))
	copy(c, chain)
	return &Table{chain: c, next: next}, nil
}

// ParseTable builds a table from role codes as read from configuration.
func ParseTable(codes []string) (*Table, error) {
	roles := make([]Role, 0, len(codes))
	for _, code := range codes {
		r, err := ParseRole(code)
		if err != nil {
			return nil, err
		}
		roles = append(roles, r)
	}
	return NewTable(roles)
}

func Default() *Table {
	t, _ := NewTable(DefaultChain)
	return t
}

// NextAllowedRole returns the only role that may follow current. The bool is
// false for the last role of the chain and for roles outside it.
func (t *Table) NextAllowedRole(current Role) (Role, bool) {
	r, ok := t.next[current]
	return r, ok
}

func (t *Table) First() Role {
	return t.chain[0]
}

func (t *Table) Contains(r Role) bool {
	for _, c := range t.chain {
		if c == r {
			return true
		}
	}
	return false
}

func (t *Table) Roles() []Role {
	out := make([]Role, len(t.chain))
	copy(out, t.chain)
	return out
}
