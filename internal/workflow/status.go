package workflow

import (
	"strings"

	"go-hris-workflow/internal/hierarchy"
)

type Status string

const (
	StatusDraft    Status = "DRAFT"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"

	awaitingPrefix = "AWAITING_"
)

// AwaitingStatus is the in-flight status of a request waiting on a validator holding role.
func AwaitingStatus(role hierarchy.Role) Status {
	return Status(awaitingPrefix + string(role))
}

func (s Status) AwaitingRole() (hierarchy.Role, bool) {
	if !strings.HasPrefix(string(s), awaitingPrefix) {
		return "", false
	}
	r := hierarchy.Role(strings.TrimPrefix(string(s), awaitingPrefix))
	return r, r.Valid()
}

// ParseStatus accepts DRAFT, APPROVED, REJECTED and AWAITING_<ROLE> for a known role.
func ParseStatus(raw string) (Status, bool) {
	st := Status(strings.ToUpper(strings.TrimSpace(raw)))
	switch st {
	case StatusDraft, StatusApproved, StatusRejected:
		return st, true
	}
	if st.InFlight() {
		return st, true
	}
	return "", false
}

func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

func (s Status) InFlight() bool {
	_, ok := s.AwaitingRole()
	return ok
}

type Decision string

const (
	DecisionApprove Decision = "APPROVE"
	DecisionReject  Decision = "REJECT"
)

func ParseDecision(raw string) (Decision, bool) {
	switch Decision(strings.ToUpper(strings.TrimSpace(raw))) {
	case DecisionApprove:
		return DecisionApprove, true
	case DecisionReject:
		return DecisionReject, true
	default:
		return "", false
	}
}

type Kind string
