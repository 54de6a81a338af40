package workflow

import (
	"fmt"
	"strings"
	"time"

	"go-hris-workflow/internal/hierarchy"
	workflowerrors "go-hris-workflow/internal/workflow/errors"
)

// Engine applies workflow transitions. It never mutates the request it is given.
type Engine[P any] struct {
	table *hierarchy.Table
	now   func() time.Time
}

type Result[P any] struct {
	Request       *Request[P]
	Notifications []Notification
}

type ValidateInput struct {
	Decision     Decision
	Comment      string
	SignatureRef string
	Next         *Validator
}

func NewEngine[P any](table *hierarchy.Table) *Engine[P] {
	return &Engine[P]{table: table, now: time.Now}
}

func (e *Engine[P]) WithClock(now func() time.Time) *Engine[P] {
	return &Engine[P]{table: e.table, now: now}
}

func (e *Engine[P]) Table() *hierarchy.Table {
	return e.table
}

// CheckSubmit runs every precondition of Submit without building the new state.
func (e *Engine[P]) CheckSubmit(req *Request[P], actor Actor, first *Validator) error {
	if req == nil {
		return workflowerrors.ErrRequestNotFound
	}
	if actor.ID != req.RequesterID {
		return workflowerrors.ErrNotOwner
	}
	if req.Status != StatusDraft {
		return workflowerrors.ErrNotDraft
	}
	if first == nil {
		return workflowerrors.ErrValidatorNotFound
	}
	if strings.TrimSpace(req.RequesterSignature) == "" {
		return workflowerrors.ErrRequesterSignatureRequired
	}
	if first.ID == req.RequesterID {
		return workflowerrors.ErrSelfValidation
	}
	if expected := e.table.First(); first.Role != expected {
		return workflowerrors.PolicyViolation(expected, first.Role)
	}
	return nil
}

// Submit moves a draft to the first awaiting state and assigns hop #1.
func (e *Engine[P]) Submit(req *Request[P], actor Actor, first *Validator) (Result[P], error) {
	if err := e.CheckSubmit(req, actor, first); err != nil {
		return Result[P]{}, err
	}

	now := e.now().UTC()
	next := req.Clone()
	next.SubmittedAt = &now
	next.appendPendingEntry(*first, now)
	next.Status = AwaitingStatus(first.Role)
	next.UpdatedAt = now

	if err := next.CheckInvariants(); err != nil {
		return Result[P]{}, err
	}

	return Result[P]{
		Request:       next,
		Notifications: []Notification{assignedNotification(next, *first)},
	}, nil
}

// CheckValidate runs every precondition of Validate. SignatureRef is only
// checked for presence, so callers may pass the raw signature before storing it.
func (e *Engine[P]) CheckValidate(req *Request[P], actor Actor, in ValidateInput) error {
	if req == nil {
		return workflowerrors.ErrRequestNotFound
	}
	awaited, ok := req.Status.AwaitingRole()
	if !ok {
		return workflowerrors.ErrNotInFlight
	}
	if req.CurrentValidatorID == nil || *req.CurrentValidatorID != actor.ID {
		return workflowerrors.ErrNotCurrentValidator
	}
	if actor.Role != awaited {
		return workflowerrors.RoleDrift(awaited, actor.Role)
	}

	switch in.Decision {
	case DecisionReject:
		return nil
	case DecisionApprove:
	default:
		return workflowerrors.ErrInvalidDecision
	}

	if strings.TrimSpace(in.SignatureRef) == "" {
		return workflowerrors.ErrSignatureRequired
	}
	if in.Next == nil {
		return nil
	}

	expected, ok := e.table.NextAllowedRole(actor.Role)
	if !ok {
		return workflowerrors.EndOfChain(actor.Role, in.Next.Role)
	}
	if in.Next.Role != expected {
		return workflowerrors.PolicyViolation(expected, in.Next.Role)
	}
	if in.Next.ID == req.RequesterID {
		return workflowerrors.ErrSelfValidation
	}
	return nil
}

// Validate records the current validator's decision and either forwards,
// approves or rejects the request.
func (e *Engine[P]) Validate(req *Request[P], actor Actor, in ValidateInput) (Result[P], error) {
	if err := e.CheckValidate(req, actor, in); err != nil {
		return Result[P]{}, err
	}

	now := e.now().UTC()
	next := req.Clone()
	closed, _ := next.PendingEntry()

	if err := next.closePendingEntry(in.Decision, in.Comment, in.SignatureRef, now); err != nil {
		return Result[P]{}, err
	}
	next.UpdatedAt = now

	var n Notification
	switch {
	case in.Decision == DecisionReject:
		next.finish(StatusRejected, actor.ID, in.Comment, now)
		n = decidedNotification(next, closed, NotificationError, "rejetée")
	case in.Next != nil:
		next.appendPendingEntry(*in.Next, now)
		next.Status = AwaitingStatus(in.Next.Role)
		n = assignedNotification(next, *in.Next)
	default:
		next.finish(StatusApproved, actor.ID, in.Comment, now)
		n = decidedNotification(next, closed, NotificationSuccess, "approuvée")
	}

	if err := next.CheckInvariants(); err != nil {
		return Result[P]{}, err
	}

	return Result[P]{Request: next, Notifications: []Notification{n}}, nil
}

func assignedNotification[P any](req *Request[P], v Validator) Notification {
	return Notification{
		RecipientID: v.ID,
		Type:        NotificationInfo,
		Title:       "Nouvelle demande à valider",
		Message: fmt.Sprintf("La demande %s attend votre validation en tant que %s (étape %d)",
			req.Reference, v.Role.Label(), req.WorkflowStep),
		RequestID: req.ID,
		Kind:      req.Kind,
		Reference: req.Reference,
		Status:    req.Status,
		Step:      req.WorkflowStep,
	}
}

func decidedNotification[P any](req *Request[P], by Entry, t NotificationType, verb string) Notification {
	return Notification{
		RecipientID: req.RequesterID,
		Type:        t,
		Title:       "Demande " + verb,
		Message: fmt.Sprintf("Votre demande %s a été %s par %s (%s)",
			req.Reference, verb, by.ValidatorName, by.ValidatorRole.Label()),
		RequestID: req.ID,
		Kind:      req.Kind,
		Reference: req.Reference,
		Status:    req.Status,
		Step:      req.WorkflowStep,
	}
}
