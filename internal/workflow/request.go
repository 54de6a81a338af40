package workflow

import (
	"fmt"
	"time"

	workflowerrors "go-hris-workflow/internal/workflow/errors"

	"github.com/google/uuid"
)

// Request is one approval case. Payload is opaque to the engine.
type Request[P any] struct {
	ID                 uuid.UUID
	Kind               Kind
	Reference          string
	RequesterID        uuid.UUID
	Payload            P
	Status             Status
	CurrentValidatorID *uuid.UUID
	WorkflowStep       int
	History            []Entry
	RequesterSignature string
	SubmittedAt        *time.Time
	FinalValidatorID   *uuid.UUID
	FinalDecisionAt    *time.Time
	FinalComment       string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Clone copies the workflow state. Payload is copied by value.
func (r *Request[P]) Clone() *Request[P] {
	out := *r
	out.CurrentValidatorID = cloneUUID(r.CurrentValidatorID)
	out.FinalValidatorID = cloneUUID(r.FinalValidatorID)
	out.SubmittedAt = cloneTime(r.SubmittedAt)
	out.FinalDecisionAt = cloneTime(r.FinalDecisionAt)
	out.History = make([]Entry, len(r.History))
	for i, e := range r.History {
		out.History[i] = e.clone()
	}
	return &out
}

// PendingEntry returns the hop awaiting a decision, if any.
func (r *Request[P]) PendingEntry() (Entry, bool) {
	if r.WorkflowStep == 0 || r.WorkflowStep > len(r.History) {
		return Entry{}, false
	}
	e := r.History[r.WorkflowStep-1]
	if !e.Pending() {
		return Entry{}, false
	}
	return e, true
}

func (r *Request[P]) appendPendingEntry(v Validator, assignedAt time.Time) {
	r.WorkflowStep++
	r.History = append(r.History, Entry{
		Step:           r.WorkflowStep,
		ValidatorID:    v.ID,
		ValidatorName:  v.Name,
		ValidatorEmail: v.Email,
		ValidatorRole:  v.Role,
		AssignedAt:     assignedAt,
	})
	id := v.ID
	r.CurrentValidatorID = &id
}

func (r *Request[P]) closePendingEntry(d Decision, comment, signatureRef string, decidedAt time.Time) error {
	idx := r.WorkflowStep - 1
	if idx < 0 || idx >= len(r.History) {
		return workflowerrors.Invariant(fmt.Sprintf("no entry at step %d", r.WorkflowStep))
	}
	e := &r.History[idx]
	if !e.Pending() {
		return workflowerrors.Invariant(fmt.Sprintf("entry at step %d already decided", e.Step))
	}
	e.Decision = &d
	e.Comment = comment
	e.SignatureRef = signatureRef
	e.DecidedAt = &decidedAt
	return nil
}

func (r *Request[P]) finish(s Status, finalValidator uuid.UUID, comment string, at time.Time) {
	r.Status = s
	r.CurrentValidatorID = nil
	r.FinalValidatorID = &finalValidator
	r.FinalDecisionAt = &at
	r.FinalComment = comment
}

// CheckInvariants verifies the structural rules every stored request must satisfy.
func (r *Request[P]) CheckInvariants() error {
	if r.WorkflowStep != len(r.History) {
		return workflowerrors.Invariant(fmt.Sprintf("workflow step %d does not match %d history entries", r.WorkflowStep, len(r.History)))
	}

	pending := 0
	for i, e := range r.History {
		if e.Step != i+1 {
			return workflowerrors.Invariant(fmt.Sprintf("entry %d carries step %d", i+1, e.Step))
		}
		if e.Pending() {
			pending++
			if i != len(r.History)-1 {
				return workflowerrors.Invariant(fmt.Sprintf("entry %d is pending but is not the last", e.Step))
			}
		}
	}

	switch {
	case r.Status == StatusDraft:
		if r.CurrentValidatorID != nil || len(r.History) != 0 {
			return workflowerrors.Invariant("draft request has workflow state")
		}
	case r.Status.InFlight():
		if r.CurrentValidatorID == nil {
			return workflowerrors.Invariant("in-flight request has no current validator")
		}
		if pending != 1 {
			return workflowerrors.Invariant(fmt.Sprintf("in-flight request has %d pending entries", pending))
		}
		last := r.History[len(r.History)-1]
		if last.ValidatorID != *r.CurrentValidatorID {
			return workflowerrors.Invariant("current validator does not own the pending entry")
		}
		if role, _ := r.Status.AwaitingRole(); role != last.ValidatorRole {
			return workflowerrors.Invariant("status role does not match the pending entry")
		}
	case r.Status.IsTerminal():
		if r.CurrentValidatorID != nil {
			return workflowerrors.Invariant("terminal request has a current validator")
		}
		if pending != 0 {
			return workflowerrors.Invariant("terminal request has a pending entry")
		}
	default:
		return workflowerrors.Invariant(fmt.Sprintf("unknown status %q", r.Status))
	}

	return nil
}

func cloneUUID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
