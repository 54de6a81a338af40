package approval

import (
	"encoding/json"

	"go-hris-workflow/internal/hierarchy"
	"go-hris-workflow/internal/workflow"

	"github.com/google/uuid"
)

func toDomain[P any](rec *RequestRecord) (*workflow.Request[P], error) {
	var payload P
	if len(rec.Payload) > 0 {
		if err := json.Unmarshal(rec.Payload, &payload); err != nil {
			return nil, err
		}
	}

	history := make([]workflow.Entry, 0, len(rec.Entries))
	for _, e := range rec.Entries {
		history = append(history, entryToDomain(e))
	}

	return &workflow.Request[P]{
		ID:                 rec.ID,
		Kind:               workflow.Kind(rec.Kind),
		Reference:          rec.Reference,
		RequesterID:        rec.RequesterID,
		Payload:            payload,
		Status:             workflow.Status(rec.Status),
		CurrentValidatorID: rec.CurrentValidatorID,
		WorkflowStep:       rec.WorkflowStep,
		History:            history,
		RequesterSignature: rec.RequesterSignature,
		SubmittedAt:        rec.SubmittedAt,
		FinalValidatorID:   rec.FinalValidatorID,
		FinalDecisionAt:    rec.FinalDecisionAt,
		FinalComment:       rec.FinalComment,
		CreatedAt:          rec.CreatedAt,
		UpdatedAt:          rec.UpdatedAt,
	}, nil
}

func toRecord[P any](req *workflow.Request[P]) (*RequestRecord, error) {
	payload, err := json.Marshal(req.Payload)
	if err != nil {
		return nil, err
	}

	entries := make([]EntryRecord, 0, len(req.History))
	for _, e := range req.History {
		entries = append(entries, entryToRecord(req.ID, e))
	}

	return &RequestRecord{
		ID:                 req.ID,
		Kind:               string(req.Kind),
		Reference:          req.Reference,
		RequesterID:        req.RequesterID,
		Payload:            payload,
		Status:             string(req.Status),
		CurrentValidatorID: req.CurrentValidatorID,
		WorkflowStep:       req.WorkflowStep,
		RequesterSignature: req.RequesterSignature,
		SubmittedAt:        req.SubmittedAt,
		FinalValidatorID:   req.FinalValidatorID,
		FinalDecisionAt:    req.FinalDecisionAt,
		FinalComment:       req.FinalComment,
		CreatedAt:          req.CreatedAt,
		UpdatedAt:          req.UpdatedAt,
		Entries:            entries,
	}, nil
}

func entryToDomain(e EntryRecord) workflow.Entry {
	entry := workflow.Entry{
		Step:           e.Step,
		ValidatorID:    e.ValidatorID,
		ValidatorName:  e.ValidatorName,
		ValidatorEmail: e.ValidatorEmail,
		ValidatorRole:  hierarchy.Role(e.ValidatorRole),
		AssignedAt:     e.AssignedAt,
		Comment:        e.Comment,
		SignatureRef:   e.SignatureRef,
		DecidedAt:      e.DecidedAt,
	}
	if e.Decision != nil {
		d := workflow.Decision(*e.Decision)
		entry.Decision = &d
	}
	return entry
}

func entryToRecord(requestID uuid.UUID, e workflow.Entry) EntryRecord {
	rec := EntryRecord{
		ID:             uuid.New(),
		RequestID:      requestID,
		Step:           e.Step,
		ValidatorID:    e.ValidatorID,
		ValidatorName:  e.ValidatorName,
		ValidatorEmail: e.ValidatorEmail,
		ValidatorRole:  string(e.ValidatorRole),
		AssignedAt:     e.AssignedAt,
		Comment:        e.Comment,
		SignatureRef:   e.SignatureRef,
		DecidedAt:      e.DecidedAt,
	}
	if e.Decision != nil {
		d := string(*e.Decision)
		rec.Decision = &d
	}
	return rec
}

// buildTransition diffs two consecutive states of the same request into the
// writes needed to persist the second one.
func buildTransition[P any](before, after *workflow.Request[P]) (Transition, error) {
	rec, err := toRecord(after)
	if err != nil {
		return Transition{}, err
	}

	t := Transition{
		Request:             rec,
		ExpectedStatus:      string(before.Status),
		ExpectedStep:        before.WorkflowStep,
		ExpectedValidatorID: before.CurrentValidatorID,
	}

	if before.WorkflowStep > 0 {
		if _, pending := before.PendingEntry(); pending {
			closed := rec.Entries[before.WorkflowStep-1]
			t.Closed = &closed
		}
	}
	if after.WorkflowStep > before.WorkflowStep {
		added := rec.Entries[after.WorkflowStep-1]
		t.Added = &added
	}
	return t, nil
}
