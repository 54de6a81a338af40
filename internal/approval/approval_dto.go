package approval

import (
	"time"

	"go-hris-workflow/internal/workflow"
)

type CreateRequest[P any] struct {
	Payload   P      `json:"payload"`
	Signature string `json:"signature"`
}

// UpdateRequest replaces a draft's payload. An empty signature keeps the stored one.
type UpdateRequest[P any] struct {
	Payload   P      `json:"payload"`
	Signature string `json:"signature"`
}

type SubmitRequest struct {
	FirstValidatorEmail string `json:"first_validator_email" binding:"required,email"`
	Signature           string `json:"signature"`
}

type ValidateRequest struct {
	Decision           string `json:"decision" binding:"required"`
	Comment            string `json:"comment" binding:"max=2000"`
	Signature          string `json:"signature"`
	NextValidatorEmail string `json:"next_validator_email" binding:"omitempty,email"`
}

type ValidatorResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	RoleLabel string `json:"role_label"`
}

type SubmitResponse struct {
	ID               string            `json:"id"`
	Reference        string            `json:"reference"`
	Status           string            `json:"status"`
	WorkflowStep     int               `json:"workflow_step"`
	CurrentValidator ValidatorResponse `json:"current_validator"`
}

type EntryResponse struct {
	Step           int        `json:"step"`
	ValidatorID    string     `json:"validator_id"`
	ValidatorName  string     `json:"validator_name"`
	ValidatorEmail string     `json:"validator_email"`
	ValidatorRole  string     `json:"validator_role"`
	RoleLabel      string     `json:"role_label"`
	AssignedAt     time.Time  `json:"assigned_at"`
	Decision       *string    `json:"decision"`
	Comment        string     `json:"comment,omitempty"`
	SignatureRef   string     `json:"signature_ref,omitempty"`
	DecidedAt      *time.Time `json:"decided_at"`
}

type RequestResponse[P any] struct {
	ID                 string          `json:"id"`
	Kind               string          `json:"kind"`
	Reference          string          `json:"reference"`
	RequesterID        string          `json:"requester_id"`
	Payload            P               `json:"payload"`
	Status             string          `json:"status"`
	CurrentValidatorID *string         `json:"current_validator_id"`
	WorkflowStep       int             `json:"workflow_step"`
	RequesterSignature string          `json:"requester_signature,omitempty"`
	SubmittedAt        *time.Time      `json:"submitted_at"`
	FinalValidatorID   *string         `json:"final_validator_id"`
	FinalDecisionAt    *time.Time      `json:"final_decision_at"`
	FinalComment       string          `json:"final_comment,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
	History            []EntryResponse `json:"workflow_history"`
}

func mapToResponse[P any](req *workflow.Request[P]) RequestResponse[P] {
	resp := RequestResponse[P]{
		ID:                 req.ID.String(),
		Kind:               string(req.Kind),
		Reference:          req.Reference,
		RequesterID:        req.RequesterID.String(),
		Payload:            req.Payload,
		Status:             string(req.Status),
		WorkflowStep:       req.WorkflowStep,
		RequesterSignature: req.RequesterSignature,
		SubmittedAt:        req.SubmittedAt,
		FinalDecisionAt:    req.FinalDecisionAt,
		FinalComment:       req.FinalComment,
		CreatedAt:          req.CreatedAt,
		UpdatedAt:          req.UpdatedAt,
		History:            mapToEntryResponses(req.History),
	}
	if req.CurrentValidatorID != nil {
		id := req.CurrentValidatorID.String()
		resp.CurrentValidatorID = &id
	}
	if req.FinalValidatorID != nil {
		id := req.FinalValidatorID.String()
		resp.FinalValidatorID = &id
	}
	return resp
}

func mapToEntryResponses(history []workflow.Entry) []EntryResponse {
	out := make([]EntryResponse, 0, len(history))
	for _, e := range history {
		r := EntryResponse{
			Step:           e.Step,
			ValidatorID:    e.ValidatorID.String(),
			ValidatorName:  e.ValidatorName,
			ValidatorEmail: e.ValidatorEmail,
			ValidatorRole:  string(e.ValidatorRole),
			RoleLabel:      e.ValidatorRole.Label(),
			AssignedAt:     e.AssignedAt,
			Comment:        e.Comment,
			SignatureRef:   e.SignatureRef,
			DecidedAt:      e.DecidedAt,
		}
		if e.Decision != nil {
			d := string(*e.Decision)
			r.Decision = &d
		}
		out = append(out, r)
	}
	return out
}

func mapToValidatorResponse(v workflow.Validator) ValidatorResponse {
	return ValidatorResponse{
		ID:        v.ID.String(),
		Name:      v.Name,
		Email:     v.Email,
		Role:      string(v.Role),
		RoleLabel: v.Role.Label(),
	}
}
