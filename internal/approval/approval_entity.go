package approval

import (
	"time"

	"github.com/google/uuid"
)

// RequestRecord is the stored form of a workflow request of any kind.
type RequestRecord struct {
	ID                 uuid.UUID     `gorm:"type:uuid;primaryKey"`
	Kind               string        `gorm:"column:kind;index"`
	Reference          string        `gorm:"column:reference;uniqueIndex"`
	RequesterID        uuid.UUID     `gorm:"type:uuid;column:requester_id;index"`
	Payload            []byte        `gorm:"column:payload;type:jsonb"`
	Status             string        `gorm:"column:status"`
	CurrentValidatorID *uuid.UUID    `gorm:"type:uuid;column:current_validator_id;index"`
	WorkflowStep       int           `gorm:"column:workflow_step"`
	RequesterSignature string        `gorm:"column:requester_signature"`
	SubmittedAt        *time.Time    `gorm:"column:submitted_at"`
	FinalValidatorID   *uuid.UUID    `gorm:"type:uuid;column:final_validator_id"`
	FinalDecisionAt    *time.Time    `gorm:"column:final_decision_at"`
	FinalComment       string        `gorm:"column:final_comment"`
	CreatedAt          time.Time     `gorm:"column:created_at"`
	UpdatedAt          time.Time     `gorm:"column:updated_at"`
	Entries            []EntryRecord `gorm:"foreignKey:RequestID"`
}

func (RequestRecord) TableName() string {
	return "approval_requests"
}

// EntryRecord is one hop of a request's history. (request_id, step) is unique.
type EntryRecord struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	RequestID      uuid.UUID  `gorm:"type:uuid;column:request_id;uniqueIndex:uq_workflow_entries_request_step"`
	Step           int        `gorm:"column:step;uniqueIndex:uq_workflow_entries_request_step"`
	ValidatorID    uuid.UUID  `gorm:"type:uuid;column:validator_id;index"`
	ValidatorName  string     `gorm:"column:validator_name"`
	ValidatorEmail string     `gorm:"column:validator_email"`
	ValidatorRole  string     `gorm:"column:validator_role"`
	AssignedAt     time.Time  `gorm:"column:assigned_at"`
	Decision       *string    `gorm:"column:decision"`
	Comment        string     `gorm:"column:comment"`
	SignatureRef   string     `gorm:"column:signature_ref"`
	DecidedAt      *time.Time `gorm:"column:decided_at"`
}

func (EntryRecord) TableName() string {
	return "workflow_entries"
}
