package workflow

import (
	"time"

	"go-hris-workflow/internal/hierarchy"

	"github.com/google/uuid"
)

// Entry is one hop of the approval chain.
type Entry struct {
	Step           int
	ValidatorID    uuid.UUID
	ValidatorName  string
	ValidatorEmail string
	ValidatorRole  hierarchy.Role
	AssignedAt     time.Time
	Decision       *Decision
	Comment        string
	SignatureRef   string
	DecidedAt      *time.Time
}

func (e Entry) Pending() bool {
	return e.Decision == nil
}

func (e Entry) clone() Entry {
	out := e
	if e.Decision != nil {
		d := *e.Decision
		out.Decision = &d
	}
	if e.DecidedAt != nil {
		t := *e.DecidedAt
		out.DecidedAt = &t
	}
	return out
}

// Actor is the authenticated caller.
type Actor struct {
	ID   uuid.UUID
	Role hierarchy.Role
}

// Validator is a resolved user that can be assigned a hop.
type Validator struct {
	ID    uuid.UUID
	Name  string
	Email string
	Role  hierarchy.Role
}

type NotificationType string

const (
	NotificationInfo    NotificationType = "info"
	NotificationSuccess NotificationType = "success"
	NotificationError   NotificationType = "error"
)

// Notification is a side effect the caller dispatches once the transition is stored.
type Notification struct {
	RecipientID uuid.UUID
	Type        NotificationType
	Title       string
	Message     string
	RequestID   uuid.UUID
	Kind        Kind
	Reference   string
	Status      Status
	Step        int
}
