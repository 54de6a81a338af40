package events

import "time"

const (
	WorkflowNotificationTopic = "hr.workflow.notification.v1"
	WorkflowNotificationType  = "workflow.notification"
)

// WorkflowNotificationEvent carries one message addressed to one user.
type WorkflowNotificationEvent struct {
	EventID     string    `json:"event_id"`
	EventType   string    `json:"event_type"`
	RecipientID string    `json:"recipient_id"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	RequestID   string    `json:"request_id"`
	Kind        string    `json:"kind"`
	Reference   string    `json:"reference"`
	Status      string    `json:"status"`
	Step        int       `json:"step"`
	TraceID     string    `json:"trace_id,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}
