package notification

import (
	"time"

	"github.com/google/uuid"
)

// Notification is one persisted message for one user, written by the consumer.
type Notification struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	EventID   string     `gorm:"column:event_id;uniqueIndex"`
	UserID    uuid.UUID  `gorm:"type:uuid;index"`
	Title     string     `gorm:"column:title"`
	Message   string     `gorm:"column:message"`
	Type      string     `gorm:"column:type"`
	Data      []byte     `gorm:"column:data;type:jsonb"`
	IsRead    bool       `gorm:"column:is_read"`
	ReadAt    *time.Time `gorm:"column:read_at"`
	CreatedAt time.Time  `gorm:"column:created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
