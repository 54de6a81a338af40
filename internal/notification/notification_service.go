package notification

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go-hris-workflow/internal/events"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrInvalidEvent = errors.New("invalid workflow notification event")

//go:generate mockgen -source=notification_service.go -destination=mock/notification_service_mock.go -package=mock
type Service interface {
	Store(ctx context.Context, event events.WorkflowNotificationEvent) error
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("notification.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification.service")
	}
	return &service{repo: repo, logger: l}
}

type notificationData struct {
	RequestID string `json:"request_id"`
	Kind      string `json:"kind"`
	Reference string `json:"reference"`
	Status    string `json:"status"`
	Step      int    `json:"step"`
}

// Store persists the event for its recipient. Redelivered events are ignored.
func (s *service) Store(ctx context.Context, event events.WorkflowNotificationEvent) error {
	if event.EventID == "" {
		return ErrInvalidEvent
	}
	userID, err := uuid.Parse(event.RecipientID)
	if err != nil {
		return ErrInvalidEvent
	}

	data, err := json.Marshal(notificationData{
		RequestID: event.RequestID,
		Kind:      event.Kind,
		Reference: event.Reference,
		Status:    event.Status,
		Step:      event.Step,
	})
	if err != nil {
		return err
	}

	createdAt := event.OccurredAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	created, err := s.repo.Create(ctx, &Notification{
		ID:        uuid.New(),
		EventID:   event.EventID,
		UserID:    userID,
		Title:     event.Title,
		Message:   event.Message,
		Type:      event.Type,
		Data:      data,
		CreatedAt: createdAt,
	})
	if err != nil {
		s.logger.Error("store notification failed",
			zap.String("event_id", event.EventID),
			zap.String("recipient_id", event.RecipientID),
			zap.Error(err),
		)
		return err
	}
	if !created {
		s.logger.Warn("notification already stored, skipping", zap.String("event_id", event.EventID))
		return nil
	}

	s.logger.Info("notification stored",
		zap.String("event_id", event.EventID),
		zap.String("recipient_id", event.RecipientID),
		zap.String("request_id", event.RequestID),
	)
	return nil
}
