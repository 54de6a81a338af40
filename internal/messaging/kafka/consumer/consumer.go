package consumer

import (
	"context"
	"encoding/json"
	"errors"

	"go-hris-workflow/internal/events"
	"go-hris-workflow/internal/notification"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageReader is satisfied by *kafkago.Reader.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

func ConsumeWorkflowNotifications(
	ctx context.Context,
	reader MessageReader,
	notificationService notification.Service,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.workflow_notification")
	log.Info("workflow notification consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("workflow notification consumer stopped")
				return
			}
			log.Error("fetch workflow notification message failed", zap.Error(err))
			continue
		}

		handleMessage(ctx, reader, notificationService, log, msg)
	}
}

func handleMessage(
	ctx context.Context,
	reader MessageReader,
	notificationService notification.Service,
	log *zap.Logger,
	msg kafkago.Message,
) {
	var event events.WorkflowNotificationEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		log.Error("decode workflow notification failed", zap.Int64("offset", msg.Offset), zap.Error(err))
		_ = reader.CommitMessages(ctx, msg)
		return
	}

	if err := notificationService.Store(ctx, event); err != nil {
		if errors.Is(err, notification.ErrInvalidEvent) {
			log.Warn("invalid workflow notification, skipping",
				zap.String("event_id", event.EventID),
				zap.String("recipient_id", event.RecipientID),
			)
			_ = reader.CommitMessages(ctx, msg)
			return
		}

		// left uncommitted so the group redelivers it
		log.Error("store workflow notification failed",
			zap.String("event_id", event.EventID),
			zap.String("trace_id", event.TraceID),
			zap.Error(err),
		)
		return
	}

	if err := reader.CommitMessages(ctx, msg); err != nil {
		log.Error("commit workflow notification message failed", zap.Error(err))
		return
	}

	log.Info("workflow notification stored",
		zap.String("event_id", event.EventID),
		zap.String("request_id", event.RequestID),
		zap.String("trace_id", event.TraceID),
	)
}
