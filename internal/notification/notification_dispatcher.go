package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go-hris-workflow/internal/events"
	"go-hris-workflow/internal/messaging/kafka"
	"go-hris-workflow/internal/shared/contextutil"
	"go-hris-workflow/internal/workflow"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Dispatcher queues workflow notifications into the outbox once a transition
// has been committed. Each enqueue attempt has its own deadline and failures
// are retried a bounded number of times.
type Dispatcher struct {
	outbox      kafka.OutboxRepository
	topic       string
	timeout     time.Duration
	maxAttempts int
	backoff     time.Duration
	now         func() time.Time
	logger      *zap.Logger
}

type DispatcherOption func(*Dispatcher)

func WithBackoff(d time.Duration) DispatcherOption {
	return func(disp *Dispatcher) { disp.backoff = d }
}

func WithTopic(topic string) DispatcherOption {
	return func(disp *Dispatcher) {
		if topic != "" {
			disp.topic = topic
		}
	}
}

func NewDispatcher(
	outbox kafka.OutboxRepository,
	timeout time.Duration,
	maxAttempts int,
	logger *zap.Logger,
	opts ...DispatcherOption,
) *Dispatcher {
	if logger == nil {
		logger = zap.L()
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	d := &Dispatcher{
		outbox:      outbox,
		topic:       events.WorkflowNotificationTopic,
		timeout:     timeout,
		maxAttempts: maxAttempts,
		backoff:     200 * time.Millisecond,
		now:         func() time.Time { return time.Now().UTC() },
		logger:      logger.Named("notification.dispatcher"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch enqueues every notification. It does not stop at the first
// failure; the returned error joins all notifications that could not be queued.
func (d *Dispatcher) Dispatch(ctx context.Context, notifications []workflow.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	rid := contextutil.GetRequestID(ctx)
	// the caller's request may be finished by now, the deadline below still applies
	base := context.WithoutCancel(ctx)

	var errs []error
	for _, n := range notifications {
		event := d.toEvent(n, rid)
		payload, err := json.Marshal(event)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		outboxEvent := kafka.OutboxEvent{
			ID:            event.EventID,
			RequestID:     rid,
			AggregateType: "approval_request",
			AggregateID:   n.RequestID.String(),
			EventType:     event.EventType,
			Topic:         d.topic,
			Payload:       payload,
			Status:        kafka.OutboxStatusPending,
		}

		if err := d.enqueue(base, outboxEvent); err != nil {
			d.logger.Error("notification dispatch gave up",
				zap.String("request_id", rid),
				zap.String("approval_request_id", n.RequestID.String()),
				zap.String("recipient_id", n.RecipientID.String()),
				zap.String("title", n.Title),
				zap.Int("attempts", d.maxAttempts),
				zap.Error(err),
			)
			errs = append(errs, fmt.Errorf("notify %s: %w", n.RecipientID, err))
			continue
		}

		d.logger.Debug("notification queued",
			zap.String("request_id", rid),
			zap.String("event_id", outboxEvent.ID),
			zap.String("recipient_id", n.RecipientID.String()),
		)
	}

	return errors.Join(errs...)
}

func (d *Dispatcher) enqueue(ctx context.Context, event kafka.OutboxEvent) error {
	var lastErr error
	for attempt := 1; attempt <= d.maxAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, d.timeout)
		lastErr = d.outbox.Create(attemptCtx, event)
		cancel()
		if lastErr == nil {
			return nil
		}

		d.logger.Warn("notification enqueue failed",
			zap.String("event_id", event.ID),
			zap.Int("attempt", attempt),
			zap.Error(lastErr),
		)
		if attempt < d.maxAttempts && d.backoff > 0 {
			time.Sleep(time.Duration(attempt) * d.backoff)
		}
	}
	return lastErr
}

func (d *Dispatcher) toEvent(n workflow.Notification, rid string) events.WorkflowNotificationEvent {
	return events.WorkflowNotificationEvent{
		EventID:     uuid.NewString(),
		EventType:   events.WorkflowNotificationType,
		RecipientID: n.RecipientID.String(),
		Type:        string(n.Type),
		Title:       n.Title,
		Message:     n.Message,
		RequestID:   n.RequestID.String(),
		Kind:        string(n.Kind),
		Reference:   n.Reference,
		Status:      string(n.Status),
		Step:        n.Step,
		TraceID:     rid,
		OccurredAt:  d.now(),
	}
}
