package notification_test

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"go-hris-workflow/internal/events"
	"go-hris-workflow/internal/notification"
	notificationMock "go-hris-workflow/internal/notification/mock"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func sampleEvent() events.WorkflowNotificationEvent {
	return events.WorkflowNotificationEvent{
		EventID:     uuid.NewString(),
		EventType:   events.WorkflowNotificationType,
		RecipientID: uuid.NewString(),
		Type:        "success",
		Title:       "Demande approuvée",
		Message:     "Votre demande LV-000001 a été approuvée",
		RequestID:   uuid.NewString(),
		Kind:        "leave",
		Reference:   "LV-000001",
		Status:      "APPROVED",
		Step:        4,
		OccurredAt:  time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestService_Store(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := notificationMock.NewMockRepository(ctrl)
		svc := notification.NewService(repo, zap.NewNop())
		evt := sampleEvent()

		repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
			func(ctx context.Context, n *notification.Notification) (bool, error) {
				assert.Equal(t, evt.EventID, n.EventID)
				assert.Equal(t, evt.RecipientID, n.UserID.String())
				assert.Equal(t, evt.Title, n.Title)
				assert.Equal(t, "success", n.Type)
				assert.Equal(t, evt.OccurredAt, n.CreatedAt)

				var data map[string]any
				assert.NoError(t, json.Unmarshal(n.Data, &data))
				assert.Equal(t, "LV-000001", data["reference"])
				return true, nil
			})

		assert.NoError(t, svc.Store(ctx, evt))
	})

	t.Run("duplicate event is not an error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := notificationMock.NewMockRepository(ctrl)
		svc := notification.NewService(repo, zap.NewNop())

		repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(false, nil)
		assert.NoError(t, svc.Store(ctx, sampleEvent()))
	})

	t.Run("invalid recipient", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := notificationMock.NewMockRepository(ctrl)
		svc := notification.NewService(repo, zap.NewNop())

		evt := sampleEvent()
		evt.RecipientID = "not-a-uuid"
		assert.ErrorIs(t, svc.Store(ctx, evt), notification.ErrInvalidEvent)
	})

	t.Run("repository error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := notificationMock.NewMockRepository(ctrl)
		svc := notification.NewService(repo, zap.NewNop())

		repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(false, errors.New("db down"))
		assert.Error(t, svc.Store(ctx, sampleEvent()))
	})
}

func TestRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	assert.NoError(t, err)
	repo := notification.NewRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "notifications"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	created, err := repo.Create(context.Background(), &notification.Notification{
		ID:      uuid.New(),
		EventID: "evt-1",
		UserID:  uuid.New(),
		Data:    []byte(`{}`),
	})
	assert.NoError(t, err)
	assert.False(t, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}
