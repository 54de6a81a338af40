package approval_test

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"testing"
	"time"

	"go-hris-workflow/internal/approval"
	approvalMock "go-hris-workflow/internal/approval/mock"
	"go-hris-workflow/internal/hierarchy"
	"go-hris-workflow/internal/shared/apperror"
	counterMock "go-hris-workflow/internal/shared/counter/mock"
	storageMock "go-hris-workflow/internal/storage/mock"
	usererrors "go-hris-workflow/internal/user/errors"
	"go-hris-workflow/internal/workflow"
	workflowerrors "go-hris-workflow/internal/workflow/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

type testPayload struct {
	Days   int    `json:"days"`
	Reason string `json:"reason"`
}

func (p testPayload) Validate() error {
	if p.Days <= 0 {
		return errors.New("days must be positive")
	}
	return nil
}

type fakeDirectory struct {
	actors         map[uuid.UUID]workflow.Actor
	validators     map[string]workflow.Validator
	resolvedEmails []string
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		actors:     map[uuid.UUID]workflow.Actor{},
		validators: map[string]workflow.Validator{},
	}
}

func (f *fakeDirectory) addUser(name string, role hierarchy.Role) workflow.Validator {
	v := workflow.Validator{ID: uuid.New(), Name: name, Email: name + "@example.com", Role: role}
	f.actors[v.ID] = workflow.Actor{ID: v.ID, Role: role}
	f.validators[v.Email] = v
	return v
}

func (f *fakeDirectory) ResolveActor(ctx context.Context, id string) (workflow.Actor, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return workflow.Actor{}, usererrors.ErrInvalidUserID
	}
	a, ok := f.actors[uid]
	if !ok {
		return workflow.Actor{}, usererrors.ErrUserNotFound
	}
	return a, nil
}

func (f *fakeDirectory) ResolveValidator(ctx context.Context, email string) (workflow.Validator, error) {
	f.resolvedEmails = append(f.resolvedEmails, email)
	v, ok := f.validators[email]
	if !ok {
		return workflow.Validator{}, usererrors.ErrUserNotFound
	}
	return v, nil
}

type fakeNotifier struct {
	sent []workflow.Notification
	err  error
}

func (f *fakeNotifier) Dispatch(ctx context.Context, notifications []workflow.Notification) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, notifications...)
	return nil
}

type serviceFixture struct {
	db         *sql.DB
	sqlMock    sqlmock.Sqlmock
	repo       *approvalMock.MockRepository
	counter    *counterMock.MockRepository
	signatures *storageMock.MockSignatureStore
	users      *fakeDirectory
	notifier   *fakeNotifier
	svc        approval.Service[testPayload]

	employee    workflow.Validator
	superior    workflow.Validator
	director    workflow.Validator
	hrManager   workflow.Validator
	hrDirector  workflow.Validator
	stranger    workflow.Validator
	otherLeader workflow.Validator
}

func newServiceFixture(t *testing.T, opts approval.Options) *serviceFixture {
	t.Helper()

	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctrl := gomock.NewController(t)
	f := &serviceFixture{
		db:         db,
		sqlMock:    mock,
		repo:       approvalMock.NewMockRepository(ctrl),
		counter:    counterMock.NewMockRepository(ctrl),
		signatures: storageMock.NewMockSignatureStore(ctrl),
		users:      newFakeDirectory(),
		notifier:   &fakeNotifier{},
	}
	f.employee = f.users.addUser("alice", hierarchy.RoleEmployee)
	f.superior = f.users.addUser("bob", hierarchy.RoleSuperior)
	f.director = f.users.addUser("carol", hierarchy.RoleUnitDirector)
	f.hrManager = f.users.addUser("dave", hierarchy.RoleHRManager)
	f.hrDirector = f.users.addUser("erin", hierarchy.RoleHRDirector)
	f.stranger = f.users.addUser("frank", hierarchy.RoleEmployee)
	f.otherLeader = f.users.addUser("grace", hierarchy.RoleSuperior)

	engine := workflow.NewEngine[testPayload](hierarchy.Default())
	f.svc = approval.NewService(
		db,
		f.repo,
		engine,
		approval.Definition[testPayload]{Kind: "test", Prefix: "TS"},
		approval.Dependencies{
			Users:      f.users,
			Counter:    f.counter,
			Signatures: f.signatures,
			Notifier:   f.notifier,
		},
		opts,
		zap.NewNop(),
	)
	return f
}

func draftRecord(requester uuid.UUID, signature string) *approval.RequestRecord {
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	return &approval.RequestRecord{
		ID:                 uuid.New(),
		Kind:               "test",
		Reference:          "TS-000001",
		RequesterID:        requester,
		Payload:            []byte(`{"days":3,"reason":"family"}`),
		Status:             string(workflow.StatusDraft),
		RequesterSignature: signature,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

func awaitingRecord(requester uuid.UUID, current workflow.Validator) *approval.RequestRecord {
	rec := draftRecord(requester, "signatures/test/requester.png")
	submitted := rec.CreatedAt.Add(time.Hour)
	rec.Status = string(workflow.AwaitingStatus(current.Role))
	rec.CurrentValidatorID = &current.ID
	rec.WorkflowStep = 1
	rec.SubmittedAt = &submitted
	rec.Entries = []approval.EntryRecord{{
		ID:             uuid.New(),
		RequestID:      rec.ID,
		Step:           1,
		ValidatorID:    current.ID,
		ValidatorName:  current.Name,
		ValidatorEmail: current.Email,
		ValidatorRole:  string(current.Role),
		AssignedAt:     submitted,
	}}
	return rec
}

func assertAppError(t *testing.T, err error, code string, status int) {
	t.Helper()
	var appErr *apperror.AppError
	if assert.True(t, errors.As(err, &appErr), "expected *apperror.AppError, got %v", err) {
		assert.Equal(t, code, appErr.Code)
		assert.Equal(t, status, appErr.HTTPStatus)
	}
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		f := newServiceFixture(t, approval.Options{})

		f.signatures.EXPECT().Save(gomock.Any(), "test", f.employee.ID.String(), "data:image/png;base64,AAAA").
			Return("signatures/test/sig.png", nil)
		f.counter.EXPECT().GetNextValue(gomock.Any(), "test").Return(int64(12), nil)
		f.sqlMock.ExpectBegin()
		f.repo.EXPECT().WithTx(gomock.Any()).Return(f.repo)
		f.repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
			func(ctx context.Context, rec *approval.RequestRecord) error {
				assert.Equal(t, "TS-000012", rec.Reference)
				assert.Equal(t, string(workflow.StatusDraft), rec.Status)
				assert.Equal(t, f.employee.ID, rec.RequesterID)
				assert.JSONEq(t, `{"days":2,"reason":"rest"}`, string(rec.Payload))
				return nil
			})
		f.sqlMock.ExpectCommit()

		resp, err := f.svc.Create(ctx, f.employee.ID.String(), approval.CreateRequest[testPayload]{
			Payload:   testPayload{Days: 2, Reason: "rest"},
			Signature: "data:image/png;base64,AAAA",
		})

		assert.NoError(t, err)
		assert.Equal(t, "DRAFT", resp.Status)
		assert.Equal(t, "signatures/test/sig.png", resp.RequesterSignature)
		assert.Equal(t, 0, resp.WorkflowStep)
		assert.Empty(t, resp.History)
		assert.NoError(t, f.sqlMock.ExpectationsWereMet())
	})

	t.Run("invalid payload", func(t *testing.T) {
		f := newServiceFixture(t, approval.Options{})

		_, err := f.svc.Create(ctx, f.employee.ID.String(), approval.CreateRequest[testPayload]{Payload: testPayload{}})

		assertAppError(t, err, apperror.CodeValidation, http.StatusUnprocessableEntity)
	})

	t.Run("unknown actor", func(t *testing.T) {
		f := newServiceFixture(t, approval.Options{})

		_, err := f.svc.Create(ctx, uuid.NewString(), approval.CreateRequest[testPayload]{Payload: testPayload{Days: 1}})

		assert.ErrorIs(t, err, usererrors.ErrUserNotFound)
	})
}

func TestService_Submit(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns the first validator", func(t *testing.T) {
		f := newServiceFixture(t, approval.Options{})
		rec := draftRecord(f.employee.ID, "signatures/test/requester.png")

		f.repo.EXPECT().FindByID(gomock.Any(), "test", rec.ID.String()).Return(rec, nil)
		f.sqlMock.ExpectBegin()
		f.repo.EXPECT().WithTx(gomock.Any()).Return(f.repo)
		f.repo.EXPECT().SaveTransition(gomock.Any(), gomock.Any()).DoAndReturn(
			func(ctx context.Context, tr approval.Transition) error {
				assert.Equal(t, "DRAFT", tr.ExpectedStatus)
				assert.Equal(t, 0, tr.ExpectedStep)
				assert.Nil(t, tr.ExpectedValidatorID)
				assert.Nil(t, tr.Closed)
				if assert.NotNil(t, tr.Added) {
					assert.Equal(t, 1, tr.Added.Step)
					assert.Equal(t, f.superior.ID, tr.Added.ValidatorID)
					assert.Nil(t, tr.Added.Decision)
				}
				assert.Equal(t, "AWAITING_SUPERIOR", tr.Request.Status)
				return nil
			})
		f.sqlMock.ExpectCommit()

		resp, err := f.svc.Submit(ctx, f.employee.ID.String(), rec.ID.String(), approval.SubmitRequest{
			FirstValidatorEmail: f.superior.Email,
		})

		assert.NoError(t, err)
		assert.Equal(t, "AWAITING_SUPERIOR", resp.Status)
		assert.Equal(t, 1, resp.WorkflowStep)
		assert.Equal(t, f.superior.ID.String(), resp.CurrentValidator.ID)
		assert.Equal(t, "Superieur", resp.CurrentValidator.RoleLabel)
		if assert.Len(t, f.notifier.sent, 1) {
			assert.Equal(t, f.superior.ID, f.notifier.sent[0].RecipientID)
		}
		assert.NoError(t, f.sqlMock.ExpectationsWereMet())
	})

	t.Run("first validator with the wrong role", func(t *testing.T) {
		f := newServiceFixture(t, approval.Options{})
		rec := draftRecord(f.employee.ID, "signatures/test/requester.png")

		f.repo.EXPECT().FindByID(gomock.Any(), "test", rec.ID.String()).Return(rec, nil)

		_, err := f.svc.Submit(ctx, f.employee.ID.String(), rec.ID.String(), approval.SubmitRequest{
			FirstValidatorEmail: f.director.Email,
			Signature:           "data:image/png;base64,AAAA",
		})

		assertAppError(t, err, apperror.CodePolicyViolation, http.StatusUnprocessableEntity)
		assert.Contains(t, err.Error(), "SUPERIOR")
		assert.Contains(t, err.Error(), "UNIT_DIRECTOR")
		assert.Empty(t, f.notifier.sent)
	})

	t.Run("uploads the signature given at submission", func(t *testing.T) {
		f := newServiceFixture(t, approval.Options{})
		rec := draftRecord(f.employee.ID, "")

		f.repo.EXPECT().FindByID(gomock.Any(), "test", rec.ID.String()).Return(rec, nil)
		f.signatures.EXPECT().Save(gomock.Any(), "test", f.employee.ID.String(), "AAAA").Return("signatures/test/new.png", nil)
		f.sqlMock.ExpectBegin()
		f.repo.EXPECT().WithTx(gomock.Any()).Return(f.repo)
		f.repo.EXPECT().SaveTransition(gomock.Any(), gomock.Any()).DoAndReturn(
			func(ctx context.Context, tr approval.Transition) error {
				assert.Equal(t, "signatures/test/new.png", tr.Request.RequesterSignature)
				return nil
			})
		f.sqlMock.ExpectCommit()

		_, err := f.svc.Submit(ctx, f.employee.ID.String(), rec.ID.String(), approval.SubmitRequest{
			FirstValidatorEmail: f.superior.Email,
			Signature:           "AAAA",
		})
		assert.NoError(t, err)
	})

	t.Run("missing requester signature", func(t *testing.T) {
		f := newServiceFixture(t, approval.Options{})
		rec := draftRecord(f.employee.ID, "")

		f.repo.EXPECT().FindByID(gomock.Any(), "test", rec.ID.String()).Return(rec, nil)

		_, err := f.svc.Submit(ctx, f.employee.ID.String(), rec.ID.String(), approval.SubmitRequest{
			FirstValidatorEmail: f.superior.Email,
		})
		assert.ErrorIs(t, err, workflowerrors.ErrRequesterSignatureRequired)
	})

	t.Run("unknown first validator", func(t *testing.T) {
		f := newServiceFixture(t, approval.Options{})
		rec := draftRecord(f.employee.ID, "signatures/test/requester.png")

		f.repo.EXPECT().FindByID(gomock.Any(), "test", rec.ID.String()).Return(rec, nil)

		_, err := f.svc.Submit(ctx, f.employee.ID.String(), rec.ID.String(), approval.SubmitRequest{
			FirstValidatorEmail: "nobody@example.com",
		})
		assert.ErrorIs(t, err, workflowerrors.ErrValidatorNotFound)
	})

	t.Run("not the owner", func(t *testing.T) {
		f := newServiceFixture(t, approval.Options{})
		rec := draftRecord(f.employee.ID, "signatures/test/requester.png")

		f.repo.EXPECT().FindByID(gomock.Any(), "test", rec.ID.String()).Return(rec, nil)

		_, err := f.svc.Submit(ctx, f.stranger.ID.String(), rec.ID.String(), approval.SubmitRequest{
			FirstValidatorEmail: f.superior.Email,
		})
		assert.ErrorIs(t, err, workflowerrors.ErrNotOwner)
	})

	t.Run("placeholder signature when allowed", func(t *testing.T) {
		f := newServiceFixture(t, approval.Options{AllowPlaceholderSignature: true})
		rec := draftRecord(f.employee.ID, "")

		f.repo.EXPECT().FindByID(gomock.Any(), "test", rec.ID.String()).Return(rec, nil)
		f.sqlMock.ExpectBegin()
		f.repo.EXPECT().WithTx(gomock.Any()).Return(f.repo)
		f.repo.EXPECT().SaveTransition(gomock.Any(), gomock.Any()).DoAndReturn(
			func(ctx context.Context, tr approval.Transition) error {
				assert.Equal(t, approval.PlaceholderSignatureRef, tr.Request.RequesterSignature)
				return nil
			})
		f.sqlMock.ExpectCommit()

		_, err := f.svc.Submit(ctx, f.employee.ID.String(), rec.ID.String(), approval.SubmitRequest{
			FirstValidatorEmail: f.superior.Email,
		})
		assert.NoError(t, err)
	})

	t.Run("request not found", func(t *testing.T) {
		f := newServiceFixture(t, approval.Options{})

		_, err := f.svc.Submit(ctx, f.employee.ID.String(), "not-a-uuid", approval.SubmitRequest{
			FirstValidatorEmail: f.superior.Email,
		})
		assert.ErrorIs(t, err, workflowerrors.ErrRequestNotFound)
	})
}

func TestService_Validate(t *testing.T) {
	ctx := context.Background()

	t.Run("approve and forward", func(t *testing.T) {
		f := newServiceFixture(t, approval.Options{})
		rec := awaitingRecord(f.employee.ID, f.superior)

		f.repo.EXPECT().FindByID(gomock.Any(), "test", rec.ID.String()).Return(rec, nil)
		f.signatures.EXPECT().Save(gomock.Any(), "test", f.superior.ID.String(), "AAAA").Return("signatures/test/bob.png", nil)
		f.sqlMock.ExpectBegin()
		f.repo.EXPECT().WithTx(gomock.Any()).Return(f.repo)
		f.repo.EXPECT().SaveTransition(gomock.Any(), gomock.Any()).DoAndReturn(
			func(ctx context.Context, tr approval.Transition) error {
				assert.Equal(t, "AWAITING_SUPERIOR", tr.ExpectedStatus)
				assert.Equal(t, 1, tr.ExpectedStep)
				assert.Equal(t, f.superior.ID, *tr.ExpectedValidatorID)
				if assert.NotNil(t, tr.Closed) {
					assert.Equal(t, 1, tr.Closed.Step)
					assert.Equal(t, "APPROVE", *tr.Closed.Decision)
					assert.Equal(t, "signatures/test/bob.png", tr.Closed.SignatureRef)
				}
				if assert.NotNil(t, tr.Added) {
					assert.Equal(t, 2, tr.Added.Step)
					assert.Equal(t, f.director.ID, tr.Added.ValidatorID)
				}
				return nil
			})
		f.sqlMock.ExpectCommit()

		resp, err := f.svc.Validate(ctx, f.superior.ID.String(), rec.ID.String(), approval.ValidateRequest{
			Decision:           "approve",
			Comment:            "ok",
			Signature:          "AAAA",
			NextValidatorEmail: f.director.Email,
		})

		assert.NoError(t, err)
		assert.Equal(t, "AWAITING_UNIT_DIRECTOR", resp.Status)
		assert.Equal(t, 2, resp.WorkflowStep)
		assert.Equal(t, f.director.ID.String(), *resp.CurrentValidatorID)
		assert.Len(t, resp.History, 2)
		if assert.Len(t, f.notifier.sent, 1) {
			assert.Equal(t, f.director.ID, f.notifier.sent[0].RecipientID)
		}
		assert.NoError(t, f.sqlMock.ExpectationsWereMet())
	})

	t.Run("final approval", func(t *testing.T) {
		f := newServiceFixture(t, approval.Options{})
		rec := awaitingRecord(f.employee.ID, f.superior)

		f.repo.EXPECT().FindByID(gomock.Any(), "test", rec.ID.String()).Return(rec, nil)
		f.signatures.EXPECT().Save(gomock.Any(), "test", f.superior.ID.String(), "AAAA").Return("signatures/test/bob.png", nil)
		f.sqlMock.ExpectBegin()
		f.repo.EXPECT().WithTx(gomock.Any()).Return(f.repo)
		f.repo.EXPECT().SaveTransition(gomock.Any(), gomock.Any()).Return(nil)
		f.sqlMock.ExpectCommit()

		resp, err := f.svc.Validate(ctx, f.superior.ID.String(), rec.ID.String(), approval.ValidateRequest{
			Decision:  "APPROVE",
			Signature: "AAAA",
		})

		assert.NoError(t, err)
		assert.Equal(t, "APPROVED", resp.Status)
		assert.Nil(t, resp.CurrentValidatorID)
		assert.Equal(t, f.superior.ID.String(), *resp.FinalValidatorID)
		if assert.Len(t, f.notifier.sent, 1) {
			assert.Equal(t, f.employee.ID, f.notifier.sent[0].RecipientID)
			assert.Equal(t, workflow.NotificationSuccess, f.notifier.sent[0].Type)
		}
	})

	t.Run("next validator breaks the chain", func(t *testing.T) {
		f := newServiceFixture(t, approval.Options{})
		rec := awaitingRecord(f.employee.ID, f.superior)

		f.repo.EXPECT().FindByID(gomock.Any(), "test", rec.ID.String()).Return(rec, nil)

		_, err := f.svc.Validate(ctx, f.superior.ID.String(), rec.ID.String(), approval.ValidateRequest{
			Decision:           "APPROVE",
			Signature:          "AAAA",
			NextValidatorEmail: f.hrManager.Email,
		})

		assertAppError(t, err, apperror.CodePolicyViolation, http.StatusUnprocessableEntity)
		assert.Contains(t, err.Error(), "UNIT_DIRECTOR")
		assert.Contains(t, err.Error(), "HR_MANAGER")
		assert.Empty(t, f.notifier.sent)
	})

	t.Run("reject ignores the next validator", func(t *testing.T) {
		f := newServiceFixture(t, approval.Options{})
		rec := awaitingRecord(f.employee.ID, f.superior)

		f.repo.EXPECT().FindByID(gomock.Any(), "test", rec.ID.String()).Return(rec, nil)
		f.sqlMock.ExpectBegin()
		f.repo.EXPECT().WithTx(gomock.Any()).Return(f.repo)
		f.repo.EXPECT().SaveTransition(gomock.Any(), gomock.Any()).DoAndReturn(
			func(ctx context.Context, tr approval.Transition) error {
				assert.Nil(t, tr.Added)
				assert.Equal(t, "REJECT", *tr.Closed.Decision)
				return nil
			})
		f.sqlMock.ExpectCommit()

		resp, err := f.svc.Validate(ctx, f.superior.ID.String(), rec.ID.String(), approval.ValidateRequest{
			Decision:           "REJECT",
			Comment:            "dates overlap a deadline",
			NextValidatorEmail: f.director.Email,
		})

		assert.NoError(t, err)
		assert.Equal(t, "REJECTED", resp.Status)
		assert.Equal(t, "dates overlap a deadline", resp.FinalComment)
		assert.Empty(t, f.users.resolvedEmails)
		if assert.Len(t, f.notifier.sent, 1) {
			assert.Equal(t, workflow.NotificationError, f.notifier.sent[0].Type)
		}
	})

	t.Run("failed notification keeps the committed transition", func(t *testing.T) {
		f := newServiceFixture(t, approval.Options{})
		f.notifier.err = errors.New("outbox unavailable")
		rec := awaitingRecord(f.employee.ID, f.superior)

		f.repo.EXPECT().FindByID(gomock.Any(), "test", rec.ID.String()).Return(rec, nil)
		f.signatures.EXPECT().Save(gomock.Any(), "test", f.superior.ID.String(), "AAAA").Return("signatures/test/bob.png", nil)
		f.sqlMock.ExpectBegin()
		f.repo.EXPECT().WithTx(gomock.Any()).Return(f.repo)
		f.repo.EXPECT().SaveTransition(gomock.Any(), gomock.Any()).Return(nil)
		f.sqlMock.ExpectCommit()

		resp, err := f.svc.Validate(ctx, f.superior.ID.String(), rec.ID.String(), approval.ValidateRequest{
			Decision:           "APPROVE",
			Signature:          "AAAA",
			NextValidatorEmail: f.director.Email,
		})

		assert.NoError(t, err)
		assert.Equal(t, "AWAITING_UNIT_DIRECTOR", resp.Status)
		assert.Equal(t, 2, resp.WorkflowStep)
		assert.Equal(t, f.director.ID.String(), *resp.CurrentValidatorID)
		assert.Empty(t, f.notifier.sent)
		assert.NoError(t, f.sqlMock.ExpectationsWereMet())
	})

	t.Run("lost race answers conflict", func(t *testing.T) {
		f := newServiceFixture(t, approval.Options{})
		rec := awaitingRecord(f.employee.ID, f.superior)

		f.repo.EXPECT().FindByID(gomock.Any(), "test", rec.ID.String()).Return(rec, nil)
		f.sqlMock.ExpectBegin()
		f.repo.EXPECT().WithTx(gomock.Any()).Return(f.repo)
		f.repo.EXPECT().SaveTransition(gomock.Any(), gomock.Any()).Return(workflowerrors.ErrConcurrentModification)
		f.sqlMock.ExpectRollback()

		_, err := f.svc.Validate(ctx, f.superior.ID.String(), rec.ID.String(), approval.ValidateRequest{
			Decision: "REJECT",
		})

		assertAppError(t, err, apperror.CodeConflict, http.StatusConflict)
		assert.Empty(t, f.notifier.sent)
		assert.NoError(t, f.sqlMock.ExpectationsWereMet())
	})

	t.Run("someone else is the current validator", func(t *testing.T) {
		f := newServiceFixture(t, approval.Options{})
		rec := awaitingRecord(f.employee.ID, f.superior)

		f.repo.EXPECT().FindByID(gomock.Any(), "test", rec.ID.String()).Return(rec, nil)

		_, err := f.svc.Validate(ctx, f.otherLeader.ID.String(), rec.ID.String(), approval.ValidateRequest{
			Decision:  "APPROVE",
			Signature: "AAAA",
		})
		assert.ErrorIs(t, err, workflowerrors.ErrNotCurrentValidator)
	})

	t.Run("approval without signature", func(t *testing.T) {
		f := newServiceFixture(t, approval.Options{})
		rec := awaitingRecord(f.employee.ID, f.superior)

		f.repo.EXPECT().FindByID(gomock.Any(), "test", rec.ID.String()).Return(rec, nil)

		_, err := f.svc.Validate(ctx, f.superior.ID.String(), rec.ID.String(), approval.ValidateRequest{
			Decision: "APPROVE",
		})
		assert.ErrorIs(t, err, workflowerrors.ErrSignatureRequired)
	})

	t.Run("placeholder signature when allowed", func(t *testing.T) {
		f := newServiceFixture(t, approval.Options{AllowPlaceholderSignature: true})
		rec := awaitingRecord(f.employee.ID, f.superior)

		f.repo.EXPECT().FindByID(gomock.Any(), "test", rec.ID.String()).Return(rec, nil)
		f.sqlMock.ExpectBegin()
		f.repo.EXPECT().WithTx(gomock.Any()).Return(f.repo)
		f.repo.EXPECT().SaveTransition(gomock.Any(), gomock.Any()).DoAndReturn(
			func(ctx context.Context, tr approval.Transition) error {
				assert.Equal(t, approval.PlaceholderSignatureRef, tr.Closed.SignatureRef)
				return nil
			})
		f.sqlMock.ExpectCommit()

		_, err := f.svc.Validate(ctx, f.superior.ID.String(), rec.ID.String(), approval.ValidateRequest{
			Decision: "APPROVE",
		})
		assert.NoError(t, err)
	})

	t.Run("terminal request", func(t *testing.T) {
		f := newServiceFixture(t, approval.Options{})
		rec := draftRecord(f.employee.ID, "sig")
		rec.Status = string(workflow.StatusApproved)

		f.repo.EXPECT().FindByID(gomock.Any(), "test", rec.ID.String()).Return(rec, nil)

		_, err := f.svc.Validate(ctx, f.superior.ID.String(), rec.ID.String(), approval.ValidateRequest{
			Decision: "REJECT",
		})
		assertAppError(t, err, apperror.CodeInvalidState, http.StatusConflict)
	})

	t.Run("invalid decision", func(t *testing.T) {
		f := newServiceFixture(t, approval.Options{})
		rec := awaitingRecord(f.employee.ID, f.superior)

		f.repo.EXPECT().FindByID(gomock.Any(), "test", rec.ID.String()).Return(rec, nil)

		_, err := f.svc.Validate(ctx, f.superior.ID.String(), rec.ID.String(), approval.ValidateRequest{
			Decision: "MAYBE",
		})
		assert.ErrorIs(t, err, workflowerrors.ErrInvalidDecision)
	})
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("draft", func(t *testing.T) {
		f := newServiceFixture(t, approval.Options{})
		rec := draftRecord(f.employee.ID, "")

		f.repo.EXPECT().FindByID(gomock.Any(), "test", rec.ID.String()).Return(rec, nil)
		f.repo.EXPECT().DeleteDraft(gomock.Any(), "test", rec.ID.String()).Return(true, nil)

		assert.NoError(t, f.svc.Delete(ctx, f.employee.ID.String(), rec.ID.String()))
	})

	t.Run("already submitted", func(t *testing.T) {
		f := newServiceFixture(t, approval.Options{})
		rec := awaitingRecord(f.employee.ID, f.superior)

		f.repo.EXPECT().FindByID(gomock.Any(), "test", rec.ID.String()).Return(rec, nil)

		assert.ErrorIs(t, f.svc.Delete(ctx, f.employee.ID.String(), rec.ID.String()), workflowerrors.ErrNotDraft)
	})

	t.Run("submitted concurrently", func(t *testing.T) {
		f := newServiceFixture(t, approval.Options{})
		rec := draftRecord(f.employee.ID, "")

		f.repo.EXPECT().FindByID(gomock.Any(), "test", rec.ID.String()).Return(rec, nil)
		f.repo.EXPECT().DeleteDraft(gomock.Any(), "test", rec.ID.String()).Return(false, nil)

		assert.ErrorIs(t, f.svc.Delete(ctx, f.employee.ID.String(), rec.ID.String()), workflowerrors.ErrNotDraft)
	})

	t.Run("not the owner", func(t *testing.T) {
		f := newServiceFixture(t, approval.Options{})
		rec := draftRecord(f.employee.ID, "")

		f.repo.EXPECT().FindByID(gomock.Any(), "test", rec.ID.String()).Return(rec, nil)

		assert.ErrorIs(t, f.svc.Delete(ctx, f.stranger.ID.String(), rec.ID.String()), workflowerrors.ErrNotOwner)
	})
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("owner edits a draft", func(t *testing.T) {
		f := newServiceFixture(t, approval.Options{})
		rec := draftRecord(f.employee.ID, "signatures/test/old.png")

		f.repo.EXPECT().FindByID(gomock.Any(), "test", rec.ID.String()).Return(rec, nil)
		f.signatures.EXPECT().Save(gomock.Any(), "test", f.employee.ID.String(), "BBBB").Return("signatures/test/new.png", nil)
		f.repo.EXPECT().UpdateDraft(gomock.Any(), gomock.Any()).DoAndReturn(
			func(ctx context.Context, got *approval.RequestRecord) (bool, error) {
				assert.Equal(t, rec.ID, got.ID)
				assert.Equal(t, "test", got.Kind)
				assert.JSONEq(t, `{"days":5,"reason":"trip"}`, string(got.Payload))
				assert.Equal(t, "signatures/test/new.png", got.RequesterSignature)
				return true, nil
			})

		resp, err := f.svc.Update(ctx, f.employee.ID.String(), rec.ID.String(), approval.UpdateRequest[testPayload]{
			Payload:   testPayload{Days: 5, Reason: "trip"},
			Signature: "BBBB",
		})

		assert.NoError(t, err)
		assert.Equal(t, "DRAFT", resp.Status)
		assert.Equal(t, 5, resp.Payload.Days)
		assert.Equal(t, "TS-000001", resp.Reference)
	})

	t.Run("keeps the stored signature", func(t *testing.T) {
		f := newServiceFixture(t, approval.Options{})
		rec := draftRecord(f.employee.ID, "signatures/test/old.png")

		f.repo.EXPECT().FindByID(gomock.Any(), "test", rec.ID.String()).Return(rec, nil)
		f.repo.EXPECT().UpdateDraft(gomock.Any(), gomock.Any()).DoAndReturn(
			func(ctx context.Context, got *approval.RequestRecord) (bool, error) {
				assert.Equal(t, "signatures/test/old.png", got.RequesterSignature)
				return true, nil
			})

		_, err := f.svc.Update(ctx, f.employee.ID.String(), rec.ID.String(), approval.UpdateRequest[testPayload]{
			Payload: testPayload{Days: 1},
		})
		assert.NoError(t, err)
	})

	t.Run("invalid payload", func(t *testing.T) {
		f := newServiceFixture(t, approval.Options{})
		rec := draftRecord(f.employee.ID, "")

		f.repo.EXPECT().FindByID(gomock.Any(), "test", rec.ID.String()).Return(rec, nil)

		_, err := f.svc.Update(ctx, f.employee.ID.String(), rec.ID.String(), approval.UpdateRequest[testPayload]{})
		assertAppError(t, err, apperror.CodeValidation, http.StatusUnprocessableEntity)
	})

	t.Run("not the owner", func(t *testing.T) {
		f := newServiceFixture(t, approval.Options{})
		rec := draftRecord(f.employee.ID, "")

		f.repo.EXPECT().FindByID(gomock.Any(), "test", rec.ID.String()).Return(rec, nil)

		_, err := f.svc.Update(ctx, f.stranger.ID.String(), rec.ID.String(), approval.UpdateRequest[testPayload]{
			Payload: testPayload{Days: 1},
		})
		assert.ErrorIs(t, err, workflowerrors.ErrNotOwner)
	})

	t.Run("already submitted", func(t *testing.T) {
		f := newServiceFixture(t, approval.Options{})
		rec := awaitingRecord(f.employee.ID, f.superior)

		f.repo.EXPECT().FindByID(gomock.Any(), "test", rec.ID.String()).Return(rec, nil)

		_, err := f.svc.Update(ctx, f.employee.ID.String(), rec.ID.String(), approval.UpdateRequest[testPayload]{
			Payload: testPayload{Days: 1},
		})
		assertAppError(t, err, apperror.CodeInvalidState, http.StatusConflict)
	})

	t.Run("submitted concurrently", func(t *testing.T) {
		f := newServiceFixture(t, approval.Options{})
		rec := draftRecord(f.employee.ID, "")

		f.repo.EXPECT().FindByID(gomock.Any(), "test", rec.ID.String()).Return(rec, nil)
		f.repo.EXPECT().UpdateDraft(gomock.Any(), gomock.Any()).Return(false, nil)

		_, err := f.svc.Update(ctx, f.employee.ID.String(), rec.ID.String(), approval.UpdateRequest[testPayload]{
			Payload: testPayload{Days: 1},
		})
		assert.ErrorIs(t, err, workflowerrors.ErrNotDraft)
	})
}

func TestService_ListMine(t *testing.T) {
	ctx := context.Background()

	t.Run("all statuses", func(t *testing.T) {
		f := newServiceFixture(t, approval.Options{})
		newer := draftRecord(f.employee.ID, "")
		older := awaitingRecord(f.employee.ID, f.superior)

		f.repo.EXPECT().FindByRequester(gomock.Any(), "test", f.employee.ID, "").
			Return([]approval.RequestRecord{*newer, *older}, nil)

		resp, err := f.svc.ListMine(ctx, f.employee.ID.String(), "")

		assert.NoError(t, err)
		if assert.Len(t, resp, 2) {
			assert.Equal(t, newer.ID.String(), resp[0].ID)
			assert.Equal(t, "AWAITING_SUPERIOR", resp[1].Status)
		}
	})

	t.Run("status filter is normalized", func(t *testing.T) {
		f := newServiceFixture(t, approval.Options{})

		f.repo.EXPECT().FindByRequester(gomock.Any(), "test", f.employee.ID, "AWAITING_HR_MANAGER").
			Return(nil, nil)

		resp, err := f.svc.ListMine(ctx, f.employee.ID.String(), " awaiting_hr_manager ")

		assert.NoError(t, err)
		assert.Empty(t, resp)
	})

	t.Run("unknown status", func(t *testing.T) {
		f := newServiceFixture(t, approval.Options{})

		_, err := f.svc.ListMine(ctx, f.employee.ID.String(), "PENDING")

		assert.ErrorIs(t, err, workflowerrors.ErrInvalidStatusFilter)
	})
}

func TestService_Reads(t *testing.T) {
	ctx := context.Background()

	t.Run("pending for validator", func(t *testing.T) {
		f := newServiceFixture(t, approval.Options{})
		older := awaitingRecord(f.employee.ID, f.superior)
		newer := awaitingRecord(f.stranger.ID, f.superior)

		f.repo.EXPECT().FindPendingFor(gomock.Any(), "test", f.superior.ID).
			Return([]approval.RequestRecord{*older, *newer}, nil)

		resp, err := f.svc.PendingFor(ctx, f.superior.ID.String())

		assert.NoError(t, err)
		if assert.Len(t, resp, 2) {
			assert.Equal(t, older.ID.String(), resp[0].ID)
			assert.Equal(t, 3, resp[0].Payload.Days)
		}
	})

	t.Run("history for a validator", func(t *testing.T) {
		f := newServiceFixture(t, approval.Options{})
		rec := awaitingRecord(f.employee.ID, f.superior)

		f.repo.EXPECT().FindByID(gomock.Any(), "test", rec.ID.String()).Return(rec, nil)

		entries, err := f.svc.History(ctx, f.superior.ID.String(), rec.ID.String())

		assert.NoError(t, err)
		if assert.Len(t, entries, 1) {
			assert.Equal(t, "SUPERIOR", entries[0].ValidatorRole)
			assert.Nil(t, entries[0].Decision)
		}
	})

	t.Run("stranger cannot read", func(t *testing.T) {
		f := newServiceFixture(t, approval.Options{})
		rec := awaitingRecord(f.employee.ID, f.superior)

		f.repo.EXPECT().FindByID(gomock.Any(), "test", rec.ID.String()).Return(rec, nil)

		_, err := f.svc.GetByID(ctx, f.stranger.ID.String(), rec.ID.String())
		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})
}
