package approval

import (
	"context"
	"database/sql"
	"time"

	"go-hris-workflow/internal/workflow"
	workflowerrors "go-hris-workflow/internal/workflow/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Transition is everything that changes when a request moves one step.
type Transition struct {
	Request             *RequestRecord
	ExpectedStatus      string
	ExpectedStep        int
	ExpectedValidatorID *uuid.UUID
	Closed              *EntryRecord
	Added               *EntryRecord
}

//go:generate mockgen -source=approval_repo.go -destination=mock/approval_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, rec *RequestRecord) error
	FindByID(ctx context.Context, kind, id string) (*RequestRecord, error)
	DeleteDraft(ctx context.Context, kind, id string) (bool, error)
	UpdateDraft(ctx context.Context, rec *RequestRecord) (bool, error)
	SaveTransition(ctx context.Context, t Transition) error
	FindPendingFor(ctx context.Context, kind string, validatorID uuid.UUID) ([]RequestRecord, error)
	FindByRequester(ctx context.Context, kind string, requesterID uuid.UUID, status string) ([]RequestRecord, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	// Context forces a fresh Statement so the shared handle keeps its pool.
	db := r.db.Session(&gorm.Session{NewDB: true, Context: context.Background()})
	db.Statement.ConnPool = tx
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, rec *RequestRecord) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(rec).Error
}

func (r *repository) FindByID(ctx context.Context, kind, id string) (*RequestRecord, error) {
	var rec RequestRecord
	err := r.db.WithContext(ctx).
		Scopes(kindScope(kind)).
		Preload("Entries", orderByStep).
		First(&rec, "approval_requests.id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *repository) DeleteDraft(ctx context.Context, kind, id string) (bool, error) {
	res := r.db.WithContext(ctx).
		Scopes(kindScope(kind)).
		Where("id = ? AND status = ?", id, string(workflow.StatusDraft)).
		Delete(&RequestRecord{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// SaveTransition applies t only if the stored request still has the expected
// (status, workflow_step, current_validator_id). A lost race yields
// ErrConcurrentModification and writes nothing once the caller rolls back.
// UpdateDraft rewrites payload and signature only while the request is still a draft.
func (r *repository) UpdateDraft(ctx context.Context, rec *RequestRecord) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&RequestRecord{}).
		Scopes(kindScope(rec.Kind)).
		Where("id = ? AND status = ?", rec.ID, string(workflow.StatusDraft)).
		Updates(map[string]any{
			"payload":             rec.Payload,
			"requester_signature": rec.RequesterSignature,
			"updated_at":          nonZero(rec.UpdatedAt),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) SaveTransition(ctx context.Context, t Transition) error {
	db := r.db.WithContext(ctx)
	req := t.Request

	q := db.Model(&RequestRecord{}).
		Where("id = ? AND status = ? AND workflow_step = ?", req.ID, t.ExpectedStatus, t.ExpectedStep)
	if t.ExpectedValidatorID == nil {
		q = q.Where("current_validator_id IS NULL")
	} else {
		q = q.Where("current_validator_id = ?", *t.ExpectedValidatorID)
	}

	res := q.Updates(map[string]any{
		"status":               req.Status,
		"current_validator_id": req.CurrentValidatorID,
		"workflow_step":        req.WorkflowStep,
		"requester_signature":  req.RequesterSignature,
		"submitted_at":         req.SubmittedAt,
		"final_validator_id":   req.FinalValidatorID,
		"final_decision_at":    req.FinalDecisionAt,
		"final_comment":        req.FinalComment,
		"updated_at":           nonZero(req.UpdatedAt),
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return workflowerrors.ErrConcurrentModification
	}

	if t.Closed != nil {
		res = db.Model(&EntryRecord{}).
			Where("request_id = ? AND step = ? AND decision IS NULL", req.ID, t.Closed.Step).
			Updates(map[string]any{
				"decision":      t.Closed.Decision,
				"comment":       t.Closed.Comment,
				"signature_ref": t.Closed.SignatureRef,
				"decided_at":    t.Closed.DecidedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return workflowerrors.ErrConcurrentModification
		}
	}

	if t.Added != nil {
		if err := db.Create(t.Added).Error; err != nil {
			return err
		}
	}

	return nil
}

func (r *repository) FindPendingFor(ctx context.Context, kind string, validatorID uuid.UUID) ([]RequestRecord, error) {
	var recs []RequestRecord
	err := r.db.WithContext(ctx).
		Joins("JOIN workflow_entries pe ON pe.request_id = approval_requests.id AND pe.step = approval_requests.workflow_step").
		Scopes(kindScope(kind)).
		Where("approval_requests.current_validator_id = ?", validatorID).
		Where("pe.decision IS NULL").
		Order("pe.assigned_at ASC").
		Preload("Entries", orderByStep).
		Find(&recs).Error
	return recs, err
}

// kindScope restricts a query to one request kind; every kind shares approval_requests.
func kindScope(kind string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("approval_requests.kind = ?", kind)
	}
}

// FindByRequester lists a requester's own requests, newest first. An empty status means any.
func (r *repository) FindByRequester(ctx context.Context, kind string, requesterID uuid.UUID, status string) ([]RequestRecord, error) {
	var recs []RequestRecord
	q := r.db.WithContext(ctx).
		Scopes(kindScope(kind)).
		Where("approval_requests.requester_id = ?", requesterID)
	if status != "" {
		q = q.Where("approval_requests.status = ?", status)
	}
	err := q.Order("approval_requests.created_at DESC").
		Preload("Entries", orderByStep).
		Find(&recs).Error
	return recs, err
}

func orderByStep(db *gorm.DB) *gorm.DB {
	return db.Order("step ASC")
}

func nonZero(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t
}
