package approval

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"go-hris-workflow/internal/hierarchy"
	"go-hris-workflow/internal/shared/apperror"
	"go-hris-workflow/internal/shared/contextutil"
	"go-hris-workflow/internal/shared/counter"
	"go-hris-workflow/internal/storage"
	usererrors "go-hris-workflow/internal/user/errors"
	"go-hris-workflow/internal/workflow"
	workflowerrors "go-hris-workflow/internal/workflow/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PlaceholderSignatureRef stands in for a missing signature when placeholders are allowed.
const PlaceholderSignatureRef = "signatures/placeholder.png"

// Payload is the kind-specific body of a request.
type Payload interface {
	Validate() error
}

// Definition describes one request kind.
type Definition[P Payload] struct {
	Kind   workflow.Kind
	Prefix string
	// Normalize fills derived fields before validation. Optional.
	Normalize func(P) P
}

// Directory resolves users into workflow actors and validators.
type Directory interface {
	ResolveActor(ctx context.Context, id string) (workflow.Actor, error)
	ResolveValidator(ctx context.Context, email string) (workflow.Validator, error)
}

type Notifier interface {
	Dispatch(ctx context.Context, notifications []workflow.Notification) error
}

type Dependencies struct {
	Users      Directory
	Counter    counter.Repository
	Signatures storage.SignatureStore
	Notifier   Notifier
}

type Options struct {
	TxTimeout                 time.Duration
	BlobTimeout               time.Duration
	AllowPlaceholderSignature bool
}

type Service[P Payload] interface {
	Create(ctx context.Context, actorID string, req CreateRequest[P]) (RequestResponse[P], error)
	GetByID(ctx context.Context, actorID, id string) (RequestResponse[P], error)
	Update(ctx context.Context, actorID, id string, req UpdateRequest[P]) (RequestResponse[P], error)
	Delete(ctx context.Context, actorID, id string) error
	ListMine(ctx context.Context, actorID, status string) ([]RequestResponse[P], error)
	Submit(ctx context.Context, actorID, id string, req SubmitRequest) (SubmitResponse, error)
	Validate(ctx context.Context, actorID, id string, req ValidateRequest) (RequestResponse[P], error)
	PendingFor(ctx context.Context, actorID string) ([]RequestResponse[P], error)
	History(ctx context.Context, actorID, id string) ([]EntryResponse, error)
}

type service[P Payload] struct {
	db     *sql.DB
	repo   Repository
	engine *workflow.Engine[P]
	def    Definition[P]
	deps   Dependencies
	opts   Options
	now    func() time.Time
	logger *zap.Logger
}

func NewService[P Payload](
	db *sql.DB,
	repo Repository,
	engine *workflow.Engine[P],
	def Definition[P],
	deps Dependencies,
	opts Options,
	logger ...*zap.Logger,
) Service[P] {
	l := zap.L().Named("approval.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("approval.service")
	}
	if opts.TxTimeout <= 0 {
		opts.TxTimeout = 5 * time.Second
	}
	if opts.BlobTimeout <= 0 {
		opts.BlobTimeout = 10 * time.Second
	}
	return &service[P]{
		db:     db,
		repo:   repo,
		engine: engine,
		def:    def,
		deps:   deps,
		opts:   opts,
		now:    func() time.Time { return time.Now().UTC() },
		logger: l.With(zap.String("kind", string(def.Kind))),
	}
}

func (s *service[P]) Create(ctx context.Context, actorID string, req CreateRequest[P]) (RequestResponse[P], error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("create request requested",
		zap.String("request_id", rid),
		zap.String("actor_id", actorID),
	)

	actor, err := s.deps.Users.ResolveActor(ctx, actorID)
	if err != nil {
		s.logger.Warn("create request resolve actor failed", zap.String("actor_id", actorID), zap.Error(err))
		return RequestResponse[P]{}, err
	}

	payload := req.Payload
	if s.def.Normalize != nil {
		payload = s.def.Normalize(payload)
	}
	if err := payload.Validate(); err != nil {
		s.logger.Warn("create request payload invalid", zap.String("request_id", rid), zap.Error(err))
		return RequestResponse[P]{}, validationError(err)
	}

	signatureRef := ""
	if strings.TrimSpace(req.Signature) != "" {
		signatureRef, err = s.storeSignature(ctx, actor.ID, req.Signature)
		if err != nil {
			return RequestResponse[P]{}, err
		}
	}

	seq, err := s.deps.Counter.GetNextValue(ctx, string(s.def.Kind))
	if err != nil {
		s.logger.Error("create request generate reference failed", zap.String("request_id", rid), zap.Error(err))
		return RequestResponse[P]{}, mapRepositoryError(err)
	}

	now := s.now()
	draft := &workflow.Request[P]{
		ID:                 uuid.New(),
		Kind:               s.def.Kind,
		Reference:          counter.FormatReference(s.def.Prefix, seq),
		RequesterID:        actor.ID,
		Payload:            payload,
		Status:             workflow.StatusDraft,
		RequesterSignature: signatureRef,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	rec, err := toRecord(draft)
	if err != nil {
		s.logger.Error("create request encode payload failed", zap.Error(err))
		return RequestResponse[P]{}, err
	}

	txCtx, cancel := context.WithTimeout(ctx, s.opts.TxTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(txCtx, nil)
	if err != nil {
		s.logger.Error("create request begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return RequestResponse[P]{}, mapRepositoryError(err)
	}
	defer tx.Rollback()

	if err := s.repo.WithTx(tx).Create(txCtx, rec); err != nil {
		s.logger.Error("create request persist failed", zap.String("request_id", rid), zap.Error(err))
		return RequestResponse[P]{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("create request commit failed", zap.String("request_id", rid), zap.Error(err))
		return RequestResponse[P]{}, mapRepositoryError(err)
	}

	s.logger.Info("create request success",
		zap.String("request_id", rid),
		zap.String("approval_request_id", draft.ID.String()),
		zap.String("reference", draft.Reference),
	)
	return mapToResponse(draft), nil
}

func (s *service[P]) GetByID(ctx context.Context, actorID, id string) (RequestResponse[P], error) {
	actor, err := s.deps.Users.ResolveActor(ctx, actorID)
	if err != nil {
		return RequestResponse[P]{}, err
	}
	req, err := s.load(ctx, id)
	if err != nil {
		return RequestResponse[P]{}, err
	}
	if !canView(req, actor) {
		return RequestResponse[P]{}, apperror.ErrForbidden
	}
	return mapToResponse(req), nil
}

func (s *service[P]) Update(ctx context.Context, actorID, id string, in UpdateRequest[P]) (RequestResponse[P], error) {
	rid := contextutil.GetRequestID(ctx)

	actor, err := s.deps.Users.ResolveActor(ctx, actorID)
	if err != nil {
		return RequestResponse[P]{}, err
	}
	req, err := s.load(ctx, id)
	if err != nil {
		return RequestResponse[P]{}, err
	}
	if req.RequesterID != actor.ID {
		return RequestResponse[P]{}, workflowerrors.ErrNotOwner
	}
	if req.Status != workflow.StatusDraft {
		return RequestResponse[P]{}, workflowerrors.ErrNotDraft
	}

	payload := in.Payload
	if s.def.Normalize != nil {
		payload = s.def.Normalize(payload)
	}
	if err := payload.Validate(); err != nil {
		s.logger.Warn("update request payload invalid", zap.String("request_id", rid), zap.Error(err))
		return RequestResponse[P]{}, validationError(err)
	}

	updated := req.Clone()
	updated.Payload = payload
	updated.UpdatedAt = s.now()
	if strings.TrimSpace(in.Signature) != "" {
		ref, err := s.storeSignature(ctx, actor.ID, in.Signature)
		if err != nil {
			return RequestResponse[P]{}, err
		}
		updated.RequesterSignature = ref
	}

	rec, err := toRecord(updated)
	if err != nil {
		s.logger.Error("update request encode payload failed", zap.Error(err))
		return RequestResponse[P]{}, err
	}

	txCtx, cancel := context.WithTimeout(ctx, s.opts.TxTimeout)
	defer cancel()

	ok, err := s.repo.UpdateDraft(txCtx, rec)
	if err != nil {
		s.logger.Error("update request failed", zap.String("request_id", rid), zap.Error(err))
		return RequestResponse[P]{}, mapRepositoryError(err)
	}
	if !ok {
		// submitted between the read and the write
		return RequestResponse[P]{}, workflowerrors.ErrNotDraft
	}

	s.logger.Info("update request success",
		zap.String("request_id", rid),
		zap.String("approval_request_id", id),
	)
	return mapToResponse(updated), nil
}

func (s *service[P]) Delete(ctx context.Context, actorID, id string) error {
	rid := contextutil.GetRequestID(ctx)

	actor, err := s.deps.Users.ResolveActor(ctx, actorID)
	if err != nil {
		return err
	}
	req, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if req.RequesterID != actor.ID {
		return workflowerrors.ErrNotOwner
	}
	if req.Status != workflow.StatusDraft {
		return workflowerrors.ErrNotDraft
	}

	txCtx, cancel := context.WithTimeout(ctx, s.opts.TxTimeout)
	defer cancel()

	deleted, err := s.repo.DeleteDraft(txCtx, string(s.def.Kind), id)
	if err != nil {
		s.logger.Error("delete request failed", zap.String("request_id", rid), zap.Error(err))
		return mapRepositoryError(err)
	}
	if !deleted {
		// submitted between the read and the delete
		return workflowerrors.ErrNotDraft
	}

	s.logger.Info("delete request success",
		zap.String("request_id", rid),
		zap.String("approval_request_id", id),
	)
	return nil
}

func (s *service[P]) Submit(ctx context.Context, actorID, id string, in SubmitRequest) (SubmitResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("submit request requested",
		zap.String("request_id", rid),
		zap.String("approval_request_id", id),
		zap.String("first_validator_email", in.FirstValidatorEmail),
	)

	actor, err := s.deps.Users.ResolveActor(ctx, actorID)
	if err != nil {
		return SubmitResponse{}, err
	}
	req, err := s.load(ctx, id)
	if err != nil {
		return SubmitResponse{}, err
	}
	first, err := s.resolveValidator(ctx, in.FirstValidatorEmail)
	if err != nil {
		return SubmitResponse{}, err
	}

	candidate := req.Clone()
	usePlaceholder := false
	switch {
	case strings.TrimSpace(in.Signature) != "":
		candidate.RequesterSignature = in.Signature
	case strings.TrimSpace(candidate.RequesterSignature) == "" && s.opts.AllowPlaceholderSignature:
		candidate.RequesterSignature = PlaceholderSignatureRef
		usePlaceholder = true
	}

	if err := s.engine.CheckSubmit(candidate, actor, first); err != nil {
		s.logger.Warn("submit request rejected",
			zap.String("request_id", rid),
			zap.String("approval_request_id", id),
			zap.Error(err),
		)
		return SubmitResponse{}, err
	}

	if strings.TrimSpace(in.Signature) != "" {
		ref, err := s.storeSignature(ctx, actor.ID, in.Signature)
		if err != nil {
			return SubmitResponse{}, err
		}
		candidate.RequesterSignature = ref
	} else if usePlaceholder {
		s.logger.Warn("submit request using placeholder signature",
			zap.String("request_id", rid),
			zap.String("approval_request_id", id),
		)
	}

	result, err := s.engine.Submit(candidate, actor, first)
	if err != nil {
		return SubmitResponse{}, err
	}

	if err := s.persist(ctx, req, result.Request); err != nil {
		s.logger.Error("submit request persist failed",
			zap.String("request_id", rid),
			zap.String("approval_request_id", id),
			zap.Error(err),
		)
		return SubmitResponse{}, err
	}

	s.notify(ctx, result.Notifications)

	s.logger.Info("submit request success",
		zap.String("request_id", rid),
		zap.String("approval_request_id", id),
		zap.String("status", string(result.Request.Status)),
	)

	return SubmitResponse{
		ID:               result.Request.ID.String(),
		Reference:        result.Request.Reference,
		Status:           string(result.Request.Status),
		WorkflowStep:     result.Request.WorkflowStep,
		CurrentValidator: mapToValidatorResponse(*first),
	}, nil
}

func (s *service[P]) Validate(ctx context.Context, actorID, id string, in ValidateRequest) (RequestResponse[P], error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("validate request requested",
		zap.String("request_id", rid),
		zap.String("approval_request_id", id),
		zap.String("decision", in.Decision),
		zap.String("next_validator_email", in.NextValidatorEmail),
	)

	actor, err := s.deps.Users.ResolveActor(ctx, actorID)
	if err != nil {
		return RequestResponse[P]{}, err
	}
	req, err := s.load(ctx, id)
	if err != nil {
		return RequestResponse[P]{}, err
	}

	decision, ok := workflow.ParseDecision(in.Decision)
	if !ok {
		decision = workflow.Decision(in.Decision)
	}
	input := workflow.ValidateInput{
		Decision:     decision,
		Comment:      strings.TrimSpace(in.Comment),
		SignatureRef: s.signaturePresence(in.Signature),
	}

	if err := s.engine.CheckValidate(req, actor, input); err != nil {
		s.logger.Warn("validate request rejected",
			zap.String("request_id", rid),
			zap.String("approval_request_id", id),
			zap.Error(err),
		)
		return RequestResponse[P]{}, err
	}

	if decision == workflow.DecisionApprove && strings.TrimSpace(in.NextValidatorEmail) != "" {
		next, err := s.resolveValidator(ctx, in.NextValidatorEmail)
		if err != nil {
			return RequestResponse[P]{}, err
		}
		if next == nil {
			return RequestResponse[P]{}, workflowerrors.ErrValidatorNotFound
		}
		input.Next = next
		if err := s.engine.CheckValidate(req, actor, input); err != nil {
			s.logger.Warn("validate request next validator rejected",
				zap.String("request_id", rid),
				zap.String("approval_request_id", id),
				zap.String("next_validator_role", string(next.Role)),
				zap.Error(err),
			)
			return RequestResponse[P]{}, err
		}
	}

	input.SignatureRef = ""
	if decision == workflow.DecisionApprove || strings.TrimSpace(in.Signature) != "" {
		ref, err := s.storeSignature(ctx, actor.ID, in.Signature)
		if err != nil {
			return RequestResponse[P]{}, err
		}
		input.SignatureRef = ref
	}

	result, err := s.engine.Validate(req, actor, input)
	if err != nil {
		return RequestResponse[P]{}, err
	}

	if err := s.persist(ctx, req, result.Request); err != nil {
		s.logger.Error("validate request persist failed",
			zap.String("request_id", rid),
			zap.String("approval_request_id", id),
			zap.Error(err),
		)
		return RequestResponse[P]{}, err
	}

	s.notify(ctx, result.Notifications)

	s.logger.Info("validate request success",
		zap.String("request_id", rid),
		zap.String("approval_request_id", id),
		zap.String("decision", string(decision)),
		zap.String("status", string(result.Request.Status)),
		zap.Int("workflow_step", result.Request.WorkflowStep),
	)
	return mapToResponse(result.Request), nil
}

func (s *service[P]) PendingFor(ctx context.Context, actorID string) ([]RequestResponse[P], error) {
	actor, err := s.deps.Users.ResolveActor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	recs, err := s.repo.FindPendingFor(ctx, string(s.def.Kind), actor.ID)
	if err != nil {
		s.logger.Error("list pending requests failed", zap.String("actor_id", actorID), zap.Error(err))
		return nil, mapRepositoryError(err)
	}
	return s.toResponses(recs)
}

func (s *service[P]) toResponses(recs []RequestRecord) ([]RequestResponse[P], error) {
	out := make([]RequestResponse[P], 0, len(recs))
	for i := range recs {
		req, err := toDomain[P](&recs[i])
		if err != nil {
			s.logger.Error("decode request failed", zap.String("approval_request_id", recs[i].ID.String()), zap.Error(err))
			return nil, err
		}
		out = append(out, mapToResponse(req))
	}
	return out, nil
}

func (s *service[P]) ListMine(ctx context.Context, actorID, status string) ([]RequestResponse[P], error) {
	actor, err := s.deps.Users.ResolveActor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	filter := ""
	if strings.TrimSpace(status) != "" {
		st, ok := workflow.ParseStatus(status)
		if !ok {
			return nil, workflowerrors.ErrInvalidStatusFilter
		}
		filter = string(st)
	}

	recs, err := s.repo.FindByRequester(ctx, string(s.def.Kind), actor.ID, filter)
	if err != nil {
		s.logger.Error("list own requests failed", zap.String("actor_id", actorID), zap.Error(err))
		return nil, mapRepositoryError(err)
	}
	return s.toResponses(recs)
}

func (s *service[P]) History(ctx context.Context, actorID, id string) ([]EntryResponse, error) {
	actor, err := s.deps.Users.ResolveActor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	req, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canView(req, actor) {
		return nil, apperror.ErrForbidden
	}
	return mapToEntryResponses(req.History), nil
}

func (s *service[P]) load(ctx context.Context, id string) (*workflow.Request[P], error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, workflowerrors.ErrRequestNotFound
	}

	rec, err := s.repo.FindByID(ctx, string(s.def.Kind), id)
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	req, err := toDomain[P](rec)
	if err != nil {
		s.logger.Error("decode request failed", zap.String("approval_request_id", id), zap.Error(err))
		return nil, err
	}
	return req, nil
}

// persist writes the transition from before to after in one transaction.
func (s *service[P]) persist(ctx context.Context, before, after *workflow.Request[P]) error {
	t, err := buildTransition(before, after)
	if err != nil {
		return err
	}

	txCtx, cancel := context.WithTimeout(ctx, s.opts.TxTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(txCtx, nil)
	if err != nil {
		return mapRepositoryError(err)
	}
	defer tx.Rollback()

	if err := s.repo.WithTx(tx).SaveTransition(txCtx, t); err != nil {
		return mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		return mapRepositoryError(err)
	}
	return nil
}

func (s *service[P]) notify(ctx context.Context, notifications []workflow.Notification) {
	if s.deps.Notifier == nil || len(notifications) == 0 {
		return
	}
	if err := s.deps.Notifier.Dispatch(ctx, notifications); err != nil {
		s.logger.Error("notification dispatch failed",
			zap.String("request_id", contextutil.GetRequestID(ctx)),
			zap.Int("count", len(notifications)),
			zap.Error(err),
		)
	}
}

// resolveValidator returns nil without error when no active user has that email.
func (s *service[P]) resolveValidator(ctx context.Context, email string) (*workflow.Validator, error) {
	v, err := s.deps.Users.ResolveValidator(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, usererrors.ErrUserNotFound) || errors.Is(err, usererrors.ErrUserInactive) {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}

func (s *service[P]) signaturePresence(raw string) string {
	if strings.TrimSpace(raw) == "" && s.opts.AllowPlaceholderSignature {
		return PlaceholderSignatureRef
	}
	return raw
}

func (s *service[P]) storeSignature(ctx context.Context, userID uuid.UUID, raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		if s.opts.AllowPlaceholderSignature {
			s.logger.Warn("using placeholder signature",
				zap.String("request_id", contextutil.GetRequestID(ctx)),
				zap.String("user_id", userID.String()),
			)
			return PlaceholderSignatureRef, nil
		}
		return "", nil
	}

	blobCtx, cancel := context.WithTimeout(ctx, s.opts.BlobTimeout)
	defer cancel()

	ref, err := s.deps.Signatures.Save(blobCtx, string(s.def.Kind), userID.String(), raw)
	if err != nil {
		s.logger.Warn("store signature failed",
			zap.String("request_id", contextutil.GetRequestID(ctx)),
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
		return "", err
	}
	return ref, nil
}

func canView[P any](req *workflow.Request[P], actor workflow.Actor) bool {
	if req.RequesterID == actor.ID || actor.Role == hierarchy.RoleAdmin {
		return true
	}
	for _, e := range req.History {
		if e.ValidatorID == actor.ID {
			return true
		}
	}
	return false
}

func validationError(err error) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperror.Wrap(err, apperror.CodeValidation, "Invalid request payload", http.StatusUnprocessableEntity)
}
