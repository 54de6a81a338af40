package user

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go-hris-workflow/internal/hierarchy"
	usererrors "go-hris-workflow/internal/user/errors"
	"go-hris-workflow/internal/workflow"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const (
	ValidatorsKeyPrefix = "workflow:validators:"
	validatorsTTL       = 10 * time.Minute

	StageSubmit  = "submit"
	StageForward = "forward"
)

func GetValidatorsKey(role hierarchy.Role) string {
	return ValidatorsKeyPrefix + string(role)
}

type Service interface {
	ResolveActor(ctx context.Context, id string) (workflow.Actor, error)
	ResolveValidator(ctx context.Context, email string) (workflow.Validator, error)
	NextValidators(ctx context.Context, actorRole hierarchy.Role, stage string) (NextValidatorsResponse, error)
	Hierarchy() []HierarchyStep
	InvalidateValidators(ctx context.Context, role hierarchy.Role) error
}

type service struct {
	repo   Repository
	table  *hierarchy.Table
	rdb    *redis.Client
	sf     *singleflight.Group
	logger *zap.Logger
}

func NewService(repo Repository, table *hierarchy.Table, rdb *redis.Client, logger ...*zap.Logger) Service {
	l := zap.L().Named("user.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("user.service")
	}
	return &service{
		repo:   repo,
		table:  table,
		rdb:    rdb,
		sf:     &singleflight.Group{},
		logger: l,
	}
}

func (s *service) ResolveActor(ctx context.Context, id string) (workflow.Actor, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return workflow.Actor{}, usererrors.ErrInvalidUserID
	}

	u, err := s.repo.FindByID(ctx, uid.String())
	if err != nil {
		return workflow.Actor{}, mapRepositoryError(err)
	}
	if !u.IsActive {
		return workflow.Actor{}, usererrors.ErrUserInactive
	}

	return workflow.Actor{ID: u.ID, Role: u.HierarchyRole()}, nil
}

func (s *service) ResolveValidator(ctx context.Context, email string) (workflow.Validator, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return workflow.Validator{}, usererrors.ErrUserNotFound
	}

	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return workflow.Validator{}, mapRepositoryError(err)
	}
	if !u.IsActive {
		s.logger.Warn("inactive user selected as validator", zap.String("user_id", u.ID.String()))
		return workflow.Validator{}, usererrors.ErrUserInactive
	}

	return workflow.Validator{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  u.HierarchyRole(),
	}, nil
}

// NextValidators lists the users an actor may pick for the next hop.
// The submit stage always targets the first role of the chain.
func (s *service) NextValidators(ctx context.Context, actorRole hierarchy.Role, stage string) (NextValidatorsResponse, error) {
	target, ok := s.targetRole(actorRole, stage)
	if !ok {
		return NextValidatorsResponse{Validators: []ValidatorOption{}}, nil
	}

	opts, err := s.validatorsForRole(ctx, target)
	if err != nil {
		return NextValidatorsResponse{}, err
	}

	return NextValidatorsResponse{
		Role:       string(target),
		RoleLabel:  target.Label(),
		Validators: opts,
	}, nil
}

func (s *service) targetRole(actorRole hierarchy.Role, stage string) (hierarchy.Role, bool) {
	if stage == StageSubmit || !s.table.Contains(actorRole) {
		return s.table.First(), true
	}
	return s.table.NextAllowedRole(actorRole)
}

func (s *service) validatorsForRole(ctx context.Context, role hierarchy.Role) ([]ValidatorOption, error) {
	cacheKey := GetValidatorsKey(role)

	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
			var resp []ValidatorOption
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return resp, nil
			}
		}
	}

	v, err, _ := s.sf.Do(cacheKey, func() (interface{}, error) {
		users, err := s.repo.FindActiveByRole(ctx, string(role))
		if err != nil {
			s.logger.Error("load validators failed", zap.String("role", string(role)), zap.Error(err))
			return nil, err
		}

		resp := make([]ValidatorOption, 0, len(users))
		for _, u := range users {
			resp = append(resp, ValidatorOption{
				ID:        u.ID.String(),
				Name:      u.Name,
				Email:     u.Email,
				Role:      u.Role,
				RoleLabel: u.HierarchyRole().Label(),
			})
		}

		if s.rdb != nil {
			if jsonData, err := json.Marshal(resp); err == nil {
				s.rdb.Set(ctx, cacheKey, jsonData, validatorsTTL)
			}
		}

		return resp, nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]ValidatorOption), nil
}

func (s *service) InvalidateValidators(ctx context.Context, role hierarchy.Role) error {
	if s.rdb == nil {
		return nil
	}
	cacheKey := GetValidatorsKey(role)
	if err := s.rdb.Del(ctx, cacheKey).Err(); err != nil {
		s.logger.Error("failed to invalidate validators cache",
			zap.String("key", cacheKey),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (s *service) Hierarchy() []HierarchyStep {
	roles := s.table.Roles()
	steps := make([]HierarchyStep, 0, len(roles))
	for i, r := range roles {
		step := HierarchyStep{Position: i + 1, Role: string(r), Label: r.Label()}
		if next, ok := s.table.NextAllowedRole(r); ok {
			step.Next = string(next)
		}
		steps = append(steps, step)
	}
	return steps
}

func mapRepositoryError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return usererrors.ErrUserNotFound
	}
	return err
}
