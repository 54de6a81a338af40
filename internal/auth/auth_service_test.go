package auth_test

import (
	"context"
	"errors"
	"testing"

	"go-hris-workflow/internal/auth"
	autherrors "go-hris-workflow/internal/auth/errors"
	"go-hris-workflow/internal/user"
	mock_user "go-hris-workflow/internal/user/mock"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

func setup(t *testing.T) (*mock_user.MockRepository, auth.Service) {
	ctrl := gomock.NewController(t)
	repo := mock_user.NewMockRepository(ctrl)
	return repo, auth.NewService(repo, testSecret)
}

func hashed(t *testing.T, pw string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	assert.NoError(t, err)
	return string(h)
}

func TestService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("success issues token with user id and role", func(t *testing.T) {
		repo, svc := setup(t)
		id := uuid.New()
		repo.EXPECT().
			FindByEmail(gomock.Any(), "sam@example.com").
			Return(&user.User{ID: id, Email: "sam@example.com", Name: "Sam", Role: "SUPERIOR", Password: hashed(t, "secret123"), IsActive: true}, nil)

		resp, err := svc.Login(ctx, "sam@example.com", "secret123")

		assert.NoError(t, err)
		assert.Equal(t, id.String(), resp.User.ID)
		assert.Equal(t, "Superieur", resp.User.RoleLabel)

		token, err := jwt.Parse(resp.AccessToken, func(token *jwt.Token) (interface{}, error) {
			return []byte(testSecret), nil
		})
		assert.NoError(t, err)
		claims := token.Claims.(jwt.MapClaims)
		assert.Equal(t, id.String(), claims["user_id"])
		assert.Equal(t, "SUPERIOR", claims["role"])
	})

	t.Run("unknown email", func(t *testing.T) {
		repo, svc := setup(t)
		repo.EXPECT().FindByEmail(gomock.Any(), "ghost@example.com").Return(nil, gorm.ErrRecordNotFound)

		_, err := svc.Login(ctx, "ghost@example.com", "x")
		assert.ErrorIs(t, err, autherrors.ErrInvalidCredentials)
	})

	t.Run("wrong password", func(t *testing.T) {
		repo, svc := setup(t)
		repo.EXPECT().
			FindByEmail(gomock.Any(), "sam@example.com").
			Return(&user.User{ID: uuid.New(), Password: hashed(t, "secret123"), IsActive: true}, nil)

		_, err := svc.Login(ctx, "sam@example.com", "nope")
		assert.ErrorIs(t, err, autherrors.ErrInvalidCredentials)
	})

	t.Run("inactive user", func(t *testing.T) {
		repo, svc := setup(t)
		repo.EXPECT().
			FindByEmail(gomock.Any(), "old@example.com").
			Return(&user.User{ID: uuid.New(), Password: hashed(t, "secret123"), IsActive: false}, nil)

		_, err := svc.Login(ctx, "old@example.com", "secret123")
		assert.ErrorIs(t, err, autherrors.ErrUserInactive)
	})

	t.Run("repository failure is not masked", func(t *testing.T) {
		repo, svc := setup(t)
		repo.EXPECT().FindByEmail(gomock.Any(), "sam@example.com").Return(nil, errors.New("db down"))

		_, err := svc.Login(ctx, "sam@example.com", "x")
		assert.EqualError(t, err, "db down")
	})
}

func TestService_GetMe(t *testing.T) {
	repo, svc := setup(t)
	id := uuid.New()
	repo.EXPECT().FindByID(gomock.Any(), id.String()).Return(&user.User{ID: id, Role: "EMPLOYEE"}, nil)

	resp, err := svc.GetMe(context.Background(), id.String())
	assert.NoError(t, err)
	assert.Equal(t, "EMPLOYEE", resp.Role)
}
