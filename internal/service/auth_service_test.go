package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/lessonforge/planner-api/internal/dto"
	"github.com/lessonforge/planner-api/internal/models"
	appErrors "github.com/lessonforge/planner-api/pkg/errors"
)

type userRepoStub struct {
	users map[string]*models.User
}

func (s userRepoStub) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	user, ok := s.users[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (s userRepoStub) FindByID(ctx context.Context, id int64) (*models.User, error) {
	for _, user := range s.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, sql.ErrNoRows
}

func newAuthFixture(t *testing.T) (*AuthService, *models.User) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{
		ID:           7,
		Email:        "teacher@school.test",
		PasswordHash: string(hash),
		FullName:     "Ada Teacher",
		Role:         models.RoleTeacher,
		Active:       true,
	}
	svc := NewAuthService(userRepoStub{users: map[string]*models.User{user.Email: user}}, nil, nil, AuthConfig{
		Secret:     "test-secret",
		Expiration: time.Hour,
		Issuer:     "planner-api",
	})
	return svc, user
}

func TestLoginIssuesValidToken(t *testing.T) {
	svc, user := newAuthFixture(t)

	resp, err := svc.Login(context.Background(), dto.LoginRequest{
		Email:    user.Email,
		Password: "correct horse",
	})
	require.NoError(t, err)
	assert.Equal(t, user.Email, resp.User.Email)
	assert.Equal(t, models.RoleTeacher, resp.User.Role)
	assert.Greater(t, resp.ExpiresIn, int64(0))

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, models.RoleTeacher, claims.Role)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, user := newAuthFixture(t)

	cases := map[string]dto.LoginRequest{
		"wrong password": {Email: user.Email, Password: "nope"},
		"unknown email":  {Email: "ghost@school.test", Password: "correct horse"},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), req)
			require.Error(t, err)
			assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
		})
	}
}

func TestLoginRejectsInactiveUser(t *testing.T) {
	svc, user := newAuthFixture(t)
	user.Active = false

	_, err := svc.Login(context.Background(), dto.LoginRequest{
		Email:    user.Email,
		Password: "correct horse",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	svc, user := newAuthFixture(t)
	resp, err := svc.Login(context.Background(), dto.LoginRequest{
		Email:    user.Email,
		Password: "correct horse",
	})
	require.NoError(t, err)

	other := NewAuthService(userRepoStub{}, nil, nil, AuthConfig{Secret: "different", Expiration: time.Hour})
	_, err = other.ValidateToken(resp.AccessToken)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
