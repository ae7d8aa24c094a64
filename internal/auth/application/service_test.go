package application

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/wyfcoding/portfoliotracker/internal/auth/domain"
	"github.com/wyfcoding/portfoliotracker/pkg/middleware"
)

type mockRepository struct{ mock.Mock }

func (m *mockRepository) Save(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func TestRegisterHashesPassword(t *testing.T) {
	repo := &mockRepository{}
	svc := NewAuthService(repo, "secret", time.Hour)

	repo.On("GetByUsername", mock.Anything, "alice").Return(nil, domain.ErrNotFound)
	repo.On("Save", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("s3cret-pass")) == nil
	})).Return(nil)

	user, err := svc.Register(context.Background(), "alice", "alice@example.com", "s3cret-pass", "admin")
	require.NoError(t, err)
	assert.Equal(t, "admin", user.Role)
	assert.NotEqual(t, "s3cret-pass", user.PasswordHash)
}

func TestRegisterDefaultsUnknownRoleToRead(t *testing.T) {
	repo := &mockRepository{}
	svc := NewAuthService(repo, "secret", time.Hour)

	repo.On("GetByUsername", mock.Anything, "bob").Return(nil, domain.ErrNotFound)
	repo.On("Save", mock.Anything, mock.Anything).Return(nil)

	user, err := svc.Register(context.Background(), "bob", "bob@example.com", "s3cret-pass", "superuser")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleRead, user.Role)
}

func TestRegisterRejectsDuplicateUsername(t *testing.T) {
	repo := &mockRepository{}
	svc := NewAuthService(repo, "secret", time.Hour)

	repo.On("GetByUsername", mock.Anything, "alice").Return(&domain.User{Username: "alice"}, nil)

	_, err := svc.Register(context.Background(), "alice", "alice@example.com", "s3cret-pass", "read")
	assert.ErrorIs(t, err, domain.ErrUsernameTaken)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestLoginIssuesTokenWithRole(t *testing.T) {
	repo := &mockRepository{}
	svc := NewAuthService(repo, "secret", time.Hour)

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret-pass"), bcrypt.MinCost)
	require.NoError(t, err)
	repo.On("GetByUsername", mock.Anything, "alice").Return(&domain.User{
		Username: "alice", PasswordHash: string(hash), Role: domain.RoleAdmin,
	}, nil)

	token, err := svc.Login(context.Background(), "alice", "s3cret-pass")
	require.NoError(t, err)

	claims := &middleware.Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	require.NoError(t, err)
	assert.True(t, parsed.Valid)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	repo := &mockRepository{}
	svc := NewAuthService(repo, "secret", time.Hour)

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret-pass"), bcrypt.MinCost)
	require.NoError(t, err)
	repo.On("GetByUsername", mock.Anything, "alice").Return(&domain.User{
		Username: "alice", PasswordHash: string(hash),
	}, nil)

	_, err = svc.Login(context.Background(), "alice", "wrong")
	assert.ErrorIs(t, err, domain.ErrBadCredential)
}

func TestLoginUnknownUser(t *testing.T) {
	repo := &mockRepository{}
	svc := NewAuthService(repo, "secret", time.Hour)

	repo.On("GetByUsername", mock.Anything, "nobody").Return(nil, domain.ErrNotFound)

	_, err := svc.Login(context.Background(), "nobody", "whatever")
	assert.ErrorIs(t, err, domain.ErrBadCredential)
}
