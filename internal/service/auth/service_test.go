package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/evbs/battery-swap-backend/internal/domain"
	"github.com/evbs/battery-swap-backend/internal/mocks"
)

func hashed(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestLoginAndValidateRoundTrip(t *testing.T) {
	driver := &domain.User{
		ID:       42,
		FullName: "Nguyen Van A",
		Email:    "driver@example.com",
		Password: "",
		Role:     domain.UserRoleDriver,
		Status:   domain.UserStatusActive,
	}
	driver.Password = hashed(t, "s3cret")

	repo := &mocks.MockUserRepository{
		FindByEmailFunc: func(ctx context.Context, email string) (*domain.User, error) {
			if email == driver.Email {
				return driver, nil
			}
			return nil, nil
		},
		FindByIDFunc: func(ctx context.Context, id int64) (*domain.User, error) {
			if id == driver.ID {
				return driver, nil
			}
			return nil, nil
		},
	}
	svc := NewService(repo, "test-secret", time.Now, zap.NewNop())

	token, err := svc.Login(context.Background(), "driver@example.com", "s3cret")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	user, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), user.ID)
	assert.Equal(t, domain.UserRoleDriver, user.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	driver := &domain.User{
		ID:       42,
		Email:    "driver@example.com",
		Password: hashed(t, "s3cret"),
		Status:   domain.UserStatusActive,
	}
	repo := &mocks.MockUserRepository{
		FindByEmailFunc: func(ctx context.Context, email string) (*domain.User, error) {
			return driver, nil
		},
	}
	svc := NewService(repo, "test-secret", time.Now, zap.NewNop())

	_, err := svc.Login(context.Background(), "driver@example.com", "wrong")
	assert.EqualError(t, err, "invalid credentials")
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := NewService(&mocks.MockUserRepository{}, "test-secret", time.Now, zap.NewNop())

	_, err := svc.Login(context.Background(), "nobody@example.com", "whatever")
	assert.EqualError(t, err, "invalid credentials")
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	past := func() time.Time { return time.Now().Add(-48 * time.Hour) }
	driver := &domain.User{
		ID:       42,
		Email:    "driver@example.com",
		Password: hashed(t, "s3cret"),
		Status:   domain.UserStatusActive,
	}
	repo := &mocks.MockUserRepository{
		FindByEmailFunc: func(ctx context.Context, email string) (*domain.User, error) {
			return driver, nil
		},
	}
	svc := NewService(repo, "test-secret", past, zap.NewNop())

	token, err := svc.Login(context.Background(), "driver@example.com", "s3cret")
	require.NoError(t, err)

	_, err = svc.ValidateToken(context.Background(), token)
	assert.Error(t, err)
}

func TestRegisterHashesPasswordAndDefaultsRole(t *testing.T) {
	var saved *domain.User
	repo := &mocks.MockUserRepository{
		SaveFunc: func(ctx context.Context, user *domain.User) error {
			saved = user
			return nil
		},
	}
	svc := NewService(repo, "test-secret", time.Now, zap.NewNop())

	err := svc.Register(context.Background(), &domain.User{
		FullName: "New Driver",
		Email:    "new@example.com",
		Password: "plaintext",
	})
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, domain.UserRoleDriver, saved.Role)
	assert.Equal(t, domain.UserStatusActive, saved.Status)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(saved.Password), []byte("plaintext")))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := &mocks.MockUserRepository{
		FindByEmailFunc: func(ctx context.Context, email string) (*domain.User, error) {
			return &domain.User{ID: 1, Email: email}, nil
		},
	}
	svc := NewService(repo, "test-secret", time.Now, zap.NewNop())

	err := svc.Register(context.Background(), &domain.User{Email: "dup@example.com", Password: "x"})
	assert.ErrorIs(t, err, domain.ErrConflict)
}
