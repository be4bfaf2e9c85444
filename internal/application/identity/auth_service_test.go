package identity

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
)

// MockUserRepository is a mock implementation of identity.Repository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindAll(ctx context.Context, filter shared.Filter) ([]identity.User, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]identity.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) Save(ctx context.Context, entity *identity.User) error {
	args := m.Called(ctx, entity)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByRole(ctx context.Context, role identity.Role, filter shared.Filter) ([]identity.User, int64, error) {
	args := m.Called(ctx, role, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]identity.User), args.Get(1).(int64), args.Error(2)
}

// MockTokenIssuer is a mock implementation of TokenIssuer
type MockTokenIssuer struct {
	mock.Mock
}

func (m *MockTokenIssuer) Issue(userID uuid.UUID, email string, role identity.Role) (string, time.Time, error) {
	args := m.Called(userID, email, role)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func TestLogin(t *testing.T) {
	userRepo := new(MockUserRepository)
	tokens := new(MockTokenIssuer)
	service := NewAuthService(userRepo, tokens)
	ctx := context.Background()

	user, err := identity.NewUser("ada@example.com", "Ada", "correct-horse", identity.RoleCustomer)
	require.NoError(t, err)

	expiresAt := time.Now().Add(24 * time.Hour)
	userRepo.On("FindByEmail", ctx, "ada@example.com").Return(user, nil)
	tokens.On("Issue", user.ID, user.Email, identity.RoleCustomer).Return("signed-token", expiresAt, nil)
	userRepo.On("Save", ctx, user).Return(nil)

	got, err := service.Login(ctx, LoginRequest{Email: "ada@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	assert.Equal(t, "signed-token", got.Token)
	assert.Equal(t, "customer", got.User.Role)
	assert.NotNil(t, user.LastLoginAt)
}

func TestLoginWrongPassword(t *testing.T) {
	userRepo := new(MockUserRepository)
	tokens := new(MockTokenIssuer)
	service := NewAuthService(userRepo, tokens)
	ctx := context.Background()

	user, err := identity.NewUser("ada@example.com", "Ada", "correct-horse", identity.RoleCustomer)
	require.NoError(t, err)
	userRepo.On("FindByEmail", ctx, "ada@example.com").Return(user, nil)

	_, err = service.Login(ctx, LoginRequest{Email: "ada@example.com", Password: "wrong"})
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_CREDENTIALS", domainErr.Code)
	tokens.AssertNotCalled(t, "Issue", mock.Anything, mock.Anything, mock.Anything)
}

func TestLoginUnknownEmailLooksLikeWrongPassword(t *testing.T) {
	userRepo := new(MockUserRepository)
	tokens := new(MockTokenIssuer)
	service := NewAuthService(userRepo, tokens)
	ctx := context.Background()

	userRepo.On("FindByEmail", ctx, "nobody@example.com").Return(nil, shared.ErrNotFound)

	_, err := service.Login(ctx, LoginRequest{Email: "nobody@example.com", Password: "whatever"})
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_CREDENTIALS", domainErr.Code)
}

func TestLoginDisabledAccount(t *testing.T) {
	userRepo := new(MockUserRepository)
	tokens := new(MockTokenIssuer)
	service := NewAuthService(userRepo, tokens)
	ctx := context.Background()

	user, err := identity.NewUser("ada@example.com", "Ada", "correct-horse", identity.RoleAdmin)
	require.NoError(t, err)
	user.IsActive = false
	userRepo.On("FindByEmail", ctx, "ada@example.com").Return(user, nil)

	_, err = service.Login(ctx, LoginRequest{Email: "ada@example.com", Password: "correct-horse"})
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "ACCOUNT_DISABLED", domainErr.Code)
}

func TestRegister(t *testing.T) {
	userRepo := new(MockUserRepository)
	tokens := new(MockTokenIssuer)
	service := NewAuthService(userRepo, tokens)
	ctx := context.Background()

	userRepo.On("FindByEmail", ctx, "new@example.com").Return(nil, shared.ErrNotFound)
	userRepo.On("Save", ctx, mock.AnythingOfType("*identity.User")).Return(nil)

	got, err := service.Register(ctx, RegisterRequest{
		Email:    "new@example.com",
		Name:     "New Customer",
		Password: "long-enough",
	})
	require.NoError(t, err)
	assert.Equal(t, "customer", got.Role)
	assert.True(t, got.IsActive)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	userRepo := new(MockUserRepository)
	tokens := new(MockTokenIssuer)
	service := NewAuthService(userRepo, tokens)
	ctx := context.Background()

	existing, err := identity.NewUser("taken@example.com", "Taken", "password1", identity.RoleCustomer)
	require.NoError(t, err)
	userRepo.On("FindByEmail", ctx, "taken@example.com").Return(existing, nil)

	_, err = service.Register(ctx, RegisterRequest{
		Email:    "taken@example.com",
		Name:     "Someone",
		Password: "password1",
	})
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "ALREADY_EXISTS", domainErr.Code)
}

func TestChangePassword(t *testing.T) {
	userRepo := new(MockUserRepository)
	tokens := new(MockTokenIssuer)
	service := NewAuthService(userRepo, tokens)
	ctx := context.Background()

	user, err := identity.NewUser("ada@example.com", "Ada", "old-password", identity.RoleCustomer)
	require.NoError(t, err)
	userRepo.On("FindByID", ctx, user.ID).Return(user, nil)
	userRepo.On("Save", ctx, user).Return(nil)

	err = service.ChangePassword(ctx, user.ID, ChangePasswordRequest{
		CurrentPassword: "old-password",
		NewPassword:     "new-password",
	})
	require.NoError(t, err)
	assert.True(t, user.CheckPassword("new-password"))

	err = service.ChangePassword(ctx, user.ID, ChangePasswordRequest{
		CurrentPassword: "old-password",
		NewPassword:     "another",
	})
	assert.Error(t, err)
}
