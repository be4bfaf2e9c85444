package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
)

// TokenIssuer issues signed access tokens for authenticated users
type TokenIssuer interface {
	Issue(userID uuid.UUID, email string, role identity.Role) (token string, expiresAt time.Time, err error)
}

// AuthService handles authentication and account operations
type AuthService struct {
	userRepo identity.Repository
	tokens   TokenIssuer
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo identity.Repository, tokens TokenIssuer) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
	}
}

// Login authenticates a user and issues an access token. A wrong email
// and a wrong password return the same error.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, shared.NewDomainError("ACCOUNT_DISABLED", "Account is disabled")
	}
	if !user.CheckPassword(req.Password) {
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
	}

	token, expiresAt, err := s.tokens.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}

	user.RecordLogin(time.Now())
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	return &LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      toUserResponse(user),
	}, nil
}

// Register creates a customer account
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*UserResponse, error) {
	if existing, err := s.userRepo.FindByEmail(ctx, req.Email); err == nil && existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "An account with this email already exists")
	} else if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	user, err := identity.NewUser(req.Email, req.Name, req.Password, identity.RoleCustomer)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	resp := toUserResponse(user)
	return &resp, nil
}

// Profile returns the account of the given user
func (s *AuthService) Profile(ctx context.Context, userID uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := toUserResponse(user)
	return &resp, nil
}

// ChangePassword changes the password of the given user after verifying
// the current one
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, req ChangePasswordRequest) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.CheckPassword(req.CurrentPassword) {
		return shared.NewDomainError("INVALID_CREDENTIALS", "Current password is incorrect")
	}
	if err := user.ChangePassword(req.NewPassword); err != nil {
		return err
	}
	return s.userRepo.Save(ctx, user)
}
