package identity

import (
	"context"

	"github.com/storefront/backend/internal/domain/shared"
)

// Repository defines persistence for users
type Repository interface {
	shared.Repository[User]
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByRole(ctx context.Context, role Role, filter shared.Filter) ([]User, int64, error)
}
