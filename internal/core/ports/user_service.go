package ports

import (
	"context"

	"github.com/bst-contable/invoice-api/internal/core/domain"
)

// CreateUserInput carries the data for a new user.
type CreateUserInput struct {
	Name  string
	Email string
	Role  domain.UserRole
}

// UserPatch carries optional user updates. Nil pointers are left untouched.
type UserPatch struct {
	Name  *string
	Email *string
	Role  *domain.UserRole
}

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// List returns users ordered by id with skip/limit pagination.
	List(ctx context.Context, skip, limit int) ([]*domain.User, error)
	Update(ctx context.Context, u *domain.User) error
	Delete(ctx context.Context, id int64) error
}

// UserService defines the use-case operations on users.
type UserService interface {
	Create(ctx context.Context, input CreateUserInput) (*domain.User, error)
	Get(ctx context.Context, id int64) (*domain.User, error)
	List(ctx context.Context, skip, limit int) ([]*domain.User, error)
	Update(ctx context.Context, id int64, patch UserPatch) (*domain.User, error)
	// Delete removes the user and cascades to their invoices and stored
	// attachments.
	Delete(ctx context.Context, id int64) error
}
