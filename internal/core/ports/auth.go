package ports

import (
	"context"

	"github.com/bst-contable/invoice-api/internal/core/domain"
)

// AccountRepository defines persistence for login identities.
type AccountRepository interface {
	FindByUsername(ctx context.Context, username string) (*domain.Account, error)
	Create(ctx context.Context, acc *domain.Account) (*domain.Account, error)
}

// AuthService implements registration and login for API accounts.
type AuthService interface {
	Register(ctx context.Context, username, password, email string, role domain.UserRole) (*domain.Account, error)
	Login(ctx context.Context, username, password string) (string, *domain.Account, error)
}
