package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bst-contable/invoice-api/internal/core/domain"
	"github.com/bst-contable/invoice-api/internal/core/ports"
)

type userService struct {
	repo     ports.UserRepository
	invoices ports.InvoiceRepository
	files    ports.FileStore
	cache    ports.Cache
	log      zerolog.Logger
}

// NewUserService returns a UserService implementation.
func NewUserService(
	repo ports.UserRepository,
	invoices ports.InvoiceRepository,
	files ports.FileStore,
	cache ports.Cache,
	log zerolog.Logger,
) ports.UserService {
	return &userService{
		repo:     repo,
		invoices: invoices,
		files:    files,
		cache:    cache,
		log:      log,
	}
}

// Create registers a new user. Emails are unique; a duplicate is refused.
func (s *userService) Create(ctx context.Context, input ports.CreateUserInput) (*domain.User, error) {
	if !domain.ValidRole(input.Role) {
		return nil, domain.ErrInvalidRole
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if existing, err := s.repo.FindByEmail(ctx, email); err == nil && existing != nil {
		return nil, domain.ErrUserExists
	}

	user := &domain.User{
		Name:      strings.TrimSpace(input.Name),
		Email:     email,
		Role:      input.Role,
		CreatedAt: time.Now().UTC(),
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		s.log.Error().Err(err).Str("email", email).Msg("failed to create user")
		return nil, err
	}

	s.log.Info().Int64("user_id", created.ID).Str("role", string(created.Role)).Msg("user created")
	return created, nil
}

func (s *userService) Get(ctx context.Context, id int64) (*domain.User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *userService) List(ctx context.Context, skip, limit int) ([]*domain.User, error) {
	if skip < 0 {
		skip = 0
	}
	if limit < 1 || limit > maxPageSize {
		limit = maxPageSize
	}
	return s.repo.List(ctx, skip, limit)
}

func (s *userService) Update(ctx context.Context, id int64, patch ports.UserPatch) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Role != nil {
		if !domain.ValidRole(*patch.Role) {
			return nil, domain.ErrInvalidRole
		}
		user.Role = *patch.Role
	}
	if patch.Name != nil {
		user.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*patch.Email))
		if email != user.Email {
			if existing, err := s.repo.FindByEmail(ctx, email); err == nil && existing != nil {
				return nil, domain.ErrUserExists
			}
			user.Email = email
		}
	}

	now := time.Now().UTC()
	user.UpdatedAt = &now

	if err := s.repo.Update(ctx, user); err != nil {
		s.log.Error().Err(err).Int64("user_id", id).Msg("failed to update user")
		return nil, err
	}
	return user, nil
}

// Delete removes the user, every invoice they own, and the stored
// attachments behind those invoices.
func (s *userService) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}

	paths, err := s.invoices.DeleteByUser(ctx, id)
	if err != nil {
		s.log.Error().Err(err).Int64("user_id", id).Msg("failed to delete user invoices")
		return err
	}
	for _, p := range paths {
		if err := s.files.Remove(ctx, p); err != nil {
			s.log.Warn().Err(err).Str("path", p).Msg("failed to remove attachment")
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, cacheKeyDashboardStats); err != nil {
			s.log.Warn().Err(err).Msg("failed to invalidate dashboard cache")
		}
	}

	s.log.Info().Int64("user_id", id).Int("attachments_removed", len(paths)).Msg("user deleted")
	return nil
}
