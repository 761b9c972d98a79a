package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/church-content-api/internal/auth"
	"github.com/church-content-api/internal/models"
	"github.com/church-content-api/internal/repository"
	"github.com/church-content-api/internal/validation"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// userService is the concrete implementation of UserService
type userService struct {
	users      repository.UserRepository
	bcryptCost int
	log        zerolog.Logger
}

// newUserService creates a new UserService
func newUserService(users repository.UserRepository, bcryptCost int, log zerolog.Logger) *userService {
	return &userService{
		users:      users,
		bcryptCost: bcryptCost,
		log:        log.With().Str("service", "user").Logger(),
	}
}

// List returns all user accounts
func (s *userService) List(ctx context.Context) ([]*models.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrUnavailable) {
			return nil, ErrServiceUnavailable
		}
		return nil, err
	}
	return users, nil
}

// Create runs the validate-then-hash-then-persist pipeline for a new account
func (s *userService) Create(ctx context.Context, req *models.CreateUserRequest) (*models.User, error) {
	if errs := validation.ValidateCreateUser(req); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrValidation, validation.Join(errs))
	}

	hash, err := auth.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.New().String(),
		Name:         strings.TrimSpace(req.Name),
		Username:     strings.ToLower(strings.TrimSpace(req.Username)),
		PasswordHash: hash,
		Role:         req.Role,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUnavailable) {
			return nil, ErrServiceUnavailable
		}
		return nil, err
	}

	s.log.Info().
		Str("user_id", user.ID).
		Str("username", user.Username).
		Str("role", user.Role).
		Msg("User created")

	return user, nil
}

// Update applies an administrative edit. Accounts are never hard-deleted;
// deactivation happens here via the active flag.
func (s *userService) Update(ctx context.Context, id string, req *models.UpdateUserRequest) (*models.User, error) {
	if !validation.IsValidUUID(id) {
		return nil, ErrInvalidID
	}
	if errs := validation.ValidateUpdateUser(req); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrValidation, validation.Join(errs))
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUnavailable) {
			return nil, ErrServiceUnavailable
		}
		return nil, err
	}

	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.Active != nil {
		user.Active = *req.Active
	}
	if req.Password != nil {
		hash, err := auth.HashPassword(*req.Password, s.bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = hash
	}

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUnavailable) {
			return nil, ErrServiceUnavailable
		}
		return nil, err
	}

	s.log.Info().Str("user_id", user.ID).Msg("User updated")
	return user, nil
}

// EnsureSeedUsers creates the bootstrap accounts that are still absent.
// Runs at startup; a missing store is logged, not fatal, since the
// reconnect supervisor may restore it later.
func (s *userService) EnsureSeedUsers(ctx context.Context) error {
	for _, seed := range models.SeedUsers {
		exists, err := s.users.UsernameExists(ctx, seed.Username)
		if err != nil {
			return err
		}
		if exists {
			continue
		}

		if _, err := s.Create(ctx, &models.CreateUserRequest{
			Name:     seed.Name,
			Username: seed.Username,
			Password: seed.Password,
			Role:     seed.Role,
		}); err != nil {
			return fmt.Errorf("failed to seed user %s: %w", seed.Username, err)
		}

		s.log.Info().Str("username", seed.Username).Str("role", seed.Role).Msg("Seed user created")
	}
	return nil
}
