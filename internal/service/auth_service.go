package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/church-content-api/internal/auth"
	"github.com/church-content-api/internal/models"
	"github.com/church-content-api/internal/repository"
	"github.com/rs/zerolog"
)

// authService is the concrete implementation of AuthService
type authService struct {
	users  repository.UserRepository
	issuer *auth.Issuer
	log    zerolog.Logger
}

// newAuthService creates a new AuthService
func newAuthService(users repository.UserRepository, issuer *auth.Issuer, log zerolog.Logger) *authService {
	return &authService{
		users:  users,
		issuer: issuer,
		log:    log.With().Str("service", "auth").Logger(),
	}
}

// Login verifies credentials and issues a session token. Unknown usernames,
// wrong passwords and deactivated accounts all yield the same error so the
// response does not leak which part failed.
func (s *authService) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		if errors.Is(err, repository.ErrUnavailable) {
			return "", nil, ErrServiceUnavailable
		}
		return "", nil, err
	}

	if !user.Active || !auth.VerifyPassword(user.PasswordHash, password) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.issuer.Issue(user)
	if err != nil {
		return "", nil, fmt.Errorf("failed to issue token: %w", err)
	}

	if err := s.users.RecordLogin(ctx, user.ID); err != nil {
		// login still succeeds; last_login is best effort
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("Failed to record login time")
	}

	s.log.Info().
		Str("user_id", user.ID).
		Str("username", user.Username).
		Str("role", user.Role).
		Msg("User logged in")

	return token, user, nil
}

// Authenticate verifies a bearer token and re-fetches the user so that
// deactivated accounts are locked out immediately, not at token expiry.
func (s *authService) Authenticate(ctx context.Context, token string) (*models.User, *auth.Claims, error) {
	claims, err := s.issuer.Verify(token)
	if err != nil {
		return nil, nil, auth.ErrInvalidToken
	}

	user, err := s.users.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, auth.ErrInvalidToken
		}
		if errors.Is(err, repository.ErrUnavailable) {
			return nil, nil, ErrServiceUnavailable
		}
		return nil, nil, err
	}

	if !user.Active {
		return nil, nil, auth.ErrInvalidToken
	}

	return user, claims, nil
}
