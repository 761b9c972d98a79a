package service

import (
	"context"
	"io"

	"github.com/church-content-api/internal/auth"
	"github.com/church-content-api/internal/config"
	"github.com/church-content-api/internal/models"
	"github.com/church-content-api/internal/repository"
	"github.com/church-content-api/internal/storage"
	"github.com/rs/zerolog"
)

// AuthService defines login and per-request authentication
type AuthService interface {
	Login(ctx context.Context, username, password string) (string, *models.User, error)
	Authenticate(ctx context.Context, token string) (*models.User, *auth.Claims, error)
}

// UserService defines administrative user management
type UserService interface {
	List(ctx context.Context) ([]*models.User, error)
	Create(ctx context.Context, req *models.CreateUserRequest) (*models.User, error)
	Update(ctx context.Context, id string, req *models.UpdateUserRequest) (*models.User, error)
	EnsureSeedUsers(ctx context.Context) error
}

// PostService defines the content store operations
type PostService interface {
	List(ctx context.Context, category string) ([]*models.Post, error)
	CountByCategory(ctx context.Context) (map[string]int, error)
	Get(ctx context.Context, id string) (*models.Post, error)
	Create(ctx context.Context, authorName string, req *models.PostRequest) (*models.Post, error)
	Update(ctx context.Context, id string, req *models.PostRequest) (*models.Post, error)
	SoftDelete(ctx context.Context, id string) (*models.Post, error)
}

// ImageService defines image upload, serving and deletion
type ImageService interface {
	Upload(ctx context.Context, r io.Reader, size int64, declaredName, contentType string) (string, error)
	Open(ctx context.Context, ref string) (*storage.Object, error)
	Delete(ctx context.Context, ref string) error
}

// SweeperService defines the orphaned-image reclamation lifecycle
type SweeperService interface {
	Start(ctx context.Context)
	Stop()
	Trigger()
	Sweep(ctx context.Context) (int, error)
}

// Services holds all service interfaces
type Services struct {
	Auth    AuthService
	User    UserService
	Post    PostService
	Image   ImageService
	Sweeper SweeperService
}

// NewServices creates all services
func NewServices(repos *repository.Repositories, store storage.Store, cfg *config.Config, log zerolog.Logger) *Services {
	issuer := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	sweeper := newSweeper(repos.Post, store, cfg.Sweep, log)
	authSvc := newAuthService(repos.User, issuer, log)
	userSvc := newUserService(repos.User, cfg.Auth.BcryptCost, log)
	postSvc := newPostService(repos.Post, sweeper, log)
	imageSvc := newImageService(store, cfg.Storage.MaxUploadSize, log)

	return &Services{
		Auth:    authSvc,
		User:    userSvc,
		Post:    postSvc,
		Image:   imageSvc,
		Sweeper: sweeper,
	}
}
