package repository

import (
	"context"

	"github.com/church-content-api/internal/database"
	"github.com/church-content-api/internal/models"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	RecordLogin(ctx context.Context, id string) error
	List(ctx context.Context) ([]*models.User, error)
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	Update(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id string) (*models.Post, error)
	ListActive(ctx context.Context, category string) ([]*models.Post, error)
	CountActiveByCategory(ctx context.Context) (map[string]int, error)
	SetActive(ctx context.Context, id string, active bool) error
	ActiveImageRefs(ctx context.Context) ([]string, error)
}

// Repositories holds all repository interfaces
type Repositories struct {
	User UserRepository
	Post PostRepository
}

// New creates all repositories with the given database connection
func New(db *database.DB) *Repositories {
	return &Repositories{
		User: NewUserRepo(db),
		Post: NewPostRepo(db),
	}
}
