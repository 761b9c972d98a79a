package mocks

import (
	"context"
	"io"

	"github.com/church-content-api/internal/auth"
	"github.com/church-content-api/internal/models"
	"github.com/church-content-api/internal/service"
	"github.com/church-content-api/internal/storage"
)

// MockAuthService is a mock implementation of AuthService
type MockAuthService struct {
	LoginFunc        func(ctx context.Context, username, password string) (string, *models.User, error)
	AuthenticateFunc func(ctx context.Context, token string) (*models.User, *auth.Claims, error)
}

// Verify interface compliance
var _ service.AuthService = (*MockAuthService)(nil)

func (m *MockAuthService) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, username, password)
	}
	return "", nil, service.ErrInvalidCredentials
}

func (m *MockAuthService) Authenticate(ctx context.Context, token string) (*models.User, *auth.Claims, error) {
	if m.AuthenticateFunc != nil {
		return m.AuthenticateFunc(ctx, token)
	}
	return nil, nil, auth.ErrInvalidToken
}

// MockUserService is a mock implementation of UserService
type MockUserService struct {
	Users      []*models.User
	CreateFunc func(ctx context.Context, req *models.CreateUserRequest) (*models.User, error)
	UpdateFunc func(ctx context.Context, id string, req *models.UpdateUserRequest) (*models.User, error)
}

// Verify interface compliance
var _ service.UserService = (*MockUserService)(nil)

func (m *MockUserService) List(ctx context.Context) ([]*models.User, error) {
	return m.Users, nil
}

func (m *MockUserService) Create(ctx context.Context, req *models.CreateUserRequest) (*models.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, req)
	}
	return &models.User{ID: "test-user-id", Name: req.Name, Username: req.Username, Role: req.Role, Active: true}, nil
}

func (m *MockUserService) Update(ctx context.Context, id string, req *models.UpdateUserRequest) (*models.User, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, req)
	}
	return &models.User{ID: id}, nil
}

func (m *MockUserService) EnsureSeedUsers(ctx context.Context) error {
	return nil
}

// MockPostService is a mock implementation of PostService
type MockPostService struct {
	Posts      []*models.Post
	Counts     map[string]int
	GetFunc    func(ctx context.Context, id string) (*models.Post, error)
	CreateFunc func(ctx context.Context, authorName string, req *models.PostRequest) (*models.Post, error)
	UpdateFunc func(ctx context.Context, id string, req *models.PostRequest) (*models.Post, error)
	DeleteFunc func(ctx context.Context, id string) (*models.Post, error)
}

// Verify interface compliance
var _ service.PostService = (*MockPostService)(nil)

func (m *MockPostService) List(ctx context.Context, category string) ([]*models.Post, error) {
	if category == "" || category == models.CategoryAll {
		return m.Posts, nil
	}
	filtered := []*models.Post{}
	for _, p := range m.Posts {
		if p.Category == category {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

func (m *MockPostService) CountByCategory(ctx context.Context) (map[string]int, error) {
	if m.Counts != nil {
		return m.Counts, nil
	}
	counts := make(map[string]int, len(models.Categories))
	for _, c := range models.Categories {
		counts[c] = 0
	}
	return counts, nil
}

func (m *MockPostService) Get(ctx context.Context, id string) (*models.Post, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, service.ErrInvalidID
}

func (m *MockPostService) Create(ctx context.Context, authorName string, req *models.PostRequest) (*models.Post, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, authorName, req)
	}
	return &models.Post{ID: "test-post-id", Title: req.Title, Author: authorName, Category: req.Category, Active: true}, nil
}

func (m *MockPostService) Update(ctx context.Context, id string, req *models.PostRequest) (*models.Post, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, req)
	}
	return &models.Post{ID: id, Title: req.Title, Active: true}, nil
}

func (m *MockPostService) SoftDelete(ctx context.Context, id string) (*models.Post, error) {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return &models.Post{ID: id, Active: false}, nil
}

// MockImageService is a mock implementation of ImageService
type MockImageService struct {
	Store      *MockStore
	UploadFunc func(ctx context.Context, r io.Reader, size int64, declaredName, contentType string) (string, error)
}

// Verify interface compliance
var _ service.ImageService = (*MockImageService)(nil)

func NewMockImageService() *MockImageService {
	return &MockImageService{Store: NewMockStore()}
}

func (m *MockImageService) Upload(ctx context.Context, r io.Reader, size int64, declaredName, contentType string) (string, error) {
	if m.UploadFunc != nil {
		return m.UploadFunc(ctx, r, size, declaredName, contentType)
	}
	ref := "test-" + declaredName
	if err := m.Store.Save(ctx, ref, r, size, contentType); err != nil {
		return "", err
	}
	return ref, nil
}

func (m *MockImageService) Open(ctx context.Context, ref string) (*storage.Object, error) {
	return m.Store.Open(ctx, ref)
}

func (m *MockImageService) Delete(ctx context.Context, ref string) error {
	return m.Store.Delete(ctx, ref)
}

// MockSweeperService is a mock implementation of SweeperService
type MockSweeperService struct {
	Triggers  int
	SweepFunc func(ctx context.Context) (int, error)
}

// Verify interface compliance
var _ service.SweeperService = (*MockSweeperService)(nil)

func (m *MockSweeperService) Start(ctx context.Context) {}
func (m *MockSweeperService) Stop()                     {}
func (m *MockSweeperService) Trigger()                  { m.Triggers++ }

func (m *MockSweeperService) Sweep(ctx context.Context) (int, error) {
	if m.SweepFunc != nil {
		return m.SweepFunc(ctx)
	}
	return 0, nil
}
