package mocks

import (
	"context"
	"sort"
	"strings"

	"github.com/church-content-api/internal/models"
	"github.com/church-content-api/internal/repository"
)

// MockUserRepository is an in-memory implementation of UserRepository
type MockUserRepository struct {
	Users map[string]*models.User
	// Err, when set, is returned by every method to simulate store failures
	Err error
}

// Verify interface compliance
var _ repository.UserRepository = (*MockUserRepository)(nil)

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{Users: make(map[string]*models.User)}
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	if m.Err != nil {
		return m.Err
	}
	for _, u := range m.Users {
		if strings.EqualFold(u.Username, strings.TrimSpace(user.Username)) {
			return repository.ErrDuplicateUsername
		}
	}
	m.Users[user.ID] = user
	return nil
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.Users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	m.Users[user.ID] = user
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	user, ok := m.Users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return user, nil
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	for _, u := range m.Users {
		if strings.EqualFold(u.Username, strings.TrimSpace(username)) {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockUserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	if m.Err != nil {
		return false, m.Err
	}
	for _, u := range m.Users {
		if strings.EqualFold(u.Username, strings.TrimSpace(username)) {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockUserRepository) RecordLogin(ctx context.Context, id string) error {
	if m.Err != nil {
		return m.Err
	}
	return nil
}

func (m *MockUserRepository) List(ctx context.Context) ([]*models.User, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	users := make([]*models.User, 0, len(m.Users))
	for _, u := range m.Users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	return users, nil
}

// MockPostRepository is an in-memory implementation of PostRepository
type MockPostRepository struct {
	Posts map[string]*models.Post
	// Err, when set, is returned by every method to simulate store failures
	Err error
}

// Verify interface compliance
var _ repository.PostRepository = (*MockPostRepository)(nil)

func NewMockPostRepository() *MockPostRepository {
	return &MockPostRepository{Posts: make(map[string]*models.Post)}
}

func (m *MockPostRepository) Create(ctx context.Context, post *models.Post) error {
	if m.Err != nil {
		return m.Err
	}
	m.Posts[post.ID] = post
	return nil
}

func (m *MockPostRepository) Update(ctx context.Context, post *models.Post) error {
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.Posts[post.ID]; !ok {
		return repository.ErrNotFound
	}
	m.Posts[post.ID] = post
	return nil
}

func (m *MockPostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	post, ok := m.Posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return post, nil
}

func (m *MockPostRepository) ListActive(ctx context.Context, category string) ([]*models.Post, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	posts := []*models.Post{}
	for _, p := range m.Posts {
		if !p.Active {
			continue
		}
		if category != "" && category != models.CategoryAll && p.Category != category {
			continue
		}
		posts = append(posts, p)
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].EventDate.After(posts[j].EventDate) })
	return posts, nil
}

func (m *MockPostRepository) CountActiveByCategory(ctx context.Context) (map[string]int, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	counts := make(map[string]int, len(models.Categories))
	for _, c := range models.Categories {
		counts[c] = 0
	}
	for _, p := range m.Posts {
		if p.Active {
			counts[p.Category]++
		}
	}
	return counts, nil
}

func (m *MockPostRepository) SetActive(ctx context.Context, id string, active bool) error {
	if m.Err != nil {
		return m.Err
	}
	post, ok := m.Posts[id]
	if !ok {
		return repository.ErrNotFound
	}
	post.Active = active
	return nil
}

func (m *MockPostRepository) ActiveImageRefs(ctx context.Context) ([]string, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	seen := make(map[string]bool)
	refs := []string{}
	for _, p := range m.Posts {
		if !p.Active {
			continue
		}
		for _, ref := range p.Images {
			if !seen[ref] {
				seen[ref] = true
				refs = append(refs, ref)
			}
		}
	}
	return refs, nil
}
