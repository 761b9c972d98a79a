package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/church-content-api/internal/models"
	"github.com/church-content-api/internal/repository"
	"github.com/church-content-api/internal/validation"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// postService is the concrete implementation of PostService
type postService struct {
	posts   repository.PostRepository
	sweeper SweeperService
	log     zerolog.Logger
}

// newPostService creates a new PostService
func newPostService(posts repository.PostRepository, sweeper SweeperService, log zerolog.Logger) *postService {
	return &postService{
		posts:   posts,
		sweeper: sweeper,
		log:     log.With().Str("service", "post").Logger(),
	}
}

// List returns active posts, newest event-date first. While the backing
// store is unreachable it returns a single synthetic placeholder so public
// pages keep rendering; it never fails the read.
func (s *postService) List(ctx context.Context, category string) ([]*models.Post, error) {
	posts, err := s.posts.ListActive(ctx, category)
	if err != nil {
		if errors.Is(err, repository.ErrUnavailable) {
			s.log.Warn().Msg("Store unavailable, serving placeholder post")
			return []*models.Post{models.PlaceholderPost(time.Now().UTC())}, nil
		}
		return nil, err
	}
	return posts, nil
}

// CountByCategory returns active-post counts for every fixed category.
// In degraded mode the zero-filled map is returned so navigation renders.
func (s *postService) CountByCategory(ctx context.Context) (map[string]int, error) {
	counts, err := s.posts.CountActiveByCategory(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrUnavailable) {
			zero := make(map[string]int, len(models.Categories))
			for _, c := range models.Categories {
				zero[c] = 0
			}
			return zero, nil
		}
		return nil, err
	}
	return counts, nil
}

// Get fetches a post by id, including soft-deleted ones
func (s *postService) Get(ctx context.Context, id string) (*models.Post, error) {
	if !validation.IsValidUUID(id) {
		return nil, ErrInvalidID
	}

	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUnavailable) {
			return nil, ErrServiceUnavailable
		}
		return nil, err
	}
	return post, nil
}

// Create validates and persists a new post. The author always comes from
// the authenticated caller, never from client input.
func (s *postService) Create(ctx context.Context, authorName string, req *models.PostRequest) (*models.Post, error) {
	if errs := validation.ValidatePostRequest(req); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrValidation, validation.Join(errs))
	}

	eventDate, err := validation.ParseEventDate(req.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: date: %s", ErrValidation, err)
	}

	now := time.Now().UTC()
	post := &models.Post{
		ID:        uuid.New().String(),
		Title:     strings.TrimSpace(req.Title),
		Text:      req.Text,
		Category:  req.Category,
		EventDate: eventDate,
		Author:    authorName,
		Images:    req.Images,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if post.Images == nil {
		post.Images = []string{}
	}

	if err := s.posts.Create(ctx, post); err != nil {
		if errors.Is(err, repository.ErrUnavailable) {
			return nil, ErrServiceUnavailable
		}
		return nil, err
	}

	s.log.Info().
		Str("post_id", post.ID).
		Str("category", post.Category).
		Int("images", len(post.Images)).
		Msg("Post created")

	s.sweeper.Trigger()
	return post, nil
}

// Update fully replaces the mutable fields of an existing post
func (s *postService) Update(ctx context.Context, id string, req *models.PostRequest) (*models.Post, error) {
	if !validation.IsValidUUID(id) {
		return nil, ErrInvalidID
	}
	if errs := validation.ValidatePostRequest(req); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrValidation, validation.Join(errs))
	}

	eventDate, err := validation.ParseEventDate(req.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: date: %s", ErrValidation, err)
	}

	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUnavailable) {
			return nil, ErrServiceUnavailable
		}
		return nil, err
	}

	post.Title = strings.TrimSpace(req.Title)
	post.Text = req.Text
	post.Category = req.Category
	post.EventDate = eventDate
	post.Images = req.Images
	if post.Images == nil {
		post.Images = []string{}
	}
	post.UpdatedAt = time.Now().UTC()

	if err := s.posts.Update(ctx, post); err != nil {
		if errors.Is(err, repository.ErrUnavailable) {
			return nil, ErrServiceUnavailable
		}
		return nil, err
	}

	s.log.Info().Str("post_id", post.ID).Msg("Post updated")

	s.sweeper.Trigger()
	return post, nil
}

// SoftDelete flips the active flag; the record and its images remain
// addressable afterwards
func (s *postService) SoftDelete(ctx context.Context, id string) (*models.Post, error) {
	if !validation.IsValidUUID(id) {
		return nil, ErrInvalidID
	}

	if err := s.posts.SetActive(ctx, id, false); err != nil {
		if errors.Is(err, repository.ErrUnavailable) {
			return nil, ErrServiceUnavailable
		}
		return nil, err
	}

	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUnavailable) {
			return nil, ErrServiceUnavailable
		}
		return nil, err
	}

	s.log.Info().Str("post_id", post.ID).Msg("Post soft-deleted")

	s.sweeper.Trigger()
	return post, nil
}
