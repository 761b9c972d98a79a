package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/church-content-api/internal/database"
	"github.com/church-content-api/internal/models"
	"github.com/jmoiron/sqlx"
)

// postRepo is the concrete implementation of PostRepository
type postRepo struct {
	db *database.DB
}

// NewPostRepo creates a new post repository
func NewPostRepo(db *database.DB) PostRepository {
	return &postRepo{db: db}
}

func (r *postRepo) conn() (*sqlx.DB, error) {
	c := r.db.Conn()
	if c == nil {
		return nil, ErrUnavailable
	}
	return c, nil
}

// marshalImages serializes the image reference list for the TEXT column
func marshalImages(refs []string) (string, error) {
	if refs == nil {
		refs = []string{}
	}
	b, err := json.Marshal(refs)
	if err != nil {
		return "", fmt.Errorf("failed to marshal image refs: %w", err)
	}
	return string(b), nil
}

// unmarshalImages restores the image reference list from the TEXT column
func unmarshalImages(post *models.Post) error {
	if post.ImagesJSON == "" {
		post.Images = []string{}
		return nil
	}
	if err := json.Unmarshal([]byte(post.ImagesJSON), &post.Images); err != nil {
		return fmt.Errorf("failed to unmarshal image refs for post %s: %w", post.ID, err)
	}
	if post.Images == nil {
		post.Images = []string{}
	}
	return nil
}

// Create inserts a new post
func (r *postRepo) Create(ctx context.Context, post *models.Post) error {
	conn, err := r.conn()
	if err != nil {
		return err
	}

	imagesJSON, err := marshalImages(post.Images)
	if err != nil {
		return err
	}

	query := conn.Rebind(`
		INSERT INTO posts (id, title, text, category, event_date, author, images, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	_, err = conn.ExecContext(ctx, query,
		post.ID, post.Title, post.Text, post.Category, post.EventDate, post.Author,
		imagesJSON, post.Active, post.CreatedAt, post.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert post: %w", err)
	}
	return nil
}

// Update fully replaces title/text/category/date/images of an existing post
func (r *postRepo) Update(ctx context.Context, post *models.Post) error {
	conn, err := r.conn()
	if err != nil {
		return err
	}

	imagesJSON, err := marshalImages(post.Images)
	if err != nil {
		return err
	}

	query := conn.Rebind(`
		UPDATE posts
		SET title = ?, text = ?, category = ?, event_date = ?, images = ?, updated_at = ?
		WHERE id = ?
	`)
	res, err := conn.ExecContext(ctx, query,
		post.Title, post.Text, post.Category, post.EventDate, imagesJSON, time.Now().UTC(), post.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID fetches a post by id regardless of its active flag, so soft-deleted
// records remain addressable
func (r *postRepo) GetByID(ctx context.Context, id string) (*models.Post, error) {
	conn, err := r.conn()
	if err != nil {
		return nil, err
	}

	var post models.Post
	query := conn.Rebind(`
		SELECT id, title, text, category, event_date, author, images, active, created_at, updated_at
		FROM posts WHERE id = ?
	`)
	if err := conn.GetContext(ctx, &post, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch post: %w", err)
	}
	if err := unmarshalImages(&post); err != nil {
		return nil, err
	}
	return &post, nil
}

// ListActive returns active posts newest event-date first, optionally
// restricted to one category. An unknown category simply yields no rows.
func (r *postRepo) ListActive(ctx context.Context, category string) ([]*models.Post, error) {
	conn, err := r.conn()
	if err != nil {
		return nil, err
	}

	posts := []*models.Post{}
	if category == "" || category == models.CategoryAll {
		query := `
			SELECT id, title, text, category, event_date, author, images, active, created_at, updated_at
			FROM posts WHERE active = TRUE
			ORDER BY event_date DESC, created_at DESC
		`
		err = conn.SelectContext(ctx, &posts, query)
	} else {
		query := conn.Rebind(`
			SELECT id, title, text, category, event_date, author, images, active, created_at, updated_at
			FROM posts WHERE active = TRUE AND category = ?
			ORDER BY event_date DESC, created_at DESC
		`)
		err = conn.SelectContext(ctx, &posts, query, category)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	for _, p := range posts {
		if err := unmarshalImages(p); err != nil {
			return nil, err
		}
	}
	return posts, nil
}

// CountActiveByCategory returns active-post counts keyed by every fixed
// category; categories without posts are present with count 0
func (r *postRepo) CountActiveByCategory(ctx context.Context) (map[string]int, error) {
	conn, err := r.conn()
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(models.Categories))
	for _, c := range models.Categories {
		counts[c] = 0
	}

	rows, err := conn.QueryxContext(ctx, `
		SELECT category, COUNT(*) AS n
		FROM posts WHERE active = TRUE
		GROUP BY category
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to count posts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var category string
		var n int
		if err := rows.Scan(&category, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count row: %w", err)
		}
		// rows for categories outside the fixed set are ignored
		if _, ok := counts[category]; ok {
			counts[category] = n
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return counts, nil
}

// SetActive flips the soft-delete flag
func (r *postRepo) SetActive(ctx context.Context, id string, active bool) error {
	conn, err := r.conn()
	if err != nil {
		return err
	}

	query := conn.Rebind(`UPDATE posts SET active = ?, updated_at = ? WHERE id = ?`)
	res, err := conn.ExecContext(ctx, query, active, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to set post active flag: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// ActiveImageRefs returns the union of image references across active posts.
// The sweeper treats this set as "live"; everything else in storage is an
// orphan.
func (r *postRepo) ActiveImageRefs(ctx context.Context) ([]string, error) {
	conn, err := r.conn()
	if err != nil {
		return nil, err
	}

	var lists []string
	if err := conn.SelectContext(ctx, &lists, `SELECT images FROM posts WHERE active = TRUE`); err != nil {
		return nil, fmt.Errorf("failed to collect image refs: %w", err)
	}

	seen := make(map[string]bool)
	refs := []string{}
	for _, raw := range lists {
		var imgs []string
		if raw == "" {
			continue
		}
		if err := json.Unmarshal([]byte(raw), &imgs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal image refs: %w", err)
		}
		for _, ref := range imgs {
			if ref != "" && !seen[ref] {
				seen[ref] = true
				refs = append(refs, ref)
			}
		}
	}
	return refs, nil
}
