package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/church-content-api/internal/database"
	"github.com/church-content-api/internal/models"
	"github.com/jmoiron/sqlx"
)

// userRepo is the concrete implementation of UserRepository
type userRepo struct {
	db *database.DB
}

// NewUserRepo creates a new user repository
func NewUserRepo(db *database.DB) UserRepository {
	return &userRepo{db: db}
}

// conn returns the live handle or ErrUnavailable when the store is down
func (r *userRepo) conn() (*sqlx.DB, error) {
	c := r.db.Conn()
	if c == nil {
		return nil, ErrUnavailable
	}
	return c, nil
}

// Create inserts a new user. The password must already be hashed.
func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	conn, err := r.conn()
	if err != nil {
		return err
	}

	exists, err := r.UsernameExists(ctx, user.Username)
	if err != nil {
		return err
	}
	if exists {
		return ErrDuplicateUsername
	}

	query := conn.Rebind(`
		INSERT INTO users (id, name, username, password_hash, role, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	_, err = conn.ExecContext(ctx, query,
		user.ID, user.Name, user.Username, user.PasswordHash, user.Role, user.Active,
		user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// Update replaces the mutable fields of an existing user
func (r *userRepo) Update(ctx context.Context, user *models.User) error {
	conn, err := r.conn()
	if err != nil {
		return err
	}

	query := conn.Rebind(`
		UPDATE users
		SET name = ?, role = ?, active = ?, password_hash = ?, updated_at = ?
		WHERE id = ?
	`)
	res, err := conn.ExecContext(ctx, query,
		user.Name, user.Role, user.Active, user.PasswordHash, time.Now().UTC(), user.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
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

// GetByID fetches a user by id, active or not
func (r *userRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	conn, err := r.conn()
	if err != nil {
		return nil, err
	}

	var user models.User
	query := conn.Rebind(`
		SELECT id, name, username, password_hash, role, active, last_login, created_at, updated_at
		FROM users WHERE id = ?
	`)
	if err := conn.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	return &user, nil
}

// GetByUsername fetches a user by case-insensitive, trimmed username
func (r *userRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	conn, err := r.conn()
	if err != nil {
		return nil, err
	}

	var user models.User
	query := conn.Rebind(`
		SELECT id, name, username, password_hash, role, active, last_login, created_at, updated_at
		FROM users WHERE LOWER(username) = LOWER(TRIM(?))
	`)
	if err := conn.GetContext(ctx, &user, query, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	return &user, nil
}

// UsernameExists reports whether a case-insensitive collision exists
func (r *userRepo) UsernameExists(ctx context.Context, username string) (bool, error) {
	conn, err := r.conn()
	if err != nil {
		return false, err
	}

	var count int
	query := conn.Rebind(`SELECT COUNT(*) FROM users WHERE LOWER(username) = LOWER(TRIM(?))`)
	if err := conn.GetContext(ctx, &count, query, username); err != nil {
		return false, fmt.Errorf("failed to check username: %w", err)
	}
	return count > 0, nil
}

// RecordLogin sets last_login to the current time
func (r *userRepo) RecordLogin(ctx context.Context, id string) error {
	conn, err := r.conn()
	if err != nil {
		return err
	}

	query := conn.Rebind(`UPDATE users SET last_login = ? WHERE id = ?`)
	if _, err := conn.ExecContext(ctx, query, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("failed to record login: %w", err)
	}
	return nil
}

// List returns all users, newest first
func (r *userRepo) List(ctx context.Context) ([]*models.User, error) {
	conn, err := r.conn()
	if err != nil {
		return nil, err
	}

	users := []*models.User{}
	query := `
		SELECT id, name, username, password_hash, role, active, last_login, created_at, updated_at
		FROM users ORDER BY created_at DESC
	`
	if err := conn.SelectContext(ctx, &users, query); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}
