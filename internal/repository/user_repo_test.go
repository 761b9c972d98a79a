package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/church-content-api/internal/config"
	"github.com/church-content-api/internal/database"
	"github.com/church-content-api/internal/models"
	"github.com/church-content-api/internal/repository"
)

func init() {
	// keep ? placeholders unchanged when Rebind runs against the mock driver
	sqlx.BindDriver("sqlmock", sqlx.QUESTION)
}

func newMockDB(t *testing.T) (*database.DB, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { raw.Close() })

	conn := sqlx.NewDb(raw, "sqlmock")
	return database.NewFromConn(conn, "sqlmock", zerolog.Nop()), mock
}

var userColumns = []string{
	"id", "name", "username", "password_hash", "role", "active",
	"last_login", "created_at", "updated_at",
}

func TestUserRepo_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := repository.NewUserRepo(db)

	now := time.Now().UTC()
	user := &models.User{
		ID:           "b7e9c3e0-7b11-4c2e-9a56-0f33a81c94d1",
		Name:         "Almir",
		Username:     "almir",
		PasswordHash: "$2a$10$hash",
		Role:         "admin",
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM users").
		WithArgs(user.Username).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec("INSERT INTO users").
		WithArgs(user.ID, user.Name, user.Username, user.PasswordHash, user.Role, user.Active, user.CreatedAt, user.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), user)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_Create_DuplicateUsername(t *testing.T) {
	db, mock := newMockDB(t)
	repo := repository.NewUserRepo(db)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM users").
		WithArgs("almir").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	err := repo.Create(context.Background(), &models.User{Username: "almir"})
	assert.ErrorIs(t, err, repository.ErrDuplicateUsername)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_GetByUsername(t *testing.T) {
	db, mock := newMockDB(t)
	repo := repository.NewUserRepo(db)

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT (.+) FROM users WHERE LOWER\\(username\\)").
		WithArgs("  ALMIR ").
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow("id-1", "Almir", "almir", "$2a$10$hash", "admin", true, nil, now, now))

	user, err := repo.GetByUsername(context.Background(), "  ALMIR ")
	require.NoError(t, err)
	assert.Equal(t, "almir", user.Username)
	assert.Equal(t, "admin", user.Role)
	assert.Nil(t, user.LastLogin)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_GetByUsername_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := repository.NewUserRepo(db)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE LOWER\\(username\\)").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(userColumns))

	_, err := repo.GetByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUserRepo_Update_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := repository.NewUserRepo(db)

	mock.ExpectExec("UPDATE users").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &models.User{ID: "missing"})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUserRepo_RecordLogin(t *testing.T) {
	db, mock := newMockDB(t)
	repo := repository.NewUserRepo(db)

	mock.ExpectExec("UPDATE users SET last_login").
		WithArgs(sqlmock.AnyArg(), "id-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.RecordLogin(context.Background(), "id-1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_List(t *testing.T) {
	db, mock := newMockDB(t)
	repo := repository.NewUserRepo(db)

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT (.+) FROM users ORDER BY created_at DESC").
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow("id-2", "Secretaria", "secretaria", "h", "editor", true, nil, now, now).
			AddRow("id-1", "Almir", "almir", "h", "admin", true, nil, now.Add(-time.Hour), now))

	users, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "secretaria", users[0].Username)
}

func TestUserRepo_Unavailable(t *testing.T) {
	db := database.New(&config.DatabaseConfig{}, zerolog.Nop()) // never connected
	repo := repository.NewUserRepo(db)

	_, err := repo.GetByID(context.Background(), "id-1")
	assert.ErrorIs(t, err, repository.ErrUnavailable)

	err = repo.Create(context.Background(), &models.User{Username: "x"})
	assert.ErrorIs(t, err, repository.ErrUnavailable)
}
