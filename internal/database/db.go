package database

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/church-content-api/internal/config"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// Driver names for the primary store and the embedded fallback
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

func init() {
	// modernc.org/sqlite registers as "sqlite", which sqlx does not know about
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// DB wraps the sqlx connection together with an explicit connection state.
// Repositories must go through Conn() and treat a nil handle as the store
// being unreachable.
type DB struct {
	mu     sync.RWMutex
	conn   *sqlx.DB
	driver string

	cfg *config.DatabaseConfig
	log zerolog.Logger
}

// New creates the database wrapper without connecting. Call Connect to
// establish the first connection; a Reconnector keeps retrying afterwards.
func New(cfg *config.DatabaseConfig, log zerolog.Logger) *DB {
	return &DB{
		cfg: cfg,
		log: log.With().Str("component", "database").Logger(),
	}
}

// Connect attempts Postgres first and falls back to the embedded SQLite
// store when SQLITE_FALLBACK_PATH is configured. Migrations are applied as
// part of a successful connect.
func (db *DB) Connect(ctx context.Context) error {
	pgErr := db.connectPostgres(ctx)
	if pgErr == nil {
		return nil
	}

	if db.cfg.SQLiteFallbackPath == "" {
		return pgErr
	}

	db.log.Warn().Err(pgErr).Msg("Postgres unreachable, falling back to SQLite")

	if err := db.connectSQLite(ctx); err != nil {
		return errors.Join(pgErr, err)
	}
	return nil
}

func (db *DB) connectPostgres(ctx context.Context) error {
	conn, err := sqlx.Open(DriverPostgres, db.cfg.GetDSN())
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	// Configure connection pool
	conn.SetMaxOpenConns(db.cfg.MaxOpenConns)
	conn.SetMaxIdleConns(db.cfg.MaxIdleConns)
	conn.SetConnMaxLifetime(db.cfg.MaxLifetime)

	// Test connection with timeout
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := conn.PingContext(pingCtx); err != nil {
		conn.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	if err := db.runPostgresMigrations(conn); err != nil {
		conn.Close()
		return err
	}

	db.swap(conn, DriverPostgres)

	db.log.Info().
		Str("host", db.cfg.Host).
		Str("database", db.cfg.Name).
		Int("max_open_conns", db.cfg.MaxOpenConns).
		Msg("Database connection established")

	return nil
}

func (db *DB) connectSQLite(ctx context.Context) error {
	dir := filepath.Dir(db.cfg.SQLiteFallbackPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create fallback directory: %w", err)
	}

	conn, err := sqlx.Open(DriverSQLite, db.cfg.SQLiteFallbackPath)
	if err != nil {
		return fmt.Errorf("failed to open sqlite fallback: %w", err)
	}

	// modernc sqlite is a single-writer store
	conn.SetMaxOpenConns(1)

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return fmt.Errorf("failed to ping sqlite fallback: %w", err)
	}

	if _, err := conn.ExecContext(ctx, sqliteSchema); err != nil {
		conn.Close()
		return fmt.Errorf("failed to apply sqlite schema: %w", err)
	}

	db.swap(conn, DriverSQLite)

	db.log.Info().
		Str("path", db.cfg.SQLiteFallbackPath).
		Msg("SQLite fallback store opened")

	return nil
}

// runPostgresMigrations executes all pending migrations using golang-migrate
func (db *DB) runPostgresMigrations(conn *sqlx.DB) error {
	db.log.Info().Str("path", db.cfg.MigrationsPath).Msg("Running database migrations")

	driver, err := postgres.WithInstance(conn.DB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", db.cfg.MigrationsPath),
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	db.log.Info().
		Uint("version", version).
		Bool("dirty", dirty).
		Msg("Migrations completed")

	return nil
}

func (db *DB) swap(conn *sqlx.DB, driver string) {
	db.mu.Lock()
	old := db.conn
	db.conn = conn
	db.driver = driver
	db.mu.Unlock()

	if old != nil {
		old.Close()
	}
}

// NewFromConn wraps an already-open connection. Tests use it to inject a
// mock connection without dialing anything.
func NewFromConn(conn *sqlx.DB, driver string, log zerolog.Logger) *DB {
	return &DB{
		conn:   conn,
		driver: driver,
		log:    log.With().Str("component", "database").Logger(),
	}
}

// Conn returns the current handle, or nil when the store is unreachable
func (db *DB) Conn() *sqlx.DB {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.conn
}

// State reports the connected driver name and connectivity for /health
func (db *DB) State() (driver string, connected bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if db.conn == nil {
		return "", false
	}
	return db.driver, true
}

// MarkDisconnected closes and clears the current handle after a failed ping
func (db *DB) MarkDisconnected() {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.conn != nil {
		db.conn.Close()
		db.conn = nil
		db.driver = ""
	}
}

// HealthCheck verifies the database connection is healthy
func (db *DB) HealthCheck(ctx context.Context) error {
	conn := db.Conn()
	if conn == nil {
		return errors.New("database not connected")
	}
	return conn.PingContext(ctx)
}

// Close releases the current connection, if any
func (db *DB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.conn == nil {
		return nil
	}
	err := db.conn.Close()
	db.conn = nil
	db.driver = ""
	return err
}
