package store

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// Database wraps the remote PostgreSQL connection (the cloud backend).
type Database struct {
	conn *sql.DB
	dsn  string
}

// NewDatabase opens a connection pool against the cloud database.
func NewDatabase(dsn string) (*Database, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(10 * time.Minute)

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Database{
		conn: db,
		dsn:  dsn,
	}, nil
}

// Close closes the database connection.
func (db *Database) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

// DB returns the underlying *sql.DB for queries.
func (db *Database) DB() *sql.DB {
	return db.conn
}

// migrations are applied in order and tracked in schema_migrations so a
// restart never re-runs one.
var migrations = []struct {
	version string
	sql     string
}{
	{
		version: "001_create_matches",
		sql: `
			CREATE TABLE IF NOT EXISTS matches (
				season     TEXT NOT NULL,
				matchday   INT  NOT NULL CHECK (matchday > 0),
				home       TEXT NOT NULL,
				away       TEXT NOT NULL,
				goals_home INT,
				goals_away INT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				PRIMARY KEY (season, matchday, home, away)
			)
		`,
	},
	{
		version: "002_create_predictions",
		sql: `
			CREATE TABLE IF NOT EXISTS predictions (
				id         SERIAL PRIMARY KEY,
				"user"     TEXT NOT NULL,
				season     TEXT NOT NULL,
				matchday   INT  NOT NULL,
				home       TEXT NOT NULL,
				away       TEXT NOT NULL,
				pred_home  INT  NOT NULL CHECK (pred_home >= 0),
				pred_away  INT  NOT NULL CHECK (pred_away >= 0),
				points     INT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				UNIQUE ("user", season, matchday, home, away)
			)
		`,
	},
	{
		version: "003_index_matches_open",
		sql: `
			CREATE INDEX IF NOT EXISTS idx_matches_open
				ON matches (season, matchday)
				WHERE goals_home IS NULL OR goals_away IS NULL
		`,
	},
	{
		version: "004_index_predictions_user",
		sql: `
			CREATE INDEX IF NOT EXISTS idx_predictions_user
				ON predictions (LOWER("user"), season)
		`,
	},
}

// RunMigrations executes all migrations in order.
func (db *Database) RunMigrations() error {
	log.Println("Running database migrations...")

	if err := db.createMigrationsTable(); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	for _, m := range migrations {
		if err := db.runMigration(m.version, m.sql); err != nil {
			return fmt.Errorf("failed to run migration %s: %w", m.version, err)
		}
	}

	log.Println("✓ All migrations completed successfully")
	return nil
}

func (db *Database) createMigrationsTable() error {
	query := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version VARCHAR(255) PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	_, err := db.conn.Exec(query)
	return err
}

func (db *Database) runMigration(version, stmt string) error {
	var exists bool
	err := db.conn.QueryRow("SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)", version).Scan(&exists)
	if err != nil {
		return err
	}

	if exists {
		log.Printf("  ⊘ Skipping %s (already applied)", version)
		return nil
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(stmt); err != nil {
		return fmt.Errorf("failed to execute migration: %w", err)
	}

	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES ($1)", version); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	log.Printf("  ✓ Applied %s", version)
	return nil
}

// HealthCheck performs a health check on the database.
func (db *Database) HealthCheck() error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	return db.conn.PingContext(ctx)
}
