package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"github.com/wso2/customize-validation-api/internal/config"
)

// schemaStatements create the tables used by the service. They are valid for both MySQL and SQLite.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS SETTING_VALUE (
		SETTING_ID    VARCHAR(255) NOT NULL PRIMARY KEY,
		SETTING_VALUE TEXT         NOT NULL,
		CHANGESET_ID  VARCHAR(64)  NOT NULL,
		UPDATED_TIME  BIGINT       NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS CUSTOMIZE_CHANGESET (
		CHANGESET_ID  VARCHAR(64)  NOT NULL PRIMARY KEY,
		STATUS        VARCHAR(32)  NOT NULL,
		SETTING_COUNT INT          NOT NULL,
		SAVED_TIME    BIGINT       NOT NULL,
		SAVED_BY      VARCHAR(255) NOT NULL
	)`,
}

// DB holds the database connection
type DB struct {
	*sqlx.DB
	logger *logrus.Logger
}

var dbInstance *DB

// Initialize creates and initializes the database connection
func Initialize(cfg *config.DatabaseConfig, logger *logrus.Logger) (*DB, error) {
	logger.WithFields(logrus.Fields{
		"type":     cfg.Type,
		"hostname": cfg.Hostname,
		"port":     cfg.Port,
		"database": cfg.Database,
		"path":     cfg.Path,
	}).Info("Connecting to database...")

	db, err := sqlx.Open(cfg.DriverName(), cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Successfully connected to database")

	dbInstance = New(db, logger)
	return dbInstance, nil
}

// New wraps an open sqlx connection
func New(db *sqlx.DB, logger *logrus.Logger) *DB {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &DB{
		DB:     db,
		logger: logger,
	}
}

// Get returns the global database instance
func Get() *DB {
	return dbInstance
}

// IsSQLite reports whether the connection uses the sqlite3 driver
func (db *DB) IsSQLite() bool {
	return db.DriverName() == "sqlite3"
}

// EnsureSchema creates missing tables
func (db *DB) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	db.logger.Debug("Database schema ensured")
	return nil
}

// Close closes the database connection
func (db *DB) Close() error {
	if db.DB != nil {
		db.logger.Info("Closing database connection...")
		return db.DB.Close()
	}
	return nil
}

// HealthCheck checks if the database is healthy
func (db *DB) HealthCheck(ctx context.Context) error {
	if db.DB == nil {
		return fmt.Errorf("database connection is not initialized")
	}

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	return nil
}

// Transaction represents a database transaction
type Transaction struct {
	*sqlx.Tx
	logger *logrus.Logger
}

// BeginTx starts a new transaction
func (db *DB) BeginTx(ctx context.Context) (*Transaction, error) {
	tx, err := db.DB.BeginTxx(ctx, &sql.TxOptions{
		Isolation: sql.LevelReadCommitted,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	db.logger.Debug("Transaction started")

	return &Transaction{
		Tx:     tx,
		logger: db.logger,
	}, nil
}

// Commit commits the transaction
func (tx *Transaction) Commit() error {
	if err := tx.Tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	tx.logger.Debug("Transaction committed")
	return nil
}

// Rollback rolls back the transaction
func (tx *Transaction) Rollback() error {
	if err := tx.Tx.Rollback(); err != nil {
		if err == sql.ErrTxDone {
			// Transaction already completed
			return nil
		}
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	tx.logger.Debug("Transaction rolled back")
	return nil
}

// WithTransaction executes a function within a transaction
// If the function returns an error, the transaction is rolled back
// Otherwise, it is committed
func (db *DB) WithTransaction(ctx context.Context, fn func(*Transaction) error) error {
	tx, err := db.BeginTx(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			// Rollback on panic
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			db.logger.WithError(rbErr).Error("Failed to rollback transaction")
		}
		return err
	}

	return tx.Commit()
}

// Stats returns database statistics
func (db *DB) Stats() sql.DBStats {
	return db.DB.Stats()
}

// LogStats logs current database connection pool statistics
func (db *DB) LogStats() {
	stats := db.Stats()
	db.logger.WithFields(logrus.Fields{
		"open_connections":    stats.OpenConnections,
		"in_use":              stats.InUse,
		"idle":                stats.Idle,
		"wait_count":          stats.WaitCount,
		"wait_duration":       stats.WaitDuration,
		"max_idle_closed":     stats.MaxIdleClosed,
		"max_lifetime_closed": stats.MaxLifetimeClosed,
	}).Debug("Database connection pool stats")
}
