package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"

	"dtp/internal/domain"
)

const historyTable = "dtp_runs"

// History appends every run to a long-lived store
type History interface {
	Record(ctx context.Context, summary *domain.RunSummary) error
	Close() error
}

// SQLHistory records runs in a MySQL table, one row per environment
type SQLHistory struct {
	db *sql.DB
}

// OpenSQLHistory connects to the DSN's server, creates the database and table if
// they are missing and returns a History writing to them.
func OpenSQLHistory(ctx context.Context, dsn string) (*SQLHistory, error) {
	server, dbName, err := splitDSN(dsn)
	if err != nil {
		return nil, err
	}

	admin, err := sql.Open("mysql", server)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database server: %w", err)
	}
	defer admin.Close()

	if err := admin.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database server: %w", err)
	}

	exists, err := databaseExists(ctx, admin, dbName)
	if err != nil {
		return nil, fmt.Errorf("failed to check database %s: %w", dbName, err)
	}
	if !exists {
		if err := createDatabase(ctx, admin, dbName); err != nil {
			return nil, fmt.Errorf("failed to create database %s: %w", dbName, err)
		}
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	if _, err := db.ExecContext(ctx, createTableStatement()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create %s table: %w", historyTable, err)
	}
	return &SQLHistory{db: db}, nil
}

// Record inserts one row per environment of summary in a single transaction
func (h *SQLHistory) Record(ctx context.Context, summary *domain.RunSummary) error {
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin history transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertStatement())
	if err != nil {
		return fmt.Errorf("prepare history insert: %w", err)
	}
	defer stmt.Close()

	for _, env := range summary.Environments {
		if _, err := stmt.ExecContext(ctx,
			summary.Meta.Timestamp,
			string(env.Environment),
			env.Status,
			env.Total,
			env.Passed,
			env.Failed,
			env.RuntimeMs,
			env.Error,
			summary.Meta.Passed,
		); err != nil {
			return fmt.Errorf("record %s: %w", env.Environment, err)
		}
	}
	return tx.Commit()
}

// Close releases the connection pool
func (h *SQLHistory) Close() error {
	return h.db.Close()
}

func createTableStatement() string {
	return "CREATE TABLE IF NOT EXISTS `" + historyTable + "` (" +
		"id BIGINT AUTO_INCREMENT PRIMARY KEY, " +
		"run_at VARCHAR(40) NOT NULL, " +
		"environment VARCHAR(64) NOT NULL, " +
		"status VARCHAR(16) NOT NULL, " +
		"total INT NOT NULL, " +
		"passed INT NOT NULL, " +
		"failed INT NOT NULL, " +
		"runtime_ms DOUBLE NOT NULL, " +
		"error TEXT, " +
		"run_passed BOOLEAN NOT NULL)"
}

func insertStatement() string {
	return "INSERT INTO `" + historyTable + "` " +
		"(run_at, environment, status, total, passed, failed, runtime_ms, error, run_passed) " +
		"VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)"
}

// splitDSN returns a DSN for the bare server plus the database name it pointed at
func splitDSN(dsn string) (server, dbName string, err error) {
	parsed, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", "", fmt.Errorf("invalid history DSN: %w", err)
	}
	if parsed.DBName == "" {
		return "", "", errors.New("history DSN must name a database")
	}
	if !isValidDatabaseName(parsed.DBName) {
		return "", "", fmt.Errorf("invalid database name: %s", parsed.DBName)
	}
	dbName = parsed.DBName
	parsed.DBName = ""
	return parsed.FormatDSN(), dbName, nil
}

func databaseExists(ctx context.Context, db *sql.DB, dbName string) (bool, error) {
	var exists bool
	query := "SELECT EXISTS(SELECT SCHEMA_NAME FROM INFORMATION_SCHEMA.SCHEMATA WHERE SCHEMA_NAME = ?)"
	err := db.QueryRowContext(ctx, query, dbName).Scan(&exists)
	return exists, err
}

func createDatabase(ctx context.Context, db *sql.DB, dbName string) error {
	_, err := db.ExecContext(ctx, fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s`", dbName))
	return err
}

// isValidDatabaseName only allows names that are safe to interpolate into DDL
func isValidDatabaseName(name string) bool {
	if len(name) == 0 || len(name) > 64 {
		return false
	}
	for _, r := range name {
		if !(r == '_' || r == '$' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) {
			return false
		}
	}
	return !strings.HasPrefix(name, "$")
}
