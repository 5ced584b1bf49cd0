// Package sqldb implements storage.Repository on top of database/sql. The SQL backends
// (sqlite, postgres) open the connection, apply their schema and select a Dialect.
package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/slok/herdops/internal/log"
	"github.com/slok/herdops/internal/model"
	"github.com/slok/herdops/internal/storage"
)

var _ storage.Repository = (*Repository)(nil)

// Dialect has the backend specific bits of the SQL repository.
type Dialect struct {
	Name string
	// Rebind rewrites a query written with `?` placeholders into the dialect ones.
	Rebind func(query string) string
	// IsUniqueViolation reports whether err is a unique constraint violation.
	IsUniqueViolation func(err error) bool
}

// QuestionRebind keeps `?` placeholders.
func QuestionRebind(query string) string { return query }

// DollarRebind rewrites `?` placeholders into `$1..$n`.
func DollarRebind(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// RepositoryConfig is the configuration for the SQL repository.
type RepositoryConfig struct {
	DB      *sql.DB
	Dialect Dialect
	Logger  log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.DB == nil {
		return fmt.Errorf("db is required")
	}
	if c.Dialect.Name == "" {
		return fmt.Errorf("dialect name is required")
	}
	if c.Dialect.Rebind == nil {
		c.Dialect.Rebind = QuestionRebind
	}
	if c.Dialect.IsUniqueViolation == nil {
		c.Dialect.IsUniqueViolation = func(error) bool { return false }
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.SQL", "dialect": c.Dialect.Name})
	return nil
}

// Repository is a database/sql implementation of storage.Repository.
type Repository struct {
	db      *sql.DB
	dialect Dialect
	logger  log.Logger
}

// NewRepository creates a new SQL repository. The schema must be already applied.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Repository{
		db:      cfg.DB,
		dialect: cfg.Dialect,
		logger:  cfg.Logger,
	}, nil
}

// DB returns the underlying database handle.
func (r *Repository) DB() *sql.DB { return r.db }

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

func (r *Repository) exec(ctx context.Context, e execer, query string, args ...any) (sql.Result, error) {
	return e.ExecContext(ctx, r.dialect.Rebind(query), args...)
}

func (r *Repository) query(ctx context.Context, e execer, query string, args ...any) (*sql.Rows, error) {
	return e.QueryContext(ctx, r.dialect.Rebind(query), args...)
}

func (r *Repository) queryRow(ctx context.Context, e execer, query string, args ...any) *sql.Row {
	return e.QueryRowContext(ctx, r.dialect.Rebind(query), args...)
}

// inTx runs fn inside a transaction, committing only if fn succeeds.
func (r *Repository) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }() // Rollback is safe to call after Commit

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}
	return nil
}

func (r *Repository) exists(ctx context.Context, e execer, query string, args ...any) (bool, error) {
	var one int
	err := r.queryRow(ctx, e, query, args...).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func checkAffected(res sql.Result, notFound error) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}
	if rows == 0 {
		return notFound
	}
	return nil
}

func timeFromUnix(unix int64) time.Time { return time.Unix(unix, 0).UTC() }

func nullUnix(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.Unix(), Valid: true}
}

func nullTime(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := timeFromUnix(v.Int64)
	return &t
}

func nullDate(d *model.Date) sql.NullString {
	if d == nil || d.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func dateFromNull(v sql.NullString) (*model.Date, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	d, err := model.ParseDate(v.String)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
