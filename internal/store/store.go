package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jinzhu/gorm"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

var (
	// ErrNotFound is returned when a row does not exist
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a row would duplicate a unique key
	ErrConflict = errors.New("record already exists")
	// ErrInvalid wraps validation failures of rows passed in for writing
	ErrInvalid = errors.New("invalid input")
)

// Store is the data access layer: one method per query against the
// catering tables. Errors from the database are returned wrapped.
type Store struct {
	db *gorm.DB
}

// New creates a store over an open database
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB returns the underlying connection
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Transaction runs fn with a store bound to a single transaction. The
// transaction commits when fn returns nil and rolls back otherwise.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

// conn returns the connection for a query, refusing to start one once the
// caller has given up.
func (s *Store) conn(ctx context.Context) (*gorm.DB, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.db, nil
}

func wrap(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	msg := fmt.Sprintf(format, args...)
	if gorm.IsRecordNotFoundError(err) {
		return fmt.Errorf("%s: %w", msg, ErrNotFound)
	}
	if isUniqueViolation(err) {
		return fmt.Errorf("%s: %w: %w", msg, ErrConflict, err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// isUniqueViolation recognizes duplicate key errors from both drivers
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}

func invalid(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalid, err)
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func likePattern(q string) string {
	return "%" + q + "%"
}
