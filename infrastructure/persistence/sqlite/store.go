// Package sqlite implements the node and edge repository ports on a
// SQLite database through database/sql. The driver is pure Go, so
// ":memory:" instances back the repository tests.
package sqlite

import (
	"database/sql"
	"strings"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	pkgerrors "isometry-backend/pkg/errors"
)

// Open opens (or creates) a SQLite database and brings its schema up
// to date. Use ":memory:" for an isolated throwaway instance.
// Referential integrity between edges and nodes is enforced at the
// application level, which keeps hard-delete cascade an explicit
// caller responsibility.
func Open(dsn string, logger *zap.Logger) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("open", err)
	}

	// modernc sqlite serializes writes per connection; a single
	// connection avoids SQLITE_BUSY under concurrent callers.
	db.SetMaxOpenConns(1)

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite store ready", zap.String("dsn", dsn))
	return db, nil
}

// encodeTime serializes a timestamp as RFC3339Nano text.
func encodeTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// encodeNullTime serializes an optional timestamp.
func encodeNullTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return encodeTime(*t)
}

// decodeTime parses a stored timestamp.
func decodeTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// decodeNullTime parses an optional stored timestamp.
func decodeNullTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := decodeTime(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// isUniqueViolation detects primary-key collisions from the driver.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
