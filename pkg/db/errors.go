package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// SQLSTATE values the repositories branch on.
const (
	SQLStateUniqueViolation     = "23505"
	SQLStateForeignKeyViolation = "23503"
	SQLStateUndefinedTable      = "42P01"
	SQLStateUndefinedColumn     = "42703"
	SQLStateUndefinedFunction   = "42883"
)

// SQLState extracts the SQLSTATE code from pgx or lib/pq errors.
func SQLState(err error) string {
	if err == nil {
		return ""
	}
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return pgxErr.Code
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

// IsUniqueViolation reports whether err is a unique violation. When
// constraintName is provided the constraint must be named in the error.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	matched := SQLState(err) == SQLStateUniqueViolation ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed")
	if !matched {
		return false
	}
	if constraintName != "" {
		return strings.Contains(msg, constraintName)
	}
	return true
}

// IsForeignKeyViolation reports whether err is a referential integrity failure.
func IsForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	return SQLState(err) == SQLStateForeignKeyViolation ||
		strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

// IsUndefinedRelation reports a missing table or column, which some read paths
// treat as "no rows" on partially migrated schemas.
func IsUndefinedRelation(err error) bool {
	if err == nil {
		return false
	}
	switch SQLState(err) {
	case SQLStateUndefinedTable, SQLStateUndefinedColumn:
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "no such table") || strings.Contains(msg, "no such column")
}
