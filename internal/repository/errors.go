package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"kidoova/internal/database"
)

// ErrDuplicate is returned when an insert hits a unique constraint
var ErrDuplicate = errors.New("duplicate record")

// wrapInsertError maps a driver unique violation to ErrDuplicate and wraps everything else
func wrapInsertError(q database.Querier, what string, err error) error {
	if q.GetDialect().IsUniqueViolation(err) {
		return fmt.Errorf("%s: %w", what, ErrDuplicate)
	}
	return fmt.Errorf("failed to create %s: %w", what, err)
}

func nullStringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func nullIntPtr(ni sql.NullInt64) *int {
	if !ni.Valid {
		return nil
	}
	v := int(ni.Int64)
	return &v
}

// dbTime normalises a timestamp before it is written. Every column holds UTC
// at microsecond precision, the finest all three databases keep, so a value
// read back compares equal to the one that was written.
func dbTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}
