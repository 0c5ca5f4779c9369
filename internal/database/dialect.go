package database

import (
	"database/sql"
	"regexp"
	"strconv"
)

// Dialect defines the interface for database-specific operations
type Dialect interface {
	// DriverName returns the driver name for sql.Open
	DriverName() string

	// DSN returns the data source name for the connection
	DSN(config DialectConfig) string

	// RewriteQuery converts placeholder syntax if needed (e.g., ? to $1 for postgres)
	RewriteQuery(query string) string

	// ConfigureConnection applies any database-specific connection settings
	ConfigureConnection(db *sql.DB) error

	// MigrationsSubdir returns the subdirectory name for migrations (e.g., "sqlite", "postgres")
	MigrationsSubdir() string

	// CreateMigrationsTableQuery returns the SQL to create the migrations tracking table
	CreateMigrationsTableQuery() string

	// InsertIgnore turns a plain single-row INSERT into one that writes nothing
	// when the row would violate a unique constraint. Callers check RowsAffected.
	InsertIgnore(insert string) string

	// UpsertTraitScoreQuery adds score to a child's running trait total in one
	// statement. Arguments: child_id, trait_id, delta, updated_at.
	UpsertTraitScoreQuery() string

	// IsUniqueViolation reports whether err is the driver's duplicate-key error
	IsUniqueViolation(err error) bool
}

// DialectConfig holds configuration for database connection
type DialectConfig struct {
	// For SQLite
	Path string

	// For PostgreSQL/MySQL
	URL string
}

// placeholderRegexp matches ? placeholders not inside quotes
var placeholderRegexp = regexp.MustCompile(`\?`)

// rewritePlaceholdersToNumbered converts ? placeholders to $1, $2, etc.
func rewritePlaceholdersToNumbered(query string) string {
	counter := 0
	return placeholderRegexp.ReplaceAllStringFunc(query, func(match string) string {
		counter++
		return "$" + strconv.Itoa(counter)
	})
}

// onConflictDoNothing is shared by SQLite and PostgreSQL, which both accept the
// bare ON CONFLICT clause.
func onConflictDoNothing(insert string) string {
	return trimStatement(insert) + " ON CONFLICT DO NOTHING"
}

const upsertTraitScoreOnConflict = `INSERT INTO child_trait_scores (child_id, trait_id, score, updated_at)
	VALUES (?, ?, ?, ?)
	ON CONFLICT (child_id, trait_id) DO UPDATE SET
		score = child_trait_scores.score + excluded.score,
		updated_at = excluded.updated_at`
