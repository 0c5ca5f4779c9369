package database

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

// MySQLDialect implements Dialect for MySQL
type MySQLDialect struct{}

// NewMySQLDialect creates a new MySQL dialect
func NewMySQLDialect() *MySQLDialect {
	return &MySQLDialect{}
}

func (d *MySQLDialect) DriverName() string {
	return "mysql"
}

// DSN forces parseTime and a UTC session so DATETIME columns scan into
// time.Time and compare equal to the values that were written.
func (d *MySQLDialect) DSN(config DialectConfig) string {
	cfg, err := mysql.ParseDSN(config.URL)
	if err != nil {
		// Let sql.Open report the malformed DSN
		return config.URL
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	return cfg.FormatDSN()
}

func (d *MySQLDialect) RewriteQuery(query string) string {
	// MySQL uses ? placeholders like SQLite, no rewrite needed
	return query
}

func (d *MySQLDialect) ConfigureConnection(db *sql.DB) error {
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)

	// Ensure foreign key checks are enabled
	if _, err := db.Exec("SET FOREIGN_KEY_CHECKS = 1"); err != nil {
		return err
	}

	return nil
}

func (d *MySQLDialect) MigrationsSubdir() string {
	return "mysql"
}

func (d *MySQLDialect) CreateMigrationsTableQuery() string {
	return `
		CREATE TABLE IF NOT EXISTS migrations (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			filename VARCHAR(255) UNIQUE NOT NULL,
			executed_at DATETIME(6) DEFAULT CURRENT_TIMESTAMP(6)
		)
	`
}

// InsertIgnore uses a no-op ON DUPLICATE KEY UPDATE rather than INSERT IGNORE,
// which would also downgrade foreign key and NOT NULL failures to warnings.
// With the driver's default flags an unchanged duplicate row reports zero
// rows affected.
func (d *MySQLDialect) InsertIgnore(insert string) string {
	trimmed := trimStatement(insert)
	column := firstInsertColumn(trimmed)
	if column == "" {
		return trimmed
	}
	return trimmed + " ON DUPLICATE KEY UPDATE " + column + " = " + column
}

// firstInsertColumn returns the first name in an INSERT's column list
func firstInsertColumn(insert string) string {
	if len(insert) < 6 || !strings.EqualFold(insert[:6], "INSERT") {
		return ""
	}
	open := strings.Index(insert, "(")
	if open < 0 {
		return ""
	}
	end := strings.IndexAny(insert[open+1:], ",)")
	if end < 0 {
		return ""
	}
	return strings.TrimSpace(insert[open+1 : open+1+end])
}

func (d *MySQLDialect) UpsertTraitScoreQuery() string {
	return "INSERT INTO child_trait_scores (child_id, trait_id, score, updated_at) VALUES (?, ?, ?, ?) " +
		"ON DUPLICATE KEY UPDATE score = score + VALUES(score), updated_at = VALUES(updated_at)"
}

// mysqlDuplicateEntry is ER_DUP_ENTRY
const mysqlDuplicateEntry = 1062

func (d *MySQLDialect) IsUniqueViolation(err error) bool {
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry
}
