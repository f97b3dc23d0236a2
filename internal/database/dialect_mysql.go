package database

import (
	"database/sql"
	"time"

	_ "github.com/go-sql-driver/mysql"
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

func (d *MySQLDialect) DSN(config DialectConfig) string {
	return config.URL
}

func (d *MySQLDialect) RewriteQuery(query string) string {
	// MySQL uses ? placeholders like SQLite, no rewrite needed
	return query
}

func (d *MySQLDialect) ConfigureConnection(db *sql.DB) error {
	// Configure connection pool for MySQL
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)

	return nil
}

func (d *MySQLDialect) CreateEntriesTableQuery() string {
	return `
		CREATE TABLE IF NOT EXISTS entries (
			seq BIGINT AUTO_INCREMENT PRIMARY KEY,
			k VARCHAR(512) UNIQUE NOT NULL,
			v LONGBLOB NOT NULL,
			updated_at DATETIME(6) DEFAULT CURRENT_TIMESTAMP(6)
		);
	`
}

func (d *MySQLDialect) UpsertEntryQuery() string {
	return `
		INSERT INTO entries (k, v) VALUES (?, ?)
		ON DUPLICATE KEY UPDATE v = VALUES(v), updated_at = CURRENT_TIMESTAMP(6)
	`
}

// ListKeysQuery doubles the ESCAPE backslash: MySQL parses backslash escapes
// inside single-quoted strings, so '\' alone would swallow the closing quote.
func (d *MySQLDialect) ListKeysQuery() string {
	return `SELECT k FROM entries WHERE k LIKE ? ESCAPE '\\' ORDER BY seq ASC`
}
