package database

import (
	"strings"
	"testing"
)

func TestDialectSQLite(t *testing.T) {
	dialect := NewSQLiteDialect()

	t.Run("DriverName", func(t *testing.T) {
		result := dialect.DriverName()
		expected := "sqlite3"
		if result != expected {
			t.Errorf("DriverName() = %v, want %v", result, expected)
		}
	})

	t.Run("RewriteQuery keeps placeholders", func(t *testing.T) {
		query := "SELECT v FROM entries WHERE k = ?"
		if got := dialect.RewriteQuery(query); got != query {
			t.Errorf("RewriteQuery() = %v, want unchanged", got)
		}
	})

	t.Run("UpsertEntryQuery uses ON CONFLICT", func(t *testing.T) {
		if !strings.Contains(dialect.UpsertEntryQuery(), "ON CONFLICT") {
			t.Error("UpsertEntryQuery() should use ON CONFLICT for SQLite")
		}
	})

	t.Run("ListKeysQuery uses a single-character escape", func(t *testing.T) {
		// SQLite rejects ESCAPE clauses longer than one character.
		if !strings.Contains(dialect.ListKeysQuery(), `ESCAPE '\'`) {
			t.Errorf("ListKeysQuery() = %q, want ESCAPE '\\'", dialect.ListKeysQuery())
		}
	})
}

func TestDialectPostgreSQL(t *testing.T) {
	dialect := NewPostgresDialect()

	t.Run("DriverName", func(t *testing.T) {
		result := dialect.DriverName()
		expected := "postgres"
		if result != expected {
			t.Errorf("DriverName() = %v, want %v", result, expected)
		}
	})

	t.Run("RewriteQuery numbers placeholders", func(t *testing.T) {
		query := "INSERT INTO entries (k, v) VALUES (?, ?)"
		got := dialect.RewriteQuery(query)
		want := "INSERT INTO entries (k, v) VALUES ($1, $2)"
		if got != want {
			t.Errorf("RewriteQuery() = %v, want %v", got, want)
		}
	})

	t.Run("ListKeysQuery uses a single-character escape", func(t *testing.T) {
		if !strings.Contains(dialect.ListKeysQuery(), `ESCAPE '\'`) {
			t.Errorf("ListKeysQuery() = %q, want ESCAPE '\\'", dialect.ListKeysQuery())
		}
	})
}

func TestDialectMySQL(t *testing.T) {
	dialect := NewMySQLDialect()

	t.Run("DriverName", func(t *testing.T) {
		result := dialect.DriverName()
		expected := "mysql"
		if result != expected {
			t.Errorf("DriverName() = %v, want %v", result, expected)
		}
	})

	t.Run("UpsertEntryQuery uses ON DUPLICATE KEY", func(t *testing.T) {
		if !strings.Contains(dialect.UpsertEntryQuery(), "ON DUPLICATE KEY") {
			t.Error("UpsertEntryQuery() should use ON DUPLICATE KEY for MySQL")
		}
	})

	t.Run("ListKeysQuery doubles the escape backslash", func(t *testing.T) {
		// MySQL parses backslash escapes inside string literals, so the
		// ESCAPE character itself has to be written as '\\'. A lone '\'
		// would consume the closing quote and break the statement.
		if !strings.Contains(dialect.ListKeysQuery(), `ESCAPE '\\'`) {
			t.Errorf("ListKeysQuery() = %q, want ESCAPE '\\\\'", dialect.ListKeysQuery())
		}
	})
}
