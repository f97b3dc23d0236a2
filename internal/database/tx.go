package database

import (
	"database/sql"
)

// Tx wraps sql.Tx with dialect-aware methods. It satisfies KV, so code
// written against the key-value surface runs unchanged inside a transaction.
type Tx struct {
	*sql.Tx
	dialect Dialect
}

// Begin starts a new transaction
func (db *DB) Begin() (*Tx, error) {
	tx, err := db.DB.Begin()
	if err != nil {
		return nil, err
	}
	return &Tx{Tx: tx, dialect: db.Dialect}, nil
}

// Query executes a query with automatic placeholder rewriting
func (tx *Tx) Query(query string, args ...interface{}) (*sql.Rows, error) {
	return tx.Tx.Query(tx.dialect.RewriteQuery(query), args...)
}

// QueryRow executes a query that returns a single row with automatic placeholder rewriting
func (tx *Tx) QueryRow(query string, args ...interface{}) *sql.Row {
	return tx.Tx.QueryRow(tx.dialect.RewriteQuery(query), args...)
}

// Exec executes a query that doesn't return rows with automatic placeholder rewriting
func (tx *Tx) Exec(query string, args ...interface{}) (sql.Result, error) {
	return tx.Tx.Exec(tx.dialect.RewriteQuery(query), args...)
}

// Get returns the value stored at key, or (nil, nil) when the key is absent
func (tx *Tx) Get(key string) ([]byte, error) {
	return kvGet(tx, key)
}

// Set stores value at key within the transaction
func (tx *Tx) Set(key string, value []byte) error {
	return kvSet(tx, tx.dialect, key, value)
}

// Delete removes the entry at key and reports whether one was removed
func (tx *Tx) Delete(key string) (bool, error) {
	return kvDelete(tx, key)
}

// ListKeysWithPrefix returns all keys starting with prefix, in insertion order
func (tx *Tx) ListKeysWithPrefix(prefix string) ([]string, error) {
	return kvListKeys(tx, tx.dialect, prefix)
}

// Commit commits the transaction
func (tx *Tx) Commit() error {
	return tx.Tx.Commit()
}

// Rollback aborts the transaction
func (tx *Tx) Rollback() error {
	return tx.Tx.Rollback()
}
