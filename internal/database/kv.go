package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// ErrUnavailable indicates the underlying persistence could not be reached.
// Callers check for it with errors.Is; the original driver error is folded
// into the message.
var ErrUnavailable = errors.New("storage unavailable")

// KV is the durable key-value surface the local store is built on.
// Get returns (nil, nil) when the key is absent. ListKeysWithPrefix returns
// keys in insertion order.
type KV interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) (bool, error)
	ListKeysWithPrefix(prefix string) ([]string, error)
}

// Batch is a KV whose writes apply atomically on Commit. A failure anywhere
// before Commit leaves the store untouched after Rollback.
type Batch interface {
	KV
	Commit() error
	Rollback() error
}

// BatchStarter is a KV that can open atomic batches. Satisfied by *DB.
type BatchStarter interface {
	KV
	BeginBatch() (Batch, error)
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrUnavailable, op, err)
}

// Get returns the value stored at key, or (nil, nil) when the key is absent
func (db *DB) Get(key string) ([]byte, error) {
	return kvGet(db, key)
}

// Set durably stores value at key, overwriting any previous value
func (db *DB) Set(key string, value []byte) error {
	return kvSet(db, db.Dialect, key, value)
}

// Delete removes the entry at key and reports whether one was removed
func (db *DB) Delete(key string) (bool, error) {
	return kvDelete(db, key)
}

// ListKeysWithPrefix returns all keys starting with prefix, in insertion order
func (db *DB) ListKeysWithPrefix(prefix string) ([]string, error) {
	return kvListKeys(db, db.Dialect, prefix)
}

// BeginBatch opens a transaction-backed batch
func (db *DB) BeginBatch() (Batch, error) {
	tx, err := db.Begin()
	if err != nil {
		return nil, unavailable("begin", err)
	}
	return tx, nil
}

// querier is the subset of DB/Tx used by the shared kv helpers
type querier interface {
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
	Exec(query string, args ...interface{}) (sql.Result, error)
}

func kvGet(q querier, key string) ([]byte, error) {
	var value []byte
	err := q.QueryRow("SELECT v FROM entries WHERE k = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, unavailable("get", err)
	}
	return value, nil
}

func kvSet(q querier, dialect Dialect, key string, value []byte) error {
	if _, err := q.Exec(dialect.UpsertEntryQuery(), key, value); err != nil {
		return unavailable("set", err)
	}
	return nil
}

func kvDelete(q querier, key string) (bool, error) {
	result, err := q.Exec("DELETE FROM entries WHERE k = ?", key)
	if err != nil {
		return false, unavailable("delete", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, unavailable("delete", err)
	}
	return affected > 0, nil
}

func kvListKeys(q querier, dialect Dialect, prefix string) ([]string, error) {
	rows, err := q.Query(dialect.ListKeysQuery(), escapeLike(prefix)+"%")
	if err != nil {
		return nil, unavailable("list", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, unavailable("list", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list", err)
	}
	return keys, nil
}

// escapeLike escapes LIKE metacharacters so prefixes match literally
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
