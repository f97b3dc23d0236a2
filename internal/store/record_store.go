// Package store implements durable CRUD for one owner's records, partitioned
// by collection tag. Every mutating call persists before returning; there is
// no write-behind buffering. That trades write latency for crash consistency,
// which is the right trade for a single-actor device store.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"lobohub/internal/database"
	"lobohub/internal/models"
)

var (
	// ErrNotFound indicates no record with the given id exists for the owner
	ErrNotFound = errors.New("record not found")
)

const recordKeyPrefix = "record/"

// RecordStore provides per-owner, per-collection record CRUD over the
// key-value store
type RecordStore struct {
	kv database.KV
}

// New creates a record store over the given key-value surface. Passing a
// database.Batch scopes every operation to that batch, which is how import
// stays atomic.
func New(kv database.KV) *RecordStore {
	return &RecordStore{kv: kv}
}

func collectionPrefix(ownerID, collection string) string {
	return recordKeyPrefix + ownerID + "/" + collection + "/"
}

func recordKey(ownerID, collection, id string) string {
	return collectionPrefix(ownerID, collection) + id
}

// List returns all records for the owner and collection in insertion order.
// An empty collection yields an empty slice, never an error.
func (s *RecordStore) List(ownerID, collection string) ([]models.Record, error) {
	keys, err := s.kv.ListKeysWithPrefix(collectionPrefix(ownerID, collection))
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	records := make([]models.Record, 0, len(keys))
	for _, key := range keys {
		data, err := s.kv.Get(key)
		if err != nil {
			return nil, fmt.Errorf("failed to get record: %w", err)
		}
		if data == nil {
			continue
		}
		var record models.Record
		if err := json.Unmarshal(data, &record); err != nil {
			return nil, fmt.Errorf("failed to decode record: %w", err)
		}
		records = append(records, record)
	}
	return records, nil
}

// Create stores a new record with a fresh id and creation timestamp
func (s *RecordStore) Create(ownerID, collection string, payload json.RawMessage) (*models.Record, error) {
	now := time.Now().UTC()
	record := &models.Record{
		ID:         uuid.New().String(),
		OwnerID:    ownerID,
		Collection: collection,
		CreatedAt:  now,
		UpdatedAt:  now,
		Payload:    payload,
	}

	if err := s.put(record); err != nil {
		return nil, err
	}
	return record, nil
}

// Update merges partial onto the existing record's payload and refreshes the
// last-modified timestamp. Returns ErrNotFound if no record with that id
// exists for the owner.
func (s *RecordStore) Update(ownerID, collection, id string, partial json.RawMessage) (*models.Record, error) {
	record, err := s.get(ownerID, collection, id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrNotFound
	}

	merged, err := mergePayload(record.Payload, partial)
	if err != nil {
		return nil, fmt.Errorf("failed to merge payload: %w", err)
	}
	record.Payload = merged
	record.UpdatedAt = time.Now().UTC()

	if err := s.put(record); err != nil {
		return nil, err
	}
	return record, nil
}

// Delete removes a record, reporting whether one was actually removed.
// A missing id is not an error.
func (s *RecordStore) Delete(ownerID, collection, id string) (bool, error) {
	removed, err := s.kv.Delete(recordKey(ownerID, collection, id))
	if err != nil {
		return false, fmt.Errorf("failed to delete record: %w", err)
	}
	return removed, nil
}

// Put writes a record verbatim, preserving its id and timestamps. Import
// uses this to restore snapshot records exactly as captured.
func (s *RecordStore) Put(record *models.Record) error {
	return s.put(record)
}

// Replace swaps the owner's collection contents for the given records.
// Callers who need the whole replace to be atomic run it inside a
// database.Batch.
func (s *RecordStore) Replace(ownerID, collection string, records []models.Record) error {
	keys, err := s.kv.ListKeysWithPrefix(collectionPrefix(ownerID, collection))
	if err != nil {
		return fmt.Errorf("failed to list records: %w", err)
	}
	for _, key := range keys {
		if _, err := s.kv.Delete(key); err != nil {
			return fmt.Errorf("failed to clear collection: %w", err)
		}
	}

	for i := range records {
		if err := s.put(&records[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *RecordStore) get(ownerID, collection, id string) (*models.Record, error) {
	data, err := s.kv.Get(recordKey(ownerID, collection, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	if data == nil {
		return nil, nil
	}

	var record models.Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}
	return &record, nil
}

func (s *RecordStore) put(record *models.Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}
	if err := s.kv.Set(recordKey(record.OwnerID, record.Collection, record.ID), data); err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}
	return nil
}

// mergePayload overlays the fields of partial onto base. Both must be JSON
// objects; fields present in partial win.
func mergePayload(base, partial json.RawMessage) (json.RawMessage, error) {
	merged := make(map[string]interface{})
	if len(base) > 0 {
		if err := json.Unmarshal(base, &merged); err != nil {
			return nil, err
		}
	}

	overlay := make(map[string]interface{})
	if err := json.Unmarshal(partial, &overlay); err != nil {
		return nil, err
	}
	for field, value := range overlay {
		merged[field] = value
	}

	return json.Marshal(merged)
}
