package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.uber.org/zap"

	"lobohub/internal/database"
	"lobohub/internal/models"
	"lobohub/internal/store"
)

var (
	// ErrMalformedSnapshot indicates the document is not a valid LoboHub export
	ErrMalformedSnapshot = errors.New("file is not a valid LoboHub export")

	// ErrImportFailed indicates the atomic import aborted; nothing was applied
	ErrImportFailed = errors.New("import failed, no changes applied")
)

// ImportSummary reports what an import wrote and what it skipped
type ImportSummary struct {
	Imported map[string]int `json:"imported"`
	Warnings []string       `json:"warnings,omitempty"`
}

// snapshotDocument is the wire form of a snapshot. Records stay raw until
// per-collection decoding so unknown collections pass through untouched.
type snapshotDocument struct {
	Format      int                          `json:"format"`
	ExportedAt  time.Time                    `json:"exported_at"`
	ExportedBy  string                       `json:"exported_by"`
	FamilyID    string                       `json:"family"`
	Collections map[string][]json.RawMessage `json:"collections"`
}

// SnapshotService serializes a family's aggregated records to a portable
// document and restores such documents into the local store. Import is the
// sync mechanism and deliberately primitive: a destructive, last-writer-wins
// whole-collection replace with no conflict detection. MergeImport is the
// explicitly separate merge operation.
type SnapshotService struct {
	kv        database.BatchStarter
	aggregate *AggregateService
	log       *zap.Logger
}

// NewSnapshotService creates a new snapshot service
func NewSnapshotService(kv database.BatchStarter, aggregate *AggregateService, logger *zap.Logger) *SnapshotService {
	return &SnapshotService{
		kv:        kv,
		aggregate: aggregate,
		log:       logger,
	}
}

// Export captures the family's aggregated records for every known collection.
// The context is checked between collections so a long export can be
// abandoned without mid-collection rollback concerns.
func (s *SnapshotService) Export(ctx context.Context, familyID, exportedBy string) (*models.Snapshot, error) {
	snapshot := &models.Snapshot{
		Format:      models.SnapshotFormat,
		ExportedAt:  time.Now().UTC(),
		ExportedBy:  exportedBy,
		FamilyID:    familyID,
		Collections: make(map[string][]models.Record),
	}

	for _, collection := range models.KnownCollections {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("export cancelled: %w", err)
		}

		records, err := s.aggregate.Aggregate(familyID, collection)
		if err != nil {
			return nil, fmt.Errorf("failed to export %s: %w", collection, err)
		}
		if len(records) > 0 {
			snapshot.Collections[collection] = records
		}
	}

	s.log.Info("snapshot exported",
		zap.String("family_id", familyID),
		zap.Int("records", snapshot.RecordCount()))

	return snapshot, nil
}

// ExportToWriter exports the family and writes the document as indented JSON
func (s *SnapshotService) ExportToWriter(ctx context.Context, w io.Writer, familyID, exportedBy string) error {
	snapshot, err := s.Export(ctx, familyID, exportedBy)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(snapshot); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return nil
}

// ExportToFile writes the snapshot document to path. The file appears only
// on success: a failed export never leaves a partial artifact behind.
func (s *SnapshotService) ExportToFile(ctx context.Context, path, familyID, exportedBy string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".lobohub-export-*")
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	tmpName := tmp.Name()

	if err := s.ExportToWriter(ctx, tmp, familyID, exportedBy); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to finish export file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to place export file: %w", err)
	}
	return nil
}

// Import restores a snapshot document into the local store. For every known
// collection present in the document, the records replace the existing
// contents of that owner/collection combination; this is a whole-collection
// overwrite, not a merge. The entire import runs in one batch: any failure
// rolls back with nothing applied.
//
// Forward compatibility: unknown collections are skipped with a warning, and
// well-formed record objects missing their identity fields are skipped and
// reported in the summary. A document or record that does not decode at all
// fails the whole import with ErrMalformedSnapshot.
func (s *SnapshotService) Import(ctx context.Context, r io.Reader, targetFamilyID string) (*ImportSummary, error) {
	doc, err := parseSnapshotDocument(r)
	if err != nil {
		return nil, err
	}

	batch, err := s.kv.BeginBatch()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportFailed, err)
	}
	defer batch.Rollback()

	txStore := store.New(batch)
	summary := &ImportSummary{Imported: make(map[string]int)}

	for _, collection := range sortedCollections(doc.Collections) {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: cancelled: %v", ErrImportFailed, err)
		}

		if !models.IsKnownCollection(collection) {
			summary.Warnings = append(summary.Warnings,
				fmt.Sprintf("skipped unknown collection %q", collection))
			continue
		}

		byOwner, skipped, err := decodeCollection(collection, doc.Collections[collection])
		if err != nil {
			return nil, err
		}
		summary.Warnings = append(summary.Warnings, skipped...)

		written := 0
		for _, ownerID := range sortedOwners(byOwner) {
			records := byOwner[ownerID]
			if err := txStore.Replace(ownerID, collection, records); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrImportFailed, err)
			}
			written += len(records)
		}
		summary.Imported[collection] = written
	}

	if err := batch.Commit(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportFailed, err)
	}

	s.log.Info("snapshot imported",
		zap.String("family_id", targetFamilyID),
		zap.Int("collections", len(summary.Imported)),
		zap.Int("warnings", len(summary.Warnings)))

	return summary, nil
}

// MergeImport is the explicitly named non-destructive variant of Import:
// per record id, the newer last-modified timestamp wins, and records the
// store has never seen are inserted. Plain Import keeps the original
// replace semantics; nothing merges unless the caller asked for it by name.
func (s *SnapshotService) MergeImport(ctx context.Context, r io.Reader, targetFamilyID string) (*ImportSummary, error) {
	doc, err := parseSnapshotDocument(r)
	if err != nil {
		return nil, err
	}

	batch, err := s.kv.BeginBatch()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportFailed, err)
	}
	defer batch.Rollback()

	txStore := store.New(batch)
	summary := &ImportSummary{Imported: make(map[string]int)}

	for _, collection := range sortedCollections(doc.Collections) {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: cancelled: %v", ErrImportFailed, err)
		}

		if !models.IsKnownCollection(collection) {
			summary.Warnings = append(summary.Warnings,
				fmt.Sprintf("skipped unknown collection %q", collection))
			continue
		}

		byOwner, skipped, err := decodeCollection(collection, doc.Collections[collection])
		if err != nil {
			return nil, err
		}
		summary.Warnings = append(summary.Warnings, skipped...)

		applied := 0
		for _, ownerID := range sortedOwners(byOwner) {
			existing, err := txStore.List(ownerID, collection)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrImportFailed, err)
			}
			current := make(map[string]models.Record, len(existing))
			for _, record := range existing {
				current[record.ID] = record
			}

			for i := range byOwner[ownerID] {
				incoming := byOwner[ownerID][i]
				local, seen := current[incoming.ID]
				if seen && !incoming.UpdatedAt.After(local.UpdatedAt) {
					continue
				}
				if err := txStore.Put(&incoming); err != nil {
					return nil, fmt.Errorf("%w: %v", ErrImportFailed, err)
				}
				applied++
			}
		}
		summary.Imported[collection] = applied
	}

	if err := batch.Commit(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportFailed, err)
	}

	s.log.Info("snapshot merged",
		zap.String("family_id", targetFamilyID),
		zap.Int("collections", len(summary.Imported)))

	return summary, nil
}

// parseSnapshotDocument decodes and structurally validates a snapshot
func parseSnapshotDocument(r io.Reader) (*snapshotDocument, error) {
	var doc snapshotDocument
	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}
	if doc.Format != models.SnapshotFormat {
		return nil, fmt.Errorf("%w: unsupported format %d", ErrMalformedSnapshot, doc.Format)
	}
	if doc.Collections == nil {
		return nil, fmt.Errorf("%w: missing collections", ErrMalformedSnapshot)
	}
	return &doc, nil
}

// decodeCollection decodes a collection's raw records, grouping them by
// owner. Records that do not decode fail the import; decoded records missing
// their identity fields are skipped with a warning.
func decodeCollection(collection string, raw []json.RawMessage) (map[string][]models.Record, []string, error) {
	byOwner := make(map[string][]models.Record)
	var warnings []string

	for i, data := range raw {
		var record models.Record
		if err := json.Unmarshal(data, &record); err != nil {
			return nil, nil, fmt.Errorf("%w: bad record %d in %q: %v", ErrMalformedSnapshot, i, collection, err)
		}
		if record.ID == "" || record.OwnerID == "" {
			warnings = append(warnings,
				fmt.Sprintf("skipped record %d in %q: missing id or owner", i, collection))
			continue
		}
		record.Collection = collection
		byOwner[record.OwnerID] = append(byOwner[record.OwnerID], record)
	}
	return byOwner, warnings, nil
}

func sortedCollections(collections map[string][]json.RawMessage) []string {
	names := make([]string, 0, len(collections))
	for name := range collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sortedOwners(byOwner map[string][]models.Record) []string {
	owners := make([]string, 0, len(byOwner))
	for owner := range byOwner {
		owners = append(owners, owner)
	}
	sort.Strings(owners)
	return owners
}
