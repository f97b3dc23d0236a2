package models

import "time"

// SnapshotFormat is the current snapshot document version
const SnapshotFormat = 1

// Snapshot is an immutable, portable export of a family's aggregated records
// at a point in time. It is produced whole by export and consumed whole by
// import; there is no partial or incremental form.
type Snapshot struct {
	Format      int                 `json:"format"`
	ExportedAt  time.Time           `json:"exported_at"`
	ExportedBy  string              `json:"exported_by"`
	FamilyID    string              `json:"family"`
	Collections map[string][]Record `json:"collections"`
}

// RecordCount returns the total number of records across all collections
func (s *Snapshot) RecordCount() int {
	total := 0
	for _, records := range s.Collections {
		total += len(records)
	}
	return total
}
