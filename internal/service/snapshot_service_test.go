package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"lobohub/internal/models"
)

func seedFamilyWithRecords(t *testing.T, env *testEnv, n int) (*models.User, *models.Family) {
	t.Helper()

	owner := env.seedUser(t, "alice")
	family, err := env.membership.CreateFamily(owner, "The Parkers")
	if err != nil {
		t.Fatalf("CreateFamily() error = %v", err)
	}

	for i := 0; i < n; i++ {
		payload, _ := json.Marshal(map[string]string{"title": fmt.Sprintf("task %d", i)})
		if _, err := env.records.Create(owner.ID, models.CollectionTasks, payload); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}
	return owner, family
}

func TestExportImportRoundTrip(t *testing.T) {
	src := newTestEnv(t)
	owner, family := seedFamilyWithRecords(t, src, 5)

	var buf bytes.Buffer
	if err := src.snapshots.ExportToWriter(context.Background(), &buf, family.ID, owner.ID); err != nil {
		t.Fatalf("ExportToWriter() error = %v", err)
	}

	// Restore into a fresh store seeded with the same user and family.
	dst := newTestEnv(t)
	dstOwner, dstFamily := seedFamilyWithRecords(t, dst, 0)

	summary, err := dst.snapshots.Import(context.Background(), &buf, dstFamily.ID)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if summary.Imported[models.CollectionTasks] != 5 {
		t.Errorf("imported %d tasks, want 5", summary.Imported[models.CollectionTasks])
	}
	if len(summary.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", summary.Warnings)
	}

	before, err := src.records.List(owner.ID, models.CollectionTasks)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	after, err := dst.records.List(dstOwner.ID, models.CollectionTasks)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(after) != len(before) {
		t.Fatalf("restored %d records, want %d", len(after), len(before))
	}
	for i := range before {
		if after[i].ID != before[i].ID {
			t.Errorf("record %d id = %q, want %q", i, after[i].ID, before[i].ID)
		}
		if !bytes.Equal(after[i].Payload, before[i].Payload) {
			t.Errorf("record %d payload = %s, want %s", i, after[i].Payload, before[i].Payload)
		}
	}
}

func TestImportReplacesExistingCollection(t *testing.T) {
	env := newTestEnv(t)
	owner, family := seedFamilyWithRecords(t, env, 3)

	var buf bytes.Buffer
	if err := env.snapshots.ExportToWriter(context.Background(), &buf, family.ID, owner.ID); err != nil {
		t.Fatalf("ExportToWriter() error = %v", err)
	}

	// A record created after the export must not survive a restore.
	payload, _ := json.Marshal(map[string]string{"title": "post-export task"})
	if _, err := env.records.Create(owner.ID, models.CollectionTasks, payload); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if _, err := env.snapshots.Import(context.Background(), &buf, family.ID); err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	records, err := env.records.List(owner.ID, models.CollectionTasks)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(records) != 3 {
		t.Errorf("after restore got %d records, want the 3 from the snapshot", len(records))
	}
}

func TestImportRejectsMalformedDocuments(t *testing.T) {
	env := newTestEnv(t)
	_, family := seedFamilyWithRecords(t, env, 0)

	tests := []struct {
		name string
		body string
	}{
		{"not json", "this is not a snapshot"},
		{"wrong format version", `{"format": 99, "collections": {}}`},
		{"missing collections", `{"format": 1}`},
		{"undecodable record", `{"format": 1, "collections": {"tasks": ["not an object"]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.snapshots.Import(context.Background(), strings.NewReader(tt.body), family.ID)
			if !errors.Is(err, ErrMalformedSnapshot) {
				t.Errorf("Import() error = %v, want ErrMalformedSnapshot", err)
			}
		})
	}
}

func TestImportIsAtomic(t *testing.T) {
	env := newTestEnv(t)
	_, family := seedFamilyWithRecords(t, env, 0)

	// The second record does not decode, so the valid first record
	// must not be applied either.
	body := `{
		"format": 1,
		"collections": {
			"tasks": [
				{"id": "t1", "owner_id": "user-alice", "payload": {"title": "ok"}},
				42
			]
		}
	}`

	if _, err := env.snapshots.Import(context.Background(), strings.NewReader(body), family.ID); !errors.Is(err, ErrMalformedSnapshot) {
		t.Fatalf("Import() error = %v, want ErrMalformedSnapshot", err)
	}

	records, err := env.records.List("user-alice", models.CollectionTasks)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(records) != 0 {
		t.Errorf("aborted import left %d records behind, want 0", len(records))
	}
}

func TestImportCancelledAppliesNothing(t *testing.T) {
	env := newTestEnv(t)
	_, family := seedFamilyWithRecords(t, env, 0)

	body := `{
		"format": 1,
		"collections": {
			"tasks": [{"id": "t1", "owner_id": "user-alice", "payload": {"title": "ok"}}]
		}
	}`

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	t.Run("import", func(t *testing.T) {
		_, err := env.snapshots.Import(ctx, strings.NewReader(body), family.ID)
		if !errors.Is(err, ErrImportFailed) {
			t.Errorf("Import() error = %v, want ErrImportFailed", err)
		}
	})

	t.Run("merge import", func(t *testing.T) {
		_, err := env.snapshots.MergeImport(ctx, strings.NewReader(body), family.ID)
		if !errors.Is(err, ErrImportFailed) {
			t.Errorf("MergeImport() error = %v, want ErrImportFailed", err)
		}
	})

	records, err := env.records.List("user-alice", models.CollectionTasks)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(records) != 0 {
		t.Errorf("cancelled import left %d records behind, want 0", len(records))
	}
}

func TestImportSkipsUnknownAndIncomplete(t *testing.T) {
	env := newTestEnv(t)
	_, family := seedFamilyWithRecords(t, env, 0)

	body := `{
		"format": 1,
		"collections": {
			"chores_v2": [{"id": "c1", "owner_id": "user-alice"}],
			"tasks": [
				{"id": "t1", "owner_id": "user-alice", "payload": {"title": "kept"}},
				{"owner_id": "user-alice", "payload": {"title": "no id"}}
			]
		}
	}`

	summary, err := env.snapshots.Import(context.Background(), strings.NewReader(body), family.ID)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	if summary.Imported[models.CollectionTasks] != 1 {
		t.Errorf("imported %d tasks, want 1", summary.Imported[models.CollectionTasks])
	}
	if _, ok := summary.Imported["chores_v2"]; ok {
		t.Error("unknown collection should not appear in the imported counts")
	}
	if len(summary.Warnings) != 2 {
		t.Fatalf("got %d warnings, want 2: %v", len(summary.Warnings), summary.Warnings)
	}
	if !strings.Contains(summary.Warnings[0], "chores_v2") {
		t.Errorf("first warning %q should name the unknown collection", summary.Warnings[0])
	}
	if !strings.Contains(summary.Warnings[1], "missing id or owner") {
		t.Errorf("second warning %q should name the missing fields", summary.Warnings[1])
	}
}

func TestMergeImport(t *testing.T) {
	env := newTestEnv(t)
	owner, family := seedFamilyWithRecords(t, env, 0)

	payload, _ := json.Marshal(map[string]string{"title": "local edit"})
	local, err := env.records.Create(owner.ID, models.CollectionTasks, payload)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	older := local.UpdatedAt.Add(-time.Hour)
	newer := local.UpdatedAt.Add(time.Hour)

	stale := models.Record{
		ID: local.ID, OwnerID: owner.ID,
		UpdatedAt: older,
		Payload:   json.RawMessage(`{"title": "stale remote edit"}`),
	}
	fresh := models.Record{
		ID: "t-new", OwnerID: owner.ID,
		UpdatedAt: newer,
		Payload:   json.RawMessage(`{"title": "new remote task"}`),
	}

	doc := map[string]any{
		"format":      models.SnapshotFormat,
		"collections": map[string]any{models.CollectionTasks: []models.Record{stale, fresh}},
	}
	body, _ := json.Marshal(doc)

	summary, err := env.snapshots.MergeImport(context.Background(), bytes.NewReader(body), family.ID)
	if err != nil {
		t.Fatalf("MergeImport() error = %v", err)
	}
	if summary.Imported[models.CollectionTasks] != 1 {
		t.Errorf("applied %d records, want 1 (stale edit skipped)", summary.Imported[models.CollectionTasks])
	}

	records, err := env.records.List(owner.ID, models.CollectionTasks)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records after merge, want 2", len(records))
	}

	byID := map[string]models.Record{}
	for _, record := range records {
		byID[record.ID] = record
	}
	if got := string(byID[local.ID].Payload); strings.Contains(got, "stale") {
		t.Errorf("stale remote edit overwrote the newer local record: %s", got)
	}
	if _, ok := byID["t-new"]; !ok {
		t.Error("unseen remote record was not inserted")
	}
}

func TestExportToFile(t *testing.T) {
	env := newTestEnv(t)
	owner, family := seedFamilyWithRecords(t, env, 2)

	dir := t.TempDir()
	path := filepath.Join(dir, "family.json")

	if err := env.snapshots.ExportToFile(context.Background(), path, family.ID, owner.ID); err != nil {
		t.Fatalf("ExportToFile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	var doc snapshotDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("export file is not valid JSON: %v", err)
	}
	if doc.Format != models.SnapshotFormat {
		t.Errorf("format = %d, want %d", doc.Format, models.SnapshotFormat)
	}
	if len(doc.Collections[models.CollectionTasks]) != 2 {
		t.Errorf("exported %d tasks, want 2", len(doc.Collections[models.CollectionTasks]))
	}
}

func TestExportToFileLeavesNothingOnCancel(t *testing.T) {
	env := newTestEnv(t)
	owner, family := seedFamilyWithRecords(t, env, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dir := t.TempDir()
	path := filepath.Join(dir, "family.json")

	if err := env.snapshots.ExportToFile(ctx, path, family.ID, owner.ID); err == nil {
		t.Fatal("ExportToFile() with cancelled context should fail")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("failed export left %d files behind, want 0", len(entries))
	}
}
