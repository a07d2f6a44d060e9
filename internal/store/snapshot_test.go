package store

import (
	"testing"
	"time"

	"github.com/dukerupert/hamfast/internal/model"
)

func TestSnapshotLifecycle(t *testing.T) {
	st := setupTestStores(t)

	snap, err := st.Snapshots.Create("snapshot-2026.db.enc", "snapshots/snapshot-2026.db.enc")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if snap.Status != model.SnapshotStatusPending {
		t.Errorf("status = %q, want pending", snap.Status)
	}

	if err := st.Snapshots.UpdateStatus(snap.ID, model.SnapshotStatusUploading, ""); err != nil {
		t.Fatalf("update status: %v", err)
	}
	if err := st.Snapshots.UpdateCompleted(snap.ID, 1024); err != nil {
		t.Fatalf("update completed: %v", err)
	}

	got, _ := st.Snapshots.GetByID(snap.ID)
	if got.Status != model.SnapshotStatusCompleted {
		t.Errorf("status = %q, want completed", got.Status)
	}
	if got.SizeBytes != 1024 {
		t.Errorf("size = %d, want 1024", got.SizeBytes)
	}
	if got.CompletedAt == nil {
		t.Error("completed_at should be set")
	}
}

func TestSnapshotDeleteOlderThan(t *testing.T) {
	st := setupTestStores(t)

	st.Snapshots.Create("old.db.enc", "snapshots/old.db.enc")

	keys, err := st.Snapshots.DeleteOlderThan(time.Now().UTC().Add(time.Hour))
	if err != nil {
		t.Fatalf("delete older than: %v", err)
	}
	if len(keys) != 1 || keys[0] != "snapshots/old.db.enc" {
		t.Errorf("keys = %v", keys)
	}

	snaps, _ := st.Snapshots.List(10)
	if len(snaps) != 0 {
		t.Errorf("expected no snapshots, got %d", len(snaps))
	}
}
