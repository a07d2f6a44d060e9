package model

import "time"

type SnapshotStatus string

const (
	SnapshotStatusPending   SnapshotStatus = "pending"
	SnapshotStatusUploading SnapshotStatus = "uploading"
	SnapshotStatusCompleted SnapshotStatus = "completed"
	SnapshotStatusFailed    SnapshotStatus = "failed"
)

// Snapshot records one encrypted database upload to the cloud side-channel.
type Snapshot struct {
	ID          int64          `json:"id"`
	Filename    string         `json:"filename"`
	ObjectKey   string         `json:"object_key"`
	Status      SnapshotStatus `json:"status"`
	SizeBytes   int64          `json:"size_bytes"`
	Error       string         `json:"error,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	CompletedAt *time.Time     `json:"completed_at"`
}
