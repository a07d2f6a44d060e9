package sync

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	gosync "sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/dukerupert/hamfast/internal/blob"
	"github.com/dukerupert/hamfast/internal/database"
	"github.com/dukerupert/hamfast/internal/model"
	"github.com/dukerupert/hamfast/internal/store"
)

// mockS3 implements s3API for testing.
type mockS3 struct {
	mu      gosync.Mutex
	objects map[string][]byte
	putErr  error
}

func newMockS3() *mockS3 {
	return &mockS3{objects: make(map[string][]byte)}
}

func (m *mockS3) PutObject(_ context.Context, input *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.putErr != nil {
		return nil, m.putErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, _ := io.ReadAll(input.Body)
	m.objects[*input.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3) GetObject(_ context.Context, input *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[*input.Key]
	if !ok {
		return nil, io.ErrUnexpectedEOF
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (m *mockS3) DeleteObject(_ context.Context, input *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, *input.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupTestManager(t *testing.T) (*Manager, *mockS3, *store.Stores) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := database.Open(dbPath)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	stores := store.New(db)

	cfg := Config{
		S3:         blob.S3Config{Bucket: "test", AccessKey: "key", SecretKey: "secret"},
		DBPath:     dbPath,
		Passphrase: "hunter2",
	}
	m := NewManager(cfg, db, stores.Snapshots, stores.Settings, discardLogger(), nil)
	mock := newMockS3()
	m.client = mock
	return m, mock, stores
}

func TestManagerStateLifecycle(t *testing.T) {
	// Missing config -> disabled.
	m := NewManager(Config{}, nil, nil, nil, discardLogger(), nil)
	if m.Status().State != StateDisabled {
		t.Errorf("state = %q, want %q", m.Status().State, StateDisabled)
	}

	// Full config -> idle.
	m2 := NewManager(Config{
		S3:         blob.S3Config{Bucket: "test", AccessKey: "key", SecretKey: "secret"},
		Passphrase: "pw",
	}, nil, nil, nil, discardLogger(), nil)
	if m2.Status().State != StateIdle {
		t.Errorf("state = %q, want %q", m2.Status().State, StateIdle)
	}
}

func TestManagerStatusCallback(t *testing.T) {
	var mu gosync.Mutex
	var received []Status
	cb := func(s Status) {
		mu.Lock()
		received = append(received, s)
		mu.Unlock()
	}

	m := NewManager(Config{
		S3:         blob.S3Config{Bucket: "test", AccessKey: "key", SecretKey: "secret"},
		Passphrase: "pw",
	}, nil, nil, nil, discardLogger(), cb)

	m.setStatus(Status{State: StateRunning, InProgress: true})
	m.setStatus(Status{State: StateIdle})

	mu.Lock()
	defer mu.Unlock()
	if len(received) != 2 {
		t.Fatalf("received %d callbacks, want 2", len(received))
	}
	if received[0].State != StateRunning || received[1].State != StateIdle {
		t.Errorf("unexpected callback sequence: %+v", received)
	}
}

func TestRunNowUploadsEncryptedSnapshot(t *testing.T) {
	m, mock, stores := setupTestManager(t)

	id, err := m.RunNow(context.Background())
	if err != nil {
		t.Fatalf("failed to run snapshot: %v", err)
	}

	record, err := stores.Snapshots.GetByID(id)
	if err != nil {
		t.Fatalf("failed to get record: %v", err)
	}
	if record.Status != model.SnapshotStatusCompleted {
		t.Errorf("expected completed status, got %q", record.Status)
	}
	if record.SizeBytes <= 0 {
		t.Errorf("expected positive size, got %d", record.SizeBytes)
	}

	mock.mu.Lock()
	uploaded, ok := mock.objects[record.ObjectKey]
	mock.mu.Unlock()
	if !ok {
		t.Fatalf("expected object %q in bucket", record.ObjectKey)
	}

	// The uploaded payload decrypts back to a SQLite file.
	plaintext, err := Decrypt(uploaded, "hunter2")
	if err != nil {
		t.Fatalf("failed to decrypt upload: %v", err)
	}
	if len(plaintext) < 16 || string(plaintext[:15]) != "SQLite format 3" {
		t.Errorf("decrypted payload is not a SQLite file")
	}

	// Salt was persisted for later snapshots.
	salt, err := stores.Settings.Get("sync_passphrase_salt")
	if err != nil {
		t.Fatalf("failed to get salt: %v", err)
	}
	if salt == "" {
		t.Error("expected persisted salt")
	}
}

func TestDownloadRoundTrip(t *testing.T) {
	m, _, _ := setupTestManager(t)

	id, err := m.RunNow(context.Background())
	if err != nil {
		t.Fatalf("failed to run snapshot: %v", err)
	}

	data, err := m.Download(context.Background(), id)
	if err != nil {
		t.Fatalf("failed to download: %v", err)
	}
	if len(data) < 16 || string(data[:15]) != "SQLite format 3" {
		t.Error("downloaded payload is not a SQLite file")
	}
}

func TestCleanupRemovesOldObjects(t *testing.T) {
	m, mock, stores := setupTestManager(t)

	id, err := m.RunNow(context.Background())
	if err != nil {
		t.Fatalf("failed to run snapshot: %v", err)
	}
	record, _ := stores.Snapshots.GetByID(id)

	// Retention of -1 days puts the cutoff in the future, so everything goes.
	if err := m.Cleanup(context.Background(), -1); err != nil {
		t.Fatalf("failed to cleanup: %v", err)
	}

	if got, _ := stores.Snapshots.GetByID(id); got != nil {
		t.Error("expected record deleted")
	}
	mock.mu.Lock()
	_, stillThere := mock.objects[record.ObjectKey]
	mock.mu.Unlock()
	if stillThere {
		t.Error("expected object deleted from bucket")
	}
}

func TestManagerStopSafety(t *testing.T) {
	m, _, _ := setupTestManager(t)

	ctx, cancel := context.WithCancel(context.Background())
	m.Start(ctx)
	time.Sleep(50 * time.Millisecond)
	cancel()
	m.Stop()

	// Stop on a never-started manager is a no-op.
	idle := NewManager(Config{}, nil, nil, nil, discardLogger(), nil)
	idle.Stop()
}
