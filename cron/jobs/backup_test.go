package jobs

import (
	"archive/zip"
	"context"
	"path/filepath"
	"testing"
	"time"

	"fbadash/cron"
	"fbadash/model/modeltest"
	"fbadash/storage"
)

func TestWriteBackup(t *testing.T) {
	dir := t.TempDir()
	db := modeltest.NewDB(t)
	store := storage.NewLocalStore(t.TempDir())
	now := time.Date(2026, 3, 9, 3, 0, 0, 0, time.UTC)

	path, err := WriteBackup(context.Background(), db, store, dir, "user-1", now)
	if err != nil {
		t.Fatalf("WriteBackup: %v", err)
	}
	if want := filepath.Join(dir, "backup-20260309.zip"); path != want {
		t.Errorf("path = %q, want %q", path, want)
	}
	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer zr.Close()
	if len(zr.File) == 0 {
		t.Error("archive is empty")
	}

	// same day overwrites
	if _, err := WriteBackup(context.Background(), db, store, dir, "user-1", now); err != nil {
		t.Fatalf("second WriteBackup: %v", err)
	}
	matches, _ := filepath.Glob(filepath.Join(dir, "*"))
	if len(matches) != 1 {
		t.Errorf("files = %v, want one archive", matches)
	}
}

func TestBackupJobRegistered(t *testing.T) {
	j, ok := cron.Jobs()["backup"]
	if !ok {
		t.Fatal("backup job not registered")
	}
	if j.Schedule == "" {
		t.Error("backup job has no schedule")
	}
}
