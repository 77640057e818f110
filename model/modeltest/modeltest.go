// Package modeltest opens throwaway databases for package tests.
package modeltest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"fbadash/model"
)

// NewDB returns a migrated sqlite database in a temp file removed after the test.
// A file DB is used so every pooled connection sees the same tables.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	tmpFile := filepath.Join(os.TempDir(), fmt.Sprintf("fbadash_%s_%d.db", name, time.Now().UnixNano()))
	t.Cleanup(func() { os.Remove(tmpFile) })

	db, err := gorm.Open(sqlite.Open(tmpFile), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.Exec("PRAGMA busy_timeout=5000")
	if err := model.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}
