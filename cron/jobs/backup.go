package jobs

import (
	"context"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"fbadash/config"
	"fbadash/cron"
	catalogRepo "fbadash/model/repository/catalog"
	"fbadash/service/backup"
	"fbadash/service/packing"
	"fbadash/storage"
)

func init() {
	cron.Register("backup", config.CronSchedule("backup", "0 3 * * *"), func(args ...string) {
		if err := runBackupJob(args...); err != nil {
			log.WithError(err).Error("backup job failed")
		}
	})
}

// runBackupJob backs up the default user into BACKUP_DIR, or each user named
// in args into BACKUP_DIR/<user>.
func runBackupJob(args ...string) error {
	cfg := config.LoadAppConfig()
	db, err := config.NewDB()
	if err != nil {
		return err
	}
	ctx := context.Background()
	store, err := storage.New(ctx, cfg)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		path, err := WriteBackup(ctx, db, store, cfg.BackupDir, cfg.DefaultUserID, time.Now())
		if err != nil {
			return err
		}
		log.WithField("path", path).Info("backup written")
		return nil
	}
	for _, userID := range args {
		path, err := WriteBackup(ctx, db, store, filepath.Join(cfg.BackupDir, userID), userID, time.Now())
		if err != nil {
			return err
		}
		log.WithFields(log.Fields{"user": userID, "path": path}).Info("backup written")
	}
	return nil
}

// WriteBackup stores the user's archive as dir/backup-YYYYMMDD.zip and returns
// its path. An existing archive of the same day is replaced.
func WriteBackup(ctx context.Context, db *gorm.DB, store storage.ReceiptStore, dir, userID string, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, backup.BackupFileName(now))
	tmp, err := os.CreateTemp(dir, ".backup-*.zip")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	weights := packing.NewWeightResolver(catalogRepo.NewCatalogRepository(db), nil, config.RedisClient)
	if _, err := backup.NewService(db, store, weights).GenerateExpenseReportBackup(ctx, userID, tmp); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", err
	}
	return path, nil
}
