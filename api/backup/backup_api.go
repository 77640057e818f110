package backup

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"fbadash/api"
	"fbadash/config"
	"fbadash/core/auth"
	catalogRepo "fbadash/model/repository/catalog"
	backupService "fbadash/service/backup"
	"fbadash/service/packing"
	"fbadash/storage"
)

const maxArchiveBytes = 512 << 20

func init() {
	api.RegisterModule(RegisterBackupRoutes)
}

// RegisterBackupRoutes wires the backup endpoints to the configured receipt store.
func RegisterBackupRoutes(apiGroup *echo.Group, db *gorm.DB) {
	store, err := storage.New(context.Background(), config.LoadAppConfig())
	if err != nil {
		log.WithError(err).Error("receipt storage unavailable, falling back to local directory")
		store = storage.NewLocalStore(config.LoadAppConfig().ReceiptsDir)
	}
	RegisterBackupRoutesWithStore(apiGroup, db, store)
}

// RegisterBackupRoutesWithStore registers /backup with an explicit receipt store (for tests).
func RegisterBackupRoutesWithStore(apiGroup *echo.Group, db *gorm.DB, store storage.ReceiptStore) {
	weights := packing.NewWeightResolver(catalogRepo.NewCatalogRepository(db), nil, config.RedisClient)
	svc := backupService.NewService(db, store, weights)
	g := apiGroup.Group("/backup")

	// GET /api/backup – ZIP of CSVs, PDFs and receipts
	g.GET("", func(c echo.Context) error {
		start := time.Now()
		var buf bytes.Buffer
		res, err := svc.GenerateExpenseReportBackup(c.Request().Context(), auth.UserID(c), &buf)
		if err != nil {
			return api.Error(c, err)
		}
		h := c.Response().Header()
		h.Set(echo.HeaderContentDisposition, `attachment; filename="`+backupService.BackupFileName(time.Now())+`"`)
		h.Set("X-Backup-Warnings", strconv.Itoa(len(res.Warnings)))
		h.Set("X-Request-Duration-ms", strconv.FormatInt(time.Since(start).Milliseconds(), 10))
		return c.Blob(http.StatusOK, "application/zip", buf.Bytes())
	})

	// POST /api/backup/restore – multipart file
	g.POST("/restore", func(c echo.Context) error {
		start := time.Now()
		fh, err := c.FormFile("file")
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "file is required"})
		}
		if fh.Size > maxArchiveBytes {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "archive too large"})
		}
		f, err := fh.Open()
		if err != nil {
			return api.Error(c, err)
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			return api.Error(c, err)
		}
		res, err := svc.ImportExpenseBackup(c.Request().Context(), auth.UserID(c), bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return api.Error(c, err)
		}
		duration := time.Since(start).Milliseconds()
		c.Response().Header().Set("X-Request-Duration-ms", strconv.FormatInt(duration, 10))
		return c.JSON(http.StatusOK, echo.Map{"result": res, "request_duration_ms": duration})
	})
}
