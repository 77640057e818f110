package storage

import (
	"context"
	"errors"
	"mime"
	"path"
	"strings"

	"fbadash/config"
)

// ErrNotFound is returned by Download for a missing receipt.
var ErrNotFound = errors.New("storage: receipt not found")

// Object is a stored receipt file. Name is relative to the user's area.
type Object struct {
	Name string
	Size int64
}

// ReceiptStore keeps receipt files per user.
type ReceiptStore interface {
	List(ctx context.Context, userID string) ([]Object, error)
	Download(ctx context.Context, userID, name string) ([]byte, error)
	Upload(ctx context.Context, userID, name string, data []byte) error
}

// New picks S3 when RECEIPTS_S3_BUCKET is set, a local directory otherwise.
func New(ctx context.Context, cfg *config.Config) (ReceiptStore, error) {
	if cfg.ReceiptsS3 != "" {
		return NewS3Store(ctx, cfg.ReceiptsS3, config.GetEnv("RECEIPTS_S3_PREFIX", "receipts/"))
	}
	return NewLocalStore(cfg.ReceiptsDir), nil
}

// ContentType guesses a MIME type from the file extension.
func ContentType(name string) string {
	if ct := mime.TypeByExtension(strings.ToLower(path.Ext(name))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// cleanName rejects names that would escape the user's area.
func cleanName(name string) (string, error) {
	n := path.Base(strings.ReplaceAll(name, "\\", "/"))
	if n == "." || n == "/" || n == ".." || n == "" {
		return "", errors.New("storage: invalid file name")
	}
	return n, nil
}
