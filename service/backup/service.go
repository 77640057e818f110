package backup

import (
	"context"
	"time"

	"gorm.io/gorm"

	catalogRepo "fbadash/model/repository/catalog"
	ledgerRepo "fbadash/model/repository/ledger"
	"fbadash/storage"
)

// CatalogInvalidator is told when restored ASIN data may change cached weights.
type CatalogInvalidator interface {
	Invalidate(ctx context.Context, userID string)
}

// Service exports and restores purchase orders, ledger entries, the ASIN
// catalog and receipt files.
type Service struct {
	ledger   *ledgerRepo.LedgerRepository
	catalog  *catalogRepo.CatalogRepository
	receipts storage.ReceiptStore
	weights  CatalogInvalidator
	now      func() time.Time
}

func NewService(db *gorm.DB, receipts storage.ReceiptStore, weights CatalogInvalidator) *Service {
	return &Service{
		ledger:   ledgerRepo.NewLedgerRepository(db),
		catalog:  catalogRepo.NewCatalogRepository(db),
		receipts: receipts,
		weights:  weights,
		now:      time.Now,
	}
}
