package model

import (
	"gorm.io/gorm"

	"fbadash/model/entity/auth"
	"fbadash/model/entity/catalog"
	"fbadash/model/entity/ledger"
	"fbadash/model/entity/packing"
)

// Entities lists every table owned by the service, parents first.
func Entities() []interface{} {
	return []interface{}{
		&auth.APIToken{},
		&catalog.ASIN{},
		&catalog.Supplier{},
		&packing.Shipment{},
		&packing.PackGroup{},
		&packing.Box{},
		&packing.PackGroupItem{},
		&ledger.Transaction{},
		&ledger.TransactionItem{},
		&ledger.GeneralLedgerTransaction{},
	}
}

// AutoMigrate creates or updates all tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Entities()...)
}
