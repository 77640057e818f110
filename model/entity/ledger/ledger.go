package ledger

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fbadash/model/entity/catalog"
)

// Transaction is a purchase order.
type Transaction struct {
	ID           string            `gorm:"column:id;primaryKey;type:varchar(36)" json:"id"`
	UserID       string            `gorm:"column:user_id;type:varchar(64);index;not null" json:"user_id"`
	SupplierID   *string           `gorm:"column:supplier_id;type:varchar(36);index" json:"supplier_id"`
	Supplier     *catalog.Supplier `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
	PONumber     string            `gorm:"column:po_number;type:varchar(64)" json:"po_number"`
	Date         time.Time         `gorm:"column:date" json:"date"`
	Status       string            `gorm:"column:status;type:varchar(32);default:'ordered'" json:"status"`
	ShippingCost float64           `gorm:"column:shipping_cost;type:decimal(12,2);not null;default:0" json:"shipping_cost"`
	Fees         float64           `gorm:"column:fees;type:decimal(12,2);not null;default:0" json:"fees"`
	Notes        string            `gorm:"column:notes;type:text" json:"notes"`
	CreatedAt    time.Time         `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time         `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	Items        []TransactionItem `gorm:"foreignKey:TransactionID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

func (Transaction) TableName() string {
	return "transactions"
}

func (t *Transaction) BeforeCreate(*gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// SupplierName returns the preloaded supplier's name or "".
func (t *Transaction) SupplierName() string {
	if t.Supplier == nil {
		return ""
	}
	return t.Supplier.Name
}

// TransactionItem is one ASIN line of a purchase order.
type TransactionItem struct {
	ID            string  `gorm:"column:id;primaryKey;type:varchar(36)" json:"id"`
	UserID        string  `gorm:"column:user_id;type:varchar(64);index;not null" json:"user_id"`
	TransactionID string  `gorm:"column:transaction_id;type:varchar(36);index;not null" json:"transaction_id"`
	ASINCode      string  `gorm:"column:asin_code;type:varchar(20);index" json:"asin_code"`
	Quantity      int     `gorm:"column:quantity;not null;default:0" json:"quantity"`
	UnitCost      float64 `gorm:"column:unit_cost;type:decimal(12,4);not null;default:0" json:"unit_cost"`
	SellPrice     float64 `gorm:"column:sell_price;type:decimal(12,2);not null;default:0" json:"sell_price"`
}

func (TransactionItem) TableName() string {
	return "transaction_items"
}

func (i *TransactionItem) BeforeCreate(*gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

// GeneralLedgerTransaction is a non-inventory income or expense entry.
type GeneralLedgerTransaction struct {
	ID          string    `gorm:"column:id;primaryKey;type:varchar(36)" json:"id"`
	UserID      string    `gorm:"column:user_id;type:varchar(64);index;not null" json:"user_id"`
	Reference   string    `gorm:"column:reference;type:varchar(32);index" json:"reference"`
	Date        time.Time `gorm:"column:date" json:"date"`
	Description string    `gorm:"column:description;type:varchar(512)" json:"description"`
	Category    string    `gorm:"column:category;type:varchar(128)" json:"category"`
	Type        string    `gorm:"column:type;type:varchar(16);default:'expense'" json:"type"`
	Amount      float64   `gorm:"column:amount;type:decimal(12,2);not null;default:0" json:"amount"`
	Notes       string    `gorm:"column:notes;type:text" json:"notes"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (GeneralLedgerTransaction) TableName() string {
	return "general_ledger_transactions"
}

func (g *GeneralLedgerTransaction) BeforeCreate(*gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	return nil
}
