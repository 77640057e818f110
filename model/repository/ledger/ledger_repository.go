package ledger

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	ledgerEntity "fbadash/model/entity/ledger"
)

// LedgerRepository stores purchase orders and general-ledger entries.
type LedgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// Transaction runs fn inside one DB transaction. The gorm handle is passed so
// other repositories can join it.
func (r *LedgerRepository) Transaction(ctx context.Context, fn func(tx *LedgerRepository, db *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&LedgerRepository{db: tx}, tx)
	})
}

// ListTransactions returns the user's purchase orders with supplier and items.
func (r *LedgerRepository) ListTransactions(ctx context.Context, userID string) ([]ledgerEntity.Transaction, error) {
	var out []ledgerEntity.Transaction
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("Supplier").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("asin_code, id") }).
		Order("date, id").
		Find(&out).Error
	return out, err
}

func (r *LedgerRepository) GetTransaction(ctx context.Context, userID, id string) (*ledgerEntity.Transaction, error) {
	var t ledgerEntity.Transaction
	err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).Preload("Items").First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// FindTransactionByShortID matches the first 8 characters of the id. It returns
// nil, nil when none or more than one transaction match.
func (r *LedgerRepository) FindTransactionByShortID(ctx context.Context, userID, short string) (*ledgerEntity.Transaction, error) {
	var rows []ledgerEntity.Transaction
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND LOWER(id) LIKE ?", userID, strings.ToLower(short)+"%").
		Limit(2).Find(&rows).Error
	if err != nil || len(rows) != 1 {
		return nil, err
	}
	return &rows[0], nil
}

// CreateTransaction inserts the purchase order with its items.
func (r *LedgerRepository) CreateTransaction(ctx context.Context, t *ledgerEntity.Transaction) error {
	return r.db.WithContext(ctx).Omit("Supplier").Create(t).Error
}

// UpdateTransaction saves the header and replaces all line items.
func (r *LedgerRepository) UpdateTransaction(ctx context.Context, t *ledgerEntity.Transaction) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("user_id = ? AND transaction_id = ?", t.UserID, t.ID).Delete(&ledgerEntity.TransactionItem{}).Error; err != nil {
		return err
	}
	if err := db.Omit("Supplier", "Items").Save(t).Error; err != nil {
		return err
	}
	if len(t.Items) == 0 {
		return nil
	}
	for i := range t.Items {
		t.Items[i].ID = ""
		t.Items[i].UserID = t.UserID
		t.Items[i].TransactionID = t.ID
	}
	return db.Create(&t.Items).Error
}

func (r *LedgerRepository) ListLedgerEntries(ctx context.Context, userID string) ([]ledgerEntity.GeneralLedgerTransaction, error) {
	var out []ledgerEntity.GeneralLedgerTransaction
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("date, id").Find(&out).Error
	return out, err
}

// FindLedgerEntry looks an entry up by full id, reference or 8-char id prefix.
// It returns nil, nil when nothing matches unambiguously.
func (r *LedgerRepository) FindLedgerEntry(ctx context.Context, userID, key string) (*ledgerEntity.GeneralLedgerTransaction, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, nil
	}
	var e ledgerEntity.GeneralLedgerTransaction
	err := r.db.WithContext(ctx).Where("user_id = ? AND (id = ? OR reference = ?)", userID, key, key).First(&e).Error
	if err == nil {
		return &e, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if len(key) != 8 {
		return nil, nil
	}
	var rows []ledgerEntity.GeneralLedgerTransaction
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND LOWER(id) LIKE ?", userID, strings.ToLower(key)+"%").
		Limit(2).Find(&rows).Error; err != nil || len(rows) != 1 {
		return nil, err
	}
	return &rows[0], nil
}

func (r *LedgerRepository) CreateLedgerEntry(ctx context.Context, e *ledgerEntity.GeneralLedgerTransaction) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *LedgerRepository) UpdateLedgerEntry(ctx context.Context, e *ledgerEntity.GeneralLedgerTransaction) error {
	return r.db.WithContext(ctx).Save(e).Error
}
