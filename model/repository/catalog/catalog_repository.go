package catalog

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	catalogEntity "fbadash/model/entity/catalog"
)

// CatalogRepository resolves ASINs and suppliers for one tenant at a time.
type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// WithDB returns a repository bound to db, typically an open transaction.
func (r *CatalogRepository) WithDB(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// GetASINByCode returns nil, nil when the code is unknown.
func (r *CatalogRepository) GetASINByCode(ctx context.Context, userID, code string) (*catalogEntity.ASIN, error) {
	var a catalogEntity.ASIN
	err := r.db.WithContext(ctx).Where("user_id = ? AND code = ?", userID, strings.TrimSpace(code)).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ASINsByCodes batch-loads ASINs keyed by code.
func (r *CatalogRepository) ASINsByCodes(ctx context.Context, userID string, codes []string) (map[string]catalogEntity.ASIN, error) {
	out := make(map[string]catalogEntity.ASIN, len(codes))
	if len(codes) == 0 {
		return out, nil
	}
	var rows []catalogEntity.ASIN
	if err := r.db.WithContext(ctx).Where("user_id = ? AND code IN ?", userID, codes).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, a := range rows {
		out[a.Code] = a
	}
	return out, nil
}

func (r *CatalogRepository) ListASINs(ctx context.Context, userID string) ([]catalogEntity.ASIN, error) {
	var out []catalogEntity.ASIN
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("code").Find(&out).Error
	return out, err
}

// UpdateASIN patches the given columns and returns the stored record.
func (r *CatalogRepository) UpdateASIN(ctx context.Context, userID, id string, fields map[string]interface{}) (*catalogEntity.ASIN, error) {
	res := r.db.WithContext(ctx).Model(&catalogEntity.ASIN{}).Where("user_id = ? AND id = ?", userID, id).Updates(fields)
	if res.Error != nil {
		return nil, res.Error
	}
	// zero affected rows can mean unchanged values; the lookup below decides
	var a catalogEntity.ASIN
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// FindOrCreateASIN returns the ASIN with the code, creating it from defaults when
// missing. The bool reports whether a row was created.
func (r *CatalogRepository) FindOrCreateASIN(ctx context.Context, userID, code string, defaults catalogEntity.ASIN) (*catalogEntity.ASIN, bool, error) {
	existing, err := r.GetASINByCode(ctx, userID, code)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}
	a := defaults
	a.ID = ""
	a.UserID = userID
	a.Code = strings.TrimSpace(code)
	if a.WeightUnit == "" {
		a.WeightUnit = catalogEntity.WeightUnitGram
	}
	if err := r.db.WithContext(ctx).Create(&a).Error; err != nil {
		return nil, false, err
	}
	return &a, true, nil
}

// FindOrCreateSupplier matches suppliers by name, case-insensitively.
func (r *CatalogRepository) FindOrCreateSupplier(ctx context.Context, userID, name string) (*catalogEntity.Supplier, bool, error) {
	name = strings.TrimSpace(name)
	var s catalogEntity.Supplier
	err := r.db.WithContext(ctx).Where("user_id = ? AND LOWER(name) = ?", userID, strings.ToLower(name)).First(&s).Error
	if err == nil {
		return &s, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}
	s = catalogEntity.Supplier{UserID: userID, Name: name}
	if err := r.db.WithContext(ctx).Create(&s).Error; err != nil {
		return nil, false, err
	}
	return &s, true, nil
}
