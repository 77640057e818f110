package catalog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	WeightUnitGram     = "g"
	WeightUnitKilogram = "kg"
)

// ASIN is a product of the user's catalog.
type ASIN struct {
	ID         string    `gorm:"column:id;primaryKey;type:varchar(36)" json:"id"`
	UserID     string    `gorm:"column:user_id;type:varchar(64);uniqueIndex:idx_asin_user_code;not null" json:"user_id"`
	Code       string    `gorm:"column:code;type:varchar(20);uniqueIndex:idx_asin_user_code;not null" json:"code"`
	FNSKU      string    `gorm:"column:fnsku;type:varchar(20)" json:"fnsku"`
	Title      string    `gorm:"column:title;type:varchar(512)" json:"title"`
	Weight     float64   `gorm:"column:weight;type:decimal(10,3);not null;default:0" json:"weight"`
	WeightUnit string    `gorm:"column:weight_unit;type:varchar(4);not null;default:'g'" json:"weight_unit"`
	CostPrice  float64   `gorm:"column:cost_price;type:decimal(12,2);not null;default:0" json:"cost_price"`
	SellPrice  float64   `gorm:"column:sell_price;type:decimal(12,2);not null;default:0" json:"sell_price"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (ASIN) TableName() string {
	return "asins"
}

func (a *ASIN) BeforeCreate(*gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// GramsPerUnit converts the stored weight to grams. Unknown units count as grams.
func (a *ASIN) GramsPerUnit() float64 {
	if a.WeightUnit == WeightUnitKilogram {
		return a.Weight * 1000
	}
	return a.Weight
}

// Supplier is referenced by purchase orders.
type Supplier struct {
	ID        string    `gorm:"column:id;primaryKey;type:varchar(36)" json:"id"`
	UserID    string    `gorm:"column:user_id;type:varchar(64);index;not null" json:"user_id"`
	Name      string    `gorm:"column:name;type:varchar(255);index;not null" json:"name"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Supplier) TableName() string {
	return "suppliers"
}

func (s *Supplier) BeforeCreate(*gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
