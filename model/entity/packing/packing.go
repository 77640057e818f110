package packing

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Shipment is one outbound FBA shipment. Totals are derived from its pack groups.
type Shipment struct {
	ID          string      `gorm:"column:id;primaryKey;type:varchar(36)" json:"id"`
	UserID      string      `gorm:"column:user_id;type:varchar(64);index;not null" json:"user_id"`
	Name        string      `gorm:"column:name;type:varchar(255);not null" json:"name"`
	TotalASINs  int         `gorm:"column:total_asins;not null;default:0" json:"total_asins"`
	TotalUnits  int         `gorm:"column:total_units;not null;default:0" json:"total_units"`
	TotalWeight float64     `gorm:"column:total_weight;type:decimal(14,3);not null;default:0" json:"total_weight"`
	CreatedAt   time.Time   `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time   `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	PackGroups  []PackGroup `gorm:"foreignKey:ShipmentID;constraint:OnDelete:CASCADE" json:"pack_groups,omitempty"`
}

func (Shipment) TableName() string {
	return "shipments"
}

func (s *Shipment) BeforeCreate(*gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// PackGroup is one imported pack-group file: a batch of items split into boxes.
type PackGroup struct {
	ID          string          `gorm:"column:id;primaryKey;type:varchar(36)" json:"id"`
	UserID      string          `gorm:"column:user_id;type:varchar(64);index;not null" json:"user_id"`
	ShipmentID  string          `gorm:"column:shipment_id;type:varchar(36);index;not null" json:"shipment_id"`
	Name        string          `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Position    int             `gorm:"column:position;not null;default:0" json:"position"`
	TotalBoxes  int             `gorm:"column:total_boxes;not null;default:0" json:"total_boxes"`
	TotalUnits  int             `gorm:"column:total_units;not null;default:0" json:"total_units"`
	TotalWeight float64         `gorm:"column:total_weight;type:decimal(14,3);not null;default:0" json:"total_weight"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	Boxes       []Box           `gorm:"foreignKey:PackGroupID;constraint:OnDelete:CASCADE" json:"boxes,omitempty"`
	Items       []PackGroupItem `gorm:"foreignKey:PackGroupID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

func (PackGroup) TableName() string {
	return "pack_groups"
}

func (g *PackGroup) BeforeCreate(*gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	return nil
}

// Box is a physical carton. Dimensions are kg and cm; zero means not entered yet.
type Box struct {
	ID          string  `gorm:"column:id;primaryKey;type:varchar(36)" json:"id"`
	UserID      string  `gorm:"column:user_id;type:varchar(64);index;not null" json:"user_id"`
	PackGroupID string  `gorm:"column:pack_group_id;type:varchar(36);index;not null" json:"pack_group_id"`
	Name        string  `gorm:"column:name;type:varchar(64);not null" json:"name"`
	Position    int     `gorm:"column:position;not null" json:"position"`
	Weight      float64 `gorm:"column:weight;type:decimal(10,3);not null;default:0" json:"weight"`
	Width       float64 `gorm:"column:width;type:decimal(10,2);not null;default:0" json:"width"`
	Length      float64 `gorm:"column:length;type:decimal(10,2);not null;default:0" json:"length"`
	Height      float64 `gorm:"column:height;type:decimal(10,2);not null;default:0" json:"height"`
	TotalUnits  int     `gorm:"column:total_units;not null;default:0" json:"total_units"`
}

func (Box) TableName() string {
	return "boxes"
}

func (b *Box) BeforeCreate(*gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// BoxedQuantities maps box id to units placed in that box. Missing keys mean 0.
type BoxedQuantities map[string]int

// Total sums all box quantities.
func (q BoxedQuantities) Total() int {
	n := 0
	for _, v := range q {
		n += v
	}
	return n
}

// PackGroupItem is one ASIN line of a pack group.
type PackGroupItem struct {
	ID               string                             `gorm:"column:id;primaryKey;type:varchar(36)" json:"id"`
	UserID           string                             `gorm:"column:user_id;type:varchar(64);index;not null" json:"user_id"`
	PackGroupID      string                             `gorm:"column:pack_group_id;type:varchar(36);index;not null" json:"pack_group_id"`
	ASIN             string                             `gorm:"column:asin;type:varchar(20);index;not null" json:"asin"`
	SKU              string                             `gorm:"column:sku;type:varchar(64)" json:"sku"`
	Title            string                             `gorm:"column:title;type:varchar(512)" json:"title"`
	PrepType         string                             `gorm:"column:prep_type;type:varchar(64)" json:"prep_type"`
	FNSKU            string                             `gorm:"column:fnsku;type:varchar(20)" json:"fnsku"`
	ExpectedQuantity int                                `gorm:"column:expected_quantity;not null;default:0" json:"expected_quantity"`
	BoxedQuantities  datatypes.JSONType[BoxedQuantities] `gorm:"column:boxed_quantities" json:"boxed_quantities"`
	OrderIndex       int                                `gorm:"column:order_index;not null" json:"order_index"`
}

func (PackGroupItem) TableName() string {
	return "pack_group_items"
}

func (i *PackGroupItem) BeforeCreate(*gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

// Boxed returns a copy of the item's box quantity map, never nil.
func (i *PackGroupItem) Boxed() BoxedQuantities {
	out := BoxedQuantities{}
	for k, v := range i.BoxedQuantities.Data() {
		out[k] = v
	}
	return out
}

// SetBoxed replaces the item's box quantity map.
func (i *PackGroupItem) SetBoxed(q BoxedQuantities) {
	if q == nil {
		q = BoxedQuantities{}
	}
	i.BoxedQuantities = datatypes.NewJSONType(q)
}
