package packing

import (
	"context"

	"gorm.io/gorm"

	packingEntity "fbadash/model/entity/packing"
)

// PackingRepository stores shipments, pack groups, boxes and items. Every query is
// scoped to a user id.
type PackingRepository struct {
	db *gorm.DB
}

func NewPackingRepository(db *gorm.DB) *PackingRepository {
	return &PackingRepository{db: db}
}

// Transaction runs fn against a repository bound to a single DB transaction.
func (r *PackingRepository) Transaction(ctx context.Context, fn func(tx *PackingRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PackingRepository{db: tx})
	})
}

// DB exposes the underlying handle so other repositories can join a transaction.
func (r *PackingRepository) DB() *gorm.DB {
	return r.db
}

func (r *PackingRepository) CreateShipment(ctx context.Context, s *packingEntity.Shipment) error {
	return r.db.WithContext(ctx).Omit("PackGroups").Create(s).Error
}

func (r *PackingRepository) GetShipment(ctx context.Context, userID, id string) (*packingEntity.Shipment, error) {
	var s packingEntity.Shipment
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *PackingRepository) ListShipments(ctx context.Context, userID string) ([]packingEntity.Shipment, error) {
	var out []packingEntity.Shipment
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&out).Error
	return out, err
}

// LoadShipmentGraph returns the shipment with pack groups (import order), boxes
// (position order) and items (import order).
func (r *PackingRepository) LoadShipmentGraph(ctx context.Context, userID, id string) (*packingEntity.Shipment, error) {
	var s packingEntity.Shipment
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		Preload("PackGroups", func(db *gorm.DB) *gorm.DB { return db.Order("position, created_at, name") }).
		Preload("PackGroups.Boxes", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Preload("PackGroups.Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_index") }).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// DeleteShipment removes the shipment and everything below it.
func (r *PackingRepository) DeleteShipment(ctx context.Context, userID, id string) error {
	return r.Transaction(ctx, func(tx *PackingRepository) error {
		var groupIDs []string
		if err := tx.db.Model(&packingEntity.PackGroup{}).
			Where("user_id = ? AND shipment_id = ?", userID, id).
			Pluck("id", &groupIDs).Error; err != nil {
			return err
		}
		if len(groupIDs) > 0 {
			if err := tx.db.Where("user_id = ? AND pack_group_id IN ?", userID, groupIDs).Delete(&packingEntity.PackGroupItem{}).Error; err != nil {
				return err
			}
			if err := tx.db.Where("user_id = ? AND pack_group_id IN ?", userID, groupIDs).Delete(&packingEntity.Box{}).Error; err != nil {
				return err
			}
			if err := tx.db.Where("user_id = ? AND id IN ?", userID, groupIDs).Delete(&packingEntity.PackGroup{}).Error; err != nil {
				return err
			}
		}
		res := tx.db.Where("user_id = ? AND id = ?", userID, id).Delete(&packingEntity.Shipment{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// CreatePackGroup inserts the group together with its boxes and items.
func (r *PackingRepository) CreatePackGroup(ctx context.Context, g *packingEntity.PackGroup) error {
	return r.db.WithContext(ctx).Create(g).Error
}

func (r *PackingRepository) GetPackGroup(ctx context.Context, userID, id string) (*packingEntity.PackGroup, error) {
	var g packingEntity.PackGroup
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).First(&g).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *PackingRepository) GroupsByShipment(ctx context.Context, userID, shipmentID string) ([]packingEntity.PackGroup, error) {
	var out []packingEntity.PackGroup
	err := r.db.WithContext(ctx).Where("user_id = ? AND shipment_id = ?", userID, shipmentID).Order("position, created_at, name").Find(&out).Error
	return out, err
}

func (r *PackingRepository) BoxesByGroup(ctx context.Context, userID, groupID string) ([]packingEntity.Box, error) {
	var out []packingEntity.Box
	err := r.db.WithContext(ctx).Where("user_id = ? AND pack_group_id = ?", userID, groupID).Order("position").Find(&out).Error
	return out, err
}

func (r *PackingRepository) ItemsByGroup(ctx context.Context, userID, groupID string) ([]packingEntity.PackGroupItem, error) {
	var out []packingEntity.PackGroupItem
	err := r.db.WithContext(ctx).Where("user_id = ? AND pack_group_id = ?", userID, groupID).Order("order_index").Find(&out).Error
	return out, err
}

func (r *PackingRepository) GetItem(ctx context.Context, userID, id string) (*packingEntity.PackGroupItem, error) {
	var it packingEntity.PackGroupItem
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).First(&it).Error; err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *PackingRepository) GetBox(ctx context.Context, userID, id string) (*packingEntity.Box, error) {
	var b packingEntity.Box
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

// ReplaceItemBoxed overwrites the whole boxed quantity map of an item.
func (r *PackingRepository) ReplaceItemBoxed(ctx context.Context, userID, itemID string, q packingEntity.BoxedQuantities) error {
	item := packingEntity.PackGroupItem{}
	item.SetBoxed(q)
	res := r.db.WithContext(ctx).Model(&packingEntity.PackGroupItem{}).
		Where("user_id = ? AND id = ?", userID, itemID).
		Update("boxed_quantities", item.BoxedQuantities)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return r.mustExist(ctx, &packingEntity.PackGroupItem{}, userID, itemID)
	}
	return nil
}

// mustExist tells a missing row apart from an update that changed nothing,
// which MySQL reports as zero affected rows unless clientFoundRows is set.
func (r *PackingRepository) mustExist(ctx context.Context, model interface{}, userID, id string) error {
	var n int64
	if err := r.db.WithContext(ctx).Model(model).Where("user_id = ? AND id = ?", userID, id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// BoxDimensions are the physical attributes a user enters per box.
type BoxDimensions struct {
	Weight float64 `json:"weight"`
	Width  float64 `json:"width"`
	Length float64 `json:"length"`
	Height float64 `json:"height"`
}

func (r *PackingRepository) UpdateBoxDimensions(ctx context.Context, userID, boxID string, d BoxDimensions) (*packingEntity.Box, error) {
	res := r.db.WithContext(ctx).Model(&packingEntity.Box{}).
		Where("user_id = ? AND id = ?", userID, boxID).
		Updates(map[string]interface{}{"weight": d.Weight, "width": d.Width, "length": d.Length, "height": d.Height})
	if res.Error != nil {
		return nil, res.Error
	}
	return r.GetBox(ctx, userID, boxID)
}

func (r *PackingRepository) UpdateBoxUnits(ctx context.Context, userID, boxID string, units int) error {
	return r.db.WithContext(ctx).Model(&packingEntity.Box{}).
		Where("user_id = ? AND id = ?", userID, boxID).
		Update("total_units", units).Error
}

func (r *PackingRepository) UpdatePackGroupTotals(ctx context.Context, userID, groupID string, boxes, units int, weight float64) error {
	return r.db.WithContext(ctx).Model(&packingEntity.PackGroup{}).
		Where("user_id = ? AND id = ?", userID, groupID).
		Updates(map[string]interface{}{"total_boxes": boxes, "total_units": units, "total_weight": weight}).Error
}

func (r *PackingRepository) UpdateShipmentTotals(ctx context.Context, userID, shipmentID string, asins, units int, weight float64) error {
	return r.db.WithContext(ctx).Model(&packingEntity.Shipment{}).
		Where("user_id = ? AND id = ?", userID, shipmentID).
		Updates(map[string]interface{}{"total_asins": asins, "total_units": units, "total_weight": weight}).Error
}
