package packing

import (
	"context"
	"fmt"

	packingRepo "fbadash/model/repository/packing"
)

// RecomputeTotals re-reads boxes and items of the shipment and persists box,
// pack group and shipment totals. Pass the transaction-bound repository when
// called from a save or import. Codes missing from weights count as 0 g.
func RecomputeTotals(ctx context.Context, repo *packingRepo.PackingRepository, userID, shipmentID string, weights map[string]float64) error {
	groups, err := repo.GroupsByShipment(ctx, userID, shipmentID)
	if err != nil {
		return fmt.Errorf("load pack groups: %w", err)
	}

	asins := map[string]bool{}
	shipUnits := 0
	shipWeight := 0.0
	for gi := range groups {
		grp := &groups[gi]
		if grp.Boxes, err = repo.BoxesByGroup(ctx, userID, grp.ID); err != nil {
			return fmt.Errorf("load boxes of %s: %w", grp.Name, err)
		}
		if grp.Items, err = repo.ItemsByGroup(ctx, userID, grp.ID); err != nil {
			return fmt.Errorf("load items of %s: %w", grp.Name, err)
		}
		gs := SummarizeGroup(grp, weights)
		for _, b := range gs.Boxes {
			if err := repo.UpdateBoxUnits(ctx, userID, b.ID, b.TotalUnits); err != nil {
				return fmt.Errorf("update box %s: %w", b.Name, err)
			}
		}
		if err := repo.UpdatePackGroupTotals(ctx, userID, grp.ID, gs.TotalBoxes, gs.TotalUnits, gs.TotalWeight); err != nil {
			return fmt.Errorf("update pack group %s: %w", grp.Name, err)
		}
		for _, it := range grp.Items {
			asins[it.ASIN] = true
		}
		shipUnits += gs.TotalUnits
		shipWeight += gs.TotalWeight
	}

	if err := repo.UpdateShipmentTotals(ctx, userID, shipmentID, len(asins), shipUnits, shipWeight); err != nil {
		return fmt.Errorf("update shipment totals: %w", err)
	}
	return nil
}
