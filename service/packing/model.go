package packing

import (
	"context"

	packingEntity "fbadash/model/entity/packing"
	packingRepo "fbadash/model/repository/packing"
)

// Graph is a loaded shipment (groups, boxes, items) plus the unit weight in
// grams of every ASIN it contains.
type Graph struct {
	Shipment *packingEntity.Shipment
	Weights  map[string]float64
}

// LoadGraph reads the shipment tree and resolves its ASIN weights. Items
// imported without an FNSKU take the one recorded on the catalog ASIN.
func LoadGraph(ctx context.Context, repo *packingRepo.PackingRepository, weights *WeightResolver, userID, shipmentID string) (*Graph, error) {
	s, err := repo.LoadShipmentGraph(ctx, userID, shipmentID)
	if err != nil {
		return nil, err
	}
	var codes, noFNSKU []string
	for _, g := range s.PackGroups {
		for _, it := range g.Items {
			codes = append(codes, it.ASIN)
			if it.FNSKU == "" {
				noFNSKU = append(noFNSKU, it.ASIN)
			}
		}
	}
	grams := map[string]float64{}
	if weights == nil {
		return &Graph{Shipment: s, Weights: grams}, nil
	}
	if grams, err = weights.Weights(ctx, userID, codes); err != nil {
		return nil, err
	}
	fnskus, err := weights.FNSKUs(ctx, userID, noFNSKU)
	if err != nil {
		return nil, err
	}
	for gi := range s.PackGroups {
		items := s.PackGroups[gi].Items
		for ii := range items {
			if items[ii].FNSKU == "" {
				items[ii].FNSKU = fnskus[items[ii].ASIN]
			}
		}
	}
	return &Graph{Shipment: s, Weights: grams}, nil
}

// item returns the item and the group holding it.
func (g *Graph) item(itemID string) (*packingEntity.PackGroupItem, *packingEntity.PackGroup) {
	for gi := range g.Shipment.PackGroups {
		grp := &g.Shipment.PackGroups[gi]
		for ii := range grp.Items {
			if grp.Items[ii].ID == itemID {
				return &grp.Items[ii], grp
			}
		}
	}
	return nil, nil
}

func hasBox(grp *packingEntity.PackGroup, boxID string) bool {
	for _, b := range grp.Boxes {
		if b.ID == boxID {
			return true
		}
	}
	return false
}

// clone deep-copies the tree so overlays never touch the committed maps.
func (g *Graph) clone() *Graph {
	s := *g.Shipment
	s.PackGroups = make([]packingEntity.PackGroup, len(g.Shipment.PackGroups))
	for gi, grp := range g.Shipment.PackGroups {
		cp := grp
		cp.Boxes = append([]packingEntity.Box(nil), grp.Boxes...)
		cp.Items = make([]packingEntity.PackGroupItem, len(grp.Items))
		for ii, it := range grp.Items {
			it.SetBoxed(it.Boxed())
			cp.Items[ii] = it
		}
		s.PackGroups[gi] = cp
	}
	return &Graph{Shipment: &s, Weights: g.Weights}
}

// TotalBoxed is the sum of an item's box quantities.
func TotalBoxed(it *packingEntity.PackGroupItem) int {
	return it.BoxedQuantities.Data().Total()
}

// Remaining is expected minus boxed. Negative means over-allocated.
func Remaining(it *packingEntity.PackGroupItem) int {
	return it.ExpectedQuantity - TotalBoxed(it)
}

// ItemWeight is the weight in grams of the boxed units of an item.
func ItemWeight(it *packingEntity.PackGroupItem, gramsPerUnit float64) float64 {
	return gramsPerUnit * float64(TotalBoxed(it))
}

type ItemSummary struct {
	ID               string         `json:"id"`
	ASIN             string         `json:"asin"`
	SKU              string         `json:"sku"`
	Title            string         `json:"title"`
	PrepType         string         `json:"prep_type"`
	FNSKU            string         `json:"fnsku"`
	OrderIndex       int            `json:"order_index"`
	ExpectedQuantity int            `json:"expected_quantity"`
	BoxedQuantities  map[string]int `json:"boxed_quantities"`
	TotalBoxed       int            `json:"total_boxed"`
	Remaining        int            `json:"remaining"`
	Weight           float64        `json:"weight"`
}

type BoxSummary struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Position      int     `json:"position"`
	Weight        float64 `json:"weight"`
	Width         float64 `json:"width"`
	Length        float64 `json:"length"`
	Height        float64 `json:"height"`
	TotalUnits    int     `json:"total_units"`
	ContentWeight float64 `json:"content_weight"`
}

type GroupSummary struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	TotalBoxes  int           `json:"total_boxes"`
	TotalUnits  int           `json:"total_units"`
	TotalWeight float64       `json:"total_weight"`
	Boxes       []BoxSummary  `json:"boxes"`
	Items       []ItemSummary `json:"items"`
}

// ShipmentSummary is the allocation tree with every derived figure filled in.
// Weights are grams.
type ShipmentSummary struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	TotalASINs  int            `json:"total_asins"`
	TotalUnits  int            `json:"total_units"`
	TotalWeight float64        `json:"total_weight"`
	PackGroups  []GroupSummary `json:"pack_groups"`
}

// SummarizeGroup derives box, item and group totals of one pack group.
func SummarizeGroup(grp *packingEntity.PackGroup, weights map[string]float64) GroupSummary {
	gs := GroupSummary{ID: grp.ID, Name: grp.Name, TotalBoxes: len(grp.Boxes)}
	boxIdx := make(map[string]int, len(grp.Boxes))
	for _, b := range grp.Boxes {
		boxIdx[b.ID] = len(gs.Boxes)
		gs.Boxes = append(gs.Boxes, BoxSummary{
			ID: b.ID, Name: b.Name, Position: b.Position,
			Weight: b.Weight, Width: b.Width, Length: b.Length, Height: b.Height,
		})
	}
	for i := range grp.Items {
		it := &grp.Items[i]
		grams := weights[it.ASIN]
		boxed := it.Boxed()
		is := ItemSummary{
			ID: it.ID, ASIN: it.ASIN, SKU: it.SKU, Title: it.Title, PrepType: it.PrepType, FNSKU: it.FNSKU,
			OrderIndex: it.OrderIndex, ExpectedQuantity: it.ExpectedQuantity, BoxedQuantities: boxed,
			TotalBoxed: boxed.Total(),
		}
		is.Remaining = is.ExpectedQuantity - is.TotalBoxed
		is.Weight = grams * float64(is.TotalBoxed)
		for boxID, qty := range boxed {
			if bi, ok := boxIdx[boxID]; ok {
				gs.Boxes[bi].TotalUnits += qty
				gs.Boxes[bi].ContentWeight += grams * float64(qty)
			}
		}
		gs.TotalUnits += it.ExpectedQuantity
		gs.TotalWeight += is.Weight
		gs.Items = append(gs.Items, is)
	}
	return gs
}

// Summary derives all totals of the graph.
func (g *Graph) Summary() ShipmentSummary {
	s := ShipmentSummary{ID: g.Shipment.ID, Name: g.Shipment.Name}
	asins := map[string]bool{}
	for gi := range g.Shipment.PackGroups {
		grp := &g.Shipment.PackGroups[gi]
		gs := SummarizeGroup(grp, g.Weights)
		for _, it := range grp.Items {
			asins[it.ASIN] = true
		}
		s.TotalUnits += gs.TotalUnits
		s.TotalWeight += gs.TotalWeight
		s.PackGroups = append(s.PackGroups, gs)
	}
	s.TotalASINs = len(asins)
	return s
}
