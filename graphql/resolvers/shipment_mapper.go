package resolvers

import (
	gql "github.com/graph-gophers/graphql-go"

	gqlmodels "fbadash/graphql/models"
	"fbadash/service/packing"
	"fbadash/service/shipment"
)

func mapShipment(s packing.ShipmentSummary) *gqlmodels.Shipment {
	out := &gqlmodels.Shipment{
		ID:          gql.ID(s.ID),
		Name:        s.Name,
		TotalAsins:  int32(s.TotalASINs),
		TotalUnits:  int32(s.TotalUnits),
		TotalWeight: s.TotalWeight,
		PackGroups:  make([]*gqlmodels.PackGroup, 0, len(s.PackGroups)),
	}
	for _, g := range s.PackGroups {
		out.PackGroups = append(out.PackGroups, mapGroup(g))
	}
	return out
}

func mapGroup(g packing.GroupSummary) *gqlmodels.PackGroup {
	pg := &gqlmodels.PackGroup{
		ID:          gql.ID(g.ID),
		Name:        g.Name,
		TotalBoxes:  int32(g.TotalBoxes),
		TotalUnits:  int32(g.TotalUnits),
		TotalWeight: g.TotalWeight,
		Boxes:       make([]*gqlmodels.Box, 0, len(g.Boxes)),
		Items:       make([]*gqlmodels.PackItem, 0, len(g.Items)),
	}
	for _, b := range g.Boxes {
		pg.Boxes = append(pg.Boxes, &gqlmodels.Box{
			ID: gql.ID(b.ID), Name: b.Name, Position: int32(b.Position),
			Weight: b.Weight, Width: b.Width, Length: b.Length, Height: b.Height,
			TotalUnits: int32(b.TotalUnits), ContentWeight: b.ContentWeight,
		})
	}
	for _, it := range g.Items {
		item := &gqlmodels.PackItem{
			ID: gql.ID(it.ID), Asin: it.ASIN, Fnsku: it.FNSKU, Sku: it.SKU, Title: it.Title, PrepType: it.PrepType,
			ExpectedQuantity: int32(it.ExpectedQuantity),
			TotalBoxed:       int32(it.TotalBoxed),
			Remaining:        int32(it.Remaining),
			Weight:           it.Weight,
			Allocations:      []*gqlmodels.Allocation{},
		}
		// box order, zeros omitted
		for _, b := range g.Boxes {
			if q := it.BoxedQuantities[b.ID]; q > 0 {
				item.Allocations = append(item.Allocations, &gqlmodels.Allocation{BoxID: gql.ID(b.ID), Quantity: int32(q)})
			}
		}
		pg.Items = append(pg.Items, item)
	}
	return pg
}

func mapValidation(v shipment.ValidationResult) *gqlmodels.ExportValidation {
	out := &gqlmodels.ExportValidation{Valid: v.Valid, Errors: make([]*gqlmodels.ExportError, 0, len(v.Errors))}
	for _, e := range v.Errors {
		ge := &gqlmodels.ExportError{PackGroup: e.PackGroup, Message: e.Message}
		if e.Box != "" {
			box := e.Box
			ge.Box = &box
		}
		if e.ASIN != "" {
			asin := e.ASIN
			ge.Asin = &asin
			rem := int32(e.Remaining)
			ge.Remaining = &rem
		}
		out.Errors = append(out.Errors, ge)
	}
	return out
}
