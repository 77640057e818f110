package packing

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	packingEntity "fbadash/model/entity/packing"
	"fbadash/model/modeltest"
)

const testUser = "user-1"

func seedGroup(t *testing.T, repo *PackingRepository, shipmentID, name string, position int) *packingEntity.PackGroup {
	t.Helper()
	g := &packingEntity.PackGroup{
		UserID: testUser, ShipmentID: shipmentID, Name: name, Position: position,
		Boxes: []packingEntity.Box{{UserID: testUser, Name: "B1", Position: 1}},
		Items: []packingEntity.PackGroupItem{{UserID: testUser, ASIN: "B00TEST", ExpectedQuantity: 5}},
	}
	g.Items[0].SetBoxed(nil)
	if err := repo.CreatePackGroup(context.Background(), g); err != nil {
		t.Fatalf("create pack group: %v", err)
	}
	return g
}

func TestUnchangedUpdatesSucceed(t *testing.T) {
	repo := NewPackingRepository(modeltest.NewDB(t))
	ctx := context.Background()
	s := &packingEntity.Shipment{UserID: testUser, Name: "May"}
	if err := repo.CreateShipment(ctx, s); err != nil {
		t.Fatalf("create shipment: %v", err)
	}
	g := seedGroup(t, repo, s.ID, "Pack Group 1", 1)
	item, box := g.Items[0].ID, g.Boxes[0].ID

	q := packingEntity.BoxedQuantities{box: 3}
	for i := 0; i < 2; i++ {
		if err := repo.ReplaceItemBoxed(ctx, testUser, item, q); err != nil {
			t.Fatalf("ReplaceItemBoxed #%d: %v", i+1, err)
		}
	}
	d := BoxDimensions{Weight: 4.5, Width: 40, Length: 30, Height: 20}
	for i := 0; i < 2; i++ {
		b, err := repo.UpdateBoxDimensions(ctx, testUser, box, d)
		if err != nil {
			t.Fatalf("UpdateBoxDimensions #%d: %v", i+1, err)
		}
		if b.Weight != 4.5 {
			t.Errorf("Weight = %v, want 4.5", b.Weight)
		}
	}

	if err := repo.ReplaceItemBoxed(ctx, testUser, "missing", q); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("ReplaceItemBoxed(missing) = %v, want ErrRecordNotFound", err)
	}
	if _, err := repo.UpdateBoxDimensions(ctx, testUser, "missing", d); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("UpdateBoxDimensions(missing) = %v, want ErrRecordNotFound", err)
	}
	if err := repo.ReplaceItemBoxed(ctx, "user-2", item, q); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("ReplaceItemBoxed(other tenant) = %v, want ErrRecordNotFound", err)
	}
}

func TestGroupsFollowPosition(t *testing.T) {
	repo := NewPackingRepository(modeltest.NewDB(t))
	ctx := context.Background()
	s := &packingEntity.Shipment{UserID: testUser, Name: "May"}
	if err := repo.CreateShipment(ctx, s); err != nil {
		t.Fatalf("create shipment: %v", err)
	}
	seedGroup(t, repo, s.ID, "Pack Group 2", 2)
	seedGroup(t, repo, s.ID, "Pack Group 10", 1)

	groups, err := repo.GroupsByShipment(ctx, testUser, s.ID)
	if err != nil {
		t.Fatalf("GroupsByShipment: %v", err)
	}
	if len(groups) != 2 || groups[0].Name != "Pack Group 10" || groups[1].Name != "Pack Group 2" {
		t.Errorf("groups = %+v, want Pack Group 10 then Pack Group 2", groups)
	}
	graph, err := repo.LoadShipmentGraph(ctx, testUser, s.ID)
	if err != nil {
		t.Fatalf("LoadShipmentGraph: %v", err)
	}
	if graph.PackGroups[0].Name != "Pack Group 10" {
		t.Errorf("graph first group = %q, want Pack Group 10", graph.PackGroups[0].Name)
	}
}
