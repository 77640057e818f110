package packgroup

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"fbadash/core/cache"
	"fbadash/core/validate"
	catalogEntity "fbadash/model/entity/catalog"
	packingEntity "fbadash/model/entity/packing"
	"fbadash/model/modeltest"
	catalogRepo "fbadash/model/repository/catalog"
	packingRepo "fbadash/model/repository/packing"
	"fbadash/service/packing"
	"fbadash/service/shipment"
)

const testUser = "user-1"

const sheet1 = `Pack group name,Pack Group 1
Number of boxes,2

ASIN,FNSKU,Merchant SKU,Title,Prep type,Expected quantity,Box 1 quantity,Box 2 quantity
B00TEST,X00FN1,SKU-1,"Widget, large",None,10,,
B00OTHER,,SKU-2,Gadget,Labeling,4,,

Name of box,Box 1,Box 2
Box weight (kg):,,
`

func TestBoxNames(t *testing.T) {
	got := BoxNames("Pack Group 1", 2)
	if len(got) != 2 || got[0] != "P1-B1" || got[1] != "P1-B2" {
		t.Errorf("BoxNames = %v, want [P1-B1 P1-B2]", got)
	}
	if p := BoxPrefix("pack group 12 extra"); p != "P12extra" {
		t.Errorf("BoxPrefix = %q, want P12extra", p)
	}
	if p := BoxPrefix("North Wall"); p != "NorthWall" {
		t.Errorf("BoxPrefix = %q, want NorthWall", p)
	}
}

func TestParsePackGroupCSV(t *testing.T) {
	g, err := ParsePackGroupCSV("upload.csv", []byte(sheet1))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if g.Name != "Pack Group 1" {
		t.Errorf("Name = %q", g.Name)
	}
	if g.BoxCount != 2 {
		t.Errorf("BoxCount = %d, want 2", g.BoxCount)
	}
	if len(g.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(g.Items))
	}
	first := g.Items[0]
	if first.ASIN != "B00TEST" || first.FNSKU != "X00FN1" || first.Title != "Widget, large" || first.ExpectedQuantity != 10 {
		t.Errorf("first item = %+v", first)
	}
	if g.Items[1].PrepType != "Labeling" || g.Items[1].ExpectedQuantity != 4 {
		t.Errorf("second item = %+v", g.Items[1])
	}
}

func TestParseFallbacks(t *testing.T) {
	data := "\ufeffASIN,Expected quantity,Box 1 quantity,Box 2 quantity,Box 3 quantity\r\nB00A,1,,,\r\n"
	g, err := ParsePackGroupCSV("dir/Pack Group 7.csv", []byte(data))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if g.Name != "Pack Group 7" {
		t.Errorf("Name = %q, want file name", g.Name)
	}
	if g.BoxCount != 3 {
		t.Errorf("BoxCount = %d, want 3 from header", g.BoxCount)
	}

	g, err = ParsePackGroupCSV("x.csv", []byte("Pack group: Alpha\nASIN,Units\nB00A,2\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if g.Name != "Alpha" || g.BoxCount != 1 || g.Items[0].ExpectedQuantity != 2 {
		t.Errorf("group = %+v", g)
	}
}

func TestParseRowErrors(t *testing.T) {
	cases := map[string]string{
		"missing asin": "ASIN,Expected quantity\n,3\n",
		"not a number": "ASIN,Expected quantity\nB00A,three\n",
		"negative":     "ASIN,Expected quantity\nB00A,-1\n",
		"no header":    "Pack group name,Foo\nB00A,1\n",
	}
	for name, data := range cases {
		if _, err := ParsePackGroupCSV("f.csv", []byte(data)); err == nil {
			t.Errorf("%s: parse succeeded, want error", name)
		}
	}
}

func newImporter(t *testing.T) (*Importer, *packingRepo.PackingRepository, *catalogRepo.CatalogRepository) {
	t.Helper()
	db := modeltest.NewDB(t)
	catalog := catalogRepo.NewCatalogRepository(db)
	weights := packing.NewWeightResolver(catalog, cache.NewCache(), nil)
	return NewImporter(db, weights, testUser), packingRepo.NewPackingRepository(db), catalog
}

func csvFile(name, body string) UploadedFile {
	return UploadedFile{Name: name, ContentType: "text/csv", Data: []byte(body)}
}

func TestCreateShipmentFromCSVs(t *testing.T) {
	im, repo, catalog := newImporter(t)
	ctx := context.Background()
	if _, _, err := catalog.FindOrCreateASIN(ctx, testUser, "B00TEST", catalogEntity.ASIN{FNSKU: "OLD"}); err != nil {
		t.Fatalf("seed asin: %v", err)
	}

	res, err := im.CreateShipmentFromCSVs(ctx, "March", []UploadedFile{
		csvFile("a.csv", sheet1),
		csvFile("b.csv", "ASIN,Expected quantity\nB00BAD,x\n"),
	})
	if err != nil {
		t.Fatalf("CreateShipmentFromCSVs: %v", err)
	}
	if res.FilesImported != 1 || res.FilesSkipped != 1 || len(res.Errors) != 1 {
		t.Errorf("imported/skipped/errors = %d/%d/%d, want 1/1/1", res.FilesImported, res.FilesSkipped, len(res.Errors))
	}
	if !strings.HasPrefix(res.Errors[0], "b.csv") {
		t.Errorf("error %q does not name the file", res.Errors[0])
	}
	if res.FNSKUUpdated != 1 {
		t.Errorf("FNSKUUpdated = %d, want 1", res.FNSKUUpdated)
	}
	a, _ := catalog.GetASINByCode(ctx, testUser, "B00TEST")
	if a.FNSKU != "X00FN1" {
		t.Errorf("FNSKU = %q, want X00FN1", a.FNSKU)
	}

	s, err := repo.LoadShipmentGraph(ctx, testUser, res.ShipmentID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.TotalUnits != 14 || s.TotalASINs != 2 {
		t.Errorf("shipment totals = %d units %d asins, want 14/2", s.TotalUnits, s.TotalASINs)
	}
	grp := s.PackGroups[0]
	if grp.TotalBoxes != 2 || grp.Boxes[0].Name != "P1-B1" || grp.Boxes[1].Name != "P1-B2" {
		t.Errorf("boxes = %+v", grp.Boxes)
	}
	for i, it := range grp.Items {
		if it.OrderIndex != i {
			t.Errorf("item %d OrderIndex = %d", i, it.OrderIndex)
		}
		if len(it.Boxed()) != 0 {
			t.Errorf("item %d boxed = %v, want empty", i, it.Boxed())
		}
	}
}

func TestNonCSVRejectsWholeBatch(t *testing.T) {
	im, repo, _ := newImporter(t)
	ctx := context.Background()

	_, err := im.CreateShipmentFromCSVs(ctx, "March", []UploadedFile{
		csvFile("a.csv", sheet1),
		{Name: "b.xlsx", Data: []byte("PK")},
	})
	if !errors.Is(err, ErrUnsupportedFile) || !validate.Is(err) {
		t.Fatalf("err = %v, want unsupported file validation error", err)
	}

	_, err = im.CreateShipmentFromCSVs(ctx, "March", []UploadedFile{
		{Name: "a.csv", ContentType: "image/png", Data: []byte(sheet1)},
	})
	if !errors.Is(err, ErrUnsupportedFile) {
		t.Fatalf("content type err = %v, want ErrUnsupportedFile", err)
	}

	list, _ := repo.ListShipments(ctx, testUser)
	if len(list) != 0 {
		t.Errorf("shipments = %d, want none created", len(list))
	}
}

func TestImportIntoExistingShipment(t *testing.T) {
	im, repo, _ := newImporter(t)
	ctx := context.Background()
	s := &packingEntity.Shipment{UserID: testUser, Name: "April"}
	if err := repo.CreateShipment(ctx, s); err != nil {
		t.Fatalf("create shipment: %v", err)
	}

	res, err := im.ImportPackGroupCSVs(ctx, s.ID, []UploadedFile{csvFile("Pack Group 2.CSV", "ASIN,Expected quantity\nB00Z,5\n")})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(res.PackGroups) != 1 || res.PackGroups[0].Name != "Pack Group 2" || res.PackGroups[0].Boxes != 1 {
		t.Errorf("groups = %+v", res.PackGroups)
	}
	got, _ := repo.GetShipment(ctx, testUser, s.ID)
	if got.TotalUnits != 5 {
		t.Errorf("TotalUnits = %d, want 5", got.TotalUnits)
	}

	if _, err := im.ImportPackGroupCSVs(ctx, "missing", []UploadedFile{csvFile("a.csv", sheet1)}); err == nil {
		t.Error("import into unknown shipment succeeded")
	}
}

func TestImportKeepsAllocatedWeights(t *testing.T) {
	im, repo, catalog := newImporter(t)
	ctx := context.Background()
	if _, _, err := catalog.FindOrCreateASIN(ctx, testUser, "B00TEST", catalogEntity.ASIN{Weight: 250, WeightUnit: "g"}); err != nil {
		t.Fatalf("seed asin: %v", err)
	}
	res, err := im.CreateShipmentFromCSVs(ctx, "March", []UploadedFile{csvFile("a.csv", sheet1)})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	s, _ := repo.LoadShipmentGraph(ctx, testUser, res.ShipmentID)
	grp := s.PackGroups[0]
	if _, err := packing.SaveChanges(ctx, repo, im.weights, testUser, s.ID, map[string]map[string]int{
		grp.Items[0].ID: {grp.Boxes[0].ID: 4},
	}); err != nil {
		t.Fatalf("SaveChanges: %v", err)
	}

	if _, err := im.ImportPackGroupCSVs(ctx, s.ID, []UploadedFile{csvFile("Pack Group 2.csv", "ASIN,Expected quantity\nB00TEST,3\n")}); err != nil {
		t.Fatalf("import: %v", err)
	}
	after, _ := repo.LoadShipmentGraph(ctx, testUser, s.ID)
	if after.TotalWeight != 1000 {
		t.Errorf("shipment TotalWeight = %v, want 1000", after.TotalWeight)
	}
	if after.PackGroups[0].TotalWeight != 1000 {
		t.Errorf("group 1 TotalWeight = %v, want 1000", after.PackGroups[0].TotalWeight)
	}
	if after.PackGroups[0].Boxes[0].TotalUnits != 4 {
		t.Errorf("box 1 TotalUnits = %d, want 4", after.PackGroups[0].Boxes[0].TotalUnits)
	}
	if after.TotalUnits != 17 {
		t.Errorf("shipment TotalUnits = %d, want 17", after.TotalUnits)
	}
}

func TestImportKeepsFileOrder(t *testing.T) {
	im, repo, _ := newImporter(t)
	ctx := context.Background()
	res, err := im.CreateShipmentFromCSVs(ctx, "June", []UploadedFile{
		csvFile("Pack Group 10.csv", "ASIN,Expected quantity\nB00A,1\n"),
		csvFile("Pack Group 2.csv", "ASIN,Expected quantity\nB00B,1\n"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := im.ImportPackGroupCSVs(ctx, res.ShipmentID, []UploadedFile{csvFile("Pack Group 1.csv", "ASIN,Expected quantity\nB00C,1\n")}); err != nil {
		t.Fatalf("import: %v", err)
	}

	s, _ := repo.LoadShipmentGraph(ctx, testUser, res.ShipmentID)
	want := []string{"Pack Group 10", "Pack Group 2", "Pack Group 1"}
	if len(s.PackGroups) != len(want) {
		t.Fatalf("groups = %d, want %d", len(s.PackGroups), len(want))
	}
	for i, name := range want {
		if s.PackGroups[i].Name != name || s.PackGroups[i].Position != i+1 {
			t.Errorf("group %d = %q at %d, want %q at %d", i, s.PackGroups[i].Name, s.PackGroups[i].Position, name, i+1)
		}
	}
}

func TestParseRejectsMissingGroupName(t *testing.T) {
	if _, err := ParsePackGroupCSV(".csv", []byte("ASIN,Expected quantity\nB00A,1\n")); err == nil {
		t.Error("parse succeeded without a group name")
	}
	if _, err := ParsePackGroupCSV("dir/ .csv", []byte("ASIN,Expected quantity\nB00A,1\n")); err == nil {
		t.Error("parse succeeded with a blank file name")
	}
}

func TestExportFallsBackToCatalogFNSKU(t *testing.T) {
	im, repo, catalog := newImporter(t)
	ctx := context.Background()
	if _, _, err := catalog.FindOrCreateASIN(ctx, testUser, "B00OTHER", catalogEntity.ASIN{FNSKU: "X00CATALOG"}); err != nil {
		t.Fatalf("seed asin: %v", err)
	}
	res, err := im.CreateShipmentFromCSVs(ctx, "March", []UploadedFile{csvFile("a.csv", sheet1)})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	g, err := packing.LoadGraph(ctx, repo, im.weights, testUser, res.ShipmentID)
	if err != nil {
		t.Fatalf("LoadGraph: %v", err)
	}
	var buf bytes.Buffer
	if err := shipment.WriteShipmentCSV(&buf, g.Shipment); err != nil {
		t.Fatalf("WriteShipmentCSV: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "B00OTHER,X00CATALOG,0,0,0") {
		t.Errorf("export lacks catalog FNSKU:\n%s", out)
	}
	if !strings.Contains(out, "B00TEST,X00FN1,0,0,0") {
		t.Errorf("export lost the sheet FNSKU:\n%s", out)
	}

	stored, _ := repo.LoadShipmentGraph(ctx, testUser, res.ShipmentID)
	if fn := stored.PackGroups[0].Items[1].FNSKU; fn != "" {
		t.Errorf("stored item FNSKU = %q, want it left empty", fn)
	}
}
