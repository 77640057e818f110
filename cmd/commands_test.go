package cmd

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"fbadash/model/modeltest"
	packingRepo "fbadash/model/repository/packing"
	"fbadash/service/packing"
	"fbadash/storage"
)

const sheet = `Pack group name,Pack Group 1
Number of boxes,1

ASIN,FNSKU,Merchant SKU,Title,Prep type,Expected quantity,Box 1 quantity
B00TEST,X00FN1,SKU-1,Widget,None,3,
`

// useTestDB points every command at one temp database and receipt dir.
func useTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db := modeltest.NewDB(t)
	store := storage.NewLocalStore(t.TempDir())
	prevDB, prevStore := openDB, receiptStore
	openDB = func() (*gorm.DB, error) { return db, nil }
	receiptStore = func(*cobra.Command) (storage.ReceiptStore, error) { return store, nil }
	t.Cleanup(func() { openDB, receiptStore = prevDB, prevStore })
	return db
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	shipmentName, shipmentID, exportOut, verifyFile, backupOut, jobName = "", "", "", "", "", ""
	out := &bytes.Buffer{}
	rootCmd.SetOut(out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(append(args, "--user", "user-1"))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestShipmentCommands(t *testing.T) {
	db := useTestDB(t)
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "pg1.csv")
	if err := os.WriteFile(csvPath, []byte(sheet), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "shipments:import", "--name", "Spring restock", csvPath)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !strings.Contains(out, "Files imported: 1") {
		t.Errorf("import output = %q", out)
	}

	ctx := context.Background()
	repo := packingRepo.NewPackingRepository(db)
	list, err := repo.ListShipments(ctx, "user-1")
	if err != nil || len(list) != 1 {
		t.Fatalf("shipments = %v, %v", list, err)
	}
	id := list[0].ID

	if _, err := run(t, "shipments:verify", "--shipment", id); err == nil {
		t.Error("verify passed for unallocated shipment")
	}

	g, err := packing.LoadGraph(ctx, repo, nil, "user-1", id)
	if err != nil {
		t.Fatalf("LoadGraph: %v", err)
	}
	grp := g.Shipment.PackGroups[0]
	box := grp.Boxes[0]
	changes := map[string]map[string]int{grp.Items[0].ID: {box.ID: 3}}
	if _, err := packing.SaveChanges(ctx, repo, nil, "user-1", id, changes); err != nil {
		t.Fatalf("SaveChanges: %v", err)
	}
	if _, err := repo.UpdateBoxDimensions(ctx, "user-1", box.ID, packingRepo.BoxDimensions{Weight: 2, Width: 20, Length: 30, Height: 10}); err != nil {
		t.Fatalf("UpdateBoxDimensions: %v", err)
	}

	out, err = run(t, "shipments:verify", "--shipment", id)
	if err != nil || !strings.Contains(out, "ready for export") {
		t.Fatalf("verify = %q, %v", out, err)
	}

	exportPath := filepath.Join(dir, "out.csv")
	if _, err := run(t, "shipments:export", "--shipment", id, "--out", exportPath); err != nil {
		t.Fatalf("export: %v", err)
	}
	data, err := os.ReadFile(exportPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "B00TEST") {
		t.Errorf("export = %q", data)
	}

	out, err = run(t, "shipments:verify", "--file", exportPath)
	if err != nil || !strings.Contains(out, "Pack Group 1: 1 boxes, 1 items, 3 units") {
		t.Errorf("verify --file = %q, %v", out, err)
	}

	out, err = run(t, "shipments:list")
	if err != nil || !strings.Contains(out, "Spring restock") {
		t.Errorf("list = %q, %v", out, err)
	}
}

func TestImportNeedsNameOrShipment(t *testing.T) {
	useTestDB(t)
	if _, err := run(t, "shipments:import", "x.csv"); err == nil {
		t.Error("import without --name or --shipment succeeded")
	}
}

func TestBackupCommands(t *testing.T) {
	useTestDB(t)
	path := filepath.Join(t.TempDir(), "b.zip")
	out, err := run(t, "backup:create", "--out", path)
	if err != nil {
		t.Fatalf("backup:create: %v", err)
	}
	if !strings.Contains(out, "Backup written to") {
		t.Errorf("output = %q", out)
	}
	out, err = run(t, "backup:restore", path)
	if err != nil {
		t.Fatalf("backup:restore: %v", err)
	}
	if !strings.Contains(out, "Restore Report") {
		t.Errorf("output = %q", out)
	}
}

func TestTokenCreate(t *testing.T) {
	useTestDB(t)
	out, err := run(t, "tokens:create", "--name", "ci")
	if err != nil {
		t.Fatalf("tokens:create: %v", err)
	}
	if tok := strings.TrimSpace(out); len(tok) != 64 {
		t.Errorf("token = %q, want 64 chars", tok)
	}
	if _, err := run(t, "tokens:revoke", strings.TrimSpace(out)); err != nil {
		t.Errorf("tokens:revoke: %v", err)
	}
	if _, err := run(t, "tokens:revoke", "nope"); err == nil {
		t.Error("revoking unknown token succeeded")
	}
}

func TestCronUnknownJob(t *testing.T) {
	if _, err := run(t, "cron:start", "--job", "nope"); err == nil {
		t.Error("unknown job ran")
	}
}
