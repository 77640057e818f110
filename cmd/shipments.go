package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"fbadash/config"
	catalogRepo "fbadash/model/repository/catalog"
	packingRepo "fbadash/model/repository/packing"
	"fbadash/service/packgroup"
	"fbadash/service/packing"
	"fbadash/service/shipment"
)

var (
	shipmentName string
	shipmentID   string
	exportOut    string
	verifyFile   string
)

func weightResolver(db *gorm.DB) *packing.WeightResolver {
	return packing.NewWeightResolver(catalogRepo.NewCatalogRepository(db), nil, config.RedisClient)
}

var shipmentsListCmd = &cobra.Command{
	Use:   "shipments:list",
	Short: "List shipments with their totals",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return fmt.Errorf("database connection failed: %w", err)
		}
		list, err := packingRepo.NewPackingRepository(db).ListShipments(cmd.Context(), currentUser())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, s := range list {
			fmt.Fprintf(out, "%s  %-30s asins=%d units=%d weight=%.0fg\n", s.ID, s.Name, s.TotalASINs, s.TotalUnits, s.TotalWeight)
		}
		return nil
	},
}

var shipmentsImportCmd = &cobra.Command{
	Use:   "shipments:import [csv files...]",
	Short: "Create a shipment from pack group CSVs, or add them to --shipment",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if (shipmentName == "") == (shipmentID == "") {
			return fmt.Errorf("exactly one of --name or --shipment is required")
		}
		files := make([]packgroup.UploadedFile, 0, len(args))
		for _, p := range args {
			data, err := os.ReadFile(p)
			if err != nil {
				return err
			}
			files = append(files, packgroup.UploadedFile{Name: filepath.Base(p), Data: data})
		}
		db, err := openDB()
		if err != nil {
			return fmt.Errorf("database connection failed: %w", err)
		}
		im := packgroup.NewImporter(db, weightResolver(db), currentUser())
		var res *packgroup.ImportResult
		if shipmentID != "" {
			res, err = im.ImportPackGroupCSVs(cmd.Context(), shipmentID, files)
		} else {
			res, err = im.CreateShipmentFromCSVs(cmd.Context(), shipmentName, files)
		}
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, e := range res.Errors {
			fmt.Fprintf(out, "  [skip] %s\n", e)
		}
		fmt.Fprintf(out, `
=== Import Report ===
Shipment:       %s
Files imported: %d
Files skipped:  %d
Pack groups:    %d
FNSKU updated:  %d
Total time:     %s
=====================
`, res.ShipmentID, res.FilesImported, res.FilesSkipped, len(res.PackGroups), res.FNSKUUpdated, res.Duration.Round(time.Millisecond))
		return nil
	},
}

var shipmentsVerifyCmd = &cobra.Command{
	Use:   "shipments:verify",
	Short: "Check that a shipment is ready for export, or re-read an exported --file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if verifyFile != "" {
			return verifyExportFile(cmd, verifyFile)
		}
		g, err := loadShipment(cmd)
		if err != nil {
			return err
		}
		res := shipment.ValidateShipmentForExport(g.Shipment)
		out := cmd.OutOrStdout()
		if res.Valid {
			fmt.Fprintln(out, "Shipment is ready for export")
			return nil
		}
		for _, e := range res.Errors {
			fmt.Fprintf(out, "  %s: %s\n", e.PackGroup, e.Message)
		}
		return &shipment.ValidationError{Result: res}
	},
}

var shipmentsExportCmd = &cobra.Command{
	Use:   "shipments:export",
	Short: "Write the box contents CSV of a shipment",
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := loadShipment(cmd)
		if err != nil {
			return err
		}
		path := exportOut
		if path == "" {
			path = shipment.ExportFileName(g.Shipment)
		}
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := shipment.ExportShipment(f, g.Shipment); err != nil {
			f.Close()
			os.Remove(path)
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %s\n", path)
		return nil
	},
}

// verifyExportFile parses a box contents CSV and reports what it holds.
func verifyExportFile(cmd *cobra.Command, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	groups, err := shipment.ParseShipmentCSV(f)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	var problems []string
	for _, g := range groups {
		units := 0
		for _, it := range g.Items {
			units += it.TotalBoxed
		}
		fmt.Fprintf(out, "%s: %d boxes, %d items, %d units\n", g.Name, len(g.Boxes), len(g.Items), units)
		problems = append(problems, g.Mismatches()...)
	}
	for _, p := range problems {
		fmt.Fprintf(out, "  [mismatch] %s\n", p)
	}
	if len(problems) > 0 {
		return fmt.Errorf("%s: %d mismatched items", path, len(problems))
	}
	return nil
}

func loadShipment(cmd *cobra.Command) (*packing.Graph, error) {
	if shipmentID == "" {
		return nil, fmt.Errorf("--shipment is required")
	}
	db, err := openDB()
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	return packing.LoadGraph(cmd.Context(), packingRepo.NewPackingRepository(db), weightResolver(db), currentUser(), shipmentID)
}

func init() {
	shipmentsImportCmd.Flags().StringVar(&shipmentName, "name", "", "Name of the new shipment")
	for _, c := range []*cobra.Command{shipmentsImportCmd, shipmentsVerifyCmd, shipmentsExportCmd} {
		c.Flags().StringVarP(&shipmentID, "shipment", "s", "", "Shipment ID")
	}
	shipmentsVerifyCmd.Flags().StringVarP(&verifyFile, "file", "f", "", "Exported CSV to re-read instead of a stored shipment")
	shipmentsExportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file (default <name>-box-contents.csv)")
	rootCmd.AddCommand(shipmentsListCmd, shipmentsImportCmd, shipmentsVerifyCmd, shipmentsExportCmd)
}
