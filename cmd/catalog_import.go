package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	catalogService "fbadash/service/catalog"
)

var (
	catalogFile  string
	catalogBatch int
)

var catalogImportCmd = &cobra.Command{
	Use:   "catalog:import",
	Short: "Import ASIN weights, titles and prices from CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(catalogFile)
		if err != nil {
			return fmt.Errorf("failed to open CSV: %w", err)
		}
		defer f.Close()

		db, err := openDB()
		if err != nil {
			return fmt.Errorf("database connection failed: %w", err)
		}
		res, err := catalogService.ImportCatalog(cmd.Context(), db, currentUser(), f,
			catalogService.ImportOptions{BatchSize: catalogBatch}, weightResolver(db))
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		out := cmd.OutOrStdout()
		for _, w := range res.Warnings {
			fmt.Fprintf(out, "  [warn] %s\n", w)
		}
		fmt.Fprintf(out, `
=== Catalog Import ===
CSV rows:       %d
Created:        %d
Updated:        %d
Skipped:        %d
Total time:     %s
======================
`, res.TotalRows, res.Created, res.Updated, res.Skipped, res.TotalTime.Round(time.Millisecond))
		return nil
	},
}

func init() {
	catalogImportCmd.Flags().StringVarP(&catalogFile, "file", "f", "", "Path to CSV file (required)")
	catalogImportCmd.Flags().IntVar(&catalogBatch, "batch", 500, "Rows per insert batch")
	catalogImportCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(catalogImportCmd)
}
