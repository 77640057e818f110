package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"fbadash/config"
	"fbadash/service/backup"
	"fbadash/storage"
)

var backupOut string

// receiptStore is replaced in tests.
var receiptStore = func(cmd *cobra.Command) (storage.ReceiptStore, error) {
	return storage.New(cmd.Context(), config.LoadAppConfig())
}

func backupService(cmd *cobra.Command) (*backup.Service, error) {
	db, err := openDB()
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	store, err := receiptStore(cmd)
	if err != nil {
		return nil, err
	}
	return backup.NewService(db, store, weightResolver(db)), nil
}

var backupCreateCmd = &cobra.Command{
	Use:   "backup:create",
	Short: "Write a ZIP with purchase orders, ledger, catalog and receipts",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := backupService(cmd)
		if err != nil {
			return err
		}
		path := backupOut
		if path == "" {
			path = filepath.Join(config.LoadAppConfig().BackupDir, backup.BackupFileName(time.Now()))
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		res, err := svc.GenerateExpenseReportBackup(cmd.Context(), currentUser(), f)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(path)
			return err
		}
		out := cmd.OutOrStdout()
		for _, w := range res.Warnings {
			fmt.Fprintf(out, "  [warn] %s\n", w)
		}
		fmt.Fprintf(out, "Backup written to %s (%d transactions, %d ledger entries, %d ASINs)\n",
			path, res.Transactions, res.LedgerEntries, res.ASINs)
		return nil
	},
}

var backupRestoreCmd = &cobra.Command{
	Use:   "backup:restore [zip file]",
	Short: "Restore a backup archive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		svc, err := backupService(cmd)
		if err != nil {
			return err
		}
		res, err := svc.ImportExpenseBackup(cmd.Context(), currentUser(), bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, e := range res.Errors {
			fmt.Fprintf(out, "  [error] %s\n", e)
		}
		fmt.Fprintf(out, `
=== Restore Report ===
Transactions:   %d created, %d updated
Ledger entries: %d created, %d updated
ASINs:          %d created, %d updated
Receipts:       %d
Skipped rows:   %d
======================
`, res.TransactionsCreated, res.TransactionsUpdated, res.LedgerCreated, res.LedgerUpdated,
			res.ASINsCreated, res.ASINsUpdated, res.ReceiptsRestored, res.Skipped)
		return nil
	},
}

func init() {
	backupCreateCmd.Flags().StringVarP(&backupOut, "out", "o", "", "Output file (default BACKUP_DIR/backup-YYYYMMDD.zip)")
	rootCmd.AddCommand(backupCreateCmd, backupRestoreCmd)
}
