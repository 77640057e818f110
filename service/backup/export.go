package backup

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"path"
	"time"

	log "github.com/sirupsen/logrus"

	"fbadash/storage"
)

// BackupResult counts what went into an archive.
type BackupResult struct {
	Transactions  int      `json:"transactions"`
	Items         int      `json:"items"`
	LedgerEntries int      `json:"ledger_entries"`
	ASINs         int      `json:"asins"`
	Receipts      int      `json:"receipts"`
	Warnings      []string `json:"warnings"`
	Bytes         int64    `json:"bytes"`
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// GenerateExpenseReportBackup writes the user's backup ZIP to w.
func (s *Service) GenerateExpenseReportBackup(ctx context.Context, userID string, w io.Writer) (*BackupResult, error) {
	txs, err := s.ledger.ListTransactions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load purchase orders: %w", err)
	}
	entries, err := s.ledger.ListLedgerEntries(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	asins, err := s.catalog.ListASINs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load ASIN catalog: %w", err)
	}
	var objects []storage.Object
	if s.receipts != nil {
		if objects, err = s.receipts.List(ctx, userID); err != nil {
			return nil, fmt.Errorf("list receipts: %w", err)
		}
	}

	result := &BackupResult{Transactions: len(txs), LedgerEntries: len(entries), ASINs: len(asins), Warnings: []string{}}
	for _, t := range txs {
		result.Items += len(t.Items)
	}

	receipts, warnings := planReceipts(objects, txs, entries)
	result.Warnings = append(result.Warnings, warnings...)
	if len(receipts) > 0 {
		if err := downloadReceipts(ctx, s.receipts, userID, receipts); err != nil {
			return nil, err
		}
	}
	byRecord := map[string][]*receipt{}
	for _, r := range receipts {
		if r.recordID != "" {
			byRecord[r.recordID] = append(byRecord[r.recordID], r)
		}
	}

	now := s.now()
	generated := now.Format("2006-01-02 15:04")
	cw := &countingWriter{w: w}
	zw := zip.NewWriter(cw)
	create := func(name string) (io.Writer, error) {
		return zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate, Modified: now})
	}

	files := []struct {
		name  string
		write func(io.Writer) error
	}{
		{path.Join(dirCSV, "purchase_orders.csv"), func(w io.Writer) error { return writePurchaseOrdersCSV(w, txs, asins) }},
		{path.Join(dirCSV, "general_ledger.csv"), func(w io.Writer) error { return writeGeneralLedgerCSV(w, entries) }},
		{path.Join(dirCSV, "asin_catalog.csv"), func(w io.Writer) error { return writeASINCatalogCSV(w, asins) }},
		{"Purchase Order Log.pdf", func(w io.Writer) error { return writePurchaseOrderPDF(w, txs, asins, byRecord, generated) }},
		{"General Ledger.pdf", func(w io.Writer) error { return writeGeneralLedgerPDF(w, entries, byRecord, generated) }},
	}
	for _, f := range files {
		fw, err := create(f.name)
		if err != nil {
			return nil, err
		}
		if err := f.write(fw); err != nil {
			return nil, fmt.Errorf("write %s: %w", f.name, err)
		}
	}
	for _, r := range receipts {
		fw, err := create(r.path)
		if err != nil {
			return nil, err
		}
		if _, err := fw.Write(r.data); err != nil {
			return nil, fmt.Errorf("write %s: %w", r.path, err)
		}
		result.Receipts++
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	result.Bytes = cw.n

	log.WithFields(log.Fields{
		"user_id":      userID,
		"transactions": result.Transactions,
		"ledger":       result.LedgerEntries,
		"receipts":     result.Receipts,
		"warnings":     len(result.Warnings),
		"bytes":        result.Bytes,
	}).Info("backup archive written")
	return result, nil
}

// BackupFileName is the archive name used for downloads and scheduled backups.
func BackupFileName(t time.Time) string {
	return "backup-" + t.Format("20060102") + ".zip"
}
