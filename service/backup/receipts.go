package backup

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	ledgerEntity "fbadash/model/entity/ledger"
	"fbadash/storage"
)

const (
	dirCSV        = "CSV Backups"
	dirOrderLog   = "Order Log"
	dirGeneralLog = "General Log"
	dirUnmatched  = "Unmatched"

	downloadLimit = 4
)

type receiptKind int

const (
	receiptUnmatched receiptKind = iota
	receiptOrder
	receiptLedger
)

// receipt is one stored file and where it goes in the archive.
type receipt struct {
	name     string
	recordID string
	kind     receiptKind
	path     string
	data     []byte
}

func (r *receipt) image() bool {
	switch strings.ToLower(path.Ext(r.name)) {
	case ".jpg", ".jpeg", ".png", ".webp":
		return true
	}
	return false
}

// parseStorageName splits "{uuid}-{timestamp}.{ext}".
func parseStorageName(name string) (recordID, ext string, ok bool) {
	if len(name) < 37 || name[36] != '-' {
		return "", "", false
	}
	if _, err := uuid.Parse(name[:36]); err != nil {
		return "", "", false
	}
	return strings.ToLower(name[:36]), strings.ToLower(path.Ext(name)), true
}

// planReceipts assigns archive paths. objects must be sorted by name so the
// per-record sequence follows upload order.
func planReceipts(objects []storage.Object, txs []ledgerEntity.Transaction, entries []ledgerEntity.GeneralLedgerTransaction) ([]*receipt, []string) {
	orders := make(map[string]string, len(txs))
	for _, t := range txs {
		orders[strings.ToLower(t.ID)] = ShortID(t.ID)
	}
	ledgers := make(map[string]string, len(entries))
	for i := range entries {
		ledgers[strings.ToLower(entries[i].ID)] = GLShortID(&entries[i])
	}

	seq := map[string]int{}
	var out []*receipt
	var warnings []string
	for _, o := range objects {
		r := &receipt{name: o.Name}
		id, ext, ok := parseStorageName(o.Name)
		var folder, short string
		switch {
		case ok && orders[id] != "":
			r.kind, r.recordID, folder, short = receiptOrder, id, dirOrderLog, orders[id]
		case ok && ledgers[id] != "":
			r.kind, r.recordID, folder, short = receiptLedger, id, dirGeneralLog, ledgers[id]
		}
		if r.kind == receiptUnmatched {
			r.path = path.Join(dirOrderLog, dirUnmatched, o.Name)
			warnings = append(warnings, fmt.Sprintf("receipt %s matches no purchase order or ledger entry", o.Name))
			out = append(out, r)
			continue
		}
		seq[id]++
		r.path = fmt.Sprintf("%s/%s/%s-%03d%s", folder, short, short, seq[id], ext)
		out = append(out, r)
	}
	return out, warnings
}

// downloadReceipts fetches receipt contents with bounded parallelism.
func downloadReceipts(ctx context.Context, store storage.ReceiptStore, userID string, receipts []*receipt) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(downloadLimit)
	for _, r := range receipts {
		r := r
		g.Go(func() error {
			data, err := store.Download(ctx, userID, r.name)
			if err != nil {
				return fmt.Errorf("download receipt %s: %w", r.name, err)
			}
			r.data = data
			return nil
		})
	}
	return g.Wait()
}
