package backup

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"fbadash/core/validate"
	catalogEntity "fbadash/model/entity/catalog"
	ledgerEntity "fbadash/model/entity/ledger"
	ledgerRepo "fbadash/model/repository/ledger"
)

var ErrNoBackupCSV = errors.New("backup: archive has no CSV Backups folder")

var csvFolderNames = map[string]bool{"csv backups": true, "csv_backups": true, "csv-backups": true}

// RestoreResult counts what a restore wrote. Errors holds per-row and
// per-file problems that did not stop the run.
type RestoreResult struct {
	TransactionsCreated int      `json:"transactions_created"`
	TransactionsUpdated int      `json:"transactions_updated"`
	LedgerCreated       int      `json:"ledger_created"`
	LedgerUpdated       int      `json:"ledger_updated"`
	ASINsCreated        int      `json:"asins_created"`
	ASINsUpdated        int      `json:"asins_updated"`
	ReceiptsRestored    int      `json:"receipts_restored"`
	Skipped             int      `json:"skipped"`
	Errors              []string `json:"errors"`
}

func (r *RestoreResult) fail(format string, args ...interface{}) {
	r.Skipped++
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

type archivedReceipt struct {
	kind   receiptKind
	folder string
	file   *zip.File
}

type archiveLayout struct {
	purchaseOrders *zip.File
	generalLedger  *zip.File
	asinCatalog    *zip.File
	receipts       []archivedReceipt
}

// scanArchive finds the backup folders. They may sit at the root or below one
// top-level directory; names are matched case-insensitively.
func scanArchive(zr *zip.Reader) archiveLayout {
	var l archiveLayout
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		parts := strings.Split(path.Clean(strings.ReplaceAll(f.Name, "\\", "/")), "/")
		for i := 0; i < len(parts)-1 && i <= 1; i++ {
			dir := strings.ToLower(parts[i])
			switch {
			case csvFolderNames[dir] && i == len(parts)-2:
				name := strings.ToLower(parts[i+1])
				switch {
				case strings.Contains(name, "purchase"):
					l.purchaseOrders = f
				case strings.Contains(name, "ledger"):
					l.generalLedger = f
				case strings.Contains(name, "asin") || strings.Contains(name, "catalog"):
					l.asinCatalog = f
				}
			case dir == "order log" && i == len(parts)-3:
				l.receipts = append(l.receipts, archivedReceipt{kind: receiptOrder, folder: parts[i+1], file: f})
			case dir == "general log" && i == len(parts)-3:
				l.receipts = append(l.receipts, archivedReceipt{kind: receiptLedger, folder: parts[i+1], file: f})
			}
		}
	}
	sort.Slice(l.receipts, func(i, j int) bool { return l.receipts[i].file.Name < l.receipts[j].file.Name })
	return l
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func openRows(f *zip.File, aliases map[string]string, required []string) ([]map[string]string, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return readRows(rc, aliases, required)
}

// ImportExpenseBackup restores an archive made by GenerateExpenseReportBackup.
// Rows that fail are reported in the result; an unreadable archive or a
// storage failure aborts with an error.
func (s *Service) ImportExpenseBackup(ctx context.Context, userID string, r io.ReaderAt, size int64) (*RestoreResult, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, validate.New(err, "file is not a readable zip archive")
	}
	l := scanArchive(zr)
	if l.purchaseOrders == nil && l.generalLedger == nil && l.asinCatalog == nil {
		return nil, validate.New(ErrNoBackupCSV, "no CSV Backups folder with purchase_orders.csv, general_ledger.csv or asin_catalog.csv")
	}

	res := &RestoreResult{Errors: []string{}}
	orders := map[string]string{}
	ledgers := map[string]string{}

	if l.asinCatalog != nil {
		s.restoreCatalog(ctx, userID, l.asinCatalog, res)
	}
	if l.purchaseOrders != nil {
		if err := s.restorePurchaseOrders(ctx, userID, l.purchaseOrders, orders, res); err != nil {
			return nil, err
		}
	}
	if l.generalLedger != nil {
		if err := s.restoreLedger(ctx, userID, l.generalLedger, ledgers, res); err != nil {
			return nil, err
		}
	}
	if err := s.restoreReceipts(ctx, userID, l.receipts, orders, ledgers, res); err != nil {
		return nil, err
	}

	if (res.ASINsCreated > 0 || res.ASINsUpdated > 0) && s.weights != nil {
		s.weights.Invalidate(ctx, userID)
	}
	log.WithFields(log.Fields{
		"user_id":  userID,
		"created":  res.TransactionsCreated,
		"updated":  res.TransactionsUpdated,
		"ledger":   res.LedgerCreated + res.LedgerUpdated,
		"receipts": res.ReceiptsRestored,
		"skipped":  res.Skipped,
	}).Info("backup restore finished")
	return res, nil
}

func (s *Service) restoreCatalog(ctx context.Context, userID string, f *zip.File, res *RestoreResult) {
	rows, err := openRows(f, asinCatalogAliases, asinCatalogRequired)
	if err != nil {
		res.fail("%s: %v", f.Name, err)
		return
	}
	for i, raw := range rows {
		var row asinCatalogRow
		if err := decodeRow(raw, &row); err != nil {
			res.fail("%s row %d: %v", f.Name, i+2, err)
			continue
		}
		code := strings.ToUpper(strings.TrimSpace(row.ASIN))
		if code == "" {
			res.fail("%s row %d: missing ASIN", f.Name, i+2)
			continue
		}
		unit := strings.ToLower(row.WeightUnit)
		if unit != catalogEntity.WeightUnitKilogram {
			unit = catalogEntity.WeightUnitGram
		}
		a, created, err := s.catalog.FindOrCreateASIN(ctx, userID, code, catalogEntity.ASIN{
			FNSKU: row.FNSKU, Title: row.Title, Weight: row.Weight, WeightUnit: unit,
			CostPrice: row.CostPrice, SellPrice: row.SellPrice,
		})
		if err != nil {
			res.fail("%s row %d: %v", f.Name, i+2, err)
			continue
		}
		if created {
			res.ASINsCreated++
			continue
		}
		if _, err := s.catalog.UpdateASIN(ctx, userID, a.ID, map[string]interface{}{
			"fnsku": row.FNSKU, "title": row.Title, "weight": row.Weight, "weight_unit": unit,
			"cost_price": row.CostPrice, "sell_price": row.SellPrice,
		}); err != nil {
			res.fail("%s row %d: %v", f.Name, i+2, err)
			continue
		}
		res.ASINsUpdated++
	}
}

type poGroup struct {
	key  string
	line int
	rows []purchaseOrderRow
}

// reusableID keeps a backed-up UUID so a second restore of the same archive
// finds the records again. Anything else gets a fresh id on create.
func reusableID(id string) string {
	if _, err := uuid.Parse(id); err != nil || len(id) != 36 {
		return ""
	}
	return strings.ToLower(id)
}

// findTransaction resolves a backed-up transaction id to an existing record,
// by full id or by short id.
func (s *Service) findTransaction(ctx context.Context, userID, id string) (*ledgerEntity.Transaction, error) {
	if id == "" {
		return nil, nil
	}
	if _, err := uuid.Parse(id); err == nil {
		t, err := s.ledger.GetTransaction(ctx, userID, strings.ToLower(id))
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return t, err
	}
	if len(id) == 8 {
		return s.ledger.FindTransactionByShortID(ctx, userID, id)
	}
	return nil, nil
}

func (s *Service) restorePurchaseOrders(ctx context.Context, userID string, f *zip.File, orders map[string]string, res *RestoreResult) error {
	rows, err := openRows(f, purchaseOrderAliases, purchaseOrderRequired)
	if err != nil {
		res.fail("%s: %v", f.Name, err)
		return nil
	}

	var groups []*poGroup
	byKey := map[string]*poGroup{}
	for i, raw := range rows {
		var row purchaseOrderRow
		if err := decodeRow(raw, &row); err != nil {
			res.fail("%s row %d: %v", f.Name, i+2, err)
			continue
		}
		key := row.TransactionID
		switch {
		case key != "":
		case row.PONumber != "":
			key = "po:" + strings.ToLower(row.PONumber)
		default:
			key = fmt.Sprintf("row:%d", i)
		}
		g := byKey[key]
		if g == nil {
			g = &poGroup{key: key, line: i + 2}
			byKey[key] = g
			groups = append(groups, g)
		}
		g.rows = append(g.rows, row)
	}

	for _, g := range groups {
		head := g.rows[0].header()
		label := head.PONumber
		if label == "" {
			label = head.TransactionID
		}
		conflict := false
		for _, r := range g.rows[1:] {
			if r.header() != head {
				conflict = true
			}
		}
		if conflict {
			res.fail("%s: purchase order %s (row %d): rows disagree on order fields", f.Name, label, g.line)
			continue
		}
		date, err := parseDate(head.Date)
		if err != nil {
			res.fail("%s: purchase order %s (row %d): %v", f.Name, label, g.line, err)
			continue
		}
		existing, err := s.findTransaction(ctx, userID, head.TransactionID)
		if err != nil {
			return fmt.Errorf("look up transaction %s: %w", head.TransactionID, err)
		}

		t := &ledgerEntity.Transaction{
			UserID: userID, PONumber: head.PONumber, Date: date, Status: head.Status,
			ShippingCost: head.ShippingCost, Fees: head.Fees, Notes: head.Notes,
		}
		if t.Status == "" {
			t.Status = "ordered"
		}
		asinsCreated := 0
		err = s.ledger.Transaction(ctx, func(tx *ledgerRepo.LedgerRepository, db *gorm.DB) error {
			catalog := s.catalog.WithDB(db)
			if head.Supplier != "" {
				sup, _, err := catalog.FindOrCreateSupplier(ctx, userID, head.Supplier)
				if err != nil {
					return fmt.Errorf("supplier %s: %w", head.Supplier, err)
				}
				t.SupplierID = &sup.ID
			}
			for _, r := range g.rows {
				code := strings.ToUpper(strings.TrimSpace(r.ASIN))
				if code == "" {
					continue
				}
				_, created, err := catalog.FindOrCreateASIN(ctx, userID, code, catalogEntity.ASIN{
					Title: r.Title, CostPrice: r.UnitCost, SellPrice: r.SellPrice,
				})
				if err != nil {
					return fmt.Errorf("ASIN %s: %w", code, err)
				}
				if created {
					asinsCreated++
				}
				t.Items = append(t.Items, ledgerEntity.TransactionItem{
					UserID: userID, ASINCode: code, Quantity: r.Quantity, UnitCost: r.UnitCost, SellPrice: r.SellPrice,
				})
			}
			if existing != nil {
				t.ID = existing.ID
				t.CreatedAt = existing.CreatedAt
				return tx.UpdateTransaction(ctx, t)
			}
			t.ID = reusableID(head.TransactionID)
			return tx.CreateTransaction(ctx, t)
		})
		if err != nil {
			res.fail("%s: purchase order %s (row %d): %v", f.Name, label, g.line, err)
			continue
		}
		if existing != nil {
			res.TransactionsUpdated++
		} else {
			res.TransactionsCreated++
		}
		res.ASINsCreated += asinsCreated
		orders[ShortID(t.ID)] = t.ID
		if head.TransactionID != "" {
			orders[ShortID(head.TransactionID)] = t.ID
		}
	}
	return nil
}

func (s *Service) restoreLedger(ctx context.Context, userID string, f *zip.File, ledgers map[string]string, res *RestoreResult) error {
	rows, err := openRows(f, generalLedgerAliases, generalLedgerRequired)
	if err != nil {
		res.fail("%s: %v", f.Name, err)
		return nil
	}
	for i, raw := range rows {
		var row generalLedgerRow
		if err := decodeRow(raw, &row); err != nil {
			res.fail("%s row %d: %v", f.Name, i+2, err)
			continue
		}
		date, err := parseDate(row.Date)
		if err != nil {
			res.fail("%s row %d: %v", f.Name, i+2, err)
			continue
		}

		var existing *ledgerEntity.GeneralLedgerTransaction
		for _, key := range []string{row.Reference, row.ID} {
			if existing != nil || key == "" {
				continue
			}
			if existing, err = s.ledger.FindLedgerEntry(ctx, userID, key); err != nil {
				return fmt.Errorf("look up ledger entry %s: %w", key, err)
			}
		}

		e := &ledgerEntity.GeneralLedgerTransaction{
			UserID: userID, Reference: row.Reference, Date: date, Description: row.Description,
			Category: row.Category, Type: strings.ToLower(row.Type), Amount: row.Amount, Notes: row.Notes,
		}
		if e.Type != "income" {
			e.Type = "expense"
		}
		if existing != nil {
			e.ID, e.CreatedAt = existing.ID, existing.CreatedAt
			err = s.ledger.UpdateLedgerEntry(ctx, e)
		} else {
			e.ID = reusableID(row.ID)
			err = s.ledger.CreateLedgerEntry(ctx, e)
		}
		if err != nil {
			res.fail("%s row %d: %v", f.Name, i+2, err)
			continue
		}
		if existing != nil {
			res.LedgerUpdated++
		} else {
			res.LedgerCreated++
		}
		ledgers[GLShortID(e)] = e.ID
		ledgers[ShortID(e.ID)] = e.ID
		if row.ID != "" {
			old := &ledgerEntity.GeneralLedgerTransaction{ID: row.ID, Reference: row.Reference}
			ledgers[GLShortID(old)] = e.ID
			ledgers[ShortID(row.ID)] = e.ID
		}
	}
	return nil
}

// receiptRecord maps a receipt folder name to the restored record id.
func (s *Service) receiptRecord(ctx context.Context, userID string, rc archivedReceipt, orders, ledgers map[string]string) (string, error) {
	folder := strings.ToUpper(rc.folder)
	if rc.kind == receiptOrder {
		if id := orders[folder]; id != "" {
			return id, nil
		}
		if len(folder) != 8 {
			return "", nil
		}
		t, err := s.ledger.FindTransactionByShortID(ctx, userID, folder)
		if err != nil || t == nil {
			return "", err
		}
		return t.ID, nil
	}
	if id := ledgers[folder]; id != "" {
		return id, nil
	}
	e, err := s.ledger.FindLedgerEntry(ctx, userID, rc.folder)
	if err != nil || e == nil {
		return "", err
	}
	return e.ID, nil
}

func (s *Service) restoreReceipts(ctx context.Context, userID string, receipts []archivedReceipt, orders, ledgers map[string]string, res *RestoreResult) error {
	if len(receipts) == 0 {
		return nil
	}
	if s.receipts == nil {
		res.fail("%d receipts not restored: no receipt storage configured", len(receipts))
		return nil
	}
	base := s.now().UnixMilli()
	for i, rc := range receipts {
		if strings.EqualFold(rc.folder, dirUnmatched) {
			res.fail("%s: unmatched receipt not restored", rc.file.Name)
			continue
		}
		id, err := s.receiptRecord(ctx, userID, rc, orders, ledgers)
		if err != nil {
			return fmt.Errorf("resolve receipt %s: %w", rc.file.Name, err)
		}
		if id == "" {
			res.fail("%s: no record with id %s", rc.file.Name, rc.folder)
			continue
		}
		data, err := readZipFile(rc.file)
		if err != nil {
			res.fail("%s: %v", rc.file.Name, err)
			continue
		}
		name := fmt.Sprintf("%s-%d%s", id, base+int64(i), strings.ToLower(path.Ext(rc.file.Name)))
		if err := s.receipts.Upload(ctx, userID, name, data); err != nil {
			return fmt.Errorf("upload receipt %s: %w", rc.file.Name, err)
		}
		res.ReceiptsRestored++
	}
	return nil
}
