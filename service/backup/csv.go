package backup

import (
	"bufio"
	"io"
	"strconv"
	"time"

	"fbadash/core/csvx"
	catalogEntity "fbadash/model/entity/catalog"
	ledgerEntity "fbadash/model/entity/ledger"
)

const dateLayout = "2006-01-02"

var purchaseOrderHeader = []string{
	"transaction_id", "po_number", "supplier", "date", "status", "shipping_cost", "fees", "notes",
	"asin", "title", "quantity", "unit_cost", "sell_price",
	"total_cost", "revenue", "profit", "roi",
}

var generalLedgerHeader = []string{"id", "reference", "date", "type", "category", "description", "amount", "notes"}

var asinCatalogHeader = []string{"asin", "fnsku", "title", "weight", "weight_unit", "cost_price", "sell_price"}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

type lineWriter struct {
	w   *bufio.Writer
	err error
}

func newLineWriter(w io.Writer) *lineWriter {
	return &lineWriter{w: bufio.NewWriter(w)}
}

func (lw *lineWriter) line(fields ...string) {
	if lw.err != nil {
		return
	}
	_, lw.err = lw.w.WriteString(csvx.Line(fields...) + "\n")
}

func (lw *lineWriter) flush() error {
	if lw.err != nil {
		return lw.err
	}
	return lw.w.Flush()
}

// writePurchaseOrdersCSV writes one row per transaction and item. A
// transaction without items gets one row with empty item columns.
func writePurchaseOrdersCSV(w io.Writer, txs []ledgerEntity.Transaction, asins []catalogEntity.ASIN) error {
	lw := newLineWriter(w)
	lw.line(purchaseOrderHeader...)
	for i := range txs {
		t := &txs[i]
		tot := TransactionTotals(t)
		head := []string{
			t.ID, t.PONumber, t.SupplierName(), formatDate(t.Date), t.Status,
			number(t.ShippingCost), number(t.Fees), t.Notes,
		}
		tail := []string{money(tot.Cost), money(tot.Revenue), money(tot.Profit), tot.ROI.String()}
		if len(t.Items) == 0 {
			row := append(append([]string{}, head...), "", "", "", "", "")
			lw.line(append(row, tail...)...)
			continue
		}
		for _, it := range JoinItemsToAsins(t.Items, asins) {
			row := append(append([]string{}, head...),
				it.ASINCode, it.Title(), strconv.Itoa(it.Quantity), number(it.UnitCost), number(it.SellPrice))
			lw.line(append(row, tail...)...)
		}
	}
	return lw.flush()
}

func writeGeneralLedgerCSV(w io.Writer, entries []ledgerEntity.GeneralLedgerTransaction) error {
	lw := newLineWriter(w)
	lw.line(generalLedgerHeader...)
	for _, e := range entries {
		lw.line(e.ID, e.Reference, formatDate(e.Date), e.Type, e.Category, e.Description, number(e.Amount), e.Notes)
	}
	return lw.flush()
}

func writeASINCatalogCSV(w io.Writer, asins []catalogEntity.ASIN) error {
	lw := newLineWriter(w)
	lw.line(asinCatalogHeader...)
	for _, a := range asins {
		lw.line(a.Code, a.FNSKU, a.Title, number(a.Weight), a.WeightUnit, number(a.CostPrice), number(a.SellPrice))
	}
	return lw.flush()
}
