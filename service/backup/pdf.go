package backup

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"path"
	"strconv"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	catalogEntity "fbadash/model/entity/catalog"
	ledgerEntity "fbadash/model/entity/ledger"
)

const (
	thumbPx  = 240
	thumbMM  = 35.0
	pageMM   = 297.0
	bottomMM = 20.0
)

type report struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func newReport(title, subtitle string) *report {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, bottomMM)
	pdf.AddPage()
	r := &report{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 9, r.tr(title), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 5, r.tr(subtitle), "", 1, "L", false, 0, "")
	pdf.Ln(3)
	return r
}

// band draws the grey summary box of label/value pairs.
func (r *report) band(pairs [][2]string) {
	pdf := r.pdf
	pdf.SetFillColor(235, 235, 235)
	pdf.SetFont("Helvetica", "B", 10)
	w := 180.0 / float64(len(pairs))
	for _, p := range pairs {
		pdf.CellFormat(w, 6, r.tr(p[0]), "", 0, "C", true, 0, "")
	}
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "", 10)
	for _, p := range pairs {
		pdf.CellFormat(w, 7, r.tr(p[1]), "", 0, "C", true, 0, "")
	}
	pdf.Ln(10)
}

func (r *report) ensure(h float64) {
	if r.pdf.GetY()+h > pageMM-bottomMM {
		r.pdf.AddPage()
	}
}

func (r *report) heading(text string) {
	r.ensure(20)
	r.pdf.SetFont("Helvetica", "B", 11)
	r.pdf.CellFormat(0, 7, r.tr(text), "B", 1, "L", false, 0, "")
	r.pdf.SetFont("Helvetica", "", 9)
}

func (r *report) text(s string) {
	r.pdf.MultiCell(0, 5, r.tr(s), "", "L", false)
}

func (r *report) row(widths []float64, cells []string, bold bool) {
	style := ""
	if bold {
		style = "B"
	}
	r.pdf.SetFont("Helvetica", style, 9)
	for i, c := range cells {
		align := "L"
		if i > 1 {
			align = "R"
		}
		r.pdf.CellFormat(widths[i], 5, r.tr(c), "", 0, align, false, 0, "")
	}
	r.pdf.Ln(5)
}

// thumbnails places image receipts in a row and lists the others by name.
func (r *report) thumbnails(receipts []*receipt) {
	pdf := r.pdf
	x0 := 15.0
	x := x0
	placed := false
	for _, rc := range receipts {
		if !rc.image() || rc.data == nil {
			r.text("Receipt: " + path.Base(rc.path))
			continue
		}
		jpg, err := thumbnail(rc.name, rc.data)
		if err != nil {
			log.WithError(err).WithField("receipt", rc.name).Warn("backup: receipt thumbnail skipped")
			r.text("Receipt: " + path.Base(rc.path))
			continue
		}
		if !placed {
			r.ensure(thumbMM + 5)
		}
		if x+thumbMM > 195 {
			x = x0
			pdf.SetY(pdf.GetY() + thumbMM + 3)
			r.ensure(thumbMM + 5)
		}
		opt := fpdf.ImageOptions{ImageType: "JPG"}
		pdf.RegisterImageOptionsReader(rc.path, opt, bytes.NewReader(jpg))
		pdf.ImageOptions(rc.path, x, pdf.GetY(), thumbMM, 0, false, opt, 0, "")
		x += thumbMM + 3
		placed = true
	}
	if placed {
		pdf.SetY(pdf.GetY() + thumbMM + 3)
	}
}

func (r *report) output(w io.Writer) error {
	return r.pdf.Output(w)
}

// thumbnail decodes a jpg, png or webp receipt and returns a small JPEG.
func thumbnail(name string, data []byte) ([]byte, error) {
	var img image.Image
	var err error
	if strings.EqualFold(path.Ext(name), ".webp") {
		img, err = webp.Decode(bytes.NewReader(data))
	} else {
		img, err = imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	img = imaging.Fit(img, thumbPx, thumbPx, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(80)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writePurchaseOrderPDF renders the purchase order log.
func writePurchaseOrderPDF(w io.Writer, txs []ledgerEntity.Transaction, asins []catalogEntity.ASIN, receipts map[string][]*receipt, generated string) error {
	r := newReport("Purchase Order Log", "Generated "+generated)

	var all Totals
	for i := range txs {
		all = all.Sum(TransactionTotals(&txs[i]))
	}
	r.band([][2]string{
		{"Orders", strconv.Itoa(len(txs))},
		{"Total cost", money(all.Cost)},
		{"Revenue", money(all.Revenue)},
		{"Profit", money(all.Profit)},
		{"ROI %", all.ROI.String()},
	})

	widths := []float64{30, 70, 20, 30, 30}
	for i := range txs {
		t := &txs[i]
		tot := TransactionTotals(t)
		r.heading(fmt.Sprintf("%s  PO %s  %s  %s", ShortID(t.ID), t.PONumber, t.SupplierName(), formatDate(t.Date)))
		if t.Status != "" {
			r.text("Status: " + t.Status)
		}
		r.row(widths, []string{"ASIN", "Title", "Qty", "Unit cost", "Line"}, true)
		for _, it := range JoinItemsToAsins(t.Items, asins) {
			line := decimal.NewFromFloat(it.UnitCost).Mul(decimal.NewFromInt(int64(it.Quantity)))
			title := it.Title()
			if rs := []rune(title); len(rs) > 45 {
				title = string(rs[:42]) + "..."
			}
			r.row(widths, []string{it.ASINCode, title, strconv.Itoa(it.Quantity), number(it.UnitCost), money(line)}, false)
		}
		r.text(fmt.Sprintf("Shipping %s   Fees %s   Cost %s   Revenue %s   Profit %s   ROI %s%%",
			number(t.ShippingCost), number(t.Fees), money(tot.Cost), money(tot.Revenue), money(tot.Profit), tot.ROI.String()))
		if t.Notes != "" {
			r.text("Notes: " + t.Notes)
		}
		r.thumbnails(receipts[strings.ToLower(t.ID)])
		r.pdf.Ln(3)
	}
	return r.output(w)
}

// writeGeneralLedgerPDF renders the general ledger.
func writeGeneralLedgerPDF(w io.Writer, entries []ledgerEntity.GeneralLedgerTransaction, receipts map[string][]*receipt, generated string) error {
	r := newReport("General Ledger", "Generated "+generated)

	income, expense := decimal.Zero, decimal.Zero
	for _, e := range entries {
		if strings.EqualFold(e.Type, "income") {
			income = income.Add(decimal.NewFromFloat(e.Amount))
		} else {
			expense = expense.Add(decimal.NewFromFloat(e.Amount))
		}
	}
	r.band([][2]string{
		{"Entries", strconv.Itoa(len(entries))},
		{"Income", money(income)},
		{"Expenses", money(expense)},
		{"Net", money(income.Sub(expense))},
	})

	for i := range entries {
		e := &entries[i]
		r.heading(fmt.Sprintf("%s  %s  %s  %s", GLShortID(e), formatDate(e.Date), e.Type, money(decimal.NewFromFloat(e.Amount))))
		r.text(e.Description)
		if e.Category != "" {
			r.text("Category: " + e.Category)
		}
		if e.Notes != "" {
			r.text("Notes: " + e.Notes)
		}
		for _, rc := range receipts[strings.ToLower(e.ID)] {
			r.text("Receipt: " + path.Base(rc.path))
		}
		r.pdf.Ln(3)
	}
	return r.output(w)
}
