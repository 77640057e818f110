package backup

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
)

// header aliases per CSV, keyed by normalised header text
var (
	purchaseOrderAliases = aliasTable(map[string][]string{
		"transaction_id": {"transaction id", "id", "po id"},
		"po_number":      {"po number", "purchase order", "po", "po #", "po no"},
		"supplier":       {"supplier", "supplier name", "vendor"},
		"date":           {"date", "order date", "po date"},
		"status":         {"status"},
		"shipping_cost":  {"shipping cost", "shipping"},
		"fees":           {"fees", "fee"},
		"notes":          {"notes", "note"},
		"asin":           {"asin", "asin code"},
		"title":          {"title", "product", "product title"},
		"quantity":       {"quantity", "qty", "units"},
		"unit_cost":      {"unit cost", "cost"},
		"sell_price":     {"sell price", "price"},
	})
	generalLedgerAliases = aliasTable(map[string][]string{
		"id":          {"id", "transaction id"},
		"reference":   {"reference", "ref", "gl reference"},
		"date":        {"date"},
		"type":        {"type"},
		"category":    {"category"},
		"description": {"description", "memo"},
		"amount":      {"amount", "total"},
		"notes":       {"notes", "note"},
	})
	asinCatalogAliases = aliasTable(map[string][]string{
		"asin":        {"asin", "code", "asin code"},
		"fnsku":       {"fnsku"},
		"title":       {"title", "product title"},
		"weight":      {"weight"},
		"weight_unit": {"weight unit", "unit"},
		"cost_price":  {"cost price", "cost"},
		"sell_price":  {"sell price", "price"},
	})

	purchaseOrderRequired = []string{"po_number", "supplier", "date"}
	generalLedgerRequired = []string{"date", "amount", "description"}
	asinCatalogRequired   = []string{"asin"}
)

var headerSep = regexp.MustCompile(`[\s_\-]+`)

func normHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	return strings.TrimSpace(headerSep.ReplaceAllString(strings.ToLower(strings.TrimSpace(h)), " "))
}

func aliasTable(m map[string][]string) map[string]string {
	out := map[string]string{}
	for field, aliases := range m {
		out[normHeader(field)] = field
		for _, a := range aliases {
			out[normHeader(a)] = field
		}
	}
	return out
}

// readRows maps each CSV row to canonical field names. Unknown columns are
// ignored; missing required columns fail the whole file.
func readRows(r io.Reader, aliases map[string]string, required []string) ([]map[string]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("empty file")
	}
	if err != nil {
		return nil, err
	}
	fields := make([]string, len(header))
	have := map[string]bool{}
	for i, h := range header {
		if f, ok := aliases[normHeader(h)]; ok && !have[f] {
			fields[i] = f
			have[f] = true
		}
	}
	var missing []string
	for _, f := range required {
		if !have[f] {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}

	var rows []map[string]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		row := map[string]string{}
		empty := true
		for i, v := range rec {
			if i < len(fields) && fields[i] != "" {
				v = strings.TrimSpace(v)
				row[fields[i]] = v
				if v != "" {
					empty = false
				}
			}
		}
		if !empty {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// decodeRow fills out from a normalised row; numbers are parsed from text.
func decodeRow(row map[string]string, out interface{}) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(row)
}

var dateLayouts = []string{dateLayout, time.RFC3339, "2006-01-02 15:04:05", "01/02/2006", "1/2/2006"}

func parseDate(s string) (time.Time, error) {
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

type purchaseOrderRow struct {
	TransactionID string  `mapstructure:"transaction_id"`
	PONumber      string  `mapstructure:"po_number"`
	Supplier      string  `mapstructure:"supplier"`
	Date          string  `mapstructure:"date"`
	Status        string  `mapstructure:"status"`
	ShippingCost  float64 `mapstructure:"shipping_cost"`
	Fees          float64 `mapstructure:"fees"`
	Notes         string  `mapstructure:"notes"`
	ASIN          string  `mapstructure:"asin"`
	Title         string  `mapstructure:"title"`
	Quantity      int     `mapstructure:"quantity"`
	UnitCost      float64 `mapstructure:"unit_cost"`
	SellPrice     float64 `mapstructure:"sell_price"`
}

// header returns the transaction-level fields that must agree across rows.
func (r purchaseOrderRow) header() purchaseOrderRow {
	return purchaseOrderRow{
		TransactionID: r.TransactionID, PONumber: r.PONumber, Supplier: r.Supplier, Date: r.Date,
		Status: r.Status, ShippingCost: r.ShippingCost, Fees: r.Fees, Notes: r.Notes,
	}
}

type generalLedgerRow struct {
	ID          string  `mapstructure:"id"`
	Reference   string  `mapstructure:"reference"`
	Date        string  `mapstructure:"date"`
	Type        string  `mapstructure:"type"`
	Category    string  `mapstructure:"category"`
	Description string  `mapstructure:"description"`
	Amount      float64 `mapstructure:"amount"`
	Notes       string  `mapstructure:"notes"`
}

type asinCatalogRow struct {
	ASIN       string  `mapstructure:"asin"`
	FNSKU      string  `mapstructure:"fnsku"`
	Title      string  `mapstructure:"title"`
	Weight     float64 `mapstructure:"weight"`
	WeightUnit string  `mapstructure:"weight_unit"`
	CostPrice  float64 `mapstructure:"cost_price"`
	SellPrice  float64 `mapstructure:"sell_price"`
}
