package backup

import (
	"strings"

	"github.com/shopspring/decimal"

	catalogEntity "fbadash/model/entity/catalog"
	ledgerEntity "fbadash/model/entity/ledger"
)

var hundred = decimal.NewFromInt(100)

// ShortID is the first 8 characters of a record id, upper-cased. It names
// receipt folders in the archive.
func ShortID(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return strings.ToUpper(id)
}

// GLShortID prefers the entry's GL-xxxxx reference over its short id.
func GLShortID(e *ledgerEntity.GeneralLedgerTransaction) string {
	ref := strings.TrimSpace(e.Reference)
	if len(ref) > 3 && strings.EqualFold(ref[:3], "GL-") {
		return strings.ToUpper(ref)
	}
	return ShortID(e.ID)
}

// ItemWithDetails is a purchase order line joined with its catalog entry.
// ASIN is nil when the code is not in the catalog.
type ItemWithDetails struct {
	ledgerEntity.TransactionItem
	ASIN *catalogEntity.ASIN
}

func (i ItemWithDetails) Title() string {
	if i.ASIN == nil {
		return ""
	}
	return i.ASIN.Title
}

// JoinItemsToAsins attaches catalog data to each item by ASIN code.
func JoinItemsToAsins(items []ledgerEntity.TransactionItem, asins []catalogEntity.ASIN) []ItemWithDetails {
	byCode := make(map[string]*catalogEntity.ASIN, len(asins))
	for i := range asins {
		byCode[asins[i].Code] = &asins[i]
	}
	out := make([]ItemWithDetails, len(items))
	for i, it := range items {
		out[i] = ItemWithDetails{TransactionItem: it, ASIN: byCode[it.ASINCode]}
	}
	return out
}

// Totals are the money figures of one purchase order.
type Totals struct {
	COGS    decimal.Decimal
	Cost    decimal.Decimal
	Revenue decimal.Decimal
	Profit  decimal.Decimal
	ROI     decimal.Decimal
}

// TransactionTotals: cost = COGS + shipping, revenue = sell x qty,
// profit = revenue - cost - fees, ROI = profit / COGS x 100 (0 without COGS).
func TransactionTotals(t *ledgerEntity.Transaction) Totals {
	var tot Totals
	for _, it := range t.Items {
		qty := decimal.NewFromInt(int64(it.Quantity))
		tot.COGS = tot.COGS.Add(decimal.NewFromFloat(it.UnitCost).Mul(qty))
		tot.Revenue = tot.Revenue.Add(decimal.NewFromFloat(it.SellPrice).Mul(qty))
	}
	tot.Cost = tot.COGS.Add(decimal.NewFromFloat(t.ShippingCost))
	tot.Profit = tot.Revenue.Sub(tot.Cost).Sub(decimal.NewFromFloat(t.Fees))
	if !tot.COGS.IsZero() {
		tot.ROI = tot.Profit.Div(tot.COGS).Mul(hundred).Round(2)
	}
	return tot
}

// Sum adds totals field by field; ROI is recomputed from the sums.
func (t Totals) Sum(o Totals) Totals {
	s := Totals{
		COGS:    t.COGS.Add(o.COGS),
		Cost:    t.Cost.Add(o.Cost),
		Revenue: t.Revenue.Add(o.Revenue),
		Profit:  t.Profit.Add(o.Profit),
	}
	if !s.COGS.IsZero() {
		s.ROI = s.Profit.Div(s.COGS).Mul(hundred).Round(2)
	}
	return s
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func number(v float64) string {
	return decimal.NewFromFloat(v).String()
}
