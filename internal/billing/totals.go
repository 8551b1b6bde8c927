package billing

import (
	"encoding/json"
	"sort"
)

// LineItem is one invoice row. LineTotal is authoritative: it is stored with
// the invoice and never recomputed from Quantity and UnitPrice here.
type LineItem struct {
	Description string   `json:"description"`
	Quantity    float64  `json:"quantity"`
	Unit        string   `json:"unit"`
	UnitPrice   float64  `json:"unit_price"`
	LineTotal   float64  `json:"line_total"`
	TaxRate     *float64 `json:"tax_rate,omitempty"`
}

// TaxConfig says whether VAT applies and which rate (in percent) rows
// without their own rate get.
type TaxConfig struct {
	Enabled     bool    `json:"enabled"`
	DefaultRate float64 `json:"default_rate"`
}

// TaxBucket aggregates everything taxed at one rate.
type TaxBucket struct {
	Base   float64 `json:"base"`
	Amount float64 `json:"amount"`
}

// RateLine is a TaxBucket together with its rate, for ordered display.
type RateLine struct {
	Rate   float64 `json:"rate"`
	Base   float64 `json:"base"`
	Amount float64 `json:"amount"`
}

// TaxBreakdown maps a VAT rate in percent to its bucket.
type TaxBreakdown map[float64]TaxBucket

// Rates returns the rates in ascending order.
func (tb TaxBreakdown) Rates() []float64 {
	rates := make([]float64, 0, len(tb))
	for r := range tb {
		rates = append(rates, r)
	}
	sort.Float64s(rates)
	return rates
}

// Lines returns the buckets sorted ascending by rate.
func (tb TaxBreakdown) Lines() []RateLine {
	lines := make([]RateLine, 0, len(tb))
	for _, r := range tb.Rates() {
		b := tb[r]
		lines = append(lines, RateLine{Rate: r, Base: b.Base, Amount: b.Amount})
	}
	return lines
}

// TaxTotal sums the bucket amounts in ascending rate order.
func (tb TaxBreakdown) TaxTotal() float64 {
	var sum float64
	for _, r := range tb.Rates() {
		sum += tb[r].Amount
	}
	return sum
}

func (tb TaxBreakdown) add(rate, base float64) {
	b := tb[rate]
	b.Base += base
	b.Amount += base * rate / 100
	tb[rate] = b
}

// MarshalJSON writes the breakdown as an array sorted by rate; JSON objects
// cannot be keyed by numbers.
func (tb TaxBreakdown) MarshalJSON() ([]byte, error) {
	return json.Marshal(tb.Lines())
}

// UnmarshalJSON reads the array form written by MarshalJSON.
func (tb *TaxBreakdown) UnmarshalJSON(b []byte) error {
	var lines []RateLine
	if err := json.Unmarshal(b, &lines); err != nil {
		return err
	}
	out := make(TaxBreakdown, len(lines))
	for _, l := range lines {
		out[l.Rate] = TaxBucket{Base: l.Base, Amount: l.Amount}
	}
	*tb = out
	return nil
}

// Totals is the result of an invoice computation.
type Totals struct {
	Subtotal     float64      `json:"subtotal"`
	TaxBreakdown TaxBreakdown `json:"tax_breakdown"`
	Total        float64      `json:"total"`
}

// TaxTotal is Total minus Subtotal, summed from the breakdown.
func (t Totals) TaxTotal() float64 { return t.TaxBreakdown.TaxTotal() }

// ComputeInvoiceTotals aggregates invoice rows. With tax disabled the
// breakdown is empty and Total equals Subtotal. Otherwise every row is taxed
// at its own rate, or cfg.DefaultRate when it has none.
func ComputeInvoiceTotals(items []LineItem, cfg TaxConfig) Totals {
	t := Totals{TaxBreakdown: TaxBreakdown{}}
	for _, it := range items {
		lt := it.LineTotal
		if !finite(lt) {
			lt = 0
		}
		t.Subtotal += lt
		if !cfg.Enabled {
			continue
		}
		rate := cfg.DefaultRate
		if it.TaxRate != nil {
			rate = *it.TaxRate
		}
		t.TaxBreakdown.add(rate, lt)
	}
	t.Total = t.Subtotal + t.TaxBreakdown.TaxTotal()
	return t
}
