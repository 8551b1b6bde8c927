package billing

// DeliveryNoteItem is one delivery note row. Price is kept as typed.
type DeliveryNoteItem struct {
	Description string        `json:"description"`
	Quantity    float64       `json:"quantity"`
	Unit        string        `json:"unit"`
	Price       LocaleDecimal `json:"price"`
	TaxRate     *float64      `json:"tax_rate,omitempty"`
}

// Amount is Quantity times the parsed Price.
func (it DeliveryNoteItem) Amount() float64 {
	a := it.Quantity * it.Price.Float()
	if !finite(a) {
		return 0
	}
	return a
}

// DeliveryNoteTotals is the result of a delivery note computation.
type DeliveryNoteTotals struct {
	TotalWithoutTax float64      `json:"total_without_tax"`
	TotalWithTax    float64      `json:"total_with_tax"`
	TaxBreakdown    TaxBreakdown `json:"tax_breakdown"`
}

// ComputeDeliveryNoteTotals aggregates delivery note rows. Prices hidden or no
// rows means all zeros. A row without a rate is untaxed; there is no
// document-level default for delivery notes.
func ComputeDeliveryNoteTotals(items []DeliveryNoteItem, showPrices bool) DeliveryNoteTotals {
	t := DeliveryNoteTotals{TaxBreakdown: TaxBreakdown{}}
	if !showPrices || len(items) == 0 {
		return t
	}
	for _, it := range items {
		amount := it.Amount()
		rate := 0.0
		if it.TaxRate != nil {
			rate = *it.TaxRate
		}
		t.TotalWithoutTax += amount
		t.TaxBreakdown.add(rate, amount)
	}
	t.TotalWithTax = t.TotalWithoutTax + t.TaxBreakdown.TaxTotal()
	return t
}
