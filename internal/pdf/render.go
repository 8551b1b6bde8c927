package pdf

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/diewo77/go-faktury/i18n"
	"github.com/diewo77/go-faktury/internal/billing"
	"github.com/diewo77/go-faktury/internal/models"
	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/extension"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const dateLayout = "2. 1. 2006"

// cp1252Letters are accented letters the built-in fonts can draw.
var cp1252Letters = "áéíóúýÁÉÍÓÚÝäöüÄÖÜß"

var (
	bold      = props.Text{Style: fontstyle.Bold}
	small     = props.Text{Size: 8}
	smallBold = props.Text{Size: 8, Style: fontstyle.Bold}
	right     = props.Text{Size: 8, Align: align.Right}
	rightBold = props.Text{Size: 8, Align: align.Right, Style: fontstyle.Bold}
)

// Render produces the PDF of doc.
func Render(doc Document) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(15).
		WithRightMargin(15).
		WithTopMargin(12).
		WithTitle(i18n.T(doc.Lang, doc.Title)+" "+doc.Number, true).
		WithCreator("go-faktury", true).
		Build()

	m := maroto.New(cfg)
	r := renderer{doc: doc}
	m.AddRows(r.header()...)
	m.AddRows(r.parties()...)
	m.AddRows(r.dates()...)
	m.AddRows(r.items()...)
	m.AddRows(r.summary()...)
	m.AddRows(r.payment()...)
	m.AddRows(r.footer()...)

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate pdf: %w", err)
	}
	return out.GetBytes(), nil
}

func newRow(height float64, cols ...core.Col) core.Row {
	return row.New(height).Add(cols...)
}

type renderer struct {
	doc Document
}

func (r renderer) t(code string) string { return fold(i18n.T(r.doc.Lang, code)) }

func (r renderer) money(v float64) string {
	return fold(billing.FormatMoney(v, r.doc.Currency))
}

func (r renderer) header() []core.Row {
	title := r.t(r.doc.Title)
	if r.doc.Title == "invoice" && r.doc.VATPayer {
		title += " - " + r.t("tax_document")
	}
	heading := text.NewCol(8, title+" "+r.doc.Number, props.Text{Size: 14, Style: fontstyle.Bold})
	logo := col.New(4)
	if ext, ok := imageExtension(r.doc.LogoType); ok && len(r.doc.Logo) > 0 {
		logo = image.NewFromBytesCol(4, r.doc.Logo, ext, props.Rect{Center: true, Percent: 90})
	}
	return []core.Row{
		newRow(18, heading, logo),
		line.NewRow(4),
	}
}

func partyLines(r renderer, p models.Party) []string {
	lines := []string{fold(p.Name)}
	for _, l := range p.AddressLines() {
		lines = append(lines, fold(l))
	}
	if p.TaxID != "" {
		lines = append(lines, r.t("tax_id")+": "+p.TaxID)
	}
	if p.VATID != "" {
		lines = append(lines, r.t("vat_id")+": "+p.VATID)
	}
	if p.Email != "" {
		lines = append(lines, p.Email)
	}
	if p.Phone != "" {
		lines = append(lines, p.Phone)
	}
	return lines
}

func (r renderer) parties() []core.Row {
	left := partyLines(r, r.doc.Supplier)
	rightLines := partyLines(r, r.doc.Customer)
	if !r.doc.VATPayer && r.doc.Title == "invoice" {
		left = append(left, r.t("not_vat_payer"))
	}
	rows := []core.Row{
		newRow(6, text.NewCol(6, r.t("supplier"), smallBold), text.NewCol(6, r.t("customer"), smallBold)),
	}
	n := max(len(left), len(rightLines))
	for i := range n {
		var a, b string
		if i < len(left) {
			a = left[i]
		}
		if i < len(rightLines) {
			b = rightLines[i]
		}
		p := small
		if i == 0 {
			p = bold
		}
		rows = append(rows, newRow(5, text.NewCol(6, a, p), text.NewCol(6, b, p)))
	}
	return append(rows, line.NewRow(4))
}

func (r renderer) dates() []core.Row {
	type kv struct{ k, v string }
	var pairs []kv
	pairs = append(pairs, kv{"issue_date", formatDate(r.doc.IssueDate)})
	if r.doc.VATPayer && !r.doc.TaxableDate.IsZero() {
		pairs = append(pairs, kv{"taxable_date", formatDate(r.doc.TaxableDate)})
	}
	if !r.doc.DueDate.IsZero() {
		pairs = append(pairs, kv{"due_date", formatDate(r.doc.DueDate)})
	}
	if r.doc.PaymentMethod != "" {
		pairs = append(pairs, kv{"payment_method", r.t(string(r.doc.PaymentMethod))})
	}
	if r.doc.PaymentMethod == billing.PaymentBankTransfer && r.doc.BankAccount != "" {
		pairs = append(pairs, kv{"bank_account", r.doc.BankAccount})
		if r.doc.IBAN != "" {
			pairs = append(pairs, kv{"iban", r.doc.IBAN})
		}
	}
	if r.doc.VariableSymbol != "" {
		pairs = append(pairs, kv{"variable_symbol", r.doc.VariableSymbol})
	}
	rows := make([]core.Row, 0, len(pairs)+1)
	for _, p := range pairs {
		rows = append(rows, newRow(5, text.NewCol(4, r.t(p.k), smallBold), text.NewCol(8, p.v, small)))
	}
	return append(rows, line.NewRow(4))
}

func (r renderer) items() []core.Row {
	if !r.doc.ShowPrices {
		rows := []core.Row{newRow(6,
			text.NewCol(8, r.t("description"), smallBold),
			text.NewCol(2, r.t("quantity"), rightBold),
			text.NewCol(2, r.t("unit"), smallBold),
		)}
		for _, it := range r.doc.Rows {
			rows = append(rows, newRow(5,
				text.NewCol(8, fold(it.Description), small),
				text.NewCol(2, formatQuantity(it.Quantity), right),
				text.NewCol(2, fold(it.Unit), small),
			))
		}
		return rows
	}

	rows := []core.Row{newRow(6,
		text.NewCol(5, r.t("description"), smallBold),
		text.NewCol(1, r.t("quantity"), rightBold),
		text.NewCol(1, r.t("unit"), smallBold),
		text.NewCol(2, r.t("unit_price"), rightBold),
		text.NewCol(1, r.t("vat_rate"), rightBold),
		text.NewCol(2, r.t("line_total"), rightBold),
	)}
	for _, it := range r.doc.Rows {
		rate := ""
		if it.TaxRate != nil && r.doc.VATPayer {
			rate = formatRate(*it.TaxRate)
		}
		rows = append(rows, newRow(5,
			text.NewCol(5, fold(it.Description), small),
			text.NewCol(1, formatQuantity(it.Quantity), right),
			text.NewCol(1, fold(it.Unit), small),
			text.NewCol(2, r.money(it.UnitPrice), right),
			text.NewCol(1, rate, right),
			text.NewCol(2, r.money(it.Total), right),
		))
	}
	return rows
}

func (r renderer) summary() []core.Row {
	if !r.doc.ShowPrices {
		return nil
	}
	rows := []core.Row{line.NewRow(4)}
	if r.doc.VATPayer && len(r.doc.Breakdown) > 0 {
		rows = append(rows, newRow(5,
			col.New(6),
			text.NewCol(2, r.t("vat_rate"), rightBold),
			text.NewCol(2, r.t("vat_base"), rightBold),
			text.NewCol(2, r.t("vat_amount"), rightBold),
		))
		for _, l := range r.doc.Breakdown.Lines() {
			rows = append(rows, newRow(5,
				col.New(6),
				text.NewCol(2, formatRate(l.Rate), right),
				text.NewCol(2, r.money(l.Base), right),
				text.NewCol(2, r.money(l.Amount), right),
			))
		}
		rows = append(rows, newRow(6,
			col.New(6),
			text.NewCol(4, r.t("subtotal"), rightBold),
			text.NewCol(2, r.money(r.doc.Subtotal), right),
		))
	}
	totalLabel := "total"
	if r.doc.Title == "invoice" {
		totalLabel = "total_due"
	}
	rows = append(rows, newRow(9,
		col.New(6),
		text.NewCol(3, r.t(totalLabel), props.Text{Size: 11, Style: fontstyle.Bold, Align: align.Right, Top: 2}),
		text.NewCol(3, r.money(r.doc.Total), props.Text{Size: 11, Style: fontstyle.Bold, Align: align.Right, Top: 2}),
	))
	return rows
}

func (r renderer) payment() []core.Row {
	if r.doc.PaymentCode == "" {
		return nil
	}
	return []core.Row{
		newRow(6, text.NewCol(12, r.t("qr_payment"), props.Text{Size: 8, Style: fontstyle.Bold, Top: 2})),
		newRow(38, code.NewQrCol(3, r.doc.PaymentCode, props.Rect{Percent: 100}), col.New(9)),
	}
}

func (r renderer) footer() []core.Row {
	var rows []core.Row
	if strings.TrimSpace(r.doc.Notes) != "" {
		rows = append(rows,
			newRow(6, text.NewCol(12, r.t("notes"), props.Text{Size: 8, Style: fontstyle.Bold, Top: 2})),
			row.New().Add(text.NewCol(12, fold(r.doc.Notes), small)),
		)
	}
	if r.doc.Title == "delivery_note" {
		rows = append(rows, newRow(20,
			text.NewCol(6, r.t("issued_by")+": ....................", props.Text{Size: 8, Top: 12}),
			text.NewCol(6, r.t("received_by")+": ....................", props.Text{Size: 8, Top: 12}),
		))
	}
	return rows
}

func imageExtension(contentType string) (extension.Type, bool) {
	switch contentType {
	case "image/png":
		return extension.Png, true
	case "image/jpeg":
		return extension.Jpg, true
	}
	// SVG logos are only shown on the HTML print view
	return "", false
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

func formatQuantity(q float64) string {
	return strings.Replace(strconv.FormatFloat(q, 'f', -1, 64), ".", ",", 1)
}

func formatRate(rate float64) string {
	return formatQuantity(rate) + " %"
}

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// fold removes diacritics the built-in PDF fonts cannot encode. Letters of
// cp1252 are kept as they are.
func fold(s string) string {
	var b bytes.Buffer
	for _, r := range s {
		if r < 0x80 || strings.ContainsRune(cp1252Letters, r) {
			b.WriteRune(r)
			continue
		}
		folded, _, err := transform.String(stripMarks, string(r))
		if err != nil {
			b.WriteRune(r)
			continue
		}
		b.WriteString(folded)
	}
	return b.String()
}

