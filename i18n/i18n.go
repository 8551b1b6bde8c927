// Package i18n holds the UI and document strings in Czech and English.
package i18n

import (
	"context"

	"golang.org/x/text/language"
)

// Default is the language used when nothing better is known.
const Default = "cs"

type ctxKey struct{}

var (
	supported = []language.Tag{language.Czech, language.English}
	matcher   = language.NewMatcher(supported)
)

var translations = map[string]map[string]string{
	"cs": {
		// validation codes
		"required":             "Povinné",
		"must_be_positive":     "Musí být kladné",
		"out_of_range":         "Mimo povolený rozsah",
		"invalid_bank_account": "Neplatné číslo účtu",
		"invalid_choice":       "Neplatná volba",
		"invalid_date":         "Neplatné datum",
		"invalid_ico":          "Neplatné IČO",
		"invalid_currency":     "Neplatná měna",
		"before_issue_date":    "Dříve než datum vystavení",
		"not_found":            "Nenalezeno",
		// document labels
		"invoice":          "Faktura",
		"tax_document":     "daňový doklad",
		"delivery_note":    "Dodací list",
		"supplier":         "Dodavatel",
		"customer":         "Odběratel",
		"tax_id":           "IČO",
		"vat_id":           "DIČ",
		"issue_date":       "Datum vystavení",
		"taxable_date":     "Datum zdan. plnění",
		"due_date":         "Datum splatnosti",
		"payment_method":   "Způsob úhrady",
		"bank_transfer":    "Převodem",
		"cash":             "Hotově",
		"card":             "Kartou",
		"bank_account":     "Číslo účtu",
		"iban":             "IBAN",
		"variable_symbol":  "Variabilní symbol",
		"description":      "Popis",
		"quantity":         "Množství",
		"unit":             "Jedn.",
		"unit_price":       "Cena/jedn.",
		"vat_rate":         "DPH %",
		"line_total":       "Celkem",
		"vat_base":         "Základ",
		"vat_amount":       "DPH",
		"subtotal":         "Celkem bez DPH",
		"total":            "Celkem",
		"total_due":        "Celkem k úhradě",
		"not_vat_payer":    "Nejsem plátce DPH.",
		"qr_payment":       "QR platba",
		"notes":            "Poznámka",
		"received_by":      "Převzal",
		"issued_by":        "Vystavil",
		"status_draft":     "Koncept",
		"status_issued":    "Vystaveno",
		"status_paid":      "Zaplaceno",
		"status_cancelled": "Stornováno",
	},
	"en": {
		"required":             "Required",
		"must_be_positive":     "Must be positive",
		"out_of_range":         "Out of range",
		"invalid_bank_account": "Invalid bank account",
		"invalid_choice":       "Invalid choice",
		"invalid_date":         "Invalid date",
		"invalid_ico":          "Invalid company ID",
		"invalid_currency":     "Invalid currency",
		"before_issue_date":    "Before issue date",
		"not_found":            "Not found",
		"invoice":              "Invoice",
		"tax_document":         "tax document",
		"delivery_note":        "Delivery note",
		"supplier":             "Supplier",
		"customer":             "Customer",
		"tax_id":               "Company ID",
		"vat_id":               "VAT ID",
		"issue_date":           "Issue date",
		"taxable_date":         "Taxable supply date",
		"due_date":             "Due date",
		"payment_method":       "Payment method",
		"bank_transfer":        "Bank transfer",
		"cash":                 "Cash",
		"card":                 "Card",
		"bank_account":         "Bank account",
		"iban":                 "IBAN",
		"variable_symbol":      "Variable symbol",
		"description":          "Description",
		"quantity":             "Quantity",
		"unit":                 "Unit",
		"unit_price":           "Unit price",
		"vat_rate":             "VAT %",
		"line_total":           "Total",
		"vat_base":             "Base",
		"vat_amount":           "VAT",
		"subtotal":             "Total excl. VAT",
		"total":                "Total",
		"total_due":            "Total due",
		"not_vat_payer":        "Not a VAT payer.",
		"qr_payment":           "QR payment",
		"notes":                "Notes",
		"received_by":          "Received by",
		"issued_by":            "Issued by",
		"status_draft":         "Draft",
		"status_issued":        "Issued",
		"status_paid":          "Paid",
		"status_cancelled":     "Cancelled",
	},
}

// T translates code into lang, falling back to Czech and then to the code.
func T(lang, code string) string {
	if m, ok := translations[lang]; ok {
		if s, ok := m[code]; ok {
			return s
		}
	}
	if s, ok := translations[Default][code]; ok {
		return s
	}
	return code
}

// Supported reports whether lang has a dictionary.
func Supported(lang string) bool {
	_, ok := translations[lang]
	return ok
}

// DetectLanguage picks the best supported language of an Accept-Language header.
func DetectLanguage(acceptLanguage string) string {
	if acceptLanguage == "" {
		return Default
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return Default
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return Default
	}
	base, _ := supported[idx].Base()
	return base.String()
}

// WithLang stores the request language in ctx.
func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, ctxKey{}, lang)
}

// LangFromContext returns the language stored by WithLang, or Default.
func LangFromContext(ctx context.Context) string {
	if lang, ok := ctx.Value(ctxKey{}).(string); ok && lang != "" {
		return lang
	}
	return Default
}
