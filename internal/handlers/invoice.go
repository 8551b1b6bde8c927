package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/diewo77/go-faktury/httpx"
	"github.com/diewo77/go-faktury/internal/billing"
	"github.com/diewo77/go-faktury/internal/models"
	"github.com/diewo77/go-faktury/internal/pdf"
	"github.com/diewo77/go-faktury/internal/qr"
	"github.com/diewo77/go-faktury/internal/services"
	"github.com/diewo77/go-faktury/internal/storage"
	"github.com/diewo77/go-faktury/validation"
)

// MaxExportInvoices limits one merged export.
const MaxExportInvoices = 100

type InvoiceHandler struct {
	invoices *services.InvoiceService
	settings *services.SettingsService
	logos    storage.LogoStore
}

func NewInvoiceHandler(invoices *services.InvoiceService, settings *services.SettingsService, logos storage.LogoStore) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices, settings: settings, logos: logos}
}

type invoiceResponse struct {
	*models.Invoice
	Totals      billing.Totals `json:"totals"`
	PaymentCode string         `json:"payment_code,omitempty"`
}

func (h *InvoiceHandler) respond(w http.ResponseWriter, r *http.Request, status int, inv *models.Invoice) {
	st, err := h.settings.Get(r.Context(), currentUser(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	code, _ := h.invoices.PaymentCode(inv, st)
	httpx.JSON(w, status, invoiceResponse{Invoice: inv, Totals: h.invoices.Totals(inv), PaymentCode: code})
}

// load fetches {id} of the current user together with their settings.
func (h *InvoiceHandler) load(w http.ResponseWriter, r *http.Request) (*models.Invoice, *models.Settings, bool) {
	id, ok := pathID(w, r)
	if !ok {
		return nil, nil, false
	}
	inv, err := h.invoices.Get(r.Context(), currentUser(r), id)
	if err != nil {
		writeError(w, r, err)
		return nil, nil, false
	}
	st, err := h.settings.Get(r.Context(), currentUser(r))
	if err != nil {
		writeError(w, r, err)
		return nil, nil, false
	}
	return inv, st, true
}

// List returns the invoices, optionally filtered by ?status=.
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	status := models.InvoiceStatus(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		writeError(w, r, validation.Violations{"status": "invalid_choice"})
		return
	}
	invoices, err := h.invoices.List(r.Context(), currentUser(r), status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if invoices == nil {
		invoices = []models.Invoice{}
	}
	httpx.JSON(w, http.StatusOK, invoices)
}

func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.InvoiceInput
	if err := httpx.Decode(w, r, &in); err != nil {
		badRequest(w, err)
		return
	}
	inv, err := h.invoices.Create(r.Context(), currentUser(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.respond(w, r, http.StatusCreated, inv)
}

func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	inv, err := h.invoices.Get(r.Context(), currentUser(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, inv)
}

func (h *InvoiceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in services.InvoiceInput
	if err := httpx.Decode(w, r, &in); err != nil {
		badRequest(w, err)
		return
	}
	inv, err := h.invoices.Update(r.Context(), currentUser(r), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, inv)
}

func (h *InvoiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.invoices.Delete(r.Context(), currentUser(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// NextNumber previews the number a new invoice would get.
func (h *InvoiceHandler) NextNumber(w http.ResponseWriter, r *http.Request) {
	n, err := h.invoices.NextNumber(r.Context(), currentUser(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"number": n})
}

type invoicePreviewRequest struct {
	Items          []services.InvoiceItemInput `json:"items"`
	TaxEnabled     *bool                       `json:"tax_enabled,omitempty"`
	DefaultTaxRate *float64                    `json:"default_tax_rate,omitempty"`
}

// Preview computes the totals of unsaved rows. Missing tax settings come
// from the user's settings.
func (h *InvoiceHandler) Preview(w http.ResponseWriter, r *http.Request) {
	var in invoicePreviewRequest
	if err := httpx.Decode(w, r, &in); err != nil {
		badRequest(w, err)
		return
	}
	st, err := h.settings.Get(r.Context(), currentUser(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	cfg := st.TaxConfig()
	if in.TaxEnabled != nil {
		cfg.Enabled = *in.TaxEnabled
	}
	if in.DefaultTaxRate != nil {
		cfg.DefaultRate = *in.DefaultTaxRate
	}
	httpx.JSON(w, http.StatusOK, h.invoices.Preview(in.Items, cfg))
}

func (h *InvoiceHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in struct {
		Status models.InvoiceStatus `json:"status"`
	}
	if err := httpx.Decode(w, r, &in); err != nil {
		badRequest(w, err)
		return
	}
	inv, err := h.invoices.SetStatus(r.Context(), currentUser(r), id, in.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, inv)
}

func (h *InvoiceHandler) document(r *http.Request, inv *models.Invoice, st *models.Settings) pdf.Document {
	code, _ := h.invoices.PaymentCode(inv, st)
	doc := pdf.FromInvoice(inv, st, code, requestLang(r))
	doc.Logo, doc.LogoType = logoFor(r, h.logos, st)
	return doc
}

func (h *InvoiceHandler) PDF(w http.ResponseWriter, r *http.Request) {
	inv, st, ok := h.load(w, r)
	if !ok {
		return
	}
	writePDF(w, r, h.document(r, inv, st), pdfFilename("faktura", inv.Number))
}

// QR serves the payment QR code as PNG; ?size= sets the edge in pixels.
func (h *InvoiceHandler) QR(w http.ResponseWriter, r *http.Request) {
	inv, st, ok := h.load(w, r)
	if !ok {
		return
	}
	code, ok := h.invoices.PaymentCode(inv, st)
	if !ok {
		httpx.JSONError(w, http.StatusNotFound, "payment_code_unavailable", nil)
		return
	}
	size := qr.DefaultSize
	if s, err := strconv.Atoi(r.URL.Query().Get("size")); err == nil && s >= 64 && s <= 1024 {
		size = s
	}
	png, err := qr.PNG(code, size)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.Blob(w, "image/png", "", png)
}

// Print renders the HTML print view.
func (h *InvoiceHandler) Print(w http.ResponseWriter, r *http.Request) {
	inv, st, ok := h.load(w, r)
	if !ok {
		return
	}
	code, hasCode := h.invoices.PaymentCode(inv, st)
	qrURL := ""
	if hasCode {
		qrURL = fmt.Sprintf("/invoices/%d/qr.png", inv.ID)
	}
	printPage(w, r, "invoice.html", pdf.FromInvoice(inv, st, code, requestLang(r)), st, qrURL)
}

// Export merges the PDFs of several invoices, in the order given.
func (h *InvoiceHandler) Export(w http.ResponseWriter, r *http.Request) {
	var in struct {
		IDs []uint `json:"ids"`
	}
	if err := httpx.Decode(w, r, &in); err != nil {
		badRequest(w, err)
		return
	}
	if len(in.IDs) == 0 {
		writeError(w, r, validation.Violations{"ids": "required"})
		return
	}
	if len(in.IDs) > MaxExportInvoices {
		writeError(w, r, validation.Violations{"ids": "out_of_range"})
		return
	}

	uid := currentUser(r)
	st, err := h.settings.Get(r.Context(), uid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	docs := make([][]byte, 0, len(in.IDs))
	for _, id := range in.IDs {
		inv, err := h.invoices.Get(r.Context(), uid, id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		out, err := pdf.Render(h.document(r, inv, st))
		if err != nil {
			logError(r, err)
			httpx.JSONError(w, http.StatusInternalServerError, "pdf_generation_failed", nil)
			return
		}
		docs = append(docs, out)
	}
	merged, err := mergeExport(docs, len(in.IDs))
	if err != nil {
		logError(r, err)
		httpx.JSONError(w, http.StatusInternalServerError, "pdf_generation_failed", nil)
		return
	}
	httpx.Blob(w, "application/pdf", "faktury.pdf", merged)
}

// mergeExport joins the rendered invoices; every invoice needs at least one page.
func mergeExport(docs [][]byte, invoices int) ([]byte, error) {
	merged, err := pdf.Merge(docs)
	if err != nil {
		return nil, err
	}
	pages, err := pdf.PageCount(merged)
	if err != nil {
		return nil, err
	}
	if pages < invoices {
		return nil, fmt.Errorf("merged export has %d pages for %d invoices", pages, invoices)
	}
	return merged, nil
}
