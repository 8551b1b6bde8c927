package handlers

import (
	"net/http"

	"github.com/diewo77/go-faktury/httpx"
	"github.com/diewo77/go-faktury/internal/billing"
	"github.com/diewo77/go-faktury/internal/models"
	"github.com/diewo77/go-faktury/internal/pdf"
	"github.com/diewo77/go-faktury/internal/services"
	"github.com/diewo77/go-faktury/internal/storage"
)

type DeliveryNoteHandler struct {
	notes    *services.DeliveryNoteService
	settings *services.SettingsService
	logos    storage.LogoStore
}

func NewDeliveryNoteHandler(notes *services.DeliveryNoteService, settings *services.SettingsService, logos storage.LogoStore) *DeliveryNoteHandler {
	return &DeliveryNoteHandler{notes: notes, settings: settings, logos: logos}
}

type deliveryNoteResponse struct {
	*models.DeliveryNote
	Totals billing.DeliveryNoteTotals `json:"totals"`
}

func (h *DeliveryNoteHandler) respond(w http.ResponseWriter, status int, note *models.DeliveryNote) {
	httpx.JSON(w, status, deliveryNoteResponse{DeliveryNote: note, Totals: h.notes.Totals(note)})
}

func (h *DeliveryNoteHandler) List(w http.ResponseWriter, r *http.Request) {
	notes, err := h.notes.List(r.Context(), currentUser(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if notes == nil {
		notes = []models.DeliveryNote{}
	}
	httpx.JSON(w, http.StatusOK, notes)
}

func (h *DeliveryNoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.DeliveryNoteInput
	if err := httpx.Decode(w, r, &in); err != nil {
		badRequest(w, err)
		return
	}
	note, err := h.notes.Create(r.Context(), currentUser(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.respond(w, http.StatusCreated, note)
}

func (h *DeliveryNoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	note, err := h.notes.Get(r.Context(), currentUser(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, note)
}

func (h *DeliveryNoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in services.DeliveryNoteInput
	if err := httpx.Decode(w, r, &in); err != nil {
		badRequest(w, err)
		return
	}
	note, err := h.notes.Update(r.Context(), currentUser(r), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, note)
}

func (h *DeliveryNoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.notes.Delete(r.Context(), currentUser(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *DeliveryNoteHandler) NextNumber(w http.ResponseWriter, r *http.Request) {
	n, err := h.notes.NextNumber(r.Context(), currentUser(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"number": n})
}

// Preview computes the totals of unsaved rows; prices are typed text.
func (h *DeliveryNoteHandler) Preview(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Items      []billing.DeliveryNoteItem `json:"items"`
		ShowPrices bool                       `json:"show_prices"`
	}
	if err := httpx.Decode(w, r, &in); err != nil {
		badRequest(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, h.notes.Preview(in.Items, in.ShowPrices))
}

func (h *DeliveryNoteHandler) load(w http.ResponseWriter, r *http.Request) (*models.DeliveryNote, *models.Settings, bool) {
	id, ok := pathID(w, r)
	if !ok {
		return nil, nil, false
	}
	note, err := h.notes.Get(r.Context(), currentUser(r), id)
	if err != nil {
		writeError(w, r, err)
		return nil, nil, false
	}
	st, err := h.settings.Get(r.Context(), currentUser(r))
	if err != nil {
		writeError(w, r, err)
		return nil, nil, false
	}
	return note, st, true
}

func (h *DeliveryNoteHandler) PDF(w http.ResponseWriter, r *http.Request) {
	note, st, ok := h.load(w, r)
	if !ok {
		return
	}
	doc := pdf.FromDeliveryNote(note, st, requestLang(r))
	doc.Logo, doc.LogoType = logoFor(r, h.logos, st)
	writePDF(w, r, doc, pdfFilename("dodaci-list", note.Number))
}

func (h *DeliveryNoteHandler) Print(w http.ResponseWriter, r *http.Request) {
	note, st, ok := h.load(w, r)
	if !ok {
		return
	}
	printPage(w, r, "delivery_note.html", pdf.FromDeliveryNote(note, st, requestLang(r)), st, "")
}
