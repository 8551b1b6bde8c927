package handlers

import (
	"bytes"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/diewo77/go-faktury/httpx"
	"github.com/diewo77/go-faktury/internal/models"
	"github.com/diewo77/go-faktury/internal/services"
	"github.com/diewo77/go-faktury/internal/storage"
)

type SettingsHandler struct {
	settings *services.SettingsService
	logos    storage.LogoStore
}

// NewSettingsHandler wires the settings endpoints. logos may be nil, which
// disables logo upload.
func NewSettingsHandler(settings *services.SettingsService, logos storage.LogoStore) *SettingsHandler {
	return &SettingsHandler{settings: settings, logos: logos}
}

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	st, err := h.settings.Get(r.Context(), currentUser(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, st)
}

func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in models.Settings
	if err := httpx.Decode(w, r, &in); err != nil {
		badRequest(w, err)
		return
	}
	st, err := h.settings.Save(r.Context(), currentUser(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, st)
}

// UploadLogo accepts a multipart form with a "logo" file.
func (h *SettingsHandler) UploadLogo(w http.ResponseWriter, r *http.Request) {
	if h.logos == nil {
		httpx.JSONError(w, http.StatusServiceUnavailable, "storage_unavailable", nil)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, storage.MaxLogoSize+64<<10)
	file, header, err := r.FormFile("logo")
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "logo_missing", err.Error())
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, storage.MaxLogoSize+1))
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "logo_unreadable", nil)
		return
	}
	contentType := storage.DetectLogoType(data, header.Header.Get("Content-Type"))
	if err := storage.CheckLogo(contentType, int64(len(data))); err != nil {
		code := "unsupported_logo_type"
		if errors.Is(err, storage.ErrTooLarge) {
			code = "logo_too_large"
		}
		httpx.JSONError(w, http.StatusBadRequest, code, nil)
		return
	}

	uid := currentUser(r)
	key, err := h.logos.Put(r.Context(), uid, contentType, bytes.NewReader(data), int64(len(data)))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.settings.SetLogo(r.Context(), uid, key); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]string{"logo_key": key})
}

// Logo streams the current user's logo.
func (h *SettingsHandler) Logo(w http.ResponseWriter, r *http.Request) {
	st, err := h.settings.Get(r.Context(), currentUser(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if st.LogoKey == "" || h.logos == nil {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	body, contentType, err := h.logos.Get(r.Context(), st.LogoKey)
	if errors.Is(err, storage.ErrNotFound) {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer body.Close()
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "private, max-age=300")
	if _, err := io.Copy(w, body); err != nil {
		log.Printf("stream logo %s: %v", st.LogoKey, err)
	}
}

// logoFor loads the logo of st for embedding into a PDF. Failures only
// drop the logo.
func logoFor(r *http.Request, logos storage.LogoStore, st *models.Settings) ([]byte, string) {
	if logos == nil || st.LogoKey == "" {
		return nil, ""
	}
	body, contentType, err := logos.Get(r.Context(), st.LogoKey)
	if err != nil {
		log.Printf("load logo %s: %v", st.LogoKey, err)
		return nil, ""
	}
	defer body.Close()
	data, err := io.ReadAll(io.LimitReader(body, storage.MaxLogoSize))
	if err != nil {
		log.Printf("read logo %s: %v", st.LogoKey, err)
		return nil, ""
	}
	return data, contentType
}
